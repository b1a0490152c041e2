package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"kaizen-server/internal/config"
	domain "kaizen-server/internal/domain/kaizen"
	"kaizen-server/internal/interfaces/httpserver/middlewares"
	"kaizen-server/internal/interfaces/httpserver/requests"
	"kaizen-server/internal/interfaces/httpserver/responses"
	"kaizen-server/internal/utils/platformerrors"
)

// KaizenHandler exposes kaizen record endpoints.
type KaizenHandler struct {
	cfg     *config.Config
	service *domain.Service
	log     zerolog.Logger
}

func NewKaizenHandler(cfg *config.Config, service *domain.Service, log zerolog.Logger) *KaizenHandler {
	return &KaizenHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "kaizen-handler").Logger(),
	}
}

// Health godoc
// @Summary      Service health
// @Description  Returns service status and the resolved caller identity.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       / [get]
func (h *KaizenHandler) Health(c *gin.Context) {
	user := "anonymous"
	if principal := middlewares.PrincipalFromContext(c); !principal.Anonymous() {
		user = principal.UserDetails
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Kaizen API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"user":      user,
	})
}

// List godoc
// @Summary      List kaizens
// @Description  Paginated flattened listing with optional status and department filters.
// @Tags         kaizens
// @Produce      json
// @Param        page        query  int     false  "Page number (default 1)"
// @Param        limit       query  int     false  "Page size (default 10)"
// @Param        status      query  string  false  "Filter by status"
// @Param        department  query  string  false  "Filter by department"
// @Success      200  {object}  domain.Page
// @Router       /api/kaizens [get]
func (h *KaizenHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.service.List(c.Request.Context(), domain.ListFilter{
		Page:       page,
		Limit:      limit,
		Status:     c.Query("status"),
		Department: c.Query("department"),
	})
	if err != nil {
		responses.HandleError(c, err, "failed to list kaizens")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get godoc
// @Summary      Get a kaizen
// @Description  Returns the full record plus its action plans.
// @Tags         kaizens
// @Produce      json
// @Param        id  path  int  true  "Kaizen id"
// @Success      200  {object}  domain.Detail
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /api/kaizens/{id} [get]
func (h *KaizenHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		responses.HandleError(c, err, "failed to get kaizen")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Create godoc
// @Summary      Create a kaizen
// @Description  Validates the universal and type-conditional field sets and inserts a record.
// @Tags         kaizens
// @Accept       json
// @Produce      json
// @Param        request  body  requests.CreateKaizenRequest  true  "Kaizen payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /api/kaizens [post]
func (h *KaizenHandler) Create(c *gin.Context) {
	var req requests.CreateKaizenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body: "+err.Error())
		return
	}

	createdBy := ""
	if principal := middlewares.PrincipalFromContext(c); !principal.Anonymous() {
		createdBy = principal.UserDetails
	}

	created, err := h.service.Create(c.Request.Context(), req.ToParams(createdBy))
	if err != nil {
		responses.HandleError(c, err, "failed to create kaizen")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":            created.ID,
		"kaizen_number": created.KaizenNumber,
		"message":       "Kaizen created successfully",
	})
}

// Delete godoc
// @Summary      Delete a kaizen
// @Description  Removes a record and its action plans.
// @Tags         kaizens
// @Produce      json
// @Param        id  path  int  true  "Kaizen id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /api/kaizens/{id} [delete]
func (h *KaizenHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		responses.HandleError(c, err, "failed to delete kaizen")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Kaizen deleted successfully"})
}

// Export godoc
// @Summary      Export all kaizens
// @Description  Unpaginated full-column dump for downstream sync and BI.
// @Tags         kaizens
// @Produce      json
// @Success      200  {array}  domain.KaizenRecord
// @Security     ApiKeyAuth
// @Router       /api/kaizens/export [get]
func (h *KaizenHandler) Export(c *gin.Context) {
	records, err := h.service.Export(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "failed to export kaizens")
		return
	}
	c.JSON(http.StatusOK, records)
}

// DownloadDB godoc
// @Summary      Download the raw database
// @Description  Streams a self-contained snapshot of the SQLite store as an attachment.
// @Tags         kaizens
// @Produce      octet-stream
// @Success      200  {file}  binary
// @Security     ApiKeyAuth
// @Router       /api/kaizens/download-db [get]
func (h *KaizenHandler) DownloadDB(c *gin.Context) {
	// The live file alone is not a complete database under WAL; snapshot
	// through the engine so the copy carries every committed write.
	tmpDir, err := os.MkdirTemp("", "kaizen-db-*")
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeInternal, "failed to prepare database snapshot")
		return
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "kaizens.db")
	if err := h.service.Snapshot(c.Request.Context(), path); err != nil {
		responses.HandleError(c, err, "failed to snapshot database")
		return
	}

	c.Header("Content-Type", "application/octet-stream")
	c.FileAttachment(path, "kaizens.db")
}

func (h *KaizenHandler) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid kaizen id")
		return 0, false
	}
	return id, true
}
