package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"kaizen-server/internal/config"
	domain "kaizen-server/internal/domain/kaizen"
	"kaizen-server/internal/interfaces/httpserver/middlewares"
	"kaizen-server/internal/interfaces/httpserver/responses"
	"kaizen-server/internal/utils/platformerrors"
)

// AttachmentHandler exposes file attachment endpoints.
type AttachmentHandler struct {
	cfg     *config.Config
	service *domain.Service
	log     zerolog.Logger
}

func NewAttachmentHandler(cfg *config.Config, service *domain.Service, log zerolog.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "attachment-handler").Logger(),
	}
}

// Upload godoc
// @Summary      Upload an attachment
// @Description  Accepts one multipart file, stores it on the configured backend and records the metadata on the kaizen.
// @Tags         attachments
// @Accept       multipart/form-data
// @Produce      json
// @Param        kaizenId  path      int   true  "Kaizen id"
// @Param        file      formData  file  true  "File to upload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /api/attachments/{kaizenId} [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	kaizenID, ok := h.parseKaizenID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "multipart field 'file' is required")
		return
	}
	if fileHeader.Size > h.cfg.MaxAttachmentBytes {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"file exceeds max size of "+strconv.FormatInt(h.cfg.MaxAttachmentBytes, 10)+" bytes")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeInternal, "failed to open uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxAttachmentBytes+1))
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeInternal, "failed to read uploaded file")
		return
	}

	uploadedBy := ""
	if principal := middlewares.PrincipalFromContext(c); !principal.Anonymous() {
		uploadedBy = principal.UserDetails
	}

	attachment, err := h.service.UploadAttachment(c.Request.Context(), kaizenID, fileHeader.Filename, data, uploadedBy)
	if err != nil {
		responses.HandleError(c, err, "failed to upload attachment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "File uploaded successfully",
		"attachment": attachment,
	})
}

// List godoc
// @Summary      List attachments
// @Tags         attachments
// @Produce      json
// @Param        kaizenId  path  int  true  "Kaizen id"
// @Success      200  {object}  map[string][]domain.Attachment
// @Failure      404  {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /api/attachments/{kaizenId} [get]
func (h *AttachmentHandler) List(c *gin.Context) {
	kaizenID, ok := h.parseKaizenID(c)
	if !ok {
		return
	}

	attachments, err := h.service.ListAttachments(c.Request.Context(), kaizenID)
	if err != nil {
		responses.HandleError(c, err, "failed to list attachments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"attachments": attachments})
}

// Remove godoc
// @Summary      Remove an attachment
// @Description  Drops the entry from the kaizen's attachment list. The stored file stays on the backend.
// @Tags         attachments
// @Produce      json
// @Param        kaizenId      path  int     true  "Kaizen id"
// @Param        attachmentId  path  string  true  "Attachment id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /api/attachments/{kaizenId}/{attachmentId} [delete]
func (h *AttachmentHandler) Remove(c *gin.Context) {
	kaizenID, ok := h.parseKaizenID(c)
	if !ok {
		return
	}
	attachmentID := c.Param("attachmentId")
	if attachmentID == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "attachment id is required")
		return
	}

	if err := h.service.RemoveAttachment(c.Request.Context(), kaizenID, attachmentID); err != nil {
		responses.HandleError(c, err, "failed to remove attachment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attachment removed successfully"})
}

func (h *AttachmentHandler) parseKaizenID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("kaizenId"), 10, 64)
	if err != nil || id < 1 {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid kaizen id")
		return 0, false
	}
	return id, true
}
