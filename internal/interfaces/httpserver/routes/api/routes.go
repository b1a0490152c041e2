package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"kaizen-server/internal/config"
	"kaizen-server/internal/interfaces/httpserver/handlers"
	"kaizen-server/internal/interfaces/httpserver/middlewares"
)

// Routes encapsulates /api route registration.
type Routes struct {
	handlers *handlers.Provider
	cfg      *config.Config
	log      zerolog.Logger
}

func NewRoutes(provider *handlers.Provider, cfg *config.Config, log zerolog.Logger) *Routes {
	return &Routes{handlers: provider, cfg: cfg, log: log}
}

// Register attaches all routes under the /api prefix. Listing and reads
// are open; mutations require the hybrid auth; machine endpoints require
// the API key.
func (r *Routes) Register(router gin.IRouter) {
	requireAuth := middlewares.RequireAuth(r.cfg)
	requireKey := middlewares.RequireAPIKey(r.cfg, r.log)

	group := router.Group("/api")

	kaizens := group.Group("/kaizens")
	kaizens.GET("", r.handlers.Kaizen.List)
	// static segments before the :id wildcard
	kaizens.GET("/export", requireKey, r.handlers.Kaizen.Export)
	kaizens.GET("/download-db", requireKey, r.handlers.Kaizen.DownloadDB)
	kaizens.GET("/:id", r.handlers.Kaizen.Get)
	kaizens.POST("", requireAuth, r.handlers.Kaizen.Create)
	kaizens.DELETE("/:id", requireKey, r.handlers.Kaizen.Delete)

	attachments := group.Group("/attachments", requireAuth)
	attachments.POST("/:kaizenId", r.handlers.Attachment.Upload)
	attachments.GET("/:kaizenId", r.handlers.Attachment.List)
	attachments.DELETE("/:kaizenId/:attachmentId", r.handlers.Attachment.Remove)
}
