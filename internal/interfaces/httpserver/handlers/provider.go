package handlers

import (
	"github.com/rs/zerolog"

	"kaizen-server/internal/config"
	domain "kaizen-server/internal/domain/kaizen"
)

// Provider wires HTTP handlers.
type Provider struct {
	Kaizen     *KaizenHandler
	Attachment *AttachmentHandler
}

func NewProvider(cfg *config.Config, service *domain.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Kaizen:     NewKaizenHandler(cfg, service, log),
		Attachment: NewAttachmentHandler(cfg, service, log),
	}
}
