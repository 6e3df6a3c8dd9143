package gallery

import (
	"context"
	"fmt"

	"github.com/larsks/crosshairs/internal/cli"
	"github.com/larsks/crosshairs/internal/httpserver"
)

// GalleryHandler implements cli.CommandHandler for the gallery server
type GalleryHandler struct{}

// NewGalleryHandler creates a new gallery command handler
func NewGalleryHandler() *GalleryHandler {
	return &GalleryHandler{}
}

// Start runs the gallery server until ctx is cancelled
func (h *GalleryHandler) Start(ctx context.Context, config cli.Configurable) error {
	cfg, ok := config.(*Config)
	if !ok {
		return fmt.Errorf("invalid config type for gallery server")
	}

	srv, err := NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return httpserver.StartFromConfig(ctx, cfg, srv.Handler())
}
