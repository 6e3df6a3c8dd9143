package manifest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/larsks/crosshairs/internal/assets"
	"github.com/larsks/crosshairs/internal/cli"
)

// ManifestHandler implements cli.CommandHandler for the manifest builder
type ManifestHandler struct{}

// NewManifestHandler creates a new manifest command handler
func NewManifestHandler() *ManifestHandler {
	return &ManifestHandler{}
}

// Start rebuilds the configured manifests, then keeps rebuilding on a
// schedule or on change when configured to.
func (h *ManifestHandler) Start(ctx context.Context, config cli.Configurable) error {
	cfg, ok := config.(*Config)
	if !ok {
		return fmt.Errorf("invalid config type for manifest builder")
	}

	registry, err := assets.NewRegistry(cfg.AssetTypes)
	if err != nil {
		return err
	}

	builder := NewBuilder(cfg.AssetRoot, cfg.ManifestDir)
	builder.SetFoldExtensionCase(cfg.FoldExtensionCase)

	runner := NewRunner(builder, registry.Types(), os.Stdout)
	runner.ScanInterval = time.Duration(cfg.ScanInterval) * time.Second
	runner.Watch = cfg.Watch

	return runner.Run(ctx)
}
