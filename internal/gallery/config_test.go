package gallery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg := NewConfig()
	cfg.AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", ""}))
	require.NoError(t, cfg.LoadConfigWithFlagSet(fs))

	assert.Equal(t, "", cfg.GetListenAddress())
	assert.Equal(t, 5000, cfg.GetListenPort())
	assert.Equal(t, ".", cfg.StaticRoot)
	assert.Equal(t, ".", cfg.AssetRoot)
	assert.Equal(t, []string{"crosshairs", "scopes"}, cfg.AssetTypes)
}

func TestConfig_FileAndFlags(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
listen-address = "127.0.0.1"
listen-port = 8000
asset-root = "/srv/assets"
asset-types = ["crosshairs"]
title = "Scopes and more"
watch = true
`), 0o600))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg := NewConfig()
	cfg.AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", configFile, "--listen-port", "9000"}))
	require.NoError(t, cfg.LoadConfigWithFlagSet(fs))

	assert.Equal(t, "127.0.0.1", cfg.ListenAddress)
	assert.Equal(t, 9000, cfg.ListenPort)
	assert.Equal(t, "/srv/assets", cfg.AssetRoot)
	assert.Equal(t, []string{"crosshairs"}, cfg.AssetTypes)
	assert.Equal(t, "Scopes and more", cfg.Title)
}

func TestGalleryHandler_Start(t *testing.T) {
	cfg := NewConfig()
	cfg.ListenAddress = "127.0.0.1"
	cfg.ListenPort = 0
	cfg.AssetRoot = t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// With an already-cancelled context the server starts and immediately
	// shuts down cleanly.
	assert.NoError(t, NewGalleryHandler().Start(ctx, cfg))
	assert.DirExists(t, filepath.Join(cfg.AssetRoot, "crosshairs"))
}

func TestGalleryHandler_WrongConfigType(t *testing.T) {
	assert.Error(t, NewGalleryHandler().Start(context.Background(), nil))
}
