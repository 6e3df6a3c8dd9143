package gallery

import (
	"github.com/larsks/crosshairs/internal/assets"
	"github.com/larsks/crosshairs/internal/config"
	"github.com/spf13/pflag"
)

// Config holds configuration for the gallery server
type Config struct {
	// ConfigFile holds the path to the configuration file
	ConfigFile string `mapstructure:"config-file"`
	// ListenAddress is the address to bind the HTTP server to
	ListenAddress string `mapstructure:"listen-address"`
	// ListenPort is the port to bind the HTTP server to
	ListenPort int `mapstructure:"listen-port"`
	// StaticRoot is searched for index.html before the embedded page is used
	StaticRoot string `mapstructure:"static-root"`
	// AssetRoot is the directory containing one subdirectory per asset type
	AssetRoot string `mapstructure:"asset-root"`
	// ManifestDir is where <type>_manifest.json files are read from
	ManifestDir string `mapstructure:"manifest-dir"`
	// AssetTypes lists asset types as "plural" or "plural=singular"
	AssetTypes []string `mapstructure:"asset-types"`
	// Title is shown on the embedded gallery page
	Title string `mapstructure:"title"`
}

func defaults() map[string]any {
	return map[string]any{
		"listen-address": "",
		"listen-port":    5000,
		"static-root":    ".",
		"asset-root":     ".",
		"manifest-dir":   ".",
		"asset-types":    assets.DefaultTypes,
		"title":          "Crosshair Gallery",
	}
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		ListenPort:  5000,
		StaticRoot:  ".",
		AssetRoot:   ".",
		ManifestDir: ".",
		AssetTypes:  append([]string(nil), assets.DefaultTypes...),
		Title:       "Crosshair Gallery",
	}
}

// AddFlags adds command line flags for this config
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", config.DefaultConfigFile("crosshairs"), "Path to configuration file")
	fs.StringVar(&c.ListenAddress, "listen-address", c.ListenAddress, "Address to bind HTTP server to")
	fs.IntVar(&c.ListenPort, "listen-port", c.ListenPort, "Port to bind HTTP server to")
	fs.StringVar(&c.StaticRoot, "static-root", c.StaticRoot, "Directory searched for index.html")
	fs.StringVar(&c.AssetRoot, "asset-root", c.AssetRoot, "Directory containing asset type directories")
	fs.StringVar(&c.ManifestDir, "manifest-dir", c.ManifestDir, "Directory containing manifests")
	fs.StringSliceVar(&c.AssetTypes, "asset-types", c.AssetTypes, "Asset types to serve (plural or plural=singular)")
	fs.StringVar(&c.Title, "title", c.Title, "Title of the gallery page")
}

// LoadConfigWithFlagSet loads configuration using a custom flag set
func (c *Config) LoadConfigWithFlagSet(fs *pflag.FlagSet) error {
	loader := config.NewConfigLoader()
	loader.SetConfigFile(c.ConfigFile)
	loader.SetDefaults(defaults())

	return loader.LoadConfigWithFlagSet(c, fs)
}

// GetListenAddress implements httpserver.Config interface
func (c *Config) GetListenAddress() string {
	return c.ListenAddress
}

// GetListenPort implements httpserver.Config interface
func (c *Config) GetListenPort() int {
	return c.ListenPort
}
