package manifest

import (
	"github.com/larsks/crosshairs/internal/assets"
	"github.com/larsks/crosshairs/internal/config"
	"github.com/spf13/pflag"
)

// Config holds configuration for the manifest builder
type Config struct {
	// ConfigFile holds the path to the configuration file
	ConfigFile string `mapstructure:"config-file"`
	// AssetRoot is the directory containing one subdirectory per asset type
	AssetRoot string `mapstructure:"asset-root"`
	// ManifestDir is where <type>_manifest.json files are written
	ManifestDir string `mapstructure:"manifest-dir"`
	// AssetTypes lists asset types as "plural" or "plural=singular"
	AssetTypes []string `mapstructure:"asset-types"`
	// FoldExtensionCase includes files with extensions such as ".PNG"
	FoldExtensionCase bool `mapstructure:"fold-extension-case"`
	// ScanInterval is the interval in seconds between rebuilds (0 = run once)
	ScanInterval int `mapstructure:"scan-interval"`
	// Watch rebuilds a type whenever its directory changes
	Watch bool `mapstructure:"watch"`
}

func defaults() map[string]any {
	return map[string]any{
		"asset-root":          ".",
		"manifest-dir":        ".",
		"asset-types":         assets.DefaultTypes,
		"fold-extension-case": false,
		"scan-interval":       0,
		"watch":               false,
	}
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		AssetRoot:   ".",
		ManifestDir: ".",
		AssetTypes:  append([]string(nil), assets.DefaultTypes...),
	}
}

// AddFlags adds command line flags for this config
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", config.DefaultConfigFile("crosshairs"), "Path to configuration file")
	fs.StringVar(&c.AssetRoot, "asset-root", c.AssetRoot, "Directory containing asset type directories")
	fs.StringVar(&c.ManifestDir, "manifest-dir", c.ManifestDir, "Directory where manifests are written")
	fs.StringSliceVar(&c.AssetTypes, "asset-types", c.AssetTypes, "Asset types to rebuild (plural or plural=singular)")
	fs.BoolVar(&c.FoldExtensionCase, "fold-extension-case", c.FoldExtensionCase, "Include images with upper-case extensions")
	fs.IntVar(&c.ScanInterval, "scan-interval", c.ScanInterval, "Rebuild every N seconds (0 = run once)")
	fs.BoolVarP(&c.Watch, "watch", "w", c.Watch, "Rebuild when asset directories change")
}

// LoadConfigWithFlagSet loads configuration using a custom flag set
func (c *Config) LoadConfigWithFlagSet(fs *pflag.FlagSet) error {
	loader := config.NewConfigLoader()
	loader.SetConfigFile(c.ConfigFile)
	loader.SetDefaults(defaults())

	return loader.LoadConfigWithFlagSet(c, fs)
}
