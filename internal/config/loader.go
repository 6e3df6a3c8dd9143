package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ignoredFlags are handled by the CLI layer and never map to config keys.
var ignoredFlags = map[string]bool{
	"config":  true,
	"version": true,
}

// ConfigLoader provides common configuration loading functionality.
type ConfigLoader struct {
	configFile string
	defaults   map[string]any
	strictMode bool
}

// NewConfigLoader creates a new ConfigLoader instance.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{
		defaults: make(map[string]any),
	}
}

// SetConfigFile sets the configuration file path. An empty path means no
// config file is read.
func (cl *ConfigLoader) SetConfigFile(configFile string) {
	cl.configFile = configFile
}

// SetDefaults sets multiple default values at once.
func (cl *ConfigLoader) SetDefaults(defaults map[string]any) {
	for key, value := range defaults {
		cl.defaults[key] = value
	}
}

// SetStrictMode enables or disables strict mode. In strict mode, unknown
// configuration keys cause an error.
func (cl *ConfigLoader) SetStrictMode(strict bool) {
	cl.strictMode = strict
}

// LoadConfigWithFlagSet loads configuration with precedence
// defaults < config file < flags explicitly set in fs.
// The config parameter must be a pointer to the struct to populate.
func (cl *ConfigLoader) LoadConfigWithFlagSet(config any, fs *pflag.FlagSet) error {
	v := viper.New()

	for key, value := range cl.defaults {
		v.SetDefault(key, value)
	}

	if cl.configFile != "" {
		v.SetConfigFile(cl.configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("%w %s: %v", ErrConfigFileRead, cl.configFile, err)
		}
		expandSettings(v)
	}

	// Flag names map to viper keys with hyphens kept, so --asset-root
	// overrides the asset-root key from the file.
	if fs != nil {
		fs.Visit(func(flag *pflag.Flag) {
			if ignoredFlags[flag.Name] {
				return
			}
			v.Set(flag.Name, flagValue(flag))
		})
	}

	// ZeroFields makes decoded slices replace, rather than overlay, the
	// values preset by NewConfig.
	decoderConfig := &mapstructure.DecoderConfig{
		Result:           config,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      cl.strictMode,
		ZeroFields:       true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	}

	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return fmt.Errorf("%w: failed to create decoder: %v", ErrConfigUnmarshal, err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		if cl.configFile != "" {
			return fmt.Errorf("%w: %s: %v", ErrConfigUnmarshal, cl.configFile, err)
		}
		return fmt.Errorf("%w: %v", ErrConfigUnmarshal, err)
	}

	return nil
}

// flagValue returns the typed value of a flag rather than its string form.
func flagValue(flag *pflag.Flag) any {
	raw := flag.Value.String()

	switch flag.Value.Type() {
	case "uint", "uint8", "uint16", "uint32", "uint64":
		if val, err := strconv.ParseUint(raw, 10, 64); err == nil {
			return val
		}
	case "int", "int8", "int16", "int32", "int64":
		if val, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return val
		}
	case "bool":
		if val, err := strconv.ParseBool(raw); err == nil {
			return val
		}
	case "float32", "float64":
		if val, err := strconv.ParseFloat(raw, 64); err == nil {
			return val
		}
	case "stringSlice", "stringArray":
		if sliceFlag, ok := flag.Value.(pflag.SliceValue); ok {
			return sliceFlag.GetSlice()
		}
	}

	return raw
}

// expandSettings replaces $VAR and ${VAR} references in string settings
// read from the config file. References to unset variables are kept verbatim.
func expandSettings(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		switch val := v.Get(key).(type) {
		case string:
			if expanded := expandEnv(val); expanded != val {
				v.Set(key, expanded)
			}
		case []any:
			changed := false
			items := make([]any, len(val))
			for i, item := range val {
				items[i] = item
				if s, ok := item.(string); ok {
					if expanded := expandEnv(s); expanded != s {
						items[i] = expanded
						changed = true
					}
				}
			}
			if changed {
				v.Set(key, items)
			}
		}
	}
}

func expandEnv(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}

	return os.Expand(s, func(name string) string {
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if strings.Contains(s, "${"+name+"}") {
			return "${" + name + "}"
		}
		return "$" + name
	})
}

// DefaultConfigFile returns $XDG_CONFIG_HOME/<app>/config.toml (or the first
// match in the XDG config search path) when such a file exists, and an
// empty string otherwise.
func DefaultConfigFile(app string) string {
	path, err := xdg.SearchConfigFile(filepath.Join(app, "config.toml"))
	if err != nil {
		return ""
	}
	return path
}
