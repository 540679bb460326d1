package gatehouse

import (
	"time"

	"github.com/gatehouse-io/gatehouse/internal/config"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Filename of the standard configuration file.
const ConfigFile = "gatehouse.yaml"

// ConfigKeyInfo contains metadata about a known configuration key.
// This is re-exported from internal/config for public API use.
type ConfigKeyInfo = config.ConfigKeyInfo

// Config is a global koanf instance used to access host and plugin level
// configuration options.
//
// Config is loaded in the following order (later sources override earlier):
// 1. Defaults registered via RegisterConfigKey (loaded lazily)
// 2. Auto-discovered gatehouse.yaml
// 3. Environment variables with a GH__ prefix
// 4. Additional sources loaded via LoadConfigFile() or LoadConfigDefaults()
//
// Environment variable transformation:
//   - GH__AUTH__REST__ENDPOINT → auth.rest.endpoint
//   - GH__AUTH__REST__API_TOKEN → auth.rest.apiToken (underscores become camelCase)
var Config = koanf.New(".")

func init() {
	// Look for a gatehouse.yaml file in the current directory or any parent.
	if cfg := config.SearchForConfig(ConfigFile, "."); cfg != "" {
		if err := Config.Load(file.Provider(cfg), yaml.Parser()); err != nil {
			panic("error loading config: " + err.Error())
		}
	}

	// Load environment variables with the prefix GH__.
	if err := Config.Load(env.Provider("GH__", ".", config.TransformEnv), nil); err != nil {
		panic("error loading env config: " + err.Error())
	}
}

// RegisterConfigKey registers a known configuration key with metadata.
// This should be called by plugins to document expected config keys.
//
// Example:
//
//	gatehouse.RegisterConfigKey(gatehouse.ConfigKeyInfo{
//	    Key:         "auth.rest.endpoint",
//	    Description: "URL of the external credential verification service",
//	    Type:        "string",
//	})
func RegisterConfigKey(info ConfigKeyInfo) {
	config.RegisterConfigKey(info)
}

// RegisterConfigKeys registers multiple configuration keys at once.
func RegisterConfigKeys(infos ...ConfigKeyInfo) {
	config.RegisterConfigKeys(infos...)
}

// LoadConfigFile loads additional configuration from a YAML file into the
// global Config instance. Call this before building the plugin registry.
func LoadConfigFile(path string) {
	if err := Config.Load(file.Provider(path), yaml.Parser()); err != nil {
		panic("error loading config file '" + path + "': " + err.Error())
	}
}

// LoadConfigDefaults loads default configuration values into the global
// Config instance. Values already present are overridden, so call this
// before loading host-specific sources.
func LoadConfigDefaults(defaults map[string]interface{}) {
	if err := Config.Load(confmap.Provider(defaults, "."), nil); err != nil {
		panic("error loading config defaults: " + err.Error())
	}
}

// EnsureConfigDefaults applies registered key defaults for any key that has
// not been set by a file or environment variable. Hosts should call this
// after all plugin packages have been imported.
func EnsureConfigDefaults() {
	config.EnsureDefaultsLoaded(Config)
}

// ValidateConfig checks loaded keys against the registry and returns warnings
// for unknown or deprecated keys.
func ValidateConfig() []config.ValidationWarning {
	return config.ValidateConfigKeys(Config)
}

// ConfigString returns the string value for the given key.
func ConfigString(key string) string {
	return Config.String(key)
}

// ConfigInt returns the int value for the given key.
func ConfigInt(key string) int {
	return Config.Int(key)
}

// ConfigBool returns the bool value for the given key.
func ConfigBool(key string) bool {
	return Config.Bool(key)
}

// ConfigDuration returns the duration value for the given key.
// Duration strings like "5m", "1h", "30s" are parsed automatically.
func ConfigDuration(key string) time.Duration {
	return Config.Duration(key)
}

// ConfigExists checks if the given key exists in the configuration.
func ConfigExists(key string) bool {
	return Config.Exists(key)
}

// ConfigMap returns the raw nested map rooted at the given key. Missing keys
// yield an empty map.
func ConfigMap(key string) map[string]interface{} {
	v := Config.Get(key)
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}
