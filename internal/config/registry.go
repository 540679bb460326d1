package config

import (
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/knadh/koanf/v2"
)

// ConfigKeyInfo contains metadata about a known configuration key.
type ConfigKeyInfo struct {
	Key         string      // The full config key path (e.g., "auth.rest.endpoint")
	Description string      // Human-readable description of what this config does
	Type        string      // Type hint: "string", "bool", "duration", etc.
	Default     interface{} // Optional default value
}

var (
	registry   = make(map[string]ConfigKeyInfo)
	registryMu sync.RWMutex

	defaultsLoaded sync.Once
)

// RegisterConfigKey registers a known configuration key with metadata.
// Plugins call this from init() to document the keys they consult.
func RegisterConfigKey(info ConfigKeyInfo) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[info.Key] = info
}

// RegisterConfigKeys registers multiple configuration keys at once.
func RegisterConfigKeys(infos ...ConfigKeyInfo) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, info := range infos {
		registry[info.Key] = info
	}
}

// LookupConfigKey returns metadata for a registered config key.
func LookupConfigKey(key string) (ConfigKeyInfo, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	info, exists := registry[key]
	return info, exists
}

// AllRegisteredKeys returns all registered config keys sorted alphabetically.
func AllRegisteredKeys() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultConfigs returns registered config keys that carry a default value.
func DefaultConfigs() map[string]interface{} {
	registryMu.RLock()
	defer registryMu.RUnlock()

	defaults := make(map[string]interface{})
	for key, info := range registry {
		if info.Default != nil {
			defaults[key] = info.Default
		}
	}
	return defaults
}

// EnsureDefaultsLoaded applies registered defaults for keys that have not
// been set by any other source. Thread-safe, runs exactly once per process.
// It should be called after all plugin init() functions have run.
func EnsureDefaultsLoaded(k *koanf.Koanf) {
	defaultsLoaded.Do(func() {
		for key, val := range DefaultConfigs() {
			if !k.Exists(key) {
				k.Set(key, val)
			}
		}
	})
}

// FindSimilarKeys finds registered keys that are similar to the given key,
// for use in "did you mean" suggestions. Returns up to maxResults keys sorted
// by similarity (most similar first). Uses Levenshtein distance, with keys in
// the same namespace scored slightly closer.
func FindSimilarKeys(key string, maxResults int) []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	type scored struct {
		key   string
		score int // Lower is better
	}

	var candidates []scored
	keyPrefix := keyNamespace(key)

	for registeredKey := range registry {
		score := levenshtein.ComputeDistance(key, registeredKey)
		if keyPrefix != "" && keyPrefix == keyNamespace(registeredKey) && score > 0 {
			score--
		}
		if score <= 3 {
			candidates = append(candidates, scored{registeredKey, score})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score < candidates[j].score
	})

	result := make([]string, 0, maxResults)
	for i := 0; i < len(candidates) && i < maxResults; i++ {
		result = append(result, candidates[i].key)
	}
	return result
}

// keyNamespace extracts the namespace of a hierarchical key. For
// "policy.registration.username.enforceLowercase" it returns
// "policy.registration.username".
func keyNamespace(key string) string {
	lastDot := strings.LastIndex(key, ".")
	if lastDot == -1 {
		return ""
	}
	return key[:lastDot]
}

// HasRegisteredPrefix checks if any registered key is a prefix of the given
// key. Used to allow unknown keys under registered namespaces.
func HasRegisteredPrefix(key string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()

	parts := strings.Split(key, ".")
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], ".")
		if _, exists := registry[prefix]; exists {
			return true
		}
	}
	return false
}
