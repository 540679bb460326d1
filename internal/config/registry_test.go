package config

import (
	"testing"

	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLookup(t *testing.T) {
	RegisterConfigKey(ConfigKeyInfo{
		Key:         "test.lookup.key",
		Description: "a test key",
		Type:        "string",
	})

	info, ok := LookupConfigKey("test.lookup.key")
	require.True(t, ok)
	assert.Equal(t, "a test key", info.Description)

	_, ok = LookupConfigKey("test.lookup.missing")
	assert.False(t, ok)
}

func TestDefaultConfigs(t *testing.T) {
	RegisterConfigKeys(
		ConfigKeyInfo{Key: "test.defaults.a", Type: "bool", Default: true},
		ConfigKeyInfo{Key: "test.defaults.b", Type: "string"},
	)

	defaults := DefaultConfigs()
	assert.Equal(t, true, defaults["test.defaults.a"])
	_, hasB := defaults["test.defaults.b"]
	assert.False(t, hasB, "keys without defaults should not appear")
}

func TestEnsureDefaultsLoaded(t *testing.T) {
	RegisterConfigKey(ConfigKeyInfo{Key: "test.ensure.flag", Type: "bool", Default: true})

	k := koanf.New(".")
	k.Set("test.ensure.other", "explicit")
	EnsureDefaultsLoaded(k)

	assert.True(t, k.Bool("test.ensure.flag"))
	assert.Equal(t, "explicit", k.String("test.ensure.other"))
}

func TestFindSimilarKeys(t *testing.T) {
	RegisterConfigKeys(
		ConfigKeyInfo{Key: "auth.rest.endpoint", Type: "string"},
		ConfigKeyInfo{Key: "auth.rest.apiToken", Type: "string"},
	)

	got := FindSimilarKeys("auth.rest.endpoit", 3)
	require.NotEmpty(t, got)
	assert.Equal(t, "auth.rest.endpoint", got[0])

	assert.Empty(t, FindSimilarKeys("completely.unrelated.namespace.key", 3))
}

func TestHasRegisteredPrefix(t *testing.T) {
	RegisterConfigKey(ConfigKeyInfo{Key: "policy", Type: "map"})

	assert.True(t, HasRegisteredPrefix("policy.registration.username.enforceLowercase"))
	assert.False(t, HasRegisteredPrefix("nonsense.deeply.nested"))
}
