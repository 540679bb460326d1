package restauth

import (
	"testing"
	"time"

	"github.com/gatehouse-io/gatehouse"
	"github.com/gatehouse-io/gatehouse/errors"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestParsePolicy_Defaults(t *testing.T) {
	p, err := ParsePolicy(map[string]interface{}{
		"endpoint":  "https://id.example.com/auth",
		"api_token": "hunter2",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://id.example.com/auth", p.Endpoint)
	assert.Equal(t, "hunter2", p.APIToken)
	assert.Equal(t, 10*time.Second, p.Timeout)
	assert.True(t, p.EnforceLowercase)
	assert.True(t, p.SetNameOnRegister)
	assert.False(t, p.SetNameOnLogin)
	assert.True(t, p.UpdateThreepid)
	assert.False(t, p.ReplaceThreepid)
}

func TestParsePolicy_MissingKeys(t *testing.T) {
	_, err := ParsePolicy(map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint")
	assert.Contains(t, err.Error(), "api_token")
	assert.Equal(t, codes.InvalidArgument, errors.Code(err))

	_, err = ParsePolicy(map[string]interface{}{"api_token": ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint")
	assert.NotContains(t, err.Error(), "api_token")
}

func TestParsePolicy_EmptyTokenAllowed(t *testing.T) {
	p, err := ParsePolicy(map[string]interface{}{
		"endpoint":  "https://id.example.com/auth",
		"api_token": "",
	})
	require.NoError(t, err)
	assert.Equal(t, "", p.APIToken)
}

func TestParsePolicy_NestedOverrides(t *testing.T) {
	p, err := ParsePolicy(map[string]interface{}{
		"endpoint":  "https://id.example.com/auth",
		"api_token": "t",
		"policy": map[string]interface{}{
			"registration": map[string]interface{}{
				"username": map[string]interface{}{"enforceLowercase": false},
				"profile":  map[string]interface{}{"name": false},
			},
			"login": map[string]interface{}{
				"profile": map[string]interface{}{"name": true},
			},
			"all": map[string]interface{}{
				"threepid": map[string]interface{}{"update": false, "replace": true},
			},
		},
	})
	require.NoError(t, err)

	assert.False(t, p.EnforceLowercase)
	assert.False(t, p.SetNameOnRegister)
	assert.True(t, p.SetNameOnLogin)
	assert.False(t, p.UpdateThreepid)
	assert.True(t, p.ReplaceThreepid)
}

func TestPolicyFromKoanf(t *testing.T) {
	// newKoanf builds an isolated config instance so subtests cannot
	// observe each other through process-wide state.
	newKoanf := func(t *testing.T, values map[string]interface{}) *koanf.Koanf {
		t.Helper()
		k := koanf.New(".")
		require.NoError(t, k.Load(confmap.Provider(values, "."), nil))
		return k
	}

	t.Run("missing keys", func(t *testing.T) {
		_, err := PolicyFromKoanf(newKoanf(t, nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth.rest.endpoint")
		assert.Contains(t, err.Error(), "auth.rest.apiToken")
	})

	t.Run("loaded", func(t *testing.T) {
		k := newKoanf(t, map[string]interface{}{
			"auth.rest.endpoint": "https://id.example.com/auth",
			"auth.rest.apiToken": "",
			"auth.rest.timeout":  "3s",
			"policy.registration.username.enforceLowercase": false,
		})

		p, err := PolicyFromKoanf(k)
		require.NoError(t, err)
		assert.Equal(t, "https://id.example.com/auth", p.Endpoint)
		assert.Equal(t, "", p.APIToken)
		assert.Equal(t, 3*time.Second, p.Timeout)
		assert.False(t, p.EnforceLowercase)
		assert.True(t, p.SetNameOnRegister, "unset nested keys keep defaults")
	})
}

func TestPolicyFromConfig_Global(t *testing.T) {
	gatehouse.LoadConfigDefaults(map[string]interface{}{
		"auth.rest.endpoint": "https://id.example.com/auth",
		"auth.rest.apiToken": "t",
	})

	p, err := PolicyFromConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://id.example.com/auth", p.Endpoint)
	assert.Equal(t, "t", p.APIToken)
}

func TestParsePolicy_SilentFallback(t *testing.T) {
	tests := []struct {
		name   string
		policy interface{}
	}{
		{name: "policy is a string", policy: "not-a-map"},
		{name: "policy is nil", policy: nil},
		{name: "intermediate node wrong type", policy: map[string]interface{}{
			"registration": "oops",
		}},
		{name: "leaf wrong type", policy: map[string]interface{}{
			"registration": map[string]interface{}{
				"username": map[string]interface{}{"enforceLowercase": "yes"},
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePolicy(map[string]interface{}{
				"endpoint":  "https://id.example.com/auth",
				"api_token": "t",
				"policy":    tt.policy,
			})
			require.NoError(t, err)
			assert.Equal(t, DefaultPolicy().EnforceLowercase, p.EnforceLowercase)
			assert.Equal(t, DefaultPolicy().SetNameOnRegister, p.SetNameOnRegister)
		})
	}
}
