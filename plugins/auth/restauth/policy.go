package restauth

import (
	"strings"
	"time"

	"github.com/gatehouse-io/gatehouse"
	"github.com/gatehouse-io/gatehouse/errors"
	"github.com/knadh/koanf/v2"
	"google.golang.org/grpc/codes"
)

// Raised when required configuration is missing or malformed. Fatal at
// construction; never produced by the login path.
var ErrInvalidConfig = errors.NewC("restauth: invalid config", codes.InvalidArgument)

func init() {
	gatehouse.RegisterConfigKeys(
		gatehouse.ConfigKeyInfo{
			Key:         "auth.rest.endpoint",
			Description: "URL of the external credential verification service",
			Type:        "string",
		},
		gatehouse.ConfigKeyInfo{
			Key:         "auth.rest.apiToken",
			Description: "Opaque token included in every verification request (may be empty)",
			Type:        "string",
		},
		gatehouse.ConfigKeyInfo{
			Key:         "auth.rest.timeout",
			Description: "HTTP timeout for verification requests (zero uses transport defaults)",
			Type:        "duration",
			Default:     "10s",
		},
		gatehouse.ConfigKeyInfo{
			Key:         "policy",
			Description: "Nested registration/login policy mapping",
			Type:        "map",
		},
	)
}

// Policy holds the immutable configuration the REST verifier operates under.
// It is built once at startup and read-only for the lifetime of the process.
type Policy struct {
	// Endpoint is the target of the verification call. Required.
	Endpoint string

	// APIToken is included verbatim in every verification request. The key is
	// required in config, but the value may be empty.
	APIToken string

	// Timeout bounds each verification request. Zero relies on transport
	// defaults.
	Timeout time.Duration

	// EnforceLowercase refuses to provision accounts whose localpart contains
	// uppercase characters.
	EnforceLowercase bool

	// Reserved flags, parsed and forwarded but not consulted by the
	// verification path. Surrounding host machinery may act on them.
	SetNameOnRegister bool
	SetNameOnLogin    bool
	UpdateThreepid    bool
	ReplaceThreepid   bool
}

// DefaultPolicy returns the documented defaults for all optional fields.
func DefaultPolicy() Policy {
	return Policy{
		Timeout:           10 * time.Second,
		EnforceLowercase:  true,
		SetNameOnRegister: true,
		SetNameOnLogin:    false,
		UpdateThreepid:    true,
		ReplaceThreepid:   false,
	}
}

// ParsePolicy builds a Policy from a host-supplied configuration mapping.
//
// The `endpoint` and `api_token` keys must be present; missing keys produce
// an ErrInvalidConfig naming each absent key. All nested `policy` keys are
// optional: absence, or a structurally wrong value where a mapping was
// expected, silently falls back to the documented default.
func ParsePolicy(cfg map[string]interface{}) (Policy, error) {
	var missing []string
	for _, key := range []string{"endpoint", "api_token"} {
		if _, ok := cfg[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Policy{}, errors.Mark(ErrInvalidConfig, 0).
			Append("missing required config values: " + strings.Join(missing, ", "))
	}

	p := DefaultPolicy()
	p.Endpoint, _ = cfg["endpoint"].(string)
	p.APIToken, _ = cfg["api_token"].(string)

	p.EnforceLowercase = nestedBool(cfg, p.EnforceLowercase,
		"policy", "registration", "username", "enforceLowercase")
	p.SetNameOnRegister = nestedBool(cfg, p.SetNameOnRegister,
		"policy", "registration", "profile", "name")
	p.SetNameOnLogin = nestedBool(cfg, p.SetNameOnLogin,
		"policy", "login", "profile", "name")
	p.UpdateThreepid = nestedBool(cfg, p.UpdateThreepid,
		"policy", "all", "threepid", "update")
	p.ReplaceThreepid = nestedBool(cfg, p.ReplaceThreepid,
		"policy", "all", "threepid", "replace")

	return p, nil
}

// PolicyFromConfig builds a Policy from the global gatehouse config. The
// `auth.rest.endpoint` and `auth.rest.apiToken` keys are required; nested
// `policy` keys fall back to defaults exactly as in ParsePolicy.
func PolicyFromConfig() (Policy, error) {
	return PolicyFromKoanf(gatehouse.Config)
}

// PolicyFromKoanf builds a Policy from an explicit koanf instance, for hosts
// that manage configuration themselves.
func PolicyFromKoanf(k *koanf.Koanf) (Policy, error) {
	var missing []string
	for _, key := range []string{"auth.rest.endpoint", "auth.rest.apiToken"} {
		if !k.Exists(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Policy{}, errors.Mark(ErrInvalidConfig, 0).
			Append("missing required config values: " + strings.Join(missing, ", "))
	}

	p := DefaultPolicy()
	p.Endpoint = k.String("auth.rest.endpoint")
	p.APIToken = k.String("auth.rest.apiToken")
	if k.Exists("auth.rest.timeout") {
		p.Timeout = k.Duration("auth.rest.timeout")
	}

	cfg := map[string]interface{}{"policy": k.Get("policy")}
	p.EnforceLowercase = nestedBool(cfg, p.EnforceLowercase,
		"policy", "registration", "username", "enforceLowercase")
	p.SetNameOnRegister = nestedBool(cfg, p.SetNameOnRegister,
		"policy", "registration", "profile", "name")
	p.SetNameOnLogin = nestedBool(cfg, p.SetNameOnLogin,
		"policy", "login", "profile", "name")
	p.UpdateThreepid = nestedBool(cfg, p.UpdateThreepid,
		"policy", "all", "threepid", "update")
	p.ReplaceThreepid = nestedBool(cfg, p.ReplaceThreepid,
		"policy", "all", "threepid", "replace")

	return p, nil
}

// nestedBool walks a chain of nested maps and returns the boolean found at
// the end of the path. Any absent key, non-map intermediate value, or
// non-bool leaf yields the provided default.
func nestedBool(m map[string]interface{}, def bool, path ...string) bool {
	var cur interface{} = m
	for _, key := range path {
		mm, ok := cur.(map[string]interface{})
		if !ok {
			return def
		}
		cur, ok = mm[key]
		if !ok {
			return def
		}
	}
	b, ok := cur.(bool)
	if !ok {
		return def
	}
	return b
}
