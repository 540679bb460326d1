// Package restauth provides a password verifier that delegates credential
// checks to an external REST identity service, and auto-provisions local
// accounts on first successful login.
//
// The verifier POSTs `{api_token, username, password}` form-encoded to the
// configured endpoint and trusts the JSON `success` field of the response.
// Any transport error, non-2xx status, or malformed body denies the login:
// the verification path is deliberately fail-closed and never surfaces an
// error to the host.
package restauth

import (
	"context"
	"net/http"

	"github.com/gatehouse-io/gatehouse"
	"github.com/gatehouse-io/gatehouse/errors"
	"github.com/gatehouse-io/gatehouse/host"
	"github.com/gatehouse-io/gatehouse/logging"
	"github.com/gatehouse-io/gatehouse/plugins/auth"
	"google.golang.org/grpc/codes"
)

const (
	PluginName   = "auth_rest"
	ProviderName = "rest"
)

// RestAuthOption allows configuration of the RestAuthPlugin.
type RestAuthOption func(*RestAuthPlugin)

// WithPolicy supplies an explicit policy, bypassing the global config.
func WithPolicy(p Policy) RestAuthOption {
	return func(ra *RestAuthPlugin) {
		ra.policy = p
		ra.policySet = true
	}
}

// WithHTTPClient overrides the HTTP client used for verification requests.
func WithHTTPClient(c *http.Client) RestAuthOption {
	return func(ra *RestAuthPlugin) {
		ra.client = c
	}
}

// WithAccounts overrides the host account service, which is otherwise taken
// from the auth plugin during Init.
func WithAccounts(s host.AccountService) RestAuthOption {
	return func(ra *RestAuthPlugin) {
		ra.accounts = s
	}
}

// Plugin returns a RestAuthPlugin for registration with a host registry.
// Policy is loaded from the global config during Init unless WithPolicy is
// given.
func Plugin(opts ...RestAuthOption) *RestAuthPlugin {
	ra := &RestAuthPlugin{}
	for _, opt := range opts {
		opt(ra)
	}
	return ra
}

// New constructs a standalone verifier from a policy and an account service,
// for use outside a plugin registry. It fails with ErrInvalidConfig if the
// policy has no endpoint.
func New(policy Policy, accounts host.AccountService, opts ...RestAuthOption) (*RestAuthPlugin, error) {
	ra := Plugin(opts...)
	ra.policy = policy
	ra.policySet = true
	ra.accounts = accounts
	if err := ra.validate(); err != nil {
		return nil, err
	}
	ra.initClient()
	return ra, nil
}

// RestAuthPlugin implements auth.PasswordVerifier against an external REST
// identity service. All fields are fixed by the end of Init; CheckPassword
// holds no per-call state and is safe for concurrent use.
type RestAuthPlugin struct {
	policy    Policy
	policySet bool
	client    *http.Client
	accounts  host.AccountService
}

// From gatehouse.Plugin.
func (ra *RestAuthPlugin) Name() string {
	return PluginName
}

// From gatehouse.DependentPlugin.
func (ra *RestAuthPlugin) Deps() []string {
	return []string{auth.PluginName}
}

// From gatehouse.InitializablePlugin.
func (ra *RestAuthPlugin) Init(ctx context.Context, r *gatehouse.Registry) error {
	if !ra.policySet {
		policy, err := PolicyFromConfig()
		if err != nil {
			return err
		}
		ra.policy = policy
	}
	if err := ra.validate(); err != nil {
		return err
	}
	ra.initClient()

	ap := r.Get(auth.PluginName).(*auth.AuthPlugin)
	if ra.accounts == nil {
		ra.accounts = ap.Accounts()
	}
	ap.AddPasswordVerifier(ProviderName, ra)

	logging.Infow(ctx, "restauth: provider registered",
		"endpoint", ra.policy.Endpoint,
		"apiTokenProvided", ra.policy.APIToken != "",
		"enforceLowercase", ra.policy.EnforceLowercase,
	)
	return nil
}

// Policy returns the immutable policy the verifier operates under.
func (ra *RestAuthPlugin) Policy() Policy {
	return ra.policy
}

func (ra *RestAuthPlugin) validate() error {
	if ra.policy.Endpoint == "" {
		return errors.Mark(ErrInvalidConfig, 0).
			Append("missing endpoint").
			WithCode(codes.FailedPrecondition)
	}
	return nil
}

func (ra *RestAuthPlugin) initClient() {
	if ra.client == nil {
		ra.client = &http.Client{Timeout: ra.policy.Timeout}
	}
}
