package auth

import (
	"context"

	"github.com/gatehouse-io/gatehouse"
	"github.com/gatehouse-io/gatehouse/host"
	"github.com/gatehouse-io/gatehouse/logging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Constant name for identifying the core auth plugin.
const PluginName = "auth"

// AuthOption allows configuration of the AuthPlugin.
type AuthOption func(*AuthPlugin)

// WithAccountService tells the auth plugin which host account service
// verifiers should provision against.
func WithAccountService(s host.AccountService) AuthOption {
	return func(ap *AuthPlugin) {
		ap.accounts = s
	}
}

// Plugin returns a new AuthPlugin.
func Plugin(opts ...AuthOption) *AuthPlugin {
	ap := &AuthPlugin{}
	for _, opt := range opts {
		opt(ap)
	}
	return ap
}

// AuthPlugin holds the ordered set of registered password verifiers and the
// host account service they share. Verifier plugins depend on this plugin
// and register themselves during Init.
type AuthPlugin struct {
	accounts  host.AccountService
	order     []string
	verifiers map[string]PasswordVerifier
}

// From gatehouse.Plugin.
func (ap *AuthPlugin) Name() string {
	return PluginName
}

// From gatehouse.InitializablePlugin.
func (ap *AuthPlugin) Init(ctx context.Context, r *gatehouse.Registry) error {
	if ap.accounts == nil {
		return status.Error(codes.FailedPrecondition, "auth: plugin requires a host account service")
	}
	return nil
}

// Accounts returns the host account service shared with verifier plugins.
func (ap *AuthPlugin) Accounts() host.AccountService {
	return ap.accounts
}

// AddPasswordVerifier is called by verifier plugins to hook themselves into
// the login path. Verifiers are consulted in registration order; registering
// the same name twice replaces the earlier verifier in place.
func (ap *AuthPlugin) AddPasswordVerifier(name string, v PasswordVerifier) {
	if ap.verifiers == nil {
		ap.verifiers = map[string]PasswordVerifier{}
	}
	if _, ok := ap.verifiers[name]; !ok {
		ap.order = append(ap.order, name)
	}
	ap.verifiers[name] = v
}

// CheckPassword consults each registered verifier until one accepts the
// credentials. With no verifiers registered every login is denied.
func (ap *AuthPlugin) CheckPassword(ctx context.Context, userID, password string) bool {
	for _, name := range ap.order {
		if ap.verifiers[name].CheckPassword(ctx, userID, password) {
			logging.Infow(ctx, "auth: login verified", "provider", name, "user", userID)
			return true
		}
	}
	logging.Infow(ctx, "auth: login denied", "user", userID)
	return false
}
