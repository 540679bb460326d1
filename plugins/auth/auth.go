// Package auth provides the core password-authentication capability that a
// host runtime wires into its login path.
//
// Verification is delegated to password verifiers, which are responsible for
// deciding whether a user ID and password combination is valid. Verifier
// plugins register themselves with AddPasswordVerifier during Init; the host
// then calls CheckPassword, which consults each registered verifier in
// registration order until one accepts.
//
// Verifiers are total: every failure mode — wrong password, unreachable
// backend, policy refusal — collapses to false. The host never learns the
// reason for a denial; the only operator-visible trace is the log line.
package auth

import "context"

// PasswordVerifier is the capability interface implemented by verifier
// plugins. CheckPassword reports whether the given password is valid for the
// fully-qualified user ID.
//
// Implementations must be safe for concurrent use, hold no per-call state,
// and fail closed: any ambiguity or error denies the login.
type PasswordVerifier interface {
	CheckPassword(ctx context.Context, userID, password string) bool
}

// PasswordVerifierFunc adapts a function to the PasswordVerifier interface.
type PasswordVerifierFunc func(ctx context.Context, userID, password string) bool

func (f PasswordVerifierFunc) CheckPassword(ctx context.Context, userID, password string) bool {
	return f(ctx, userID, password)
}
