// Package host defines the contract that authentication providers consume
// from the chat-server runtime that loads them. The runtime owns the user
// directory and session issuance; providers only observe user existence and
// request provisioning of new local accounts.
package host

import "context"

// AccountService is the account-handling surface of the host runtime.
//
// Both operations are suspension points: implementations may block on the
// host's storage layer, and providers must observe the result of UserExists
// before deciding whether to call Register. Under concurrent duplicate logins
// for a not-yet-existing user, two Register calls are possible; the host
// layer is expected to tolerate that.
type AccountService interface {
	// UserExists reports whether a fully-qualified user ID is known to the
	// host's user directory.
	UserExists(ctx context.Context, userID string) (bool, error)

	// Register provisions a new local account for the given localpart. It
	// returns the newly minted fully-qualified user ID and an access
	// credential. Session issuance remains the host's concern; providers
	// should not interpret the credential.
	Register(ctx context.Context, localpart string) (userID string, accessToken string, err error)
}

// Localpart derives the local handle from a user identifier. A leading `@`
// sigil is stripped if present, and everything from the first `:` on is the
// host-assigned domain, which is discarded. The derivation is pure:
// `@name:domain`, `@name`, `name:domain` and `name` all yield `name`.
func Localpart(userID string) string {
	s := userID
	if len(s) > 0 && s[0] == '@' {
		s = s[1:]
	}
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return s[:i]
		}
	}
	return s
}

// UserID formats a fully-qualified user identifier from a localpart and the
// host's server name.
func UserID(localpart, serverName string) string {
	return "@" + localpart + ":" + serverName
}
