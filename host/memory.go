package host

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gatehouse-io/gatehouse/errors"
)

// InMemoryAccounts is a reference AccountService backed by a map. It stands
// in for the host's user directory in tests and demos; it is not a durable
// account store.
//
// Access credentials are HS256 JWTs with the user ID as subject and a uuid
// session ID, mirroring what a real host would hand back from registration.
type InMemoryAccounts struct {
	mu         sync.Mutex
	serverName string
	signingKey []byte
	users      map[string]bool
}

// MemoryOption configures an InMemoryAccounts.
type MemoryOption func(*InMemoryAccounts)

// WithSigningKey sets the key used to sign access credentials. Without it a
// random per-instance key is generated.
func WithSigningKey(key string) MemoryOption {
	return func(a *InMemoryAccounts) {
		a.signingKey = []byte(key)
	}
}

// NewInMemoryAccounts returns an empty account service for the given server
// name.
func NewInMemoryAccounts(serverName string, opts ...MemoryOption) *InMemoryAccounts {
	a := &InMemoryAccounts{
		serverName: serverName,
		users:      map[string]bool{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.signingKey == nil {
		a.signingKey = randomKey()
	}
	return a
}

func randomKey() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("host: failed to generate signing key: " + err.Error())
	}
	return []byte(hex.EncodeToString(key))
}

// Seed marks the given fully-qualified user IDs as existing.
func (a *InMemoryAccounts) Seed(userIDs ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range userIDs {
		a.users[id] = true
	}
}

// ServerName returns the domain new registrations are scoped to.
func (a *InMemoryAccounts) ServerName() string {
	return a.serverName
}

// UserExists implements AccountService.
func (a *InMemoryAccounts) UserExists(ctx context.Context, userID string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.users[userID], nil
}

// Register implements AccountService. Registering an already-known localpart
// is tolerated and yields a fresh credential, since providers may race on
// first login.
func (a *InMemoryAccounts) Register(ctx context.Context, localpart string) (string, string, error) {
	if localpart == "" {
		return "", "", errors.Errorf("host: cannot register empty localpart")
	}

	userID := UserID(localpart, a.serverName)

	a.mu.Lock()
	a.users[userID] = true
	a.mu.Unlock()

	token, err := a.mintAccessToken(userID)
	if err != nil {
		return "", "", err
	}
	return userID, token, nil
}

func (a *InMemoryAccounts) mintAccessToken(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		Subject:  userID,
		Issuer:   a.serverName,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(a.signingKey)
	if err != nil {
		return "", errors.Wrap(err, 0)
	}
	return ss, nil
}
