package auth

import (
	"context"
	"testing"

	"github.com/gatehouse-io/gatehouse"
	"github.com/gatehouse-io/gatehouse/host"
	"github.com/gatehouse-io/gatehouse/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func testContext(t *testing.T) context.Context {
	return logging.With(context.Background(), logging.NewZapLogger(zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCallerSkip(2))).Sugar()))
}

func TestAuthPlugin_Init(t *testing.T) {
	ctx := testContext(t)

	t.Run("missing account service", func(t *testing.T) {
		r := &gatehouse.Registry{}
		r.Register(Plugin())
		err := r.Init(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires a host account service")
	})

	t.Run("with account service", func(t *testing.T) {
		r := &gatehouse.Registry{}
		accounts := host.NewInMemoryAccounts("example.com")
		r.Register(Plugin(WithAccountService(accounts)))
		require.NoError(t, r.Init(ctx))

		ap := r.Get(PluginName).(*AuthPlugin)
		assert.Equal(t, accounts, ap.Accounts())
	})
}

func TestAuthPlugin_CheckPassword(t *testing.T) {
	ctx := testContext(t)

	accept := PasswordVerifierFunc(func(ctx context.Context, userID, password string) bool {
		return true
	})
	deny := PasswordVerifierFunc(func(ctx context.Context, userID, password string) bool {
		return false
	})

	t.Run("no verifiers denies", func(t *testing.T) {
		ap := Plugin()
		assert.False(t, ap.CheckPassword(ctx, "@alice:example.com", "pw"))
	})

	t.Run("first success wins", func(t *testing.T) {
		var calls []string
		ap := Plugin()
		ap.AddPasswordVerifier("deny", PasswordVerifierFunc(func(ctx context.Context, userID, password string) bool {
			calls = append(calls, "deny")
			return false
		}))
		ap.AddPasswordVerifier("accept", PasswordVerifierFunc(func(ctx context.Context, userID, password string) bool {
			calls = append(calls, "accept")
			return true
		}))
		ap.AddPasswordVerifier("never", PasswordVerifierFunc(func(ctx context.Context, userID, password string) bool {
			calls = append(calls, "never")
			return true
		}))

		assert.True(t, ap.CheckPassword(ctx, "@alice:example.com", "pw"))
		assert.Equal(t, []string{"deny", "accept"}, calls)
	})

	t.Run("all deny", func(t *testing.T) {
		ap := Plugin()
		ap.AddPasswordVerifier("a", deny)
		ap.AddPasswordVerifier("b", deny)
		assert.False(t, ap.CheckPassword(ctx, "@alice:example.com", "pw"))
	})

	t.Run("replacing keeps order", func(t *testing.T) {
		ap := Plugin()
		ap.AddPasswordVerifier("a", deny)
		ap.AddPasswordVerifier("a", accept)
		assert.True(t, ap.CheckPassword(ctx, "@alice:example.com", "pw"))
		assert.Len(t, ap.order, 1)
	})
}
