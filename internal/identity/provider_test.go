package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/weiawesome/framez/internal/dbtest"
	"github.com/weiawesome/framez/pkg/jwt"
	"github.com/weiawesome/framez/pkg/pubsub"
)

func newProvider(t *testing.T) (*GormProvider, *jwt.Manager) {
	t.Helper()
	tokens, err := jwt.NewManager(jwt.Config{Secret: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	return NewGormProvider(dbtest.New(t), tokens, pubsub.NewMemoryPubSub(4), bcrypt.MinCost), tokens
}

func TestMessage(t *testing.T) {
	tests := map[Code]string{
		CodeEmailAlreadyInUse:    "This email is already registered",
		CodeInvalidEmail:         "Invalid email address",
		CodeWeakPassword:         "Password should be at least 6 characters",
		CodeUserNotFound:         "No account found with this email",
		CodeWrongPassword:        "Incorrect password",
		CodeInvalidCredential:    "Invalid email or password",
		CodeNetworkRequestFailed: "Network error. Please check your connection",
		CodeUnknown:              "An error occurred. Please try again",
	}
	for code, want := range tests {
		assert.Equal(t, want, Message(code), code)
	}
	assert.Equal(t, Message(CodeUnknown), Message("auth/too-many-requests"))
}

func TestCodeOf(t *testing.T) {
	wrapped := errors.Join(errors.New("ctx"), newError(CodeWrongPassword, nil))
	assert.Equal(t, CodeWrongPassword, CodeOf(wrapped))
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("plain")))
	assert.Equal(t, CodeNetworkRequestFailed, CodeOf(storeError(context.DeadlineExceeded)))
}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()
	p, _ := newProvider(t)

	acct, err := p.CreateAccount(ctx, "  Alice@Example.COM ", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, acct.ID)
	assert.Equal(t, "alice@example.com", acct.Email)

	_, err = p.CreateAccount(ctx, "alice@example.com", "secret1")
	assert.Equal(t, CodeEmailAlreadyInUse, CodeOf(err))

	_, err = p.CreateAccount(ctx, "nope", "secret1")
	assert.Equal(t, CodeInvalidEmail, CodeOf(err))

	_, err = p.CreateAccount(ctx, "bob@example.com", "12345")
	assert.Equal(t, CodeWeakPassword, CodeOf(err))
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	p, _ := newProvider(t)

	created, err := p.CreateAccount(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, p.SetDisplayName(ctx, created.ID, "Alice"))

	acct, err := p.Authenticate(ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, acct.ID)
	assert.Equal(t, "Alice", acct.DisplayName)

	_, err = p.Authenticate(ctx, "alice@example.com", "wrong-pass")
	assert.Equal(t, CodeWrongPassword, CodeOf(err))
	assert.Equal(t, "Incorrect password", err.Error())

	_, err = p.Authenticate(ctx, "nobody@example.com", "secret1")
	assert.Equal(t, CodeUserNotFound, CodeOf(err))
}

func TestSessionLifecycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p, tokens := newProvider(t)

	acct, err := p.CreateAccount(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	changes, err := p.Observe(ctx, acct.ID)
	require.NoError(t, err)

	pair, err := p.IssueSession(ctx, acct)
	require.NoError(t, err)
	assertChange(t, changes, true)

	refreshed, refreshedAcct, err := p.RefreshSession(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, refreshedAcct.ID)
	claims, err := tokens.ValidateAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)

	_, _, err = p.RefreshSession(ctx, pair.AccessToken)
	assert.Equal(t, CodeInvalidCredential, CodeOf(err))

	time.Sleep(2 * time.Millisecond)
	require.NoError(t, p.SignOut(ctx, acct.ID))
	assertChange(t, changes, false)

	_, err = tokens.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrRevokedToken)
}

func assertChange(t *testing.T, ch <-chan StateChange, signedIn bool) {
	t.Helper()
	select {
	case c := <-ch:
		assert.Equal(t, signedIn, c.SignedIn)
	case <-time.After(time.Second):
		t.Fatalf("no state change (want signedIn=%v)", signedIn)
	}
}
