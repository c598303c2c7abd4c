package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarefista/tarefista/internal/api"
)

// fakeBackend records which calls were made and returns canned answers.
type fakeBackend struct {
	loginCreds    *api.Credentials
	loginErr      error
	registerCreds *api.Credentials
	registerErr   error
	userID        string
	userIDErr     error
	logoutErr     error
	loginCalls    int
	registerCalls int
	userIDCalls   int
	logoutCalls   int
}

func (f *fakeBackend) Login(_ context.Context, _, _ string) (*api.Credentials, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginCreds, nil
}

func (f *fakeBackend) Register(_ context.Context, _, _, _ string) (*api.Credentials, error) {
	f.registerCalls++
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerCreds, nil
}

func (f *fakeBackend) Logout(_ context.Context, _ string) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeBackend) UserID(_ context.Context, _ string) (string, error) {
	f.userIDCalls++
	if f.userIDErr != nil {
		return "", f.userIDErr
	}
	return f.userID, nil
}

func newTestCache(t *testing.T, backend *fakeBackend) (*Cache, *Store) {
	t.Helper()
	store := NewStore(t.TempDir())
	cache := NewCache(store, backend, withIDGenerator(func() string { return "generated-temp-id" }))
	return cache, store
}

func TestResolveWithNothingCachedMakesNoNetworkCall(t *testing.T) {
	backend := &fakeBackend{}
	cache, _ := newTestCache(t, backend)

	userID, err := cache.ResolveUserID(context.Background())
	require.NoError(t, err)

	assert.Empty(t, userID, "no identity yet is a valid state")
	assert.Zero(t, backend.userIDCalls, "resolution must not touch the backend")
	assert.Zero(t, backend.loginCalls)
}

func TestResolvePrefersCachedTempID(t *testing.T) {
	backend := &fakeBackend{userID: "user-1"}
	cache, store := newTestCache(t, backend)

	require.NoError(t, store.Set(KeyTempUserID, "temp-9"))
	require.NoError(t, store.Set(KeyAuthToken, "opaque-token"))

	ident, err := cache.Identity(context.Background())
	require.NoError(t, err)

	assert.Equal(t, api.Identity{TempUserID: "temp-9"}, ident)
	assert.Zero(t, backend.userIDCalls)
}

func TestResolveExchangesOpaqueTokenOnceAndCaches(t *testing.T) {
	backend := &fakeBackend{userID: "user-1"}
	cache, store := newTestCache(t, backend)

	require.NoError(t, store.Set(KeyAuthToken, "opaque-token"))

	ident, err := cache.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", ident.UserID)
	assert.Equal(t, 1, backend.userIDCalls)

	// Second resolution is served from the cached profile.
	ident, err = cache.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", ident.UserID)
	assert.Equal(t, 1, backend.userIDCalls)
}

func TestResolveDecodesUserIDFromJWTWithoutNetwork(t *testing.T) {
	backend := &fakeBackend{}
	cache, store := newTestCache(t, backend)

	// Unsigned JWT carrying {"uid":"user-7"}; only the claims matter here.
	token := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." +
		"eyJ1aWQiOiJ1c2VyLTcifQ."
	require.NoError(t, store.Set(KeyAuthToken, token))

	ident, err := cache.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-7", ident.UserID)
	assert.Zero(t, backend.userIDCalls, "embedded id avoids the exchange")
}

func TestResolveBackendUnreachable(t *testing.T) {
	backend := &fakeBackend{userIDErr: &api.Error{Op: "userId", Err: assert.AnError}}
	cache, store := newTestCache(t, backend)

	require.NoError(t, store.Set(KeyAuthToken, "opaque-token"))

	_, err := cache.Identity(context.Background())
	require.Error(t, err, "caller decides to fall back to empty identity")
}

func TestLoginPersistsSessionAndClearsTempID(t *testing.T) {
	backend := &fakeBackend{
		loginCreds: &api.Credentials{
			Token: "tok-123",
			User:  api.Profile{ID: "user-1", Email: "user@example.com"},
		},
	}
	cache, store := newTestCache(t, backend)
	require.NoError(t, store.Set(KeyTempUserID, "temp-9"))

	sess, err := cache.Login(context.Background(), "user@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", sess.UserID)
	assert.Equal(t, "tok-123", sess.Token)

	token, err := cache.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	ident, err := cache.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, api.Identity{UserID: "user-1"}, ident)
}

func TestLoginFailureLeavesCacheUntouched(t *testing.T) {
	serverErr := &api.Error{Op: "login", StatusCode: 401, Message: "Invalid email or password"}
	backend := &fakeBackend{loginErr: serverErr}
	cache, store := newTestCache(t, backend)
	require.NoError(t, store.Set(KeyTempUserID, "temp-9"))

	_, err := cache.Login(context.Background(), "user@example.com", "wrong")
	require.Error(t, err)

	// The server's message travels verbatim.
	assert.Equal(t, "Invalid email or password", api.ServerMessage(err))

	// Identity is unchanged.
	ident, identErr := cache.Identity(context.Background())
	require.NoError(t, identErr)
	assert.Equal(t, api.Identity{TempUserID: "temp-9"}, ident)

	token, tokenErr := cache.Token()
	require.NoError(t, tokenErr)
	assert.Empty(t, token)
}

func TestRegisterPersistsSession(t *testing.T) {
	backend := &fakeBackend{
		registerCreds: &api.Credentials{Token: "tok-456", User: api.Profile{ID: "user-2", Email: "new@example.com"}},
	}
	cache, store := newTestCache(t, backend)
	require.NoError(t, store.Set(KeyTempUserID, "temp-9"))

	sess, err := cache.Register(context.Background(), "New User", "new@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, 1, backend.registerCalls)
	assert.Equal(t, "user-2", sess.UserID)

	ident, err := cache.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, api.Identity{UserID: "user-2"}, ident, "registration supersedes the anonymous id")
}

func TestRegisterWithoutCredentialsNeedsLogin(t *testing.T) {
	backend := &fakeBackend{
		registerCreds: &api.Credentials{},
	}
	cache, _ := newTestCache(t, backend)

	_, err := cache.Register(context.Background(), "New User", "new@example.com", "secret")
	assert.ErrorIs(t, err, ErrRegistrationNeedsLogin)

	token, tokenErr := cache.Token()
	require.NoError(t, tokenErr)
	assert.Empty(t, token, "nothing is persisted without credentials")
}

func TestRegisterFailurePropagatesServerMessage(t *testing.T) {
	backend := &fakeBackend{
		registerErr: &api.Error{Op: "register", StatusCode: 409, Message: "Email already in use"},
	}
	cache, _ := newTestCache(t, backend)

	_, err := cache.Register(context.Background(), "New User", "new@example.com", "secret")
	require.Error(t, err)
	assert.Equal(t, "Email already in use", api.ServerMessage(err))
}

func TestLogoutClearsEverything(t *testing.T) {
	backend := &fakeBackend{
		loginCreds: &api.Credentials{Token: "tok-123", User: api.Profile{ID: "user-1"}},
	}
	cache, _ := newTestCache(t, backend)

	_, err := cache.Login(context.Background(), "user@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, cache.Logout(context.Background()))
	assert.Equal(t, 1, backend.logoutCalls)

	ident, err := cache.Identity(context.Background())
	require.NoError(t, err)
	assert.True(t, ident.IsZero(), "logout resets to the unresolved state")
	assert.Nil(t, cache.Profile())
}

func TestLogoutClearsLocallyEvenWhenBackendFails(t *testing.T) {
	backend := &fakeBackend{
		loginCreds: &api.Credentials{Token: "tok-123", User: api.Profile{ID: "user-1"}},
		logoutErr:  &api.Error{Op: "logout", Err: assert.AnError},
	}
	cache, _ := newTestCache(t, backend)

	_, err := cache.Login(context.Background(), "user@example.com", "secret")
	require.NoError(t, err)

	err = cache.Logout(context.Background())
	require.Error(t, err, "backend failure is reported")

	ident, identErr := cache.Identity(context.Background())
	require.NoError(t, identErr)
	assert.True(t, ident.IsZero(), "local state is cleared regardless")
}

func TestEnsureTempUserIDGeneratesOnce(t *testing.T) {
	backend := &fakeBackend{}
	cache, _ := newTestCache(t, backend)

	ident, err := cache.EnsureTempUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "generated-temp-id", ident.TempUserID)

	again, err := cache.EnsureTempUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ident, again)
}

func TestEnsureTempUserIDDoesNotShadowAuthenticatedUser(t *testing.T) {
	backend := &fakeBackend{
		loginCreds: &api.Credentials{Token: "tok-123", User: api.Profile{ID: "user-1"}},
	}
	cache, _ := newTestCache(t, backend)

	_, err := cache.Login(context.Background(), "user@example.com", "secret")
	require.NoError(t, err)

	ident, err := cache.EnsureTempUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", ident.UserID)
	assert.Empty(t, ident.TempUserID)
}

func TestAdoptTempUserID(t *testing.T) {
	backend := &fakeBackend{}
	cache, _ := newTestCache(t, backend)

	require.NoError(t, cache.AdoptTempUserID("server-temp"))

	ident, err := cache.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "server-temp", ident.TempUserID)

	// An existing id is never overwritten.
	require.NoError(t, cache.AdoptTempUserID("other"))
	ident, err = cache.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "server-temp", ident.TempUserID)
}

func TestUserIDFromToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "not a jwt", token: "opaque-blob", want: ""},
		{name: "empty", token: "", want: ""},
		{
			name: "uid claim",
			// {"alg":"none","typ":"JWT"} . {"uid":"user-7"}
			token: "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJ1aWQiOiJ1c2VyLTcifQ.",
			want:  "user-7",
		},
		{
			name: "sub claim",
			// {"alg":"none","typ":"JWT"} . {"sub":"user-8"}
			token: "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJ1c2VyLTgifQ.",
			want:  "user-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, userIDFromToken(tt.token))
		})
	}
}
