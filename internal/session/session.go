package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tarefista/tarefista/internal/api"
	"github.com/tarefista/tarefista/internal/logging"
)

// Backend is the slice of the API client the session cache depends on.
type Backend interface {
	Login(ctx context.Context, email, password string) (*api.Credentials, error)
	Register(ctx context.Context, name, email, password string) (*api.Credentials, error)
	Logout(ctx context.Context, token string) error
	UserID(ctx context.Context, token string) (string, error)
}

// Session describes a resolved authenticated session.
type Session struct {
	UserID string
	Token  string
	User   api.Profile
}

// Cache resolves the identity used to scope backend queries, persisting it
// in a Store. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	store   *Store
	backend Backend
	logger  logging.Logger
	newID   func() string
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// withIDGenerator overrides anonymous id generation; used by tests.
func withIDGenerator(gen func() string) CacheOption {
	return func(c *Cache) {
		c.newID = gen
	}
}

// NewCache creates a session cache over the given store and backend.
func NewCache(store *Store, backend Backend, opts ...CacheOption) *Cache {
	c := &Cache{
		store:   store,
		backend: backend,
		logger:  logging.DefaultLogger(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Identity resolves the current scoping identity without creating one.
//
// Resolution order: cached anonymous temp id, then cached profile, then the
// bearer token (its embedded user id when decodable, otherwise one exchange
// through the backend whose result is cached). When nothing is cached the
// zero Identity is returned with no network call: "no identity yet" is a
// valid state, not an error.
func (c *Cache) Identity(ctx context.Context) (api.Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identityLocked(ctx)
}

func (c *Cache) identityLocked(ctx context.Context) (api.Identity, error) {
	tempID, err := c.store.Get(KeyTempUserID)
	if err != nil {
		return api.Identity{}, err
	}
	if tempID != "" {
		return api.Identity{TempUserID: tempID}, nil
	}

	if profile := c.cachedProfile(); profile != nil && profile.ID != "" {
		return api.Identity{UserID: profile.ID}, nil
	}

	token, err := c.store.Get(KeyAuthToken)
	if err != nil {
		return api.Identity{}, err
	}
	if token == "" {
		return api.Identity{}, nil
	}

	if userID := userIDFromToken(token); userID != "" {
		c.cacheProfile(api.Profile{ID: userID})
		return api.Identity{UserID: userID}, nil
	}

	userID, err := c.backend.UserID(ctx, token)
	if err != nil {
		return api.Identity{}, fmt.Errorf("exchange token for user id: %w", err)
	}

	c.cacheProfile(api.Profile{ID: userID})
	return api.Identity{UserID: userID}, nil
}

// ResolveUserID returns whichever scoping id is active, or "" when no
// identity has been established.
func (c *Cache) ResolveUserID(ctx context.Context) (string, error) {
	ident, err := c.Identity(ctx)
	if err != nil {
		return "", err
	}
	return ident.String(), nil
}

// EnsureTempUserID returns the active identity, generating and persisting a
// fresh anonymous temp id when none exists. Called before an unauthenticated
// user's first task is created so the task can be scoped.
func (c *Cache) EnsureTempUserID(ctx context.Context) (api.Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ident, err := c.identityLocked(ctx)
	if err == nil && !ident.IsZero() {
		return ident, nil
	}
	// A resolution failure here means the backend was unreachable for a
	// token exchange; a fresh anonymous id would shadow the real account.
	if err != nil {
		return api.Identity{}, err
	}

	tempID := c.newID()
	if err := c.store.Set(KeyTempUserID, tempID); err != nil {
		return api.Identity{}, err
	}

	c.logger.Info("generated anonymous identity")
	return api.Identity{TempUserID: tempID}, nil
}

// AdoptTempUserID persists a server-assigned anonymous id, unless an
// identity already exists locally.
func (c *Cache) AdoptTempUserID(id string) error {
	if id == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.store.Get(KeyTempUserID)
	if err != nil {
		return err
	}
	if existing != "" {
		return nil
	}
	return c.store.Set(KeyTempUserID, id)
}

// Login authenticates against the backend and persists the session. On
// failure nothing is changed locally and the server's error message is
// preserved verbatim in the returned error.
func (c *Cache) Login(ctx context.Context, email, password string) (*Session, error) {
	creds, err := c.backend.Login(ctx, email, password)
	if err != nil {
		c.logger.Warn("login failed",
			logging.KeyUserHash, logging.AnonymizeEmail(email),
			logging.KeyError, err.Error(),
		)
		return nil, err
	}

	sess, err := c.persistCredentials(ctx, creds)
	if err != nil {
		return nil, err
	}

	c.logger.Info("logged in",
		logging.KeyUserHash, logging.AnonymizeEmail(email),
	)
	return sess, nil
}

// ErrRegistrationNeedsLogin reports that the account was created but the
// backend did not log the new user in; a Login call must follow.
var ErrRegistrationNeedsLogin = errors.New("account created, log in to continue")

// Register creates a new account and persists the resulting session
// exactly like Login does. When the backend creates the account without
// issuing credentials, ErrRegistrationNeedsLogin is returned.
func (c *Cache) Register(ctx context.Context, name, email, password string) (*Session, error) {
	creds, err := c.backend.Register(ctx, name, email, password)
	if err != nil {
		c.logger.Warn("registration failed",
			logging.KeyUserHash, logging.AnonymizeEmail(email),
			logging.KeyError, err.Error(),
		)
		return nil, err
	}

	if creds.Token == "" {
		return nil, ErrRegistrationNeedsLogin
	}

	sess, err := c.persistCredentials(ctx, creds)
	if err != nil {
		return nil, err
	}

	c.logger.Info("registered",
		logging.KeyUserHash, logging.AnonymizeEmail(email),
	)
	return sess, nil
}

func (c *Cache) persistCredentials(ctx context.Context, creds *api.Credentials) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	userID := creds.User.ID
	if userID == "" {
		userID = userIDFromToken(creds.Token)
	}
	if userID == "" {
		// Last resort: ask the backend. The token is already valid.
		var err error
		userID, err = c.backend.UserID(ctx, creds.Token)
		if err != nil {
			return nil, fmt.Errorf("resolve user id after login: %w", err)
		}
	}

	profile := creds.User
	profile.ID = userID

	if err := c.store.Set(KeyAuthToken, creds.Token); err != nil {
		return nil, err
	}
	c.cacheProfile(profile)

	// The anonymous identity is superseded; keeping it would shadow the
	// authenticated one on the next resolution.
	if err := c.store.Delete(KeyTempUserID); err != nil {
		return nil, err
	}

	return &Session{UserID: userID, Token: creds.Token, User: profile}, nil
}

// Logout clears all cached identity material. The server-side logout is
// best-effort: local state is reset even when the backend call fails, so a
// dead backend can never pin a session on the device.
func (c *Cache) Logout(ctx context.Context) error {
	c.mu.Lock()
	token, err := c.store.Get(KeyAuthToken)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	var backendErr error
	if token != "" {
		if backendErr = c.backend.Logout(ctx, token); backendErr != nil {
			c.logger.Warn("server-side logout failed",
				logging.KeyError, backendErr.Error(),
			)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range []string{KeyAuthToken, KeyTempUserID, KeyUser} {
		if err := c.store.Delete(key); err != nil {
			return err
		}
	}

	c.logger.Info("logged out")
	return backendErr
}

// Token returns the cached bearer token, or "" when not authenticated.
func (c *Cache) Token() (string, error) {
	return c.store.Get(KeyAuthToken)
}

// Profile returns the cached user profile, or nil when none is cached.
func (c *Cache) Profile() *api.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cachedProfile()
}

func (c *Cache) cachedProfile() *api.Profile {
	raw, err := c.store.Get(KeyUser)
	if err != nil || raw == "" {
		return nil
	}

	var profile api.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		// A corrupt profile cache is a soft failure: drop it and let the
		// token path re-derive the id.
		c.logger.Warn("discarding corrupt cached profile", logging.KeyError, err.Error())
		_ = c.store.Delete(KeyUser)
		return nil
	}
	return &profile
}

func (c *Cache) cacheProfile(profile api.Profile) {
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := c.store.Set(KeyUser, string(data)); err != nil {
		c.logger.Warn("failed to cache profile", logging.KeyError, err.Error())
	}
}
