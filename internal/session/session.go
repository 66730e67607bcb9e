// Package session holds the signed-in user and token for the lifetime of
// a run, persists both to durable key-value storage, and derives the
// authentication status and active tenant the guard and ledger read.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tally/internal/core"
	"tally/internal/kv"
	applog "tally/internal/log"
)

// Storage keys. The token is stored raw, the user as JSON.
const (
	tokenKey = "token"
	userKey  = "user"
)

// tokenPrefix marks tokens produced by the mock credential check.
const tokenPrefix = "mock-token-"

// DefaultLoginDelay is the simulated duration of the remote credential
// check when none is configured.
const DefaultLoginDelay = 1 * time.Second

// AuthError reports a failed credential check. The mock check accepts
// every credential, so today this is never returned, but Login keeps it
// in its contract so a real backend can slot in without breaking callers.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "invalid credentials: " + e.Reason
}

// Config configures a Session. Store is required; everything else has a
// default.
type Config struct {
	Store  kv.Store
	Logger *applog.Logger

	// Delay is the artificial duration of the simulated credential
	// check. Zero means no delay; callers wanting the stock behavior
	// pass DefaultLoginDelay.
	Delay time.Duration

	// Now and NewID are injectable for deterministic tests.
	Now   func() time.Time
	NewID func() string
}

// Session is the process-wide authentication state. All methods are safe
// for concurrent use.
type Session struct {
	mu    sync.Mutex
	user  *core.User
	token string

	store  kv.Store
	logger *applog.Logger
	delay  time.Duration
	now    func() time.Time
	newID  func() string
}

// New creates an empty, unauthenticated session.
func New(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = applog.New(applog.DefaultConfig())
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Session{
		store:  cfg.Store,
		logger: cfg.Logger.WithComponent(applog.ComponentSession),
		delay:  cfg.Delay,
		now:    cfg.Now,
		newID:  cfg.NewID,
	}
}

// Login simulates a remote credential check and signs the user in.
//
// The check suspends for the configured delay, then derives everything
// from the email: tenant from the domain (unknown domains land in the
// default tenant), display name from the local part, and the admin role
// iff the email contains "admin". The resulting user and token are set
// together and persisted to the store.
//
// A failed credential check returns *AuthError; the mock check cannot
// fail that way. Cancelling the context during the delay returns
// ctx.Err() and leaves the session untouched. Persistence failures are
// logged and do not fail the login.
func (s *Session) Login(ctx context.Context, email, password string) error {
	_ = password // the mock check accepts any password

	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	local, domain, _ := strings.Cut(email, "@")
	tenant := TenantForDomain(domain)

	role := core.RoleUser
	if strings.Contains(email, "admin") {
		role = core.RoleAdmin
	}

	user := core.User{
		ID:          s.newID(),
		Email:       email,
		DisplayName: local,
		TenantID:    tenant.ID,
		TenantName:  tenant.Name,
		Role:        role,
	}
	token := tokenPrefix + strconv.FormatInt(s.now().UnixMilli(), 10)

	s.mu.Lock()
	s.user = &user
	s.token = token
	s.mu.Unlock()

	s.persist(ctx, user, token)

	s.logger.InfoContext(ctx, "Signed in",
		applog.FieldEmail, user.Email,
		applog.FieldUserID, user.ID,
		applog.FieldTenantID, user.TenantID,
		applog.FieldTenantName, user.TenantName,
		applog.FieldRole, string(user.Role))

	return nil
}

func (s *Session) persist(ctx context.Context, user core.User, token string) {
	data, err := json.Marshal(user)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to serialize user", applog.FieldError, err)
		return
	}
	if err := s.store.Set(ctx, tokenKey, token); err != nil {
		s.logger.WarnContext(ctx, "Failed to persist token", applog.FieldError, err)
	}
	if err := s.store.Set(ctx, userKey, string(data)); err != nil {
		s.logger.WarnContext(ctx, "Failed to persist user", applog.FieldError, err)
	}
}

// Logout clears the user and token together and removes both persisted
// entries. Calling it while signed out is a no-op.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	wasAuthenticated := s.user != nil
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.store.Delete(ctx, tokenKey); err != nil {
		s.logger.WarnContext(ctx, "Failed to remove persisted token", applog.FieldError, err)
	}
	if err := s.store.Delete(ctx, userKey); err != nil {
		s.logger.WarnContext(ctx, "Failed to remove persisted user", applog.FieldError, err)
	}

	if wasAuthenticated {
		s.logger.InfoContext(ctx, "Signed out")
	}
}

// Restore rehydrates the session from the store at startup. Missing or
// malformed entries leave the session signed out; restore never fails.
func (s *Session) Restore(ctx context.Context) {
	token, err := s.store.Get(ctx, tokenKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logger.WarnContext(ctx, "Failed to read persisted token", applog.FieldError, err)
		}
		return
	}

	data, err := s.store.Get(ctx, userKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logger.WarnContext(ctx, "Failed to read persisted user", applog.FieldError, err)
		}
		return
	}

	var user core.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		s.logger.WarnContext(ctx, "Discarding malformed persisted user", applog.FieldError, err)
		return
	}
	if err := user.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Discarding invalid persisted user", applog.FieldError, err)
		return
	}

	s.mu.Lock()
	s.user = &user
	s.token = token
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Restored session",
		applog.FieldUserID, user.ID,
		applog.FieldTenantID, user.TenantID)
}

// IsAuthenticated reports whether both a user and a token are present.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.token != ""
}

// ActiveTenant returns the signed-in user's tenant id, or false when
// signed out.
func (s *Session) ActiveTenant() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return "", false
	}
	return s.user.TenantID, true
}

// CurrentUser returns a copy of the signed-in user, or false when signed
// out.
func (s *Session) CurrentUser() (core.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return core.User{}, false
	}
	return *s.user, true
}

// Token returns the current token, empty when signed out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}
