// Package session owns the authenticated user and the logout policy. A 401
// from any backend call funnels into the same forced-logout path, so no
// component can keep a previous user's data alive.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

var (
	// ErrInvalidCredentials indicates the backend rejected the login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is the local reference to the authenticated identity; the server is
// the source of truth.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Credentials are the login/register inputs. FullName is used by register
// only.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// AuthResult is a successful authentication response.
type AuthResult struct {
	Token string
	User  User
}

// Backend is the slice of the remote API the store depends on.
type Backend interface {
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	Register(ctx context.Context, creds Credentials) (*AuthResult, error)
	// VerifyToken checks that the stored token is still accepted.
	VerifyToken(ctx context.Context) error
}

// TokenStore is the durable slot holding the auth token between runs.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	DeleteToken(ctx context.Context) error
}

// Store tracks the current user and authentication validity.
type Store struct {
	mu      sync.Mutex
	backend Backend
	tokens  TokenStore
	logger  *slog.Logger

	user          *User
	authenticated bool
	resetters     []func()
}

// NewStore creates a session store.
func NewStore(backend Backend, tokens TokenStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{backend: backend, tokens: tokens, logger: logger}
}

// OnLogout registers a reset hook run whenever the session ends, whether by
// explicit logout or a forced one. Hooks must be idempotent.
func (s *Store) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetters = append(s.resetters, fn)
}

// Login authenticates and persists the returned token.
func (s *Store) Login(ctx context.Context, creds Credentials) (*User, error) {
	return s.authenticate(ctx, creds, s.backend.Login)
}

// Register creates an account and signs in with the returned token.
func (s *Store) Register(ctx context.Context, creds Credentials) (*User, error) {
	return s.authenticate(ctx, creds, s.backend.Register)
}

func (s *Store) authenticate(
	ctx context.Context,
	creds Credentials,
	call func(context.Context, Credentials) (*AuthResult, error),
) (*User, error) {
	result, err := call(ctx, creds)
	if err != nil {
		if isUnauthorized(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticating: %w", err)
	}

	if err := s.tokens.SetToken(ctx, result.Token); err != nil {
		return nil, fmt.Errorf("persisting token: %w", err)
	}

	s.mu.Lock()
	user := result.User
	s.user = &user
	s.authenticated = true
	s.mu.Unlock()
	return &user, nil
}

// Restore silently resumes a session from a stored token. It returns false
// when no token exists or the backend no longer accepts it; a rejected
// token is cleared so the next startup skips the probe.
func (s *Store) Restore(ctx context.Context) (bool, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return false, fmt.Errorf("reading stored token: %w", err)
	}
	if token == "" {
		return false, nil
	}

	if err := s.backend.VerifyToken(ctx); err != nil {
		s.logger.Info("stored token rejected, clearing", "error", err)
		if delErr := s.tokens.DeleteToken(ctx); delErr != nil {
			s.logger.Warn("clearing rejected token failed", "error", delErr)
		}
		return false, nil
	}

	s.mu.Lock()
	s.authenticated = true
	s.mu.Unlock()
	return true, nil
}

// Logout ends the session: the token is deleted and every registered reset
// hook runs, so no component retains the previous user's data.
func (s *Store) Logout(ctx context.Context) {
	if err := s.tokens.DeleteToken(ctx); err != nil {
		s.logger.Warn("deleting token on logout failed", "error", err)
	}

	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	resetters := append([]func(){}, s.resetters...)
	s.mu.Unlock()

	for _, reset := range resetters {
		reset()
	}
}

// ForceLogout is the centralized unauthorized policy: any 401 anywhere in
// the system lands here. Idempotent.
func (s *Store) ForceLogout() {
	s.Logout(context.Background())
}

// Authenticated reports whether a session is active.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// CurrentUser returns a copy of the signed-in user, or nil. A session
// restored from a stored token has no user object until the next login.
func (s *Store) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func isUnauthorized(err error) bool {
	var httpErr interface{ StatusCode() int }
	return errors.As(err, &httpErr) && httpErr.StatusCode() == http.StatusUnauthorized
}
