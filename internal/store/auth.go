// Package store holds the client-global state containers: auth session,
// connected organizations, notifications, and visual settings. Stores are
// plain injected dependencies rather than package-level singletons so
// each test can construct its own isolated instances.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/orgforge/orgforge/internal/api"
	"github.com/orgforge/orgforge/internal/log"
	"github.com/orgforge/orgforge/internal/state"
)

// Session is the persisted auth snapshot. Token is the client-side
// analogue of the browser session cookie: without it a new process
// could never resume the session.
type Session struct {
	User            *api.User `json:"user"`
	IsAuthenticated bool      `json:"isAuthenticated"`
	Token           string    `json:"token,omitempty"`
}

// UserPatch is a shallow merge into the current user. Nil fields are
// left untouched.
type UserPatch struct {
	Name        *string
	AccentColor *string
	BgTheme     *string
	ActiveOrgID *string
}

// AuthStore owns the session lifecycle. Invariant: User != nil exactly
// when IsAuthenticated is true.
type AuthStore struct {
	state  *state.Store[Session]
	logger *log.Logger

	mu        sync.Mutex
	listeners []func(Session)

	// serverLogout is the best-effort server-side invalidation call.
	// Its failure never blocks local teardown.
	serverLogout func(context.Context) error
}

// NewAuthStore creates the auth store over a persisted namespace.
func NewAuthStore(st *state.Store[Session], logger *log.Logger) *AuthStore {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	s := &AuthStore{
		state:  st,
		logger: logger.WithGroup("auth"),
	}

	// A rehydrated snapshot may predate the invariant; normalize it.
	sess := st.Get()
	if sess.IsAuthenticated != (sess.User != nil) {
		st.Set(Session{})
	}
	return s
}

// SetServerLogout injects the fire-and-forget server-side logout call.
func (s *AuthStore) SetServerLogout(fn func(context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverLogout = fn
}

// Session returns the current session snapshot.
func (s *AuthStore) Session() Session {
	return s.state.Get()
}

// IsAuthenticated reports whether a user is logged in.
func (s *AuthStore) IsAuthenticated() bool {
	return s.state.Get().IsAuthenticated
}

// User returns the current user, or nil when logged out.
func (s *AuthStore) User() *api.User {
	return s.state.Get().User
}

// Token returns the bearer credential for the current session.
func (s *AuthStore) Token() string {
	return s.state.Get().Token
}

// OnChange registers a listener invoked after every session transition.
// The bootstrap controller uses this to react to login/logout.
func (s *AuthStore) OnChange(fn func(Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *AuthStore) notify(sess Session) {
	s.mu.Lock()
	listeners := make([]func(Session), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(sess)
	}
}

// Login records a successful authentication. The caller already holds
// the server response; no network call happens here.
func (s *AuthStore) Login(user api.User, token string) {
	sess := Session{User: &user, IsAuthenticated: true, Token: token}
	s.state.Set(sess)
	s.logger.Info("logged in", "user_id", user.ID)
	s.notify(sess)
}

// UpdateUser shallow-merges the patch into the current user. Used after
// preference round-trips so the client mirrors server state without a
// full refetch. No-op when logged out.
func (s *AuthStore) UpdateUser(patch UserPatch) {
	sess := s.state.Update(func(v *Session) {
		if v.User == nil {
			return
		}
		u := *v.User
		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.AccentColor != nil {
			u.AccentColor = *patch.AccentColor
		}
		if patch.BgTheme != nil {
			u.BgTheme = *patch.BgTheme
		}
		if patch.ActiveOrgID != nil {
			u.ActiveOrgID = *patch.ActiveOrgID
		}
		v.User = &u
	})
	s.notify(sess)
}

// Logout clears the session immediately and unconditionally, then fires
// the server-side invalidation without waiting for it. A failed server
// call is logged and discarded: local state has already advanced.
func (s *AuthStore) Logout() {
	s.state.Set(Session{})

	s.mu.Lock()
	serverLogout := s.serverLogout
	s.mu.Unlock()

	if serverLogout != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := serverLogout(ctx); err != nil {
				s.logger.Debug("server-side logout failed", "error", err)
			}
		}()
	}

	s.logger.Info("logged out")
	s.notify(Session{})
}
