package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgforge/orgforge/internal/api"
	"github.com/orgforge/orgforge/internal/state"
)

func newAuthStore(t *testing.T) *AuthStore {
	t.Helper()
	st := state.Open(t.TempDir(), "auth", Session{}, nil)
	return NewAuthStore(st, nil)
}

func strp(s string) *string { return &s }

func TestAuthStore_Invariant(t *testing.T) {
	s := newAuthStore(t)

	check := func() {
		sess := s.Session()
		assert.Equal(t, sess.User != nil, sess.IsAuthenticated,
			"user must be non-nil exactly when authenticated")
	}

	check()
	s.Login(api.User{ID: "u1", Email: "a@b.c"}, "tok")
	check()
	s.Logout()
	check()
	s.Login(api.User{ID: "u2"}, "tok2")
	check()
	s.Login(api.User{ID: "u3"}, "tok3")
	check()
	s.Logout()
	s.Logout()
	check()
}

func TestAuthStore_UpdateUserMergesFields(t *testing.T) {
	s := newAuthStore(t)
	s.Login(api.User{ID: "u1", Name: "Dana", Email: "d@e.f"}, "tok")

	s.UpdateUser(UserPatch{ActiveOrgID: strp("00Dxx")})

	u := s.User()
	require.NotNil(t, u)
	assert.Equal(t, "00Dxx", u.ActiveOrgID)
	assert.Equal(t, "Dana", u.Name, "untouched fields survive the merge")
	assert.Equal(t, "d@e.f", u.Email)
}

func TestAuthStore_UpdateUserWhenLoggedOut(t *testing.T) {
	s := newAuthStore(t)

	// Must not panic or resurrect a session.
	s.UpdateUser(UserPatch{AccentColor: strp("violet")})
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
}

func TestAuthStore_LogoutClearsLocallyDespiteServerFailure(t *testing.T) {
	s := newAuthStore(t)

	var wg sync.WaitGroup
	wg.Add(1)
	s.SetServerLogout(func(ctx context.Context) error {
		defer wg.Done()
		return errors.New("backend unreachable")
	})

	s.Login(api.User{ID: "u1"}, "tok")
	s.Logout()

	// Local teardown is synchronous and unconditional.
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("server logout was never attempted")
	}
}

func TestAuthStore_PersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	s := NewAuthStore(state.Open(dir, "auth", Session{}, nil), nil)
	s.Login(api.User{ID: "u1", ActiveOrgID: "00Dxx"}, "tok")

	revived := NewAuthStore(state.Open(dir, "auth", Session{}, nil), nil)
	assert.True(t, revived.IsAuthenticated())
	require.NotNil(t, revived.User())
	assert.Equal(t, "u1", revived.User().ID)
	assert.Equal(t, "tok", revived.Token())
}

func TestAuthStore_NormalizesCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	st := state.Open(dir, "auth", Session{}, nil)
	st.Set(Session{IsAuthenticated: true, User: nil}) // violates the invariant

	s := NewAuthStore(state.Open(dir, "auth", Session{}, nil), nil)
	assert.False(t, s.IsAuthenticated())
}

func TestAuthStore_NotifiesListeners(t *testing.T) {
	s := newAuthStore(t)

	var transitions []bool
	s.OnChange(func(sess Session) {
		transitions = append(transitions, sess.IsAuthenticated)
	})

	s.Login(api.User{ID: "u1"}, "tok")
	s.Logout()

	assert.Equal(t, []bool{true, false}, transitions)
}
