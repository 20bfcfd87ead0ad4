package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgforge/orgforge/internal/api"
	"github.com/orgforge/orgforge/internal/state"
	"github.com/orgforge/orgforge/internal/store"
)

type fakeBackend struct {
	orgs    []api.Organization
	listErr error

	listCalls    int
	prefCalls    []string
	disconnected []string
}

func (f *fakeBackend) ListOrgs(ctx context.Context) ([]api.Organization, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.orgs, nil
}

func (f *fakeBackend) UpdatePreferences(ctx context.Context, req api.PreferencesRequest) (*api.User, error) {
	f.prefCalls = append(f.prefCalls, req.ActiveOrgID)
	return &api.User{ID: "u1", ActiveOrgID: req.ActiveOrgID}, nil
}

func (f *fakeBackend) DisconnectOrg(ctx context.Context, id string) error {
	f.disconnected = append(f.disconnected, id)
	for i, org := range f.orgs {
		if org.ID == id {
			f.orgs = append(f.orgs[:i], f.orgs[i+1:]...)
			break
		}
	}
	return nil
}

type fixture struct {
	backend *fakeBackend
	auth    *store.AuthStore
	orgs    *store.OrgStore
	ctrl    *Controller
}

func newFixture(t *testing.T, backend *fakeBackend) *fixture {
	t.Helper()
	dir := t.TempDir()
	auth := store.NewAuthStore(state.Open(dir, "auth", store.Session{}, nil), nil)
	orgs := store.NewOrgStore(state.Open(dir, "org", store.OrgState{}, nil))
	ctrl := NewController(backend, auth, orgs, nil)
	ctrl.Start(context.Background())
	return &fixture{backend: backend, auth: auth, orgs: orgs, ctrl: ctrl}
}

func twoOrgs() []api.Organization {
	return []api.Organization{
		{ID: "row-a", OrgID: "00Da", OrgName: "Acme Prod"},
		{ID: "row-b", OrgID: "00Db", OrgName: "Acme Sandbox"},
	}
}

func TestController_LoginLoadsOrgs(t *testing.T) {
	f := newFixture(t, &fakeBackend{orgs: twoOrgs()})
	assert.Equal(t, NoSession, f.ctrl.State())

	f.auth.Login(api.User{ID: "u1"}, "tok")

	assert.Equal(t, OrgsReady, f.ctrl.State())
	assert.Len(t, f.orgs.Orgs(), 2)
	assert.Equal(t, "00Da", f.orgs.ActiveOrgID(), "no preference falls back to the first org")
}

func TestController_ServerPreferenceWinsOverClientCache(t *testing.T) {
	backend := &fakeBackend{orgs: twoOrgs()}
	f := newFixture(t, backend)

	// A prior session cached a different selection locally.
	f.orgs.Reconcile(twoOrgs(), "00Da")

	f.auth.Login(api.User{ID: "u1", ActiveOrgID: "00Db"}, "tok")

	assert.Equal(t, "00Db", f.orgs.ActiveOrgID())
}

func TestController_StalePreferenceFallsBackAndCorrectsServer(t *testing.T) {
	backend := &fakeBackend{orgs: twoOrgs()}
	f := newFixture(t, backend)

	// The server record points at an org no longer in the list.
	f.auth.Login(api.User{ID: "u1", ActiveOrgID: "00Dgone"}, "tok")

	assert.Equal(t, "00Da", f.orgs.ActiveOrgID(), "never the stale id")
	require.NotEmpty(t, backend.prefCalls, "corrected choice pushed back to the server")
	assert.Equal(t, "00Da", backend.prefCalls[len(backend.prefCalls)-1])
}

func TestController_PresentPreferenceIsUnchanged(t *testing.T) {
	backend := &fakeBackend{orgs: twoOrgs()}
	f := newFixture(t, backend)

	f.auth.Login(api.User{ID: "u1", ActiveOrgID: "00Db"}, "tok")

	assert.Equal(t, "00Db", f.orgs.ActiveOrgID())
	assert.Empty(t, backend.prefCalls, "matching preference needs no server write")
}

func TestController_FetchFailureKeepsStaleState(t *testing.T) {
	backend := &fakeBackend{orgs: twoOrgs()}
	f := newFixture(t, backend)
	f.auth.Login(api.User{ID: "u1"}, "tok")
	require.Len(t, f.orgs.Orgs(), 2)

	backend.listErr = errors.New("gateway timeout")
	f.auth.Logout()
	f.auth.Login(api.User{ID: "u1"}, "tok2")

	// Logout cleared the store and the failed refetch left it alone.
	assert.Equal(t, OrgsReady, f.ctrl.State())
	assert.Empty(t, f.orgs.Orgs())

	// A failure mid-session retains the populated store.
	backend.listErr = nil
	f.ctrl.Refresh(context.Background())
	require.Len(t, f.orgs.Orgs(), 2)
	backend.listErr = errors.New("gateway timeout")
	f.ctrl.Refresh(context.Background())
	assert.Len(t, f.orgs.Orgs(), 2)
}

func TestController_LogoutClearsSynchronously(t *testing.T) {
	f := newFixture(t, &fakeBackend{orgs: twoOrgs()})
	f.auth.Login(api.User{ID: "u1"}, "tok")

	f.auth.Logout()

	assert.Equal(t, NoSession, f.ctrl.State())
	assert.Empty(t, f.orgs.Orgs())
	assert.Empty(t, f.orgs.ActiveOrgID())
}

func TestController_SelectionDoesNotRefetch(t *testing.T) {
	backend := &fakeBackend{orgs: twoOrgs()}
	f := newFixture(t, backend)
	f.auth.Login(api.User{ID: "u1"}, "tok")
	require.Equal(t, 1, backend.listCalls)

	ok := f.ctrl.SelectOrg(context.Background(), "00Db")

	require.True(t, ok)
	assert.Equal(t, "00Db", f.orgs.ActiveOrgID())
	assert.Equal(t, 1, backend.listCalls, "selecting an org must not re-trigger the fetch")
	assert.Equal(t, []string{"00Db"}, backend.prefCalls)
	require.NotNil(t, f.auth.User())
	assert.Equal(t, "00Db", f.auth.User().ActiveOrgID, "server echo merged back")
}

func TestController_SelectOrgRejectsUnknown(t *testing.T) {
	backend := &fakeBackend{orgs: twoOrgs()}
	f := newFixture(t, backend)
	f.auth.Login(api.User{ID: "u1"}, "tok")

	assert.False(t, f.ctrl.SelectOrg(context.Background(), "00Dzz"))
	assert.Empty(t, backend.prefCalls)
}

func TestController_IdentityChangeRetriggersFetch(t *testing.T) {
	backend := &fakeBackend{orgs: twoOrgs()}
	f := newFixture(t, backend)

	f.auth.Login(api.User{ID: "u1"}, "tok")
	require.Equal(t, 1, backend.listCalls)

	// Same flag, new identity.
	f.auth.Login(api.User{ID: "u2"}, "tok2")
	assert.Equal(t, 2, backend.listCalls)

	// Same identity again, no transition.
	f.auth.UpdateUser(store.UserPatch{})
	assert.Equal(t, 2, backend.listCalls)
}

func TestController_DisconnectActiveOrgPromotesNext(t *testing.T) {
	backend := &fakeBackend{orgs: twoOrgs()}
	f := newFixture(t, backend)
	f.auth.Login(api.User{ID: "u1", ActiveOrgID: "00Da"}, "tok")
	require.Equal(t, "00Da", f.orgs.ActiveOrgID())

	err := f.ctrl.Disconnect(context.Background(), "row-a", "00Da")

	require.NoError(t, err)
	assert.Equal(t, []string{"row-a"}, backend.disconnected)
	assert.Equal(t, "00Db", f.orgs.ActiveOrgID())
	assert.Len(t, f.orgs.Orgs(), 1)
}

func TestController_DisconnectInactiveOrgKeepsSelection(t *testing.T) {
	backend := &fakeBackend{orgs: twoOrgs()}
	f := newFixture(t, backend)
	f.auth.Login(api.User{ID: "u1", ActiveOrgID: "00Da"}, "tok")

	err := f.ctrl.Disconnect(context.Background(), "row-b", "00Db")

	require.NoError(t, err)
	assert.Equal(t, "00Da", f.orgs.ActiveOrgID())
}

func TestController_DisconnectLastOrgClearsSelection(t *testing.T) {
	backend := &fakeBackend{orgs: twoOrgs()[:1]}
	f := newFixture(t, backend)
	f.auth.Login(api.User{ID: "u1"}, "tok")

	err := f.ctrl.Disconnect(context.Background(), "row-a", "00Da")

	require.NoError(t, err)
	assert.Empty(t, f.orgs.Orgs())
	assert.Empty(t, f.orgs.ActiveOrgID())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "no-session", NoSession.String())
	assert.Equal(t, "orgs-loading", OrgsLoading.String())
	assert.Equal(t, "orgs-ready", OrgsReady.String())
}
