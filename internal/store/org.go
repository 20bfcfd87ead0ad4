package store

import (
	"sync"

	"github.com/orgforge/orgforge/internal/api"
	"github.com/orgforge/orgforge/internal/state"
)

// OrgState is the persisted organization snapshot. Persisting the list
// alongside the selection lets a returning user see their orgs
// instantly, before the network refetch lands.
type OrgState struct {
	Orgs        []api.Organization `json:"orgs"`
	ActiveOrgID string             `json:"activeOrgId,omitempty"`
}

// OrgStore owns the connected-organization collection and the active
// selection. Invariant: a non-empty ActiveOrgID always references an
// org present in Orgs.
type OrgStore struct {
	state *state.Store[OrgState]

	mu      sync.Mutex
	loading bool
}

// NewOrgStore creates the org store over a persisted namespace.
func NewOrgStore(st *state.Store[OrgState]) *OrgStore {
	return &OrgStore{state: st}
}

// Orgs returns the current organization list in server order.
func (s *OrgStore) Orgs() []api.Organization {
	return s.state.Get().Orgs
}

// ActiveOrgID returns the active selection, or "" when none.
func (s *OrgStore) ActiveOrgID() string {
	return s.state.Get().ActiveOrgID
}

// ActiveOrg returns the active organization, if any.
func (s *OrgStore) ActiveOrg() (api.Organization, bool) {
	st := s.state.Get()
	for _, org := range st.Orgs {
		if org.OrgID == st.ActiveOrgID {
			return org, true
		}
	}
	return api.Organization{}, false
}

// SetActiveOrg changes the selection. Pure local state: callers that
// want cross-device consistency also persist the choice server-side.
// Returns false if the org is not in the current collection.
func (s *OrgStore) SetActiveOrg(orgID string) bool {
	ok := false
	s.state.Update(func(v *OrgState) {
		for _, org := range v.Orgs {
			if org.OrgID == orgID {
				v.ActiveOrgID = orgID
				ok = true
				return
			}
		}
	})
	return ok
}

// Reconcile replaces the collection and resolves the active selection.
// Precedence: the preferred id if present in the fresh list, otherwise
// the first org, otherwise none. Returns the resulting active id.
func (s *OrgStore) Reconcile(orgs []api.Organization, preferredID string) string {
	var active string
	s.state.Update(func(v *OrgState) {
		v.Orgs = orgs

		switch {
		case contains(orgs, preferredID):
			v.ActiveOrgID = preferredID
		case len(orgs) > 0:
			v.ActiveOrgID = orgs[0].OrgID
		default:
			v.ActiveOrgID = ""
		}
		active = v.ActiveOrgID
	})
	return active
}

func contains(orgs []api.Organization, orgID string) bool {
	if orgID == "" {
		return false
	}
	for _, org := range orgs {
		if org.OrgID == orgID {
			return true
		}
	}
	return false
}

// Clear drops the collection and selection. Called synchronously on
// logout; never touches the network.
func (s *OrgStore) Clear() {
	s.state.Set(OrgState{})
}

// SetLoading flags an in-flight organization fetch.
func (s *OrgStore) SetLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}

// Loading reports whether an organization fetch is in flight.
func (s *OrgStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}
