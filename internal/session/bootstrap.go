// Package session drives the post-login data lifecycle: whenever
// authentication state changes it loads the organization list, settles
// which organization is active, and keeps the server-side preference in
// step with local selection changes.
package session

import (
	"context"
	"sync"

	"github.com/orgforge/orgforge/internal/api"
	"github.com/orgforge/orgforge/internal/log"
	"github.com/orgforge/orgforge/internal/store"
)

// State describes where the bootstrap sequence currently stands.
type State int

const (
	// NoSession means no authenticated user; org state is empty.
	NoSession State = iota
	// OrgsLoading means an organization fetch is in flight.
	OrgsLoading
	// OrgsReady means the org list and active selection are settled.
	OrgsReady
)

func (s State) String() string {
	switch s {
	case NoSession:
		return "no-session"
	case OrgsLoading:
		return "orgs-loading"
	case OrgsReady:
		return "orgs-ready"
	default:
		return "unknown"
	}
}

// Backend is the slice of the API client the controller needs.
type Backend interface {
	ListOrgs(ctx context.Context) ([]api.Organization, error)
	UpdatePreferences(ctx context.Context, req api.PreferencesRequest) (*api.User, error)
	DisconnectOrg(ctx context.Context, id string) error
}

// Controller reconciles the org store against the backend in response
// to auth transitions. Fetches triggered here never surface errors:
// stale-but-present data beats an empty store, and pages that need
// freshness re-fetch on their own.
type Controller struct {
	backend Backend
	auth    *store.AuthStore
	orgs    *store.OrgStore
	logger  *log.Logger

	mu         sync.Mutex
	state      State
	lastAuthed bool
	lastUserID string
	subscribed bool
}

// NewController wires the controller to its stores. Call Start to
// begin reacting to auth changes.
func NewController(backend Backend, auth *store.AuthStore, orgs *store.OrgStore, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Controller{
		backend: backend,
		auth:    auth,
		orgs:    orgs,
		logger:  logger.WithGroup("session"),
	}
}

// State returns the current bootstrap state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start subscribes to auth transitions and evaluates the session that
// is already present (a rehydrated login resumes without a fresh
// login call). Safe to call once; later calls are no-ops.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.subscribed {
		c.mu.Unlock()
		return
	}
	c.subscribed = true
	c.mu.Unlock()

	c.auth.OnChange(func(sess store.Session) {
		c.handle(ctx, sess)
	})
	c.handle(ctx, c.auth.Session())
}

// handle fires the fetch only when the auth flag or the user identity
// actually moved. Selection changes and repeated snapshots of the same
// session never re-trigger it.
func (c *Controller) handle(ctx context.Context, sess store.Session) {
	userID := ""
	if sess.User != nil {
		userID = sess.User.ID
	}

	c.mu.Lock()
	changed := sess.IsAuthenticated != c.lastAuthed || userID != c.lastUserID
	c.lastAuthed = sess.IsAuthenticated
	c.lastUserID = userID
	c.mu.Unlock()

	if !changed {
		return
	}

	if !sess.IsAuthenticated {
		c.orgs.Clear()
		c.setState(NoSession)
		return
	}

	// Snapshot the server-persisted preference at trigger time. Two
	// rapid logins may race two fetches; the later response wins.
	serverPreferred := ""
	if sess.User != nil {
		serverPreferred = sess.User.ActiveOrgID
	}
	c.refresh(ctx, serverPreferred)
}

// Refresh re-fetches the org list and reconciles the active selection,
// preferring whatever is currently active. Used by flows that change
// the collection out-of-band, such as connecting a new org.
func (c *Controller) Refresh(ctx context.Context) {
	c.refresh(ctx, c.preferredOrgID())
}

// preferredOrgID resolves the reconciliation preference: the org id
// persisted on the server user record wins over the client-side cache.
func (c *Controller) preferredOrgID() string {
	if u := c.auth.User(); u != nil && u.ActiveOrgID != "" {
		return u.ActiveOrgID
	}
	return c.orgs.ActiveOrgID()
}

func (c *Controller) refresh(ctx context.Context, serverPreferred string) {
	c.setState(OrgsLoading)
	c.orgs.SetLoading(true)
	defer c.orgs.SetLoading(false)

	orgs, err := c.backend.ListOrgs(ctx)
	if err != nil {
		// Keep whatever is already there.
		c.logger.Debug("org list fetch failed, keeping cached state", "error", err)
		c.setState(OrgsReady)
		return
	}

	preferred := serverPreferred
	if preferred == "" {
		preferred = c.orgs.ActiveOrgID()
	}

	active := c.orgs.Reconcile(orgs, preferred)
	c.setState(OrgsReady)
	c.logger.Info("organizations loaded", "count", len(orgs), "active_org", active)

	// The reconciled choice may differ from the server record when the
	// preferred org vanished. Push the correction so the next session
	// starts from the right place.
	if active != "" && active != serverPreferred {
		c.persistActiveOrg(ctx, active)
	}
}

// SelectOrg switches the active organization locally and persists the
// choice on the user record so it follows the account across devices.
// Returns false when the org is not in the current collection.
func (c *Controller) SelectOrg(ctx context.Context, orgID string) bool {
	if !c.orgs.SetActiveOrg(orgID) {
		return false
	}
	c.persistActiveOrg(ctx, orgID)
	return true
}

// persistActiveOrg round-trips the preference and merges the server's
// echo back into the auth store. Failure leaves the local selection in
// place; the preference is advisory.
func (c *Controller) persistActiveOrg(ctx context.Context, orgID string) {
	user, err := c.backend.UpdatePreferences(ctx, api.PreferencesRequest{ActiveOrgID: orgID})
	if err != nil {
		c.logger.Debug("active org preference not persisted", "error", err, "org_id", orgID)
		return
	}
	if user != nil {
		c.auth.UpdateUser(store.UserPatch{ActiveOrgID: &user.ActiveOrgID})
	}
}

// Disconnect removes an organization and re-fetches the list rather
// than splicing it optimistically. If the removed org was active, the
// first remaining org takes over.
func (c *Controller) Disconnect(ctx context.Context, id string, orgID string) error {
	if err := c.backend.DisconnectOrg(ctx, id); err != nil {
		return err
	}

	preferred := c.orgs.ActiveOrgID()
	if preferred == orgID {
		preferred = ""
	}
	c.refresh(ctx, preferred)
	return nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
