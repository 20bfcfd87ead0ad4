// Package app is the composition root: it loads configuration, opens
// the persisted state namespaces, and wires the API client, stores,
// bootstrap controller, and push multiplexer together.
package app

import (
	"strings"

	"github.com/orgforge/orgforge/internal/api"
	"github.com/orgforge/orgforge/internal/config"
	oferrors "github.com/orgforge/orgforge/internal/errors"
	"github.com/orgforge/orgforge/internal/log"
	"github.com/orgforge/orgforge/internal/session"
	"github.com/orgforge/orgforge/internal/state"
	"github.com/orgforge/orgforge/internal/store"
	"github.com/orgforge/orgforge/internal/ws"
)

// App bundles the long-lived collaborators every command needs.
type App struct {
	Config config.Config
	Logger *log.Logger
	Client *api.Client

	Auth          *store.AuthStore
	Orgs          *store.OrgStore
	Notifications *store.NotificationStore
	Settings      *store.SettingsStore
	Session       *session.Controller
	Mux           *ws.Mux
}

// New loads configuration and wires the full client graph.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg), nil
}

// NewWithConfig wires the graph over an explicit configuration. Tests
// use this to point everything at temp dirs and fake servers.
func NewWithConfig(cfg config.Config) *App {
	logger := log.New(log.Config{
		Level:  log.ParseLevel(cfg.LogLevel),
		Format: log.ParseFormat(cfg.LogFormat),
		Output: log.OutputStderr(),
	})
	log.SetDefaultLogger(logger)

	auth := store.NewAuthStore(state.Open(cfg.StateDir, "auth", store.Session{}, logger), logger)
	orgs := store.NewOrgStore(state.Open(cfg.StateDir, "org", store.OrgState{}, logger))
	settings := store.NewSettingsStore(state.Open(cfg.StateDir, "settings", store.DefaultSettings(), logger))
	notifications := store.NewNotificationStore()

	client := api.NewClient(cfg.APIURL, logger)
	client.SetToken(auth.Token())

	// A 401 from any endpoint forces a logout, which cascades through
	// the auth listeners and clears the org state.
	client.SetUnauthorizedHandler(func() {
		auth.Logout()
	})
	auth.SetServerLogout(client.Logout)
	auth.OnChange(func(sess store.Session) {
		client.SetToken(sess.Token)
	})

	ctrl := session.NewController(client, auth, orgs, logger)

	mux := ws.NewMux(ws.Config{
		URL:    WSEndpoint(cfg),
		Token:  auth.Token,
		Logger: logger,
	})

	return &App{
		Config:        cfg,
		Logger:        logger,
		Client:        client,
		Auth:          auth,
		Orgs:          orgs,
		Notifications: notifications,
		Settings:      settings,
		Session:       ctrl,
		Mux:           mux,
	}
}

// WSEndpoint resolves the push endpoint: an explicit ws_url wins,
// otherwise it is derived from the API base by scheme swap plus /ws.
func WSEndpoint(cfg config.Config) string {
	if cfg.WSURL != "" {
		return cfg.WSURL
	}

	base := cfg.APIURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return strings.TrimSuffix(base, "/") + "/ws"
}

// RequireAuth returns an error unless a session is present.
func (a *App) RequireAuth() error {
	if !a.Auth.IsAuthenticated() {
		return oferrors.NewAuthRequiredError()
	}
	return nil
}

// RequireActiveOrg returns the active org id, or an error when the
// session or selection is missing.
func (a *App) RequireActiveOrg() (string, error) {
	if err := a.RequireAuth(); err != nil {
		return "", err
	}
	if id := a.Orgs.ActiveOrgID(); id != "" {
		return id, nil
	}
	return "", oferrors.NewNoActiveOrgError()
}
