// Package tui is the interactive dashboard: a keyboard-driven view
// over the active org's test health, governor limits, notifications,
// and appearance settings, with live test-run progress streamed in
// over the push channel.
package tui

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/orgforge/orgforge/internal/api"
	"github.com/orgforge/orgforge/internal/app"
	"github.com/orgforge/orgforge/internal/theme"
)

// ViewType represents the current view being displayed
type ViewType int

// View type constants
const (
	// ViewOverview is the landing view with org and session summary
	ViewOverview ViewType = iota
	// ViewOrgs is the org switcher
	ViewOrgs
	// ViewTests shows recent test runs and live progress
	ViewTests
	// ViewLimits shows governor limit usage
	ViewLimits
	// ViewNotifications shows the notification buffer
	ViewNotifications
	// ViewSettings is the appearance picker
	ViewSettings
	// ViewHelp is the help screen
	ViewHelp
)

// Model represents the dashboard state
type Model struct {
	app *app.App

	// Loaded data
	stats    *api.OrgTestStats
	runs     []api.TestRun
	limits   []api.Limit
	progress *api.TestProgress

	// UI state
	currentView ViewType
	cursor      int
	width       int
	height      int
	ready       bool
	quitting    bool
	loading     bool
	lastError   string
	spinner     spinner.Model

	// Settings picker state: 0 = accent row, 1 = background row
	settingsRow int

	// Live updates
	progressCh chan api.TestProgress

	styles theme.Styles
}

// NewModel creates the dashboard model over a wired application
func NewModel(a *app.App) Model {
	settings := a.Settings.Get()
	styles := theme.Apply(settings.AccentColor, settings.BgTheme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Status

	return Model{
		app:        a,
		styles:     styles,
		spinner:    sp,
		loading:    true,
		progressCh: make(chan api.TestProgress, 16),
	}
}

// Custom messages for dashboard events

// StatsLoadedMsg carries the org test stats fetch result
type StatsLoadedMsg struct {
	Stats *api.OrgTestStats
	Err   error
}

// RunsLoadedMsg carries the recent test runs fetch result
type RunsLoadedMsg struct {
	Runs []api.TestRun
	Err  error
}

// LimitsLoadedMsg carries the governor limits fetch result
type LimitsLoadedMsg struct {
	Limits []api.Limit
	Err    error
}

// TestProgressMsg is one live progress event from the push channel
type TestProgressMsg struct {
	Progress api.TestProgress
}

// OrgSwitchedMsg reports the outcome of an org selection
type OrgSwitchedMsg struct {
	OrgID string
	OK    bool
}

// Init starts the initial data loads and the push subscription
func (m Model) Init() tea.Cmd {
	m.app.Mux.Subscribe(api.TopicTestProgress, func(payload any) {
		raw, err := json.Marshal(payload)
		if err != nil {
			return
		}
		var p api.TestProgress
		if err := json.Unmarshal(raw, &p); err != nil {
			return
		}
		select {
		case m.progressCh <- p:
		default:
		}
	})

	return tea.Batch(
		m.loadStats(),
		m.loadRuns(),
		m.loadLimits(),
		m.waitForProgress(),
		m.spinner.Tick,
	)
}

func (m Model) loadStats() tea.Cmd {
	return func() tea.Msg {
		orgID := m.app.Orgs.ActiveOrgID()
		if orgID == "" {
			return StatsLoadedMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		stats, err := m.app.Client.GetOrgTestStats(ctx, orgID)
		return StatsLoadedMsg{Stats: stats, Err: err}
	}
}

func (m Model) loadRuns() tea.Cmd {
	return func() tea.Msg {
		orgID := m.app.Orgs.ActiveOrgID()
		if orgID == "" {
			return RunsLoadedMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		page, err := m.app.Client.GetTestRuns(ctx, orgID, 0, 10)
		if err != nil {
			return RunsLoadedMsg{Err: err}
		}
		return RunsLoadedMsg{Runs: page.Content}
	}
}

func (m Model) loadLimits() tea.Cmd {
	return func() tea.Msg {
		orgID := m.app.Orgs.ActiveOrgID()
		if orgID == "" {
			return LimitsLoadedMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		limits, err := m.app.Client.GetLimits(ctx, orgID)
		return LimitsLoadedMsg{Limits: limits, Err: err}
	}
}

// waitForProgress blocks on the push channel and re-arms after every
// delivered event.
func (m Model) waitForProgress() tea.Cmd {
	ch := m.progressCh
	return func() tea.Msg {
		return TestProgressMsg{Progress: <-ch}
	}
}

func (m Model) switchOrg(orgID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		ok := m.app.Session.SelectOrg(ctx, orgID)
		return OrgSwitchedMsg{OrgID: orgID, OK: ok}
	}
}

// Update handles messages and updates the model state (required by Bubble Tea)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case StatsLoadedMsg:
		if msg.Err == nil {
			m.stats = msg.Stats
		}
		return m, nil

	case RunsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.lastError = msg.Err.Error()
		} else {
			m.runs = msg.Runs
		}
		return m, nil

	case LimitsLoadedMsg:
		if msg.Err != nil {
			m.lastError = msg.Err.Error()
		} else {
			m.limits = msg.Limits
		}
		return m, nil

	case TestProgressMsg:
		p := msg.Progress
		m.progress = &p
		var reload tea.Cmd
		if p.Status == "Completed" || p.Status == "Failed" || p.Status == "Aborted" {
			m.app.Notifications.Add("Test run "+p.Status,
				p.TestRunID, runOutcomeType(p))
			reload = m.loadRuns()
		}
		return m, tea.Batch(m.waitForProgress(), reload)

	case OrgSwitchedMsg:
		if msg.OK {
			m.app.Notifications.Add("Switched org", msg.OrgID, "info")
			m.currentView = ViewOverview
			m.progress = nil
			m.loading = true
			return m, tea.Batch(m.loadStats(), m.loadRuns(), m.loadLimits(), m.spinner.Tick)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func runOutcomeType(p api.TestProgress) string {
	if p.FailCount > 0 || p.Status == "Failed" {
		return "error"
	}
	return "success"
}

// View renders the dashboard (required by Bubble Tea)
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.quitting {
		return ""
	}

	switch m.currentView {
	case ViewOverview:
		return m.renderOverview()
	case ViewOrgs:
		return m.renderOrgs()
	case ViewTests:
		return m.renderTests()
	case ViewLimits:
		return m.renderLimits()
	case ViewNotifications:
		return m.renderNotifications()
	case ViewSettings:
		return m.renderSettings()
	case ViewHelp:
		return m.renderHelp()
	default:
		return "Unknown view"
	}
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" || msg.String() == "q" {
		m.app.Mux.Disconnect()
		m.quitting = true
		return m, tea.Quit
	}

	switch msg.String() {
	case "?":
		if m.currentView == ViewHelp {
			m.currentView = ViewOverview
		} else {
			m.currentView = ViewHelp
		}
		return m, nil

	case "1":
		m.currentView = ViewOverview
	case "2":
		m.currentView, m.cursor = ViewOrgs, m.orgCursor()
	case "3":
		m.currentView = ViewTests
	case "4":
		m.currentView = ViewLimits
	case "5":
		m.currentView, m.cursor = ViewNotifications, 0
	case "6":
		m.currentView, m.cursor = ViewSettings, m.settingsCursor()

	case "esc":
		m.currentView = ViewOverview

	case "r":
		m.loading = true
		return m, tea.Batch(m.loadStats(), m.loadRuns(), m.loadLimits(), m.spinner.Tick)

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.cursorMax() {
			m.cursor++
		}
	case "left", "h":
		if m.currentView == ViewSettings && m.settingsRow > 0 {
			m.settingsRow--
			m.cursor = m.settingsCursor()
		}
	case "right", "l":
		if m.currentView == ViewSettings && m.settingsRow < 1 {
			m.settingsRow++
			m.cursor = m.settingsCursor()
		}

	case "enter", " ":
		return m.handleSelect()
	}

	return m, nil
}

// handleSelect applies the cursor action for the current view
func (m Model) handleSelect() (tea.Model, tea.Cmd) {
	switch m.currentView {
	case ViewOrgs:
		orgs := m.app.Orgs.Orgs()
		if m.cursor < len(orgs) {
			return m, m.switchOrg(orgs[m.cursor].OrgID)
		}

	case ViewNotifications:
		items := m.app.Notifications.All()
		if m.cursor < len(items) {
			m.app.Notifications.MarkRead(items[m.cursor].ID)
		}

	case ViewSettings:
		if m.settingsRow == 0 {
			keys := theme.AccentKeys()
			if m.cursor < len(keys) {
				m.app.Settings.SetAccentColor(keys[m.cursor])
			}
		} else {
			keys := theme.BgKeys()
			if m.cursor < len(keys) {
				m.app.Settings.SetBgTheme(keys[m.cursor])
			}
		}
		settings := m.app.Settings.Get()
		m.styles = theme.Apply(settings.AccentColor, settings.BgTheme)
	}
	return m, nil
}

// cursorMax bounds the cursor for the list in the current view
func (m Model) cursorMax() int {
	switch m.currentView {
	case ViewOrgs:
		return max(0, len(m.app.Orgs.Orgs())-1)
	case ViewNotifications:
		return max(0, len(m.app.Notifications.All())-1)
	case ViewSettings:
		if m.settingsRow == 0 {
			return len(theme.AccentKeys()) - 1
		}
		return len(theme.BgKeys()) - 1
	}
	return 0
}

// orgCursor positions the cursor on the active org when opening the
// switcher
func (m Model) orgCursor() int {
	active := m.app.Orgs.ActiveOrgID()
	for i, org := range m.app.Orgs.Orgs() {
		if org.OrgID == active {
			return i
		}
	}
	return 0
}

// settingsCursor positions the cursor on the currently selected value
// of the focused settings row
func (m Model) settingsCursor() int {
	settings := m.app.Settings.Get()
	if m.settingsRow == 0 {
		for i, key := range theme.AccentKeys() {
			if key == settings.AccentColor {
				return i
			}
		}
		return 0
	}
	for i, key := range theme.BgKeys() {
		if key == settings.BgTheme {
			return i
		}
	}
	return 0
}
