package tui

import (
	"fmt"
	"strings"

	"github.com/orgforge/orgforge/internal/theme"
)

func (m Model) renderHeader(title string) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("OrgForge"))
	b.WriteString("  ")
	b.WriteString(m.styles.Muted.Render(title))

	if org, ok := m.app.Orgs.ActiveOrg(); ok {
		b.WriteString("  ")
		b.WriteString(m.styles.Badge.Render(org.OrgName))
	}
	if unread := m.app.Notifications.UnreadCount(); unread > 0 {
		b.WriteString("  ")
		b.WriteString(m.styles.Warning.Render(fmt.Sprintf("🔔 %d", unread)))
	}
	b.WriteString("\n\n")
	return b.String()
}

func (m Model) renderFooter() string {
	keys := []struct{ key, desc string }{
		{"1-6", "views"},
		{"r", "refresh"},
		{"?", "help"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, m.styles.Key.Render(k.key)+" "+m.styles.KeyDesc.Render(k.desc))
	}
	return "\n" + m.styles.Help.Render(strings.Join(parts, "  "))
}

// renderOverview renders the landing view with session and org health
func (m Model) renderOverview() string {
	var b strings.Builder
	b.WriteString(m.renderHeader("Overview"))

	if user := m.app.Auth.User(); user != nil {
		b.WriteString(m.styles.Muted.Render("User: "))
		b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("%s <%s>", user.Name, user.Email)))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Muted.Render("Orgs: "))
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("%d connected", len(m.app.Orgs.Orgs()))))
	b.WriteString("\n")

	b.WriteString(m.styles.Muted.Render("Push: "))
	b.WriteString(m.styles.Status.Render(m.app.Mux.Status().String()))
	b.WriteString("\n\n")

	if m.loading && m.stats == nil {
		b.WriteString(m.spinner.View())
		b.WriteString(m.styles.Muted.Render(" Loading…"))
		b.WriteString("\n")
	}

	if m.stats != nil {
		box := fmt.Sprintf("%s\n%s %.1f%%   %s %.1f%%   %s %d",
			m.styles.Status.Render("Test health"),
			m.styles.Muted.Render("pass rate"), m.stats.PassRate,
			m.styles.Muted.Render("coverage"), m.stats.AvgCoverage,
			m.styles.Muted.Render("runs"), m.stats.TotalRuns)
		b.WriteString(m.styles.Border.Render(box))
		b.WriteString("\n")
	}

	if m.progress != nil {
		b.WriteString("\n")
		b.WriteString(m.renderProgressBar())
		b.WriteString("\n")
	}

	if m.lastError != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render("Error: ") + m.lastError)
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

// renderOrgs renders the org switcher
func (m Model) renderOrgs() string {
	var b strings.Builder
	b.WriteString(m.renderHeader("Organizations"))

	orgs := m.app.Orgs.Orgs()
	if len(orgs) == 0 {
		b.WriteString(m.styles.Muted.Render("No orgs connected. Run 'orgforge orgs connect' first."))
		b.WriteString("\n")
	}

	active := m.app.Orgs.ActiveOrgID()
	for i, org := range orgs {
		line := fmt.Sprintf("%s  %s  %s", org.OrgID, org.OrgName, org.OrgType)
		switch {
		case i == m.cursor:
			b.WriteString(m.styles.Highlighted.Render("> " + line))
		case org.OrgID == active:
			b.WriteString(m.styles.Status.Render("* " + line))
		default:
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("enter: switch  esc: back"))
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderTests renders recent runs plus any live progress
func (m Model) renderTests() string {
	var b strings.Builder
	b.WriteString(m.renderHeader("Apex Pulse"))

	if m.progress != nil {
		b.WriteString(m.renderProgressBar())
		b.WriteString("\n\n")
	}

	if m.loading {
		b.WriteString(m.spinner.View())
		b.WriteString(m.styles.Muted.Render(" Loading runs…"))
		b.WriteString("\n")
	} else if len(m.runs) == 0 {
		b.WriteString(m.styles.Muted.Render("No test runs yet."))
		b.WriteString("\n")
	}

	for _, run := range m.runs {
		outcome := m.styles.Success.Render("✓")
		if run.FailCount > 0 {
			outcome = m.styles.Error.Render("✗")
		} else if run.CompletedAt == nil {
			outcome = m.styles.Warning.Render("…")
		}
		b.WriteString(fmt.Sprintf("%s #%d  %s  %d/%d passed\n",
			outcome, run.ID,
			m.styles.Subtitle.Render(run.Status),
			run.PassCount, run.TotalTests))
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

// renderProgressBar draws the live test-run progress
func (m Model) renderProgressBar() string {
	p := m.progress
	const width = 30
	filled := int(p.PercentComplete / 100 * width)
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	return fmt.Sprintf("%s [%s] %.0f%%  %d/%d  %s",
		m.styles.Status.Render("Run "+p.TestRunID),
		m.styles.Key.Render(bar),
		p.PercentComplete,
		p.CompletedTests, p.TotalTests,
		m.styles.Muted.Render(p.Status))
}

// renderLimits renders governor limit usage
func (m Model) renderLimits() string {
	var b strings.Builder
	b.WriteString(m.renderHeader("Limit Guard"))

	if len(m.limits) == 0 {
		b.WriteString(m.styles.Muted.Render("No limit data."))
		b.WriteString("\n")
	}

	for _, limit := range m.limits {
		style := m.styles.Success
		switch limit.Status {
		case "WARNING":
			style = m.styles.Warning
		case "CRITICAL":
			style = m.styles.Error
		}
		b.WriteString(fmt.Sprintf("%-32s %s\n",
			limit.LimitName,
			style.Render(fmt.Sprintf("%d / %d (%.1f%%)", limit.Used, limit.Total, limit.Percentage))))
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

// renderNotifications renders the in-memory notification buffer
func (m Model) renderNotifications() string {
	var b strings.Builder
	b.WriteString(m.renderHeader("Notifications"))

	items := m.app.Notifications.All()
	if len(items) == 0 {
		b.WriteString(m.styles.Muted.Render("Nothing yet."))
		b.WriteString("\n")
	}

	for i, n := range items {
		marker := "•"
		style := m.styles.Subtitle
		if n.Read {
			marker = " "
			style = m.styles.Muted
		}
		line := fmt.Sprintf("%s %s  %s", marker, n.Title, n.Message)
		if i == m.cursor {
			b.WriteString(m.styles.Highlighted.Render("> " + line))
		} else {
			b.WriteString("  " + style.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("enter: mark read"))
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderSettings renders the appearance picker
func (m Model) renderSettings() string {
	var b strings.Builder
	b.WriteString(m.renderHeader("Settings"))

	settings := m.app.Settings.Get()

	b.WriteString(m.rowTitle("Accent", m.settingsRow == 0))
	b.WriteString(m.renderChoices(theme.AccentKeys(), settings.AccentColor, m.settingsRow == 0))
	b.WriteString("\n")

	b.WriteString(m.rowTitle("Background", m.settingsRow == 1))
	b.WriteString(m.renderChoices(theme.BgKeys(), settings.BgTheme, m.settingsRow == 1))

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("←/→: row  ↑/↓: option  enter: apply"))
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) rowTitle(title string, focused bool) string {
	if focused {
		return m.styles.Status.Render(title) + "\n"
	}
	return m.styles.Muted.Render(title) + "\n"
}

func (m Model) renderChoices(keys []string, selected string, focused bool) string {
	var b strings.Builder
	for i, key := range keys {
		switch {
		case focused && i == m.cursor:
			b.WriteString(m.styles.Highlighted.Render("> " + key))
		case key == selected:
			b.WriteString(m.styles.Status.Render("* " + key))
		default:
			b.WriteString("  " + key)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderHelp renders the key reference
func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.renderHeader("Help"))

	rows := []struct{ key, desc string }{
		{"1", "overview"},
		{"2", "organizations"},
		{"3", "test runs"},
		{"4", "governor limits"},
		{"5", "notifications"},
		{"6", "settings"},
		{"r", "refresh data"},
		{"↑/↓", "move cursor"},
		{"enter", "select"},
		{"esc", "back to overview"},
		{"q", "quit"},
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			m.styles.Key.Render(fmt.Sprintf("%-6s", r.key)),
			m.styles.KeyDesc.Render(r.desc)))
	}

	b.WriteString(m.renderFooter())
	return b.String()
}
