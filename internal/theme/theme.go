// Package theme maps the persisted appearance preferences onto concrete
// render styles. Applying a theme is a pure recomputation from the two
// preference keys, so applying the same pair twice yields the same
// styles with no accumulated state.
package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// DefaultAccent and DefaultBg back unknown or missing preference keys.
const (
	DefaultAccent = "indigo"
	DefaultBg     = "dark"
)

// Accent is a five-step color ramp, light to dark.
type Accent struct {
	Name string
	S300 string
	S400 string
	S500 string
	S600 string
	S700 string
}

// Bg is a background surface set.
type Bg struct {
	Name    string
	Body    string
	Card    string
	Sidebar string
	Border  string
}

var accents = map[string]Accent{
	"indigo":  {Name: "Indigo", S300: "#a5b4fc", S400: "#818cf8", S500: "#6366f1", S600: "#4f46e5", S700: "#4338ca"},
	"sky":     {Name: "Sky", S300: "#7dd3fc", S400: "#38bdf8", S500: "#0ea5e9", S600: "#0284c7", S700: "#0369a1"},
	"emerald": {Name: "Emerald", S300: "#6ee7b7", S400: "#34d399", S500: "#10b981", S600: "#059669", S700: "#047857"},
	"violet":  {Name: "Violet", S300: "#c4b5fd", S400: "#a78bfa", S500: "#8b5cf6", S600: "#7c3aed", S700: "#6d28d9"},
	"rose":    {Name: "Rose", S300: "#fda4af", S400: "#fb7185", S500: "#f43f5e", S600: "#e11d48", S700: "#be123c"},
	"orange":  {Name: "Orange", S300: "#fdba74", S400: "#fb923c", S500: "#f97316", S600: "#ea580c", S700: "#c2410c"},
}

var bgs = map[string]Bg{
	"dark":     {Name: "Dark", Body: "#0f172a", Card: "#1e293b", Sidebar: "#020617", Border: "#334155"},
	"midnight": {Name: "Midnight", Body: "#031427", Card: "#071f3d", Sidebar: "#010a1a", Border: "#0f2d55"},
	"amoled":   {Name: "AMOLED", Body: "#060606", Card: "#0d0d0d", Sidebar: "#000000", Border: "#1a1a1a"},
	"slate":    {Name: "Slate", Body: "#111111", Card: "#1c1c1c", Sidebar: "#0a0a0a", Border: "#2c2c2c"},
	"ocean":    {Name: "Ocean", Body: "#001e2d", Card: "#032535", Sidebar: "#001420", Border: "#063648"},
	"fog":      {Name: "Fog", Body: "#222b3d", Card: "#2d3748", Sidebar: "#1a2035", Border: "#3d4e63"},
}

// AccentKeys returns the valid accent identifiers in stable order.
func AccentKeys() []string { return sortedKeys(accents) }

// BgKeys returns the valid background theme identifiers in stable order.
func BgKeys() []string { return sortedKeys(bgs) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AccentByKey resolves an accent preference, falling back to indigo for
// unknown keys.
func AccentByKey(key string) Accent {
	if a, ok := accents[key]; ok {
		return a
	}
	return accents[DefaultAccent]
}

// BgByKey resolves a background preference, falling back to dark for
// unknown keys.
func BgByKey(key string) Bg {
	if b, ok := bgs[key]; ok {
		return b
	}
	return bgs[DefaultBg]
}

// ValidAccent reports whether key names a known accent.
func ValidAccent(key string) bool {
	_, ok := accents[key]
	return ok
}

// ValidBg reports whether key names a known background theme.
func ValidBg(key string) bool {
	_, ok := bgs[key]
	return ok
}

// Styles is the full style set consumed by the dashboard views.
type Styles struct {
	Accent Accent
	Bg     Bg

	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Muted       lipgloss.Style
	Border      lipgloss.Style
	Card        lipgloss.Style
	Highlighted lipgloss.Style
	Badge       lipgloss.Style
	Help        lipgloss.Style
	Key         lipgloss.Style
	KeyDesc     lipgloss.Style
}

// Apply recomputes the full style set from the two preference keys.
// Deterministic and side-effect free: calling it again with the same
// keys returns an equivalent Styles value.
func Apply(accentKey, bgKey string) Styles {
	accent := AccentByKey(accentKey)
	bg := BgByKey(bgKey)

	return Styles{
		Accent: accent,
		Bg:     bg,
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(accent.S400)),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Status: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(accent.S300)),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")),
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(bg.Border)).
			Padding(0, 1),
		Card: lipgloss.NewStyle().
			Background(lipgloss.Color(bg.Card)).
			Padding(0, 1),
		Highlighted: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(accent.S300)).
			Background(lipgloss.Color(accent.S700)),
		Badge: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color(accent.S600)).
			Padding(0, 1),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Key: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(accent.S400)),
		KeyDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
	}
}
