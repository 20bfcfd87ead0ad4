package store

import (
	"github.com/orgforge/orgforge/internal/state"
)

// Settings is the persisted visual preference snapshot. Values are
// validated at the point of use (the theme package falls back to its
// defaults for unknown keys), not at write time.
type Settings struct {
	AccentColor string `json:"accentColor"`
	BgTheme     string `json:"bgTheme"`
}

// DefaultSettings returns the out-of-the-box appearance.
func DefaultSettings() Settings {
	return Settings{AccentColor: "indigo", BgTheme: "dark"}
}

// SettingsStore owns visual preferences. Updating the store does not
// restyle anything: applying the theme is a separate, explicit call so
// state transitions stay testable without a terminal.
type SettingsStore struct {
	state *state.Store[Settings]
}

// NewSettingsStore creates the settings store over a persisted namespace.
func NewSettingsStore(st *state.Store[Settings]) *SettingsStore {
	return &SettingsStore{state: st}
}

// Get returns the current settings.
func (s *SettingsStore) Get() Settings {
	return s.state.Get()
}

// SetAccentColor updates the accent preference.
func (s *SettingsStore) SetAccentColor(color string) {
	s.state.Update(func(v *Settings) {
		v.AccentColor = color
	})
}

// SetBgTheme updates the background theme preference.
func (s *SettingsStore) SetBgTheme(theme string) {
	s.state.Update(func(v *Settings) {
		v.BgTheme = theme
	})
}
