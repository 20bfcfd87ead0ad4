package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestOpen_MissingFileUsesDefault(t *testing.T) {
	s := Open(t.TempDir(), "settings", snapshot{Name: "default"}, nil)

	assert.Equal(t, "default", s.Get().Name)
}

func TestUpdate_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s := Open(dir, "org", snapshot{}, nil)
	s.Update(func(v *snapshot) {
		v.Name = "00Dxx"
		v.Count = 2
	})

	reopened := Open(dir, "org", snapshot{}, nil)
	assert.Equal(t, "00Dxx", reopened.Get().Name)
	assert.Equal(t, 2, reopened.Get().Count)
}

func TestOpen_CorruptFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "auth.json"), []byte("{not json"), 0o600))

	s := Open(dir, "auth", snapshot{Name: "fallback"}, nil)
	assert.Equal(t, "fallback", s.Get().Name)
}

func TestNamespaces_IndependentCorruption(t *testing.T) {
	dir := t.TempDir()

	good := Open(dir, "settings", snapshot{}, nil)
	good.Update(func(v *snapshot) { v.Name = "indigo" })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "auth.json"), []byte("garbage"), 0o600))

	// Corrupt auth namespace must not affect settings.
	assert.Equal(t, "fallback", Open(dir, "auth", snapshot{Name: "fallback"}, nil).Get().Name)
	assert.Equal(t, "indigo", Open(dir, "settings", snapshot{}, nil).Get().Name)
}

func TestUpdate_UnwritableDirKeepsMemoryState(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "missing", "\x00bad"), "auth", snapshot{}, nil)

	// Write fails but the in-memory value still advances.
	got := s.Update(func(v *snapshot) { v.Count = 7 })
	assert.Equal(t, 7, got.Count)
	assert.Equal(t, 7, s.Get().Count)
}
