package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgforge/orgforge/internal/errors"
)

func newBufferLogger(format Format, level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  level,
		Format: format,
		Output: NewOutput(&buf),
	})
	return logger, &buf
}

func TestLogger_JSONFormat(t *testing.T) {
	logger, buf := newBufferLogger(FormatJSON, LevelInfo)

	logger.Info("org switched", "org_id", "00Dxx")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "org switched", entry["msg"])
	assert.Equal(t, "00Dxx", entry["org_id"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(FormatText, LevelWarn)

	logger.Debug("noise")
	logger.Info("still noise")
	logger.Warn("something to see")

	out := buf.String()
	assert.NotContains(t, out, "noise")
	assert.Contains(t, out, "something to see")
}

func TestLogger_With(t *testing.T) {
	logger, buf := newBufferLogger(FormatJSON, LevelInfo)

	logger.With("module", "apex-pulse").Info("run started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "apex-pulse", entry["module"])
}

func TestLogger_WithError(t *testing.T) {
	logger, buf := newBufferLogger(FormatJSON, LevelInfo)

	err := errors.New(errors.ErrCodeOrgListFailed, "failed to fetch organizations").
		WithSuggestion("check connectivity")
	logger.WithError(err).Warn("keeping stale org list")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ORG-003", entry["error_code"])
	assert.Equal(t, "failed to fetch organizations", entry["error"])
}

func TestLogger_LogError(t *testing.T) {
	logger, buf := newBufferLogger(FormatJSON, LevelInfo)

	logger.LogError(errors.NewNoActiveOrgError())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "operation failed", entry["msg"])
	assert.Equal(t, "ORG-002", entry["error_code"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatText, ParseFormat("console"))
	assert.Equal(t, FormatText, ParseFormat("anything else"))
}

func TestDefaultLogger_Lazy(t *testing.T) {
	SetDefaultLogger(nil)
	logger := DefaultLogger()
	require.NotNil(t, logger)

	// Subsequent calls return the same instance.
	assert.Same(t, logger, DefaultLogger())
}

func TestLogger_TextFormat(t *testing.T) {
	logger, buf := newBufferLogger(FormatText, LevelInfo)

	logger.Info("connected", "endpoint", "/ws")

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "msg=connected")
	assert.Contains(t, line, "endpoint=/ws")
}
