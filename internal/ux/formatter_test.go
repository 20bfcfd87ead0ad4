package ux

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormatter_Formats(t *testing.T) {
	for _, format := range []string{"json", "yaml", "text", ""} {
		f, err := NewFormatter(format, nil)
		require.NoError(t, err, format)
		assert.NotNil(t, f)
	}

	_, err := NewFormatter("xml", nil)
	assert.Error(t, err)
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter("json", &FormatterOptions{Writer: &buf})
	require.NoError(t, err)

	require.NoError(t, f.Format(map[string]string{"orgId": "00Da"}))
	assert.Contains(t, buf.String(), `"orgId": "00Da"`)
}

func TestJSONFormatter_Compact(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter("json", &FormatterOptions{Writer: &buf, Compact: true})
	require.NoError(t, err)

	require.NoError(t, f.Format(map[string]string{"orgId": "00Da"}))
	assert.Equal(t, `{"orgId":"00Da"}`+"\n", buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter("yaml", &FormatterOptions{Writer: &buf})
	require.NoError(t, err)

	require.NoError(t, f.Format(map[string]string{"orgId": "00Da"}))
	assert.Contains(t, buf.String(), "orgId: 00Da")
}

func TestTextFormatter_RejectsComplexTypes(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter("text", &FormatterOptions{Writer: &buf})
	require.NoError(t, err)

	assert.NoError(t, f.Format("plain line"))
	assert.Error(t, f.Format(struct{ X int }{1}))
}

func TestTable_Render(t *testing.T) {
	tbl := NewTable("ORG ID", "NAME", "TYPE")
	tbl.AddRow("00Da", "Acme Prod", "PRODUCTION")
	tbl.AddRow("00Db", "Acme Sandbox", "SANDBOX")

	out := tbl.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ORG ID"))
	assert.True(t, strings.HasPrefix(lines[1], "------"))

	// Columns line up.
	assert.Equal(t, strings.Index(lines[2], "Acme Prod"), strings.Index(lines[3], "Acme Sandbox"))
}

func TestTable_PadsShortRows(t *testing.T) {
	tbl := NewTable("A", "B")
	tbl.AddRow("only")
	assert.NotPanics(t, func() { _ = tbl.String() })
}

func TestEnhanceError(t *testing.T) {
	enhanced := EnhanceError(errors.New("not logged in"))
	assert.Contains(t, enhanced.Error(), "orgforge auth login")

	enhanced = EnhanceError(errors.New("no active organization selected"))
	assert.Contains(t, enhanced.Error(), "orgforge orgs use")

	plain := errors.New("something else entirely")
	assert.Equal(t, plain, EnhanceError(plain))

	assert.Nil(t, EnhanceError(nil))
}

func TestFormatError_AddsContext(t *testing.T) {
	err := FormatError(errors.New("connection refused"), "fetching orgs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching orgs:")
	assert.Contains(t, err.Error(), "Suggestion")
}
