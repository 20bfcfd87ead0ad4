package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Formatter defines the interface for output formatters.
// This enables consistent output formatting across all commands.
type Formatter interface {
	// Format writes the given data to the output writer
	Format(data interface{}) error
}

// FormatterOptions contains configuration for formatters
type FormatterOptions struct {
	// Writer is where output is written (defaults to os.Stdout)
	Writer io.Writer
	// NoColor disables colored output for text formatters
	NoColor bool
	// Compact enables compact output (no indentation for JSON/YAML)
	Compact bool
}

// NewFormatter creates a formatter based on the format string
func NewFormatter(format string, opts *FormatterOptions) (Formatter, error) {
	if opts == nil {
		opts = &FormatterOptions{Writer: os.Stdout}
	}
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch format {
	case "json":
		return &JSONFormatter{opts: opts}, nil
	case "yaml":
		return &YAMLFormatter{opts: opts}, nil
	case "text", "":
		return &TextFormatter{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: text, json, yaml)", format)
	}
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	opts *FormatterOptions
}

// Format writes data as JSON
func (f *JSONFormatter) Format(data interface{}) error {
	encoder := json.NewEncoder(f.opts.Writer)
	if !f.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	opts *FormatterOptions
}

// Format writes data as YAML
func (f *YAMLFormatter) Format(data interface{}) error {
	encoder := yaml.NewEncoder(f.opts.Writer)
	if !f.opts.Compact {
		encoder.SetIndent(2)
	}
	defer encoder.Close()
	return encoder.Encode(data)
}

// TextFormatter formats data as human-readable text. Tables format
// themselves; everything else must be a string or a fmt.Stringer.
type TextFormatter struct {
	opts *FormatterOptions
}

// Format writes data as formatted text
func (f *TextFormatter) Format(data interface{}) error {
	switch v := data.(type) {
	case string:
		_, err := fmt.Fprintln(f.opts.Writer, v)
		return err
	case *Table:
		_, err := fmt.Fprint(f.opts.Writer, v.String())
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(f.opts.Writer, v.String())
		return err
	default:
		return fmt.Errorf("text formatter requires data to implement String() method or be a primitive type")
	}
}

// Table is a simple column-aligned table for terminal output.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable creates a table with the given column headers
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow appends one row; short rows are padded with empty cells
func (t *Table) AddRow(cells ...string) {
	for len(cells) < len(t.Headers) {
		cells = append(cells, "")
	}
	t.Rows = append(t.Rows, cells)
}

// String renders the table with space-aligned columns
func (t *Table) String() string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if i < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
			}
		}
		b.WriteByte('\n')
	}

	writeRow(t.Headers)
	underline := make([]string, len(t.Headers))
	for i := range t.Headers {
		underline[i] = strings.Repeat("-", widths[i])
	}
	writeRow(underline)
	for _, row := range t.Rows {
		writeRow(row)
	}
	return b.String()
}

// Compile-time verification that formatters implement Formatter
var _ Formatter = (*JSONFormatter)(nil)
var _ Formatter = (*YAMLFormatter)(nil)
var _ Formatter = (*TextFormatter)(nil)
