package log

import (
	"io"
	"os"
)

// Format represents the output format for logs
type Format int

const (
	// FormatText outputs logs in human-readable text format
	FormatText Format = iota
	// FormatJSON outputs logs in JSON format
	FormatJSON
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	default:
		return "text"
	}
}

// ParseFormat parses a string into a Format
func ParseFormat(s string) Format {
	switch s {
	case "json", "JSON":
		return FormatJSON
	case "text", "TEXT", "console":
		return FormatText
	default:
		return FormatText
	}
}

// Output represents where logs should be written
type Output struct {
	writer io.Writer
}

// Writer returns the underlying io.Writer
func (o Output) Writer() io.Writer {
	return o.writer
}

// NewOutput creates an Output from an io.Writer
func NewOutput(w io.Writer) Output {
	return Output{writer: w}
}

// OutputStderr creates an Output that writes to stderr
func OutputStderr() Output {
	return Output{writer: os.Stderr}
}

// OutputDiscard creates an Output that drops everything.
// Used while the TUI owns the terminal.
func OutputDiscard() Output {
	return Output{writer: io.Discard}
}

// Config holds configuration for the logger
type Config struct {
	// Level is the minimum log level to output
	Level Level

	// Format is the output format (Text or JSON)
	Format Format

	// Output is where logs should be written
	Output Output

	// AddSource includes source file and line number in logs
	AddSource bool
}

// DefaultConfig returns a sensible default configuration.
// Logs at INFO level in text format to stderr so command output on
// stdout stays machine-readable.
func DefaultConfig() Config {
	return Config{
		Level:     LevelInfo,
		Format:    FormatText,
		Output:    OutputStderr(),
		AddSource: false,
	}
}

// DevelopmentConfig returns a configuration suitable for development
func DevelopmentConfig() Config {
	return Config{
		Level:     LevelDebug,
		Format:    FormatText,
		Output:    OutputStderr(),
		AddSource: true,
	}
}
