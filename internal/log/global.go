package log

import "sync"

// The process-wide logger. The CLI entry point installs the configured
// logger once at startup; everything constructed before that (or in
// tests) falls back to the stderr default.
var (
	globalMu sync.Mutex
	global   *Logger
)

// SetDefaultLogger installs the logger returned by DefaultLogger.
func SetDefaultLogger(logger *Logger) {
	globalMu.Lock()
	global = logger
	globalMu.Unlock()
}

// DefaultLogger returns the installed logger, creating the stderr
// default on first use when none was installed.
func DefaultLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = Default()
	}
	return global
}
