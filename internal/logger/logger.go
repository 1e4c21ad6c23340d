// Package logger provides a lightweight, centralized logging facility
// with configurable verbosity levels.
//
// The API is intentionally tiny (Errorf, Infof, Debugf, Tracef) so call
// sites carry no formatting or level logic of their own. Verbosity is set
// once at startup, typically from the calibration config.
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// Example usage:
//
//	logger.SetVerbosity(2) // Debug
//	logger.Infof("calibration started")
//	logger.Debugf("spot=%f strike=%f iv=%f", spot, strike, iv)
package logger

import (
	"log"
	"os"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // Error logs only critical failures.
	Info               // Info logs high-level application progress.
	Debug              // Debug logs detailed diagnostic information.
	Trace              // Trace logs very fine-grained execution details.
)

// current holds the active verbosity level.
// Only messages with level <= current are logged.
var current Level = Info

func init() {
	// Logs go to stderr so report output on stdout stays clean when the
	// tool runs inside a pipeline.
	log.SetOutput(os.Stderr)

	// Date/time plus the emitting file and line, e.g.
	//   2026/08/30 15:42:10 engine.go:87 [INFO]  calibration started
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// SetVerbosity sets the global logging verbosity.
// Typically called once during application startup,
// after the config has been parsed.
func SetVerbosity(v int) {
	current = Level(v)
}

// logf checks verbosity and delegates formatting and output
// to the standard library logger.
func logf(l Level, prefix, format string, args ...any) {
	if current >= l {
		log.Printf(prefix+format, args...)
	}
}

// Errorf logs an error-level message.
// Use this for failures that require attention.
func Errorf(format string, args ...any) {
	logf(Error, "[ERROR] ", format, args...)
}

// Infof logs an informational message.
// Use this for major lifecycle events.
func Infof(format string, args ...any) {
	logf(Info, "[INFO]  ", format, args...)
}

// Debugf logs debugging information.
// Use this for diagnostic output useful during development.
func Debugf(format string, args ...any) {
	logf(Debug, "[DEBUG] ", format, args...)
}

// Tracef logs very detailed execution traces.
// Use this sparingly due to high volume.
func Tracef(format string, args ...any) {
	logf(Trace, "[TRACE] ", format, args...)
}
