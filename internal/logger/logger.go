// Package logger provides the shared logger for gymlink.
package logger

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the process-wide logger instance.
var Logger *log.Logger

func init() {
	Logger = log.New(os.Stderr)
	Logger.SetTimeFormat("")
	Logger.SetLevel(log.InfoLevel)
}

// Configure sets the log level. CLI flags take precedence over the
// GYMLINK_LOG_LEVEL environment variable.
func Configure(level string) {
	if level == "" {
		level = strings.ToLower(os.Getenv("GYMLINK_LOG_LEVEL"))
	}
	switch level {
	case "debug":
		Logger.SetLevel(log.DebugLevel)
	case "info":
		Logger.SetLevel(log.InfoLevel)
	case "warn":
		Logger.SetLevel(log.WarnLevel)
	case "error":
		Logger.SetLevel(log.ErrorLevel)
	default:
		Logger.SetLevel(log.InfoLevel)
	}
}

// Named returns a component-scoped logger sharing the global configuration.
func Named(prefix string) *log.Logger {
	l := Logger.With()
	l.SetPrefix(prefix)
	return l
}
