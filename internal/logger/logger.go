// Package logger provides prefixed loggers shared across the toolkit.
package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// New returns a logger tagged with the given component prefix. Debug output
// is enabled through the MLE_DEBUG environment variable.
func New(prefix string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if os.Getenv("MLE_DEBUG") != "" {
		l.SetLevel(log.DebugLevel)
	}
	return l
}
