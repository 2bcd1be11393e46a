// Package cli implements the willowmap demo command.
//
// The command opens an Ebitengine window showing a slippy map with a
// willowmap overlay of city markers. Overlay options come from a TOML file
// (--config) and flags; --verbose switches the charm logger to debug level so
// surface resizes and frame scheduling are visible.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with timestamp formatting that filters messages
// at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}
