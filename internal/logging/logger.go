// Package logging builds the console logger for cue's own status output.
// The child command's stdio is inherited directly and never passes through
// here.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Options configures logger creation.
type Options struct {
	// Quiet raises the level so only errors surface. It never affects the
	// child command's own output.
	Quiet bool
	// Output overrides the sink; nil means stderr.
	Output io.Writer
}

// New creates cue's console logger: terse, prefixed, no timestamps. Levels
// carry the styling; status lines stay close to plain text.
func New(opts Options) *log.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	logger := log.NewWithOptions(output, log.Options{
		Level:           log.InfoLevel,
		ReportTimestamp: false,
		Prefix:          "cue",
	})
	if opts.Quiet {
		logger.SetLevel(log.ErrorLevel)
	}
	return logger
}
