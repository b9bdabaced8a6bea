// Package display renders the watch session's lifecycle events as status
// lines on the user's terminal.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/cue-cli/cue/internal/events"
)

const fallbackWidth = 80

var (
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	ruleStyle    = lipgloss.NewStyle().Faint(true)
)

// Renderer subscribes to the lifecycle bus and prints status lines. Quiet
// sessions attach no renderer at all; the child's own output is untouched
// either way.
type Renderer struct {
	logger  *log.Logger
	out     io.Writer
	noClear bool
	width   func() int
}

// NewRenderer builds a renderer that logs through logger and draws
// separator rules to out (normally stdout, alongside the child's output).
func NewRenderer(logger *log.Logger, out io.Writer, noClear bool) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{
		logger:  logger,
		out:     out,
		noClear: noClear,
		width:   terminalWidth,
	}
}

// Attach registers the renderer on the bus.
func (r *Renderer) Attach(bus events.Bus) {
	bus.SubscribeAll(r.handle)
}

func (r *Renderer) handle(event events.Event) {
	switch event.Type {
	case events.EventTypeWatchStarted:
		payload, ok := event.Payload.(events.WatchPayload)
		if !ok {
			return
		}
		r.logger.Info("watching",
			"targets", strings.Join(payload.Targets, ", "),
			"run", commandStyle.Render(payload.Command),
			"debounce", payload.Window,
		)
	case events.EventTypeChangeDetected:
		payload, ok := event.Payload.(events.ChangePayload)
		if !ok {
			return
		}
		r.logger.Info(fmt.Sprintf("%s changed at %s",
			pathStyle.Render(payload.Path),
			event.Timestamp.Local().Format("15:04:05"),
		))
	case events.EventTypeRunTerminating:
		r.logger.Debug("killing previous run")
	case events.EventTypeRunSpawned:
		payload, ok := event.Payload.(events.SpawnPayload)
		if !ok {
			return
		}
		if r.noClear {
			r.rule()
		}
		r.logger.Info("running " + commandStyle.Render(payload.Command))
	case events.EventTypeRunExited:
		payload, ok := event.Payload.(events.ExitPayload)
		if !ok {
			return
		}
		switch {
		case payload.Killed && payload.Forced:
			r.logger.Warn("previous run would not exit, killed forcefully")
		case payload.Killed:
			r.logger.Debug("previous run terminated")
		case payload.Code == 0:
			r.logger.Debug("command exited", "code", payload.Code)
		default:
			r.logger.Warn("command exited", "code", payload.Code)
		}
	case events.EventTypeSpawnFailed, events.EventTypeWatchError:
		payload, ok := event.Payload.(events.ErrorPayload)
		if !ok {
			return
		}
		if event.Severity == events.SeverityWarn {
			r.logger.Warn(payload.Message)
			return
		}
		r.logger.Error(payload.Message)
	}
}

// rule draws a half-width separator between runs when the screen is not
// cleared.
func (r *Renderer) rule() {
	width := r.width() / 2
	if width <= 0 {
		width = fallbackWidth / 2
	}
	fmt.Fprintln(r.out, ruleStyle.Render(strings.Repeat("_", width)))
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}
