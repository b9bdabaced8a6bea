// Package runloop wires watcher, debouncer, and supervisor into one watch
// session and keeps it alive until the context is cancelled.
package runloop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cue-cli/cue/internal/events"
	"github.com/cue-cli/cue/internal/supervise"
	"github.com/cue-cli/cue/internal/watch"
)

// ErrConfig reports a configuration that fails pre-flight validation:
// missing watch paths or an unresolvable command. Fatal before any watching
// begins.
var ErrConfig = errors.New("invalid configuration")

// Options configures one watch session.
type Options struct {
	Target      watch.Target
	Command     supervise.Command
	Window      time.Duration
	GracePeriod time.Duration
	NoClear     bool
	Bus         events.Bus

	// Stdio overrides for the child process; nil means inherit.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run validates the configuration, starts watching, and blocks until ctx is
// cancelled. On cancellation the live child is terminated before Run
// returns; no child outlives the tool. The returned error is non-nil only
// for pre-flight failures.
func Run(ctx context.Context, opts Options) error {
	if opts.Bus == nil {
		return errors.New("event bus is required")
	}

	if err := opts.Command.Resolve(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}

	watcher, err := watch.NewWatcher(opts.Target)
	if err != nil {
		if errors.Is(err, watch.ErrPathMissing) {
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
		return err
	}
	defer watcher.Close()

	supervisor, err := supervise.New(supervise.Options{
		Command:     opts.Command,
		Bus:         opts.Bus,
		GracePeriod: opts.GracePeriod,
		NoClear:     opts.NoClear,
		Stdin:       opts.Stdin,
		Stdout:      opts.Stdout,
		Stderr:      opts.Stderr,
	})
	if err != nil {
		return err
	}
	defer supervisor.Shutdown(context.Background())

	// A trigger landing mid-teardown is retained, not dropped; newer
	// triggers supersede a waiting one since the signal is opaque.
	triggers := make(chan watch.Trigger, 1)
	debouncer := watch.NewDebouncer(opts.Window, opts.Target, func(trigger watch.Trigger) {
		for {
			select {
			case triggers <- trigger:
				return
			default:
				select {
				case <-triggers:
				default:
				}
			}
		}
	})
	defer debouncer.Stop()

	opts.Bus.Publish(events.Event{
		Type:     events.EventTypeWatchStarted,
		Severity: events.SeverityInfo,
		Payload: events.WatchPayload{
			Targets: opts.Target.Roots(),
			Command: opts.Command.String(),
			Window:  debouncer.Window(),
		},
	})

	// The command runs once at session start, then once per trigger.
	_ = supervisor.OnTrigger(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case watchErr, ok := <-watcher.Errors():
			if !ok {
				continue
			}
			opts.Bus.Publish(events.Event{
				Type:     events.EventTypeWatchError,
				Severity: events.SeverityError,
				Payload:  events.ErrorPayload{Message: watchErr.Error()},
			})
		case event, ok := <-watcher.Events():
			if !ok {
				continue
			}
			if debouncer.Notify(event) {
				opts.Bus.Publish(events.Event{
					Type:     events.EventTypeChangeDetected,
					Severity: events.SeverityInfo,
					Payload:  events.ChangePayload{Path: event.Path},
				})
			}
		case <-triggers:
			// Spawn failures are already on the bus; the session keeps
			// watching and the next trigger tries again.
			_ = supervisor.OnTrigger(ctx)
		}
	}
}
