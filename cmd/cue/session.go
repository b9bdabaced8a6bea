package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/cue-cli/cue/internal/config"
	"github.com/cue-cli/cue/internal/display"
	"github.com/cue-cli/cue/internal/events"
	"github.com/cue-cli/cue/internal/logging"
	"github.com/cue-cli/cue/internal/picker"
	"github.com/cue-cli/cue/internal/runloop"
	"github.com/cue-cli/cue/internal/supervise"
	"github.com/cue-cli/cue/internal/watch"
)

const defaultDebounceMS = 150

// watchFlags are the knobs shared by `cue` and `cue run`.
type watchFlags struct {
	watch    []string
	ext      []string
	run      string
	debounce int
	global   bool
	quiet    bool
	noClear  bool

	// debounceSet records whether -d was given explicitly, so -d 150 is
	// distinguishable from the 150ms default.
	debounceSet bool
}

func (f *watchFlags) register(set *pflag.FlagSet) {
	set.StringSliceVarP(&f.watch, "watch", "w", nil, "paths to watch")
	set.StringSliceVarP(&f.ext, "ext", "e", nil, "file extensions to watch, recursively from the working directory")
	set.StringVarP(&f.run, "run", "r", "", "command to run on changes")
	set.IntVarP(&f.debounce, "debounce", "d", defaultDebounceMS, "debounce window in milliseconds")
	set.BoolVarP(&f.global, "global", "g", false, "use the global task store")
	set.BoolVarP(&f.quiet, "quiet", "q", false, "suppress cue's own status lines")
	set.BoolVarP(&f.noClear, "no-clear", "n", false, "keep previous output instead of clearing between runs")
}

// noteChanged captures which flags the user supplied explicitly. Called
// from RunE once parsing is done.
func (f *watchFlags) noteChanged(set *pflag.FlagSet) {
	f.debounceSet = set.Changed("debounce")
}

// sessionSpec merges flag values over a task definition (flags win) and
// produces a validated watch session description.
type sessionSpec struct {
	target  watch.Target
	command supervise.Command
	window  time.Duration
	quiet   bool
	noClear bool
}

func (f *watchFlags) sessionSpec(task config.Task) (sessionSpec, error) {
	watchPaths := task.Watch
	if len(f.watch) > 0 {
		watchPaths = f.watch
	}
	extensions := task.Ext
	if len(f.ext) > 0 {
		extensions = f.ext
	}
	runString := task.Run
	if f.run != "" {
		runString = f.run
	}
	debounceMS := f.debounce
	if !f.debounceSet && task.Debounce > 0 {
		debounceMS = task.Debounce
	}

	target, err := buildTarget(watchPaths, extensions)
	if err != nil {
		return sessionSpec{}, err
	}
	command, err := supervise.ParseCommand(runString)
	if err != nil {
		return sessionSpec{}, err
	}
	return sessionSpec{
		target:  target,
		command: command,
		window:  time.Duration(debounceMS) * time.Millisecond,
		quiet:   f.quiet,
		noClear: f.noClear,
	}, nil
}

// buildTarget enforces the one-mode-per-session rule: explicit paths or an
// extension filter, never both.
func buildTarget(paths, extensions []string) (watch.Target, error) {
	if len(paths) > 0 && len(extensions) > 0 {
		return watch.Target{}, errors.New("watch paths and extensions are mutually exclusive; pick one")
	}
	if len(extensions) > 0 {
		return watch.NewExtensionTarget(extensions)
	}
	return watch.NewPathTarget(paths)
}

// runTask resolves a task by name (falling back to the store's default or
// an interactive pick) and starts a watch session for it.
func runTask(ctx context.Context, name string, flags *watchFlags) error {
	cfg, source, err := config.Resolve(flags.global)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{Quiet: flags.quiet})
	logger.Info("loading tasks from " + source)

	if name == "" {
		if cfg.Default != "" {
			name = cfg.Default
			logger.Info("running default task", "task", name)
		} else {
			name, err = picker.PickTask(cfg.TaskNames())
			if err != nil {
				return err
			}
		}
	}

	task, err := cfg.Lookup(name)
	if err != nil {
		return err
	}
	spec, err := flags.sessionSpec(task)
	if err != nil {
		return err
	}
	return startSession(ctx, spec)
}

// startSession runs the watch loop until interrupted. A clean interrupt is
// a zero-status exit; only pre-flight validation failures propagate.
func startSession(ctx context.Context, spec sessionSpec) error {
	logger := logging.New(logging.Options{Quiet: spec.quiet})
	bus := events.New(events.WithLogger(logger))
	display.NewRenderer(logger, os.Stdout, spec.noClear).Attach(bus)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runloop.Run(ctx, runloop.Options{
		Target:  spec.target,
		Command: spec.command,
		Window:  spec.window,
		NoClear: spec.noClear,
		Bus:     bus,
	})
}
