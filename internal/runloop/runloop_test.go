package runloop

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cue-cli/cue/internal/events"
	"github.com/cue-cli/cue/internal/supervise"
	"github.com/cue-cli/cue/internal/watch"
)

func mustTarget(t *testing.T, paths []string) watch.Target {
	t.Helper()

	target, err := watch.NewPathTarget(paths)
	if err != nil {
		t.Fatalf("build target: %v", err)
	}
	return target
}

func mustCommand(t *testing.T, command string) supervise.Command {
	t.Helper()

	parsed, err := supervise.ParseCommand(command)
	if err != nil {
		t.Fatalf("parse command: %v", err)
	}
	return parsed
}

func TestRunRequiresBus(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), Options{
		Target:  mustTarget(t, []string{t.TempDir()}),
		Command: mustCommand(t, "true"),
	})
	if err == nil {
		t.Fatal("expected error without event bus")
	}
}

func TestRunRejectsUnresolvableCommand(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), Options{
		Target:  mustTarget(t, []string{t.TempDir()}),
		Command: mustCommand(t, "definitely-not-on-path-anywhere"),
		Bus:     events.New(),
	})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("run error = %v, want ErrConfig", err)
	}
}

func TestRunRejectsMissingWatchPath(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "no-such-dir")
	err := Run(context.Background(), Options{
		Target:  mustTarget(t, []string{missing}),
		Command: mustCommand(t, "true"),
		Bus:     events.New(),
	})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("run error = %v, want ErrConfig", err)
	}
	if !errors.Is(err, watch.ErrPathMissing) {
		t.Fatalf("run error = %v, want ErrPathMissing cause", err)
	}
}
