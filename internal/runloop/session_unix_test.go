//go:build !windows

package runloop

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cue-cli/cue/internal/events"
)

func TestRunRestartsCommandOnChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := mustTarget(t, []string{dir})
	command := mustCommand(t, "sleep 10")

	bus := events.New()
	seen := make(chan events.Event, 64)
	bus.SubscribeAll(func(event events.Event) {
		seen <- event
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{
			Target:      target,
			Command:     command,
			Window:      50 * time.Millisecond,
			GracePeriod: 200 * time.Millisecond,
			NoClear:     true,
			Bus:         bus,
			Stdout:      io.Discard,
			Stderr:      io.Discard,
		})
	}()

	waitForType(t, seen, events.EventTypeWatchStarted)
	firstSpawn := waitForType(t, seen, events.EventTypeRunSpawned)
	firstPID := firstSpawn.Payload.(events.SpawnPayload).PID

	// Give the OS watcher a moment to arm before the change lands.
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "main.rs"), []byte("fn main() {}\n"), 0o644); err != nil {
		t.Fatalf("write watched file: %v", err)
	}

	waitForType(t, seen, events.EventTypeChangeDetected)
	waitForType(t, seen, events.EventTypeRunTerminating)
	secondSpawn := waitForType(t, seen, events.EventTypeRunSpawned)
	secondPID := secondSpawn.Payload.(events.SpawnPayload).PID
	if secondPID == firstPID {
		t.Fatalf("respawn reused pid %d; expected a fresh process", firstPID)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error after cancel: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for session to stop")
	}
}

func waitForType(t *testing.T, ch <-chan events.Event, eventType string) events.Event {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case event := <-ch:
			if event.Type == eventType {
				return event
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", eventType)
		}
	}
}
