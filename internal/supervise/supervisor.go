// Package supervise owns the lifecycle of the spawned command across
// repeated triggers. Its single invariant: at most one child of the
// supervised command is alive at any instant.
package supervise

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/cue-cli/cue/internal/events"
)

const (
	// DefaultGracePeriod is the SIGTERM window before escalating to a
	// forceful kill.
	DefaultGracePeriod = 500 * time.Millisecond
	// DefaultForcedWait bounds the wait after a forceful kill.
	DefaultForcedWait = 2 * time.Second
)

// ErrSpawn reports a command that failed to start. Non-fatal to the watch
// session; the next trigger attempts a fresh spawn.
var ErrSpawn = errors.New("spawn command")

// Status describes the liveness of the current run session.
type Status int

const (
	// StatusIdle means no command has been spawned yet.
	StatusIdle Status = iota
	// StatusRunning means the child process is alive.
	StatusRunning
	// StatusExited means the child finished on its own.
	StatusExited
	// StatusKilled means the child was terminated by the supervisor.
	StatusKilled
)

type waitResult struct {
	code int
	err  error
}

// session is one spawned child and its reaper state. Sessions are replaced,
// never mutated in place: a new trigger tears the old one down completely
// before the next session exists.
type session struct {
	cmd      *exec.Cmd
	pid      int
	started  time.Time
	done     chan struct{}
	killed   atomic.Bool
	reported atomic.Bool
	result   waitResult
}

func (s *session) finished() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Options configures a Supervisor.
type Options struct {
	Command     Command
	Bus         events.Bus
	GracePeriod time.Duration
	ForcedWait  time.Duration
	NoClear     bool
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
}

// Supervisor spawns and terminates the watched command. Callers must
// serialize OnTrigger and Shutdown; the run loop guarantees that.
type Supervisor struct {
	command    Command
	bus        events.Bus
	grace      time.Duration
	forcedWait time.Duration
	noClear    bool
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	current    *session
}

// New builds a supervisor with default grace windows and inherited stdio
// where omitted.
func New(opts Options) (*Supervisor, error) {
	if opts.Command.Path == "" {
		return nil, ErrEmptyCommand
	}
	if opts.Bus == nil {
		return nil, errors.New("event bus is required")
	}

	grace := opts.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	forcedWait := opts.ForcedWait
	if forcedWait <= 0 {
		forcedWait = DefaultForcedWait
	}

	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Supervisor{
		command:    opts.Command,
		bus:        opts.Bus,
		grace:      grace,
		forcedWait: forcedWait,
		noClear:    opts.NoClear,
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
	}, nil
}

// Status reports the liveness of the current run session.
func (s *Supervisor) Status() Status {
	if s.current == nil {
		return StatusIdle
	}
	if !s.current.finished() {
		return StatusRunning
	}
	if s.current.killed.Load() {
		return StatusKilled
	}
	return StatusExited
}

// OnTrigger handles one coalesced trigger: confirm the previous child dead,
// clear the terminal, spawn the command fresh. Termination always fully
// completes before the new spawn begins, even under rapid repeated
// triggers. An already-exited child spawns fresh without the kill step.
func (s *Supervisor) OnTrigger(ctx context.Context) error {
	if s.current != nil && !s.current.finished() {
		s.bus.Publish(events.Event{
			Type:     events.EventTypeRunTerminating,
			Severity: events.SeverityInfo,
			Payload:  events.SpawnPayload{Command: s.command.String(), PID: s.current.pid},
		})
		s.terminate(ctx, s.current)
	}

	if !s.noClear {
		// Cosmetic; a terminal that rejects the escape sequence is fine.
		clearTerminal(s.stdout)
	}

	return s.spawn()
}

// Shutdown kills the live child, if any, so nothing outlives the tool.
func (s *Supervisor) Shutdown(ctx context.Context) {
	if s.current == nil || s.current.finished() {
		return
	}
	s.terminate(ctx, s.current)
}

func (s *Supervisor) spawn() error {
	cmd := exec.Command(s.command.Path, s.command.Args...)
	cmd.Stdin = s.stdin
	cmd.Stdout = s.stdout
	cmd.Stderr = s.stderr
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		s.current = nil
		s.bus.Publish(events.Event{
			Type:     events.EventTypeSpawnFailed,
			Severity: events.SeverityError,
			Payload:  events.ErrorPayload{Message: fmt.Sprintf("%s: %v", s.command.String(), err)},
		})
		return fmt.Errorf("%w %q: %v", ErrSpawn, s.command.String(), err)
	}

	run := &session{
		cmd:     cmd,
		pid:     cmd.Process.Pid,
		started: time.Now(),
		done:    make(chan struct{}),
	}
	s.current = run
	go s.reap(run)

	s.bus.Publish(events.Event{
		Type:     events.EventTypeRunSpawned,
		Severity: events.SeverityInfo,
		Payload:  events.SpawnPayload{Command: s.command.String(), PID: run.pid},
	})
	return nil
}

// reap waits for the child and reports natural exits. Kills are reported by
// the terminate path after confirmation, so a killed session stays quiet
// here.
func (s *Supervisor) reap(run *session) {
	err := run.cmd.Wait()
	run.result = waitResult{code: exitCode(err), err: err}
	close(run.done)

	if run.killed.Load() {
		return
	}
	if !run.reported.CompareAndSwap(false, true) {
		return
	}
	severity := events.SeverityInfo
	if run.result.code != 0 {
		severity = events.SeverityWarn
	}
	s.bus.Publish(events.Event{
		Type:     events.EventTypeRunExited,
		Severity: severity,
		Payload:  events.ExitPayload{Code: run.result.code},
	})
}

// terminate requests the whole process group die, waits for confirmation
// within the grace period, and escalates to a forceful kill when the child
// lingers. It returns only once the child is confirmed dead or the forced
// wait has elapsed; in the latter case a warning is reported and the caller
// proceeds anyway so the latest version always wins.
func (s *Supervisor) terminate(ctx context.Context, run *session) {
	run.killed.Store(true)

	if err := signalGroup(run.cmd, false); err != nil {
		// ESRCH and friends mean the child beat us to the exit.
		if !processGone(err) {
			s.publishWarn(fmt.Sprintf("terminate pid %d: %v", run.pid, err))
		}
	}

	forced := false
	if !s.waitSession(ctx, run, s.grace) {
		forced = true
		if err := signalGroup(run.cmd, true); err != nil && !processGone(err) {
			s.publishWarn(fmt.Sprintf("force kill pid %d: %v", run.pid, err))
		}
		if !s.waitSession(ctx, run, s.forcedWait) {
			s.publishWarn(fmt.Sprintf("pid %d still alive after forced kill", run.pid))
		}
	}

	// The reaper may have reported a natural exit that raced the kill
	// request; a session's end is announced exactly once.
	if !run.reported.CompareAndSwap(false, true) {
		return
	}
	s.bus.Publish(events.Event{
		Type:     events.EventTypeRunExited,
		Severity: events.SeverityInfo,
		Payload:  events.ExitPayload{Killed: true, Forced: forced},
	})
}

func (s *Supervisor) waitSession(ctx context.Context, run *session, window time.Duration) bool {
	timer := time.NewTimer(window)
	defer timer.Stop()
	select {
	case <-run.done:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return run.finished()
	}
}

func (s *Supervisor) publishWarn(message string) {
	s.bus.Publish(events.Event{
		Type:     events.EventTypeWatchError,
		Severity: events.SeverityWarn,
		Payload:  events.ErrorPayload{Message: message},
	})
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// clearTerminal wipes the screen and scrollback and homes the cursor.
func clearTerminal(out io.Writer) {
	_, _ = io.WriteString(out, "\x1b[2J\x1b[3J\x1b[H")
}
