package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultEventBuffer = 64

// ErrPathMissing reports a configured watch path that does not exist. It is
// raised before any OS subscription is established.
var ErrPathMissing = errors.New("watch path does not exist")

// Event is one raw filesystem change notification. Delivery is
// at-least-once; bursts are coalesced downstream by the Debouncer.
type Event struct {
	Path string
	Op   fsnotify.Op
	At   time.Time
}

// Watcher subscribes to OS filesystem notifications for a Target and emits
// raw events for leaf files. Directories are watched recursively; newly
// created directories are added to the subscription as they appear.
type Watcher struct {
	target Target
	fs     *fsnotify.Watcher
	events chan Event
	errs   chan error
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewWatcher validates that every explicit root exists, then establishes
// recursive OS subscriptions. On error no resources are held.
func NewWatcher(target Target) (*Watcher, error) {
	roots := target.Roots()
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrPathMissing, root)
		}
	}

	source, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	watcher := &Watcher{
		target: target,
		fs:     source,
		events: make(chan Event, defaultEventBuffer),
		errs:   make(chan error, 4),
		done:   make(chan struct{}),
	}

	for _, root := range roots {
		if err := watcher.addRecursive(root); err != nil {
			_ = source.Close()
			return nil, err
		}
	}

	go watcher.run()
	return watcher, nil
}

// Events returns the raw event stream.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns watch subsystem failures (resource exhaustion, lost
// subscriptions). These are surfaced, never swallowed.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Close releases all OS subscriptions. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	return w.fs.Close()
}

// addRecursive subscribes root and, when root is a directory, every
// directory beneath it. fsnotify watches are non-recursive so the walk is
// ours to do.
func (w *Watcher) addRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPathMissing, root)
	}
	if !info.IsDir() {
		if err := w.fs.Add(root); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
		return nil
	}

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) run() {
	for {
		select {
		case raw, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(raw)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			case <-w.done:
				return
			}
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(raw fsnotify.Event) {
	if raw.Has(fsnotify.Create) {
		if info, err := os.Stat(raw.Name); err == nil && info.IsDir() {
			// A directory appeared under a watched root; extend the
			// subscription and drop the event itself.
			_ = w.addRecursive(raw.Name)
			return
		}
	}
	if !qualifies(raw.Op) {
		return
	}
	if info, err := os.Stat(raw.Name); err == nil && info.IsDir() {
		return
	}

	event := Event{Path: raw.Name, Op: raw.Op, At: time.Now()}
	select {
	case w.events <- event:
	case <-w.done:
	}
}

// qualifies keeps the change kinds that should re-run the command: content
// writes, new files, and renames. Chmod and removal churn is noise.
func qualifies(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename)
}
