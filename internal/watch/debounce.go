package watch

import (
	"sync"
	"time"
)

// DefaultWindow is the debounce window applied when none is configured.
const DefaultWindow = 150 * time.Millisecond

// Trigger is the coalesced "run the command now" signal. A burst of raw
// events collapses into exactly one Trigger carrying the time the window
// closed and a sample changed path for display.
type Trigger struct {
	Path string
	At   time.Time
}

// Debouncer performs trailing-edge coalescing: the callback fires once,
// one window after the last in-scope event of a burst, never mid-burst.
// It knows nothing about process state.
type Debouncer struct {
	window  time.Duration
	target  Target
	emit    func(Trigger)
	now     func() time.Time
	mu      sync.Mutex
	timer   *time.Timer
	last    string
	seq     uint64
	stopped bool
}

// NewDebouncer builds a debouncer that filters events through target and
// invokes emit for each coalesced trigger. A non-positive window falls back
// to DefaultWindow.
func NewDebouncer(window time.Duration, target Target, emit func(Trigger)) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{
		window: window,
		target: target,
		emit:   emit,
		now:    time.Now,
	}
}

// Window returns the configured debounce window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}

// Notify feeds one raw event in. Out-of-scope events are silently dropped.
// Each in-scope event resets the pending timer to now + window. The return
// value reports whether this event opened a new burst, which callers use to
// announce "change detected" exactly once per burst.
func (d *Debouncer) Notify(event Event) bool {
	if !d.target.Matches(event.Path) {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return false
	}

	d.last = event.Path
	d.seq++
	seq := d.seq
	opened := d.timer == nil

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.fire(seq)
	})
	return opened
}

// fire runs on the timer goroutine. The sequence guard discards stale
// firings that raced with a reset or Stop.
func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if d.stopped || seq != d.seq {
		d.mu.Unlock()
		return
	}
	trigger := Trigger{Path: d.last, At: d.now()}
	d.timer = nil
	d.last = ""
	d.mu.Unlock()

	d.emit(trigger)
}

// Stop cancels any pending trigger. The debouncer accepts no further
// events afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
