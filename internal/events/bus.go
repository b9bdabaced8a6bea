// Package events carries the observable lifecycle stream of a watch
// session: watch startup, detected changes, kills, spawns, and exits. The
// core publishes; display layers subscribe.
package events

import (
	"log"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultBufferSize is the default per-subscriber channel capacity.
	DefaultBufferSize = 64

	// EventTypeWatchStarted announces that subscriptions are live for the
	// resolved targets.
	EventTypeWatchStarted = "WatchStarted"
	// EventTypeChangeDetected announces the first in-scope change of a
	// burst, before the debounce window closes.
	EventTypeChangeDetected = "ChangeDetected"
	// EventTypeRunTerminating announces that the previous run is being
	// killed to make room for a fresh one.
	EventTypeRunTerminating = "RunTerminating"
	// EventTypeRunSpawned announces a freshly spawned command process.
	EventTypeRunSpawned = "RunSpawned"
	// EventTypeRunExited announces a command process that finished on its
	// own, with its exit code.
	EventTypeRunExited = "RunExited"
	// EventTypeSpawnFailed announces a command that could not start.
	EventTypeSpawnFailed = "SpawnFailed"
	// EventTypeWatchError announces a failure in the OS notification
	// subsystem.
	EventTypeWatchError = "WatchError"
)

const (
	// SeverityInfo indicates informational event severity.
	SeverityInfo = "INFO"
	// SeverityWarn indicates warning event severity.
	SeverityWarn = "WARN"
	// SeverityError indicates error event severity.
	SeverityError = "ERROR"
)

// WatchPayload describes the resolved targets of a started session.
type WatchPayload struct {
	Targets []string
	Command string
	Window  time.Duration
}

// ChangePayload describes the sample path that opened a burst.
type ChangePayload struct {
	Path string
}

// SpawnPayload describes a spawned command process.
type SpawnPayload struct {
	Command string
	PID     int
}

// ExitPayload describes a run that ended, either on its own or by kill.
type ExitPayload struct {
	Code   int
	Killed bool
	Forced bool
}

// ErrorPayload carries a human-readable failure message.
type ErrorPayload struct {
	Message string
}

// Event is the normalized message delivered through the in-process bus.
type Event struct {
	Type      string
	Timestamp time.Time
	Severity  string
	Payload   any
}

// Handler consumes a published event.
type Handler func(Event)

// Logger captures warning logs for dropped events.
type Logger interface {
	Printf(format string, args ...any)
}

// Bus defines event subscription and publish behavior.
type Bus interface {
	Subscribe(eventType string, handler Handler)
	SubscribeAll(handler Handler)
	Publish(event Event)
}

// Option customizes bus construction.
type Option func(*InMemoryBus)

// WithBufferSize configures per-subscriber channel capacity.
func WithBufferSize(size int) Option {
	return func(bus *InMemoryBus) {
		if size > 0 {
			bus.bufferSize = size
		}
	}
}

// WithLogger configures the log sink used for dropped-event warnings.
func WithLogger(logger Logger) Option {
	return func(bus *InMemoryBus) {
		if logger != nil {
			bus.logger = logger
		}
	}
}

// InMemoryBus is a thread-safe in-process pub/sub bus backed by buffered
// channels. A slow subscriber drops events rather than stalling the core.
type InMemoryBus struct {
	mu             sync.RWMutex
	bufferSize     int
	logger         Logger
	typedSubs      map[string][]*subscriber
	wildcardSubs   []*subscriber
	nextSubscriber uint64
}

type subscriber struct {
	id uint64
	ch chan Event
}

// New creates an in-memory event bus with optional configuration.
func New(options ...Option) *InMemoryBus {
	bus := &InMemoryBus{
		bufferSize:   DefaultBufferSize,
		logger:       log.Default(),
		typedSubs:    make(map[string][]*subscriber),
		wildcardSubs: make([]*subscriber, 0),
	}
	for _, option := range options {
		option(bus)
	}
	return bus
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryBus) Subscribe(eventType string, handler Handler) {
	normalizedType := strings.TrimSpace(eventType)
	if normalizedType == "" || handler == nil {
		return
	}
	sub := b.newSubscriber()

	b.mu.Lock()
	b.typedSubs[normalizedType] = append(b.typedSubs[normalizedType], sub)
	b.mu.Unlock()

	go b.consume(sub, handler)
}

// SubscribeAll registers a handler that receives every published event.
func (b *InMemoryBus) SubscribeAll(handler Handler) {
	if handler == nil {
		return
	}
	sub := b.newSubscriber()

	b.mu.Lock()
	b.wildcardSubs = append(b.wildcardSubs, sub)
	b.mu.Unlock()

	go b.consume(sub, handler)
}

// Publish delivers an event to typed subscribers and wildcard subscribers.
func (b *InMemoryBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	typed, wildcard := b.snapshotSubscribers(strings.TrimSpace(event.Type))
	for _, sub := range typed {
		b.deliver(sub, event)
	}
	for _, sub := range wildcard {
		b.deliver(sub, event)
	}
}

func (b *InMemoryBus) snapshotSubscribers(eventType string) ([]*subscriber, []*subscriber) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	typed := make([]*subscriber, len(b.typedSubs[eventType]))
	copy(typed, b.typedSubs[eventType])

	wildcard := make([]*subscriber, len(b.wildcardSubs))
	copy(wildcard, b.wildcardSubs)

	return typed, wildcard
}

func (b *InMemoryBus) deliver(sub *subscriber, event Event) {
	select {
	case sub.ch <- event:
	default:
		b.logger.Printf("events: dropping event for subscriber=%d type=%s", sub.id, event.Type)
	}
}

func (b *InMemoryBus) newSubscriber() *subscriber {
	b.mu.Lock()
	b.nextSubscriber++
	id := b.nextSubscriber
	b.mu.Unlock()

	return &subscriber{
		id: id,
		ch: make(chan Event, b.bufferSize),
	}
}

func (b *InMemoryBus) consume(sub *subscriber, handler Handler) {
	for event := range sub.ch {
		handler(event)
	}
}
