package generation

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/domain"
)

// ProgressEvent is delivered to subscribers after every counter update.
type ProgressEvent struct {
	BatchID  string          `json:"batch_id"`
	Progress domain.Progress `json:"progress"`
	Final    bool            `json:"final"`
	Time     time.Time       `json:"time"`
}

// Subscriber consumes progress events. Errors are logged, never
// propagated back into worker execution.
type Subscriber func(ProgressEvent) error

// Notifier decouples the publishing workers from slow or failing
// consumers: events go through a bounded channel drained by a single
// goroutine, and a full channel drops the event instead of blocking.
type Notifier struct {
	logger *slog.Logger

	mu     sync.Mutex
	subs   []Subscriber
	closed bool

	events  chan ProgressEvent
	done    chan struct{}
	dropped uint64
}

// NewNotifier creates a notifier with the given buffer capacity and
// starts its consumer goroutine.
func NewNotifier(buffer int, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if buffer <= 0 {
		buffer = 64
	}
	n := &Notifier{
		logger: logger,
		events: make(chan ProgressEvent, buffer),
		done:   make(chan struct{}),
	}
	go n.run()
	return n
}

// Subscribe registers a consumer for all subsequent events.
func (n *Notifier) Subscribe(sub Subscriber) {
	n.mu.Lock()
	n.subs = append(n.subs, sub)
	n.mu.Unlock()
}

// Publish enqueues an event without blocking. If the buffer is full, or
// the notifier is already closed, the event is dropped and counted.
func (n *Notifier) Publish(ev ProgressEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		atomic.AddUint64(&n.dropped, 1)
		return
	}
	select {
	case n.events <- ev:
	default:
		atomic.AddUint64(&n.dropped, 1)
		n.logger.Warn("Progress event buffer full, dropping event",
			slog.String("batch_id", ev.BatchID),
		)
	}
}

// Dropped returns the number of events discarded because the buffer was full.
func (n *Notifier) Dropped() uint64 {
	return atomic.LoadUint64(&n.dropped)
}

// Close stops the consumer goroutine after draining buffered events.
// Events published after Close are dropped. Close is idempotent.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		<-n.done
		return
	}
	n.closed = true
	close(n.events)
	n.mu.Unlock()
	<-n.done
}

func (n *Notifier) run() {
	defer close(n.done)
	for ev := range n.events {
		n.mu.Lock()
		subs := make([]Subscriber, len(n.subs))
		copy(subs, n.subs)
		n.mu.Unlock()

		for _, sub := range subs {
			n.deliver(sub, ev)
		}
	}
}

func (n *Notifier) deliver(sub Subscriber, ev ProgressEvent) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Progress subscriber panicked",
				slog.String("batch_id", ev.BatchID),
				slog.Any("panic", r),
			)
		}
	}()

	if err := sub(ev); err != nil {
		n.logger.Warn("Progress subscriber failed",
			slog.String("batch_id", ev.BatchID),
			slog.String("error", err.Error()),
		)
	}
}
