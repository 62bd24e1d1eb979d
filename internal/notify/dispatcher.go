package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/example/confirmation-links/internal/application"
)

// Sender delivers a single decision event.
type Sender interface {
	Send(ctx context.Context, event application.DecisionEvent) error
}

// Dispatcher decouples decision handling from webhook delivery. Events are
// queued and delivered by a background worker; delivery errors are logged and
// dropped. When the queue is full the event is dropped rather than blocking
// the caller.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	logger  *slog.Logger
	queue   chan application.DecisionEvent
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewDispatcher constructs a Dispatcher and starts its delivery worker.
func NewDispatcher(sender Sender, timeout time.Duration, queueSize int, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		sender:  sender,
		timeout: timeout,
		logger:  logger,
		queue:   make(chan application.DecisionEvent, queueSize),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Notify implements application.Notifier. It never blocks and never fails,
// including after Close: a late event is dropped with a warning, never a
// send on a closed channel.
func (d *Dispatcher) Notify(event application.DecisionEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.logger.Warn("notification dropped, dispatcher closed",
			"appointment_id", event.ID,
			"status", event.Status,
		)
		return
	}

	select {
	case d.queue <- event:
	default:
		d.logger.Warn("notification dropped, queue full",
			"appointment_id", event.ID,
			"status", event.Status,
		)
	}
}

// Close stops accepting events and waits for queued deliveries to finish.
// Safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for event := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.sender.Send(ctx, event)
		cancel()
		if err != nil {
			d.logger.Error("notification delivery failed",
				"appointment_id", event.ID,
				"status", event.Status,
				"error", err,
			)
			continue
		}
		d.logger.Info("notification delivered",
			"appointment_id", event.ID,
			"status", event.Status,
		)
	}
}

// NopNotifier discards decision events. Used when no notification endpoint is
// configured, which disables notification entirely.
type NopNotifier struct{}

// Notify implements application.Notifier.
func (NopNotifier) Notify(application.DecisionEvent) {}
