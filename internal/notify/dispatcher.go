package notify

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Sender delivers one notification.
type Sender interface {
	Send(ctx context.Context, cameraID, fullName string) error
}

// Event is a recognized person to bookmark.
type Event struct {
	CameraID string
	FullName string
}

// Result is reported for every processed or dropped event.
type Result struct {
	Event   Event
	Err     error
	Dropped bool
}

// Dispatcher delivers events on a background goroutine. Callers never wait for
// delivery, failures are published on an internal error channel and logged.
type Dispatcher struct {
	sender Sender
	log    *zap.Logger
	events chan Event
	errs   chan error
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	closed bool

	// OnResult is called after each event is processed or dropped.
	// Set it before the first Notify.
	OnResult func(Result)
}

// NewDispatcher starts a dispatcher with a queue of queueSize events.
func NewDispatcher(sender Sender, log *zap.Logger, queueSize int) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		sender: sender,
		log:    log,
		events: make(chan Event, queueSize),
		errs:   make(chan error, queueSize),
		done:   make(chan struct{}),
	}
	go d.logErrors()
	go d.run()
	return d
}

// Notify enqueues an event without blocking. A full queue drops the event.
func (d *Dispatcher) Notify(e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.report(Result{Event: e, Dropped: true})
		return
	}
	select {
	case d.events <- e:
	default:
		d.log.Warn("Notification queue full, dropping bookmark",
			zap.String("camera_id", e.CameraID), zap.String("user", e.FullName))
		d.report(Result{Event: e, Dropped: true})
	}
}

func (d *Dispatcher) run() {
	defer close(d.errs)
	for e := range d.events {
		err := d.sender.Send(context.Background(), e.CameraID, e.FullName)
		if err != nil {
			select {
			case d.errs <- fmt.Errorf("bookmark for %q (camera %q): %w", e.FullName, e.CameraID, err):
			default:
				d.log.Error("Notification failed", zap.Error(err))
			}
		}
		d.report(Result{Event: e, Err: err})
	}
}

func (d *Dispatcher) logErrors() {
	defer close(d.done)
	for err := range d.errs {
		d.log.Error("Notification failed", zap.Error(err))
	}
}

func (d *Dispatcher) report(r Result) {
	if d.OnResult != nil {
		d.OnResult(r)
	}
}

// Close stops accepting events and waits until queued ones are delivered or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.events)
		d.mu.Unlock()
	})

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("draining notifications: %w", ctx.Err())
	}
}
