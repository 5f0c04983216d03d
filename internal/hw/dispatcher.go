// internal/hw/dispatcher.go
package hw

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueFull is returned when the event queue cannot take another event.
var ErrQueueFull = errors.New("hw: event queue full")

const defaultQueueDepth = 64

type waiterKey struct {
	kind EventKind
	idx  Index
}

// Dispatcher owns the single event queue of a port.
// Hardware events and synthetic events are both published here and
// delivered in order by Run. Waiters are one-shot: a delivered event
// consumes the registration.
type Dispatcher struct {
	queue chan Event

	mu      sync.Mutex
	waiters map[waiterKey][]chan<- Event
	dropped uint64
}

// NewDispatcher creates a dispatcher with a bounded queue.
func NewDispatcher(depth int) *Dispatcher {
	if depth <= 0 {
		depth = defaultQueueDepth
	}
	return &Dispatcher{
		queue:   make(chan Event, depth),
		waiters: make(map[waiterKey][]chan<- Event),
	}
}

// Register arms a one-shot waiter. w should be buffered; delivery never blocks.
func (d *Dispatcher) Register(kind EventKind, idx Index, w chan<- Event) error {
	if w == nil {
		return errors.New("hw: nil waiter")
	}
	k := waiterKey{kind, idx}
	d.mu.Lock()
	d.waiters[k] = append(d.waiters[k], w)
	d.mu.Unlock()
	return nil
}

// Publish enqueues an event. Never blocks.
func (d *Dispatcher) Publish(ev Event) error {
	select {
	case d.queue <- ev:
		return nil
	default:
		d.mu.Lock()
		d.dropped++
		d.mu.Unlock()
		return ErrQueueFull
	}
}

// Signal enqueues a synthetic event.
func (d *Dispatcher) Signal(kind EventKind, idx Index, p Payload) error {
	return d.Publish(Event{Kind: kind, Index: idx, Payload: p, Synthetic: true})
}

// Run delivers queued events until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.queue:
			d.deliver(ev)
		}
	}
}

func (d *Dispatcher) deliver(ev Event) {
	k := waiterKey{ev.Kind, ev.Index}

	d.mu.Lock()
	ws := d.waiters[k]
	delete(d.waiters, k)
	if len(ws) == 0 {
		d.dropped++
	}
	d.mu.Unlock()

	for _, w := range ws {
		select {
		case w <- ev:
		default:
			// waiter already satisfied or abandoned
		}
	}
}

// Pending returns the number of armed waiters for (kind, idx).
func (d *Dispatcher) Pending(kind EventKind, idx Index) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.waiters[waiterKey{kind, idx}])
}

// Dropped returns the number of events that found no waiter or no queue room.
func (d *Dispatcher) Dropped() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}
