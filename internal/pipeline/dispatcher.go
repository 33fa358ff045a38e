package pipeline

import (
	"context"
	"sync"

	"github.com/couchcryptid/weather-sensor-bridge/internal/domain"
)

// Subscriber receives every published record.
type Subscriber func(ctx context.Context, rec domain.CanonicalRecord)

// Dispatcher calls its subscribers in registration order.
type Dispatcher struct {
	mu          sync.Mutex
	subscribers []Subscriber
}

// NewDispatcher creates a Dispatcher with no subscribers.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe appends fn. Subscribers cannot be removed.
func (d *Dispatcher) Subscribe(fn Subscriber) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, fn)
}

// Dispatch calls every subscriber once with rec, synchronously. A panicking
// subscriber is not recovered.
func (d *Dispatcher) Dispatch(ctx context.Context, rec domain.CanonicalRecord) {
	d.mu.Lock()
	subs := make([]Subscriber, len(d.subscribers))
	copy(subs, d.subscribers)
	d.mu.Unlock()

	for _, fn := range subs {
		fn(ctx, rec)
	}
}
