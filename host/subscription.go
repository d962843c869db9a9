package host

import (
	"context"
	"errors"
	"sync"

	"github.com/benoitkugler/okchart/chart"
)

// ErrClosed is returned when publishing to a closed subscription.
var ErrClosed = errors.New("subscription closed")

// Subscription delivers payloads to a callback, in order,
// one at a time, from a dedicated goroutine.
type Subscription struct {
	payloads chan chart.Payload
	done     chan struct{}

	mu     sync.RWMutex
	closed bool
}

// Subscribe starts the delivery loop. `buffer` is the number of payloads
// which may be queued before Publish blocks.
func Subscribe(callback func(chart.Payload), buffer int) *Subscription {
	s := &Subscription{
		payloads: make(chan chart.Payload, buffer),
		done:     make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		for payload := range s.payloads {
			callback(payload)
		}
	}()
	return s
}

// Publish queues a payload for delivery.
func (s *Subscription) Publish(ctx context.Context, payload chart.Payload) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	select {
	case s.payloads <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting payloads and waits until
// the queued ones are delivered.
func (s *Subscription) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.payloads)
	}
	s.mu.Unlock()
	<-s.done
}
