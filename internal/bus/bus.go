// Package bus implements the process-wide broadcast fan-out: one publisher
// path, many subscribers, bounded per-subscriber buffering, and
// lag-tolerant delivery (a slow consumer is told how many events it missed
// rather than blocking the publisher or the whole bus).
package bus

import (
	"sync"
	"sync/atomic"

	"github.com/nostr-rly/relay/internal/nostr"
)

// Bus is a multi-producer/multi-consumer fan-out channel of events.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
	bufferSize  int
	closed      bool
}

// New creates a bus with the given per-subscriber buffer capacity.
func New(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 4096
	}
	return &Bus{
		subscribers: make(map[*Subscriber]struct{}),
		bufferSize:  bufferSize,
	}
}

// Subscriber is one consumer's view of the bus: a bounded event channel
// plus a lag counter. Owned exclusively by the connection that subscribed.
type Subscriber struct {
	bus    *Bus
	events chan *nostr.Event
	lagged int64 // atomic
}

// Subscribe registers a new subscriber. The caller must call Unsubscribe
// when done (typically via defer on connection exit).
func (b *Bus) Subscribe() *Subscriber {
	sub := &Subscriber{
		bus:    b,
		events: make(chan *nostr.Event, b.bufferSize),
	}
	b.mu.Lock()
	b.subscribers[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscriber; its channel is closed so any blocked
// consumer loop observes channel closure.
func (b *Bus) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	if _, ok := b.subscribers[sub]; ok {
		delete(b.subscribers, sub)
		close(sub.events)
	}
	b.mu.Unlock()
}

// Publish delivers an event to every live subscriber, in publication order.
// A subscriber whose buffer is full does not block the publisher or any
// other subscriber; that subscriber's lag counter is incremented instead.
func (b *Bus) Publish(e *nostr.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub.events <- e:
		default:
			atomic.AddInt64(&sub.lagged, 1)
		}
	}
}

// Close closes every subscriber's channel, signaling the terminal "bus
// closed" condition to any consumer loop selecting on Events().
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subscribers {
		close(sub.events)
	}
	b.subscribers = make(map[*Subscriber]struct{})
}

// Events returns the channel to select on. A closed channel (nil, false)
// from a receive signals the bus (or this subscription) has terminated.
func (s *Subscriber) Events() <-chan *nostr.Event {
	return s.events
}

// TakeLagged atomically returns and resets the number of events dropped
// for this subscriber since the last call.
func (s *Subscriber) TakeLagged() int64 {
	return atomic.SwapInt64(&s.lagged, 0)
}
