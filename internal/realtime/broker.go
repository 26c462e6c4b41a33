package realtime

import (
	"sync"
	"time"
)

const defaultSubscribeBuffer = 64

// subscription represents one active event stream.
type subscription struct {
	filter Filter
	ch     chan Event
	done   chan struct{}
}

// Broker fans published events out to matching subscribers over bounded
// channels. Publishing never blocks: a subscriber that cannot keep up
// has events dropped rather than stalling the producer.
type Broker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscription
	buffer int
}

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithSubscribeBuffer sets the per-subscription channel capacity.
func WithSubscribeBuffer(n int) BrokerOption {
	return func(b *Broker) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// NewBroker creates an in-process event broker.
func NewBroker(opts ...BrokerOption) *Broker {
	b := &Broker{
		subs:   make(map[int]*subscription),
		buffer: defaultSubscribeBuffer,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a stream for events matching the filter. The
// returned cancel function is idempotent; it closes the channel so
// range loops over it terminate.
func (b *Broker) Subscribe(filter Filter) (<-chan Event, func()) {
	sub := &subscription{
		filter: filter,
		ch:     make(chan Event, b.buffer),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; !ok {
			return // already cancelled or broker closed
		}
		delete(b.subs, id)
		close(sub.done)
		close(sub.ch)
	}

	return sub.ch, cancel
}

// Publish delivers an event to all matching subscribers. Subscribers
// with full buffers are skipped.
func (b *Broker) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if !sub.filter.Matches(&event) {
			continue
		}
		select {
		case <-sub.done:
			// Cancelled but not yet removed; skip.
		case sub.ch <- event:
		default:
			// Drop rather than block the publisher.
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close cancels all subscriptions.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subs {
		close(sub.done)
		close(sub.ch)
		delete(b.subs, id)
	}
}
