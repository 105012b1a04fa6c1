// Package events fans TripState snapshots out to stream subscribers.
package events

import (
	"sync"

	"github.com/tripwhizz/tripsync/internal/domain"
)

const subBufferSize = 8

// Bus is a non-blocking publish-subscribe bus. A subscriber that falls
// behind loses its oldest buffered snapshots instead of blocking the
// publisher. The newest snapshot is always delivered, and since every
// snapshot is complete it catches the subscriber up.
type Bus struct {
	mu   sync.Mutex
	subs map[string]chan domain.TripState
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]chan domain.TripState)}
}

// Subscribe registers id and returns its channel. Call Unsubscribe when done.
// Subscribing an id twice replaces (and closes) the earlier channel.
func (b *Bus) Subscribe(id string) <-chan domain.TripState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if old, ok := b.subs[id]; ok {
		close(old)
	}
	ch := make(chan domain.TripState, subBufferSize)
	b.subs[id] = ch
	return ch
}

// Unsubscribe removes id and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers state to every subscriber. When a subscriber's buffer is
// full the oldest pending snapshot is dropped to make room.
func (b *Bus) Publish(state domain.TripState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- state:
			continue
		default:
		}
		// Publish is the only sender and holds mu, so after one receive
		// there is room.
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
}

// SubscriberCount returns the current number of subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
