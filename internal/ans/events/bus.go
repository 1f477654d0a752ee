package events

import (
	"context"
	"sync"
	"sync/atomic"
)

// Bus fans events out to in-process subscribers. Delivery never blocks the
// publisher: a subscriber whose buffer is full misses the event.
type Bus struct {
	mu      sync.RWMutex
	subs    map[uint64]chan NameAssigned
	nextID  uint64
	closed  bool
	dropped atomic.Uint64
}

func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]chan NameAssigned)}
}

// Subscribe registers a subscriber with the given buffer size. The returned
// cancel func unsubscribes and closes the channel; it is safe to call twice.
func (b *Bus) Subscribe(buffer int) (<-chan NameAssigned, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan NameAssigned, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Publish implements Publisher.
func (b *Bus) Publish(_ context.Context, event NameAssigned) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
	return nil
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes every subscriber channel. Later subscriptions receive a closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
