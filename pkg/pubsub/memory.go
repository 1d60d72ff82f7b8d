package pubsub

import (
	"context"
	"sync"
)

// MemoryPubSub delivers events within a single process.
type MemoryPubSub struct {
	mu     sync.RWMutex
	subs   map[string]map[chan *Event]struct{}
	buffer int
	closed bool
}

// NewMemoryPubSub creates an in-process pub/sub.
func NewMemoryPubSub(buffer int) *MemoryPubSub {
	if buffer <= 0 {
		buffer = 16
	}
	return &MemoryPubSub{
		subs:   make(map[string]map[chan *Event]struct{}),
		buffer: buffer,
	}
}

// Publish delivers event to every current subscriber of channel. Slow
// subscribers miss the event rather than block the publisher.
func (m *MemoryPubSub) Publish(ctx context.Context, channel string, event *Event) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for ch := range m.subs[channel] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscription that ends with ctx.
func (m *MemoryPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	ch := make(chan *Event, m.buffer)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		close(ch)
		return ch, nil
	}
	if m.subs[channel] == nil {
		m.subs[channel] = make(map[chan *Event]struct{})
	}
	m.subs[channel][ch] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.remove(channel, ch)
	}()
	return ch, nil
}

func (m *MemoryPubSub) remove(channel string, ch chan *Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subs[channel][ch]; !ok {
		return
	}
	delete(m.subs[channel], ch)
	if len(m.subs[channel]) == 0 {
		delete(m.subs, channel)
	}
	close(ch)
}

// Close ends every subscription.
func (m *MemoryPubSub) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for channel, set := range m.subs {
		for ch := range set {
			close(ch)
		}
		delete(m.subs, channel)
	}
	m.closed = true
	return nil
}

var _ PubSub = (*MemoryPubSub)(nil)
