package bus

import (
	"sync"

	"github.com/angler-ua/deviceconf/internal/config"
)

// Bus provides fan-out pub/sub semantics for *config.Config* snapshots.
// Each Subscribe call gets its own channel that receives every future
// publication. Past snapshots are not replayed. The implementation is safe
// for concurrent publishers and subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan *config.Config
}

// New creates a ready-to-use Bus.
func New() *Bus { return &Bus{} }

// Subscribe returns a read-only channel that will receive all future
// config snapshots.
func (b *Bus) Subscribe() <-chan *config.Config {
	ch := make(chan *config.Config, 1) // small buffer avoids blocking
	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers the snapshot to all subscribers in a best-effort,
// non-blocking way. A subscriber that has not drained its buffer misses
// this snapshot and catches up on the next one; the publisher never stalls.
func (b *Bus) Publish(cfg *config.Config) {
	b.mu.RLock()
	subs := make([]chan *config.Config, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- cfg:
		default:
			continue
		}
	}
}

// Close closes all subscriber channels. Publish must not be called after Close.
func (b *Bus) Close() {
	b.mu.Lock()
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
	b.mu.Unlock()
}
