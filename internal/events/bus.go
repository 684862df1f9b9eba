// Package events provides scoped "data changed" notifications. A publisher
// announces that data in a scope (e.g. "calendar") changed; independent
// subscribers each decide how to react, typically by re-fetching. There is
// no shared mutable flag and no payload: a notification only means "your
// view of this scope may be stale".
package events

import "sync"

// Bus fans out change notifications per scope. Publishing never blocks:
// a subscriber that has not drained its channel keeps exactly one pending
// notification, consecutive publishes coalesce.
type Bus struct {
	mu   sync.Mutex
	subs map[string][]chan struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string][]chan struct{})}
}

// Subscribe returns a channel that receives a signal whenever the scope is
// published. The channel is never closed.
func (b *Bus) Subscribe(scope string) <-chan struct{} {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	b.subs[scope] = append(b.subs[scope], ch)
	b.mu.Unlock()

	return ch
}

// Publish notifies every subscriber of the scope.
func (b *Bus) Publish(scope string) {
	b.mu.Lock()
	subs := b.subs[scope]
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
