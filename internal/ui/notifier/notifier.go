// Package notifier fans out data-change events to connected dashboard
// clients.
package notifier

import (
	"sync"
	"time"
)

// Source identifies what changed.
type Source string

// Event sources.
const (
	// SourceAnalytics means the analytics database file changed on disk.
	SourceAnalytics Source = "analytics"
	// SourceCRUD means a mutation was applied to the CRUD target.
	SourceCRUD Source = "crud"
)

// Event describes a change that may invalidate rendered results.
type Event struct {
	Source Source
	Detail string
	At     time.Time
}

// Notifier delivers the latest Event to every subscriber. Each subscriber
// holds at most one pending event; a newer event replaces an unread one.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Event]struct{}
	now       func() time.Time
}

// New creates a Notifier.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Event]struct{}),
		now:       time.Now,
	}
}

// Subscribe registers a listener. Callers must Unsubscribe when done.
func (n *Notifier) Subscribe() chan Event {
	ch := make(chan Event, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a listener channel.
func (n *Notifier) Unsubscribe(ch chan Event) {
	n.mu.Lock()
	if _, ok := n.listeners[ch]; ok {
		delete(n.listeners, ch)
		close(ch)
	}
	n.mu.Unlock()
}

// Len returns the number of subscribers.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Broadcast sends an event from src to all listeners without blocking.
func (n *Notifier) Broadcast(src Source, detail string) {
	ev := Event{Source: src, Detail: detail, At: n.now()}

	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- ev:
		default:
			// drop the stale pending event and deliver the newer one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}
