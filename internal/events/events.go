// Package events implements the small event bus spec.md's REDESIGN
// FLAGS section maps the original signals/slots onto: three event kinds
// (crystal_updated, status_overview, similarity_found) that UI or CLI
// consumers subscribe to, grounded on ehrlich-b-wingthing's broadcast-to-
// subscribers pattern (internal/relay's session broadcast).
package events

import "sync"

// Kind identifies one of the three events the scheduler emits.
type Kind string

const (
	CrystalUpdated  Kind = "crystal_updated"
	StatusOverview  Kind = "status_overview"
	SimilarityFound Kind = "similarity_found"
)

// Event is a single bus message. Payload's shape depends on Kind:
// CrystalUpdated carries a *crystal.Crystal id/status summary,
// StatusOverview carries a map[crystal.Status]int, SimilarityFound
// carries a dedup.Link. The bus itself stays domain-agnostic so callers
// can subscribe without importing every producer package.
type Event struct {
	Kind    Kind
	Payload any
}

// Bus fans Publish calls out to every current Subscribe-r. Delivery is
// best-effort: a subscriber whose channel is full drops the event rather
// than blocking the publisher, since the scheduler loop must never stall
// on a slow consumer.
type Bus struct {
	mu          sync.Mutex
	subscribers map[int]chan Event
	nextID      int
}

// NewBus returns an empty, ready-to-use event bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[int]chan Event)}
}

// Subscribe registers a new listener with the given channel buffer size
// and returns the channel plus an unsubscribe function the caller must
// eventually call.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	b.subscribers[id] = ch
	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

// Publish delivers ev to every current subscriber, dropping it for any
// subscriber whose buffer is currently full.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
