package auth

import (
	"sync"
)

// EventKind enumerates session lifecycle transitions. The set is closed:
// listeners switch on it rather than comparing strings.
type EventKind int

const (
	EventTokensUpdated EventKind = iota
	EventTokensCleared
	EventLogout
	EventSessionExpired
)

func (k EventKind) String() string {
	switch k {
	case EventTokensUpdated:
		return "tokensUpdated"
	case EventTokensCleared:
		return "tokensCleared"
	case EventLogout:
		return "logout"
	case EventSessionExpired:
		return "sessionExpired"
	default:
		return "unknown"
	}
}

// ExpiryReason says why the session ended
type ExpiryReason string

const (
	ReasonExpired       ExpiryReason = "expired"
	ReasonRefreshFailed ExpiryReason = "refresh_failed"
)

// Event is a single lifecycle notification. Reason is set only for
// EventSessionExpired.
type Event struct {
	Kind   EventKind
	Reason ExpiryReason
}

// Listener receives lifecycle events synchronously
type Listener func(Event)

type listenerEntry struct {
	id int
	fn Listener
}

// eventBus delivers events synchronously, in registration order, to the
// listeners registered at emission time.
type eventBus struct {
	mu        sync.Mutex
	listeners []listenerEntry
	nextID    int
}

func (b *eventBus) subscribe(fn Listener) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners = append(b.listeners, listenerEntry{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, entry := range b.listeners {
			if entry.id == id {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

func (b *eventBus) emit(ev Event) {
	b.mu.Lock()
	snapshot := make([]listenerEntry, len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.Unlock()

	// Called outside the lock so listeners can subscribe or unsubscribe
	for _, entry := range snapshot {
		entry.fn(ev)
	}
}
