// Package runtime hosts the realtime core: the presence registry, the
// connection sessions, and the delivery coordinator that fans events out
// to them. It orchestrates the system without containing REST plumbing.
package runtime

import (
	"chatline/contract"
	"chatline/domain/event"
	"context"
	"sync"
)

// Registry is the process-wide map from user ID to their live connection.
// It is the single source of truth for "who is online". One entry per
// user: a reconnect replaces the previous entry (last writer wins); the
// registry does not detect or merge duplicate sessions.
type Registry struct {
	mu     sync.RWMutex
	online map[string]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{online: make(map[string]contract.EventSink)}
}

// MarkOnline inserts or overwrites the entry for userID and returns the
// full online snapshot as seen right after the insert, which is what the
// announcing connection receives. Re-announcing the same sink is a no-op
// observably. The second return reports whether the user was offline
// before the call; replacements and replays return false, so callers
// counting online users never double-count a reconnect.
func (r *Registry) MarkOnline(userID string, sink contract.EventSink) ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, existed := r.online[userID]
	r.online[userID] = sink

	snapshot := make([]string, 0, len(r.online))
	for id := range r.online {
		snapshot = append(snapshot, id)
	}
	return snapshot, !existed
}

// MarkOffline removes the entry whose value is exactly this sink. The
// registry is keyed by user, so this is a scan-by-value. When the user
// already reconnected on a newer sink there is no matching entry and the
// call is a silent no-op; it must never evict the newer connection.
func (r *Registry) MarkOffline(sink contract.EventSink) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, current := range r.online {
		if current == sink {
			delete(r.online, userID)
			return userID, true
		}
	}
	return "", false
}

// Lookup resolves a user to their live connection, if any. Used by the
// coordinator to decide direct delivery versus store-only.
func (r *Registry) Lookup(userID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.online[userID]
	return sink, ok
}

// Snapshot returns the IDs of every user currently online.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.online))
	for id := range r.online {
		ids = append(ids, id)
	}
	return ids
}

// Broadcast pushes an event to every online connection except
// exceptUserID. Delivery is fire-and-forget; a slow consumer drops the
// event rather than blocking the caller.
func (r *Registry) Broadcast(ctx context.Context, e event.DomainEvent, exceptUserID string) {
	r.mu.RLock()
	sinks := make([]contract.EventSink, 0, len(r.online))
	for userID, sink := range r.online {
		if userID == exceptUserID {
			continue
		}
		sinks = append(sinks, sink)
	}
	r.mu.RUnlock()

	for _, sink := range sinks {
		_ = sink.Consume(ctx, e)
	}
}
