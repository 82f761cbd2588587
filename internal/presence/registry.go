package presence

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nfrund/parley/internal/domain"
	"github.com/nfrund/parley/internal/pubsub"
)

// TopicUserList carries the full online-user snapshot published after every
// registry mutation. The payload is a JSON array of identities.
const TopicUserList = "presence.user-list"

// Registry is the process-wide mapping of live connection ids to identities.
// It is the source of truth for the "who is online" view. Each connection is
// tracked independently: the same user on two connections appears twice in
// the snapshot, and the entry for one connection is unaffected by the other.
//
// Every mutation publishes a full snapshot, not a delta. That is cheap at the
// scale this system targets; a delta protocol would only pay for itself well
// past that. Each snapshot is computed under the same lock as its mutation,
// but publishing happens after unlock, so two overlapping mutations can
// publish their snapshots out of order and the last broadcast received may be
// momentarily stale. The next mutation corrects it.
type Registry struct {
	mu        sync.Mutex
	entries   map[string]domain.Identity
	publisher pubsub.Publisher
	logger    *slog.Logger
}

// NewRegistry creates an empty Registry publishing snapshots to the given bus.
func NewRegistry(publisher pubsub.Publisher) *Registry {
	return &Registry{
		entries:   make(map[string]domain.Identity),
		publisher: publisher,
		logger:    slog.Default().With("service", "presence"),
	}
}

// Upsert records the identity for a connection and publishes the updated
// snapshot. The snapshot is computed under the same lock as the mutation so
// no other mutation can interleave between the two.
func (r *Registry) Upsert(connectionID string, identity domain.Identity) {
	r.mu.Lock()
	r.entries[connectionID] = identity
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Debug("Presence entry added", "connection_id", connectionID, "user_id", identity.UserID, "online", len(snapshot))
	r.publish(snapshot)
}

// Remove drops a connection's entry and publishes the updated snapshot.
// Removing a connection that was never registered is a no-op: no entry, no
// broadcast.
func (r *Registry) Remove(connectionID string) {
	r.mu.Lock()
	identity, ok := r.entries[connectionID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.entries, connectionID)
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Debug("Presence entry removed", "connection_id", connectionID, "user_id", identity.UserID, "online", len(snapshot))
	r.publish(snapshot)
}

// Snapshot returns the identities of all currently tracked connections.
// Order follows map iteration and is not stable across removals.
func (r *Registry) Snapshot() []domain.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() []domain.Identity {
	snapshot := make([]domain.Identity, 0, len(r.entries))
	for _, identity := range r.entries {
		snapshot = append(snapshot, identity)
	}
	return snapshot
}

func (r *Registry) publish(snapshot []domain.Identity) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		r.logger.Error("Failed to marshal presence snapshot", "error", err)
		return
	}

	msg := pubsub.Message{
		Topic:   TopicUserList,
		Payload: payload,
	}
	if err := r.publisher.Publish(context.Background(), msg); err != nil {
		r.logger.Error("Failed to publish presence snapshot", "error", err, "topic", TopicUserList)
	}
}
