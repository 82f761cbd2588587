package chat

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nfrund/parley/internal/presence"
	"github.com/nfrund/parley/internal/pubsub"
)

// Broadcaster is the slice of the hub the presence subscriber needs.
type Broadcaster interface {
	BroadcastAll(payload []byte)
}

// PresenceSubscriber listens for presence snapshots on the pub/sub bus and
// fans them out to every connected client as user-list events.
type PresenceSubscriber struct {
	subscriber pubsub.Subscriber
	hub        Broadcaster
}

// NewPresenceSubscriber creates a subscriber bound to the given bus and hub.
func NewPresenceSubscriber(sub pubsub.Subscriber, hub Broadcaster) *PresenceSubscriber {
	return &PresenceSubscriber{subscriber: sub, hub: hub}
}

// Start begins listening for presence snapshots. The subscription runs until
// the context is canceled.
func (ps *PresenceSubscriber) Start(ctx context.Context) error {
	slog.Info("Starting presence subscriber", "topic", presence.TopicUserList)
	return ps.subscriber.Subscribe(ctx, presence.TopicUserList, ps.handleSnapshot)
}

func (ps *PresenceSubscriber) handleSnapshot(ctx context.Context, msg pubsub.Message) error {
	// The payload is already the JSON identity list; wrap it verbatim.
	ps.hub.BroadcastAll(encodeEvent(EventUserList, json.RawMessage(msg.Payload)))
	return nil
}
