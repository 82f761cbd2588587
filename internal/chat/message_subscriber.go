package chat

import (
	"context"
	"log/slog"

	"github.com/nfrund/parley/internal/pubsub"
)

// TopicRoomMessages carries persisted chat messages on their way from the
// protocol engine to room delivery. The payload is an encoded message frame;
// the room label rides in metadata and the sender in the message's UserID.
const TopicRoomMessages = "chat.room-messages"

const metaKeyRoom = "room"

// RoomBroadcaster is the slice of the hub the message subscriber needs.
type RoomBroadcaster interface {
	BroadcastToRoom(room string, payload []byte)
}

// MessageSubscriber listens for persisted messages on the pub/sub bus and
// delivers each one to its room.
type MessageSubscriber struct {
	subscriber pubsub.Subscriber
	hub        RoomBroadcaster
}

// NewMessageSubscriber creates a subscriber bound to the given bus and hub.
func NewMessageSubscriber(sub pubsub.Subscriber, hub RoomBroadcaster) *MessageSubscriber {
	return &MessageSubscriber{subscriber: sub, hub: hub}
}

// Start begins listening for room messages. The subscription runs until the
// context is canceled.
func (ms *MessageSubscriber) Start(ctx context.Context) error {
	slog.Info("Starting message subscriber", "topic", TopicRoomMessages)
	return ms.subscriber.Subscribe(ctx, TopicRoomMessages, ms.handleMessage)
}

func (ms *MessageSubscriber) handleMessage(ctx context.Context, msg pubsub.Message) error {
	room := msg.Metadata[metaKeyRoom]
	if room == "" {
		slog.Warn("Dropping room message without a room label", "user_id", msg.UserID)
		return nil
	}
	ms.hub.BroadcastToRoom(room, msg.Payload)
	return nil
}
