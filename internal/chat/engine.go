package chat

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nfrund/parley/internal/domain"
	"github.com/nfrund/parley/internal/presence"
	"github.com/nfrund/parley/internal/pubsub"
	"github.com/nfrund/parley/internal/websocket"
)

// Router is the slice of the transport hub the engine needs: room membership
// and the delivery audiences the protocol produces directly. Room-wide
// message fan-out happens through the bus, not here.
type Router interface {
	Join(clientID, room string)
	BroadcastToRoomExcept(room, exceptID string, payload []byte)
	SendDirect(clientID string, payload []byte)
}

// Engine is the per-connection protocol state machine. A connection arrives
// here already authenticated (the gate ran before the transport opened), so
// the engine only sees the OPEN state: five operations that don't transition
// anywhere until disconnect closes the connection for good.
//
// Events are dispatched through a table keyed by event name rather than a
// conditional chain.
type Engine struct {
	store     domain.MessageRepository
	registry  *presence.Registry
	publisher pubsub.Publisher
	router    Router
	logger    *slog.Logger

	handlers map[string]func(*websocket.Client, inboundFrame)
}

// NewEngine wires the engine to its collaborators.
func NewEngine(store domain.MessageRepository, registry *presence.Registry, publisher pubsub.Publisher, router Router) *Engine {
	e := &Engine{
		store:     store,
		registry:  registry,
		publisher: publisher,
		router:    router,
		logger:    slog.Default().With("service", "chat"),
	}
	e.handlers = map[string]func(*websocket.Client, inboundFrame){
		EventJoin:       e.handleJoin,
		EventMessage:    e.handleMessage,
		EventTyping:     e.handleTyping,
		EventStopTyping: e.handleStopTyping,
	}
	return e
}

// Connected marks the moment a connection enters OPEN: the presence entry is
// created and the registry publishes the updated user list to everyone.
func (e *Engine) Connected(client *websocket.Client) {
	e.registry.Upsert(client.ID, client.Identity)
}

// Disconnected removes the connection's presence entry, which triggers the
// user-list broadcast to the remaining connections. The registry makes
// removal idempotent, so a close racing in-flight event processing cannot
// lose the cleanup or run it twice.
func (e *Engine) Disconnected(client *websocket.Client) {
	e.registry.Remove(client.ID)
	e.logger.Info("User disconnected", "username", client.Identity.Username, "client_id", client.ID)
}

// HandleFrame decodes one client frame and dispatches it. Unknown events and
// frames that don't parse are dropped with a debug log; neither is worth an
// error frame to the client.
func (e *Engine) HandleFrame(client *websocket.Client, frame []byte) {
	var in inboundFrame
	if err := json.Unmarshal(frame, &in); err != nil {
		e.logger.Debug("Dropping malformed frame", "client_id", client.ID, "error", err)
		return
	}

	handler, ok := e.handlers[in.Event]
	if !ok {
		e.logger.Debug("Dropping unknown event", "client_id", client.ID, "event", in.Event)
		return
	}
	handler(client, in)
}

func (e *Engine) handleJoin(client *websocket.Client, in inboundFrame) {
	room := roomOrDefault(in.Room)
	e.router.Join(client.ID, room)
	e.logger.Info("User joined room", "username", client.Identity.Username, "room", room)
}

// handleMessage persists the message first and only then publishes exactly
// what was persisted, store-assigned id and timestamp included; the message
// subscriber delivers it to the room. A failure at either step produces a
// single private error frame for the sender and nothing else: no broadcast,
// no retry.
func (e *Engine) handleMessage(client *websocket.Client, in inboundFrame) {
	room := roomOrDefault(in.Room)

	msg, err := e.store.Create(context.Background(), client.Identity.UserID, client.Identity.Username, in.Content, room)
	if err != nil {
		e.logger.Warn("Failed to persist message", "client_id", client.ID, "room", room, "error", err)
		e.router.SendDirect(client.ID, encodeEvent(EventError, errorPayload{Message: "Failed to send message"}))
		return
	}

	err = e.publisher.Publish(context.Background(), pubsub.Message{
		Topic:    TopicRoomMessages,
		UserID:   client.Identity.UserID,
		Payload:  encodeEvent(EventMessage, msg),
		Metadata: map[string]string{metaKeyRoom: room},
	})
	if err != nil {
		e.logger.Error("Failed to publish message", "client_id", client.ID, "room", room, "error", err)
		e.router.SendDirect(client.ID, encodeEvent(EventError, errorPayload{Message: "Failed to send message"}))
	}
}

func (e *Engine) handleTyping(client *websocket.Client, in inboundFrame) {
	room := roomOrDefault(in.Room)
	e.router.BroadcastToRoomExcept(room, client.ID, encodeEvent(EventTyping, typingPayload{
		UserID:   client.Identity.UserID,
		Username: client.Identity.Username,
	}))
}

func (e *Engine) handleStopTyping(client *websocket.Client, in inboundFrame) {
	room := roomOrDefault(in.Room)
	e.router.BroadcastToRoomExcept(room, client.ID, encodeEvent(EventStopTyping, stopTypingPayload{
		UserID: client.Identity.UserID,
	}))
}

func roomOrDefault(room string) string {
	if room == "" {
		return DefaultRoom
	}
	return room
}
