package chat

import (
	"encoding/json"
	"log/slog"
)

// DefaultRoom is the well-known room a connection falls back to whenever an
// event omits the room label.
const DefaultRoom = "general"

// Client-to-server event names.
const (
	EventJoin       = "join"
	EventMessage    = "message"
	EventTyping     = "typing"
	EventStopTyping = "stop-typing"
)

// Server-to-client event names. EventMessage is reused in both directions.
const (
	EventUserList = "user-list"
	EventError    = "error"
)

// inboundFrame is the union of every client-to-server event payload.
type inboundFrame struct {
	Event   string `json:"event"`
	Room    string `json:"room,omitempty"`
	Content string `json:"content,omitempty"`
}

// envelope is the shape of every server-to-client frame.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// typingPayload announces that a user started typing.
type typingPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// stopTypingPayload announces that a user stopped typing.
type stopTypingPayload struct {
	UserID string `json:"userId"`
}

// errorPayload is the private failure notification sent to a single sender.
type errorPayload struct {
	Message string `json:"message"`
}

// encodeEvent marshals a server-to-client frame. Payloads are our own types,
// so a marshal failure is a programming error; it is logged and yields nil,
// which the hub treats as nothing to send.
func encodeEvent(event string, data any) []byte {
	frame, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		slog.Error("Failed to encode protocol event", "event", event, "error", err)
		return nil
	}
	return frame
}
