package domain

import (
	"context"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Message is a persisted chat message. The sender's name is denormalized at
// write time and is never re-resolved against the live user record on read.
// Messages are immutable once created.
type Message struct {
	ID         *surrealmodels.RecordID `json:"id,omitempty"`
	SenderID   string                  `json:"senderId"`
	SenderName string                  `json:"senderName"`
	Content    string                  `json:"content"`
	Room       string                  `json:"room"`
	CreatedAt  time.Time               `json:"createdAt"`
}

// MessageRepository defines the persistence contract the session layer
// consumes. Create assigns the id and timestamp; List returns up to limit
// messages for a room, oldest first.
type MessageRepository interface {
	Create(ctx context.Context, senderID, senderName, content, room string) (*Message, error)
	List(ctx context.Context, room string, limit int) ([]*Message, error)
}
