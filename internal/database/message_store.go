package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/nfrund/parley/internal/domain"
	"github.com/surrealdb/surrealdb.go"
)

// DefaultHistoryLimit caps how many messages List returns when the caller
// doesn't ask for a specific amount.
const DefaultHistoryLimit = 50

// SurrealMessageStore persists chat messages in SurrealDB.
type SurrealMessageStore struct {
	db     *surrealdb.DB
	ns     string
	dbName string
}

// NewSurrealMessageStore creates a new SurrealMessageStore.
func NewSurrealMessageStore(db *surrealdb.DB, ns, dbName string) *SurrealMessageStore {
	return &SurrealMessageStore{db: db, ns: ns, dbName: dbName}
}

// Create saves a new message and returns the persisted record with its
// store-assigned id and timestamp. Content is the required field; empty or
// whitespace-only content is rejected here, before anything touches the
// database.
func (s *SurrealMessageStore) Create(ctx context.Context, senderID, senderName, content, room string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrEmptyContent
	}

	if err := s.db.Use(ctx, s.ns, s.dbName); err != nil {
		return nil, fmt.Errorf("failed to set database scope: %w", err)
	}

	query := `
		CREATE message SET
			senderId = $senderId,
			senderName = $senderName,
			content = $content,
			room = $room,
			createdAt = time::now()
		RETURN AFTER
	`
	params := map[string]any{
		"senderId":   senderID,
		"senderName": senderName,
		"content":    content,
		"room":       room,
	}

	created, err := QueryOne[domain.Message](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create and fetch message: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("message was not created or could not be fetched")
	}

	return created, nil
}

// List retrieves up to limit messages for a room. The query fetches the
// newest messages first so the limit trims old history, then the slice is
// reversed so callers always see oldest-first.
func (s *SurrealMessageStore) List(ctx context.Context, room string, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	if err := s.db.Use(ctx, s.ns, s.dbName); err != nil {
		return nil, fmt.Errorf("failed to set database scope: %w", err)
	}

	query := "SELECT * FROM message WHERE room = $room ORDER BY createdAt DESC LIMIT $limit"
	params := map[string]any{
		"room":  room,
		"limit": limit,
	}

	result, err := Query[domain.Message](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	messages := make([]*domain.Message, len(result))
	for i := range result {
		messages[i] = &result[i]
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
