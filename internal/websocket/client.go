package websocket

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
	"github.com/nfrund/parley/internal/domain"
)

// Client represents a single connected WebSocket client. The identity is
// bound once, by the connection gate, and never changes for the life of the
// connection.
type Client struct {
	ID       string
	Identity domain.Identity
	Send     chan []byte

	conn *websocket.Conn
	mu   sync.RWMutex
}

// NewClient creates a client wrapper around an accepted connection.
// conn may be nil in tests that only exercise hub bookkeeping.
func NewClient(id string, identity domain.Identity, conn *websocket.Conn) *Client {
	return &Client{
		ID:       id,
		Identity: identity,
		Send:     make(chan []byte, 256),
		conn:     conn,
	}
}

// SendMessage safely sends a message to the client's send channel.
// It uses a read lock to ensure the channel is not closed concurrently.
func (c *Client) SendMessage(msg []byte) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// A nil channel means the client is already disconnected.
	if c.Send == nil {
		return
	}

	select {
	case c.Send <- msg:
	default:
		slog.Warn("Client send channel full, dropping message", "client_id", c.ID)
	}
}

// Close safely closes the client's send channel.
// It uses a write lock to prevent other operations during closing.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Send != nil {
		close(c.Send)
		c.Send = nil // Prevent further use
	}
}
