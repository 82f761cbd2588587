package websocket

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/domain"
)

// SessionHandler receives the lifecycle and frames of an accepted
// connection. Frames for one connection are delivered sequentially, in
// arrival order; nothing is ordered across connections.
type SessionHandler interface {
	Connected(client *Client)
	HandleFrame(client *Client, frame []byte)
	Disconnected(client *Client)
}

// Handler returns the echo handler that gates and serves WebSocket
// connections. The credential is verified before the upgrade: a rejected
// credential means the transport connection is never established and the
// remote party learns nothing beyond the generic 401.
func Handler(hub *Hub, verifier domain.TokenVerifier, session SessionHandler) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := verifier.Verify(c.Request().Context(), credentialFromRequest(c.Request()))
		if err != nil {
			slog.Debug("WebSocket connection rejected", "remote", c.RealIP())
			return c.String(http.StatusUnauthorized, "Authentication failed")
		}

		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: true, // In production, check origin.
		})
		if err != nil {
			slog.Error("Failed to upgrade connection to WebSocket", "error", err)
			return err
		}

		client := NewClient(uuid.NewString(), *identity, conn)
		hub.Add(client)

		go client.writePump()

		session.Connected(client)
		slog.Info("WebSocket client connected", "client_id", client.ID, "user_id", identity.UserID)

		// Read on the handler goroutine; echo keeps the request alive until
		// we return, which is exactly the lifetime of the connection.
		client.readPump(session)

		hub.Remove(client.ID)
		session.Disconnected(client)
		slog.Info("WebSocket client disconnected", "client_id", client.ID, "user_id", identity.UserID)

		return nil
	}
}

// credentialFromRequest extracts the bearer credential from the upgrade
// request. Browsers cannot set headers on WebSocket dials, so a token query
// parameter is accepted alongside the Authorization header.
func credentialFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if header := r.Header.Get(echo.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// readPump reads frames from the connection and hands them to the session
// handler until the connection drops. Handling frames synchronously here is
// what guarantees per-connection ordering.
func (c *Client) readPump(session SessionHandler) {
	defer c.conn.Close(websocket.StatusNormalClosure, "Client disconnected")

	for {
		_, frame, err := c.conn.Read(context.Background())
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				slog.Debug("WebSocket closed normally by client", "client_id", c.ID)
			} else if err != io.EOF {
				slog.Debug("WebSocket read error", "client_id", c.ID, "error", err)
			}
			return
		}

		session.HandleFrame(c, frame)
	}
}

// writePump pumps messages from the client's send channel to the WebSocket
// connection.
func (c *Client) writePump() {
	defer c.conn.Close(websocket.StatusNormalClosure, "Server-side cleanup")

	// Capture the channel once; Close nils the field after closing it.
	c.mu.RLock()
	send := c.Send
	c.mu.RUnlock()
	if send == nil {
		return
	}

	for {
		message, ok := <-send
		if !ok {
			// The hub closed the channel.
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			slog.Debug("WebSocket write error", "client_id", c.ID, "error", err)
			return
		}
	}
}
