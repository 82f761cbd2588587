package websocket

import (
	"testing"

	"github.com/nfrund/parley/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(id, username string) *Client {
	return NewClient(id, domain.Identity{UserID: "user:" + username, Username: username}, nil)
}

// drain returns every payload currently buffered for the client.
func drain(c *Client) []string {
	var out []string
	for {
		select {
		case msg := <-c.Send:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestHub_BroadcastToRoomIncludesSender(t *testing.T) {
	hub := NewHub("general")
	alice := newTestClient("c1", "alice")
	bob := newTestClient("c2", "bob")
	hub.Add(alice)
	hub.Add(bob)
	hub.Join("c1", "general")
	hub.Join("c2", "general")

	hub.BroadcastToRoom("general", []byte("hello"))

	assert.Equal(t, []string{"hello"}, drain(alice))
	assert.Equal(t, []string{"hello"}, drain(bob))
}

func TestHub_NeverJoinedClientsAreImplicitDefaultRoomMembers(t *testing.T) {
	hub := NewHub("general")
	alice := newTestClient("c1", "alice")
	bob := newTestClient("c2", "bob")
	hub.Add(alice)
	hub.Add(bob)

	hub.BroadcastToRoom("general", []byte("hello"))

	assert.Equal(t, []string{"hello"}, drain(alice))
	assert.Equal(t, []string{"hello"}, drain(bob))
}

func TestHub_ExplicitJoinReplacesImplicitMembership(t *testing.T) {
	hub := NewHub("general")
	alice := newTestClient("c1", "alice")
	vip := newTestClient("c2", "vip-user")
	hub.Add(alice)
	hub.Add(vip)
	hub.Join("c2", "vip")

	hub.BroadcastToRoom("general", []byte("for general"))
	hub.BroadcastToRoom("vip", []byte("for vip"))

	assert.Equal(t, []string{"for general"}, drain(alice))
	assert.Equal(t, []string{"for vip"}, drain(vip))
}

func TestHub_ExplicitDefaultRoomMemberGetsOneDelivery(t *testing.T) {
	hub := NewHub("general")
	alice := newTestClient("c1", "alice")
	hub.Add(alice)
	hub.Join("c1", "general")

	hub.BroadcastToRoom("general", []byte("once"))

	assert.Equal(t, []string{"once"}, drain(alice))
}

func TestHub_BroadcastToRoomExceptSkipsSender(t *testing.T) {
	hub := NewHub("general")
	alice := newTestClient("c1", "alice")
	bob := newTestClient("c2", "bob")
	carol := newTestClient("c3", "carol")
	hub.Add(alice)
	hub.Add(bob)
	hub.Add(carol)
	hub.Join("c1", "general")
	hub.Join("c2", "general")
	hub.Join("c3", "general")

	hub.BroadcastToRoomExcept("general", "c2", []byte("typing"))

	assert.Equal(t, []string{"typing"}, drain(alice))
	assert.Empty(t, drain(bob))
	assert.Equal(t, []string{"typing"}, drain(carol))
}

func TestHub_BroadcastToRoomExceptSkipsImplicitSender(t *testing.T) {
	hub := NewHub("general")
	alice := newTestClient("c1", "alice")
	bob := newTestClient("c2", "bob")
	hub.Add(alice)
	hub.Add(bob)

	hub.BroadcastToRoomExcept("general", "c2", []byte("typing"))

	assert.Equal(t, []string{"typing"}, drain(alice))
	assert.Empty(t, drain(bob))
}

func TestHub_RoomsAreIsolated(t *testing.T) {
	hub := NewHub("general")
	alice := newTestClient("c1", "alice")
	vip := newTestClient("c2", "vip-user")
	hub.Add(alice)
	hub.Add(vip)
	hub.Join("c1", "general")
	hub.Join("c2", "vip")

	hub.BroadcastToRoom("general", []byte("for general"))

	assert.Equal(t, []string{"for general"}, drain(alice))
	assert.Empty(t, drain(vip))
}

func TestHub_JoinAccumulatesMemberships(t *testing.T) {
	hub := NewHub("general")
	alice := newTestClient("c1", "alice")
	hub.Add(alice)
	hub.Join("c1", "general")
	hub.Join("c1", "vip")
	// Joining twice is a no-op, not a duplicate delivery.
	hub.Join("c1", "vip")

	hub.BroadcastToRoom("general", []byte("a"))
	hub.BroadcastToRoom("vip", []byte("b"))

	assert.Equal(t, []string{"a", "b"}, drain(alice))
}

func TestHub_RemoveCleansRoomsAndClosesClient(t *testing.T) {
	hub := NewHub("general")
	alice := newTestClient("c1", "alice")
	bob := newTestClient("c2", "bob")
	hub.Add(alice)
	hub.Add(bob)
	hub.Join("c1", "general")
	hub.Join("c2", "general")

	hub.Remove("c1")
	require.Equal(t, 1, hub.Count())

	hub.BroadcastToRoom("general", []byte("after"))
	assert.Equal(t, []string{"after"}, drain(bob))

	// Delivery to the removed client is a no-op, not a panic.
	alice.SendMessage([]byte("ghost"))
	hub.SendDirect("c1", []byte("ghost"))
}

func TestHub_RemoveUnknownClientIsNoop(t *testing.T) {
	hub := NewHub("general")
	hub.Remove("nope")
	assert.Equal(t, 0, hub.Count())
}

func TestHub_BroadcastAllIgnoresRooms(t *testing.T) {
	hub := NewHub("general")
	alice := newTestClient("c1", "alice")
	bob := newTestClient("c2", "bob")
	hub.Add(alice)
	hub.Add(bob)
	hub.Join("c1", "vip")
	// bob never joined anything.

	hub.BroadcastAll([]byte("presence"))

	assert.Equal(t, []string{"presence"}, drain(alice))
	assert.Equal(t, []string{"presence"}, drain(bob))
}

func TestHub_SendDirect(t *testing.T) {
	hub := NewHub("general")
	alice := newTestClient("c1", "alice")
	bob := newTestClient("c2", "bob")
	hub.Add(alice)
	hub.Add(bob)

	hub.SendDirect("c2", []byte("private"))

	assert.Empty(t, drain(alice))
	assert.Equal(t, []string{"private"}, drain(bob))
}
