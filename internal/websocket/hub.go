package websocket

import (
	"log/slog"
	"sync"
)

// Hub tracks all connected clients and their room memberships, and is the
// single delivery point for every broadcast the protocol produces. Rooms are
// just broadcast-group tags: they come into existence when the first client
// joins and vanish when the last member leaves.
//
// A client that never joined any room is an implicit member of the default
// room, so freshly connected clients can exchange messages right away. The
// first explicit join replaces that implicit membership: a client that joined
// only another room no longer receives default-room traffic.
type Hub struct {
	mu          sync.RWMutex
	defaultRoom string
	clients     map[string]*Client
	rooms       map[string]map[string]*Client // room -> clientID -> client
	memberships map[string]int                // clientID -> explicit room count
}

// NewHub creates an empty Hub whose implicit fallback is the given room.
func NewHub(defaultRoom string) *Hub {
	return &Hub{
		defaultRoom: defaultRoom,
		clients:     make(map[string]*Client),
		rooms:       make(map[string]map[string]*Client),
		memberships: make(map[string]int),
	}
}

// Add registers a new client.
func (h *Hub) Add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
}

// Remove unregisters a client, drops it from every room it joined, and
// closes its send channel. Removing an unknown id is a no-op.
func (h *Hub) Remove(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[clientID]
	if !ok {
		return
	}
	delete(h.clients, clientID)
	delete(h.memberships, clientID)

	for room, members := range h.rooms {
		delete(members, clientID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}

	client.Close()
}

// Join adds a client to a room. Joining the same room twice is a no-op;
// joining another room does not remove earlier memberships.
func (h *Hub) Join(clientID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[clientID]
	if !ok {
		return
	}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	if _, already := members[clientID]; !already {
		members[clientID] = client
		h.memberships[clientID]++
	}
}

// BroadcastToRoom delivers a payload to every client currently in the room,
// including the sender if it is a member. Broadcasts to the default room also
// reach clients that never joined anything.
func (h *Hub) BroadcastToRoom(room string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[room] {
		client.SendMessage(payload)
	}
	if room != h.defaultRoom {
		return
	}
	for id, client := range h.clients {
		if h.memberships[id] == 0 {
			client.SendMessage(payload)
		}
	}
}

// BroadcastToRoomExcept delivers a payload to every client in the room
// except the named one, implicit default-room members included.
func (h *Hub) BroadcastToRoomExcept(room, exceptID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, client := range h.rooms[room] {
		if id == exceptID {
			continue
		}
		client.SendMessage(payload)
	}
	if room != h.defaultRoom {
		return
	}
	for id, client := range h.clients {
		if id == exceptID || h.memberships[id] > 0 {
			continue
		}
		client.SendMessage(payload)
	}
}

// BroadcastAll delivers a payload to every connected client regardless of
// room membership.
func (h *Hub) BroadcastAll(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	slog.Debug("Broadcasting to all clients", "recipient_count", len(h.clients))
	for _, client := range h.clients {
		client.SendMessage(payload)
	}
}

// SendDirect delivers a payload to a single client. Sending to a departed
// client is a no-op.
func (h *Hub) SendDirect(clientID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, ok := h.clients[clientID]; ok {
		client.SendMessage(payload)
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
