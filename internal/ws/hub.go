package ws

import "sync"

// Hub tracks which live connections represent which user (personal rooms)
// and which connections joined which chat room. It is an explicit value
// passed into the gateway rather than package state, so tests can run
// multiple independent instances.
//
// The personal-room sets double as the per-user connection ref-count: a
// user flips offline only when their set empties.
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[*Client]struct{}
	rooms map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		users: make(map[string]map[*Client]struct{}),
		rooms: make(map[string]map[*Client]struct{}),
	}
}

// Register adds a connection to its user's personal room and reports
// whether it is the user's first live connection.
func (h *Hub) Register(c *Client) (first bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.users[c.UserID]
	if set == nil {
		set = make(map[*Client]struct{})
		h.users[c.UserID] = set
	}
	first = len(set) == 0
	set[c] = struct{}{}
	return first
}

// Unregister removes a connection from its personal room and from every
// chat room it joined, and reports whether it was the user's last live
// connection. Safe to call more than once.
func (h *Hub) Unregister(c *Client) (last bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.users[c.UserID]
	if set == nil {
		return false
	}
	if _, ok := set[c]; !ok {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.users, c.UserID)
		last = true
	}

	for chatID := range c.rooms {
		h.leaveLocked(chatID, c)
	}
	c.rooms = make(map[string]struct{})
	return last
}

func (h *Hub) Join(chatID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[chatID]
	if room == nil {
		room = make(map[*Client]struct{})
		h.rooms[chatID] = room
	}
	room[c] = struct{}{}
	c.rooms[chatID] = struct{}{}
}

func (h *Hub) Leave(chatID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(chatID, c)
	delete(c.rooms, chatID)
}

func (h *Hub) leaveLocked(chatID string, c *Client) {
	if room := h.rooms[chatID]; room != nil {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, chatID)
		}
	}
}

// ToUser sends a frame to every live connection of one user.
func (h *Hub) ToUser(userID string, frame []byte) {
	if frame == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.users[userID] {
		c.trySend(frame)
	}
}

// ToRoom sends a frame to every connection joined to a chat room, minus
// the excluded one (normally the emitter).
func (h *Hub) ToRoom(chatID string, exclude *Client, frame []byte) {
	if frame == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[chatID] {
		if c == exclude {
			continue
		}
		c.trySend(frame)
	}
}

// Broadcast sends a frame to every live connection minus the excluded one.
// Used for presence flips.
func (h *Hub) Broadcast(exclude *Client, frame []byte) {
	if frame == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.users {
		for c := range set {
			if c == exclude {
				continue
			}
			c.trySend(frame)
		}
	}
}

// Connections reports the live connection count for a user.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// InRoom reports whether a connection is currently joined to a chat room.
func (h *Hub) InRoom(chatID string, c *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[chatID][c]
	return ok
}
