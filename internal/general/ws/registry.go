package ws

import "sync"

// Registry maps order IDs to the sessions watching them. One session may
// watch many orders and one order may be watched by many sessions.
//
// All methods are safe for concurrent use. Mutations take the write lock;
// Subscribers takes the read lock and returns a snapshot, so fan-out sends
// happen outside any lock.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Session // order_id -> session_id -> session
}

// NewRegistry returns an empty room registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[string]Session)}
}

// Subscribe adds the session to the order's room. Subscribing twice to the
// same room is a no-op.
func (reg *Registry) Subscribe(orderID string, s Session) {
	if orderID == "" || s == nil {
		return
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[orderID]
	if !ok {
		room = make(map[string]Session)
		reg.rooms[orderID] = room
	}
	room[s.ID()] = s
}

// Unsubscribe removes the session from one room. Empty rooms are deleted
// eagerly so the map never accumulates dead keys.
func (reg *Registry) Unsubscribe(orderID, sessionID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[orderID]
	if !ok {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(reg.rooms, orderID)
	}
}

// UnsubscribeAll removes the session from every room it joined. Called on
// disconnect.
func (reg *Registry) UnsubscribeAll(sessionID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for orderID, room := range reg.rooms {
		delete(room, sessionID)
		if len(room) == 0 {
			delete(reg.rooms, orderID)
		}
	}
}

// Subscribers returns a snapshot of the order's current sessions.
func (reg *Registry) Subscribers(orderID string) []Session {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	room, ok := reg.rooms[orderID]
	if !ok {
		return nil
	}
	out := make([]Session, 0, len(room))
	for _, s := range room {
		out = append(out, s)
	}
	return out
}

// RoomCount reports how many rooms currently have at least one subscriber.
func (reg *Registry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
