package realtime

import (
	"sync"
)

// Room name helpers. The inbox room carries events addressed to a user across
// all their connections; the conversation room carries events addressed to
// everyone currently viewing that conversation.
func InboxRoom(uid string) string           { return "user:" + uid }
func ConversationRoom(chatID string) string { return "chat:" + chatID }

// Router coordinates websocket sessions and logical rooms. Join, Leave and
// Broadcast are the only mutation surface over room state; all maps are
// guarded by one RWMutex, which is plenty at two-party-chat fan-out sizes.
//
// A user may have any number of live connections. Presence is reference
// counted: Attach reports whether the connection is the user's first, Detach
// whether it was their last, so callers broadcast "online"/"offline" only on
// those edges.
type Router struct {
	mu           sync.RWMutex
	sessions     map[string]*Connection            // sessionID -> connection
	userSessions map[string]map[string]struct{}    // uid -> set of sessionIDs
	rooms        map[string]map[string]*Connection // room -> sessionID -> connection
	sessionRooms map[string]map[string]struct{}    // sessionID -> set of rooms
}

// NewRouter constructs an initialized Router.
func NewRouter() *Router {
	return &Router{
		sessions:     make(map[string]*Connection),
		userSessions: make(map[string]map[string]struct{}),
		rooms:        make(map[string]map[string]*Connection),
		sessionRooms: make(map[string]map[string]struct{}),
	}
}

// Attach registers a connection and joins it to the user's inbox room.
// Returns true when this is the user's first live connection. The caller is
// responsible for starting the connection's write loop.
func (r *Router) Attach(conn *Connection) bool {
	r.mu.Lock()
	r.sessions[conn.SessionID] = conn

	set := r.userSessions[conn.UID]
	first := len(set) == 0
	if set == nil {
		set = make(map[string]struct{})
		r.userSessions[conn.UID] = set
	}
	set[conn.SessionID] = struct{}{}

	r.sessionRooms[conn.SessionID] = make(map[string]struct{})
	r.joinLocked(InboxRoom(conn.UID), conn)
	r.mu.Unlock()

	return first
}

// Detach removes a connection and all its room memberships. Returns true when
// the user has no live connections left.
func (r *Router) Detach(conn *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[conn.SessionID]; !ok {
		return len(r.userSessions[conn.UID]) == 0
	}
	delete(r.sessions, conn.SessionID)

	if set := r.userSessions[conn.UID]; set != nil {
		delete(set, conn.SessionID)
		if len(set) == 0 {
			delete(r.userSessions, conn.UID)
		}
	}

	for room := range r.sessionRooms[conn.SessionID] {
		r.leaveLocked(room, conn.SessionID)
	}
	delete(r.sessionRooms, conn.SessionID)

	return len(r.userSessions[conn.UID]) == 0
}

// Join adds the connection to the room.
func (r *Router) Join(room string, conn *Connection) {
	r.mu.Lock()
	if _, ok := r.sessions[conn.SessionID]; ok {
		r.joinLocked(room, conn)
	}
	r.mu.Unlock()
}

// Leave removes the connection from the room.
func (r *Router) Leave(room string, conn *Connection) {
	r.mu.Lock()
	r.leaveLocked(room, conn.SessionID)
	r.mu.Unlock()
}

// Broadcast writes payload to all members of the room. excludeSessionID, when
// non-empty, skips that one session (used for typing, where the emitting
// socket must not hear itself). Returns the delivered count.
func (r *Router) Broadcast(room string, payload []byte, excludeSessionID string) int {
	r.mu.RLock()
	members := r.rooms[room]
	if len(members) == 0 {
		r.mu.RUnlock()
		return 0
	}

	delivered := 0
	for id, conn := range members {
		if excludeSessionID != "" && id == excludeSessionID {
			continue
		}
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	r.mu.RUnlock()
	return delivered
}

// ConnectionCount reports the number of live connections for the user.
func (r *Router) ConnectionCount(uid string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.userSessions[uid])
}

// Close terminates all tracked connections and clears router state.
func (r *Router) Close() {
	r.mu.Lock()
	sessions := make([]*Connection, 0, len(r.sessions))
	for _, conn := range r.sessions {
		sessions = append(sessions, conn)
	}
	r.sessions = make(map[string]*Connection)
	r.userSessions = make(map[string]map[string]struct{})
	r.rooms = make(map[string]map[string]*Connection)
	r.sessionRooms = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, conn := range sessions {
		conn.Close(1001, "router shutdown")
	}
}

func (r *Router) joinLocked(room string, conn *Connection) {
	members := r.rooms[room]
	if members == nil {
		members = make(map[string]*Connection)
		r.rooms[room] = members
	}
	members[conn.SessionID] = conn

	memberships := r.sessionRooms[conn.SessionID]
	if memberships == nil {
		memberships = make(map[string]struct{})
		r.sessionRooms[conn.SessionID] = memberships
	}
	memberships[room] = struct{}{}
}

func (r *Router) leaveLocked(room string, sessionID string) {
	members := r.rooms[room]
	if members == nil {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
	if memberships, ok := r.sessionRooms[sessionID]; ok {
		delete(memberships, room)
	}
}
