package signaling

// membership is the registry's view of one connection. inRoom is false
// while the connection is connected but has not joined anything.
type membership struct {
	room   RoomID
	inRoom bool
}

// Registry maps live connections to the room they are currently in.
// It is not safe for concurrent use; the hub goroutine owns it.
type Registry struct {
	conns map[ConnID]membership
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[ConnID]membership)}
}

// Register adds conn with no room. Registering a known connection keeps
// its current room.
func (r *Registry) Register(conn ConnID) {
	if _, ok := r.conns[conn]; ok {
		return
	}
	r.conns[conn] = membership{}
}

// Registered reports whether conn has an entry.
func (r *Registry) Registered(conn ConnID) bool {
	_, ok := r.conns[conn]
	return ok
}

// CurrentRoom returns the room conn is in, if any.
func (r *Registry) CurrentRoom(conn ConnID) (RoomID, bool) {
	m, ok := r.conns[conn]
	if !ok || !m.inRoom {
		return "", false
	}
	return m.room, true
}

// SetRoom records room as the current room of a registered connection.
func (r *Registry) SetRoom(conn ConnID, room RoomID) {
	if _, ok := r.conns[conn]; !ok {
		return
	}
	r.conns[conn] = membership{room: room, inRoom: true}
}

// ClearRoom marks a registered connection as being in no room.
func (r *Registry) ClearRoom(conn ConnID) {
	if _, ok := r.conns[conn]; !ok {
		return
	}
	r.conns[conn] = membership{}
}

// Unregister drops the entry for conn.
func (r *Registry) Unregister(conn ConnID) {
	delete(r.conns, conn)
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	return len(r.conns)
}
