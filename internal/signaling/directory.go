package signaling

import (
	"slices"
)

// Directory maps rooms to their member connections. Rooms exist only while
// they have at least one member. Not safe for concurrent use.
type Directory struct {
	rooms map[RoomID]map[ConnID]struct{}
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{rooms: make(map[RoomID]map[ConnID]struct{})}
}

// Join adds conn to room, creating the room on first join.
func (d *Directory) Join(room RoomID, conn ConnID) {
	members, ok := d.rooms[room]
	if !ok {
		members = make(map[ConnID]struct{})
		d.rooms[room] = members
	}
	members[conn] = struct{}{}
}

// Leave removes conn from room and deletes the room once it is empty.
func (d *Directory) Leave(room RoomID, conn ConnID) {
	members, ok := d.rooms[room]
	if !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(d.rooms, room)
	}
}

// Members returns the members of room in sorted order. Unknown rooms have
// no members.
func (d *Directory) Members(room RoomID) []ConnID {
	members := d.rooms[room]
	out := make([]ConnID, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Contains reports whether conn is a member of room.
func (d *Directory) Contains(room RoomID, conn ConnID) bool {
	_, ok := d.rooms[room][conn]
	return ok
}

// Exists reports whether room currently has members.
func (d *Directory) Exists(room RoomID) bool {
	_, ok := d.rooms[room]
	return ok
}

// Len returns the number of live rooms.
func (d *Directory) Len() int {
	return len(d.rooms)
}
