package signaling

// Delivery is one message addressed to a resolved set of connections.
// Recipients are fixed at the moment the transition ran.
type Delivery struct {
	To      []ConnID
	Message Frame
}

// RelayOptions tunes how strictly the relay treats client events.
type RelayOptions struct {
	// RequireMembership drops signal and toggleVideo events whose sender is
	// not a member of the room it names.
	RequireMembership bool
}

// Relay applies connection lifecycle and signaling events to a Registry and
// a Directory and returns what must be delivered. It performs no I/O and is
// not safe for concurrent use.
type Relay struct {
	registry *Registry
	rooms    *Directory
	opts     RelayOptions

	newRoomID func(taken func(RoomID) bool) RoomID
}

// NewRelay creates a relay over the given registry and directory.
func NewRelay(registry *Registry, rooms *Directory, opts RelayOptions) *Relay {
	return &Relay{
		registry:  registry,
		rooms:     rooms,
		opts:      opts,
		newRoomID: newRoomID,
	}
}

// Connect registers conn with no room.
func (r *Relay) Connect(conn ConnID) {
	r.registry.Register(conn)
}

// Disconnect removes conn from its room, if any, and forgets it.
func (r *Relay) Disconnect(conn ConnID) []Delivery {
	if !r.registry.Registered(conn) {
		return nil
	}
	var out []Delivery
	if room, ok := r.registry.CurrentRoom(conn); ok {
		out = r.depart(conn, room)
	}
	r.registry.Unregister(conn)
	return out
}

// Join moves conn into room, leaving its previous room first.
func (r *Relay) Join(conn ConnID, room RoomID) ([]Delivery, error) {
	if !r.registry.Registered(conn) {
		return nil, newEventError(EventJoin, ErrNotRegistered, string(conn))
	}

	var out []Delivery
	if prev, ok := r.registry.CurrentRoom(conn); ok && prev != room {
		out = append(out, r.depart(conn, prev)...)
	}

	r.rooms.Join(room, conn)
	r.registry.SetRoom(conn, room)

	out = append(out, Delivery{
		To:      r.rooms.Members(room),
		Message: Frame{Event: EventUserJoined, Data: PeerPayload{UserID: conn, RoomID: room}},
	})
	return out, nil
}

// Create mints an unused room id and joins conn to it.
func (r *Relay) Create(conn ConnID) ([]Delivery, error) {
	if !r.registry.Registered(conn) {
		return nil, newEventError(EventCreate, ErrNotRegistered, string(conn))
	}

	room := r.newRoomID(r.rooms.Exists)
	out := []Delivery{{
		To:      []ConnID{conn},
		Message: Frame{Event: EventRoomCreated, Data: RoomCreatedPayload{RoomID: room}},
	}}

	joined, err := r.Join(conn, room)
	if err != nil {
		return nil, err
	}
	return append(out, joined...), nil
}

// Leave takes conn out of room. Naming a room conn is not in is a no-op.
func (r *Relay) Leave(conn ConnID, room RoomID) ([]Delivery, error) {
	if !r.registry.Registered(conn) {
		return nil, newEventError(EventLeave, ErrNotRegistered, string(conn))
	}
	current, ok := r.registry.CurrentRoom(conn)
	if !ok || current != room {
		return nil, nil
	}
	return r.depart(conn, room), nil
}

// Signal relays an opaque payload to everyone in the room but the sender.
func (r *Relay) Signal(conn ConnID, room RoomID, data any) ([]Delivery, error) {
	if err := r.checkSender(EventSignal, conn, room); err != nil {
		return nil, err
	}
	return r.toPeers(conn, room, Frame{
		Event: EventSignal,
		Data:  SignalPayload{RoomID: room, Data: data, From: conn},
	}), nil
}

// ToggleVideo tells the other members of room that conn switched its camera.
func (r *Relay) ToggleVideo(conn ConnID, room RoomID, enabled bool) ([]Delivery, error) {
	if err := r.checkSender(EventToggleVideo, conn, room); err != nil {
		return nil, err
	}
	return r.toPeers(conn, room, Frame{
		Event: EventToggleVideo,
		Data:  ToggleVideoPayload{RoomID: room, Enabled: enabled, From: conn},
	}), nil
}

// Handle decodes a client frame and applies it. A malformed or unknown
// frame changes nothing and yields an *EventError.
func (r *Relay) Handle(conn ConnID, frame Frame) ([]Delivery, error) {
	switch frame.Event {
	case EventJoin:
		req, ok := parseJoin(frame.Data)
		if !ok {
			return nil, newEventError(EventJoin, ErrMalformedEvent, "roomId is required")
		}
		return r.Join(conn, req.RoomID)

	case EventCreate:
		return r.Create(conn)

	case EventLeave:
		req, ok := parseLeave(frame.Data)
		if !ok {
			return nil, newEventError(EventLeave, ErrMalformedEvent, "roomId is required")
		}
		return r.Leave(conn, req.RoomID)

	case EventSignal:
		req, ok := parseSignal(frame.Data)
		if !ok {
			return nil, newEventError(EventSignal, ErrMalformedEvent, "roomId and data are required")
		}
		return r.Signal(conn, req.RoomID, req.Data)

	case EventToggleVideo:
		req, ok := parseToggleVideo(frame.Data)
		if !ok {
			return nil, newEventError(EventToggleVideo, ErrMalformedEvent, "roomId and enabled are required")
		}
		return r.ToggleVideo(conn, req.RoomID, req.Enabled)

	default:
		return nil, newEventError(frame.Event, ErrUnknownEvent, "")
	}
}

// Stats reports how many connections and rooms are live.
func (r *Relay) Stats() Stats {
	return Stats{Connections: r.registry.Len(), Rooms: r.rooms.Len()}
}

// depart removes conn from room and notifies whoever is left.
func (r *Relay) depart(conn ConnID, room RoomID) []Delivery {
	r.rooms.Leave(room, conn)
	r.registry.ClearRoom(conn)

	remaining := r.rooms.Members(room)
	if len(remaining) == 0 {
		return nil
	}
	return []Delivery{{
		To:      remaining,
		Message: Frame{Event: EventUserLeft, Data: PeerPayload{UserID: conn, RoomID: room}},
	}}
}

func (r *Relay) checkSender(event string, conn ConnID, room RoomID) error {
	if !r.registry.Registered(conn) {
		return newEventError(event, ErrNotRegistered, string(conn))
	}
	if r.opts.RequireMembership && !r.rooms.Contains(room, conn) {
		return newEventError(event, ErrNotMember, string(room))
	}
	return nil
}

func (r *Relay) toPeers(sender ConnID, room RoomID, msg Frame) []Delivery {
	members := r.rooms.Members(room)
	peers := make([]ConnID, 0, len(members))
	for _, id := range members {
		if id != sender {
			peers = append(peers, id)
		}
	}
	if len(peers) == 0 {
		return nil
	}
	return []Delivery{{To: peers, Message: msg}}
}
