package signaling

// ConnID identifies a single WebSocket connection for its lifetime.
type ConnID string

// RoomID is the caller-supplied name of a room (the therapy session id).
type RoomID string

// Frame is the wire envelope for every message in both directions.
// Inbound, Data holds whatever the codec decoded; outbound it holds one of
// the payload types below.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Client to server events.
const (
	EventJoin        = "join"
	EventCreate      = "create"
	EventLeave       = "leave"
	EventSignal      = "signal"
	EventToggleVideo = "toggleVideo"
)

// Server to client events. "signal" and "toggleVideo" reuse the names above.
const (
	EventUserJoined  = "user-joined"
	EventUserLeft    = "user-left"
	EventRoomCreated = "room-created"
	EventErrorReply  = "error"
)

// PeerPayload is sent with user-joined and user-left.
type PeerPayload struct {
	UserID ConnID `json:"userId"`
	RoomID RoomID `json:"roomId"`
}

// SignalPayload carries an opaque SDP or ICE blob to the other peers.
type SignalPayload struct {
	RoomID RoomID `json:"roomId"`
	Data   any    `json:"data"`
	From   ConnID `json:"from"`
}

// ToggleVideoPayload tells the other peers a camera was switched on or off.
type ToggleVideoPayload struct {
	RoomID  RoomID `json:"roomId"`
	Enabled bool   `json:"enabled"`
	From    ConnID `json:"from"`
}

// RoomCreatedPayload answers a create event.
type RoomCreatedPayload struct {
	RoomID RoomID `json:"roomId"`
}

// ErrorPayload is only sent when error reporting is enabled on the hub.
type ErrorPayload struct {
	Event  string `json:"event"`
	Reason string `json:"reason"`
}

// Stats is a point-in-time snapshot of the relay state.
type Stats struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
}
