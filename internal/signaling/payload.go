package signaling

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Inbound payloads after validation. Codecs leave Frame.Data as generic
// decoded values (maps, strings, numbers); the parse functions below turn
// them into these.

type joinRequest struct {
	RoomID RoomID
}

type signalRequest struct {
	RoomID RoomID
	Data   any
}

type toggleVideoRequest struct {
	RoomID  RoomID
	Enabled bool
}

// parseJoin accepts {"roomId": ...} as well as a bare string or number,
// which is what the browser client sends.
func parseJoin(data any) (joinRequest, bool) {
	if fields, ok := data.(map[string]any); ok {
		data = fields["roomId"]
	}
	room, ok := roomIDFrom(data)
	if !ok {
		return joinRequest{}, false
	}
	return joinRequest{RoomID: room}, true
}

func parseLeave(data any) (joinRequest, bool) {
	return parseJoin(data)
}

func parseSignal(data any) (signalRequest, bool) {
	fields, ok := data.(map[string]any)
	if !ok {
		return signalRequest{}, false
	}
	room, ok := roomIDFrom(fields["roomId"])
	if !ok {
		return signalRequest{}, false
	}
	blob, ok := fields["data"]
	if !ok || blob == nil {
		return signalRequest{}, false
	}
	return signalRequest{RoomID: room, Data: blob}, true
}

func parseToggleVideo(data any) (toggleVideoRequest, bool) {
	fields, ok := data.(map[string]any)
	if !ok {
		return toggleVideoRequest{}, false
	}
	room, ok := roomIDFrom(fields["roomId"])
	if !ok {
		return toggleVideoRequest{}, false
	}
	enabled, ok := fields["enabled"].(bool)
	if !ok {
		return toggleVideoRequest{}, false
	}
	return toggleVideoRequest{RoomID: room, Enabled: enabled}, true
}

// roomIDFrom normalises a decoded room id. Strings are taken as they are;
// numbers are rendered in decimal so that 42 and "42" name the same room.
func roomIDFrom(v any) (RoomID, bool) {
	var s string
	switch id := v.(type) {
	case string:
		s = id
	case float64:
		s = strconv.FormatFloat(id, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(id), 'f', -1, 32)
	case int64:
		s = strconv.FormatInt(id, 10)
	case uint64:
		s = strconv.FormatUint(id, 10)
	case int:
		s = strconv.Itoa(id)
	case int8, int16, int32, uint8, uint16, uint32:
		s = fmt.Sprint(id)
	case json.Number:
		s = id.String()
	default:
		return "", false
	}
	if s == "" {
		return "", false
	}
	return RoomID(s), true
}
