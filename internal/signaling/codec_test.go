package signaling

import (
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestCodecFor(t *testing.T) {
	assert.IsType(t, MsgpackCodec{}, CodecFor(SubprotocolMsgpack))
	assert.IsType(t, JSONCodec{}, CodecFor(SubprotocolJSON))
	assert.IsType(t, JSONCodec{}, CodecFor(""))
	assert.Equal(t, websocket.BinaryMessage, MsgpackCodec{}.MessageType())
	assert.Equal(t, websocket.TextMessage, JSONCodec{}.MessageType())
}

func TestJSONCodec_Decode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Frame
		wantErr bool
	}{
		{
			name: "join with bare session id",
			in:   `{"event":"join","data":42}`,
			want: Frame{Event: EventJoin, Data: int64(42)},
		},
		{
			name: "integer beyond float precision",
			in:   `{"event":"join","data":9007199254740993}`,
			want: Frame{Event: EventJoin, Data: int64(9007199254740993)},
		},
		{
			name: "integer beyond int64",
			in:   `{"event":"join","data":{"roomId":123456789012345678901234567890}}`,
			want: Frame{Event: EventJoin, Data: map[string]any{"roomId": json.Number("123456789012345678901234567890")}},
		},
		{
			name: "candidate numbers",
			in:   `{"event":"signal","data":{"roomId":"r","data":{"sdpMLineIndex":0,"ratio":0.5,"list":[1,2.5e3]}}}`,
			want: Frame{Event: EventSignal, Data: map[string]any{
				"roomId": "r",
				"data": map[string]any{
					"sdpMLineIndex": int64(0),
					"ratio":         0.5,
					"list":          []any{int64(1), 2500.0},
				},
			}},
		},
		{
			name: "signal",
			in:   `{"event":"signal","data":{"roomId":"42","data":{"sdp":{"type":"offer"}}}}`,
			want: Frame{Event: EventSignal, Data: map[string]any{
				"roomId": "42",
				"data":   map[string]any{"sdp": map[string]any{"type": "offer"}},
			}},
		},
		{name: "not json", in: `hello`, wantErr: true},
		{name: "no event", in: `{"data":1}`, wantErr: true},
		{name: "trailing data", in: `{"event":"join","data":1} {}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JSONCodec{}.Decode([]byte(tt.in))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedEvent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONCodec_EncodeFieldNames(t *testing.T) {
	b, err := JSONCodec{}.Encode(Frame{Event: EventSignal, Data: SignalPayload{RoomID: "r", Data: "blob", From: "c1"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"signal","data":{"roomId":"r","data":"blob","from":"c1"}}`, string(b))
}

func TestMsgpackCodec_DecodeIntoRelayShapes(t *testing.T) {
	raw, err := msgpack.Marshal(map[string]any{
		"event": "join",
		"data":  map[string]any{"roomId": 42},
	})
	require.NoError(t, err)

	frame, err := MsgpackCodec{}.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, EventJoin, frame.Event)

	req, ok := parseJoin(frame.Data)
	require.True(t, ok)
	assert.Equal(t, RoomID("42"), req.RoomID)
}

func TestMsgpackCodec_EncodeUsesJSONNames(t *testing.T) {
	b, err := MsgpackCodec{}.Encode(Frame{Event: EventUserLeft, Data: PeerPayload{UserID: "c1", RoomID: "r"}})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, msgpack.Unmarshal(b, &got))
	assert.Equal(t, "user-left", got["event"])
	assert.Equal(t, map[string]any{"userId": "c1", "roomId": "r"}, got["data"])

	// The same message through JSON has the same shape.
	jb, err := JSONCodec{}.Encode(Frame{Event: EventUserLeft, Data: PeerPayload{UserID: "c1", RoomID: "r"}})
	require.NoError(t, err)
	var viaJSON map[string]any
	require.NoError(t, json.Unmarshal(jb, &viaJSON))
	assert.Equal(t, viaJSON, got)
}

func TestMsgpackCodec_DecodeGarbage(t *testing.T) {
	_, err := MsgpackCodec{}.Decode([]byte{0xc1})
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestJSONCodec_LargeRoomIDsStayDistinct(t *testing.T) {
	r := newTestRelay(RelayOptions{}, "A", "B")

	for conn, raw := range map[ConnID]string{
		"A": `{"event":"join","data":9007199254740993}`,
		"B": `{"event":"join","data":{"roomId":9007199254740992}}`,
	} {
		frame, err := JSONCodec{}.Decode([]byte(raw))
		require.NoError(t, err)
		_, err = r.Handle(conn, frame)
		require.NoError(t, err)
	}

	roomA, _ := r.registry.CurrentRoom("A")
	roomB, _ := r.registry.CurrentRoom("B")
	assert.Equal(t, RoomID("9007199254740993"), roomA)
	assert.Equal(t, RoomID("9007199254740992"), roomB)
	assert.Equal(t, Stats{Connections: 2, Rooms: 2}, r.Stats())
}

func TestJSONToMsgpackKeepsNumbers(t *testing.T) {
	frame, err := JSONCodec{}.Decode([]byte(`{"event":"signal","data":{"roomId":"r","data":{"sdpMLineIndex":1}}}`))
	require.NoError(t, err)

	b, err := MsgpackCodec{}.Encode(frame)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, msgpack.Unmarshal(b, &got))
	inner := got["data"].(map[string]any)["data"].(map[string]any)
	assert.EqualValues(t, 1, inner["sdpMLineIndex"])
}
