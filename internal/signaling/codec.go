package signaling

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Subprotocols offered during the WebSocket handshake, in preference order.
// Clients that ask for none get JSON.
const (
	SubprotocolMsgpack = "msgpack"
	SubprotocolJSON    = "json"
)

var Subprotocols = []string{SubprotocolMsgpack, SubprotocolJSON}

// Codec turns frames into WebSocket messages and back.
type Codec interface {
	Name() string
	MessageType() int
	Encode(Frame) ([]byte, error)
	Decode([]byte) (Frame, error)
}

// CodecFor picks the codec for a negotiated subprotocol.
func CodecFor(subprotocol string) Codec {
	if subprotocol == SubprotocolMsgpack {
		return MsgpackCodec{}
	}
	return JSONCodec{}
}

// JSONCodec speaks JSON text frames.
type JSONCodec struct{}

func (JSONCodec) Name() string     { return SubprotocolJSON }
func (JSONCodec) MessageType() int { return websocket.TextMessage }

func (JSONCodec) Encode(f Frame) ([]byte, error) {
	return json.Marshal(f)
}

func (JSONCodec) Decode(b []byte) (Frame, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var f Frame
	if err := dec.Decode(&f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if dec.More() {
		return Frame{}, fmt.Errorf("%w: trailing data after frame", ErrMalformedEvent)
	}
	if f.Event == "" {
		return Frame{}, fmt.Errorf("%w: missing event name", ErrMalformedEvent)
	}
	f.Data = resolveNumbers(f.Data)
	return f, nil
}

// resolveNumbers replaces json.Number values with int64 when the number is
// an integer that fits, float64 otherwise. Integers too large for int64 stay
// json.Number so room ids keep every digit.
func resolveNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if strings.ContainsAny(x.String(), ".eE") {
			if f, err := x.Float64(); err == nil {
				return f
			}
		}
		return x
	case map[string]any:
		for k, e := range x {
			x[k] = resolveNumbers(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = resolveNumbers(e)
		}
		return x
	default:
		return v
	}
}

// MsgpackCodec speaks MessagePack binary frames with the same field names
// as the JSON envelope.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string     { return SubprotocolMsgpack }
func (MsgpackCodec) MessageType() int { return websocket.BinaryMessage }

func (MsgpackCodec) Encode(f Frame) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MsgpackCodec) Decode(b []byte) (Frame, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	dec.UseLooseInterfaceDecoding(true)

	var f Frame
	if err := dec.Decode(&f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if f.Event == "" {
		return Frame{}, fmt.Errorf("%w: missing event name", ErrMalformedEvent)
	}
	return f, nil
}
