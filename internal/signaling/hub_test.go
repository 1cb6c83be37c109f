package signaling

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/no-panic/callserver/internal/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startHub runs a hub until the test ends.
func startHub(t *testing.T, opts HubOptions) *Hub {
	t.Helper()
	opts.Logger = discardLogger()
	h := NewHub(opts)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	return h
}

func newTestClient(t *testing.T, h *Hub, id ConnID, buffer int) *Client {
	t.Helper()
	c := &Client{ID: id, Hub: h, Send: make(chan Frame, buffer)}
	require.NoError(t, h.Register(c))
	return c
}

// flush returns once the hub has processed everything handed to it so far.
func flush(t *testing.T, h *Hub) Stats {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s, err := h.Stats(ctx)
	require.NoError(t, err)
	return s
}

// drain returns the messages queued for c without blocking.
func drain(c *Client) []Frame {
	var out []Frame
	for {
		select {
		case f, ok := <-c.Send:
			if !ok {
				return out
			}
			out = append(out, f)
		default:
			return out
		}
	}
}

func joinFrame(room string) Frame {
	return Frame{Event: EventJoin, Data: map[string]any{"roomId": room}}
}

func TestHub_JoinAndDisconnect(t *testing.T) {
	h := startHub(t, HubOptions{})
	x := newTestClient(t, h, "X", 16)
	y := newTestClient(t, h, "Y", 16)
	z := newTestClient(t, h, "Z", 16)

	for _, c := range []*Client{x, y, z} {
		h.Dispatch(Inbound{Client: c, Frame: joinFrame("room1")})
	}
	assert.Equal(t, Stats{Connections: 3, Rooms: 1}, flush(t, h))

	assert.Len(t, drain(x), 3)
	assert.Len(t, drain(y), 2)
	got := drain(z)
	require.Len(t, got, 1)
	assert.Equal(t, Frame{Event: EventUserJoined, Data: PeerPayload{UserID: "Z", RoomID: "room1"}}, got[0])

	h.Unregister(x)
	assert.Equal(t, Stats{Connections: 2, Rooms: 1}, flush(t, h))

	left := Frame{Event: EventUserLeft, Data: PeerPayload{UserID: "X", RoomID: "room1"}}
	assert.Equal(t, []Frame{left}, drain(y))
	assert.Equal(t, []Frame{left}, drain(z))

	_, open := <-x.Send
	assert.False(t, open, "send channel of a departed client is closed")
}

func TestHub_SignalSkipsSender(t *testing.T) {
	h := startHub(t, HubOptions{})
	a := newTestClient(t, h, "A", 16)
	b := newTestClient(t, h, "B", 16)
	h.Dispatch(Inbound{Client: a, Frame: joinFrame("s1")})
	h.Dispatch(Inbound{Client: b, Frame: joinFrame("s1")})
	flush(t, h)
	drain(a)
	drain(b)

	candidate := map[string]any{"candidate": map[string]any{"candidate": "candidate:1 1 udp 1 10.0.0.1 5000 typ host"}}
	h.Dispatch(Inbound{Client: a, Frame: Frame{Event: EventSignal, Data: map[string]any{"roomId": "s1", "data": candidate}}})
	flush(t, h)

	assert.Empty(t, drain(a))
	got := drain(b)
	require.Len(t, got, 1)
	assert.Equal(t, SignalPayload{RoomID: "s1", Data: candidate, From: "A"}, got[0].Data)
}

func TestHub_FullBufferDropsMessage(t *testing.T) {
	h := startHub(t, HubOptions{})
	slow := newTestClient(t, h, "slow", 1)
	fast := newTestClient(t, h, "fast", 16)

	dropped := testutil.ToFloat64(metrics.DeliveriesDropped.WithLabelValues(EventUserJoined))

	h.Dispatch(Inbound{Client: slow, Frame: joinFrame("r")})
	h.Dispatch(Inbound{Client: fast, Frame: joinFrame("r")})
	flush(t, h)

	assert.Len(t, drain(slow), 1, "second user-joined did not fit")
	assert.Len(t, drain(fast), 1)
	assert.Equal(t, dropped+1, testutil.ToFloat64(metrics.DeliveriesDropped.WithLabelValues(EventUserJoined)))
}

func TestHub_ReportErrors(t *testing.T) {
	tests := []struct {
		name   string
		report bool
		in     func(c *Client) Inbound
		want   int
	}{
		{
			name:   "silent by default",
			report: false,
			in: func(c *Client) Inbound {
				return Inbound{Client: c, Frame: Frame{Event: EventJoin}}
			},
			want: 0,
		},
		{
			name:   "malformed payload reported",
			report: true,
			in: func(c *Client) Inbound {
				return Inbound{Client: c, Frame: Frame{Event: EventJoin}}
			},
			want: 1,
		},
		{
			name:   "undecodable frame reported",
			report: true,
			in: func(c *Client) Inbound {
				return Inbound{Client: c, Err: ErrMalformedEvent}
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := startHub(t, HubOptions{ReportErrors: tt.report})
			c := newTestClient(t, h, "c", 4)

			h.Dispatch(tt.in(c))
			assert.Equal(t, Stats{Connections: 1}, flush(t, h))

			got := drain(c)
			require.Len(t, got, tt.want)
			for _, f := range got {
				assert.Equal(t, EventErrorReply, f.Event)
				assert.IsType(t, ErrorPayload{}, f.Data)
			}
		})
	}
}

func TestHub_MalformedEventCounted(t *testing.T) {
	h := startHub(t, HubOptions{})
	c := newTestClient(t, h, "c", 4)
	before := testutil.ToFloat64(metrics.EventsDropped.WithLabelValues(metrics.ReasonMalformed))

	h.Dispatch(Inbound{Client: c, Frame: Frame{Event: EventSignal, Data: "nope"}})
	flush(t, h)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.EventsDropped.WithLabelValues(metrics.ReasonMalformed)))
}

func TestHub_UnregisterTwice(t *testing.T) {
	h := startHub(t, HubOptions{})
	c := newTestClient(t, h, "c", 4)

	h.Unregister(c)
	h.Unregister(c)
	assert.Equal(t, Stats{}, flush(t, h))

	// Messages still in flight from a departed client are ignored.
	h.Dispatch(Inbound{Client: c, Frame: joinFrame("r")})
	assert.Equal(t, Stats{}, flush(t, h))
}

func TestHub_Shutdown(t *testing.T) {
	h := NewHub(HubOptions{Logger: discardLogger()})
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	c := &Client{ID: "c", Hub: h, Send: make(chan Frame, 4)}
	require.NoError(t, h.Register(c))

	cancel()
	<-h.Done()

	_, open := <-c.Send
	assert.False(t, open)

	assert.ErrorIs(t, h.Register(&Client{ID: "late", Send: make(chan Frame)}), ErrHubStopped)
	_, err := h.Stats(context.Background())
	assert.ErrorIs(t, err, ErrHubStopped)

	// Neither blocks once the hub is gone.
	h.Unregister(c)
	h.Dispatch(Inbound{Client: c})
}
