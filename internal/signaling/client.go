package signaling

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/no-panic/callserver/internal/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024 // 64 KB - enough for WebRTC SDP messages
)

// ClientOptions configures a new Client.
type ClientOptions struct {
	// SendBuffer is the capacity of the outbound queue.
	SendBuffer int

	// EventRate is the sustained number of events per second accepted from
	// the client; EventBurst is the bucket size. Zero rate disables it.
	EventRate  float64
	EventBurst int

	Logger *slog.Logger
}

// Client is a wrapper for a single websocket connection (a peer).
type Client struct {
	// ID is the connection identifier other peers see as userId / from.
	ID ConnID

	Hub  *Hub
	Conn *websocket.Conn

	// Send is the buffered queue of outbound messages. Only the hub writes
	// to and closes it; WritePump drains it.
	Send chan Frame

	codec   Codec
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient wraps conn. The codec follows the negotiated subprotocol.
func NewClient(hub *Hub, conn *websocket.Conn, opts ClientOptions) *Client {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 256
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		ID:    ConnID(uuid.NewString()),
		Hub:   hub,
		Conn:  conn,
		Send:  make(chan Frame, opts.SendBuffer),
		codec: CodecFor(conn.Subprotocol()),
	}
	if opts.EventRate > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.EventRate), max(opts.EventBurst, 1))
	}
	c.logger = logger.With(slog.String("conn", string(c.ID)))
	return c
}

// ReadPump pumps messages from the websocket connection to the hub.
//
// The application runs ReadPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("read failed", slog.Any("error", err))
			}
			return
		}

		if c.limiter != nil && !c.limiter.Allow() {
			metrics.EventsDropped.WithLabelValues(metrics.ReasonRateLimited).Inc()
			continue
		}

		frame, err := c.codec.Decode(data)
		c.Hub.Dispatch(Inbound{Client: c, Frame: frame, Err: err})
	}
}

// WritePump pumps messages from the hub to the websocket connection.
//
// A goroutine running WritePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := c.codec.Encode(frame)
			if err != nil {
				c.logger.Error("encode failed", slog.String("event", frame.Event), slog.Any("error", err))
				continue
			}
			if err := c.Conn.WriteMessage(c.codec.MessageType(), data); err != nil {
				c.logger.Debug("write failed", slog.Any("error", err))
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
