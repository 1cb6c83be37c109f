package signaling

import (
	"context"
	"errors"
	"log/slog"

	"github.com/no-panic/callserver/internal/metrics"
)

// Inbound is one decoded (or undecodable) message read from a client.
type Inbound struct {
	Client *Client
	Frame  Frame
	Err    error
}

// HubOptions configures a Hub.
type HubOptions struct {
	Relay RelayOptions

	// ReportErrors sends an "error" message back to the sender of a dropped
	// event. Off by default: dropped events are silent.
	ReportErrors bool

	Logger *slog.Logger
}

// Hub is the central brain of the signaling server. Its Run loop is the
// single goroutine that owns the registry and the room directory; every
// connect, event and disconnect is applied there one at a time.
type Hub struct {
	relay   *Relay
	clients map[ConnID]*Client

	register   chan *Client
	unregister chan *Client
	inbound    chan Inbound
	stats      chan chan Stats

	// done is closed when Run returns.
	done chan struct{}

	reportErrors bool
	logger       *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(opts HubOptions) *Hub {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		relay:        NewRelay(NewRegistry(), NewDirectory(), opts.Relay),
		clients:      make(map[ConnID]*Client),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		inbound:      make(chan Inbound),
		stats:        make(chan chan Stats),
		done:         make(chan struct{}),
		reportErrors: opts.ReportErrors,
		logger:       logger.With(slog.String("component", "hub")),
	}
}

// Register hands a new client to the hub. It returns once the hub has
// recorded it, so events read afterwards are seen after the connect.
func (h *Hub) Register(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Unregister tells the hub the client is gone. The hub closes c.Send.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Dispatch queues a client message for the hub.
func (h *Hub) Dispatch(in Inbound) {
	select {
	case h.inbound <- in:
	case <-h.done:
	}
}

// Stats asks the hub loop for a snapshot of its state.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	select {
	case h.stats <- reply:
	case <-h.done:
		return Stats{}, ErrHubStopped
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Run processes hub events until ctx is cancelled. On return every client
// send channel is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			if _, ok := h.clients[client.ID]; ok {
				continue
			}
			h.clients[client.ID] = client
			h.relay.Connect(client.ID)
			h.logger.Debug("client registered", slog.String("conn", string(client.ID)))
			h.publishState()

		case client := <-h.unregister:
			if _, ok := h.clients[client.ID]; !ok {
				continue
			}
			deliveries := h.relay.Disconnect(client.ID)
			delete(h.clients, client.ID)
			close(client.Send)
			h.logger.Debug("client unregistered", slog.String("conn", string(client.ID)))
			h.deliver(deliveries)
			h.publishState()

		case in := <-h.inbound:
			h.handle(in)

		case reply := <-h.stats:
			reply <- h.relay.Stats()
		}
	}
}

func (h *Hub) handle(in Inbound) {
	client := in.Client
	if _, ok := h.clients[client.ID]; !ok {
		// Late message from a client that already unregistered.
		return
	}

	if in.Err != nil {
		metrics.EventsDropped.WithLabelValues(metrics.ReasonMalformed).Inc()
		h.logger.Debug("undecodable frame dropped",
			slog.String("conn", string(client.ID)),
			slog.Any("error", in.Err),
		)
		h.report(client, "", in.Err)
		return
	}

	metrics.EventsTotal.WithLabelValues(metrics.EventLabel(in.Frame.Event)).Inc()

	deliveries, err := h.relay.Handle(client.ID, in.Frame)
	if err != nil {
		metrics.EventsDropped.WithLabelValues(dropReason(err)).Inc()
		h.logger.Debug("event dropped",
			slog.String("conn", string(client.ID)),
			slog.String("event", in.Frame.Event),
			slog.Any("error", err),
		)
		h.report(client, in.Frame.Event, err)
		return
	}

	h.deliver(deliveries)
	h.publishState()
}

// deliver queues each message on its recipients' send channels without
// blocking. A full channel loses the message for that recipient only.
func (h *Hub) deliver(deliveries []Delivery) {
	for _, d := range deliveries {
		for _, id := range d.To {
			client, ok := h.clients[id]
			if !ok {
				continue
			}
			select {
			case client.Send <- d.Message:
				metrics.DeliveriesTotal.WithLabelValues(d.Message.Event).Inc()
			default:
				metrics.DeliveriesDropped.WithLabelValues(d.Message.Event).Inc()
				h.logger.Warn("send buffer full, message dropped",
					slog.String("conn", string(id)),
					slog.String("event", d.Message.Event),
				)
			}
		}
	}
}

func (h *Hub) report(client *Client, event string, err error) {
	if !h.reportErrors {
		return
	}
	h.deliver([]Delivery{{
		To:      []ConnID{client.ID},
		Message: Frame{Event: EventErrorReply, Data: ErrorPayload{Event: event, Reason: err.Error()}},
	}})
}

func (h *Hub) publishState() {
	s := h.relay.Stats()
	metrics.SetState(s.Connections, s.Rooms)
}

func (h *Hub) shutdown() {
	for id, client := range h.clients {
		h.relay.Disconnect(id)
		close(client.Send)
		delete(h.clients, id)
	}
	h.publishState()
	h.logger.Info("hub stopped")
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, ErrMalformedEvent):
		return metrics.ReasonMalformed
	case errors.Is(err, ErrNotRegistered):
		return metrics.ReasonNotRegistered
	case errors.Is(err, ErrNotMember):
		return metrics.ReasonNotMember
	default:
		return metrics.ReasonUnknownEvent
	}
}
