// Package metrics holds the Prometheus collectors of the call server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Connections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "signaling_connections",
			Help: "Current number of registered WebSocket connections",
		},
	)

	Rooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "signaling_rooms",
			Help: "Current number of rooms with at least one member",
		},
	)

	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_events_total",
			Help: "Total number of client events processed by the hub",
		},
		[]string{"event"}, // join, create, leave, signal, toggleVideo, other
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_events_dropped_total",
			Help: "Total number of client events dropped without effect",
		},
		[]string{"reason"}, // malformed, unknown_event, not_registered, not_member, rate_limited
	)

	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_deliveries_total",
			Help: "Total number of messages queued to connections",
		},
		[]string{"event"},
	)

	DeliveriesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_deliveries_dropped_total",
			Help: "Total number of messages dropped because the connection send buffer was full",
		},
		[]string{"event"},
	)
)

// Drop reasons.
const (
	ReasonMalformed     = "malformed"
	ReasonUnknownEvent  = "unknown_event"
	ReasonNotRegistered = "not_registered"
	ReasonNotMember     = "not_member"
	ReasonRateLimited   = "rate_limited"
)

// knownEvents bounds the event label to a fixed set.
var knownEvents = map[string]bool{
	"join":        true,
	"create":      true,
	"leave":       true,
	"signal":      true,
	"toggleVideo": true,
}

// EventLabel maps client supplied event names onto a bounded label set.
func EventLabel(event string) string {
	if knownEvents[event] {
		return event
	}
	return "other"
}

// SetState publishes the current connection and room counts.
func SetState(connections, rooms int) {
	Connections.Set(float64(connections))
	Rooms.Set(float64(rooms))
}
