package signaling

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedEvent = errors.New("malformed event")
	ErrUnknownEvent   = errors.New("unknown event")
	ErrNotRegistered  = errors.New("connection not registered")
	ErrNotMember      = errors.New("not a member of the room")
	ErrHubStopped     = errors.New("hub stopped")
)

// EventError ties a relay failure to the event that caused it.
type EventError struct {
	Event   string
	Err     error
	Details string
}

func (e *EventError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Event, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v", e.Event, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}

func newEventError(event string, err error, details string) *EventError {
	return &EventError{Event: event, Err: err, Details: details}
}
