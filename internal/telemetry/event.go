// Package telemetry carries login-history events out of the request path to
// best-effort sinks (OTel log records, Kafka).
package telemetry

import (
	"context"
	"errors"
	"time"
)

// EventType names a kind of telemetry event.
type EventType string

// EventLogin is emitted once per issued session (register, login, refresh).
const EventLogin EventType = "login"

// Event is the wire form of a login-history event.
type Event struct {
	Type        EventType `json:"event_type"`
	UserID      string    `json:"user_id"`
	Fingerprint string    `json:"fingerprint"`
	UserAgent   string    `json:"user_agent"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventEmitter emits telemetry events. Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}

// Fanout emits every event to each non-nil emitter and joins their errors.
type Fanout []EventEmitter

// Emit sends event to all emitters; one failing sink does not stop the others.
func (f Fanout) Emit(ctx context.Context, event *Event) error {
	var errs []error
	for _, e := range f {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
