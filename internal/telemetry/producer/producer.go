// Package producer streams login-history events to Kafka.
package producer

import (
	"auth-session-service/internal/telemetry"
)

// Producer is an EventEmitter that owns a connection and must be closed.
type Producer interface {
	telemetry.EventEmitter
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}
