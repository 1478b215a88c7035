package telemetry

import (
	"context"
	"log/slog"
	"time"
)

// emitTimeout is the max time allowed for a single async emit.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long the server waits after HTTP shutdown before
// closing sinks, so in-flight async emits can complete. Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// EmitAsync runs Emit in a goroutine with a short timeout so the caller is not blocked.
// Errors are logged to logger. emitter and event may be nil; then nothing is started.
// The goroutine uses context.Background() so request cancellation does not abort the emit.
func EmitAsync(logger *slog.Logger, emitter EventEmitter, event *Event) {
	if emitter == nil || event == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := emitter.Emit(ctx, event); err != nil {
			logger.Warn("telemetry emit failed", "event_type", event.Type, "error", err)
		}
	}()
}
