// Package history records one append-only entry per issued session and
// publishes it as a login event.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"auth-session-service/internal/history/domain"
	historyrepo "auth-session-service/internal/history/repository"
	sessiondomain "auth-session-service/internal/session/domain"
	"auth-session-service/internal/telemetry"
)

// eventSource tags login events published by this service.
const eventSource = "auth"

// Recorder persists history entries and emits a login event for each.
type Recorder struct {
	repo    historyrepo.Repository
	emitter telemetry.EventEmitter
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithEmitter publishes a login event after each persisted entry.
func WithEmitter(e telemetry.EventEmitter) Option {
	return func(r *Recorder) { r.emitter = e }
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder returns a Recorder writing to repo. logger may be nil.
func NewRecorder(repo historyrepo.Repository, logger *slog.Logger, opts ...Option) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{repo: repo, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Append inserts an entry for the user on device. The login event is emitted
// asynchronously and only after the insert succeeds.
func (r *Recorder) Append(ctx context.Context, userID string, device sessiondomain.Device) (*domain.Entry, error) {
	entry := &domain.Entry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Fingerprint: device.Fingerprint,
		UserAgent:   device.UserAgent,
		CreatedAt:   r.now().UTC(),
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}
	telemetry.EmitAsync(r.logger, r.emitter, &telemetry.Event{
		Type:        telemetry.EventLogin,
		UserID:      entry.UserID,
		Fingerprint: entry.Fingerprint,
		UserAgent:   entry.UserAgent,
		Source:      eventSource,
		CreatedAt:   entry.CreatedAt,
	})
	return entry, nil
}

// ListByUser returns the user's history oldest first.
func (r *Recorder) ListByUser(ctx context.Context, userID string) ([]*domain.Entry, error) {
	entries, err := r.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}
