package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// recordingEmitter implements EventEmitter for tests.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*Event
	err    error
	done   chan struct{}
}

func newRecordingEmitter(err error) *recordingEmitter {
	return &recordingEmitter{err: err, done: make(chan struct{}, 8)}
}

func (r *recordingEmitter) Emit(ctx context.Context, event *Event) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	r.done <- struct{}{}
	return r.err
}

func (r *recordingEmitter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEmitAsync_NilInputs(t *testing.T) {
	EmitAsync(discardLogger(), nil, &Event{Type: EventLogin})

	em := newRecordingEmitter(nil)
	EmitAsync(discardLogger(), em, nil)
	time.Sleep(20 * time.Millisecond)
	if em.count() != 0 {
		t.Fatalf("emitter called %d times for nil event", em.count())
	}
}

func TestEmitAsync_Delivers(t *testing.T) {
	em := newRecordingEmitter(errors.New("sink down"))
	EmitAsync(nil, em, &Event{Type: EventLogin, UserID: "u1"})

	select {
	case <-em.done:
	case <-time.After(time.Second):
		t.Fatal("event was not emitted")
	}
	if em.count() != 1 || em.events[0].UserID != "u1" {
		t.Errorf("events = %+v", em.events)
	}
}

func TestFanout_EmitsToAllAndJoinsErrors(t *testing.T) {
	failing := newRecordingEmitter(errors.New("kafka unavailable"))
	ok := newRecordingEmitter(nil)
	f := Fanout{failing, nil, ok}

	err := f.Emit(context.Background(), &Event{Type: EventLogin})
	if err == nil {
		t.Fatal("Fanout.Emit: want joined error")
	}
	if failing.count() != 1 || ok.count() != 1 {
		t.Errorf("emits: failing=%d ok=%d, want 1 each", failing.count(), ok.count())
	}
	if (Fanout{ok}).Emit(context.Background(), &Event{}) != nil {
		t.Error("Fanout with healthy sinks should return nil")
	}
}
