package main

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"

	"auth-session-service/internal/platform/logging"
)

// scriptedReader returns its messages and errors in order, then cancels the context.
type scriptedReader struct {
	steps  []func() (kafka.Message, error)
	cancel context.CancelFunc
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.steps) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	step := r.steps[0]
	r.steps = r.steps[1:]
	return step()
}

type recordingPusher struct {
	lines [][]byte
	err   error
}

func (p *recordingPusher) PushEventJSON(_ context.Context, raw []byte) error {
	p.lines = append(p.lines, raw)
	return p.err
}

func TestConsume_ForwardsAndSkipsFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msg := func(v string) func() (kafka.Message, error) {
		return func() (kafka.Message, error) { return kafka.Message{Value: []byte(v)}, nil }
	}
	reader := &scriptedReader{
		cancel: cancel,
		steps: []func() (kafka.Message, error){
			msg(`{"event_type":"login"}`),
			func() (kafka.Message, error) { return kafka.Message{}, errors.New("broker gone") },
			msg(`{"event_type":"login","user_id":"u2"}`),
		},
	}
	pusher := &recordingPusher{err: errors.New("loki down")}

	consume(ctx, reader, pusher, logging.Discard())

	if len(pusher.lines) != 2 {
		t.Fatalf("pushed %d lines, want 2", len(pusher.lines))
	}
	if string(pusher.lines[1]) != `{"event_type":"login","user_id":"u2"}` {
		t.Errorf("second line = %s", pusher.lines[1])
	}
}
