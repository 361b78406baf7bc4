package stream

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/tilted/internal/emitter"
	"firestige.xyz/tilted/internal/tilt"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestEmitWritesMessage(t *testing.T) {
	w := &fakeWriter{}
	s := newStream(w, 0)
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return ts }

	require.NoError(t, s.Emit(context.Background(), tilt.Reading{Color: tilt.Purple, Temperature: 71, Gravity: 1.032}))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "purple", string(msg.Key))
	assert.Equal(t, ts, msg.Time)

	var v map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &v))
	assert.Equal(t, "purple", v["color"])
	assert.Equal(t, 71.0, v["temperature"])
	assert.Equal(t, 1.032, v["gravity"])
	assert.Equal(t, "2024-03-01T12:00:00Z", v["timestamp"])

	require.NoError(t, s.Close())
	assert.True(t, w.closed)
}

func TestEmitRateGate(t *testing.T) {
	w := &fakeWriter{}
	s := newStream(w, time.Hour)
	r := tilt.Reading{Color: tilt.Pink}

	require.NoError(t, s.Emit(context.Background(), r))
	require.NoError(t, s.Emit(context.Background(), r))
	assert.Len(t, w.msgs, 1)
}

func TestEmitWriteError(t *testing.T) {
	s := newStream(&fakeWriter{err: errors.New("leader not available")}, 0)
	err := s.Emit(context.Background(), tilt.Reading{Color: tilt.Red})
	assert.ErrorContains(t, err, "leader not available")
}

func TestNew(t *testing.T) {
	e, err := New("events", map[string]any{
		"brokers":     []any{"localhost:9092"},
		"topic":       "tilt.readings",
		"compression": "gzip",
	})
	require.NoError(t, err)
	s := e.(*Stream)
	assert.IsType(t, &kafka.Writer{}, s.writer)
	assert.NoError(t, s.Close())
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		opts map[string]any
	}{
		{"no brokers", map[string]any{"topic": "t"}},
		{"no topic", map[string]any{"brokers": []any{"b:9092"}}},
		{"bad compression", map[string]any{"brokers": []any{"b:9092"}, "topic": "t", "compression": "zstd9"}},
		{"zero attempts", map[string]any{"brokers": []any{"b:9092"}, "topic": "t", "max-attempts": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("events", tt.opts)
			assert.Error(t, err)
		})
	}

	_, err := New("events", map[string]any{"brokers": []any{"b:9092"}, "topic": "t", "partition": 2})
	assert.ErrorIs(t, err, emitter.ErrInvalidOptions)
}
