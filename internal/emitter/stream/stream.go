// Package stream implements the "kafka" emitter, which publishes each
// reading as a JSON message keyed by color.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"

	"firestige.xyz/tilted/internal/emitter"
	"firestige.xyz/tilted/internal/log"
	"firestige.xyz/tilted/internal/tilt"
)

const Kind = "kafka"

const (
	defaultCompression = "none"
	defaultMaxAttempts = 3
)

type options struct {
	Brokers     []string      `mapstructure:"brokers"`
	Topic       string        `mapstructure:"topic"`
	Compression string        `mapstructure:"compression"`
	MaxAttempts int           `mapstructure:"max-attempts"`
	MinInterval time.Duration `mapstructure:"min-interval"`
}

// messageWriter is the subset of *kafka.Writer the emitter uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// message is the JSON value of each record.
type message struct {
	tilt.Reading
	Timestamp time.Time `json:"timestamp"`
}

// Stream writes readings to one Kafka topic.
type Stream struct {
	writer messageWriter
	gate   *emitter.Gate
	now    func() time.Time
}

func New(name string, opts map[string]any) (emitter.Emitter, error) {
	o := options{
		Compression: defaultCompression,
		MaxAttempts: defaultMaxAttempts,
	}
	if err := emitter.DecodeOptions(opts, &o); err != nil {
		return nil, err
	}
	if len(o.Brokers) == 0 {
		return nil, errors.New("stream: brokers is required")
	}
	if o.Topic == "" {
		return nil, errors.New("stream: topic is required")
	}
	if o.MaxAttempts < 1 {
		return nil, fmt.Errorf("stream: max-attempts must be positive, got %d", o.MaxAttempts)
	}
	if o.MinInterval < 0 {
		return nil, fmt.Errorf("stream: negative min-interval %s", o.MinInterval)
	}

	writerConfig := kafka.WriterConfig{
		Brokers:     o.Brokers,
		Topic:       o.Topic,
		Balancer:    &kafka.Hash{}, // one partition per color
		BatchSize:   1,
		MaxAttempts: o.MaxAttempts,
		Async:       false,
	}
	switch o.Compression {
	case "none", "":
	case "gzip":
		writerConfig.CompressionCodec = compress.Gzip.Codec()
	case "snappy":
		writerConfig.CompressionCodec = compress.Snappy.Codec()
	case "lz4":
		writerConfig.CompressionCodec = compress.Lz4.Codec()
	default:
		return nil, fmt.Errorf("stream: invalid compression type: %s", o.Compression)
	}

	log.GetLogger().WithFields(map[string]interface{}{
		"emitter":     name,
		"brokers":     o.Brokers,
		"topic":       o.Topic,
		"compression": o.Compression,
	}).Debug("kafka emitter configured")

	return newStream(kafka.NewWriter(writerConfig), o.MinInterval), nil
}

func newStream(w messageWriter, interval time.Duration) *Stream {
	return &Stream{writer: w, gate: emitter.NewGate(interval), now: time.Now}
}

func (s *Stream) Emit(ctx context.Context, r tilt.Reading) error {
	if !s.gate.Allow() {
		return nil
	}
	ts := s.now()
	value, err := json.Marshal(message{Reading: r, Timestamp: ts})
	if err != nil {
		return fmt.Errorf("stream: encode: %w", err)
	}
	if err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(r.Color.String()),
		Value: value,
		Time:  ts,
	}); err != nil {
		return fmt.Errorf("stream: write: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (s *Stream) Close() error {
	return s.writer.Close()
}
