// Package console implements the "log" emitter, which writes each reading to
// the process logger.
package console

import (
	"context"

	"firestige.xyz/tilted/internal/emitter"
	"firestige.xyz/tilted/internal/log"
	"firestige.xyz/tilted/internal/tilt"
)

const Kind = "log"

type options struct{}

// Console logs readings at info level.
type Console struct {
	logger log.Logger
}

// New builds a console emitter. It accepts no options.
func New(name string, opts map[string]any) (emitter.Emitter, error) {
	if err := emitter.DecodeOptions(opts, &options{}); err != nil {
		return nil, err
	}
	return &Console{logger: log.GetLogger().WithField("emitter", name)}, nil
}

// WithLogger replaces the destination logger.
func (c *Console) WithLogger(l log.Logger) *Console {
	c.logger = l
	return c
}

func (c *Console) Emit(ctx context.Context, r tilt.Reading) error {
	c.logger.WithFields(r.Fields()).Info("reading received")
	return nil
}
