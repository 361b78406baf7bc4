// Package emitter defines reading sinks and the registry that builds them
// from configuration.
package emitter

import (
	"context"
	"errors"

	"firestige.xyz/tilted/internal/tilt"
)

// KindKey is the entry key naming an emitter's kind.
const KindKey = "emitter"

// Emitter delivers one reading to an external sink. Emit must honor ctx;
// the dispatcher abandons calls that outlive it.
type Emitter interface {
	Emit(ctx context.Context, r tilt.Reading) error
}

// Closer is implemented by emitters that hold connections.
type Closer interface {
	Close() error
}

// Factory builds an emitter from its configuration entry. name is the
// entry's key in the configuration file and opts excludes KindKey.
type Factory func(name string, opts map[string]any) (Emitter, error)

// Named is a built emitter with its configured name and kind.
type Named struct {
	Name string
	Kind string
	Emitter
}

// CloseAll closes every emitter that implements Closer.
func CloseAll(emitters []Named) error {
	var errs []error
	for _, e := range emitters {
		if c, ok := e.Emitter.(Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
