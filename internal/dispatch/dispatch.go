// Package dispatch fans each reading out to every configured emitter.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"firestige.xyz/tilted/internal/emitter"
	"firestige.xyz/tilted/internal/log"
	"firestige.xyz/tilted/internal/metrics"
	"firestige.xyz/tilted/internal/tilt"
)

// DefaultTimeout bounds a single emitter call.
const DefaultTimeout = 10 * time.Second

// Result is the outcome of one emitter call.
type Result struct {
	Emitter  string
	Err      error
	Duration time.Duration
}

// Dispatcher delivers readings to a fixed set of emitters.
type Dispatcher struct {
	emitters []emitter.Named
	timeout  time.Duration
	logger   log.Logger
}

// New returns a dispatcher over emitters; a non-positive timeout selects
// DefaultTimeout.
func New(emitters []emitter.Named, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		emitters: emitters,
		timeout:  timeout,
		logger:   log.GetLogger(),
	}
}

// Emitters returns the configured emitters in dispatch order.
func (d *Dispatcher) Emitters() []emitter.Named { return d.emitters }

// Dispatch calls every emitter concurrently and returns once each has
// finished or exceeded the timeout. Failures are logged and counted, never
// returned; the results are in emitter order.
func (d *Dispatcher) Dispatch(ctx context.Context, r tilt.Reading) []Result {
	results := make([]Result, len(d.emitters))

	var g errgroup.Group
	for i, e := range d.emitters {
		i, e := i, e
		g.Go(func() error {
			results[i] = d.emit(ctx, e, r)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (d *Dispatcher) emit(ctx context.Context, e emitter.Named, r tilt.Reading) Result {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("emitter panic: %v", p)
			}
		}()
		done <- e.Emit(ctx, r)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		// The call is abandoned; its goroutine finishes on its own.
		err = ctx.Err()
	}
	res := Result{Emitter: e.Name, Err: err, Duration: time.Since(start)}

	result := metrics.ResultOK
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		result = metrics.ResultTimeout
	case err != nil:
		result = metrics.ResultError
	}
	metrics.EmitsTotal.WithLabelValues(e.Name, result).Inc()
	metrics.EmitLatencySeconds.WithLabelValues(e.Name).Observe(res.Duration.Seconds())

	if err != nil {
		d.logger.WithFields(map[string]interface{}{
			"emitter": e.Name,
			"kind":    e.Kind,
			"result":  result,
		}).WithError(err).Warn("emit failed")
	} else if d.logger.IsTraceEnabled() {
		d.logger.WithField("emitter", e.Name).Tracef("emitted in %s", res.Duration)
	}
	return res
}
