// Package pushgateway implements the "prometheus" emitter, which pushes the
// latest temperature and gravity per color to a Prometheus Pushgateway.
package pushgateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"firestige.xyz/tilted/internal/emitter"
	"firestige.xyz/tilted/internal/tilt"
)

const (
	Kind = "prometheus"
	// Job is the grouping key every push is filed under.
	Job = "tilted"
)

type options struct {
	Address          string        `mapstructure:"address"`
	TempGaugeName    string        `mapstructure:"temp_gauge_name"`
	GravityGaugeName string        `mapstructure:"gravity_gauge_name"`
	MinInterval      time.Duration `mapstructure:"min-interval"`
}

// Pushgateway holds two gauges in a private registry and replaces the job's
// metrics on every push.
type Pushgateway struct {
	temperature *prometheus.GaugeVec
	gravity     *prometheus.GaugeVec
	pusher      *push.Pusher
	gate        *emitter.Gate
}

func New(name string, opts map[string]any) (emitter.Emitter, error) {
	var o options
	if err := emitter.DecodeOptions(opts, &o); err != nil {
		return nil, err
	}
	switch {
	case o.Address == "":
		return nil, errors.New("pushgateway: address is required")
	case o.TempGaugeName == "":
		return nil, errors.New("pushgateway: temp_gauge_name is required")
	case o.GravityGaugeName == "":
		return nil, errors.New("pushgateway: gravity_gauge_name is required")
	case o.MinInterval < 0:
		return nil, fmt.Errorf("pushgateway: negative min-interval %s", o.MinInterval)
	}

	p := &Pushgateway{
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: o.TempGaugeName,
			Help: "The temperature reported",
		}, []string{"color"}),
		gravity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: o.GravityGaugeName,
			Help: "The gravity reported",
		}, []string{"color"}),
		gate: emitter.NewGate(o.MinInterval),
	}

	reg := prometheus.NewRegistry()
	if err := reg.Register(p.temperature); err != nil {
		return nil, fmt.Errorf("pushgateway: temp_gauge_name: %w", err)
	}
	if err := reg.Register(p.gravity); err != nil {
		return nil, fmt.Errorf("pushgateway: gravity_gauge_name: %w", err)
	}
	p.pusher = push.New(o.Address, Job).Gatherer(reg)
	return p, nil
}

// WithClient replaces the HTTP client used for pushes.
func (p *Pushgateway) WithClient(c *http.Client) *Pushgateway {
	p.pusher.Client(c)
	return p
}

// WithClock replaces the rate gate's time source.
func (p *Pushgateway) WithClock(now func() time.Time) *Pushgateway {
	p.gate.WithClock(now)
	return p
}

func (p *Pushgateway) Emit(ctx context.Context, r tilt.Reading) error {
	if !p.gate.Allow() {
		return nil
	}
	color := r.Color.String()
	p.temperature.WithLabelValues(color).Set(float64(r.Temperature))
	p.gravity.WithLabelValues(color).Set(r.Gravity)

	if err := p.pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("pushgateway: %w", err)
	}
	return nil
}
