// Package metrics holds the process self-metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decode stages for DecodeErrorsTotal.
const (
	StageFrame      = "frame"
	StageReport     = "report"
	StageBeacon     = "beacon"
	StageIdentifier = "identifier"
)

// Emit results for EmitsTotal.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultTimeout = "timeout"
)

var (
	// ScanCyclesTotal counts scan cycles by outcome (ok or error)
	ScanCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tilted_scan_cycles_total",
			Help: "Total number of scan cycles",
		},
		[]string{"result"},
	)

	// FramesTotal counts event frames read from the adapter or a capture
	FramesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tilted_frames_total",
			Help: "Total number of HCI event frames read",
		},
	)

	// DecodeErrorsTotal counts frames and reports dropped by decode stage
	DecodeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tilted_decode_errors_total",
			Help: "Total number of frames or reports dropped during decoding",
		},
		[]string{"stage"},
	)

	// ReadingsTotal counts readings handed to the dispatcher
	ReadingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tilted_readings_total",
			Help: "Total number of hydrometer readings decoded",
		},
		[]string{"color"},
	)

	// EmitsTotal counts emitter calls by outcome
	EmitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tilted_emits_total",
			Help: "Total number of emitter calls",
		},
		[]string{"emitter", "result"},
	)

	// EmitLatencySeconds measures emitter call duration
	EmitLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tilted_emit_latency_seconds",
			Help:    "Latency of emitter calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		[]string{"emitter"},
	)
)
