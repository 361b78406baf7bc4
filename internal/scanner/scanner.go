// Package scanner runs the scan loop: one LE scan cycle per tick, each
// reading a single event frame and dispatching the readings it carries.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"firestige.xyz/tilted/internal/beacon"
	"firestige.xyz/tilted/internal/dispatch"
	"firestige.xyz/tilted/internal/hci"
	"firestige.xyz/tilted/internal/log"
	"firestige.xyz/tilted/internal/metrics"
	"firestige.xyz/tilted/internal/tilt"
)

// DefaultInterval is the pause between scan cycles.
const DefaultInterval = 2 * time.Second

// Device is an HCI socket as the scan loop uses it.
type Device interface {
	io.Reader
	GetFilter() (hci.Filter, error)
	SetFilter(hci.Filter) error
	EnableLEScan() error
}

// FrameReader is implemented by devices that deliver exactly one frame per
// packet. Without it the device is read as a byte stream.
type FrameReader interface {
	ReadFrame() (hci.Frame, error)
}

// Sink receives decoded readings.
type Sink interface {
	Dispatch(ctx context.Context, r tilt.Reading) []dispatch.Result
}

// Scanner owns a device for the lifetime of Run.
type Scanner struct {
	dev      Device
	sink     Sink
	interval time.Duration
	logger   log.Logger
}

// New returns a scanner; a non-positive interval selects DefaultInterval.
func New(dev Device, sink Sink, interval time.Duration) *Scanner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scanner{
		dev:      dev,
		sink:     sink,
		interval: interval,
		logger:   log.GetLogger(),
	}
}

// Run performs a cycle immediately and then one per interval until ctx is
// done or a cycle fails. Failures after ctx is done are not reported, so
// closing the device is a clean way to stop a blocked read.
func (s *Scanner) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.Cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			metrics.ScanCyclesTotal.WithLabelValues("error").Inc()
			return err
		}
		metrics.ScanCyclesTotal.WithLabelValues("ok").Inc()

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Cycle reads one frame from the device and processes it. Any error is
// fatal for the loop, except a packet from a FrameReader that is not
// exactly one frame: that packet is dropped.
func (s *Scanner) Cycle(ctx context.Context) error {
	frame, err := s.scan()
	if err != nil {
		return err
	}
	if frame != nil {
		s.Process(ctx, frame)
	}
	return nil
}

// scan installs the scan filter, enables scanning and reads one frame. The
// previous filter is put back on every path once it has been saved.
func (s *Scanner) scan() (hci.Frame, error) {
	saved, err := s.dev.GetFilter()
	if err != nil {
		return nil, fmt.Errorf("scanner: save filter: %w", err)
	}
	defer func() {
		if err := s.dev.SetFilter(saved); err != nil {
			s.logger.WithError(err).Warn("restore filter failed")
		}
	}()

	if err := s.dev.SetFilter(hci.ScanFilter()); err != nil {
		return nil, fmt.Errorf("scanner: set filter: %w", err)
	}
	if err := s.dev.EnableLEScan(); err != nil {
		return nil, fmt.Errorf("scanner: enable scan: %w", err)
	}
	frame, err := s.readFrame()
	if errors.Is(err, hci.ErrShortRead) || errors.Is(err, hci.ErrTrailingBytes) {
		if _, packets := s.dev.(FrameReader); packets {
			metrics.DecodeErrorsTotal.WithLabelValues(metrics.StageFrame).Inc()
			s.logger.WithError(err).Debug("packet dropped")
			return nil, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("scanner: %w", err)
	}
	metrics.FramesTotal.Inc()
	return frame, nil
}

func (s *Scanner) readFrame() (hci.Frame, error) {
	if fr, ok := s.dev.(FrameReader); ok {
		return fr.ReadFrame()
	}
	return hci.ReadFrame(s.dev)
}

// Process decodes frame and dispatches every reading in it, in report
// order. Frames and reports that do not decode are dropped. It returns the
// number of readings dispatched.
func (s *Scanner) Process(ctx context.Context, frame hci.Frame) int {
	return Process(ctx, frame, s.sink, s.logger)
}

// Process is the decode and dispatch path shared by the live loop and
// capture replay.
func Process(ctx context.Context, frame hci.Frame, sink Sink, logger log.Logger) int {
	batch, err := hci.DecodeAdvertisingReports(frame)
	if err != nil {
		metrics.DecodeErrorsTotal.WithLabelValues(metrics.StageFrame).Inc()
		logger.WithError(err).Debug("frame dropped")
		return 0
	}
	if n := batch.Dropped(); n > 0 {
		metrics.DecodeErrorsTotal.WithLabelValues(metrics.StageReport).Add(float64(n))
		logger.WithField("dropped", n).Debug("reports with unknown event or address type dropped")
	}

	dispatched := 0
	for _, rep := range batch.Reports {
		rl := logger.WithFields(map[string]interface{}{"address": rep.Address.String(), "rssi": rep.RSSI})

		rec, err := beacon.Find(rep.Data)
		if err != nil {
			metrics.DecodeErrorsTotal.WithLabelValues(metrics.StageBeacon).Inc()
			if rl.IsTraceEnabled() {
				rl.WithError(err).Tracef("not a beacon: % x", rep.Data)
			}
			continue
		}
		reading, err := tilt.FromBeacon(rec)
		if err != nil {
			metrics.DecodeErrorsTotal.WithLabelValues(metrics.StageIdentifier).Inc()
			rl.WithError(err).Debug("beacon dropped")
			continue
		}

		metrics.ReadingsTotal.WithLabelValues(reading.Color.String()).Inc()
		rl.WithFields(reading.Fields()).Debug("reading decoded")
		sink.Dispatch(ctx, reading)
		dispatched++
	}
	return dispatched
}
