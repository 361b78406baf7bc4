package cmd

import (
	"context"
	"io"

	"firestige.xyz/tilted/internal/config"
	"firestige.xyz/tilted/internal/dispatch"
	"firestige.xyz/tilted/internal/hci"
	"firestige.xyz/tilted/internal/log"
	"firestige.xyz/tilted/internal/metrics"
	"firestige.xyz/tilted/internal/scanner"
)

type device interface {
	scanner.Device
	io.Closer
}

type opener func(index uint16) (device, error)

func openDevice(index uint16) (device, error) {
	s, err := hci.Open(index)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// runScan runs the scan loop until ctx is cancelled or a cycle fails.
// Cancelling closes the device, which ends a pending read.
func runScan(ctx context.Context, s *config.Settings, open opener) error {
	emitters, err := buildEmitters(s.Config)
	if err != nil {
		return err
	}
	defer closeEmitters(emitters)

	logger := log.GetLogger()
	if len(emitters) == 0 {
		logger.Warn("no emitters configured, readings will only be counted")
	}

	if s.MetricsListen != "" {
		srv := metrics.NewServer(s.MetricsListen, s.MetricsPath)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			sctx, cancel := shutdownContext()
			defer cancel()
			if err := srv.Stop(sctx); err != nil {
				logger.WithError(err).Warn("failed to stop metrics server")
			}
		}()
	}

	dev, err := open(s.Device)
	if err != nil {
		return err
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		if err := dev.Close(); err != nil {
			logger.WithError(err).Debug("device close")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"device":   s.Device,
		"emitters": len(emitters),
		"interval": s.ScanInterval.String(),
	}).Info("scanning")

	err = scanner.New(dev, dispatch.New(emitters, s.EmitTimeout), s.ScanInterval).Run(ctx)
	if err == nil {
		logger.Info("scan stopped")
	}
	return err
}
