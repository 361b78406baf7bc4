// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"firestige.xyz/tilted/internal/config"
	"firestige.xyz/tilted/internal/dispatch"
	"firestige.xyz/tilted/internal/emitter"
	_ "firestige.xyz/tilted/internal/emitter/builtin"
	"firestige.xyz/tilted/internal/log"
	"firestige.xyz/tilted/internal/scanner"
)

var (
	// Global flags
	configFile string
	verbosity  int

	settings *config.Settings
)

// rootCmd scans when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tilted",
	Short: "tilted - Tilt hydrometer listener",
	Long: `tilted listens for Bluetooth LE advertisements from Tilt hydrometers on a
local HCI adapter, decodes temperature and specific gravity, and forwards each
reading to the emitters named in the configuration file.

Emitters:
  - log:        write readings to the process log
  - http:       send readings to a webhook (json, query or form encoded)
  - prometheus: push gauges to a Prometheus Pushgateway
  - kafka:      publish readings to a Kafka topic`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runScan(ctx, settings, openDevice)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "emitter configuration file (.toml, .yaml or .json)")
	pf.CountVarP(&verbosity, "verbosity", "v", "raise log verbosity (-v debug, -vv trace)")
	rootCmd.MarkPersistentFlagRequired("config")

	pf.Uint16("device", 0, "HCI adapter index")
	pf.Duration("scan-interval", scanner.DefaultInterval, "pause between scan cycles")
	pf.Duration("emit-timeout", dispatch.DefaultTimeout, "time limit for each emitter call")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("log-file", "", "also write logs to this file, rotated")
	pf.Int("log-max-size", 100, "log file size in megabytes before rotation")
	pf.Int("log-max-backups", 5, "rotated log files to keep")
	pf.Int("log-max-age", 30, "days to keep rotated log files")
	pf.Bool("log-compress", true, "compress rotated log files")
	pf.String("metrics-listen", "", "serve self-metrics on this address, e.g. :9100")
	pf.String("metrics-path", "/metrics", "self-metrics HTTP path")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(replayCmd)
}

func loadSettings(cmd *cobra.Command, args []string) error {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	s, err := config.Load(v)
	if err != nil {
		return err
	}
	if err := log.Init(s.LogConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	settings = s
	return nil
}

// buildEmitters loads the emitter file and constructs every entry.
func buildEmitters(path string) ([]emitter.Named, error) {
	entries, err := config.LoadEmitters(path)
	if err != nil {
		return nil, err
	}
	return emitter.Build(entries)
}

func closeEmitters(emitters []emitter.Named) {
	if err := emitter.CloseAll(emitters); err != nil {
		log.GetLogger().WithError(err).Warn("failed to close emitters")
	}
}

func shutdownContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
