// Package config loads runtime settings and the emitter configuration file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"firestige.xyz/tilted/internal/log"
)

// EnvPrefix prefixes every environment override, e.g. TILTED_SCAN_INTERVAL.
const EnvPrefix = "TILTED"

// Settings are the process settings taken from flags and the environment.
// The emitter file is separate; see LoadEmitters.
type Settings struct {
	Config       string        `mapstructure:"config"`
	Device       uint16        `mapstructure:"device"`
	ScanInterval time.Duration `mapstructure:"scan-interval"`
	EmitTimeout  time.Duration `mapstructure:"emit-timeout"`
	Verbosity    int           `mapstructure:"verbosity"`

	LogFormat     string `mapstructure:"log-format"`
	LogFile       string `mapstructure:"log-file"`
	LogMaxSize    int    `mapstructure:"log-max-size"`
	LogMaxBackups int    `mapstructure:"log-max-backups"`
	LogMaxAge     int    `mapstructure:"log-max-age"`
	LogCompress   bool   `mapstructure:"log-compress"`

	MetricsListen string `mapstructure:"metrics-listen"`
	MetricsPath   string `mapstructure:"metrics-path"`
}

// Load reads settings from v after layering environment overrides and
// defaults under whatever v already holds.
func Load(v *viper.Viper) (*Settings, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings validation failed: %w", err)
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("device", 0)
	v.SetDefault("scan-interval", "2s")
	v.SetDefault("emit-timeout", "10s")

	v.SetDefault("log-format", "text")
	v.SetDefault("log-max-size", 100)
	v.SetDefault("log-max-backups", 5)
	v.SetDefault("log-max-age", 30)
	v.SetDefault("log-compress", true)

	v.SetDefault("metrics-path", "/metrics")
}

// Validate checks ranges and enumerations.
func (s *Settings) Validate() error {
	var errs []error
	if s.ScanInterval <= 0 {
		errs = append(errs, fmt.Errorf("scan-interval must be positive, got %s", s.ScanInterval))
	}
	if s.EmitTimeout <= 0 {
		errs = append(errs, fmt.Errorf("emit-timeout must be positive, got %s", s.EmitTimeout))
	}
	if s.LogFormat != "text" && s.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid log-format: %s (must be text/json)", s.LogFormat))
	}
	if s.Verbosity < 0 {
		errs = append(errs, fmt.Errorf("verbosity must not be negative, got %d", s.Verbosity))
	}
	if s.MetricsListen != "" && !strings.HasPrefix(s.MetricsPath, "/") {
		errs = append(errs, fmt.Errorf("metrics-path must start with '/', got %q", s.MetricsPath))
	}
	return errors.Join(errs...)
}

// LogConfig derives the logger configuration.
func (s *Settings) LogConfig() log.Config {
	return log.Config{
		Level:  log.LevelForVerbosity(s.Verbosity),
		Format: s.LogFormat,
		File: log.FileAppenderOpt{
			Filename:   s.LogFile,
			MaxSize:    s.LogMaxSize,
			MaxBackups: s.LogMaxBackups,
			MaxAge:     s.LogMaxAge,
			Compress:   s.LogCompress,
		},
	}
}
