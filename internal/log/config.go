package log

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPattern    = "%time [%level] %field: %msg\n"
	DefaultTimeFormat = "2006-01-02 15:04:05.000"
)

// Config selects the level, format and outputs of the process logger.
type Config struct {
	Level string `mapstructure:"level"`
	// Format is "text" (pattern formatter) or "json".
	Format  string          `mapstructure:"format"`
	Pattern string          `mapstructure:"pattern"`
	Time    string          `mapstructure:"time"`
	File    FileAppenderOpt `mapstructure:"file"`
}

// LevelForVerbosity maps the count of -v flags to a level name.
func LevelForVerbosity(n int) string {
	switch {
	case n <= 0:
		return logrus.InfoLevel.String()
	case n == 1:
		return logrus.DebugLevel.String()
	default:
		return logrus.TraceLevel.String()
	}
}

func (c Config) withDefaults() Config {
	if c.Level == "" {
		c.Level = logrus.InfoLevel.String()
	}
	if c.Format == "" {
		c.Format = "text"
	}
	if c.Pattern == "" {
		c.Pattern = DefaultPattern
	}
	if c.Time == "" {
		c.Time = DefaultTimeFormat
	}
	return c
}

func (c Config) formatter() (logrus.Formatter, error) {
	switch strings.ToLower(c.Format) {
	case "text":
		return &formatter{pattern: c.Pattern, time: c.Time}, nil
	case "json":
		return &logrus.JSONFormatter{TimestampFormat: c.Time}, nil
	default:
		return nil, fmt.Errorf("log: unsupported format %q (must be text or json)", c.Format)
	}
}
