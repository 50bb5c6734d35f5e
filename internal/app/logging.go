package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// LoggerConfig configures NewLogger.
type LoggerConfig struct {
	// Level is the minimum level to log ("debug", "info", "warn", "error").
	Level string

	// Format is LogFormatText or LogFormatJSON. Empty means text.
	Format string

	// Output receives log entries. Defaults to os.Stderr.
	Output io.Writer

	// File, if set, also writes entries to a size-rotated log file.
	File string

	// MaxSizeMB is the rotation size for File. Defaults to 10.
	MaxSizeMB int
}

// Logger is a logrus logger that owns its rotated log file, if any.
type Logger struct {
	*logrus.Logger
	file *lumberjack.Logger
}

// NewLogger creates a logger from cfg.
func NewLogger(cfg LoggerConfig) (*Logger, error) {
	level, err := ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	l := logrus.New()
	l.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "", LogFormatText:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case LogFormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	logger := &Logger{Logger: l}
	if cfg.File != "" {
		size := cfg.MaxSizeMB
		if size <= 0 {
			size = 10
		}
		logger.file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    size,
			MaxBackups: 3,
			MaxAge:     28,
		}
		out = io.MultiWriter(out, logger.file)
	}
	l.SetOutput(out)

	return logger, nil
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{Logger: l}
}

// Component returns a logger tagged with a component name.
func (l *Logger) Component(name string) logrus.FieldLogger {
	return l.WithField("component", name)
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLogLevel parses a level name. An empty name means info.
func ParseLogLevel(s string) (logrus.Level, error) {
	if strings.TrimSpace(s) == "" {
		return logrus.InfoLevel, nil
	}
	level, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
