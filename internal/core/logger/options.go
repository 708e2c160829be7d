package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format is the log output format
type Format string

const (
	// FormatText outputs logfmt-style text
	FormatText Format = "text"
	// FormatJSON outputs one JSON object per record
	FormatJSON Format = "json"
)

type config struct {
	level  slog.Level
	output io.Writer
	format Format
	attrs  []any
}

// Option configures a logger
type Option func(*config)

// WithLevel sets the minimum level
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithOutput sets the destination writer
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		c.output = w
	}
}

// WithFormat sets the output format
func WithFormat(format Format) Option {
	return func(c *config) {
		c.format = format
	}
}

// WithAgent tags every record with the agent id
func WithAgent(agentID string) Option {
	return func(c *config) {
		if agentID != "" {
			c.attrs = append(c.attrs, "agent", agentID)
		}
	}
}

// WithDebug enables debug records
func WithDebug() Option {
	return WithLevel(slog.LevelDebug)
}

// WithQuiet keeps only warnings and errors
func WithQuiet() Option {
	return WithLevel(slog.LevelWarn)
}

// ParseLevel maps debug, info, warn and error to slog levels
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// ParseFormat maps text and json to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format: %s", s)
	}
}
