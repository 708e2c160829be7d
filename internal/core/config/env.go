// Package config loads agentbox configuration: the process environment
// for the mailbox core and a YAML session file for provisioning and the
// terminal layout.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aki/agentbox/internal/core/logger"
	"github.com/aki/agentbox/internal/core/mailbox"
)

var (
	// ErrMissingAgentID is returned when AGENT_ID is not set
	ErrMissingAgentID = errors.New("AGENT_ID is not set")
	// ErrMissingMessageDir is returned when AGENT_MESSAGE_DIR is not set
	ErrMissingMessageDir = errors.New("AGENT_MESSAGE_DIR is not set")
)

// Env is the configuration an agent process reads from its environment
type Env struct {
	AgentID      string        `env:"AGENT_ID"`
	MessageDir   string        `env:"AGENT_MESSAGE_DIR"`
	PollInterval time.Duration `env:"AGENT_POLL_INTERVAL" envDefault:"5s"`
	Watch        bool          `env:"AGENT_WATCH" envDefault:"false"`
	LogLevel     string        `env:"AGENTBOX_LOG_LEVEL" envDefault:"info"`
	LogFormat    string        `env:"AGENTBOX_LOG_FORMAT" envDefault:"text"`
}

// LoadEnv reads Env from the process environment
func LoadEnv() (*Env, error) {
	cfg := &Env{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// LoadEnvFrom reads Env from the given variables instead of the process environment
func LoadEnvFrom(vars map[string]string) (*Env, error) {
	cfg := &Env{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings an agent cannot start without
func (e *Env) Validate() error {
	var errs []error
	if e.AgentID == "" {
		errs = append(errs, ErrMissingAgentID)
	} else if err := mailbox.ValidateAgentID(e.AgentID); err != nil {
		errs = append(errs, fmt.Errorf("AGENT_ID: %w", err))
	}
	if e.MessageDir == "" {
		errs = append(errs, ErrMissingMessageDir)
	}
	if e.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("AGENT_POLL_INTERVAL must be positive, got %s", e.PollInterval))
	}
	if _, err := logger.ParseLevel(e.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := logger.ParseFormat(e.LogFormat); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Layout returns the mailbox layout rooted at MessageDir
func (e *Env) Layout() mailbox.Layout {
	return mailbox.NewLayout(e.MessageDir)
}

// Logger builds the process logger from LogLevel and LogFormat
func (e *Env) Logger(opts ...logger.Option) logger.Logger {
	level, _ := logger.ParseLevel(e.LogLevel)
	format, _ := logger.ParseFormat(e.LogFormat)
	base := []logger.Option{
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithAgent(e.AgentID),
	}
	return logger.New(append(base, opts...)...)
}
