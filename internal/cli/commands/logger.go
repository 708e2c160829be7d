package commands

import (
	"github.com/spf13/cobra"

	"github.com/aki/agentbox/internal/core/config"
	"github.com/aki/agentbox/internal/core/logger"
)

// Global flags for logging configuration
var (
	flagLogLevel  string
	flagLogFormat string
)

// RegisterLoggerFlags registers global logging flags
func RegisterLoggerFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (default $AGENTBOX_LOG_LEVEL or info)")
	cmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: text, json (default $AGENTBOX_LOG_FORMAT or text)")
}

// loadEnv reads the environment and applies global flag overrides
func loadEnv() (*config.Env, error) {
	cfg, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	if flagRoot != "" {
		cfg.MessageDir = flagRoot
	}
	if flagAgent != "" {
		cfg.AgentID = flagAgent
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	return cfg, nil
}

// CreateLogger creates the stderr logger for cfg
func CreateLogger(cmd *cobra.Command, cfg *config.Env) logger.Logger {
	return cfg.Logger(logger.WithOutput(cmd.ErrOrStderr()))
}
