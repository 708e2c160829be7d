package commands

import (
	"github.com/spf13/cobra"

	"github.com/aki/agentbox/internal/cli/ui"
	"github.com/aki/agentbox/internal/core/mailbox"
)

var pendingFormat string

var pendingCmd = &cobra.Command{
	Use:     "pending",
	Aliases: []string{"ls"},
	Short:   "List messages waiting for this agent",
	Args:    cobra.NoArgs,
	RunE:    runPending,
}

func init() {
	pendingCmd.Flags().StringVar(&pendingFormat, "format", "pretty", "Output format: pretty, json")
}

func runPending(cmd *cobra.Command, args []string) error {
	cfg, err := loadEnv()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	format, err := ui.ParseFormat(pendingFormat)
	if err != nil {
		return err
	}

	log := CreateLogger(cmd, cfg)
	messages := mailbox.NewCollector(cfg.Layout().Home(cfg.AgentID), log).Collect(nil)
	mailbox.SortByArrival(messages)

	if format == ui.FormatJSON {
		formatter, err := ui.NewFormatter(format)
		if err != nil {
			return err
		}
		if messages == nil {
			messages = []mailbox.Message{}
		}
		return formatter.Output(messages)
	}

	ui.PrintMessageList(messages)
	return nil
}
