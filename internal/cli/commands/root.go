// Package commands implements the agentbox command line.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aki/agentbox/internal/cli/ui"
)

var rootCmd = &cobra.Command{
	Use:   "agentbox",
	Short: "File-system mailbox for cooperating AI agents",
	Long: `agentbox lets independent agent processes exchange Markdown messages
through a shared directory tree, with no broker and no network.

Every agent owns <root>/<agent>/. Peers drop messages into
<root>/<agent>/<sender>/ and the agent archives each one into done/
after handing it to its consumer.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// Global flags shared by every command
var (
	flagRoot  string
	flagAgent string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "Message root directory (default $AGENT_MESSAGE_DIR)")
	rootCmd.PersistentFlags().StringVar(&flagAgent, "agent", "", "Agent id (default $AGENT_ID)")
	RegisterLoggerFlags(rootCmd)

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(peersCmd)
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx as the parent of every
// command context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
