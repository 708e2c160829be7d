package commands

import (
	"github.com/spf13/cobra"

	"github.com/aki/agentbox/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Serve the agent's mailbox as Model Context Protocol tools over stdio:
mailbox_send, mailbox_pending, mailbox_peers and mailbox_read.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadEnv()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	boxes := cfg.Layout()
	if err := boxes.Init(cfg.AgentID); err != nil {
		return err
	}

	server, err := mcp.NewServer(mcp.Options{
		Layout:  boxes,
		AgentID: cfg.AgentID,
		Version: Version,
		Logger:  CreateLogger(cmd, cfg),
	})
	if err != nil {
		return err
	}
	return server.ServeStdio()
}
