package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aki/agentbox/internal/adapters/tmux"
	"github.com/aki/agentbox/internal/cli/ui"
	"github.com/aki/agentbox/internal/core/config"
	"github.com/aki/agentbox/internal/core/layout"
)

// newTmuxAdapter is replaced in tests
var newTmuxAdapter = tmux.NewAdapter

var (
	layoutSessionFile string
	layoutNoAttach    bool
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Open one tmux pane per agent",
	Long: `Build a tmux session from the layout_grid of the session file.

Adjacent cells naming the same agent become one wider pane; "blank"
cells stay empty. Each agent pane starts in <destination_dir>/<agent>
with AGENT_ID and AGENT_MESSAGE_DIR exported, runs pane_command if set,
and the session is attached once built. An existing session with the
same name is replaced.`,
	Args: cobra.NoArgs,
	RunE: runLayout,
}

func init() {
	layoutCmd.Flags().StringVarP(&layoutSessionFile, "config", "c", config.DefaultSessionFile, "Session file")
	layoutCmd.Flags().BoolVar(&layoutNoAttach, "no-attach", false, "Build the session without attaching to it")
}

func runLayout(cmd *cobra.Command, args []string) error {
	session, err := loadSession(layoutSessionFile)
	if err != nil {
		return err
	}

	cfg, err := loadEnv()
	if err != nil {
		return err
	}
	log := CreateLogger(cmd, cfg)

	// Panes inherit the message root from the session file, then from
	// our own configuration
	messageDir := session.MessageDir
	if messageDir == "" {
		messageDir = cfg.MessageDir
	}

	plan, err := layout.NewPlan(session.LayoutGrid, session.DestinationDir)
	if err != nil {
		return err
	}

	adapter, err := newTmuxAdapter()
	if err != nil {
		return err
	}
	if !adapter.IsAvailable() {
		return fmt.Errorf("tmux is not available")
	}

	result, err := layout.Apply(adapter, plan, layout.ApplyOptions{
		SessionName: session.SessionName,
		ActiveAgent: session.ActiveAgent,
		MessageDir:  messageDir,
		PaneCommand: session.PaneCommand,
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("failed to build session: %w", err)
	}

	ui.Success("Session %s ready with %d panes", result.SessionName, len(result.Panes))
	if layoutNoAttach {
		ui.OutputLine("   attach with: tmux attach -t %s", result.SessionName)
		return nil
	}
	return adapter.AttachSession(result.SessionName)
}
