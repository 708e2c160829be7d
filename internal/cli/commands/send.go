package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aki/agentbox/internal/cli/ui"
	"github.com/aki/agentbox/internal/core/config"
	"github.com/aki/agentbox/internal/core/mailbox"
)

// Flags for send command
var (
	sendFile   string
	sendName   string
	sendPublic bool
)

var sendCmd = &cobra.Command{
	Use:   "send <agent> [message]",
	Short: "Send a message to an agent",
	Long: `Send a Markdown message to another agent's mailbox.

The message can be provided as:
- Command line arguments
- From a file with -f/--file
- From stdin (when no message argument is provided)

The message lands in <root>/<agent>/<self>/, or in the public inbox
when no agent id is configured or --public is given.

Examples:
  agentbox send bob "Please review the parser changes"
  agentbox send bob --file findings.md
  git diff | agentbox send bob --name diff`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&sendFile, "file", "f", "", "Read message from file")
	sendCmd.Flags().StringVarP(&sendName, "name", "n", "", "Short name used in the message file name")
	sendCmd.Flags().BoolVar(&sendPublic, "public", false, "Deliver to the public inbox instead of the sender folder")
}

func runSend(cmd *cobra.Command, args []string) error {
	to := args[0]

	cfg, err := loadEnv()
	if err != nil {
		return err
	}
	if cfg.MessageDir == "" {
		return config.ErrMissingMessageDir
	}

	from := cfg.AgentID
	if sendPublic {
		from = ""
	}
	if from != "" {
		if err := mailbox.ValidateAgentID(from); err != nil {
			return fmt.Errorf("AGENT_ID: %w", err)
		}
	}

	content, name, err := readMessage(cmd, args[1:])
	if err != nil {
		return err
	}
	if sendName != "" {
		name = sendName
	}

	path, err := mailbox.NewSender(cfg.Layout(), from).Send(to, name, content)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	CreateLogger(cmd, cfg).Debug("message sent", "to", to, "path", path)
	ui.Success("Message sent to %s", to)
	ui.OutputLine("   %s", ui.DimStyle.Render(path))
	return nil
}

// readMessage returns the message body and a default name for it
func readMessage(cmd *cobra.Command, words []string) (string, string, error) {
	if sendFile != "" {
		data, err := os.ReadFile(sendFile)
		if err != nil {
			return "", "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), strings.TrimSuffix(filepath.Base(sendFile), filepath.Ext(sendFile)), nil
	}

	if len(words) > 0 {
		content := strings.Join(words, " ")
		// Name from the first few words
		fields := strings.Fields(content)
		if len(fields) > 3 {
			fields = fields[:3]
		}
		return content, strings.Join(fields, "-"), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return "", "", fmt.Errorf("failed to stat stdin: %w", err)
		}
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			return "", "", fmt.Errorf("no message provided: use arguments, --file, or pipe input")
		}
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	return string(data), "stdin-message", nil
}
