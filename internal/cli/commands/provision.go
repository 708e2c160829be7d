package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/aki/agentbox/internal/cli/ui"
	"github.com/aki/agentbox/internal/core/config"
	"github.com/aki/agentbox/internal/core/logger"
	"github.com/aki/agentbox/internal/core/provision"
	"github.com/aki/agentbox/internal/templates"
)

var (
	provisionSessionFile string
	provisionOverwrite   bool
	provisionNoGuide     bool
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Copy agent templates into working directories",
	Long: `Create <destination_dir>/<agent> for every agent in the session file's
provision section by copying the closest directory named like its
template from source_dir. Existing directories are kept unless
overwrite is set.

Freshly copied directories also get an AGENTBOX.md describing the
agent's mailbox, when a message root is known.`,
	Args: cobra.NoArgs,
	RunE: runProvision,
}

func init() {
	provisionCmd.Flags().StringVarP(&provisionSessionFile, "config", "c", config.DefaultSessionFile, "Session file")
	provisionCmd.Flags().BoolVar(&provisionOverwrite, "overwrite", false, "Replace existing agent directories")
	provisionCmd.Flags().BoolVar(&provisionNoGuide, "no-guide", false, "Do not write "+templates.GuideFile)
}

func runProvision(cmd *cobra.Command, args []string) error {
	session, err := loadSession(provisionSessionFile)
	if err != nil {
		return err
	}
	if len(session.Provision.Agents) == 0 {
		ui.Info("No agents to provision in %s", provisionSessionFile)
		return nil
	}

	cfg, err := loadEnv()
	if err != nil {
		return err
	}
	log := CreateLogger(cmd, cfg)

	results, runErr := provision.Run(provision.Options{
		SourceDir:      session.Provision.SourceDir,
		DestinationDir: session.DestinationDir,
		Agents:         session.Provision.Agents,
		Overwrite:      session.Provision.Overwrite || provisionOverwrite,
		Logger:         log,
	})

	tbl := ui.NewTable("AGENT", "TEMPLATE", "ACTION", "TARGET")
	for _, res := range results {
		action := string(res.Action)
		switch res.Action {
		case provision.ActionFailed:
			action = ui.ErrorStyle.Render(action)
		case provision.ActionSkipped:
			action = ui.DimStyle.Render(action)
		default:
			action = ui.SuccessStyle.Render(action)
		}
		tbl.AddRow(res.AgentID, res.Template, action, res.Target)
	}

	messageDir := session.MessageDir
	if messageDir == "" {
		messageDir = cfg.MessageDir
	}
	if !provisionNoGuide && messageDir != "" {
		writeGuides(session, results, messageDir, log)
	}

	ui.PrintSectionHeader(ui.InfoIcon, "Provisioned agents", len(results))
	tbl.Print()
	ui.OutputLine("")

	if runErr != nil {
		return fmt.Errorf("provisioning incomplete: %w", runErr)
	}
	return nil
}

// writeGuides drops the mailbox guide into every directory this run created
func writeGuides(session *config.Session, results []provision.Result, messageDir string, log logger.Logger) {
	agents := session.Agents()
	for id := range session.Provision.Agents {
		if !slices.Contains(agents, id) {
			agents = append(agents, id)
		}
	}
	slices.Sort(agents)

	for _, res := range results {
		if res.Action != provision.ActionCreated && res.Action != provision.ActionReplaced {
			continue
		}
		peers := slices.DeleteFunc(slices.Clone(agents), func(id string) bool { return id == res.AgentID })
		if _, err := templates.WriteMailboxGuide(res.Target, templates.TemplateData{
			AgentID:    res.AgentID,
			MessageDir: messageDir,
			Peers:      peers,
		}); err != nil {
			log.Warn("failed to write mailbox guide", "agent", res.AgentID, "err", err)
		}
	}
}

func loadSession(path string) (*config.Session, error) {
	session, err := config.LoadSession(path)
	if err != nil {
		return nil, err
	}
	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session file %s: %w", path, err)
	}
	return session, nil
}
