package commands

import (
	"github.com/spf13/cobra"

	"github.com/aki/agentbox/internal/cli/ui"
	"github.com/aki/agentbox/internal/core/logger"
	"github.com/aki/agentbox/internal/core/mailbox"
)

var (
	peersFormat   string
	peersAnnounce bool
)

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "List agents sharing the message root",
	Long: `List the other agents under the message root.

FOOTPRINT tells whether this agent already has a folder in the peer's
home; PENDING counts messages from this agent the peer has not
consumed yet.`,
	Args: cobra.NoArgs,
	RunE: runPeers,
}

func init() {
	peersCmd.Flags().StringVar(&peersFormat, "format", "pretty", "Output format: pretty, json")
	peersCmd.Flags().BoolVar(&peersAnnounce, "announce", false, "Leave missing footprints before listing")
}

func runPeers(cmd *cobra.Command, args []string) error {
	cfg, err := loadEnv()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	format, err := ui.ParseFormat(peersFormat)
	if err != nil {
		return err
	}

	log := CreateLogger(cmd, cfg)
	boxes := cfg.Layout()
	announcer := mailbox.NewAnnouncer(boxes, cfg.AgentID, log)
	if peersAnnounce {
		announcer.Announce()
	}

	peers, err := announcer.Peers()
	if err != nil {
		return err
	}

	rows := make([]ui.PeerRow, 0, len(peers))
	for _, peer := range peers {
		rows = append(rows, ui.PeerRow{
			ID:        peer,
			Footprint: announcer.HasFootprint(peer),
			Pending:   countPending(boxes, peer, cfg.AgentID, log),
		})
	}

	if format == ui.FormatJSON {
		formatter, err := ui.NewFormatter(format)
		if err != nil {
			return err
		}
		return formatter.Output(rows)
	}

	ui.PrintPeerList(rows)
	return nil
}

// countPending counts messages from self still waiting in peer's home
func countPending(boxes mailbox.Layout, peer, self string, log logger.Logger) int {
	n := 0
	for _, m := range mailbox.NewCollector(boxes.Home(peer), log).Collect(nil) {
		if m.Sender == self {
			n++
		}
	}
	return n
}
