package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aki/agentbox/internal/cli/ui"
	"github.com/aki/agentbox/internal/core/mailbox"
	"github.com/aki/agentbox/internal/core/notify"
	"github.com/aki/agentbox/internal/core/poller"
)

// Flags for watch command
var (
	watchInterval       time.Duration
	watchNotify         bool
	watchFormat         string
	watchMarkOnDispatch bool
	watchOnce           bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Receive messages until interrupted",
	Long: `Serve the mailbox of one agent.

Every cycle announces the agent to its peers, collects pending messages
from all sender folders, prints them oldest first and archives each one
into its done/ folder. Runs until SIGINT or SIGTERM; a cycle in progress
always finishes first.

Examples:
  AGENT_ID=alice AGENT_MESSAGE_DIR=/app/messages agentbox watch
  agentbox watch --agent alice --root /app/messages --watch
  agentbox watch --format json | jq .body`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Poll interval (default $AGENT_POLL_INTERVAL or 5s)")
	watchCmd.Flags().BoolVar(&watchNotify, "watch", false, "Wake up early on file system events (default $AGENT_WATCH)")
	watchCmd.Flags().StringVar(&watchFormat, "format", "pretty", "Delivery format: pretty, plain, json")
	watchCmd.Flags().BoolVar(&watchMarkOnDispatch, "mark-on-dispatch", false, "Do not retry messages whose archiving failed until restart")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Run a single cycle and exit")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadEnv()
	if err != nil {
		return err
	}
	if watchInterval != 0 {
		cfg.PollInterval = watchInterval
	}
	if watchNotify {
		cfg.Watch = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, err := ui.ParseFormat(watchFormat)
	if err != nil {
		return err
	}
	sink, err := ui.NewSink(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	log := CreateLogger(cmd, cfg)
	boxes := cfg.Layout()
	if err := boxes.Init(cfg.AgentID); err != nil {
		return fmt.Errorf("failed to initialize mailbox: %w", err)
	}
	home := boxes.Home(cfg.AgentID)

	instance, err := mailbox.AcquireInstance(home)
	if err != nil {
		return err
	}
	defer instance.Release()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wake <-chan struct{}
	if cfg.Watch && !watchOnce {
		watcher, err := notify.New(home, log)
		if err != nil {
			log.Warn("file system notifications unavailable, polling only", "err", err)
		} else {
			defer watcher.Close()
			wake = watcher.Wake()
		}
	}

	p, err := poller.New(poller.Options{
		Layout:         boxes,
		AgentID:        cfg.AgentID,
		Sink:           sink,
		Interval:       cfg.PollInterval,
		Wake:           wake,
		MarkOnDispatch: watchMarkOnDispatch,
		Logger:         log,
	})
	if err != nil {
		return err
	}

	if watchOnce {
		result := p.RunCycle(ctx)
		if result.Failed > 0 {
			return fmt.Errorf("%d of %d messages could not be processed", result.Failed, result.Pending)
		}
		return nil
	}

	log.Info("mailbox ready", "home", home, "notify", wake != nil)
	return p.Run(ctx)
}
