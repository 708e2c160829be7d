// Package poller runs the mailbox reconciliation loop of one agent:
// announce to peers, collect pending messages, deliver them in arrival
// order, wait, repeat.
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/aki/agentbox/internal/core/logger"
	"github.com/aki/agentbox/internal/core/mailbox"
)

// DefaultInterval is the pause between two cycles
const DefaultInterval = 5 * time.Second

// Options configures a Poller
type Options struct {
	Layout  mailbox.Layout
	AgentID string
	Sink    mailbox.Sink
	// Interval between cycles, DefaultInterval when zero
	Interval time.Duration
	// Wake, when set, ends the wait early; the next cycle still does a full scan
	Wake <-chan struct{}
	// MarkOnDispatch records a message as handled once it reached the
	// processor even when archiving it failed, so it is not retried until
	// the process restarts. By default only archived messages are recorded.
	MarkOnDispatch bool
	// State carries the processed set across cycles; a fresh one when nil
	State  *State
	Logger logger.Logger
}

// Poller is the single-threaded loop serving one agent
type Poller struct {
	agentID        string
	interval       time.Duration
	wake           <-chan struct{}
	markOnDispatch bool

	state     *State
	announcer *mailbox.Announcer
	collector *mailbox.Collector
	processor *mailbox.Processor
	logger    logger.Logger
}

// CycleResult summarises one cycle
type CycleResult struct {
	Peers     []string
	Pending   int
	Delivered int
	Failed    int
}

// New creates a Poller
func New(opts Options) (*Poller, error) {
	if err := mailbox.ValidateAgentID(opts.AgentID); err != nil {
		return nil, err
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.State == nil {
		opts.State = NewState()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Poller{
		agentID:        opts.AgentID,
		interval:       opts.Interval,
		wake:           opts.Wake,
		markOnDispatch: opts.MarkOnDispatch,
		state:          opts.State,
		announcer:      mailbox.NewAnnouncer(opts.Layout, opts.AgentID, log),
		collector:      mailbox.NewCollector(opts.Layout.Home(opts.AgentID), log),
		processor:      mailbox.NewProcessor(opts.Sink, log),
		logger:         log,
	}, nil
}

// State returns the loop state
func (p *Poller) State() *State {
	return p.state
}

// RunCycle performs one full discovery, collection and delivery pass.
// It always runs to completion; cancellation is only observed by Run
// between cycles.
func (p *Poller) RunCycle(ctx context.Context) CycleResult {
	var result CycleResult

	result.Peers = p.announcer.Announce()

	messages := p.collector.Collect(p.state)
	result.Pending = len(messages)
	if len(messages) > 0 {
		mailbox.SortByArrival(messages)
		p.logger.Info("messages waiting", "count", len(messages))

		for _, msg := range messages {
			err := p.processor.Process(ctx, msg)
			if err != nil {
				result.Failed++
			} else {
				result.Delivered++
			}
			if err == nil || p.markOnDispatch {
				p.state.MarkProcessed(msg.Path)
			}
		}

		p.logger.Info("messages handled", "delivered", result.Delivered, "failed", result.Failed)
	}

	p.state.record(result.Delivered, result.Failed)
	return result
}

// Run loops until ctx is cancelled and returns nil on a clean stop
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("watching mailbox", "interval", p.interval)

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			break
		}
		p.RunCycle(ctx)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(p.interval)

		select {
		case <-ctx.Done():
		case <-timer.C:
		case <-p.wake:
			p.logger.Debug("woken by change notification")
		}
	}

	stats := p.state.Stats()
	p.logger.Info("stopped watching mailbox", "cycles", stats.Cycles, "delivered", stats.Delivered, "failed", stats.Failed)
	return nil
}
