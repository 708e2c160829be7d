package layout

import (
	"errors"
	"fmt"

	"github.com/aki/agentbox/internal/adapters/tmux"
	"github.com/aki/agentbox/internal/core/logger"
	"github.com/aki/agentbox/internal/core/mailbox"
)

// DefaultWindowName names the window holding the grid
const DefaultWindowName = "agents"

// Environment variables exported into agent panes
const (
	EnvAgentID    = "AGENT_ID"
	EnvMessageDir = "AGENT_MESSAGE_DIR"
)

// ApplyOptions configures how a plan is materialised
type ApplyOptions struct {
	SessionName string
	WindowName  string
	ActiveAgent string
	// MessageDir is exported as AGENT_MESSAGE_DIR and each agent's
	// mailbox home is created under it. Empty skips both.
	MessageDir string
	// PaneCommand is typed into every agent pane once it exists
	PaneCommand string
	Logger      logger.Logger
}

// PlacedPane is a planned pane with its tmux id
type PlacedPane struct {
	Pane
	ID string
}

// Result describes a created session
type Result struct {
	SessionName string
	Panes       []PlacedPane
	ActivePane  string
}

// PaneOf returns the first pane of agent
func (r *Result) PaneOf(agent string) (PlacedPane, bool) {
	for _, p := range r.Panes {
		if p.Agent == agent {
			return p, true
		}
	}
	return PlacedPane{}, false
}

// Apply builds the plan as a fresh tmux session. An existing session with
// the same name is killed first. Rows are split off top to bottom, then
// each row is split left to right, sized so every grid cell gets the
// same share of the window.
func Apply(adapter tmux.Adapter, plan *Plan, opts ApplyOptions) (*Result, error) {
	if opts.SessionName == "" {
		return nil, errors.New("session name is required")
	}
	if plan == nil || len(plan.Rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidGrid)
	}
	if opts.WindowName == "" {
		opts.WindowName = DefaultWindowName
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("session", opts.SessionName)

	if err := prepareDirs(plan, opts.MessageDir); err != nil {
		return nil, err
	}

	if adapter.SessionExists(opts.SessionName) {
		log.Info("replacing existing session")
		if err := adapter.KillSession(opts.SessionName); err != nil {
			return nil, err
		}
	}

	first := plan.Rows[0][0]
	firstID, err := adapter.CreateSession(tmux.CreateSessionOptions{
		SessionName: opts.SessionName,
		WorkDir:     first.StartDir,
		WindowName:  opts.WindowName,
		Environment: paneEnv(first, opts.MessageDir),
	})
	if err != nil {
		return nil, err
	}

	// anchors[r] is the leftmost pane of row r
	anchors := []string{firstID}
	heights := make([]int, len(plan.Rows))
	for i := range heights {
		heights[i] = 1
	}
	for r := 1; r < len(plan.Rows); r++ {
		pane := plan.Rows[r][0]
		id, err := adapter.SplitPane(tmux.SplitOptions{
			Target:      anchors[r-1],
			Percent:     splitPercent(heights, r),
			WorkDir:     pane.StartDir,
			Environment: paneEnv(pane, opts.MessageDir),
		})
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", r, err)
		}
		anchors = append(anchors, id)
	}

	result := &Result{SessionName: opts.SessionName}
	for r, row := range plan.Rows {
		spans := make([]int, len(row))
		for i, pane := range row {
			spans[i] = pane.Span
		}

		prev := anchors[r]
		result.Panes = append(result.Panes, PlacedPane{Pane: row[0], ID: prev})
		for i := 1; i < len(row); i++ {
			id, err := adapter.SplitPane(tmux.SplitOptions{
				Target:      prev,
				Horizontal:  true,
				Percent:     splitPercent(spans, i),
				WorkDir:     row[i].StartDir,
				Environment: paneEnv(row[i], opts.MessageDir),
			})
			if err != nil {
				return nil, fmt.Errorf("row %d pane %d: %w", r, i, err)
			}
			result.Panes = append(result.Panes, PlacedPane{Pane: row[i], ID: id})
			prev = id
		}
	}

	if opts.PaneCommand != "" {
		for _, p := range result.Panes {
			if p.IsBlank() {
				continue
			}
			if err := adapter.SendKeys(p.ID, opts.PaneCommand); err != nil {
				log.Warn("failed to start pane command", "agent", p.Agent, "pane", p.ID, "err", err)
			}
		}
	}

	if opts.ActiveAgent != "" {
		p, ok := result.PaneOf(opts.ActiveAgent)
		if !ok {
			log.Warn("active agent not in layout", "agent", opts.ActiveAgent)
		} else if err := adapter.SelectPane(p.ID); err != nil {
			log.Warn("failed to select active pane", "pane", p.ID, "err", err)
		} else {
			result.ActivePane = p.ID
		}
	}

	log.Info("session created", "panes", len(result.Panes))
	return result, nil
}

func paneEnv(p Pane, messageDir string) map[string]string {
	if p.IsBlank() {
		return nil
	}
	env := map[string]string{EnvAgentID: p.Agent}
	if messageDir != "" {
		env[EnvMessageDir] = messageDir
	}
	return env
}

// prepareDirs creates pane start directories and, when a message root is
// given, the mailbox home of every agent so peers find each other on
// their first cycle
func prepareDirs(plan *Plan, messageDir string) error {
	for _, p := range plan.Panes() {
		if err := mailbox.EnsureDir(p.StartDir); err != nil {
			return fmt.Errorf("failed to create start directory: %w", err)
		}
	}
	if messageDir == "" {
		return nil
	}

	boxes := mailbox.NewLayout(messageDir)
	for _, agent := range plan.Agents() {
		if err := boxes.Init(agent); err != nil {
			return err
		}
	}
	return nil
}
