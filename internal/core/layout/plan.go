// Package layout turns a grid of agent ids into a tmux window of panes,
// one pane per agent, each started in the agent's working directory with
// its mailbox identity exported.
package layout

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/aki/agentbox/internal/core/mailbox"
)

// Blank marks a grid cell without an agent
const Blank = "blank"

// ErrInvalidGrid is returned for empty or ragged grids
var ErrInvalidGrid = errors.New("invalid layout grid")

// Pane is one pane of a planned layout
type Pane struct {
	Agent    string // Empty for blank cells
	Row      int
	Col      int // Grid column of the leftmost cell
	Span     int // Number of grid cells the pane covers
	StartDir string
}

// IsBlank reports whether the pane has no agent
func (p Pane) IsBlank() bool {
	return p.Agent == ""
}

// Plan is a grid reduced to rows of panes
type Plan struct {
	Rows  [][]Pane
	Width int
}

// NewPlan merges horizontally adjacent cells holding the same agent into
// a single pane. Blank cells never merge. Agents start in
// <baseDir>/<agent>, blank panes in baseDir.
func NewPlan(grid [][]string, baseDir string) (*Plan, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, fmt.Errorf("%w: no cells", ErrInvalidGrid)
	}

	width := len(grid[0])
	plan := &Plan{Width: width}

	for r, row := range grid {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidGrid, r, len(row), width)
		}

		var panes []Pane
		for c, cell := range row {
			agent := cell
			if agent == Blank {
				agent = ""
			}
			if agent != "" {
				if err := mailbox.ValidateAgentID(agent); err != nil {
					return nil, fmt.Errorf("%w: row %d col %d: %v", ErrInvalidGrid, r, c, err)
				}
			}

			if n := len(panes); n > 0 && agent != "" && panes[n-1].Agent == agent {
				panes[n-1].Span++
				continue
			}

			startDir := baseDir
			if agent != "" {
				startDir = filepath.Join(baseDir, agent)
			}
			panes = append(panes, Pane{Agent: agent, Row: r, Col: c, Span: 1, StartDir: startDir})
		}
		plan.Rows = append(plan.Rows, panes)
	}

	return plan, nil
}

// Panes returns all panes in reading order
func (p *Plan) Panes() []Pane {
	var panes []Pane
	for _, row := range p.Rows {
		panes = append(panes, row...)
	}
	return panes
}

// Agents returns the distinct agents of the plan in reading order
func (p *Plan) Agents() []string {
	seen := make(map[string]bool)
	var agents []string
	for _, pane := range p.Panes() {
		if pane.IsBlank() || seen[pane.Agent] {
			continue
		}
		seen[pane.Agent] = true
		agents = append(agents, pane.Agent)
	}
	return agents
}

// splitPercent is the share a new pane covering weights[i:] takes when it
// is split off a pane covering weights[i-1:]
func splitPercent(weights []int, i int) int {
	rest, total := 0, 0
	for j := i - 1; j < len(weights); j++ {
		total += weights[j]
		if j >= i {
			rest += weights[j]
		}
	}
	pct := (rest*100 + total/2) / total
	if pct < 1 {
		pct = 1
	}
	if pct > 99 {
		pct = 99
	}
	return pct
}
