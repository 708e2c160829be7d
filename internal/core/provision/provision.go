// Package provision prepares agent working directories by copying a
// named template directory for each agent.
package provision

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aki/agentbox/internal/core/logger"
	"github.com/aki/agentbox/internal/core/mailbox"
)

// ErrTemplateNotFound is returned when no directory under the source tree
// carries the template name
var ErrTemplateNotFound = errors.New("template not found")

// Action is what happened to one agent directory
type Action string

const (
	// ActionCreated means the template was copied into a new directory
	ActionCreated Action = "created"
	// ActionReplaced means an existing directory was removed and re-copied
	ActionReplaced Action = "replaced"
	// ActionSkipped means the directory existed and overwrite was off
	ActionSkipped Action = "skipped"
	// ActionFailed means the agent could not be provisioned
	ActionFailed Action = "failed"
)

// Options configures a provisioning run
type Options struct {
	SourceDir      string
	DestinationDir string
	// Agents maps agent id to template name
	Agents    map[string]string
	Overwrite bool
	Logger    logger.Logger
}

// Result describes the outcome for one agent
type Result struct {
	AgentID  string `json:"agent_id"`
	Template string `json:"template"`
	Source   string `json:"source,omitempty"`
	Target   string `json:"target"`
	Action   Action `json:"action"`
	Err      error  `json:"-"`
}

// Run provisions every agent in opts.Agents, in agent id order. A failure
// for one agent does not stop the others; all failures are joined into
// the returned error.
func Run(opts Options) ([]Result, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	if opts.SourceDir == "" || opts.DestinationDir == "" {
		return nil, fmt.Errorf("source and destination directories are required")
	}

	ids := make([]string, 0, len(opts.Agents))
	for id := range opts.Agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var (
		results []Result
		errs    []error
	)
	for _, id := range ids {
		res := provisionAgent(opts, id, opts.Agents[id])
		if res.Err != nil {
			log.Error("failed to provision agent", "agent", id, "template", res.Template, "err", res.Err)
			errs = append(errs, fmt.Errorf("%s: %w", id, res.Err))
		} else {
			log.Info("agent provisioned", "agent", id, "template", res.Template, "action", res.Action, "target", res.Target)
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func provisionAgent(opts Options, agentID, template string) Result {
	res := Result{
		AgentID:  agentID,
		Template: template,
		Target:   filepath.Join(opts.DestinationDir, agentID),
		Action:   ActionFailed,
	}

	// the target must stay a direct child of the destination
	if err := mailbox.ValidateAgentID(agentID); err != nil {
		res.Target = ""
		res.Err = err
		return res
	}

	source, err := FindTemplate(opts.SourceDir, template)
	if err != nil {
		res.Err = err
		return res
	}
	res.Source = source

	action := ActionCreated
	if _, err := os.Stat(res.Target); err == nil {
		if !opts.Overwrite {
			res.Action = ActionSkipped
			return res
		}
		if err := os.RemoveAll(res.Target); err != nil {
			res.Err = fmt.Errorf("failed to remove %s: %w", res.Target, err)
			return res
		}
		action = ActionReplaced
	} else if !os.IsNotExist(err) {
		res.Err = fmt.Errorf("failed to check %s: %w", res.Target, err)
		return res
	}

	if err := os.MkdirAll(res.Target, 0o755); err != nil {
		res.Err = fmt.Errorf("failed to create %s: %w", res.Target, err)
		return res
	}
	if err := os.CopyFS(res.Target, os.DirFS(source)); err != nil {
		res.Err = fmt.Errorf("failed to copy template: %w", err)
		return res
	}

	res.Action = action
	return res
}

// FindTemplate returns the directory under root named name with the
// fewest path components; ties go to the lexicographically smaller path
func FindTemplate(root, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty template name", ErrTemplateNotFound)
	}

	var best string
	bestDepth := -1
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// unreadable corners of the tree are not fatal
			return fs.SkipDir
		}
		if !d.IsDir() || d.Name() != name || path == root {
			return nil
		}

		depth := strings.Count(filepath.ToSlash(path), "/")
		if bestDepth < 0 || depth < bestDepth || (depth == bestDepth && path < best) {
			best, bestDepth = path, depth
		}
		// anything deeper inside a match is longer than the match itself
		return fs.SkipDir
	})
	if err != nil {
		return "", fmt.Errorf("failed to search templates: %w", err)
	}
	if best == "" {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return best, nil
}
