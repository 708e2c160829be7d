package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aki/agentbox/internal/core/mailbox"
)

// BlankCell marks a grid cell without an agent
const BlankCell = "blank"

// DefaultSessionFile is looked up in the working directory when no path is given
const DefaultSessionFile = "agentbox.yaml"

// Session describes a team of agents: how their working directories are
// provisioned and how their panes are laid out
type Session struct {
	SessionName    string          `yaml:"session_name"`
	ActiveAgent    string          `yaml:"active_agent,omitempty"`
	DestinationDir string          `yaml:"destination_dir"`
	MessageDir     string          `yaml:"message_dir,omitempty"`
	PaneCommand    string          `yaml:"pane_command,omitempty"`
	LayoutGrid     [][]string      `yaml:"layout_grid"`
	Provision      ProvisionConfig `yaml:"provision,omitempty"`
}

// ProvisionConfig maps agents to template directories
type ProvisionConfig struct {
	SourceDir string            `yaml:"source_dir"`
	Overwrite bool              `yaml:"overwrite"`
	Agents    map[string]string `yaml:"agents"`
}

// DefaultSession returns the values used for keys missing from the file
func DefaultSession() *Session {
	return &Session{
		SessionName:    "agentbox",
		DestinationDir: "/app/works",
	}
}

// LoadSession reads a session file; relative directories in it are
// resolved against the file's directory
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	session := DefaultSession()
	if err := yaml.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	base := filepath.Dir(path)
	session.DestinationDir = resolve(base, session.DestinationDir)
	session.MessageDir = resolve(base, session.MessageDir)
	session.Provision.SourceDir = resolve(base, session.Provision.SourceDir)

	return session, nil
}

// Save writes the session as YAML
func (s *Session) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Agents returns the distinct agent ids of the grid in reading order
func (s *Session) Agents() []string {
	seen := make(map[string]bool)
	var agents []string
	for _, row := range s.LayoutGrid {
		for _, cell := range row {
			if cell == BlankCell || cell == "" || seen[cell] {
				continue
			}
			seen[cell] = true
			agents = append(agents, cell)
		}
	}
	return agents
}

// Validate checks the parts of the session every command needs
func (s *Session) Validate() error {
	var errs []error
	if s.SessionName == "" {
		errs = append(errs, errors.New("session_name is required"))
	}
	if s.DestinationDir == "" {
		errs = append(errs, errors.New("destination_dir is required"))
	}
	for agent := range s.Provision.Agents {
		if agent == BlankCell {
			errs = append(errs, fmt.Errorf("provision: invalid agent id %q", agent))
			continue
		}
		if err := mailbox.ValidateAgentID(agent); err != nil {
			errs = append(errs, fmt.Errorf("provision: %w", err))
		}
	}
	return errors.Join(errs...)
}

func resolve(base, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}
