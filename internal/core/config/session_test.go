package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/agentbox/internal/core/mailbox"
)

const sampleSession = `
session_name: team
active_agent: bob
destination_dir: works
message_dir: /srv/messages
pane_command: agentbox watch
layout_grid:
  - [alice, alice, bob]
  - [carol, blank, bob]
provision:
  source_dir: templates
  overwrite: true
  agents:
    alice: planner
    bob: coder
`

func TestLoadSession(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultSessionFile)
	require.NoError(t, os.WriteFile(path, []byte(sampleSession), 0o644))

	s, err := LoadSession(path)
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	assert.Equal(t, "team", s.SessionName)
	assert.Equal(t, "bob", s.ActiveAgent)
	assert.Equal(t, filepath.Join(dir, "works"), s.DestinationDir)
	assert.Equal(t, "/srv/messages", s.MessageDir)
	assert.Equal(t, "agentbox watch", s.PaneCommand)
	assert.Equal(t, [][]string{{"alice", "alice", "bob"}, {"carol", "blank", "bob"}}, s.LayoutGrid)
	assert.Equal(t, filepath.Join(dir, "templates"), s.Provision.SourceDir)
	assert.True(t, s.Provision.Overwrite)
	assert.Equal(t, map[string]string{"alice": "planner", "bob": "coder"}, s.Provision.Agents)

	assert.Equal(t, []string{"alice", "bob", "carol"}, s.Agents())
}

func TestLoadSession_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layout_grid: [[a]]\n"), 0o644))

	s, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, "agentbox", s.SessionName)
	assert.Equal(t, "/app/works", s.DestinationDir)
}

func TestLoadSession_Errors(t *testing.T) {
	_, err := LoadSession(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layout_grid: {"), 0o644))
	_, err = LoadSession(path)
	assert.Error(t, err)
}

func TestSession_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "s.yaml")
	s := DefaultSession()
	s.DestinationDir = "/abs/works"
	s.LayoutGrid = [][]string{{"alice", BlankCell}}

	require.NoError(t, s.Save(path))
	loaded, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, s.LayoutGrid, loaded.LayoutGrid)
	assert.Equal(t, "/abs/works", loaded.DestinationDir)
}

func TestSession_Validate(t *testing.T) {
	s := &Session{Provision: ProvisionConfig{Agents: map[string]string{BlankCell: "x"}}}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_name is required")
	assert.Contains(t, err.Error(), "destination_dir is required")
	assert.Contains(t, err.Error(), `invalid agent id "blank"`)
}

func TestSession_ValidateRejectsPathLikeAgents(t *testing.T) {
	for _, id := range []string{"..", ".", "a/b", "done", "_public", ""} {
		s := DefaultSession()
		s.Provision.Agents = map[string]string{id: "planner"}

		err := s.Validate()
		assert.ErrorIs(t, err, mailbox.ErrInvalidAgentID, id)
	}
}
