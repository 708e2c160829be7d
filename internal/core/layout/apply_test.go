package layout

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/agentbox/internal/adapters/tmux"
)

func TestApply_BuildsGrid(t *testing.T) {
	base := t.TempDir()
	msgRoot := filepath.Join(t.TempDir(), "messages")

	plan, err := NewPlan([][]string{
		{"alice", "alice", "bob"},
		{"carol", "blank", "dave"},
	}, base)
	require.NoError(t, err)

	mock := tmux.NewMockAdapter()
	result, err := Apply(mock, plan, ApplyOptions{
		SessionName: "team",
		ActiveAgent: "bob",
		MessageDir:  msgRoot,
		PaneCommand: "claude",
	})
	require.NoError(t, err)
	require.Len(t, result.Panes, 5)

	panes := mock.Panes()
	require.Len(t, panes, 5)

	// first pane, then the second row's anchor below it
	assert.Equal(t, "", panes[0].Parent)
	assert.Equal(t, filepath.Join(base, "alice"), panes[0].WorkDir)
	assert.Equal(t, panes[0].ID, panes[1].Parent)
	assert.False(t, panes[1].Horizontal)
	assert.Equal(t, 50, panes[1].Percent)

	// bob covers one of three cells of the first row
	assert.Equal(t, panes[0].ID, panes[2].Parent)
	assert.True(t, panes[2].Horizontal)
	assert.Equal(t, 33, panes[2].Percent)
	assert.Equal(t, "bob", panes[2].Environment[EnvAgentID])
	assert.Equal(t, msgRoot, panes[2].Environment[EnvMessageDir])

	// blank pane: no identity, no command
	blank := panes[3]
	assert.Equal(t, base, blank.WorkDir)
	assert.Empty(t, blank.Environment)
	assert.Empty(t, blank.Keys)
	assert.Equal(t, 67, blank.Percent)

	for _, i := range []int{0, 1, 2, 4} {
		assert.Equal(t, []string{"claude"}, panes[i].Keys, "pane %d", i)
	}

	bob, ok := result.PaneOf("bob")
	require.True(t, ok)
	assert.Equal(t, bob.ID, mock.SelectedPane())
	assert.Equal(t, bob.ID, result.ActivePane)

	for _, agent := range []string{"alice", "bob", "carol", "dave"} {
		assert.DirExists(t, filepath.Join(base, agent))
		assert.DirExists(t, filepath.Join(msgRoot, agent, "_public", "done"))
	}

	// attaching is left to the caller
	assert.Empty(t, mock.Attached())
}

func TestApply_ReplacesExistingSession(t *testing.T) {
	mock := tmux.NewMockAdapter()
	_, err := mock.CreateSession(tmux.CreateSessionOptions{SessionName: "team"})
	require.NoError(t, err)

	plan, err := NewPlan([][]string{{"alice"}}, t.TempDir())
	require.NoError(t, err)

	_, err = Apply(mock, plan, ApplyOptions{SessionName: "team"})
	require.NoError(t, err)

	panes := mock.Panes()
	require.Len(t, panes, 1)
	assert.Equal(t, "alice", panes[0].Environment[EnvAgentID])
	assert.NotContains(t, panes[0].Environment, EnvMessageDir)
}

func TestApply_UnknownActiveAgent(t *testing.T) {
	mock := tmux.NewMockAdapter()
	plan, err := NewPlan([][]string{{"alice", "bob"}}, t.TempDir())
	require.NoError(t, err)

	result, err := Apply(mock, plan, ApplyOptions{SessionName: "team", ActiveAgent: "zed"})
	require.NoError(t, err)
	assert.Empty(t, result.ActivePane)
	assert.Empty(t, mock.SelectedPane())
}

func TestApply_Errors(t *testing.T) {
	plan, err := NewPlan([][]string{{"alice", "bob"}}, t.TempDir())
	require.NoError(t, err)

	_, err = Apply(tmux.NewMockAdapter(), plan, ApplyOptions{})
	assert.Error(t, err)

	_, err = Apply(tmux.NewMockAdapter(), &Plan{}, ApplyOptions{SessionName: "team"})
	assert.ErrorIs(t, err, ErrInvalidGrid)

	boom := errors.New("no space for new pane")
	mock := tmux.NewMockAdapter()
	mock.SetSplitPaneError(boom)
	_, err = Apply(mock, plan, ApplyOptions{SessionName: "team"})
	assert.ErrorIs(t, err, boom)

	// a failing pane command does not abort the layout
	mock = tmux.NewMockAdapter()
	mock.SetSendKeysError(boom)
	result, err := Apply(mock, plan, ApplyOptions{SessionName: "team", PaneCommand: "claude"})
	require.NoError(t, err)
	assert.Len(t, result.Panes, 2)
}
