package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/agentbox/internal/adapters/tmux"
	"github.com/aki/agentbox/internal/cli/ui"
	"github.com/aki/agentbox/internal/core/mailbox"
)

type cmdResult struct {
	stdout string
	stderr string
	err    error
}

// execute runs the root command with fresh flag values
func execute(t *testing.T, ctx context.Context, stdin io.Reader, args ...string) cmdResult {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		ui.SetOutput(os.Stdout, os.Stderr)
	})

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	return cmdResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

func run(t *testing.T, args ...string) cmdResult {
	t.Helper()
	return execute(t, context.Background(), nil, args...)
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func clearEnv(t *testing.T) {
	t.Setenv("AGENT_ID", "")
	t.Setenv("AGENT_MESSAGE_DIR", "")
}

func TestSendThenWatchOnce(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()

	// the first cycle creates alice's home
	res := run(t, "watch", "--once", "--agent", "alice", "--root", root)
	require.NoError(t, res.err)
	assert.DirExists(t, filepath.Join(root, "alice", "_public", "done"))

	res = run(t, "send", "alice", "hello", "there", "--agent", "bob", "--root", root)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Message sent to alice")

	res = run(t, "watch", "--once", "--agent", "alice", "--root", root, "--format", "json")
	require.NoError(t, res.err)

	var d mailbox.Delivery
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(res.stdout)), &d))
	assert.Equal(t, "bob", d.Sender)
	assert.Equal(t, "hello there", d.Body)
	assert.Contains(t, d.Name, "hello-there")

	archived, err := os.ReadDir(filepath.Join(root, "alice", "bob", "done"))
	require.NoError(t, err)
	assert.Len(t, archived, 1)
}

func TestSend_FromEnvironmentAndStdin(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, mailbox.NewLayout(root).Init("alice"))
	t.Setenv("AGENT_ID", "bob")
	t.Setenv("AGENT_MESSAGE_DIR", root)

	res := execute(t, context.Background(), strings.NewReader("piped body"), "send", "alice", "--name", "report")
	require.NoError(t, res.err)

	entries, err := os.ReadDir(filepath.Join(root, "alice", "bob"))
	require.NoError(t, err)

	var found string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".md") {
			found = e.Name()
		}
	}
	require.NotEmpty(t, found)
	assert.Contains(t, found, "report")

	content, err := os.ReadFile(filepath.Join(root, "alice", "bob", found))
	require.NoError(t, err)
	assert.Equal(t, "piped body", string(content))
}

func TestSend_Public(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	require.NoError(t, mailbox.NewLayout(root).Init("alice"))

	res := run(t, "send", "alice", "broadcast", "--root", root)
	require.NoError(t, res.err)

	entries, err := os.ReadDir(filepath.Join(root, "alice", "_public"))
	require.NoError(t, err)
	assert.Len(t, entries, 2) // done/ and the message
}

func TestSend_Errors(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()

	res := run(t, "send", "alice", "hi")
	assert.Error(t, res.err)

	res = run(t, "send", "nobody", "hi", "--agent", "bob", "--root", root)
	assert.ErrorIs(t, res.err, mailbox.ErrUnknownAgent)
}

func TestWatch_RequiresAgentAndRoot(t *testing.T) {
	clearEnv(t)

	res := run(t, "watch", "--once")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "AGENT_ID")
	assert.Contains(t, res.err.Error(), "AGENT_MESSAGE_DIR")

	res = run(t, "watch", "--once", "--agent", "alice", "--root", t.TempDir(), "--format", "xml")
	assert.Error(t, res.err)
}

func TestWatch_SingleInstance(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	l := mailbox.NewLayout(root)
	require.NoError(t, l.Init("alice"))

	instance, err := mailbox.AcquireInstance(l.Home("alice"))
	require.NoError(t, err)
	defer instance.Release()

	res := run(t, "watch", "--once", "--agent", "alice", "--root", root)
	assert.ErrorIs(t, res.err, mailbox.ErrInstanceRunning)
}

func TestWatch_StopsOnCancel(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	l := mailbox.NewLayout(root)
	require.NoError(t, l.Init("alice"))
	require.NoError(t, l.Init("bob"))
	_, err := mailbox.NewSender(l, "bob").Send("alice", "note", "ping")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan cmdResult, 1)
	go func() {
		done <- execute(t, ctx, nil, "watch", "--agent", "alice", "--root", root, "--interval", "20ms", "--watch")
	}()

	// delivered and archived, and bob got alice's footprint
	require.Eventually(t, func() bool {
		entries, err := os.ReadDir(filepath.Join(root, "alice", "bob", "done"))
		if err != nil || len(entries) != 1 {
			return false
		}
		_, err = os.Stat(filepath.Join(root, "bob", "alice", "done"))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case res := <-done:
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, "ping")
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestPendingAndPeers(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	l := mailbox.NewLayout(root)
	for _, id := range []string{"alice", "bob", "carol"} {
		require.NoError(t, l.Init(id))
	}
	_, err := mailbox.NewSender(l, "bob").Send("alice", "first", "1")
	require.NoError(t, err)
	_, err = mailbox.NewSender(l, "alice").Send("bob", "reply", "2")
	require.NoError(t, err)

	res := run(t, "pending", "--agent", "alice", "--root", root, "--format", "json")
	require.NoError(t, res.err)
	var pending []mailbox.Message
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, "bob", pending[0].Sender)

	res = run(t, "peers", "--agent", "alice", "--root", root, "--format", "json")
	require.NoError(t, res.err)
	var peers []ui.PeerRow
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &peers))
	assert.Equal(t, []ui.PeerRow{
		{ID: "bob", Footprint: true, Pending: 1},
		{ID: "carol", Footprint: false, Pending: 0},
	}, peers)

	res = run(t, "peers", "--agent", "alice", "--root", root, "--announce")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Peers (2)")
	assert.DirExists(t, filepath.Join(root, "carol", "alice", "done"))

	res = run(t, "pending", "--agent", "carol", "--root", root)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No pending messages")
}

func writeSessionFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "agentbox.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProvision(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "templates", "roles", "planner"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "templates", "roles", "planner", "CLAUDE.md"), []byte("plan"), 0o644))

	path := writeSessionFile(t, dir, `
session_name: team
destination_dir: works
message_dir: messages
layout_grid:
  - [alice, bob]
provision:
  source_dir: templates
  agents:
    alice: planner
`)

	res := run(t, "provision", "-c", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "created")
	assert.FileExists(t, filepath.Join(dir, "works", "alice", "CLAUDE.md"))

	guide, err := os.ReadFile(filepath.Join(dir, "works", "alice", "AGENTBOX.md"))
	require.NoError(t, err)
	assert.Contains(t, string(guide), "You are agent `alice`")
	assert.Contains(t, string(guide), filepath.Join(dir, "messages"))
	assert.Contains(t, string(guide), "- `bob`")

	res = run(t, "provision", "-c", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "skipped")
}

func TestProvision_MissingTemplate(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "templates"), 0o755))
	path := writeSessionFile(t, dir, `
session_name: team
destination_dir: works
provision:
  source_dir: templates
  agents:
    alice: planner
`)

	res := run(t, "provision", "-c", path)
	assert.Error(t, res.err)
	assert.Contains(t, res.stdout, "failed")
}

func TestLayout(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeSessionFile(t, dir, `
session_name: team
active_agent: bob
destination_dir: works
message_dir: messages
pane_command: agentbox watch
layout_grid:
  - [alice, alice, bob]
  - [blank, carol, carol]
`)

	mock := tmux.NewMockAdapter()
	old := newTmuxAdapter
	newTmuxAdapter = func() (tmux.Adapter, error) { return mock, nil }
	defer func() { newTmuxAdapter = old }()

	res := run(t, "layout", "-c", path, "--no-attach")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Session team ready with 4 panes")
	assert.Empty(t, mock.Attached())

	panes := mock.Panes()
	require.Len(t, panes, 4)
	assert.Equal(t, "alice", panes[0].Environment["AGENT_ID"])
	assert.Equal(t, filepath.Join(dir, "messages"), panes[0].Environment["AGENT_MESSAGE_DIR"])
	assert.Equal(t, filepath.Join(dir, "works", "alice"), panes[0].WorkDir)
	assert.Equal(t, []string{"agentbox watch"}, panes[0].Keys)
	assert.DirExists(t, filepath.Join(dir, "messages", "carol", "_public", "done"))

	res = run(t, "layout", "-c", path)
	require.NoError(t, res.err)
	assert.Equal(t, []string{"team"}, mock.Attached())
	assert.Len(t, mock.Panes(), 4)
}

func TestLayout_InvalidGrid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeSessionFile(t, dir, `
session_name: team
destination_dir: works
layout_grid:
  - [alice, bob]
  - [carol]
`)

	newCalled := false
	old := newTmuxAdapter
	newTmuxAdapter = func() (tmux.Adapter, error) {
		newCalled = true
		return tmux.NewMockAdapter(), nil
	}
	defer func() { newTmuxAdapter = old }()

	res := run(t, "layout", "-c", path)
	assert.Error(t, res.err)
	assert.False(t, newCalled)
}

func TestVersion(t *testing.T) {
	res := run(t, "version", "--format", "json")
	require.NoError(t, res.err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.Equal(t, Version, info["version"])

	res = run(t, "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "agentbox version")
}
