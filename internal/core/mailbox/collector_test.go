package mailbox

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Collect(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root)
	require.NoError(t, l.Init("alice"))
	home := l.Home("alice")
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	bob := writeMessage(t, l.SenderDir("alice", "bob"), "note.md", "ping", base)
	pub := writeMessage(t, l.PublicInbox("alice"), "hello.md", "hi", base.Add(time.Second))
	writeMessage(t, l.SenderDir("alice", "bob"), "draft.txt", "not a message", base)
	writeMessage(t, DonePath(l.SenderDir("alice", "bob")), "old.md", "archived", base)
	writeMessage(t, l.SenderDir("alice", "bob"), ".partial.md.tmp", "hidden", base)

	messages := NewCollector(home, nil).Collect(nil)
	SortByArrival(messages)

	require.Len(t, messages, 2)
	assert.Equal(t, bob, messages[0].Path)
	assert.Equal(t, "bob", messages[0].Sender)
	assert.Equal(t, "note.md", messages[0].Name)
	assert.True(t, messages[0].ArrivedAt.Equal(base), "arrival time should be the file mtime")
	assert.Equal(t, pub, messages[1].Path)
	assert.Equal(t, PublicInbox, messages[1].Sender)
}

func TestCollector_SkipsProcessed(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root)
	require.NoError(t, l.Init("alice"))
	now := time.Now()

	seen := writeMessage(t, l.SenderDir("alice", "bob"), "a.md", "a", now)
	fresh := writeMessage(t, l.SenderDir("alice", "bob"), "b.md", "b", now)

	messages := NewCollector(l.Home("alice"), nil).Collect(pathSet{seen: true})
	require.Len(t, messages, 1)
	assert.Equal(t, fresh, messages[0].Path)
}

func TestCollector_DoneIsNeverASenderOrMessage(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root)
	require.NoError(t, l.Init("alice"))
	now := time.Now()

	// a top-level "done" folder in the home, holding what looks like messages
	writeMessage(t, filepath.Join(l.Home("alice"), DoneDir), "x.md", "x", now)
	// a regular file called done inside a sender subfolder
	require.NoError(t, os.MkdirAll(l.SenderDir("alice", "bob"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(l.SenderDir("alice", "bob"), DoneDir), []byte("x"), 0o644))
	// a directory with the message suffix
	require.NoError(t, os.MkdirAll(filepath.Join(l.SenderDir("alice", "bob"), "dir.md"), 0o755))

	assert.Empty(t, NewCollector(l.Home("alice"), nil).Collect(nil))
}

func TestCollector_IgnoresFilesInHome(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root)
	require.NoError(t, l.Init("alice"))
	require.NoError(t, os.WriteFile(filepath.Join(l.Home("alice"), "stray.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(l.Home("alice"), LockFile), nil, 0o644))

	assert.Empty(t, NewCollector(l.Home("alice"), nil).Collect(nil))
}

func TestCollector_MissingHome(t *testing.T) {
	c := NewCollector(filepath.Join(t.TempDir(), "nobody"), nil)
	assert.Empty(t, c.Collect(nil))
}

func TestSortByArrival(t *testing.T) {
	t0 := time.Unix(1700000000, 0)
	messages := []Message{
		{Path: "/r/a/carol/3.md", ArrivedAt: t0.Add(3 * time.Second)},
		{Path: "/r/a/bob/1.md", ArrivedAt: t0.Add(1 * time.Second)},
		{Path: "/r/a/_public/2b.md", ArrivedAt: t0.Add(2 * time.Second)},
		{Path: "/r/a/_public/2a.md", ArrivedAt: t0.Add(2 * time.Second)},
	}

	SortByArrival(messages)

	var got []string
	for _, m := range messages {
		got = append(got, m.Path)
	}
	assert.Equal(t, []string{"/r/a/bob/1.md", "/r/a/_public/2a.md", "/r/a/_public/2b.md", "/r/a/carol/3.md"}, got)
}

func TestCollector_Read(t *testing.T) {
	l := NewLayout(t.TempDir())
	require.NoError(t, l.Init("alice"))
	home := l.Home("alice")
	note := writeMessage(t, l.SenderDir("alice", "bob"), "note.md", "ping", time.Now())
	writeMessage(t, DonePath(l.SenderDir("alice", "bob")), "old.md", "archived", time.Now())
	c := NewCollector(home, nil)

	t.Run("relative path", func(t *testing.T) {
		d, err := c.Read(filepath.Join("bob", "note.md"))
		require.NoError(t, err)
		assert.Equal(t, note, d.Path)
		assert.Equal(t, "bob", d.Sender)
		assert.Equal(t, "ping", d.Body)
		assert.FileExists(t, note)
	})

	t.Run("absolute path", func(t *testing.T) {
		d, err := c.Read(note)
		require.NoError(t, err)
		assert.Equal(t, "note.md", d.Name)
	})

	for _, path := range []string{
		filepath.Join("bob", "done", "old.md"),
		filepath.Join("bob", "missing.md"),
		filepath.Join("..", "alice", "bob", "note.md", "x.md"),
		filepath.Join("..", "..", "etc", "passwd.md"),
		"note.md",
	} {
		t.Run("rejects "+path, func(t *testing.T) {
			_, err := c.Read(path)
			assert.ErrorIs(t, err, ErrNotPending)
		})
	}
}
