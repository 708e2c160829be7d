package mailbox

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_RoundTrip(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root)
	require.NoError(t, l.Init("A"))
	arrived := time.Now().Add(-time.Minute)
	path := writeMessage(t, l.SenderDir("A", "B"), "msg1.md", "hello", arrived)

	sink := &recordingSink{}
	p := NewProcessor(sink, nil)
	require.NoError(t, p.Process(context.Background(), Message{Path: path, ArrivedAt: arrived}))

	require.Len(t, sink.deliveries, 1)
	d := sink.deliveries[0]
	assert.Equal(t, "B", d.Sender)
	assert.Equal(t, "msg1.md", d.Name)
	assert.Equal(t, "hello", d.Body)

	assert.NoFileExists(t, path)
	content, err := os.ReadFile(filepath.Join(root, "A", "B", "done", "msg1.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestProcessor_ArchiveFailureLeavesMessagePending(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root)
	require.NoError(t, l.Init("A"))
	senderDir := l.SenderDir("A", "B")
	path := writeMessage(t, senderDir, "msg1.md", "hello", time.Now())

	// a regular file where the done directory belongs makes archival fail
	blocker := DonePath(senderDir)
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	p := NewProcessor(&recordingSink{}, nil)
	require.Error(t, p.Process(context.Background(), Message{Path: path}))
	assert.FileExists(t, path)

	pending := NewCollector(l.Home("A"), nil).Collect(nil)
	require.Len(t, pending, 1)
	assert.Equal(t, path, pending[0].Path)

	require.NoError(t, os.Remove(blocker))
	require.NoError(t, p.Process(context.Background(), pending[0]))
	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(blocker, "msg1.md"))
}

func TestProcessor_SinkFailureSkipsArchive(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root)
	require.NoError(t, l.Init("A"))
	path := writeMessage(t, l.SenderDir("A", "B"), "msg1.md", "hello", time.Now())

	sinkErr := errors.New("consumer offline")
	p := NewProcessor(&recordingSink{err: sinkErr}, nil)

	err := p.Process(context.Background(), Message{Path: path})
	assert.ErrorIs(t, err, sinkErr)
	assert.FileExists(t, path)
}

func TestProcessor_VanishedMessage(t *testing.T) {
	p := NewProcessor(&recordingSink{}, nil)
	err := p.Process(context.Background(), Message{Path: filepath.Join(t.TempDir(), "B", "gone.md")})
	assert.Error(t, err)
}

func TestArchive_ReusedNameKeepsOldCopy(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "B")
	path := writeMessage(t, dir, "msg1.md", "new", time.Now())
	writeMessage(t, DonePath(dir), "msg1.md", "old", time.Now())

	target, err := Archive(path)
	require.NoError(t, err)
	assert.NoFileExists(t, path)
	assert.Equal(t, DonePath(dir), filepath.Dir(target))
	assert.Regexp(t, `^msg1-\d+\.md$`, filepath.Base(target))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))

	content, err = os.ReadFile(filepath.Join(DonePath(dir), "msg1.md"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(content))
}

func TestWriterSink_Deliver(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf)

	err := sink.Deliver(context.Background(), Delivery{
		Message: Message{Sender: "bob", Name: "note.md", ArrivedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		Body:    "ping",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "sender:   bob")
	assert.Contains(t, out, "file:     note.md")
	assert.Contains(t, out, "Tue Jan  2 03:04:05 2024")

	header := bytes.Index(buf.Bytes(), []byte("sender:"))
	body := bytes.Index(buf.Bytes(), []byte("ping"))
	footer := bytes.Index(buf.Bytes(), []byte("[end]"))
	assert.True(t, header < body && body < footer, "expected header, body, footer order: %q", out)
}
