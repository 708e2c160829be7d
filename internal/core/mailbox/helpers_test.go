package mailbox

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeMessage creates a pending message with a fixed modification time
func writeMessage(t *testing.T, dir, name, body string, mtime time.Time) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

type recordingSink struct {
	mu         sync.Mutex
	deliveries []Delivery
	err        error
}

func (s *recordingSink) Deliver(_ context.Context, d Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.deliveries = append(s.deliveries, d)
	return nil
}

type pathSet map[string]bool

func (p pathSet) Contains(path string) bool { return p[path] }
