package mailbox

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aki/agentbox/internal/core/logger"
)

// ProcessedSet reports whether a message path was already handled this run
type ProcessedSet interface {
	Contains(path string) bool
}

// Collector lists pending messages in an agent home
type Collector struct {
	home   string
	logger logger.Logger
}

// NewCollector creates a collector for the given agent home
func NewCollector(home string, log logger.Logger) *Collector {
	if log == nil {
		log = logger.Nop()
	}
	return &Collector{
		home:   home,
		logger: log,
	}
}

// Collect returns every pending message in the home that is not in
// processed. Files that vanish between listing and stat are skipped;
// unreadable sender folders are logged and skipped. The result is not
// ordered, use SortByArrival.
func (c *Collector) Collect(processed ProcessedSet) []Message {
	senders, err := os.ReadDir(c.home)
	if err != nil {
		c.logger.Warn("failed to list inbox", "path", c.home, "err", err)
		return nil
	}

	var messages []Message
	for _, sender := range senders {
		name := sender.Name()
		if name == DoneDir || isHidden(name) {
			continue
		}
		senderDir := filepath.Join(c.home, name)
		if !isDir(senderDir, sender) {
			continue
		}
		messages = append(messages, c.collectSender(senderDir, name, processed)...)
	}
	return messages
}

func (c *Collector) collectSender(senderDir, sender string, processed ProcessedSet) []Message {
	entries, err := os.ReadDir(senderDir)
	if err != nil {
		c.logger.Warn("failed to list sender folder", "path", senderDir, "err", err)
		return nil
	}

	var messages []Message
	for _, entry := range entries {
		name := entry.Name()
		if name == DoneDir || isHidden(name) || !strings.HasSuffix(name, MessageSuffix) {
			continue
		}

		path := filepath.Join(senderDir, name)
		if processed != nil && processed.Contains(path) {
			continue
		}

		// The listing may already be stale.
		info, err := os.Stat(path)
		if err != nil {
			if !os.IsNotExist(err) {
				c.logger.Debug("skipping unreadable message", "path", path, "err", err)
			}
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		messages = append(messages, Message{
			Path:      path,
			Sender:    sender,
			Name:      name,
			ArrivedAt: info.ModTime(),
		})
	}
	return messages
}

// SortByArrival orders messages by ascending modification time; equal
// times fall back to path order so the result is deterministic
func SortByArrival(messages []Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		if !messages[i].ArrivedAt.Equal(messages[j].ArrivedAt) {
			return messages[i].ArrivedAt.Before(messages[j].ArrivedAt)
		}
		return messages[i].Path < messages[j].Path
	})
}

// Read returns a pending message without archiving it. path may be
// absolute or relative to the home, and must name a message file directly
// inside a sender folder.
func (c *Collector) Read(path string) (Delivery, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.home, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(c.home, path)
	if err != nil {
		return Delivery{}, fmt.Errorf("%w: %s", ErrNotPending, path)
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 2 || parts[0] == ".." || parts[0] == DoneDir ||
		isHidden(parts[0]) || isHidden(parts[1]) || !strings.HasSuffix(parts[1], MessageSuffix) {
		return Delivery{}, fmt.Errorf("%w: %s", ErrNotPending, path)
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return Delivery{}, fmt.Errorf("%w: %s", ErrNotPending, path)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return Delivery{}, fmt.Errorf("failed to read message: %w", err)
	}

	return Delivery{
		Message: Message{
			Path:      path,
			Sender:    parts[0],
			Name:      parts[1],
			ArrivedAt: info.ModTime(),
		},
		Body: string(body),
	}, nil
}
