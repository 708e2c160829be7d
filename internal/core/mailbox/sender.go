package mailbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Sender writes messages into other agents' inboxes
type Sender struct {
	layout  Layout
	agentID string
	now     func() time.Time
}

// NewSender creates a sender writing on behalf of agentID. An empty
// agentID sends into the receiver's public inbox.
func NewSender(layout Layout, agentID string) *Sender {
	return &Sender{
		layout:  layout,
		agentID: agentID,
		now:     time.Now,
	}
}

// Send writes body as a new message for the agent to and returns its path.
// The content is written under a hidden temporary name and renamed into
// place, so collectors never observe a partial file.
func (s *Sender) Send(to, name, body string) (string, error) {
	if err := ValidateAgentID(to); err != nil {
		return "", err
	}
	if info, err := os.Stat(s.layout.Home(to)); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrUnknownAgent, to)
	}

	from := s.agentID
	if from == "" {
		from = PublicInbox
	}
	inbox := s.layout.SenderDir(to, from)
	if err := EnsureDir(DonePath(inbox)); err != nil {
		return "", fmt.Errorf("failed to create inbox: %w", err)
	}

	id := uuid.New().String()[:8]
	filename := fmt.Sprintf("%d-%s-%s%s", s.now().Unix(), sanitizeFilename(name), id, MessageSuffix)
	target := filepath.Join(inbox, filename)
	temp := filepath.Join(inbox, "."+filename+".tmp")

	if err := os.WriteFile(temp, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("failed to write message: %w", err)
	}
	if err := os.Rename(temp, target); err != nil {
		_ = os.Remove(temp)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}
	return target, nil
}

const maxSlugBytes = 50

// sanitizeFilename removes or replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	name = strings.TrimSuffix(name, MessageSuffix)
	name = strings.ReplaceAll(name, " ", "-")

	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"\"", "-",
		"<", "-",
		">", "-",
		"|", "-",
		"\n", "-",
		"\r", "-",
	)
	name = replacer.Replace(name)
	name = strings.Trim(name, "-.")

	if len(name) > maxSlugBytes {
		cut := maxSlugBytes
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
	}
	if name == "" {
		name = "message"
	}
	return name
}
