package mailbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Layout computes mailbox paths under a shared root directory
type Layout struct {
	Root string
}

// NewLayout creates a layout rooted at root
func NewLayout(root string) Layout {
	if root == "" {
		return Layout{}
	}
	return Layout{Root: filepath.Clean(root)}
}

// Home returns the home directory of an agent
func (l Layout) Home(agentID string) string {
	return filepath.Join(l.Root, agentID)
}

// PublicInbox returns the broadcast inbox of an agent
func (l Layout) PublicInbox(agentID string) string {
	return filepath.Join(l.Home(agentID), PublicInbox)
}

// PublicDone returns the archive of the broadcast inbox of an agent
func (l Layout) PublicDone(agentID string) string {
	return DonePath(l.PublicInbox(agentID))
}

// SenderDir returns the subfolder of receiver's home that holds messages from sender
func (l Layout) SenderDir(receiver, sender string) string {
	return filepath.Join(l.Home(receiver), sender)
}

// DonePath returns the archive directory of a sender subfolder
func DonePath(senderDir string) string {
	return filepath.Join(senderDir, DoneDir)
}

// Init ensures the home, public inbox and public archive of an agent exist
func (l Layout) Init(agentID string) error {
	if err := ValidateAgentID(agentID); err != nil {
		return err
	}
	if l.Root == "" {
		return fmt.Errorf("message root is not set")
	}

	if err := EnsureDir(l.Home(agentID)); err != nil {
		return fmt.Errorf("failed to create agent home: %w", err)
	}
	if err := EnsureDir(l.PublicDone(agentID)); err != nil {
		return fmt.Errorf("failed to create public inbox: %w", err)
	}
	return nil
}

// EnsureDir creates dir and any missing parents; existing directories are fine
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// ValidateAgentID checks that id can be used as a single directory name
func ValidateAgentID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: empty", ErrInvalidAgentID)
	case id == "." || id == "..":
		return fmt.Errorf("%w: %q", ErrInvalidAgentID, id)
	case strings.ContainsAny(id, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidAgentID, id)
	case strings.HasPrefix(id, "."):
		return fmt.Errorf("%w: %q is hidden", ErrInvalidAgentID, id)
	case id == DoneDir || id == PublicInbox:
		return fmt.Errorf("%w: %q is reserved", ErrInvalidAgentID, id)
	}
	return nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
