package mailbox

import (
	"os"
	"path/filepath"

	"github.com/aki/agentbox/internal/core/logger"
)

// Announcer leaves a footprint for its agent inside every peer home, so
// peers can deliver to it without having seen it first
type Announcer struct {
	layout  Layout
	agentID string
	logger  logger.Logger
}

// NewAnnouncer creates an announcer for agentID
func NewAnnouncer(layout Layout, agentID string, log logger.Logger) *Announcer {
	if log == nil {
		log = logger.Nop()
	}
	return &Announcer{
		layout:  layout,
		agentID: agentID,
		logger:  log,
	}
}

// Peers lists the agent directories under the root other than our own.
// Non-directories and hidden entries are skipped.
func (a *Announcer) Peers() ([]string, error) {
	entries, err := os.ReadDir(a.layout.Root)
	if err != nil {
		return nil, err
	}

	var peers []string
	for _, entry := range entries {
		name := entry.Name()
		if name == a.agentID || isHidden(name) {
			continue
		}
		if !isDir(filepath.Join(a.layout.Root, name), entry) {
			continue
		}
		peers = append(peers, name)
	}
	return peers, nil
}

// HasFootprint reports whether the agent already has a folder in peer's home
func (a *Announcer) HasFootprint(peer string) bool {
	info, err := os.Stat(DonePath(a.layout.SenderDir(peer, a.agentID)))
	return err == nil && info.IsDir()
}

// Announce ensures <root>/<peer>/<self>/done exists for every peer and
// returns the peers it saw. Failures are logged, never returned.
func (a *Announcer) Announce() []string {
	peers, err := a.Peers()
	if err != nil {
		a.logger.Warn("failed to scan for peers", "root", a.layout.Root, "err", err)
		return nil
	}

	for _, peer := range peers {
		footprint := DonePath(a.layout.SenderDir(peer, a.agentID))
		if _, err := os.Stat(footprint); err == nil {
			continue
		}
		if err := EnsureDir(footprint); err != nil {
			a.logger.Warn("failed to leave footprint", "peer", peer, "path", footprint, "err", err)
			continue
		}
		a.logger.Info("peer discovered, footprint created", "peer", peer, "path", footprint)
	}
	return peers
}

// isDir resolves symlinked agent homes as well as plain directories
func isDir(path string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
