// Package mailbox implements a broker-less, file-system-backed mailbox
// shared by independent agent processes.
//
// Every agent owns a home directory under a shared root. Peers deliver
// to an agent by writing Markdown files into a per-sender subfolder of
// that home, and the agent archives each file into the subfolder's done
// directory once it has been consumed:
//
//	<root>/<agent>/<sender>/<name>.md       pending
//	<root>/<agent>/<sender>/done/<name>.md  delivered
package mailbox

import (
	"errors"
	"time"
)

const (
	// PublicInbox is the reserved sender id for sender-agnostic delivery
	PublicInbox = "_public"
	// DoneDir is the archive folder inside every sender subfolder
	DoneDir = "done"
	// MessageSuffix marks a file as a message
	MessageSuffix = ".md"
	// LockFile is the per-agent instance lock inside the agent home
	LockFile = ".agentbox.lock"
)

var (
	// ErrInvalidAgentID is returned for ids that cannot name a directory
	ErrInvalidAgentID = errors.New("invalid agent id")
	// ErrUnknownAgent is returned when the receiving agent has no home
	ErrUnknownAgent = errors.New("unknown agent")
	// ErrArchiveConflict is returned when no free name could be found in done/
	ErrArchiveConflict = errors.New("no free archive name")
	// ErrNotPending is returned when a path does not name a pending message
	ErrNotPending = errors.New("not a pending message")
	// ErrInstanceRunning is returned when another process serves the same agent id
	ErrInstanceRunning = errors.New("another instance is running for this agent")
)

// Message is a pending message file discovered by the collector
type Message struct {
	// Path is the absolute path of the pending file
	Path string `json:"path"`
	// Sender is the name of the sender subfolder
	Sender string `json:"sender"`
	// Name is the file name including the .md suffix
	Name string `json:"name"`
	// ArrivedAt is the file modification time sampled at collection
	ArrivedAt time.Time `json:"arrived_at"`
}

// Delivery is a message together with its content, as handed to a Sink
type Delivery struct {
	Message
	Body string `json:"body"`
}
