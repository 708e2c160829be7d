package tmux

// CreateSessionOptions contains options for creating a tmux session
type CreateSessionOptions struct {
	SessionName string
	WorkDir     string
	WindowName  string            // Optional: name of the first window
	Environment map[string]string // Optional: environment of the first pane
}

// SplitOptions contains options for splitting a pane
type SplitOptions struct {
	// Target is the pane id to split
	Target string
	// Horizontal places the new pane to the right instead of below
	Horizontal bool
	// Percent is the share of the target the new pane takes (1-99, 0 = even split)
	Percent     int
	WorkDir     string
	Environment map[string]string
}

// Adapter defines the tmux operations needed to build and show a pane grid.
// Pane-creating calls return the tmux pane id (e.g. "%3").
type Adapter interface {
	IsAvailable() bool
	SessionExists(sessionName string) bool
	KillSession(sessionName string) error
	CreateSession(opts CreateSessionOptions) (string, error)
	SplitPane(opts SplitOptions) (string, error)
	SendKeys(target, keys string) error
	SelectPane(paneID string) error
	AttachSession(sessionName string) error
}
