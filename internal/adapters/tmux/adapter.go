// Package tmux provides a tmux adapter for terminal multiplexing.
package tmux

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
)

const paneIDFormat = "#{pane_id}"

// RealAdapter provides real tmux operations
type RealAdapter struct {
	tmuxPath string
}

// NewAdapter creates a new tmux adapter
func NewAdapter() (Adapter, error) {
	tmuxPath, err := exec.LookPath("tmux")
	if err != nil {
		return nil, fmt.Errorf("tmux not found: %w", err)
	}

	return &RealAdapter{
		tmuxPath: tmuxPath,
	}, nil
}

// IsAvailable checks if tmux is available on the system
func (a *RealAdapter) IsAvailable() bool {
	cmd := exec.Command(a.tmuxPath, "-V")
	return cmd.Run() == nil
}

// SessionExists checks if a tmux session exists
func (a *RealAdapter) SessionExists(sessionName string) bool {
	cmd := exec.Command(a.tmuxPath, "has-session", "-t", "="+sessionName)
	return cmd.Run() == nil
}

// KillSession kills a tmux session
func (a *RealAdapter) KillSession(sessionName string) error {
	if !a.SessionExists(sessionName) {
		return nil // Already gone
	}

	if _, err := a.run("kill-session", "-t", "="+sessionName); err != nil {
		return fmt.Errorf("failed to kill tmux session: %w", err)
	}
	return nil
}

// CreateSession creates a detached session and returns its first pane id
func (a *RealAdapter) CreateSession(opts CreateSessionOptions) (string, error) {
	args := []string{"new-session", "-d", "-P", "-F", paneIDFormat, "-s", opts.SessionName, "-c", opts.WorkDir}
	if opts.WindowName != "" {
		args = append(args, "-n", opts.WindowName)
	}
	args = append(args, envArgs(opts.Environment)...)

	out, err := a.run(args...)
	if err != nil {
		return "", fmt.Errorf("failed to create tmux session: %w", err)
	}
	return out, nil
}

// SplitPane splits the target pane and returns the new pane id
func (a *RealAdapter) SplitPane(opts SplitOptions) (string, error) {
	direction := "-v"
	if opts.Horizontal {
		direction = "-h"
	}

	args := []string{"split-window", direction, "-t", opts.Target, "-P", "-F", paneIDFormat}
	if opts.Percent > 0 && opts.Percent < 100 {
		args = append(args, "-l", strconv.Itoa(opts.Percent)+"%")
	}
	if opts.WorkDir != "" {
		args = append(args, "-c", opts.WorkDir)
	}
	args = append(args, envArgs(opts.Environment)...)

	out, err := a.run(args...)
	if err != nil {
		return "", fmt.Errorf("failed to split pane %s: %w", opts.Target, err)
	}
	return out, nil
}

// SendKeys types keys into the target pane followed by Enter
func (a *RealAdapter) SendKeys(target, keys string) error {
	// -l sends keys literally (no key-name expansion)
	if _, err := a.run("send-keys", "-t", target, "-l", keys); err != nil {
		return fmt.Errorf("failed to send keys to %s: %w", target, err)
	}
	if _, err := a.run("send-keys", "-t", target, "Enter"); err != nil {
		return fmt.Errorf("failed to send Enter key: %w", err)
	}
	return nil
}

// SelectPane makes paneID the active pane of its window
func (a *RealAdapter) SelectPane(paneID string) error {
	if _, err := a.run("select-pane", "-t", paneID); err != nil {
		return fmt.Errorf("failed to select pane %s: %w", paneID, err)
	}
	return nil
}

// AttachSession attaches the current terminal to a session. Inside tmux
// the client is switched instead, since nesting is refused.
func (a *RealAdapter) AttachSession(sessionName string) error {
	verb := "attach-session"
	if os.Getenv("TMUX") != "" {
		verb = "switch-client"
	}

	cmd := exec.Command(a.tmuxPath, verb, "-t", "="+sessionName)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to attach to session %s: %w", sessionName, err)
	}
	return nil
}

// run executes tmux and returns its trimmed stdout
func (a *RealAdapter) run(args ...string) (string, error) {
	cmd := exec.Command(a.tmuxPath, args...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// envArgs renders -e KEY=VALUE pairs in key order
func envArgs(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, "-e", k+"="+env[k])
	}
	return args
}
