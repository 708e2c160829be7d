package tmux

import (
	"fmt"
	"sync"
)

// MockPane records a pane created through the mock
type MockPane struct {
	ID          string
	Session     string
	Parent      string // Empty for the first pane of a session
	Horizontal  bool
	Percent     int
	WorkDir     string
	Environment map[string]string
	Keys        []string
}

// MockAdapter provides a mock implementation for testing
type MockAdapter struct {
	mu sync.RWMutex

	sessions map[string][]string // session name -> pane ids
	panes    map[string]*MockPane
	order    []string
	nextPane int
	selected string
	attached []string

	available bool
	createErr error
	splitErr  error
	sendErr   error
	attachErr error
	killErr   error
}

// NewMockAdapter creates a new mock adapter
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		sessions:  make(map[string][]string),
		panes:     make(map[string]*MockPane),
		available: true,
	}
}

// SetAvailable sets whether tmux is available
func (m *MockAdapter) SetAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = available
}

// SetCreateSessionError sets an error to return on CreateSession
func (m *MockAdapter) SetCreateSessionError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createErr = err
}

// SetSplitPaneError sets an error to return on SplitPane
func (m *MockAdapter) SetSplitPaneError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.splitErr = err
}

// SetSendKeysError sets an error to return on SendKeys
func (m *MockAdapter) SetSendKeysError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// SetAttachError sets an error to return on AttachSession
func (m *MockAdapter) SetAttachError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attachErr = err
}

// SetKillSessionError sets an error to return on KillSession
func (m *MockAdapter) SetKillSessionError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.killErr = err
}

// IsAvailable returns the mock availability
func (m *MockAdapter) IsAvailable() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.available
}

// SessionExists checks if a mock session exists
func (m *MockAdapter) SessionExists(sessionName string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.sessions[sessionName]
	return exists
}

// KillSession removes a mock session and its panes
func (m *MockAdapter) KillSession(sessionName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.killErr != nil {
		return m.killErr
	}

	for _, id := range m.sessions[sessionName] {
		delete(m.panes, id)
	}
	delete(m.sessions, sessionName)

	kept := m.order[:0]
	for _, id := range m.order {
		if _, ok := m.panes[id]; ok {
			kept = append(kept, id)
		}
	}
	m.order = kept
	return nil
}

// CreateSession creates a mock session with one pane
func (m *MockAdapter) CreateSession(opts CreateSessionOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return "", m.createErr
	}
	if _, exists := m.sessions[opts.SessionName]; exists {
		return "", fmt.Errorf("duplicate session: %s", opts.SessionName)
	}

	pane := m.newPaneLocked(opts.SessionName, "", opts.WorkDir, opts.Environment)
	m.sessions[opts.SessionName] = []string{pane.ID}
	return pane.ID, nil
}

// SplitPane adds a pane next to or below the target
func (m *MockAdapter) SplitPane(opts SplitOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.splitErr != nil {
		return "", m.splitErr
	}
	parent, ok := m.panes[opts.Target]
	if !ok {
		return "", fmt.Errorf("can't find pane: %s", opts.Target)
	}

	pane := m.newPaneLocked(parent.Session, parent.ID, opts.WorkDir, opts.Environment)
	pane.Horizontal = opts.Horizontal
	pane.Percent = opts.Percent
	m.sessions[parent.Session] = append(m.sessions[parent.Session], pane.ID)
	return pane.ID, nil
}

// SendKeys records keys sent to a pane
func (m *MockAdapter) SendKeys(target, keys string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return m.sendErr
	}
	pane, ok := m.panes[target]
	if !ok {
		return fmt.Errorf("can't find pane: %s", target)
	}
	pane.Keys = append(pane.Keys, keys)
	return nil
}

// SelectPane records the active pane
func (m *MockAdapter) SelectPane(paneID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.panes[paneID]; !ok {
		return fmt.Errorf("can't find pane: %s", paneID)
	}
	m.selected = paneID
	return nil
}

// AttachSession records an attach request
func (m *MockAdapter) AttachSession(sessionName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.attachErr != nil {
		return m.attachErr
	}
	if _, exists := m.sessions[sessionName]; !exists {
		return fmt.Errorf("session not found: %s", sessionName)
	}
	m.attached = append(m.attached, sessionName)
	return nil
}

// Panes returns copies of all panes in creation order
func (m *MockAdapter) Panes() []MockPane {
	m.mu.RLock()
	defer m.mu.RUnlock()

	panes := make([]MockPane, 0, len(m.order))
	for _, id := range m.order {
		p := *m.panes[id]
		p.Keys = append([]string(nil), p.Keys...)
		panes = append(panes, p)
	}
	return panes
}

// SelectedPane returns the last selected pane id
func (m *MockAdapter) SelectedPane() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selected
}

// Attached returns the sessions AttachSession was called for
func (m *MockAdapter) Attached() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.attached...)
}

func (m *MockAdapter) newPaneLocked(session, parent, workDir string, env map[string]string) *MockPane {
	id := fmt.Sprintf("%%%d", m.nextPane)
	m.nextPane++

	copied := make(map[string]string, len(env))
	for k, v := range env {
		copied[k] = v
	}

	pane := &MockPane{
		ID:          id,
		Session:     session,
		Parent:      parent,
		WorkDir:     workDir,
		Environment: copied,
	}
	m.panes[id] = pane
	m.order = append(m.order, id)
	return pane
}
