package poller

import "sync"

// State is the per-process memory of a poll loop. It lives for the
// lifetime of the process and is never persisted: after a restart the
// filesystem alone decides what is pending.
type State struct {
	mu        sync.Mutex
	processed map[string]struct{}
	cycles    uint64
	delivered uint64
	failed    uint64
}

// NewState creates an empty state
func NewState() *State {
	return &State{processed: make(map[string]struct{})}
}

// Contains reports whether path was handled during this run
func (s *State) Contains(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.processed[path]
	return ok
}

// MarkProcessed records path as handled
func (s *State) MarkProcessed(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed[path] = struct{}{}
}

// Stats is a snapshot of loop counters
type Stats struct {
	Cycles    uint64 `json:"cycles"`
	Delivered uint64 `json:"delivered"`
	Failed    uint64 `json:"failed"`
	Processed int    `json:"processed"`
}

// Stats returns the current counters
func (s *State) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Cycles:    s.cycles,
		Delivered: s.delivered,
		Failed:    s.failed,
		Processed: len(s.processed),
	}
}

func (s *State) record(delivered, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles++
	s.delivered += uint64(delivered)
	s.failed += uint64(failed)
}
