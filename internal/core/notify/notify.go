// Package notify turns filesystem change events under an agent home into
// wake-up signals for the poll loop. Events can be coalesced or dropped
// by the OS, so a signal only means "scan now"; the scan itself decides
// what is pending.
package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/aki/agentbox/internal/core/logger"
	"github.com/aki/agentbox/internal/core/mailbox"
)

// Watcher watches an agent home and its sender subfolders
type Watcher struct {
	home    string
	watcher *fsnotify.Watcher
	wake    chan struct{}
	done    chan struct{}
	logger  logger.Logger

	mu      sync.Mutex
	watched map[string]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// New starts watching home. Sender subfolders that exist now, and those
// created later, are watched too.
func New(home string, log logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.Nop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		home:    home,
		watcher: fw,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		logger:  log,
		watched: make(map[string]struct{}),
	}

	if err := w.add(home); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", home, err)
	}
	entries, err := os.ReadDir(home)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to list %s: %w", home, err)
	}
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			w.addLogged(filepath.Join(home, entry.Name()))
		}
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Wake returns the channel signalled after relevant changes. At most one
// signal is buffered; bursts collapse into a single wake-up.
func (w *Watcher) Wake() <-chan struct{} {
	return w.wake
}

// Close stops watching
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "err", err)
			// missed events are possible now, so scan anyway
			w.signal()
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
		return
	}

	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return
	}

	// a new sender subfolder directly under the home
	if filepath.Dir(event.Name) == w.home && event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addLogged(event.Name)
			w.signal()
			return
		}
	}

	if strings.HasSuffix(name, mailbox.MessageSuffix) {
		w.signal()
	}
}

func (w *Watcher) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Watcher) add(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.watched[dir]; ok {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.watched[dir] = struct{}{}
	return nil
}

func (w *Watcher) addLogged(dir string) {
	if err := w.add(dir); err != nil {
		w.logger.Warn("failed to watch sender folder", "path", dir, "err", err)
	}
}
