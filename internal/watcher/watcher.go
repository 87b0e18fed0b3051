// Package watcher monitors spool directories for arriving session logs.
//
// Recorders upload session logs as .jsonl files into a spool directory.
// A file is reported only after it has been unmodified for the debounce
// interval, so partially written uploads are never handed to the
// extractor.
package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event reports a session log that is ready for extraction.
type Event struct {
	Path      string
	Size      int64
	Timestamp time.Time
}

// Watcher monitors spool directories for stable session logs.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dirs      []string
	pattern   string
	interval  time.Duration

	// State tracking: path -> last modification time
	state   map[string]time.Time
	stateMu sync.RWMutex

	// Event channel
	events chan Event
	errors chan error

	// Control
	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a spool watcher over the given directories. pattern is a
// glob matched against file names (e.g. "*.jsonl").
func New(dirs []string, pattern string, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if pattern == "" {
		pattern = "*.jsonl"
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		dirs:      dirs,
		pattern:   pattern,
		interval:  debounce,
		state:     make(map[string]time.Time),
		events:    make(chan Event, 100),
		errors:    make(chan error, 10),
		done:      make(chan struct{}),
	}

	return w, nil
}

// Events returns the channel of ready session logs.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Start begins watching all configured spool directories. Files already
// present are tracked and reported once stable.
func (w *Watcher) Start() error {
	for _, dir := range w.dirs {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		if err := w.fsWatcher.Add(absDir); err != nil {
			return err
		}

		entries, err := os.ReadDir(absDir)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				w.trackFile(filepath.Join(absDir, entry.Name()))
			}
		}
	}

	w.wg.Add(2)
	go w.eventLoop()
	go w.debounceLoop()

	return nil
}

// Stop gracefully shuts down the watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	w.wg.Wait()
	close(w.events)
	close(w.errors)
	return w.fsWatcher.Close()
}

// matches reports whether a path names a session log.
func (w *Watcher) matches(path string) bool {
	ok, err := filepath.Match(w.pattern, filepath.Base(path))
	return err == nil && ok
}

// trackFile adds a matching file to state tracking.
func (w *Watcher) trackFile(path string) {
	if !w.matches(path) {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	w.stateMu.Lock()
	w.state[path] = info.ModTime()
	w.stateMu.Unlock()
}

// eventLoop handles fsnotify events.
func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			// Only track writes and creates.
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}

			info, err := os.Stat(event.Name)
			if err != nil || info.IsDir() {
				continue
			}

			w.stateMu.Lock()
			w.state[event.Name] = time.Now()
			w.stateMu.Unlock()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// debounceLoop periodically reports files that have stabilized.
func (w *Watcher) debounceLoop() {
	defer w.wg.Done()

	tick := w.interval / 2
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case now := <-ticker.C:
			w.reportStableFiles(now)
		}
	}
}

// reportStableFiles emits files unmodified for the debounce interval
// and forgets them until they are written again.
func (w *Watcher) reportStableFiles(now time.Time) {
	threshold := now.Add(-w.interval)

	var ready []string
	w.stateMu.RLock()
	for path, lastMod := range w.state {
		if !lastMod.After(threshold) {
			ready = append(ready, path)
		}
	}
	w.stateMu.RUnlock()

	for _, path := range ready {
		info, err := os.Stat(path)
		if err != nil {
			// Removed between scan and report; drop it.
			w.stateMu.Lock()
			delete(w.state, path)
			w.stateMu.Unlock()
			continue
		}

		select {
		case w.events <- Event{Path: path, Size: info.Size(), Timestamp: now}:
			w.stateMu.Lock()
			delete(w.state, path)
			w.stateMu.Unlock()
		default:
			// Event channel full, try again next tick.
		}
	}
}

// PendingFiles returns the number of files waiting to stabilize.
func (w *Watcher) PendingFiles() int {
	w.stateMu.RLock()
	defer w.stateMu.RUnlock()
	return len(w.state)
}
