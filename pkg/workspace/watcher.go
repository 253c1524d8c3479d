package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/harun/nanoboard/internal/metrics"
	"github.com/rs/zerolog"
)

// FileEventCallback receives debounced events.
type FileEventCallback func(FileEvent)

// Watcher monitors a root directory recursively and reports changes with
// root-relative paths.
type Watcher struct {
	watcher    *fsnotify.Watcher
	root       string
	debounce   time.Duration
	onEvent    FileEventCallback
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	done       chan struct{}
	pending    map[string]*pendingEvent
	debounceMu sync.Mutex
	stopOnce   sync.Once
}

// WatcherConfig holds configuration for the watcher
type WatcherConfig struct {
	Root     string
	Debounce time.Duration
	OnEvent  FileEventCallback
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
}

// NewWatcher creates a watcher. Nothing is watched until Start.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if config.Debounce <= 0 {
		config.Debounce = 100 * time.Millisecond
	}

	return &Watcher{
		watcher:  watcher,
		root:     filepath.Clean(config.Root),
		debounce: config.Debounce,
		onEvent:  config.OnEvent,
		metrics:  config.Metrics,
		logger:   config.Logger,
		done:     make(chan struct{}),
		pending:  make(map[string]*pendingEvent),
	}, nil
}

// Start watches the root and every directory below it. A missing root is
// created first.
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return fmt.Errorf("failed to create watch root: %w", err)
	}
	if err := w.addDirectoryRecursive(w.root); err != nil {
		return fmt.Errorf("failed to watch root: %w", err)
	}

	go w.eventLoop()

	w.logger.Info().Str("path", w.root).Msg("Workspace watcher started")
	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)

		w.debounceMu.Lock()
		for _, p := range w.pending {
			p.timer.Stop()
		}
		clear(w.pending)
		w.debounceMu.Unlock()

		if cerr := w.watcher.Close(); cerr != nil {
			err = fmt.Errorf("failed to close watcher: %w", cerr)
		}
		w.logger.Info().Msg("Workspace watcher stopped")
	})
	return err
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.shouldIgnore(event.Name) {
				continue
			}
			w.debounceEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("Watcher error")

		case <-w.done:
			return
		}
	}
}

// pendingEvent is a debounced path waiting for its timer
type pendingEvent struct {
	timer *time.Timer
	op    fsnotify.Op
}

// debounceEvent collapses bursts on one path. A create followed by writes
// still reports as a create; a removal replaces whatever was pending.
func (w *Watcher) debounceEvent(event fsnotify.Event) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	op := event.Op
	if prev, exists := w.pending[event.Name]; exists {
		prev.timer.Stop()
		if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
			op |= prev.op
		}
	}

	name := event.Name
	pending := &pendingEvent{op: op}
	pending.timer = time.AfterFunc(w.debounce, func() {
		w.debounceMu.Lock()
		current := w.pending[name] == pending
		if current {
			delete(w.pending, name)
		}
		w.debounceMu.Unlock()
		if !current {
			return
		}

		select {
		case <-w.done:
			return
		default:
			w.processEvent(fsnotify.Event{Name: name, Op: pending.op})
		}
	})
	w.pending[name] = pending
}

func (w *Watcher) processEvent(event fsnotify.Event) {
	var typ FileEventType
	switch {
	case event.Has(fsnotify.Create):
		typ = FileEventAdd
		// new directories need their own watch
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addDirectoryRecursive(event.Name)
		}
	case event.Has(fsnotify.Write):
		typ = FileEventChange
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// the new name of a rename arrives as its own create
		typ = FileEventDelete
	default:
		return
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return
	}

	w.metrics.RecordWatchEvent(string(typ))
	if w.onEvent != nil {
		w.onEvent(FileEvent{Event: typ, Path: filepath.ToSlash(rel)})
	}
}

func (w *Watcher) addDirectoryRecursive(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && walkPath != path {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if walkPath != w.root && w.shouldIgnore(walkPath) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(walkPath); err != nil {
			w.logger.Warn().Err(err).Str("path", walkPath).Msg("Failed to watch path")
		}
		return nil
	})
}

// shouldIgnore skips dot entries and node_modules below the root. The
// root's own location is not considered.
func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part == "." {
			continue
		}
		if strings.HasPrefix(part, ".") || part == "node_modules" {
			return true
		}
	}
	return false
}
