package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/refract/pkg/parser"
)

// Watcher keeps workspace snapshots current as files change on disk.
//
// Write and create events debounce into a single re-analysis per file;
// remove and rename events drop the file's snapshot.
type Watcher struct {
	watcher *fsnotify.Watcher
	ws      *Workspace
	logger  *slog.Logger
	options WatchOptions

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
}

// NewWatcher creates a watcher over a workspace.
func NewWatcher(ws *Workspace, options WatchOptions, logger *slog.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if options.DebounceMs == 0 {
		options.DebounceMs = 200
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		watcher:        watcher,
		ws:             ws,
		logger:         logger,
		options:        options,
		debounceTimers: make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
	}, nil
}

// Start begins watching the workspace root and its subdirectories and
// processes events in a background goroutine.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("watcher already stopped")
	}
	w.mu.Unlock()

	root := w.ws.Root()
	if err := w.watcher.Add(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if info.IsDir() {
			if path != root && w.shouldIgnore(path) {
				return filepath.SkipDir
			}
			if err := w.watcher.Add(path); err != nil {
				w.logger.Warn("failed to watch directory", "path", path, "error", err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to setup watches: %w", err)
	}

	w.logger.Info("file watcher started", "root", root)

	go w.eventLoop()

	return nil
}

// Stop stops the watcher. Idempotent.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}

	w.stopped = true
	close(w.stopChan)

	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = make(map[string]*time.Timer)
	w.debounceMu.Unlock()

	err := w.watcher.Close()
	w.logger.Info("file watcher stopped")
	return err
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	filePath := event.Name

	if w.shouldIgnore(filePath) {
		return
	}
	if !parser.DetectLanguage(filePath).HasGrammar() {
		return
	}

	w.logger.Debug("file event", "op", event.Op.String(), "file", filePath)

	switch {
	case event.Op&fsnotify.Write == fsnotify.Write:
		w.debounceRefresh(filePath)

	case event.Op&fsnotify.Create == fsnotify.Create:
		w.debounceRefresh(filePath)

	case event.Op&fsnotify.Remove == fsnotify.Remove:
		w.ws.Forget(filePath)

	case event.Op&fsnotify.Rename == fsnotify.Rename:
		w.ws.Forget(filePath)
	}
}

// debounceRefresh schedules a re-analysis after the debounce delay. Rapid
// successive events on the same file collapse into the last one.
func (w *Watcher) debounceRefresh(filePath string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[filePath]; exists {
		timer.Stop()
	}

	w.debounceTimers[filePath] = time.AfterFunc(
		time.Duration(w.options.DebounceMs)*time.Millisecond,
		func() {
			if _, err := w.ws.Refresh(filePath); err != nil {
				w.logger.Warn("failed to re-analyze file",
					"file", filePath,
					"error", err)
			}

			w.debounceMu.Lock()
			delete(w.debounceTimers, filePath)
			w.debounceMu.Unlock()
		},
	)
}

// shouldIgnore filters editor temp files and build directories.
func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)

	for _, pattern := range w.options.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	switch base {
	case "node_modules", ".git", "target", "dist", "build", "vendor", "__pycache__", ".next":
		return true
	}

	return false
}

// Stats returns watcher statistics.
func (w *Watcher) Stats() WatcherStats {
	w.debounceMu.Lock()
	pending := len(w.debounceTimers)
	w.debounceMu.Unlock()

	w.mu.Lock()
	running := !w.stopped
	w.mu.Unlock()

	return WatcherStats{
		PendingRefreshes: pending,
		IsRunning:        running,
	}
}

// WatcherStats contains watcher statistics.
type WatcherStats struct {
	PendingRefreshes int
	IsRunning        bool
}
