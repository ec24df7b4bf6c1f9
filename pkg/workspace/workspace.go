package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/refract/pkg/parser"
	"github.com/gnana997/refract/pkg/parser/queries"
	"github.com/gnana997/refract/pkg/scope"
	"github.com/gnana997/refract/pkg/util"
)

// Config configures a Workspace.
type Config struct {
	// MaxCachedFiles bounds how many analyzed files are kept. When the
	// limit is reached the least recently used snapshot is dropped from
	// both the cache and the analyzer. Default: 1000.
	MaxCachedFiles int

	// FileCache configures the memory-mapped read cache used during
	// scans. Nil means util.DefaultFileCacheConfig().
	FileCache *util.FileCacheConfig
}

// DefaultConfig returns the default workspace configuration.
func DefaultConfig() Config {
	return Config{MaxCachedFiles: 1000}
}

// trackerEntry pairs a binding snapshot with the file's modification time
// at analysis, so staleness can be detected without re-reading content.
type trackerEntry struct {
	modTime time.Time
	tracker *scope.BindingTracker
}

// Workspace maintains binding snapshots for the files under a root
// directory and answers cross-file usage queries against them.
//
// Reads during bulk scans go through a memory-mapped file cache; snapshots
// are bounded by an LRU keyed on path, with eviction dropping the file from
// the underlying analyzer as well.
type Workspace struct {
	root     string
	analyzer *scope.Analyzer
	files    util.FileCache
	cache    *lru.Cache[string, trackerEntry]
	logger   *slog.Logger
}

// New creates a Workspace rooted at the given directory on top of the
// shared parser and query managers.
func New(root string, pm *parser.ParserManager, qm *queries.QueryManager, logger *slog.Logger, config Config) (*Workspace, error) {
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root is not a directory: %s", root)
	}

	if config.MaxCachedFiles <= 0 {
		config.MaxCachedFiles = 1000
	}
	fcConfig := config.FileCache
	if fcConfig == nil {
		fcConfig = util.DefaultFileCacheConfig()
	}

	analyzer := scope.NewAnalyzer(pm, qm, logger)

	cache, err := lru.NewWithEvict(config.MaxCachedFiles, func(path string, _ trackerEntry) {
		analyzer.Invalidate(path)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracker cache: %w", err)
	}

	return &Workspace{
		root:     root,
		analyzer: analyzer,
		files:    util.NewFileCache(fcConfig),
		cache:    cache,
		logger:   logger,
	}, nil
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

// Analyzer exposes the underlying analyzer for direct usage queries.
func (w *Workspace) Analyzer() *scope.Analyzer {
	return w.analyzer
}

// TrackerFor returns the binding snapshot for a path, analyzing the file if
// it has never been seen or its modification time has changed.
func (w *Workspace) TrackerFor(path string) (*scope.BindingTracker, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if entry, ok := w.cache.Get(path); ok && entry.modTime.Equal(info.ModTime()) {
		return entry.tracker, nil
	}

	return w.Refresh(path)
}

// Refresh re-analyzes a file unconditionally and replaces its snapshot.
// Content is read directly from disk so edits that replaced the file are
// always observed.
func (w *Workspace) Refresh(path string) (*scope.BindingTracker, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	tracker, err := w.analyzer.Analyze(path, source)
	if err != nil {
		return nil, err
	}

	w.cache.Add(path, trackerEntry{modTime: info.ModTime(), tracker: tracker})
	return tracker, nil
}

// analyzeMapped analyzes a file through the memory-mapped read cache. Used
// by bulk scans where the same mapping may also serve snippet reads.
func (w *Workspace) analyzeMapped(path string) (*scope.BindingTracker, error) {
	mf, err := w.files.Get(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	tracker, err := w.analyzer.Analyze(path, mf.Data)
	if err != nil {
		return nil, err
	}

	w.cache.Add(path, trackerEntry{modTime: info.ModTime(), tracker: tracker})
	return tracker, nil
}

// Forget drops a file's snapshot, typically after deletion or rename.
func (w *Workspace) Forget(path string) {
	w.cache.Remove(path)
	// Eviction callback already invalidated the analyzer; calling again
	// for paths added outside the cache is harmless.
	w.analyzer.Invalidate(path)
}

// AnalyzedFiles returns the paths with live snapshots.
func (w *Workspace) AnalyzedFiles() []string {
	return w.analyzer.AnalyzedFiles()
}

// Usages returns usage information for the first binding with the given
// name across all analyzed files.
func (w *Workspace) Usages(name string) (*scope.UsageInfo, error) {
	b := w.analyzer.FindBinding(name)
	if b == nil {
		return nil, fmt.Errorf("binding '%s' not found in workspace", name)
	}
	return w.analyzer.UsageInfoFor(*b), nil
}

// DeadCode returns every analyzed binding with zero usages, graded by
// confidence.
func (w *Workspace) DeadCode() []scope.DeadBinding {
	return w.analyzer.FindDeadCode()
}

// CanSafelyDelete evaluates deletability of the named binding against the
// whole workspace.
func (w *Workspace) CanSafelyDelete(name string) scope.SafeDeleteResult {
	return w.analyzer.CanSafelyDelete(name)
}

// Snippet returns the source bytes for a byte range of an analyzed file,
// served from the memory-mapped cache.
func (w *Workspace) Snippet(path string, startByte, endByte uint32) (string, error) {
	return w.files.FetchCode(path, startByte, endByte)
}

// Stats summarizes workspace state.
func (w *Workspace) Stats() Stats {
	return Stats{
		AnalyzedFiles: w.cache.Len(),
		FileCache:     w.files.Stats(),
	}
}

// Stats contains workspace statistics.
type Stats struct {
	AnalyzedFiles int
	FileCache     util.FileCacheStats
}

// Close releases the file mappings. The workspace must not be used after
// closing.
func (w *Workspace) Close() error {
	w.cache.Purge()
	return w.files.Close()
}
