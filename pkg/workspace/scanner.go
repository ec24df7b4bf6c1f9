package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/refract/pkg/util"
)

// Scanner analyzes every matching file under the workspace root in
// parallel: discover files against the include/exclude globs, then fan the
// list out over a worker pool that feeds the analyzer.
type Scanner struct {
	ws     *Workspace
	logger *slog.Logger
}

// NewScanner creates a scanner over a workspace.
func NewScanner(ws *Workspace, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{ws: ws, logger: logger}
}

// Scan discovers and analyzes all matching files, returning scan
// statistics. The progress callback, if non-nil, is invoked once per
// analyzed file.
func (s *Scanner) Scan(options ScanOptions, progress ProgressCallback) (*ScanStats, error) {
	startTime := time.Now()
	stats := &ScanStats{
		StartTime: startTime,
		Errors:    make([]FileError, 0),
	}

	s.logger.Info("starting workspace scan", "root", s.ws.Root())

	discoveryStart := time.Now()
	files, err := s.discoverFiles(options)
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}
	stats.FilesDiscovered = len(files)
	stats.DiscoveryTimeMs = time.Since(discoveryStart).Milliseconds()

	s.logger.Info("file discovery complete",
		"files_found", len(files),
		"duration_ms", stats.DiscoveryTimeMs)

	if len(files) == 0 {
		s.logger.Warn("no files matched scan patterns")
		stats.EndTime = time.Now()
		stats.TotalTimeMs = time.Since(startTime).Milliseconds()
		return stats, nil
	}

	analysisStart := time.Now()
	if err := s.analyzeParallel(files, stats, progress); err != nil {
		return nil, fmt.Errorf("file analysis failed: %w", err)
	}
	stats.AnalysisTimeMs = time.Since(analysisStart).Milliseconds()

	stats.EndTime = time.Now()
	stats.TotalTimeMs = time.Since(startTime).Milliseconds()

	if stats.FilesAnalyzed > 0 && stats.AnalysisTimeMs > 0 {
		stats.FilesPerSecond = float64(stats.FilesAnalyzed) / (float64(stats.AnalysisTimeMs) / 1000.0)
	}
	if stats.FilesDiscovered > 0 {
		stats.SuccessRate = float64(stats.FilesAnalyzed) / float64(stats.FilesDiscovered)
	}

	s.logger.Info("workspace scan complete",
		"files_analyzed", stats.FilesAnalyzed,
		"files_failed", stats.FilesFailed,
		"bindings_found", stats.BindingsFound,
		"duration_ms", stats.TotalTimeMs)

	return stats, nil
}

// discoverFiles walks the workspace root and collects files matching the
// include patterns, skipping excluded directories entirely.
func (s *Scanner) discoverFiles(options ScanOptions) ([]string, error) {
	for _, pattern := range options.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range options.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}

	var files []string
	root := s.ws.Root()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("walk error", "path", path, "error", err)
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		for _, pattern := range options.Exclude {
			matched, _ := doublestar.PathMatch(pattern, relPath)
			if matched {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			return nil
		}

		if len(options.Include) > 0 {
			matched := false
			for _, pattern := range options.Include {
				if m, _ := doublestar.PathMatch(pattern, relPath); m {
					matched = true
					break
				}
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// analyzeParallel runs the file list through a worker pool and folds the
// results into stats. The result collector starts before submission so the
// submission loop cannot deadlock against a full jobs channel.
func (s *Scanner) analyzeParallel(files []string, stats *ScanStats, progress ProgressCallback) error {
	totalFiles := len(files)

	numWorkers := util.GetOptimalPoolSize()
	stats.WorkerCount = numWorkers

	pool := NewWorkerPool(numWorkers, s.ws, s.logger)
	pool.Start()
	defer pool.Stop()

	analyzed := atomic.Int32{}
	failed := atomic.Int32{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)

		for {
			select {
			case <-ctx.Done():
				return

			case result, ok := <-pool.Results():
				if !ok {
					return
				}

				stats.BindingsFound += result.Tracker.Len()
				stats.FilesAnalyzed++

				count := analyzed.Add(1)
				if progress != nil {
					progress(int(count), totalFiles, result.FilePath)
				}

				if int(count)+int(failed.Load()) >= totalFiles {
					cancel()
					return
				}

			case fileErr, ok := <-pool.Errors():
				if !ok {
					return
				}

				stats.Errors = append(stats.Errors, fileErr)
				stats.FilesFailed++

				s.logger.Warn("file analysis failed",
					"file", fileErr.FilePath,
					"error", fileErr.Error)

				count := failed.Add(1)
				if int(analyzed.Load())+int(count) >= totalFiles {
					cancel()
					return
				}
			}
		}
	}()

	for i, file := range files {
		if err := pool.Submit(FileJob{FilePath: file, JobID: i}); err != nil {
			return fmt.Errorf("failed to submit job for %s: %w", file, err)
		}
	}
	pool.FinishSubmitting()

	<-done
	return nil
}
