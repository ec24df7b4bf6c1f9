// Package util provides the shared infrastructure pieces: structured
// logging, a memory-mapped file cache, and worker pool sizing.
package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
)

// FileCache provides read access to source files through memory mappings.
// Mappings are created lazily on first access and kept until Close; byte
// ranges can be sliced out without reading whole files. Safe for
// concurrent use.
type FileCache interface {
	// Get returns the mapped file, loading it on first access.
	Get(filePath string) (*MappedFile, error)

	// FetchCode returns the source text in [startByte, endByte).
	// The range (0, 0) means the whole file.
	FetchCode(filePath string, startByte, endByte uint32) (string, error)

	// Size returns the number of currently cached files.
	Size() int

	// Stats returns current cache metrics.
	Stats() FileCacheStats

	// Close unmaps every file and releases descriptors.
	Close() error
}

// FileCacheConfig bounds the cache. Zero values mean unlimited.
type FileCacheConfig struct {
	// MaxFiles caps the number of cached files; Get fails once reached.
	MaxFiles int

	// MaxMemoryMB caps total mapped virtual memory. Only accessed pages
	// occupy physical RAM, so this bounds address space, not RSS.
	MaxMemoryMB int

	// EnableMetrics toggles hit/miss counting.
	EnableMetrics bool

	// Logger for mmap fallback warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns limits suitable for repos up to a few
// tens of thousands of files.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		MaxFiles:      10000,
		MaxMemoryMB:   2048,
		EnableMetrics: true,
	}
}

// UnboundedFileCacheConfig returns a config with no limits, for tests and
// small workspaces.
func UnboundedFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{EnableMetrics: true}
}

// MappedFile is one cached file. Data can be sliced directly; it is nil
// for empty files. File is nil when the entry came from the read fallback.
type MappedFile struct {
	Path     string
	Data     mmap.MMap
	File     *os.File
	Size     int64
	MappedAt time.Time
}

// FileCacheStats reports cache behavior. TotalMappedMB counts virtual
// memory, not resident pages.
type FileCacheStats struct {
	FilesLoaded   int64
	FilesCached   int
	CacheHits     int64
	CacheMisses   int64
	MmapFailures  int64
	TotalMappedMB float64
}

// NewFileCache builds a FileCache; a nil config gets the defaults.
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &fileCache{
		config:   config,
		mapped:   make(map[string]*MappedFile),
		fallback: make(map[string][]byte),
		logger:   config.Logger,
	}
}

// fileCache holds two maps: mmap-backed entries and plain byte slices for
// files the OS refused to map. mu guards both; statsMu guards the counters
// separately so metric updates don't contend with lookups.
type fileCache struct {
	config *FileCacheConfig
	logger *slog.Logger

	mapped   map[string]*MappedFile
	fallback map[string][]byte
	mu       sync.RWMutex

	stats   FileCacheStats
	statsMu sync.Mutex
}

func (fc *fileCache) Get(filePath string) (*MappedFile, error) {
	fc.mu.RLock()
	if mf, ok := fc.mapped[filePath]; ok {
		fc.mu.RUnlock()
		fc.recordHit()
		return mf, nil
	}
	if data, ok := fc.fallback[filePath]; ok {
		fc.mu.RUnlock()
		fc.recordHit()
		return wrapFallback(filePath, data), nil
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	defer fc.mu.Unlock()

	// Another goroutine may have loaded it while we waited.
	if mf, ok := fc.mapped[filePath]; ok {
		fc.recordHit()
		return mf, nil
	}
	if data, ok := fc.fallback[filePath]; ok {
		fc.recordHit()
		return wrapFallback(filePath, data), nil
	}

	var fileSize int64
	if fc.config.MaxMemoryMB > 0 {
		stat, err := os.Stat(filePath)
		if err != nil {
			fc.recordMiss()
			return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
		}
		fileSize = stat.Size()
	}

	if err := fc.checkLimits(fileSize); err != nil {
		fc.recordMiss()
		return nil, err
	}

	mf, err := fc.loadFile(filePath)
	if err != nil {
		fc.recordMiss()
		return nil, err
	}

	fc.mapped[filePath] = mf
	fc.recordLoad()
	return mf, nil
}

// checkLimits rejects a load that would push the cache past its bounds.
// Caller holds mu.
func (fc *fileCache) checkLimits(newFileSize int64) error {
	if fc.config.MaxFiles > 0 {
		current := len(fc.mapped) + len(fc.fallback)
		if current >= fc.config.MaxFiles {
			return fmt.Errorf("file cache limit reached: %d files (limit %d)",
				current, fc.config.MaxFiles)
		}
	}

	if fc.config.MaxMemoryMB > 0 && newFileSize > 0 {
		currentMB := fc.mappedMBLocked()
		afterMB := currentMB + float64(newFileSize)/(1024*1024)
		if afterMB >= float64(fc.config.MaxMemoryMB) {
			return fmt.Errorf("file cache memory limit reached: %.2f MB would exceed %d MB",
				afterMB, fc.config.MaxMemoryMB)
		}
	}

	return nil
}

// loadFile maps the file read-only, falling back to os.ReadFile when mmap
// fails. Caller holds mu.
func (fc *fileCache) loadFile(filePath string) (*MappedFile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}

	// Zero-byte files cannot be mapped.
	if stat.Size() == 0 {
		return &MappedFile{Path: filePath, File: file, MappedAt: time.Now()}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		fc.logger.Warn("mmap failed, using read fallback",
			"file", filePath,
			"size", stat.Size(),
			"error", err)

		raw, readErr := os.ReadFile(filePath)
		if readErr != nil {
			file.Close()
			return nil, fmt.Errorf("mmap and read fallback both failed for %q: mmap: %v, read: %w",
				filePath, err, readErr)
		}

		fc.fallback[filePath] = raw
		fc.recordMmapFailure()
		file.Close()
		return wrapFallback(filePath, raw), nil
	}

	return &MappedFile{
		Path:     filePath,
		Data:     data,
		File:     file,
		Size:     stat.Size(),
		MappedAt: time.Now(),
	}, nil
}

// wrapFallback presents a plain byte slice through the MappedFile shape.
func wrapFallback(filePath string, data []byte) *MappedFile {
	return &MappedFile{
		Path:     filePath,
		Data:     mmap.MMap(data),
		Size:     int64(len(data)),
		MappedAt: time.Now(),
	}
}

func (fc *fileCache) FetchCode(filePath string, startByte, endByte uint32) (string, error) {
	mf, err := fc.Get(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to get file %q: %w", filePath, err)
	}

	if len(mf.Data) == 0 {
		return "", nil
	}

	if startByte == 0 && endByte == 0 {
		endByte = uint32(len(mf.Data))
	} else if endByte <= startByte {
		return "", fmt.Errorf("invalid byte range: endByte (%d) <= startByte (%d)",
			endByte, startByte)
	}

	if endByte > uint32(len(mf.Data)) {
		return "", fmt.Errorf("invalid byte range: endByte (%d) > file size (%d) for %q",
			endByte, len(mf.Data), filePath)
	}

	return string(mf.Data[startByte:endByte]), nil
}

func (fc *fileCache) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.mapped) + len(fc.fallback)
}

func (fc *fileCache) Stats() FileCacheStats {
	fc.mu.RLock()
	cached := len(fc.mapped) + len(fc.fallback)
	mappedMB := fc.mappedMBLocked()
	fc.mu.RUnlock()

	fc.statsMu.Lock()
	defer fc.statsMu.Unlock()

	stats := fc.stats
	stats.FilesCached = cached
	stats.TotalMappedMB = mappedMB
	return stats
}

// mappedMBLocked sums cached sizes. Caller holds mu.
func (fc *fileCache) mappedMBLocked() float64 {
	total := int64(0)
	for _, mf := range fc.mapped {
		total += mf.Size
	}
	for _, data := range fc.fallback {
		total += int64(len(data))
	}
	return float64(total) / (1024 * 1024)
}

func (fc *fileCache) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var errs []error
	for path, mf := range fc.mapped {
		if mf.Data != nil {
			if err := mf.Data.Unmap(); err != nil {
				fc.logger.Warn("failed to unmap file", "path", path, "error", err)
				errs = append(errs, fmt.Errorf("unmap %q: %w", path, err))
			}
		}
		if mf.File != nil {
			if err := mf.File.Close(); err != nil {
				fc.logger.Warn("failed to close file", "path", path, "error", err)
				errs = append(errs, fmt.Errorf("close %q: %w", path, err))
			}
		}
	}

	fc.mapped = make(map[string]*MappedFile)
	fc.fallback = make(map[string][]byte)

	fc.logger.Info("file cache closed",
		"files_loaded", fc.stats.FilesLoaded,
		"cache_hits", fc.stats.CacheHits,
		"cache_misses", fc.stats.CacheMisses,
		"mmap_failures", fc.stats.MmapFailures)

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}

func (fc *fileCache) recordHit() {
	if !fc.config.EnableMetrics {
		return
	}
	fc.statsMu.Lock()
	fc.stats.CacheHits++
	fc.statsMu.Unlock()
}

func (fc *fileCache) recordMiss() {
	if !fc.config.EnableMetrics {
		return
	}
	fc.statsMu.Lock()
	fc.stats.CacheMisses++
	fc.statsMu.Unlock()
}

func (fc *fileCache) recordLoad() {
	if !fc.config.EnableMetrics {
		return
	}
	fc.statsMu.Lock()
	fc.stats.FilesLoaded++
	fc.statsMu.Unlock()
}

func (fc *fileCache) recordMmapFailure() {
	if !fc.config.EnableMetrics {
		return
	}
	fc.statsMu.Lock()
	fc.stats.MmapFailures++
	fc.statsMu.Unlock()
}
