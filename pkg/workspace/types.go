package workspace

import "time"

// ScanOptions configures workspace scanning behavior.
type ScanOptions struct {
	// Include patterns (glob syntax, e.g. "**/*.rs"). Empty means the
	// default source extensions.
	Include []string

	// Exclude patterns (glob syntax, e.g. "target/**"). Matching
	// directories are skipped entirely.
	Exclude []string
}

// DefaultScanOptions returns scan options covering the extensions with
// bundled grammars, with the usual build and dependency directories
// excluded. Languages that are detected but carry no grammar (Go, Java,
// C#, Ruby) are left out so a default scan never fails on them.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Include: []string{
			"**/*.rs",
			"**/*.ts",
			"**/*.tsx",
			"**/*.js",
			"**/*.jsx",
			"**/*.mjs",
			"**/*.cjs",
			"**/*.py",
			"**/*.pyi",
		},
		Exclude: []string{
			".git/**",
			"node_modules/**",
			"target/**",
			"dist/**",
			"build/**",
			"vendor/**",
			"__pycache__/**",
			"coverage/**",
			".next/**",
		},
	}
}

// ScanStats contains statistics about a workspace scan.
type ScanStats struct {
	// FilesDiscovered is the total number of files matching the patterns.
	FilesDiscovered int

	// FilesAnalyzed is the number of files successfully analyzed.
	FilesAnalyzed int

	// FilesFailed is the number of files that failed to analyze.
	FilesFailed int

	// BindingsFound is the total number of bindings extracted.
	BindingsFound int

	// DiscoveryTimeMs is time spent discovering files.
	DiscoveryTimeMs int64

	// AnalysisTimeMs is time spent analyzing files.
	AnalysisTimeMs int64

	// TotalTimeMs is the total scan duration.
	TotalTimeMs int64

	// FilesPerSecond is the analysis throughput.
	FilesPerSecond float64

	// SuccessRate is the fraction of discovered files analyzed (0.0 - 1.0).
	SuccessRate float64

	// WorkerCount is the number of workers used.
	WorkerCount int

	// Errors contains per-file failures, if any.
	Errors []FileError

	// StartTime is when the scan started.
	StartTime time.Time

	// EndTime is when the scan completed.
	EndTime time.Time
}

// FileError represents an error that occurred while processing a file.
type FileError struct {
	FilePath string
	Error    error
}

// ProgressCallback is called once per file during a workspace scan.
type ProgressCallback func(analyzed, total int, currentFile string)

// WatchOptions configures file watching behavior.
type WatchOptions struct {
	// DebounceMs groups rapid changes to the same file into a single
	// re-analysis. Default: 200ms.
	DebounceMs int

	// IgnorePatterns are base-name patterns to skip during watching,
	// in addition to the built-in build directory exclusions.
	IgnorePatterns []string
}

// DefaultWatchOptions returns recommended watch options.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		DebounceMs: 200,
		IgnorePatterns: []string{
			"*.swp",
			"*.tmp",
			"*~",
		},
	}
}
