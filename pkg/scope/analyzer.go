package scope

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/refract/pkg/parser"
	"github.com/gnana997/refract/pkg/parser/queries"
	"github.com/gnana997/refract/pkg/text"
)

// Analyzer extracts bindings and identifier references from source files and
// answers usage queries across everything analyzed so far.
//
// The API is an explicit two-phase snapshot: Analyze builds and caches an
// immutable BindingTracker per file; nothing is invalidated automatically.
// Callers that mutate a file must call Invalidate (or Analyze again) before
// asking for fresh usage data.
//
// Safe for concurrent use; workspace scans call Analyze from a worker pool.
type Analyzer struct {
	parsers *parser.ParserManager
	queries *queries.QueryManager
	logger  *slog.Logger

	mu         sync.RWMutex
	trackers   map[string]*BindingTracker
	refsByFile map[string][]Reference
}

// NewAnalyzer creates an Analyzer on top of the shared parser and query
// managers.
func NewAnalyzer(pm *parser.ParserManager, qm *queries.QueryManager, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Analyzer{
		parsers:    pm,
		queries:    qm,
		logger:     logger,
		trackers:   make(map[string]*BindingTracker),
		refsByFile: make(map[string][]Reference),
	}
}

// Analyze parses one file, extracts its bindings and identifier references,
// and caches the resulting tracker. Re-analyzing a path replaces the
// previous snapshot.
func (a *Analyzer) Analyze(path string, source []byte) (*BindingTracker, error) {
	lang := parser.DetectLanguage(path)
	if lang == parser.LanguageUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", path)
	}

	qs, ok := queries.Set(lang)
	if !ok {
		return nil, fmt.Errorf("no query table for language: %s", lang)
	}

	isTSX := parser.IsTSXFile(path)
	tree, err := a.parsers.Parse(source, lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()

	tracker := NewBindingTracker(path)

	for _, bq := range qs.Bindings {
		if err := a.extractBindings(tree, source, path, lang, isTSX, bq, tracker); err != nil {
			return nil, err
		}
	}

	refs, err := a.extractReferences(tree, source, path, lang, isTSX, qs)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.trackers[path] = tracker
	a.refsByFile[path] = refs
	a.mu.Unlock()

	a.logger.Debug("analyzed file",
		"file", path,
		"language", lang.String(),
		"bindings", tracker.Len(),
		"references", len(refs))

	return tracker, nil
}

// extractBindings runs one binding query and records its matches.
func (a *Analyzer) extractBindings(
	tree *ts.Tree,
	source []byte,
	path string,
	lang parser.Language,
	isTSX bool,
	bq queries.BindingQuery,
	tracker *BindingTracker,
) error {
	query, err := a.queries.Get(lang, isTSX, bq.Query)
	if err != nil {
		return fmt.Errorf("failed to compile binding query for %s: %w", lang, err)
	}

	matches, err := a.queries.Execute(tree, query, source)
	if err != nil {
		return fmt.Errorf("failed to execute binding query: %w", err)
	}

	kind := ParseBindingKind(bq.Kind)

	for _, m := range matches {
		nameCap := m.CaptureNamed("name")
		defCap := m.CaptureNamed("def")
		if nameCap == nil || defCap == nil {
			continue
		}

		visText := ""
		if visCap := m.CaptureNamed("vis"); visCap != nil {
			visText = visCap.Text
		}

		binding := NewBinding(nameCap.Text, kind, path, locationRange(defCap.Location))
		if inferExported(lang, nameCap.Text, visText) {
			binding = binding.Exported()
		}
		tracker.Add(binding)
	}

	return nil
}

// extractReferences records every identifier occurrence as a Reference with
// a lightly inferred kind.
func (a *Analyzer) extractReferences(
	tree *ts.Tree,
	source []byte,
	path string,
	lang parser.Language,
	isTSX bool,
	qs queries.QuerySet,
) ([]Reference, error) {
	query, err := a.queries.Get(lang, isTSX, qs.Identifiers)
	if err != nil {
		return nil, fmt.Errorf("failed to compile identifier query for %s: %w", lang, err)
	}

	matches, err := a.queries.Execute(tree, query, source)
	if err != nil {
		return nil, fmt.Errorf("failed to execute identifier query: %w", err)
	}

	var refs []Reference
	for _, m := range matches {
		for _, cap := range m.Captures {
			refs = append(refs, Reference{
				Name:  cap.Text,
				File:  path,
				Range: locationRange(cap.Location),
				Kind:  inferReferenceKind(cap.Node),
			})
		}
	}
	return refs, nil
}

// Tracker returns the cached tracker for a path, or nil if not analyzed.
func (a *Analyzer) Tracker(path string) *BindingTracker {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.trackers[path]
}

// AnalyzedFiles returns the paths with cached snapshots.
func (a *Analyzer) AnalyzedFiles() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	files := make([]string, 0, len(a.trackers))
	for f := range a.trackers {
		files = append(files, f)
	}
	return files
}

// Invalidate drops the cached snapshot for a path.
func (a *Analyzer) Invalidate(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.trackers, path)
	delete(a.refsByFile, path)
}

// FindBinding returns the first binding with the given name across all
// analyzed files, or nil.
func (a *Analyzer) FindBinding(name string) *Binding {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, tracker := range a.trackers {
		if b := tracker.Find(name); b != nil {
			return b
		}
	}
	return nil
}

// FindAllBindings returns every binding with the given name across all
// analyzed files.
func (a *Analyzer) FindAllBindings(name string) []Binding {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []Binding
	for _, tracker := range a.trackers {
		out = append(out, tracker.FindAll(name)...)
	}
	return out
}

// FindUsages returns every reference matching the binding's name across all
// analyzed files, excluding occurrences inside the definition range itself.
// Matching is name-only; each returned reference carries a resolution
// confidence.
func (a *Analyzer) FindUsages(b Binding) []Reference {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []Reference
	for _, refs := range a.refsByFile {
		for _, ref := range refs {
			if ref.Name != b.Name {
				continue
			}
			if ref.File == b.File && b.DefinitionRange.ContainsLine(ref.Range.Start.Line) {
				continue
			}
			ref.Confidence = ScoreCandidate(ref, b)
			out = append(out, ref)
		}
	}
	return out
}

// UsageInfoFor builds a UsageInfo for a binding from the current snapshots.
func (a *Analyzer) UsageInfoFor(b Binding) *UsageInfo {
	info := NewUsageInfo(b)
	for _, ref := range a.FindUsages(b) {
		info.AddUsage(ref)
	}
	return info
}

// FindDeadCode returns every analyzed binding with zero usages and no
// privacy-convention marker, graded by confidence.
func (a *Analyzer) FindDeadCode() []DeadBinding {
	a.mu.RLock()
	var all []Binding
	for _, tracker := range a.trackers {
		all = append(all, tracker.All()...)
	}
	a.mu.RUnlock()

	var dead []DeadBinding
	for _, b := range all {
		info := a.UsageInfoFor(b)
		if info.IsDead() {
			dead = append(dead, DeadBinding{
				Binding:    b,
				Confidence: DeadCodeConfidence(b),
			})
		}
	}
	return dead
}

// CanSafelyDelete evaluates deletability of the first binding with the given
// name.
func (a *Analyzer) CanSafelyDelete(name string) SafeDeleteResult {
	b := a.FindBinding(name)
	if b == nil {
		return SafeDeleteResult{
			CanDelete: false,
			Reason:    fmt.Sprintf("Binding '%s' not found", name),
		}
	}
	return CheckSafeDelete(a.UsageInfoFor(*b))
}

// FilesDependingOn returns the files (other than the binding's own) that
// reference the binding.
func (a *Analyzer) FilesDependingOn(b Binding) []string {
	info := a.UsageInfoFor(b)
	var out []string
	for _, f := range info.UsedInFiles() {
		if f != b.File {
			out = append(out, f)
		}
	}
	return out
}

// inferExported applies the per-language visibility convention.
func inferExported(lang parser.Language, name, visText string) bool {
	switch lang {
	case parser.LanguageRust:
		return strings.HasPrefix(visText, "pub")
	case parser.LanguageTypeScript, parser.LanguageJavaScript:
		// Binding queries only match export statements.
		return true
	case parser.LanguagePython, parser.LanguageRuby:
		return !strings.HasPrefix(name, "_")
	case parser.LanguageGo:
		for _, r := range name {
			return unicode.IsUpper(r)
		}
		return false
	case parser.LanguageJava, parser.LanguageCSharp:
		return strings.Contains(visText, "public")
	default:
		return false
	}
}

// inferReferenceKind guesses how an identifier occurrence is used from its
// parent node.
func inferReferenceKind(node *ts.Node) ReferenceKind {
	parent := node.Parent()
	if parent == nil {
		return RefRead
	}

	kind := parent.Kind()
	switch {
	case strings.Contains(kind, "call"):
		return RefCall
	case strings.Contains(kind, "type"):
		return RefTypeUse
	case strings.Contains(kind, "assignment"):
		return RefWrite
	default:
		return RefRead
	}
}

// locationRange converts a query Location (1-based line/column) to a
// zero-indexed text.Range.
func locationRange(loc queries.Location) text.Range {
	return text.Range{
		Start: text.Position{Line: loc.StartLine - 1, Character: loc.StartColumn - 1},
		End:   text.Position{Line: loc.EndLine - 1, Character: loc.EndColumn - 1},
	}
}
