package refactor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/refract/pkg/parser"
	"github.com/gnana997/refract/pkg/parser/queries"
	"github.com/gnana997/refract/pkg/text"
)

// DeadCodeKind names a category of dead code the analysis can detect.
type DeadCodeKind string

const (
	UnusedFunctions DeadCodeKind = "UnusedFunctions"
	UnusedVariables DeadCodeKind = "UnusedVariables"
	UnusedImports   DeadCodeKind = "UnusedImports"
	UnusedTypes     DeadCodeKind = "UnusedTypes"
	UnusedConstants DeadCodeKind = "UnusedConstants"
	UnreachableCode DeadCodeKind = "UnreachableCode"
	EmptyBlocks     DeadCodeKind = "EmptyBlocks"
	CommentedCode   DeadCodeKind = "CommentedCode"
)

// unusedDefKinds maps the unused-definition categories to their query table
// entries. Unreachable code, empty blocks and commented code have their own
// detectors.
var unusedDefKinds = map[DeadCodeKind]queries.DefKind{
	UnusedFunctions: queries.DefFunctions,
	UnusedVariables: queries.DefVariables,
	UnusedImports:   queries.DefImports,
	UnusedTypes:     queries.DefTypes,
	UnusedConstants: queries.DefConstants,
}

// DeadCodeItem is one finding.
type DeadCodeItem struct {
	Name    string       `json:"name"`
	Kind    DeadCodeKind `json:"kind"`
	File    string       `json:"file"`
	Range   text.Range   `json:"range"`
	Context string       `json:"context"`
}

// DeadCodeSummary counts findings per kind.
type DeadCodeSummary struct {
	Total  int                  `json:"total"`
	ByKind map[DeadCodeKind]int `json:"by_kind"`
}

// DeadCodeReport holds every finding for one analysis run.
type DeadCodeReport struct {
	File    string          `json:"file"`
	Items   []DeadCodeItem  `json:"items"`
	Summary DeadCodeSummary `json:"summary"`
}

// Render formats the report for display.
func (r *DeadCodeReport) Render() string {
	var b strings.Builder
	b.WriteString("Dead Code Analysis Report\n")
	b.WriteString(strings.Repeat("=", 40))
	b.WriteString(fmt.Sprintf("\nTotal: %d item(s)\n\n", r.Summary.Total))

	for _, item := range r.Items {
		if item.File == "" || item.File == r.File {
			b.WriteString(fmt.Sprintf("[%s] %s (line %d): %s\n",
				item.Kind, item.Name, item.Range.Start.Line+1, item.Context))
		} else {
			b.WriteString(fmt.Sprintf("[%s] %s (%s:%d): %s\n",
				item.Kind, item.Name, item.File, item.Range.Start.Line+1, item.Context))
		}
	}
	return b.String()
}

// FindDeadCode scans the target file, and optionally extra paths, for unused
// definitions, unreachable code, empty blocks and commented-out code.
// Identifiers prefixed with underscore are treated as intentionally unused
// and never reported.
type FindDeadCode struct {
	// Include selects the kinds to detect.
	Include []DeadCodeKind
	// SearchPaths are extra directories to analyze.
	SearchPaths []string
	// Recursive descends into subdirectories of search paths.
	Recursive bool
	// ExcludePatterns are glob patterns for paths to skip during search.
	ExcludePatterns []string
	// AutoDelete removes every finding's lines when the operation is applied.
	AutoDelete bool
}

// NewFindDeadCode creates the analysis covering unused functions, variables
// and imports.
func NewFindDeadCode() *FindDeadCode {
	return &FindDeadCode{
		Include:   []DeadCodeKind{UnusedFunctions, UnusedVariables, UnusedImports},
		Recursive: true,
	}
}

// IncludeKinds replaces the detected kinds.
func (op *FindDeadCode) IncludeKinds(kinds ...DeadCodeKind) *FindDeadCode {
	op.Include = kinds
	return op
}

// IncludeAll detects every kind.
func (op *FindDeadCode) IncludeAll() *FindDeadCode {
	op.Include = []DeadCodeKind{
		UnusedFunctions, UnusedVariables, UnusedImports, UnusedTypes,
		UnusedConstants, UnreachableCode, EmptyBlocks, CommentedCode,
	}
	return op
}

// WithSearchPaths adds directories to analyze alongside the target file.
func (op *FindDeadCode) WithSearchPaths(paths ...string) *FindDeadCode {
	op.SearchPaths = append(op.SearchPaths, paths...)
	return op
}

// NonRecursive restricts search paths to their top-level files.
func (op *FindDeadCode) NonRecursive() *FindDeadCode {
	op.Recursive = false
	return op
}

// Exclude adds glob patterns for paths to skip.
func (op *FindDeadCode) Exclude(patterns ...string) *FindDeadCode {
	op.ExcludePatterns = append(op.ExcludePatterns, patterns...)
	return op
}

// WithAutoDelete deletes findings on apply.
func (op *FindDeadCode) WithAutoDelete() *FindDeadCode {
	op.AutoDelete = true
	return op
}

func (op *FindDeadCode) Name() string { return "Find Dead Code" }

func (op *FindDeadCode) Validate(ctx *Context) (ValidationResult, error) {
	if err := ctx.Validate(); err != nil {
		return ValidationResult{}, err
	}
	if len(op.Include) == 0 {
		return Invalid("No dead code kinds selected"), nil
	}
	return Valid(), nil
}

// Analyze runs the detectors over the target file and any search paths and
// returns the full report without editing anything.
func (op *FindDeadCode) Analyze(ctx *Context) (*DeadCodeReport, error) {
	report := &DeadCodeReport{
		File:    ctx.TargetFile,
		Summary: DeadCodeSummary{ByKind: make(map[DeadCodeKind]int)},
	}

	items, err := op.analyzeFile(ctx)
	if err != nil {
		return nil, err
	}
	report.Items = items

	for _, root := range op.SearchPaths {
		external, err := op.analyzePath(ctx, root)
		if err != nil {
			return nil, err
		}
		report.Items = append(report.Items, external...)
	}

	for _, item := range report.Items {
		report.Summary.ByKind[item.Kind]++
	}
	report.Summary.Total = len(report.Items)

	return report, nil
}

func (op *FindDeadCode) Preview(ctx *Context) (*Preview, error) {
	report, err := op.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	preview := NewPreview(fmt.Sprintf("Find dead code (%d item(s))", report.Summary.Total))

	if op.AutoDelete {
		for _, item := range report.Items {
			file := item.File
			if file == "" {
				file = ctx.TargetFile
			}
			preview.AddEdit(text.Delete(file, fullLines(item.Range)))
		}
	}

	preview.Diff = report.Render()
	return preview, nil
}

func (op *FindDeadCode) Apply(ctx *Context) (*Result, error) {
	report, err := op.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	if !op.AutoDelete {
		return Success(fmt.Sprintf("Found %d dead code item(s)\n%s",
			report.Summary.Total, report.Render())), nil
	}

	// Auto-delete only edits the target buffer; findings in search paths are
	// reported but left in place.
	var edits []text.Edit
	for _, item := range report.Items {
		if item.File != "" && item.File != ctx.TargetFile {
			continue
		}
		edits = append(edits, text.Delete(ctx.TargetFile, fullLines(item.Range)))
	}

	newSource := text.ApplyEdits(ctx.Source, edits)
	if err := os.WriteFile(ctx.TargetFile, []byte(newSource), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", ctx.TargetFile, err)
	}
	ctx.Source = newSource

	return Success(fmt.Sprintf("Deleted %d dead code item(s)", len(edits))).
		WithEdits(edits), nil
}

// analyzeFile runs every selected detector against one context's buffer.
func (op *FindDeadCode) analyzeFile(ctx *Context) ([]DeadCodeItem, error) {
	var items []DeadCodeItem

	for _, kind := range op.Include {
		var (
			found []DeadCodeItem
			err   error
		)
		switch kind {
		case UnreachableCode:
			found, err = findUnreachableCode(ctx)
		case EmptyBlocks:
			found, err = findEmptyBlocks(ctx)
		case CommentedCode:
			found, err = findCommentedCode(ctx)
		default:
			found, err = findUnusedDefinitions(ctx, kind)
		}
		if err != nil {
			return nil, err
		}
		items = append(items, found...)
	}

	return items, nil
}

// analyzePath analyzes every parseable file under one search path.
func (op *FindDeadCode) analyzePath(ctx *Context, root string) ([]DeadCodeItem, error) {
	var items []DeadCodeItem

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && !op.Recursive {
				return fs.SkipDir
			}
			return nil
		}
		if sameFile(path, ctx.TargetFile) || op.excluded(root, path) {
			return nil
		}

		lang := parser.DetectLanguage(path)
		if !lang.HasGrammar() {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}

		sub := NewContext(ctx.WorkspaceRoot, path, ctx.parsers, ctx.queries, ctx.logger).
			WithSource(string(data))
		found, err := op.analyzeFile(sub)
		if err != nil {
			ctx.logger.Warn("skipping file during dead code analysis",
				"file", path, "error", err)
			return nil
		}

		for i := range found {
			found[i].File = path
		}
		items = append(items, found...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", root, err)
	}

	return items, nil
}

// excluded reports whether a path matches any exclude pattern, tested against
// the path relative to the search root.
func (op *FindDeadCode) excluded(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range op.ExcludePatterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// findUnusedDefinitions reports definitions of one category with no
// references outside their own node.
func findUnusedDefinitions(ctx *Context, kind DeadCodeKind) ([]DeadCodeItem, error) {
	defKind, ok := unusedDefKinds[kind]
	if !ok {
		return nil, nil
	}

	qs, err := ctx.querySet()
	if err != nil {
		return nil, err
	}
	query, ok := qs.Definitions[defKind]
	if !ok || query == "" {
		return nil, nil
	}

	matches, err := ctx.execQuery(query)
	if err != nil {
		// A category whose query the grammar rejects is disabled, not a
		// failure of the whole analysis.
		if errors.Is(err, queries.ErrQueryCompile) {
			ctx.logger.Warn("dead code category disabled",
				"kind", string(kind), "error", err)
			return nil, nil
		}
		return nil, err
	}

	var items []DeadCodeItem
	for _, m := range matches {
		name := m.CaptureNamed("name")
		def := m.CaptureNamed("def")
		if name == nil || def == nil {
			continue
		}
		if strings.HasPrefix(name.Text, "_") {
			continue
		}
		if kind == UnusedFunctions && isEntryPoint(ctx.Language(), name.Text) {
			continue
		}

		defRange := locRange(def.Location)
		used, err := usedOutside(ctx, name.Text, defRange)
		if err != nil {
			return nil, err
		}
		if used {
			continue
		}

		items = append(items, DeadCodeItem{
			Name:    name.Text,
			Kind:    kind,
			Range:   defRange,
			Context: deadCodeContext(ctx.LineAt(defRange.Start.Line)),
		})
	}
	return items, nil
}

// isEntryPoint reports whether a function is the language's program entry
// point, invoked by the runtime rather than by code.
func isEntryPoint(lang parser.Language, name string) bool {
	switch lang {
	case parser.LanguageRust, parser.LanguageGo, parser.LanguageJava:
		return name == "main"
	case parser.LanguageCSharp:
		return name == "Main"
	}
	return false
}

// usedOutside reports whether any identifier occurrence of name falls outside
// the definition's lines. Occurrences inside the definition do not count, so
// a function whose only caller is itself is still reported dead.
func usedOutside(ctx *Context, name string, defRange text.Range) (bool, error) {
	occurrences, err := findIdentifierOccurrences(ctx, name)
	if err != nil {
		return false, err
	}
	for _, r := range occurrences {
		if r.Start.Line < defRange.Start.Line || r.Start.Line > defRange.End.Line {
			return true, nil
		}
	}
	return false, nil
}

// findUnreachableCode flags statements following an unconditional return
// inside the same block.
func findUnreachableCode(ctx *Context) ([]DeadCodeItem, error) {
	qs, err := ctx.querySet()
	if err != nil {
		return nil, err
	}
	if qs.Blocks == "" {
		return nil, nil
	}

	matches, err := ctx.execQuery(qs.Blocks)
	if err != nil {
		return nil, err
	}

	var items []DeadCodeItem
	for _, m := range matches {
		block := m.CaptureNamed("block")
		if block == nil {
			continue
		}

		blockRange := locRange(block.Location)
		lines := strings.Split(block.Text, "\n")
		returned := false
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			if returned && trimmed != "" && trimmed != "}" && trimmed != "end" &&
				!strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "#") {
				lineNo := blockRange.Start.Line + uint32(i)
				items = append(items, DeadCodeItem{
					Name: "unreachable",
					Kind: UnreachableCode,
					Range: text.Range{
						Start: text.Position{Line: lineNo},
						End:   text.Position{Line: lineNo, Character: uint32(len(line))},
					},
					Context: deadCodeContext(trimmed),
				})
				break
			}
			if trimmed == "return" || trimmed == "return;" ||
				strings.HasPrefix(trimmed, "return ") {
				returned = true
			}
		}
	}
	return items, nil
}

// findEmptyBlocks flags blocks whose body is empty, a lone pass statement, or
// comments only.
func findEmptyBlocks(ctx *Context) ([]DeadCodeItem, error) {
	qs, err := ctx.querySet()
	if err != nil {
		return nil, err
	}
	if qs.Blocks == "" {
		return nil, nil
	}

	matches, err := ctx.execQuery(qs.Blocks)
	if err != nil {
		return nil, err
	}

	var items []DeadCodeItem
	for _, m := range matches {
		block := m.CaptureNamed("block")
		if block == nil {
			continue
		}
		if !isEmptyBlock(block.Text) {
			continue
		}

		r := locRange(block.Location)
		items = append(items, DeadCodeItem{
			Name:    "block",
			Kind:    EmptyBlocks,
			Range:   r,
			Context: deadCodeContext(ctx.LineAt(r.Start.Line)),
		})
	}
	return items, nil
}

func isEmptyBlock(body string) bool {
	inner := strings.TrimSpace(body)
	inner = strings.TrimPrefix(inner, "{")
	inner = strings.TrimSuffix(inner, "}")
	inner = strings.TrimSpace(inner)

	if inner == "" || inner == "pass" {
		return true
	}

	for _, line := range strings.Split(inner, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "#") {
			return false
		}
	}
	return true
}

// codePatterns are statement prefixes that mark a comment as commented-out
// code rather than prose.
var codePatterns = []string{
	"fn ", "let ", "const ", "use ", "impl ", "struct ", "enum ",
	"function ", "var ", "import ", "export ", "class ",
	"def ", "if ", "for ", "while ", "return ",
}

// findCommentedCode flags comments whose content looks like code.
func findCommentedCode(ctx *Context) ([]DeadCodeItem, error) {
	qs, err := ctx.querySet()
	if err != nil {
		return nil, err
	}
	if qs.Comments == "" {
		return nil, nil
	}

	matches, err := ctx.execQuery(qs.Comments)
	if err != nil {
		return nil, err
	}

	var items []DeadCodeItem
	for _, m := range matches {
		comment := m.CaptureNamed("comment")
		if comment == nil {
			continue
		}

		content := stripCommentMarkers(comment.Text)
		if !looksLikeCode(content) {
			continue
		}

		r := locRange(comment.Location)
		items = append(items, DeadCodeItem{
			Name:    "comment",
			Kind:    CommentedCode,
			Range:   r,
			Context: deadCodeContext(content),
		})
	}
	return items, nil
}

func stripCommentMarkers(comment string) string {
	s := strings.TrimSpace(comment)
	for _, prefix := range []string{"///", "//!", "//", "#", "/*"} {
		if trimmed, ok := strings.CutPrefix(s, prefix); ok {
			s = trimmed
			break
		}
	}
	s = strings.TrimSuffix(s, "*/")
	return strings.TrimSpace(s)
}

// looksLikeCode applies the commented-code heuristic: a statement prefix,
// balanced call or block punctuation, or a trailing semicolon, on content
// long enough to not be prose shorthand.
func looksLikeCode(content string) bool {
	if len(content) <= 10 {
		return false
	}

	for _, pattern := range codePatterns {
		if strings.HasPrefix(content, pattern) {
			return true
		}
	}
	if strings.Contains(content, "(") && strings.Contains(content, ")") {
		return true
	}
	if strings.Contains(content, "{") && strings.Contains(content, "}") {
		return true
	}
	return strings.HasSuffix(content, ";")
}

// deadCodeContext trims and shortens a context line for the report.
func deadCodeContext(line string) string {
	s := strings.TrimSpace(line)
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}
