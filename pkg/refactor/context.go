// Package refactor implements structured refactoring operations with a
// validate / preview / apply lifecycle. Every operation works against a
// Context holding one target file's buffer and a selection, produces a
// Preview of text edits, and applies them through the shared descending-order
// edit engine in pkg/text.
package refactor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gnana997/refract/pkg/parser"
	"github.com/gnana997/refract/pkg/parser/queries"
	"github.com/gnana997/refract/pkg/text"
)

// Context carries everything an operation needs: the workspace root, the
// target file, its source buffer, and the cursor selection. The parser and
// query managers are shared process-wide and injected at construction.
type Context struct {
	WorkspaceRoot string
	TargetFile    string
	Selection     text.Range
	Source        string

	parsers *parser.ParserManager
	queries *queries.QueryManager
	logger  *slog.Logger
}

// NewContext creates a context for one target file. Source starts empty; use
// WithSource or LoadSource before running an operation.
func NewContext(workspaceRoot, targetFile string, pm *parser.ParserManager, qm *queries.QueryManager, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}

	return &Context{
		WorkspaceRoot: workspaceRoot,
		TargetFile:    targetFile,
		parsers:       pm,
		queries:       qm,
		logger:        logger,
	}
}

// WithSelection sets the selection from line/character coordinates.
func (c *Context) WithSelection(startLine, startChar, endLine, endChar uint32) *Context {
	c.Selection = text.NewRange(startLine, startChar, endLine, endChar)
	return c
}

// WithRange sets the selection range directly.
func (c *Context) WithRange(r text.Range) *Context {
	c.Selection = r
	return c
}

// WithSource sets the source buffer.
func (c *Context) WithSource(source string) *Context {
	c.Source = source
	return c
}

// LoadSource reads the target file into the source buffer.
func (c *Context) LoadSource() error {
	data, err := os.ReadFile(c.TargetFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.TargetFile, err)
	}
	c.Source = string(data)
	return nil
}

// Language returns the language detected from the target file's extension.
func (c *Context) Language() parser.Language {
	return parser.DetectLanguage(c.TargetFile)
}

// SelectedText returns the text covered by the selection, or "" when the
// selection is inverted or out of range.
func (c *Context) SelectedText() string {
	return text.Slice(c.Source, c.Selection)
}

// LineAt returns the content of the given zero-indexed line.
func (c *Context) LineAt(line uint32) string {
	return text.LineAt(c.Source, line)
}

// IndentationAt returns the leading whitespace of the given line.
func (c *Context) IndentationAt(line uint32) string {
	return text.Indentation(c.Source, line)
}

// Validate checks that the context is runnable: non-empty source and a
// language with a query table.
func (c *Context) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("%w: source is empty", ErrInvalidConfig)
	}

	lang := c.Language()
	if lang == parser.LanguageUnknown {
		return fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filepath.Ext(c.TargetFile))
	}
	if _, ok := queries.Set(lang); !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	return nil
}

// querySet returns the query table for the target language.
func (c *Context) querySet() (queries.QuerySet, error) {
	qs, ok := queries.Set(c.Language())
	if !ok {
		return queries.QuerySet{}, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, c.Language())
	}
	return qs, nil
}

// execQuery parses the current buffer and runs one query against it. Only
// the Text and Location fields of the returned captures remain valid; the
// parse tree is closed before returning.
func (c *Context) execQuery(queryText string) ([]queries.QueryMatch, error) {
	return c.execQueryOn(c.Source, queryText)
}

// execQueryOn runs a query against an arbitrary snippet in the target
// file's language.
func (c *Context) execQueryOn(source, queryText string) ([]queries.QueryMatch, error) {
	lang := c.Language()
	isTSX := parser.IsTSXFile(c.TargetFile)

	tree, err := c.parsers.Parse([]byte(source), lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", c.TargetFile, err)
	}
	defer tree.Close()

	query, err := c.queries.Get(lang, isTSX, queryText)
	if err != nil {
		return nil, err
	}

	return c.queries.Execute(tree, query, []byte(source))
}

// ValidationResult reports whether an operation can run, with any errors and
// warnings. Validation failures are values, never Go errors.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Valid returns a passing result.
func Valid() ValidationResult {
	return ValidationResult{IsValid: true}
}

// Invalid returns a failing result with one error message.
func Invalid(msg string) ValidationResult {
	return ValidationResult{IsValid: false, Errors: []string{msg}}
}

// WithWarning appends a warning without affecting validity.
func (v ValidationResult) WithWarning(msg string) ValidationResult {
	v.Warnings = append(v.Warnings, msg)
	return v
}

// WithError appends an error and marks the result invalid.
func (v ValidationResult) WithError(msg string) ValidationResult {
	v.IsValid = false
	v.Errors = append(v.Errors, msg)
	return v
}

// Preview describes the edits an operation would make, without applying
// them. Previews are pure: generating one never mutates the context.
type Preview struct {
	Description   string      `json:"description"`
	AffectedFiles []string    `json:"affected_files"`
	Edits         []text.Edit `json:"edits"`
	Diff          string      `json:"diff"`
}

// NewPreview creates an empty preview with a description.
func NewPreview(description string) *Preview {
	return &Preview{Description: description}
}

// AddEdit records an edit and its file.
func (p *Preview) AddEdit(edit text.Edit) {
	p.addFile(edit.FilePath)
	p.Edits = append(p.Edits, edit)
}

func (p *Preview) addFile(file string) {
	for _, f := range p.AffectedFiles {
		if f == file {
			return
		}
	}
	p.AffectedFiles = append(p.AffectedFiles, file)
}

// Result reports what an applied operation did.
type Result struct {
	Success       bool        `json:"success"`
	Description   string      `json:"description"`
	ModifiedFiles []string    `json:"modified_files,omitempty"`
	AppliedEdits  []text.Edit `json:"applied_edits,omitempty"`
}

// Success creates a successful result.
func Success(description string) *Result {
	return &Result{Success: true, Description: description}
}

// WithFile records a modified file.
func (r *Result) WithFile(file string) *Result {
	for _, f := range r.ModifiedFiles {
		if f == file {
			return r
		}
	}
	r.ModifiedFiles = append(r.ModifiedFiles, file)
	return r
}

// WithEdits records the applied edits and their files.
func (r *Result) WithEdits(edits []text.Edit) *Result {
	for _, e := range edits {
		r.WithFile(e.FilePath)
	}
	r.AppliedEdits = edits
	return r
}
