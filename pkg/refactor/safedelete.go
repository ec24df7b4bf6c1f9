package refactor

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnana997/refract/pkg/parser"
	"github.com/gnana997/refract/pkg/text"
)

// usageRef is one remaining reference to a symbol slated for deletion.
type usageRef struct {
	File    string
	Line    uint32
	Context string
}

func (u usageRef) describe(targetFile string) string {
	if u.File == targetFile {
		return fmt.Sprintf("  - Line %d: %s", u.Line+1, u.Context)
	}
	return fmt.Sprintf("  - %s:%d: %s", u.File, u.Line+1, u.Context)
}

// SafeDelete removes the symbol at the cursor only when nothing still
// references it. Remaining usages fail validation unless Force is set.
type SafeDelete struct {
	// Force deletes even when usages remain.
	Force bool
	// DeleteRelated also removes related definitions, such as Rust impl
	// blocks for a deleted type.
	DeleteRelated bool
	// SearchPaths are extra directories scanned for usages outside the
	// target file.
	SearchPaths []string
}

// NewSafeDelete creates the operation.
func NewSafeDelete() *SafeDelete {
	return &SafeDelete{}
}

// Forced deletes the symbol regardless of remaining usages.
func (op *SafeDelete) Forced() *SafeDelete {
	op.Force = true
	return op
}

// WithRelated also deletes related definitions.
func (op *SafeDelete) WithRelated() *SafeDelete {
	op.DeleteRelated = true
	return op
}

// WithSearchPaths adds directories to scan for usages.
func (op *SafeDelete) WithSearchPaths(paths ...string) *SafeDelete {
	op.SearchPaths = append(op.SearchPaths, paths...)
	return op
}

func (op *SafeDelete) Name() string { return "Safe Delete" }

func (op *SafeDelete) Validate(ctx *Context) (ValidationResult, error) {
	if err := ctx.Validate(); err != nil {
		return ValidationResult{}, err
	}

	symbol, err := findSymbolAt(ctx)
	if err != nil {
		return ValidationResult{}, err
	}
	if symbol == nil {
		return Invalid("No deletable symbol found at cursor position"), nil
	}

	usages, err := op.findUsages(ctx, symbol)
	if err != nil {
		return ValidationResult{}, err
	}

	if len(usages) == 0 {
		return Valid(), nil
	}

	if op.Force {
		return Valid().WithWarning(fmt.Sprintf(
			"Force deleting '%s' with %d usage(s)", symbol.Name, len(usages))), nil
	}

	msg := fmt.Sprintf("Symbol '%s' has %d usage(s):", symbol.Name, len(usages))
	shown := usages
	if len(shown) > 5 {
		shown = shown[:5]
	}
	for _, u := range shown {
		msg += "\n" + u.describe(ctx.TargetFile)
	}
	if len(usages) > 5 {
		msg += fmt.Sprintf("\n  ... and %d more", len(usages)-5)
	}

	return Invalid(msg), nil
}

func (op *SafeDelete) Preview(ctx *Context) (*Preview, error) {
	symbol, err := findSymbolAt(ctx)
	if err != nil {
		return nil, err
	}
	if symbol == nil {
		return nil, fmt.Errorf("%w: no deletable symbol found", ErrInvalidConfig)
	}

	lang := ctx.Language()
	kind := detectSymbolKind(symbol.Text, lang)

	preview := NewPreview(fmt.Sprintf("Delete %s '%s'", kind, symbol.Name))

	preview.AddEdit(text.Delete(ctx.TargetFile, fullLines(symbol.Range)))

	related, err := op.relatedRanges(ctx, symbol)
	if err != nil {
		return nil, err
	}
	for _, r := range related {
		preview.AddEdit(text.Delete(ctx.TargetFile, fullLines(r)))
	}

	diff := fmt.Sprintf("Delete %s '%s' (lines %d-%d)",
		kind, symbol.Name, symbol.Range.Start.Line+1, symbol.Range.End.Line+1)
	for _, r := range related {
		diff += fmt.Sprintf("\nDelete related block (lines %d-%d)",
			r.Start.Line+1, r.End.Line+1)
	}
	if op.Force {
		diff += "\nForce delete enabled"
	}
	preview.Diff = diff

	return preview, nil
}

func (op *SafeDelete) Apply(ctx *Context) (*Result, error) {
	symbol, err := findSymbolAt(ctx)
	if err != nil {
		return nil, err
	}
	if symbol == nil {
		return nil, fmt.Errorf("%w: no deletable symbol found", ErrInvalidConfig)
	}

	preview, err := op.Preview(ctx)
	if err != nil {
		return nil, err
	}
	return applyPreview(ctx, preview, fmt.Sprintf("Deleted '%s'", symbol.Name))
}

// findUsages returns every reference to the symbol outside its own
// definition, in the target buffer and in any configured search paths.
func (op *SafeDelete) findUsages(ctx *Context, symbol *symbolDef) ([]usageRef, error) {
	occurrences, err := findIdentifierOccurrences(ctx, symbol.Name)
	if err != nil {
		return nil, err
	}

	var usages []usageRef
	for _, r := range occurrences {
		if r.Start.Line >= symbol.Range.Start.Line && r.Start.Line <= symbol.Range.End.Line {
			continue
		}
		usages = append(usages, usageRef{
			File:    ctx.TargetFile,
			Line:    r.Start.Line,
			Context: strings.TrimSpace(ctx.LineAt(r.Start.Line)),
		})
	}

	for _, root := range op.SearchPaths {
		external, err := op.searchPath(ctx, root, symbol.Name)
		if err != nil {
			return nil, err
		}
		usages = append(usages, external...)
	}

	return usages, nil
}

// searchPath walks one directory tree and collects identifier occurrences in
// every parseable file other than the target. Unreadable entries are skipped.
func (op *SafeDelete) searchPath(ctx *Context, root, name string) ([]usageRef, error) {
	var usages []usageRef

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if sameFile(path, ctx.TargetFile) {
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
		occurrences, err := findIdentifierOccurrences(sub, name)
		if err != nil {
			ctx.logger.Warn("skipping file during usage search",
				"file", path, "error", err)
			return nil
		}

		for _, r := range occurrences {
			usages = append(usages, usageRef{
				File:    path,
				Line:    r.Start.Line,
				Context: strings.TrimSpace(sub.LineAt(r.Start.Line)),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", root, err)
	}

	return usages, nil
}

// relatedRanges finds definitions that should be deleted together with the
// symbol. For Rust types this is every impl block on the type.
func (op *SafeDelete) relatedRanges(ctx *Context, symbol *symbolDef) ([]text.Range, error) {
	if !op.DeleteRelated || ctx.Language() != parser.LanguageRust {
		return nil, nil
	}

	matches, err := ctx.execQuery(`(impl_item type: (type_identifier) @type) @impl`)
	if err != nil {
		return nil, err
	}

	var out []text.Range
	for _, m := range matches {
		typ := m.CaptureNamed("type")
		impl := m.CaptureNamed("impl")
		if typ == nil || impl == nil || typ.Text != symbol.Name {
			continue
		}
		r := locRange(impl.Location)
		if r.Start.Line == symbol.Range.Start.Line {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// fullLines extends a range to cover complete lines, end-exclusive.
func fullLines(r text.Range) text.Range {
	return text.Range{
		Start: text.Position{Line: r.Start.Line},
		End:   text.Position{Line: r.End.Line + 1},
	}
}

func sameFile(a, b string) bool {
	if a == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
