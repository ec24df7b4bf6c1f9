package refactor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnana997/refract/pkg/parser"
	"github.com/gnana997/refract/pkg/text"
)

// SymbolKind classifies a movable symbol.
type SymbolKind string

const (
	SymbolFunction  SymbolKind = "function"
	SymbolStruct    SymbolKind = "struct"
	SymbolClass     SymbolKind = "class"
	SymbolInterface SymbolKind = "interface"
	SymbolEnum      SymbolKind = "enum"
	SymbolTrait     SymbolKind = "trait"
	SymbolImpl      SymbolKind = "impl"
	SymbolConstant  SymbolKind = "constant"
	SymbolTypeAlias SymbolKind = "type_alias"
	SymbolOther     SymbolKind = "other"
)

// MoveToFile moves the symbol at the cursor to another file. The symbol's
// full lines are removed from the source file and appended to the target,
// which is created if missing. The two writes are not atomic.
type MoveToFile struct {
	// Destination is the file receiving the symbol.
	Destination string
	// UpdateImports rewrites import statements in referencing files.
	UpdateImports bool
	// AddReexport leaves a re-export shim at the original location.
	AddReexport bool
}

// NewMoveToFile creates the operation with import updates enabled.
func NewMoveToFile(destination string) *MoveToFile {
	return &MoveToFile{Destination: destination, UpdateImports: true}
}

// SkipImportUpdates disables import rewriting in other files.
func (op *MoveToFile) SkipImportUpdates() *MoveToFile {
	op.UpdateImports = false
	return op
}

// WithReexport adds a re-export from the original location for backwards
// compatibility.
func (op *MoveToFile) WithReexport() *MoveToFile {
	op.AddReexport = true
	return op
}

func (op *MoveToFile) Name() string { return "Move to File" }

func (op *MoveToFile) Validate(ctx *Context) (ValidationResult, error) {
	if err := ctx.Validate(); err != nil {
		return ValidationResult{}, err
	}

	symbol, err := findSymbolAt(ctx)
	if err != nil {
		return ValidationResult{}, err
	}
	if symbol == nil {
		return Invalid("No movable symbol found at cursor position"), nil
	}

	if ctx.TargetFile == op.Destination {
		return Invalid("Target file is the same as source file"), nil
	}

	return Valid(), nil
}

func (op *MoveToFile) Preview(ctx *Context) (*Preview, error) {
	symbol, err := findSymbolAt(ctx)
	if err != nil {
		return nil, err
	}
	if symbol == nil {
		return nil, fmt.Errorf("%w: no movable symbol found", ErrInvalidConfig)
	}

	lang := ctx.Language()
	kind := detectSymbolKind(symbol.Text, lang)

	preview := NewPreview(fmt.Sprintf("Move '%s' to '%s'", symbol.Name, op.Destination))

	deleteRange := text.Range{
		Start: text.Position{Line: symbol.Range.Start.Line},
		End:   text.Position{Line: symbol.Range.End.Line + 1},
	}
	preview.AddEdit(text.Delete(ctx.TargetFile, deleteRange))

	if op.AddReexport {
		reexport := generateReexport(symbol.Name, op.Destination, lang)
		preview.AddEdit(text.Insert(ctx.TargetFile,
			text.Position{Line: symbol.Range.Start.Line}, reexport))
	}

	// Append to the end of the target file. The sentinel line is resolved
	// by clamping during application.
	preview.AddEdit(text.Insert(op.Destination,
		text.Position{Line: ^uint32(0)}, "\n"+symbol.Text+"\n"))

	diff := fmt.Sprintf("Move %s '%s' from %s to %s\n- Delete from source\n+ Add to target",
		kind, symbol.Name, ctx.TargetFile, op.Destination)
	if op.AddReexport {
		diff += "\n+ Add re-export"
	}
	preview.Diff = diff

	return preview, nil
}

func (op *MoveToFile) Apply(ctx *Context) (*Result, error) {
	symbol, err := findSymbolAt(ctx)
	if err != nil {
		return nil, err
	}
	if symbol == nil {
		return nil, fmt.Errorf("%w: no movable symbol found", ErrInvalidConfig)
	}

	// Read the target (or start empty).
	targetContent := ""
	if data, err := os.ReadFile(op.Destination); err == nil {
		targetContent = string(data)
	}

	// Extend the symbol's span to full lines before removal.
	startOffset := text.PositionToOffset(ctx.Source, symbol.Range.Start)
	endOffset := text.PositionToOffset(ctx.Source, symbol.Range.End)

	lineStart := strings.LastIndex(ctx.Source[:startOffset], "\n") + 1
	lineEnd := len(ctx.Source)
	if idx := strings.Index(ctx.Source[endOffset:], "\n"); idx >= 0 {
		lineEnd = endOffset + idx + 1
	}

	removed := ctx.Source[lineStart:lineEnd]
	newSource := ctx.Source[:lineStart] + ctx.Source[lineEnd:]

	if op.AddReexport {
		reexport := generateReexport(symbol.Name, op.Destination, ctx.Language())
		newSource = newSource[:lineStart] + reexport + newSource[lineStart:]
	}

	newTarget := strings.TrimRight(targetContent, "\n") + "\n" + strings.TrimSpace(removed) + "\n"

	if err := os.WriteFile(ctx.TargetFile, []byte(newSource), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", ctx.TargetFile, err)
	}
	if err := os.WriteFile(op.Destination, []byte(newTarget), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", op.Destination, err)
	}
	ctx.Source = newSource

	return Success(fmt.Sprintf("Moved '%s' to '%s'", symbol.Name, op.Destination)).
		WithFile(ctx.TargetFile).
		WithFile(op.Destination), nil
}

// MoveBetweenModules moves a selection between language-level modules.
// Currently only Rust mod blocks are understood; the operation reports the
// manual steps rather than editing.
type MoveBetweenModules struct {
	// TargetModule is the destination module path, e.g. "crate::utils".
	TargetModule string
	// UpdateReferences rewrites references to the moved symbol.
	UpdateReferences bool
}

// NewMoveBetweenModules creates the operation with reference updates
// enabled.
func NewMoveBetweenModules(targetModule string) *MoveBetweenModules {
	return &MoveBetweenModules{TargetModule: targetModule, UpdateReferences: true}
}

// SkipReferenceUpdates disables reference rewriting.
func (op *MoveBetweenModules) SkipReferenceUpdates() *MoveBetweenModules {
	op.UpdateReferences = false
	return op
}

func (op *MoveBetweenModules) Name() string { return "Move Between Modules" }

func (op *MoveBetweenModules) Validate(ctx *Context) (ValidationResult, error) {
	if err := ctx.Validate(); err != nil {
		return ValidationResult{}, err
	}

	if ctx.Language() != parser.LanguageRust {
		return Invalid("Move between modules is currently only supported for Rust").
			WithWarning("Use MoveToFile for other languages"), nil
	}

	if op.TargetModule == "" {
		return Invalid("Target module cannot be empty"), nil
	}

	return Valid(), nil
}

func (op *MoveBetweenModules) Preview(ctx *Context) (*Preview, error) {
	currentModule, err := op.findCurrentModule(ctx)
	if err != nil {
		return nil, err
	}

	selected := ctx.SelectedText()

	preview := NewPreview(fmt.Sprintf("Move selection to module '%s'", op.TargetModule))

	from := currentModule
	if from == "" {
		from = "root"
	}
	preview.Diff = fmt.Sprintf("Move from %s to %s\nSelected: %s",
		from, op.TargetModule, truncate(selected, 50))

	return preview, nil
}

func (op *MoveBetweenModules) Apply(ctx *Context) (*Result, error) {
	selected := ctx.SelectedText()

	return Success(fmt.Sprintf(
		"To complete this refactoring:\n"+
			"1. Create or locate module '%s'\n"+
			"2. Move the selected code there\n"+
			"3. Update imports/use statements\n"+
			"Selected code:\n%s",
		op.TargetModule, truncate(selected, 200))), nil
}

// findCurrentModule returns the name of the innermost mod block containing
// the cursor, or "" at file scope.
func (op *MoveBetweenModules) findCurrentModule(ctx *Context) (string, error) {
	matches, err := ctx.execQuery(`(mod_item name: (identifier) @name) @mod`)
	if err != nil {
		return "", err
	}

	cursorLine := ctx.Selection.Start.Line
	containing := ""
	for _, m := range matches {
		name := m.CaptureNamed("name")
		mod := m.CaptureNamed("mod")
		if name == nil || mod == nil {
			continue
		}
		if locRange(mod.Location).ContainsLine(cursorLine) {
			containing = name.Text
		}
	}
	return containing, nil
}

// detectSymbolKind classifies a definition from its leading keyword.
func detectSymbolKind(symbolText string, lang parser.Language) SymbolKind {
	t := strings.TrimSpace(symbolText)

	switch lang {
	case parser.LanguageRust:
		switch {
		case strings.HasPrefix(t, "fn "), strings.HasPrefix(t, "pub fn "):
			return SymbolFunction
		case strings.HasPrefix(t, "struct "), strings.HasPrefix(t, "pub struct "):
			return SymbolStruct
		case strings.HasPrefix(t, "enum "), strings.HasPrefix(t, "pub enum "):
			return SymbolEnum
		case strings.HasPrefix(t, "trait "), strings.HasPrefix(t, "pub trait "):
			return SymbolTrait
		case strings.HasPrefix(t, "impl "):
			return SymbolImpl
		case strings.HasPrefix(t, "const "), strings.HasPrefix(t, "pub const "):
			return SymbolConstant
		case strings.HasPrefix(t, "type "), strings.HasPrefix(t, "pub type "):
			return SymbolTypeAlias
		}
	case parser.LanguageTypeScript, parser.LanguageJavaScript:
		switch {
		case strings.HasPrefix(t, "function "), strings.HasPrefix(t, "export function "):
			return SymbolFunction
		case strings.HasPrefix(t, "class "), strings.HasPrefix(t, "export class "):
			return SymbolClass
		case strings.HasPrefix(t, "interface "), strings.HasPrefix(t, "export interface "):
			return SymbolInterface
		case strings.HasPrefix(t, "type "), strings.HasPrefix(t, "export type "):
			return SymbolTypeAlias
		case strings.HasPrefix(t, "enum "), strings.HasPrefix(t, "export enum "):
			return SymbolEnum
		}
	case parser.LanguagePython:
		switch {
		case strings.HasPrefix(t, "def "):
			return SymbolFunction
		case strings.HasPrefix(t, "class "):
			return SymbolClass
		}
	}
	return SymbolOther
}

// generateReexport renders a backwards-compatibility re-export for the
// moved symbol.
func generateReexport(symbolName, destination string, lang parser.Language) string {
	modulePath := fileToModulePath(destination, lang)

	switch lang {
	case parser.LanguageRust:
		return fmt.Sprintf("pub use %s::%s;\n", modulePath, symbolName)
	case parser.LanguageTypeScript, parser.LanguageJavaScript:
		return fmt.Sprintf("export { %s } from '%s';\n", symbolName, modulePath)
	case parser.LanguagePython:
		return fmt.Sprintf("from %s import %s\n", modulePath, symbolName)
	default:
		return ""
	}
}

// fileToModulePath converts a file path to the language's module path form.
func fileToModulePath(file string, lang parser.Language) string {
	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	noExt := strings.TrimSuffix(file, filepath.Ext(file))

	switch lang {
	case parser.LanguageRust:
		return strings.NewReplacer("/", "::", "\\", "::").Replace(noExt)
	case parser.LanguageTypeScript, parser.LanguageJavaScript:
		return "./" + stem
	case parser.LanguagePython:
		return strings.NewReplacer("/", ".", "\\", ".").Replace(noExt)
	default:
		return stem
	}
}

// truncate shortens s to max characters with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
