// Package scope implements the lightweight symbol model: per-file binding
// extraction, textual reference resolution, and usage analysis feeding
// dead-code and safe-delete queries.
//
// The model is deliberately flat and name-based. It does not build a nested
// lexical-scope tree and does not resolve shadowing; two same-named bindings
// in different scopes are distinct entities matched only by identifier text.
package scope

import (
	"fmt"

	"github.com/gnana997/refract/pkg/text"
)

// BindingKind classifies a named declaration.
type BindingKind int

const (
	KindFunction BindingKind = iota
	KindMethod
	KindStruct
	KindClass
	KindInterface
	KindEnum
	KindTrait
	KindModule
	KindConstant
	KindVariable
	KindTypeAlias
	KindParameter
	KindImport
	KindField
)

// String returns the lowercase name of the kind.
func (k BindingKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindStruct:
		return "struct"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindTrait:
		return "trait"
	case KindModule:
		return "module"
	case KindConstant:
		return "constant"
	case KindVariable:
		return "variable"
	case KindTypeAlias:
		return "type_alias"
	case KindParameter:
		return "parameter"
	case KindImport:
		return "import"
	case KindField:
		return "field"
	default:
		return "unknown"
	}
}

// ParseBindingKind maps a kind name (as used in the query registry) to a
// BindingKind. Unknown names map to KindVariable.
func ParseBindingKind(name string) BindingKind {
	switch name {
	case "function":
		return KindFunction
	case "method":
		return KindMethod
	case "struct":
		return KindStruct
	case "class":
		return KindClass
	case "interface":
		return KindInterface
	case "enum":
		return KindEnum
	case "trait":
		return KindTrait
	case "module":
		return KindModule
	case "constant":
		return KindConstant
	case "type_alias":
		return KindTypeAlias
	case "parameter":
		return KindParameter
	case "import":
		return KindImport
	case "field":
		return KindField
	default:
		return KindVariable
	}
}

// Binding is a named declaration with a definition location and an export
// flag. Bindings are immutable after extraction. Identity is
// (Name, File, DefinitionRange).
type Binding struct {
	Name            string      `json:"name"`
	Kind            BindingKind `json:"kind"`
	File            string      `json:"file"`
	DefinitionRange text.Range  `json:"definition_range"`

	// IsExported is derived once at extraction time from the language's
	// visibility convention (keyword, underscore prefix, capitalization,
	// modifier list) and never recomputed.
	IsExported bool `json:"is_exported"`
}

// NewBinding creates an unexported binding.
func NewBinding(name string, kind BindingKind, file string, defRange text.Range) Binding {
	return Binding{Name: name, Kind: kind, File: file, DefinitionRange: defRange}
}

// Exported returns a copy of the binding with the export flag set.
func (b Binding) Exported() Binding {
	b.IsExported = true
	return b
}

// ID returns a stable identity string "file:line:char:name".
func (b Binding) ID() string {
	return fmt.Sprintf("%s:%d:%d:%s",
		b.File, b.DefinitionRange.Start.Line, b.DefinitionRange.Start.Character, b.Name)
}

// IsPrivateByConvention reports whether the binding's name carries the
// leading-underscore privacy marker.
func (b Binding) IsPrivateByConvention() bool {
	return len(b.Name) > 0 && b.Name[0] == '_'
}

// BindingTracker is the per-file store of extracted bindings.
type BindingTracker struct {
	file     string
	bindings []Binding
	byName   map[string][]int
}

// NewBindingTracker creates an empty tracker for one file.
func NewBindingTracker(file string) *BindingTracker {
	return &BindingTracker{
		file:   file,
		byName: make(map[string][]int),
	}
}

// File returns the path the tracker was built for.
func (t *BindingTracker) File() string {
	return t.file
}

// Add records a binding.
func (t *BindingTracker) Add(b Binding) {
	t.byName[b.Name] = append(t.byName[b.Name], len(t.bindings))
	t.bindings = append(t.bindings, b)
}

// Find returns the first binding with the given name, or nil.
func (t *BindingTracker) Find(name string) *Binding {
	idxs, ok := t.byName[name]
	if !ok || len(idxs) == 0 {
		return nil
	}
	return &t.bindings[idxs[0]]
}

// FindAll returns every binding with the given name.
func (t *BindingTracker) FindAll(name string) []Binding {
	idxs := t.byName[name]
	out := make([]Binding, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, t.bindings[i])
	}
	return out
}

// All returns every recorded binding.
func (t *BindingTracker) All() []Binding {
	return t.bindings
}

// Len returns the number of recorded bindings.
func (t *BindingTracker) Len() int {
	return len(t.bindings)
}
