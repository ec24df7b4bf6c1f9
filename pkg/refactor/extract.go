package refactor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gnana997/refract/pkg/text"
)

// ParameterStrategy controls how ExtractFunction determines parameters.
type ParameterStrategy int

const (
	// ParametersInferred derives parameters from identifiers used in the
	// selection, filtered through the per-language keyword tables.
	ParametersInferred ParameterStrategy = iota
	// ParametersExplicit uses the caller-provided list as-is.
	ParametersExplicit
)

// ExtractFunction extracts the selected code into a new function and
// replaces the selection with a call to it.
type ExtractFunction struct {
	// FunctionName is the name for the new function.
	FunctionName string
	// Visibility of the new function.
	Visibility Visibility
	// Strategy selects inferred or explicit parameters.
	Strategy ParameterStrategy
	// ExplicitParams are (name, type) pairs used when Strategy is explicit.
	ExplicitParams []paramPair
	// IsAsync extracts an async function where the language supports it.
	IsAsync bool
}

// NewExtractFunction creates the operation with inferred parameters and
// private visibility.
func NewExtractFunction(name string) *ExtractFunction {
	return &ExtractFunction{FunctionName: name}
}

// Public makes the extracted function public.
func (op *ExtractFunction) Public() *ExtractFunction {
	op.Visibility = VisibilityPublic
	return op
}

// WithParams supplies explicit (name, type) parameters.
func (op *ExtractFunction) WithParams(params map[string]string) *ExtractFunction {
	op.ExplicitParams = op.ExplicitParams[:0]
	for name, typ := range params {
		op.ExplicitParams = append(op.ExplicitParams, paramPair{Name: name, Type: typ})
	}
	op.Strategy = ParametersExplicit
	return op
}

// Async extracts an async function.
func (op *ExtractFunction) Async() *ExtractFunction {
	op.IsAsync = true
	return op
}

func (op *ExtractFunction) Name() string { return "Extract Function" }

func (op *ExtractFunction) Validate(ctx *Context) (ValidationResult, error) {
	if err := ctx.Validate(); err != nil {
		return ValidationResult{}, err
	}

	if strings.TrimSpace(ctx.SelectedText()) == "" {
		return Invalid("No code selected"), nil
	}
	if op.FunctionName == "" {
		return Invalid("Function name is required"), nil
	}
	if !validIdentifierStart(op.FunctionName) {
		return Invalid("Function name must start with a letter or underscore"), nil
	}

	return Valid(), nil
}

func (op *ExtractFunction) Preview(ctx *Context) (*Preview, error) {
	preview := NewPreview(fmt.Sprintf("Extract selection into function '%s'", op.FunctionName))

	lang := ctx.Language()
	selected := ctx.SelectedText()

	params, err := op.parameters(ctx, selected)
	if err != nil {
		return nil, err
	}

	indent := ctx.IndentationAt(ctx.Selection.Start.Line)

	signature := generateSignature(lang, op.FunctionName, op.Visibility, op.IsAsync, params, "")
	body := wrapBody(lang, selected, indent)
	newFunction := signature + body + "\n\n"

	callArgs := make([]string, 0, len(params))
	for _, p := range params {
		callArgs = append(callArgs, p.Name)
	}
	call := op.FunctionName + "(" + strings.Join(callArgs, ", ") + ")"

	// The new function goes at the top of the file; the selection becomes
	// the call.
	preview.AddEdit(text.Insert(ctx.TargetFile, text.Position{}, newFunction))
	preview.AddEdit(text.NewEdit(ctx.TargetFile, ctx.Selection, call))

	preview.Diff = fmt.Sprintf("Extract to:\n%s%s\n\nReplace with:\n%s", signature, body, call)

	return preview, nil
}

func (op *ExtractFunction) Apply(ctx *Context) (*Result, error) {
	preview, err := op.Preview(ctx)
	if err != nil {
		return nil, err
	}
	return applyPreview(ctx, preview, fmt.Sprintf("Extracted function '%s'", op.FunctionName))
}

// parameters resolves the parameter list per the configured strategy.
func (op *ExtractFunction) parameters(ctx *Context, selected string) ([]paramPair, error) {
	if op.Strategy == ParametersExplicit {
		return op.ExplicitParams, nil
	}

	names, err := identifiersIn(ctx, selected)
	if err != nil {
		return nil, err
	}

	var params []paramPair
	for _, name := range names {
		if isLikelyVariable(name, ctx.Language()) {
			params = append(params, paramPair{Name: name})
		}
	}
	return params, nil
}

// ExtractVariable extracts the selected expression into a variable declared
// on the line above the selection.
type ExtractVariable struct {
	// VariableName is the name for the new variable.
	VariableName string
	// ReplaceAll replaces every occurrence of the expression, not just the
	// selection.
	ReplaceAll bool
	// IsConst declares the variable as a constant.
	IsConst bool
}

// NewExtractVariable creates the operation.
func NewExtractVariable(name string) *ExtractVariable {
	return &ExtractVariable{VariableName: name}
}

// ReplaceAllOccurrences replaces every literal occurrence of the expression.
func (op *ExtractVariable) ReplaceAllOccurrences() *ExtractVariable {
	op.ReplaceAll = true
	return op
}

// AsConst declares the variable as a constant.
func (op *ExtractVariable) AsConst() *ExtractVariable {
	op.IsConst = true
	return op
}

func (op *ExtractVariable) Name() string { return "Extract Variable" }

func (op *ExtractVariable) Validate(ctx *Context) (ValidationResult, error) {
	if err := ctx.Validate(); err != nil {
		return ValidationResult{}, err
	}

	if strings.TrimSpace(ctx.SelectedText()) == "" {
		return Invalid("No expression selected"), nil
	}
	if op.VariableName == "" {
		return Invalid("Variable name is required"), nil
	}
	if !validIdentifierStart(op.VariableName) {
		return Invalid("Variable name must start with a letter or underscore"), nil
	}

	return Valid(), nil
}

func (op *ExtractVariable) Preview(ctx *Context) (*Preview, error) {
	preview := NewPreview(fmt.Sprintf("Extract expression into variable '%s'", op.VariableName))

	lang := ctx.Language()
	selected := strings.TrimSpace(ctx.SelectedText())
	decl := variableDeclaration(lang, op.VariableName, selected, op.IsConst)
	indent := ctx.IndentationAt(ctx.Selection.Start.Line)

	var occurrences []text.Range
	if op.ReplaceAll {
		occurrences = findOccurrences(ctx.Source, selected)
	} else {
		occurrences = []text.Range{ctx.Selection}
	}

	// Declaration goes at the start of the selection's line, keeping its
	// indentation.
	insertPos := text.Position{Line: ctx.Selection.Start.Line}
	preview.AddEdit(text.Insert(ctx.TargetFile, insertPos, indent+decl+"\n"))

	for _, r := range occurrences {
		preview.AddEdit(text.NewEdit(ctx.TargetFile, r, op.VariableName))
	}

	preview.Diff = fmt.Sprintf("Add declaration:\n%s%s\n\nReplace '%s' with '%s'",
		indent, decl, selected, op.VariableName)

	return preview, nil
}

func (op *ExtractVariable) Apply(ctx *Context) (*Result, error) {
	preview, err := op.Preview(ctx)
	if err != nil {
		return nil, err
	}
	return applyPreview(ctx, preview, fmt.Sprintf("Extracted variable '%s'", op.VariableName))
}

// ExtractConstant extracts the selected expression into a module-level
// constant.
type ExtractConstant struct {
	// ConstantName is the name for the new constant.
	ConstantName string
	// Visibility of the constant.
	Visibility Visibility
	// ModuleLevel inserts the declaration at the top of the file; otherwise
	// it stays at the selection's line.
	ModuleLevel bool
}

// NewExtractConstant creates a module-level, private constant extraction.
func NewExtractConstant(name string) *ExtractConstant {
	return &ExtractConstant{ConstantName: name, ModuleLevel: true}
}

// Public makes the constant public.
func (op *ExtractConstant) Public() *ExtractConstant {
	op.Visibility = VisibilityPublic
	return op
}

// Local keeps the constant at the selection's scope.
func (op *ExtractConstant) Local() *ExtractConstant {
	op.ModuleLevel = false
	return op
}

func (op *ExtractConstant) Name() string { return "Extract Constant" }

func (op *ExtractConstant) Validate(ctx *Context) (ValidationResult, error) {
	if err := ctx.Validate(); err != nil {
		return ValidationResult{}, err
	}

	if strings.TrimSpace(ctx.SelectedText()) == "" {
		return Invalid("No expression selected"), nil
	}
	if op.ConstantName == "" {
		return Invalid("Constant name is required"), nil
	}

	return Valid(), nil
}

func (op *ExtractConstant) Preview(ctx *Context) (*Preview, error) {
	preview := NewPreview(fmt.Sprintf("Extract expression into constant '%s'", op.ConstantName))

	lang := ctx.Language()
	selected := strings.TrimSpace(ctx.SelectedText())
	decl := constantDeclaration(lang, op.ConstantName, selected, op.Visibility)

	var insertPos text.Position
	indent := ""
	if !op.ModuleLevel {
		insertPos = text.Position{Line: ctx.Selection.Start.Line}
		indent = ctx.IndentationAt(ctx.Selection.Start.Line)
	}

	preview.AddEdit(text.Insert(ctx.TargetFile, insertPos, indent+decl+"\n"))

	constName := op.ConstantName
	if usesUppercaseConstants(lang) {
		constName = strings.ToUpper(constName)
	}
	preview.AddEdit(text.NewEdit(ctx.TargetFile, ctx.Selection, constName))

	preview.Diff = fmt.Sprintf("Add constant:\n%s\n\nReplace '%s' with '%s'", decl, selected, constName)

	return preview, nil
}

func (op *ExtractConstant) Apply(ctx *Context) (*Result, error) {
	preview, err := op.Preview(ctx)
	if err != nil {
		return nil, err
	}
	return applyPreview(ctx, preview, fmt.Sprintf("Extracted constant '%s'", op.ConstantName))
}

// findOccurrences returns the range of every literal occurrence of
// expression in source, including overlapping matches.
func findOccurrences(source, expression string) []text.Range {
	var out []text.Range
	if expression == "" {
		return out
	}

	searchStart := 0
	for {
		idx := strings.Index(source[searchStart:], expression)
		if idx < 0 {
			break
		}
		absPos := searchStart + idx

		start := text.OffsetToPosition(source, absPos)
		end := text.OffsetToPosition(source, absPos+len(expression))
		out = append(out, text.Range{Start: start, End: end})

		searchStart = absPos + 1
	}
	return out
}

// validIdentifierStart reports whether a name begins with a letter or
// underscore.
func validIdentifierStart(name string) bool {
	for _, r := range name {
		return unicode.IsLetter(r) || r == '_'
	}
	return false
}
