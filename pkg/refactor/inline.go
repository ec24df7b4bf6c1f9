package refactor

import (
	"fmt"
	"strings"

	"github.com/gnana997/refract/pkg/parser"
	"github.com/gnana997/refract/pkg/text"
)

// InlineVariable replaces every usage of the variable declared at the cursor
// with its initializer value.
type InlineVariable struct {
	// DeleteDeclaration removes the declaration line after inlining.
	DeleteDeclaration bool
}

// NewInlineVariable creates the operation; the declaration is deleted by
// default.
func NewInlineVariable() *InlineVariable {
	return &InlineVariable{DeleteDeclaration: true}
}

// KeepDeclaration leaves the declaration in place.
func (op *InlineVariable) KeepDeclaration() *InlineVariable {
	op.DeleteDeclaration = false
	return op
}

func (op *InlineVariable) Name() string { return "Inline Variable" }

func (op *InlineVariable) Validate(ctx *Context) (ValidationResult, error) {
	if err := ctx.Validate(); err != nil {
		return ValidationResult{}, err
	}

	decl, err := findDeclarationAt(ctx)
	if err != nil {
		return ValidationResult{}, err
	}
	if decl == nil {
		return Invalid("No variable declaration found at cursor position"), nil
	}

	return Valid(), nil
}

func (op *InlineVariable) Preview(ctx *Context) (*Preview, error) {
	decl, err := findDeclarationAt(ctx)
	if err != nil {
		return nil, err
	}
	if decl == nil {
		return nil, fmt.Errorf("%w: no variable declaration found", ErrInvalidConfig)
	}

	preview := NewPreview(fmt.Sprintf("Inline variable '%s' with value '%s'", decl.Name, decl.Value))

	usages, err := usagesAfter(ctx, decl.Name, decl.Range)
	if err != nil {
		return nil, err
	}

	// Multi-token values get parenthesized so precedence survives the
	// substitution.
	replacement := decl.Value
	if needsParens(decl.Value) {
		replacement = "(" + decl.Value + ")"
	}

	for _, usage := range usages {
		preview.AddEdit(text.NewEdit(ctx.TargetFile, usage, replacement))
	}

	if op.DeleteDeclaration {
		deleteRange := text.Range{
			Start: text.Position{Line: decl.Range.Start.Line},
			End:   text.Position{Line: decl.Range.End.Line + 1},
		}
		preview.AddEdit(text.Delete(ctx.TargetFile, deleteRange))
	}

	diff := fmt.Sprintf("Inline '%s' (%d usage(s)) with: %s", decl.Name, len(usages), decl.Value)
	if op.DeleteDeclaration {
		diff += "\nDelete declaration"
	}
	preview.Diff = diff

	return preview, nil
}

func (op *InlineVariable) Apply(ctx *Context) (*Result, error) {
	preview, err := op.Preview(ctx)
	if err != nil {
		return nil, err
	}
	return applyPreview(ctx, preview, "Inlined variable")
}

// InlineFunction replaces every call to the function defined at the cursor
// with its body expression. Parameter substitution is not performed; calls
// with arguments inline the body verbatim.
type InlineFunction struct {
	// DeleteFunction removes the function definition after inlining.
	DeleteFunction bool
}

// NewInlineFunction creates the operation; the definition is kept by
// default.
func NewInlineFunction() *InlineFunction {
	return &InlineFunction{}
}

// DeleteAfterInline removes the function definition once all calls are
// inlined.
func (op *InlineFunction) DeleteAfterInline() *InlineFunction {
	op.DeleteFunction = true
	return op
}

func (op *InlineFunction) Name() string { return "Inline Function" }

func (op *InlineFunction) Validate(ctx *Context) (ValidationResult, error) {
	if err := ctx.Validate(); err != nil {
		return ValidationResult{}, err
	}

	fn, err := findFunctionAt(ctx)
	if err != nil {
		return ValidationResult{}, err
	}
	if fn == nil {
		return Invalid("No function definition found at cursor position"), nil
	}

	calls, err := findCallSites(ctx, fn.Name)
	if err != nil {
		return ValidationResult{}, err
	}
	if len(calls) == 0 {
		return Invalid("No calls to this function found").
			WithWarning("Function has no usages to inline"), nil
	}

	return Valid(), nil
}

func (op *InlineFunction) Preview(ctx *Context) (*Preview, error) {
	fn, err := findFunctionAt(ctx)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: no function definition found", ErrInvalidConfig)
	}

	preview := NewPreview(fmt.Sprintf("Inline function '%s' at all call sites", fn.Name))

	calls, err := findCallSites(ctx, fn.Name)
	if err != nil {
		return nil, err
	}

	bodyContent := extractBodyContent(fn.Body, ctx.Language())

	for _, call := range calls {
		preview.AddEdit(text.NewEdit(ctx.TargetFile, call.Range, bodyContent))
	}

	if op.DeleteFunction {
		deleteRange := text.Range{
			Start: text.Position{Line: fn.Range.Start.Line},
			End:   text.Position{Line: fn.Range.End.Line + 1},
		}
		preview.AddEdit(text.Delete(ctx.TargetFile, deleteRange))
	}

	diff := fmt.Sprintf("Inline '%s' at %d call site(s) with: %s", fn.Name, len(calls), bodyContent)
	if op.DeleteFunction {
		diff += "\nDelete function definition"
	}
	preview.Diff = diff

	return preview, nil
}

func (op *InlineFunction) Apply(ctx *Context) (*Result, error) {
	preview, err := op.Preview(ctx)
	if err != nil {
		return nil, err
	}
	return applyPreview(ctx, preview, "Inlined function")
}

// usagesAfter returns identifier occurrences strictly after the declaration
// range. Occurrences inside the declaration (the bound name itself) are
// excluded.
func usagesAfter(ctx *Context, name string, declRange text.Range) ([]text.Range, error) {
	occurrences, err := findIdentifierOccurrences(ctx, name)
	if err != nil {
		return nil, err
	}

	var out []text.Range
	for _, r := range occurrences {
		afterDecl := r.Start.Line > declRange.End.Line ||
			(r.Start.Line == declRange.End.Line && r.Start.Character > declRange.End.Character)
		if afterDecl {
			out = append(out, r)
		}
	}
	return out, nil
}

// needsParens reports whether an inlined value should be wrapped to protect
// operator precedence.
func needsParens(value string) bool {
	return strings.Contains(value, " ") &&
		!strings.HasPrefix(value, "(") &&
		!strings.HasPrefix(value, `"`) &&
		!strings.HasPrefix(value, "'")
}

// extractBodyContent reduces a function body to the expression to inline:
// braces stripped and the first return expression extracted for brace
// languages, the return line for Python, the last line for Ruby.
func extractBodyContent(body string, lang parser.Language) string {
	body = strings.TrimSpace(body)

	switch lang {
	case parser.LanguagePython:
		for _, line := range strings.Split(body, "\n") {
			trimmed := strings.TrimSpace(line)
			if expr, ok := strings.CutPrefix(trimmed, "return "); ok {
				return strings.TrimSpace(expr)
			}
		}
		return body

	case parser.LanguageRuby:
		lines := strings.Split(body, "\n")
		if len(lines) == 0 {
			return ""
		}
		return strings.TrimSpace(lines[len(lines)-1])

	default:
		if strings.HasPrefix(body, "{") && strings.HasSuffix(body, "}") {
			inner := body[1 : len(body)-1]
			if idx := strings.Index(inner, "return "); idx >= 0 {
				afterReturn := inner[idx+len("return "):]
				if semi := strings.Index(afterReturn, ";"); semi >= 0 {
					return strings.TrimSpace(afterReturn[:semi])
				}
				return strings.TrimSuffix(strings.TrimSpace(afterReturn), ";")
			}
			return strings.TrimSpace(inner)
		}
		return body
	}
}
