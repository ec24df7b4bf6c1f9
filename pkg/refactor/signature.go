package refactor

import (
	"fmt"
	"strings"

	"github.com/gnana997/refract/pkg/parser"
	"github.com/gnana997/refract/pkg/text"
)

// Parameter is one parsed entry of a function signature.
type Parameter struct {
	Name   string
	Type   string
	IsSelf bool
}

// ParameterSpec describes a parameter to add.
type ParameterSpec struct {
	// Name of the new parameter.
	Name string
	// Type of the new parameter.
	Type string
	// DefaultValue is inserted at call sites; empty skips call-site updates
	// for this parameter.
	DefaultValue string
	// Position to insert at; negative appends.
	Position int
}

// NewParameterSpec creates a spec that appends at the end.
func NewParameterSpec(name, paramType string) ParameterSpec {
	return ParameterSpec{Name: name, Type: paramType, Position: -1}
}

// WithDefault sets the call-site default value.
func (s ParameterSpec) WithDefault(value string) ParameterSpec {
	s.DefaultValue = value
	return s
}

// AtPosition sets the insertion index.
func (s ParameterSpec) AtPosition(pos int) ParameterSpec {
	s.Position = pos
	return s
}

// ChangeSignature rewrites the parameter list of the function at the cursor
// and, optionally, its call sites.
type ChangeSignature struct {
	// AddParams are new parameters to insert.
	AddParams []ParameterSpec
	// RemoveParams lists parameter names to drop.
	RemoveParams []string
	// RenameParams maps old parameter names to new ones.
	RenameParams map[string]string
	// ReorderParams, when set, lists parameter names in their new order;
	// unlisted parameters are appended in their old order.
	ReorderParams []string
	// NewReturnType replaces the return type when non-empty.
	NewReturnType string
	// UpdateCallSites appends default values for added parameters at every
	// call.
	UpdateCallSites bool
}

// NewChangeSignature creates the operation with call-site updates enabled.
func NewChangeSignature() *ChangeSignature {
	return &ChangeSignature{
		RenameParams:    make(map[string]string),
		UpdateCallSites: true,
	}
}

// AddParameter inserts a new parameter.
func (op *ChangeSignature) AddParameter(spec ParameterSpec) *ChangeSignature {
	op.AddParams = append(op.AddParams, spec)
	return op
}

// RemoveParameter drops a parameter by name.
func (op *ChangeSignature) RemoveParameter(name string) *ChangeSignature {
	op.RemoveParams = append(op.RemoveParams, name)
	return op
}

// RenameParameter renames a parameter.
func (op *ChangeSignature) RenameParameter(oldName, newName string) *ChangeSignature {
	op.RenameParams[oldName] = newName
	return op
}

// ReorderParameters sets the new parameter order.
func (op *ChangeSignature) ReorderParameters(order []string) *ChangeSignature {
	op.ReorderParams = order
	return op
}

// ChangeReturnType sets a new return type.
func (op *ChangeSignature) ChangeReturnType(newType string) *ChangeSignature {
	op.NewReturnType = newType
	return op
}

// SkipCallSiteUpdates leaves call sites untouched.
func (op *ChangeSignature) SkipCallSiteUpdates() *ChangeSignature {
	op.UpdateCallSites = false
	return op
}

func (op *ChangeSignature) Name() string { return "Change Signature" }

func (op *ChangeSignature) Validate(ctx *Context) (ValidationResult, error) {
	if err := ctx.Validate(); err != nil {
		return ValidationResult{}, err
	}

	sig, err := findSignatureAt(ctx)
	if err != nil {
		return ValidationResult{}, err
	}
	if sig == nil {
		return Invalid("No function found at cursor position"), nil
	}

	params := parseParameters(sig.ParamsText, ctx.Language())

	for _, name := range op.RemoveParams {
		if !hasParameter(params, name) {
			return Invalid(fmt.Sprintf("Parameter '%s' not found in function signature", name)), nil
		}
	}
	for oldName := range op.RenameParams {
		if !hasParameter(params, oldName) {
			return Invalid(fmt.Sprintf("Parameter '%s' not found in function signature", oldName)), nil
		}
	}

	return Valid(), nil
}

func (op *ChangeSignature) Preview(ctx *Context) (*Preview, error) {
	sig, err := findSignatureAt(ctx)
	if err != nil {
		return nil, err
	}
	if sig == nil {
		return nil, fmt.Errorf("%w: no function found", ErrInvalidConfig)
	}

	lang := ctx.Language()
	params := parseParameters(sig.ParamsText, lang)

	preview := NewPreview(fmt.Sprintf("Change signature of '%s'", sig.Name))

	newParams := op.generateNewParams(params, lang)
	preview.AddEdit(text.NewEdit(ctx.TargetFile, sig.ParamsRange, newParams))

	if op.NewReturnType != "" && sig.ReturnType != "" {
		preview.AddEdit(text.NewEdit(ctx.TargetFile, sig.ReturnRange, op.NewReturnType))
	}

	if op.UpdateCallSites {
		calls, err := findCallSites(ctx, sig.Name)
		if err != nil {
			return nil, err
		}
		for _, call := range calls {
			newArgs := op.updateCallArgs(call.Args)
			preview.AddEdit(text.NewEdit(ctx.TargetFile, call.ArgsRange, newArgs))
		}
	}

	var changes []string
	if len(op.AddParams) > 0 {
		names := make([]string, 0, len(op.AddParams))
		for _, s := range op.AddParams {
			names = append(names, s.Name)
		}
		changes = append(changes, "add: "+strings.Join(names, ", "))
	}
	if len(op.RemoveParams) > 0 {
		changes = append(changes, "remove: "+strings.Join(op.RemoveParams, ", "))
	}
	if len(op.RenameParams) > 0 {
		pairs := make([]string, 0, len(op.RenameParams))
		for oldName, newName := range op.RenameParams {
			pairs = append(pairs, oldName+" -> "+newName)
		}
		changes = append(changes, "rename: "+strings.Join(pairs, ", "))
	}
	if op.NewReturnType != "" {
		changes = append(changes, "return type: "+op.NewReturnType)
	}

	oldNames := make([]string, 0, len(params))
	for _, p := range params {
		oldNames = append(oldNames, p.Name)
	}

	preview.Diff = fmt.Sprintf("Change signature of '%s'\nOld: %s\nNew: %s\nChanges: %s",
		sig.Name, strings.Join(oldNames, ", "), newParams, strings.Join(changes, ", "))

	return preview, nil
}

func (op *ChangeSignature) Apply(ctx *Context) (*Result, error) {
	preview, err := op.Preview(ctx)
	if err != nil {
		return nil, err
	}
	return applyPreview(ctx, preview, "Changed function signature")
}

// generateNewParams applies remove, rename, insert and reorder to the parsed
// parameter list and renders it.
func (op *ChangeSignature) generateNewParams(current []Parameter, lang parser.Language) string {
	var params []Parameter
	for _, p := range current {
		if containsString(op.RemoveParams, p.Name) {
			continue
		}
		name := p.Name
		if newName, ok := op.RenameParams[name]; ok {
			name = newName
		}
		params = append(params, Parameter{Name: name, Type: p.Type, IsSelf: p.IsSelf})
	}

	for _, spec := range op.AddParams {
		newParam := Parameter{Name: spec.Name, Type: spec.Type}
		if spec.Position < 0 || spec.Position >= len(params) {
			params = append(params, newParam)
		} else {
			params = append(params[:spec.Position],
				append([]Parameter{newParam}, params[spec.Position:]...)...)
		}
	}

	if len(op.ReorderParams) > 0 {
		var reordered []Parameter
		for _, name := range op.ReorderParams {
			for _, p := range params {
				if p.Name == name {
					reordered = append(reordered, p)
					break
				}
			}
		}
		for _, p := range params {
			if !containsString(op.ReorderParams, p.Name) {
				reordered = append(reordered, p)
			}
		}
		params = reordered
	}

	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, formatParameter(p, lang))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// updateCallArgs appends default values for added parameters at one call
// site. Removed and reordered parameters are not tracked at call sites.
func (op *ChangeSignature) updateCallArgs(argsText string) string {
	inner := stripOuterParens(argsText)

	var args []string
	if strings.TrimSpace(inner) != "" {
		for _, a := range splitTopLevel(inner) {
			args = append(args, strings.TrimSpace(a))
		}
	}

	for _, spec := range op.AddParams {
		if spec.DefaultValue == "" {
			continue
		}
		if spec.Position < 0 || spec.Position >= len(args) {
			args = append(args, spec.DefaultValue)
		} else {
			args = append(args[:spec.Position],
				append([]string{spec.DefaultValue}, args[spec.Position:]...)...)
		}
	}

	return "(" + strings.Join(args, ", ") + ")"
}

// parseParameters splits a raw parameter list into parsed parameters,
// respecting nesting in generics and tuples.
func parseParameters(paramsText string, lang parser.Language) []Parameter {
	inner := stripOuterParens(paramsText)
	if inner == "" {
		return nil
	}

	var params []Parameter
	for _, part := range splitTopLevel(inner) {
		if p, ok := parseSingleParameter(part, lang); ok {
			params = append(params, p)
		}
	}
	return params
}

// parseSingleParameter parses one parameter per the language's declaration
// order.
func parseSingleParameter(param string, lang parser.Language) (Parameter, bool) {
	param = strings.TrimSpace(param)
	if param == "" {
		return Parameter{}, false
	}

	switch lang {
	case parser.LanguageRust:
		if param == "self" || param == "&self" || param == "&mut self" {
			return Parameter{Name: "self", Type: param, IsSelf: true}, true
		}
		if name, typ, ok := strings.Cut(param, ":"); ok {
			return Parameter{Name: strings.TrimSpace(name), Type: strings.TrimSpace(typ)}, true
		}
		return Parameter{}, false

	case parser.LanguageTypeScript, parser.LanguageJavaScript:
		if name, typ, ok := strings.Cut(param, ":"); ok {
			return Parameter{Name: strings.TrimSpace(name), Type: strings.TrimSpace(typ)}, true
		}
		return Parameter{Name: param, Type: "any"}, true

	case parser.LanguagePython:
		if param == "self" || param == "cls" {
			return Parameter{Name: param, IsSelf: true}, true
		}
		if name, typ, ok := strings.Cut(param, ":"); ok {
			return Parameter{Name: strings.TrimSpace(name), Type: strings.TrimSpace(typ)}, true
		}
		return Parameter{Name: param}, true

	case parser.LanguageGo:
		parts := strings.Fields(param)
		switch {
		case len(parts) >= 2:
			return Parameter{Name: parts[0], Type: strings.Join(parts[1:], " ")}, true
		case len(parts) == 1:
			return Parameter{Type: parts[0]}, true
		}
		return Parameter{}, false

	case parser.LanguageJava, parser.LanguageCSharp:
		parts := strings.Fields(param)
		if len(parts) >= 2 {
			return Parameter{
				Name: parts[len(parts)-1],
				Type: strings.Join(parts[:len(parts)-1], " "),
			}, true
		}
		return Parameter{}, false

	case parser.LanguageRuby:
		name := param
		if idx := strings.Index(param, "="); idx >= 0 {
			name = strings.TrimSpace(param[:idx])
		}
		return Parameter{Name: name}, true

	default:
		return Parameter{}, false
	}
}

// formatParameter renders one parameter per language convention.
func formatParameter(p Parameter, lang parser.Language) string {
	if p.IsSelf {
		if p.Type != "" {
			return p.Type
		}
		return p.Name
	}

	switch lang {
	case parser.LanguageRust:
		return p.Name + ": " + p.Type
	case parser.LanguageTypeScript, parser.LanguageJavaScript:
		if p.Type == "" || p.Type == "any" {
			return p.Name
		}
		return p.Name + ": " + p.Type
	case parser.LanguagePython:
		if p.Type == "" {
			return p.Name
		}
		return p.Name + ": " + p.Type
	case parser.LanguageGo:
		return p.Name + " " + p.Type
	case parser.LanguageJava, parser.LanguageCSharp:
		return p.Type + " " + p.Name
	default:
		return p.Name
	}
}

func hasParameter(params []Parameter, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
