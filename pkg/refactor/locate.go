package refactor

import (
	"sort"

	"github.com/gnana997/refract/pkg/parser/queries"
	"github.com/gnana997/refract/pkg/text"
)

// locRange converts a query Location (1-based line/column) to a zero-indexed
// text.Range.
func locRange(loc queries.Location) text.Range {
	return text.Range{
		Start: text.Position{Line: loc.StartLine - 1, Character: loc.StartColumn - 1},
		End:   text.Position{Line: loc.EndLine - 1, Character: loc.EndColumn - 1},
	}
}

// declaration is a local variable declaration with its initializer.
type declaration struct {
	Name  string
	Value string
	Range text.Range
}

// findDeclarationAt locates the variable declaration whose node spans the
// selection's start line. Returns nil when the cursor is not on one.
func findDeclarationAt(ctx *Context) (*declaration, error) {
	qs, err := ctx.querySet()
	if err != nil {
		return nil, err
	}
	if qs.Declaration == "" {
		return nil, nil
	}

	matches, err := ctx.execQuery(qs.Declaration)
	if err != nil {
		return nil, err
	}

	cursorLine := ctx.Selection.Start.Line
	for _, m := range matches {
		name := m.CaptureNamed("name")
		value := m.CaptureNamed("value")
		decl := m.CaptureNamed("decl")
		if name == nil || value == nil || decl == nil {
			continue
		}

		r := locRange(decl.Location)
		if r.ContainsLine(cursorLine) {
			return &declaration{
				Name:  name.Text,
				Value: value.Text,
				Range: r,
			}, nil
		}
	}
	return nil, nil
}

// functionDef is a function definition with its body text.
type functionDef struct {
	Name   string
	Params string
	Body   string
	Range  text.Range
}

// findFunctionAt locates the function definition spanning the selection's
// start line.
func findFunctionAt(ctx *Context) (*functionDef, error) {
	qs, err := ctx.querySet()
	if err != nil {
		return nil, err
	}
	if qs.FunctionBody == "" {
		return nil, nil
	}

	matches, err := ctx.execQuery(qs.FunctionBody)
	if err != nil {
		return nil, err
	}

	cursorLine := ctx.Selection.Start.Line
	for _, m := range matches {
		name := m.CaptureNamed("name")
		body := m.CaptureNamed("body")
		fn := m.CaptureNamed("func")
		if name == nil || body == nil || fn == nil {
			continue
		}

		r := locRange(fn.Location)
		if r.ContainsLine(cursorLine) {
			params := ""
			if p := m.CaptureNamed("params"); p != nil {
				params = p.Text
			}
			return &functionDef{
				Name:   name.Text,
				Params: params,
				Body:   body.Text,
				Range:  r,
			}, nil
		}
	}
	return nil, nil
}

// functionSig is a function signature: raw parameter list text with its
// exact range, and an optional return type.
type functionSig struct {
	Name        string
	ParamsText  string
	ParamsRange text.Range
	ReturnType  string
	ReturnRange text.Range
	Range       text.Range
}

// findSignatureAt locates the function signature spanning the selection's
// start line.
func findSignatureAt(ctx *Context) (*functionSig, error) {
	qs, err := ctx.querySet()
	if err != nil {
		return nil, err
	}
	if qs.Function == "" {
		return nil, nil
	}

	matches, err := ctx.execQuery(qs.Function)
	if err != nil {
		return nil, err
	}

	cursorLine := ctx.Selection.Start.Line
	for _, m := range matches {
		name := m.CaptureNamed("name")
		params := m.CaptureNamed("params")
		fn := m.CaptureNamed("func")
		if name == nil || params == nil || fn == nil {
			continue
		}

		r := locRange(fn.Location)
		if r.ContainsLine(cursorLine) {
			sig := &functionSig{
				Name:        name.Text,
				ParamsText:  params.Text,
				ParamsRange: locRange(params.Location),
				Range:       r,
			}
			if ret := m.CaptureNamed("return"); ret != nil {
				sig.ReturnType = ret.Text
				sig.ReturnRange = locRange(ret.Location)
			}
			return sig, nil
		}
	}
	return nil, nil
}

// symbolDef is a top-level symbol definition with its full source text.
type symbolDef struct {
	Name  string
	Text  string
	Range text.Range
}

// findSymbolAt locates the definition spanning the selection's start line
// using the multi-pattern symbol query.
func findSymbolAt(ctx *Context) (*symbolDef, error) {
	qs, err := ctx.querySet()
	if err != nil {
		return nil, err
	}
	if qs.Symbols == "" {
		return nil, nil
	}

	matches, err := ctx.execQuery(qs.Symbols)
	if err != nil {
		return nil, err
	}

	cursorLine := ctx.Selection.Start.Line
	for _, m := range matches {
		name := m.CaptureNamed("name")
		def := m.CaptureNamed("def")
		if name == nil || def == nil {
			continue
		}

		r := locRange(def.Location)
		if r.ContainsLine(cursorLine) {
			return &symbolDef{
				Name:  name.Text,
				Text:  def.Text,
				Range: r,
			}, nil
		}
	}
	return nil, nil
}

// callSite is one call to a named function with the span of its arguments.
type callSite struct {
	Name      string
	Args      string
	Range     text.Range
	ArgsRange text.Range
}

// findCallSites returns every call to the named function in the buffer.
func findCallSites(ctx *Context, funcName string) ([]callSite, error) {
	qs, err := ctx.querySet()
	if err != nil {
		return nil, err
	}
	if qs.Calls == "" {
		return nil, nil
	}

	matches, err := ctx.execQuery(qs.Calls)
	if err != nil {
		return nil, err
	}

	var calls []callSite
	for _, m := range matches {
		name := m.CaptureNamed("name")
		call := m.CaptureNamed("call")
		if name == nil || call == nil || name.Text != funcName {
			continue
		}

		c := callSite{
			Name:  name.Text,
			Range: locRange(call.Location),
		}
		if args := m.CaptureNamed("args"); args != nil {
			c.Args = args.Text
			c.ArgsRange = locRange(args.Location)
		}
		calls = append(calls, c)
	}
	return calls, nil
}

// findIdentifierOccurrences returns the range of every identifier in the
// buffer whose text equals name.
func findIdentifierOccurrences(ctx *Context, name string) ([]text.Range, error) {
	qs, err := ctx.querySet()
	if err != nil {
		return nil, err
	}

	matches, err := ctx.execQuery(qs.Identifiers)
	if err != nil {
		return nil, err
	}

	var out []text.Range
	for _, m := range matches {
		for _, cap := range m.Captures {
			if cap.Text == name {
				out = append(out, locRange(cap.Location))
			}
		}
	}
	return out, nil
}

// identifiersIn parses a snippet in the target language and returns the
// distinct identifiers it contains, sorted for deterministic output.
func identifiersIn(ctx *Context, code string) ([]string, error) {
	qs, err := ctx.querySet()
	if err != nil {
		return nil, err
	}

	matches, err := ctx.execQueryOn(code, qs.Identifiers)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, m := range matches {
		for _, cap := range m.Captures {
			seen[cap.Text] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}
