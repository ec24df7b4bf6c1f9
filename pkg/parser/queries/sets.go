package queries

import "github.com/gnana997/refract/pkg/parser"

// DefKind names a category of definition the operation layer searches for.
type DefKind string

const (
	DefFunctions DefKind = "functions"
	DefVariables DefKind = "variables"
	DefImports   DefKind = "imports"
	DefTypes     DefKind = "types"
	DefConstants DefKind = "constants"
)

// BindingQuery pairs a binding-extraction query with the binding kind its
// matches produce. Capture names: "name" (identifier), "def" (full
// definition node), optional "vis" (visibility modifier).
type BindingQuery struct {
	Kind  string
	Query string
}

// QuerySet is the full set of named queries for one language. Built once as
// process-wide read-only state and shared by the scope analyzer and all
// operations.
//
// Capture name conventions:
//   - Bindings:    name, def, vis (optional)
//   - Identifiers: id
//   - Definitions: name, def
//   - Declaration: name, value, decl
//   - Function:    name, params, return (optional), func
//   - FunctionBody: name, params, body, func
//   - Calls:       name, args, call
//   - Blocks:      block
//   - Comments:    comment
type QuerySet struct {
	// Bindings extracts top-level declarations for the BindingTracker.
	Bindings []BindingQuery

	// Identifiers matches every identifier occurrence.
	Identifiers string

	// Definitions maps a definition category to a (possibly multi-pattern)
	// query used by dead-code analysis.
	Definitions map[DefKind]string

	// Symbols is the multi-pattern definition query used by move and
	// safe-delete to locate the symbol under the cursor.
	Symbols string

	// Declaration locates a local variable declaration with its value.
	Declaration string

	// Function locates a function signature (parameters, return type).
	Function string

	// FunctionBody locates a function together with its body node.
	FunctionBody string

	// Calls locates call expressions with their argument spans.
	Calls string

	// Blocks matches block nodes for the empty-block detector.
	Blocks string

	// Comments matches comment nodes for the commented-code detector.
	Comments string
}

// registry maps each language to its query set. Go, Java, C# and Ruby carry
// query tables even though no grammar is bundled; running them requires a
// caller-supplied grammar.
var registry = map[parser.Language]QuerySet{
	parser.LanguageRust:       rustQueries,
	parser.LanguageTypeScript: typescriptQueries,
	parser.LanguageJavaScript: javascriptQueries,
	parser.LanguagePython:     pythonQueries,
	parser.LanguageGo:         goQueries,
	parser.LanguageJava:       javaQueries,
	parser.LanguageCSharp:     csharpQueries,
	parser.LanguageRuby:       rubyQueries,
}

// Set returns the query set for a language. The second return is false for
// languages with no query table.
func Set(lang parser.Language) (QuerySet, bool) {
	qs, ok := registry[lang]
	return qs, ok
}
