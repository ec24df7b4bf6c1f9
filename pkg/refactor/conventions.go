package refactor

import (
	"strings"
	"unicode"

	"github.com/gnana997/refract/pkg/parser"
)

// Visibility of an extracted item.
type Visibility int

const (
	VisibilityPrivate Visibility = iota
	VisibilityPublic
	VisibilityProtected
)

// Keyword returns the visibility prefix for a language. Go expresses
// visibility through capitalization and Python through a leading underscore,
// both handled at signature generation.
func (v Visibility) Keyword(lang parser.Language) string {
	switch lang {
	case parser.LanguageRust:
		if v == VisibilityPublic {
			return "pub "
		}
	case parser.LanguageJava, parser.LanguageCSharp:
		switch v {
		case VisibilityPublic:
			return "public "
		case VisibilityProtected:
			return "protected "
		default:
			return "private "
		}
	case parser.LanguageTypeScript, parser.LanguageJavaScript:
		if v == VisibilityPublic {
			return "export "
		}
	case parser.LanguagePython:
		if v == VisibilityPrivate {
			return "_"
		}
	}
	return ""
}

// languageKeywords filters identifiers that cannot be free variables when
// inferring parameters for extraction.
var languageKeywords = map[parser.Language][]string{
	parser.LanguageRust: {
		"fn", "let", "mut", "if", "else", "for", "while", "loop", "match", "return",
		"self", "Self", "true", "false", "pub", "use", "mod", "struct", "enum", "impl",
		"trait", "where", "async", "await", "move", "ref", "static", "const", "type",
		"dyn", "unsafe",
	},
	parser.LanguageTypeScript: {
		"function", "let", "const", "var", "if", "else", "for", "while", "return",
		"this", "true", "false", "null", "undefined", "class", "interface", "type",
		"export", "import", "async", "await", "new", "typeof", "instanceof",
	},
	parser.LanguageJavaScript: {
		"function", "let", "const", "var", "if", "else", "for", "while", "return",
		"this", "true", "false", "null", "undefined", "class", "interface", "type",
		"export", "import", "async", "await", "new", "typeof", "instanceof",
	},
	parser.LanguagePython: {
		"def", "class", "if", "else", "elif", "for", "while", "return", "self", "True",
		"False", "None", "import", "from", "as", "try", "except", "finally", "with",
		"lambda", "yield", "async", "await", "pass", "break", "continue",
	},
	parser.LanguageGo: {
		"func", "var", "const", "if", "else", "for", "range", "return", "true",
		"false", "nil", "type", "struct", "interface", "package", "import", "go",
		"defer", "select", "chan", "map", "make", "new", "append", "len", "cap",
	},
	parser.LanguageJava: {
		"class", "interface", "public", "private", "protected", "static", "final",
		"void", "if", "else", "for", "while", "return", "this", "super", "new",
		"true", "false", "null", "try", "catch", "finally", "throw", "throws",
		"import", "package",
	},
	parser.LanguageCSharp: {
		"class", "interface", "public", "private", "protected", "internal", "static",
		"void", "if", "else", "for", "foreach", "while", "return", "this", "base",
		"new", "true", "false", "null", "try", "catch", "finally", "throw", "using",
		"namespace", "async", "await", "var",
	},
	parser.LanguageRuby: {
		"def", "class", "module", "if", "else", "elsif", "unless", "for", "while",
		"until", "return", "self", "true", "false", "nil", "do", "end", "begin",
		"rescue", "ensure", "yield", "super", "require", "include", "extend",
		"attr_reader", "attr_writer", "attr_accessor",
	},
}

// isLikelyVariable reports whether an identifier could be a free variable:
// not a keyword, non-empty, and starting with a letter or underscore.
func isLikelyVariable(name string, lang parser.Language) bool {
	for _, kw := range languageKeywords[lang] {
		if name == kw {
			return false
		}
	}
	if name == "" {
		return false
	}
	first := rune(name[0])
	return unicode.IsLetter(first) || first == '_'
}

// asyncKeyword returns the async prefix for languages that have one.
func asyncKeyword(lang parser.Language) string {
	switch lang {
	case parser.LanguageRust, parser.LanguageTypeScript, parser.LanguageJavaScript,
		parser.LanguagePython, parser.LanguageCSharp:
		return "async "
	default:
		return ""
	}
}

// paramPair is a (name, type) pair for signature generation. Type may be
// empty when inference found no annotation.
type paramPair struct {
	Name string
	Type string
}

// formatParams renders a parameter list body per language convention.
func formatParams(lang parser.Language, params []paramPair) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		switch lang {
		case parser.LanguageRust:
			if p.Type != "" {
				parts = append(parts, p.Name+": "+p.Type)
			} else {
				parts = append(parts, p.Name+": _")
			}
		case parser.LanguageTypeScript, parser.LanguagePython:
			if p.Type != "" {
				parts = append(parts, p.Name+": "+p.Type)
			} else {
				parts = append(parts, p.Name)
			}
		case parser.LanguageGo:
			if p.Type != "" {
				parts = append(parts, p.Name+" "+p.Type)
			} else {
				parts = append(parts, p.Name)
			}
		case parser.LanguageJava, parser.LanguageCSharp:
			if p.Type != "" {
				parts = append(parts, p.Type+" "+p.Name)
			} else {
				parts = append(parts, "Object "+p.Name)
			}
		default:
			parts = append(parts, p.Name)
		}
	}
	return strings.Join(parts, ", ")
}

// generateSignature renders a function signature for the target language.
// Go public names are capitalized, Python private names get a leading
// underscore.
func generateSignature(lang parser.Language, name string, vis Visibility, isAsync bool, params []paramPair, returnType string) string {
	visKw := vis.Keyword(lang)

	asyncKw := ""
	if isAsync {
		asyncKw = asyncKeyword(lang)
	}

	fnName := name
	switch {
	case lang == parser.LanguageGo && vis == VisibilityPublic:
		fnName = capitalize(name)
	case lang == parser.LanguagePython && vis == VisibilityPrivate:
		fnName = "_" + name
	}

	paramStr := formatParams(lang, params)

	switch lang {
	case parser.LanguageRust:
		ret := ""
		if returnType != "" {
			ret = " -> " + returnType
		}
		return visKw + asyncKw + "fn " + fnName + "(" + paramStr + ")" + ret
	case parser.LanguageTypeScript, parser.LanguageJavaScript:
		ret := ""
		if returnType != "" {
			ret = ": " + returnType
		}
		return visKw + asyncKw + "function " + fnName + "(" + paramStr + ")" + ret
	case parser.LanguagePython:
		ret := ""
		if returnType != "" {
			ret = " -> " + returnType
		}
		return asyncKw + "def " + fnName + "(" + paramStr + ")" + ret + ":"
	case parser.LanguageGo:
		ret := ""
		if returnType != "" {
			ret = " " + returnType
		}
		return "func " + fnName + "(" + paramStr + ")" + ret
	case parser.LanguageJava:
		ret := returnType
		if ret == "" {
			ret = "void"
		}
		return visKw + ret + " " + fnName + "(" + paramStr + ")"
	case parser.LanguageCSharp:
		ret := returnType
		if ret == "" {
			ret = "void"
		}
		return visKw + asyncKw + ret + " " + fnName + "(" + paramStr + ")"
	case parser.LanguageRuby:
		return "def " + fnName + "(" + paramStr + ")"
	default:
		return "function " + fnName + "(" + paramStr + ")"
	}
}

// wrapBody indents the extracted body one level and wraps it in the
// language's block syntax: braces, a Python suite, or a Ruby def/end pair.
func wrapBody(lang parser.Language, body, indent string) string {
	bodyIndent := indent + "    "

	var lines []string
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			lines = append(lines, line)
		} else {
			lines = append(lines, bodyIndent+strings.TrimSpace(line))
		}
	}
	indented := strings.Join(lines, "\n")

	switch lang {
	case parser.LanguagePython:
		return "\n" + indented
	case parser.LanguageRuby:
		return "\n" + indented + "\n" + indent + "end"
	default:
		return " {\n" + indented + "\n" + indent + "}"
	}
}

// variableDeclaration renders a local variable (or const) declaration.
func variableDeclaration(lang parser.Language, name, expression string, isConst bool) string {
	switch lang {
	case parser.LanguageRust:
		kw := "let"
		if isConst {
			kw = "const"
		}
		return kw + " " + name + " = " + expression + ";"
	case parser.LanguageTypeScript, parser.LanguageJavaScript:
		kw := "let"
		if isConst {
			kw = "const"
		}
		return kw + " " + name + " = " + expression + ";"
	case parser.LanguagePython, parser.LanguageRuby:
		return name + " = " + expression
	case parser.LanguageGo:
		if isConst {
			return "const " + name + " = " + expression
		}
		return name + " := " + expression
	case parser.LanguageJava:
		kw := "var"
		if isConst {
			kw = "final var"
		}
		return kw + " " + name + " = " + expression + ";"
	case parser.LanguageCSharp:
		kw := "var"
		if isConst {
			kw = "const var"
		}
		return kw + " " + name + " = " + expression + ";"
	default:
		return "let " + name + " = " + expression + ";"
	}
}

// constantDeclaration renders a module-level constant declaration. Rust, Go
// and Ruby constant names are uppercased by convention.
func constantDeclaration(lang parser.Language, name, expression string, vis Visibility) string {
	visKw := vis.Keyword(lang)

	constName := name
	if usesUppercaseConstants(lang) {
		constName = strings.ToUpper(name)
	}

	switch lang {
	case parser.LanguageRust:
		return visKw + "const " + constName + ": _ = " + expression + ";"
	case parser.LanguageTypeScript, parser.LanguageJavaScript:
		return visKw + "const " + constName + " = " + expression + ";"
	case parser.LanguagePython:
		return constName + " = " + expression
	case parser.LanguageGo:
		return "const " + constName + " = " + expression
	case parser.LanguageJava:
		return visKw + "static final var " + constName + " = " + expression + ";"
	case parser.LanguageCSharp:
		return visKw + "const var " + constName + " = " + expression + ";"
	case parser.LanguageRuby:
		return constName + " = " + expression
	default:
		return "const " + constName + " = " + expression + ";"
	}
}

// usesUppercaseConstants reports whether the language names constants in
// upper case.
func usesUppercaseConstants(lang parser.Language) bool {
	switch lang {
	case parser.LanguageRust, parser.LanguageGo, parser.LanguageRuby:
		return true
	default:
		return false
	}
}

// capitalize upper-cases the first rune of a name.
func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

// splitTopLevel splits a comma-separated list while respecting nesting in
// (), [], <> and {}. Used for parameter and argument lists.
func splitTopLevel(s string) []string {
	var parts []string
	var current strings.Builder
	depth := 0

	for _, ch := range s {
		switch ch {
		case '(', '[', '<', '{':
			depth++
			current.WriteRune(ch)
		case ')', ']', '>', '}':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				parts = append(parts, current.String())
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// stripOuterParens removes one layer of surrounding parentheses.
func stripOuterParens(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return s[1 : len(s)-1]
	}
	return s
}
