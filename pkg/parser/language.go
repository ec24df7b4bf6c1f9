package parser

import (
	"path/filepath"
	"strings"
)

// Language represents a source language recognized by the refactoring engine.
type Language int

const (
	// LanguageRust represents Rust (.rs files)
	LanguageRust Language = iota
	// LanguageTypeScript represents TypeScript (.ts, .tsx files)
	LanguageTypeScript
	// LanguageJavaScript represents JavaScript (.js, .jsx files)
	LanguageJavaScript
	// LanguagePython represents Python (.py, .pyi files)
	LanguagePython
	// LanguageGo represents Go (.go files) — query tables only, no bundled grammar
	LanguageGo
	// LanguageJava represents Java (.java files) — query tables only, no bundled grammar
	LanguageJava
	// LanguageCSharp represents C# (.cs files) — query tables only, no bundled grammar
	LanguageCSharp
	// LanguageRuby represents Ruby (.rb files) — query tables only, no bundled grammar
	LanguageRuby
	// LanguageUnknown represents an unsupported language
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguageRust:
		return "rust"
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	case LanguagePython:
		return "python"
	case LanguageGo:
		return "go"
	case LanguageJava:
		return "java"
	case LanguageCSharp:
		return "csharp"
	case LanguageRuby:
		return "ruby"
	default:
		return "unknown"
	}
}

// DetectLanguage detects the source language from a file path.
// Returns LanguageUnknown if the file extension is not recognized.
func DetectLanguage(filePath string) Language {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".rs":
		return LanguageRust
	case ".ts", ".mts", ".cts":
		return LanguageTypeScript
	case ".tsx":
		return LanguageTypeScript // TSX is handled separately via IsTSXFile
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript
	case ".py", ".pyi":
		return LanguagePython
	case ".go":
		return LanguageGo
	case ".java":
		return LanguageJava
	case ".cs":
		return LanguageCSharp
	case ".rb":
		return LanguageRuby
	default:
		return LanguageUnknown
	}
}

// HasGrammar reports whether a tree-sitter grammar is bundled for the
// language. Go, Java, C# and Ruby are detected and carry query tables, but
// parsing them requires a grammar the caller must supply.
func (l Language) HasGrammar() bool {
	switch l {
	case LanguageRust, LanguageTypeScript, LanguageJavaScript, LanguagePython:
		return true
	default:
		return false
	}
}

// IsTSXFile checks if a file path represents a TSX file.
// TSX files use the TypeScript grammar with JSX support enabled.
func IsTSXFile(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	return ext == ".tsx"
}

// IsJSXFile checks if a file path represents a JSX file.
// JSX files use the JavaScript grammar.
func IsJSXFile(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	return ext == ".jsx"
}

// ParseLanguageString converts a language string to a Language type.
// Returns LanguageUnknown if the string is not recognized.
func ParseLanguageString(lang string) Language {
	switch strings.ToLower(lang) {
	case "rust", "rs":
		return LanguageRust
	case "typescript", "ts":
		return LanguageTypeScript
	case "javascript", "js":
		return LanguageJavaScript
	case "python", "py":
		return LanguagePython
	case "go", "golang":
		return LanguageGo
	case "java":
		return LanguageJava
	case "csharp", "cs", "c#":
		return LanguageCSharp
	case "ruby", "rb":
		return LanguageRuby
	default:
		return LanguageUnknown
	}
}

// SupportedLanguages returns the languages with bundled grammars.
func SupportedLanguages() []Language {
	return []Language{
		LanguageRust,
		LanguageTypeScript,
		LanguageJavaScript,
		LanguagePython,
	}
}
