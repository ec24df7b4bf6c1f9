package refactor

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/refract/pkg/parser"
	"github.com/gnana997/refract/pkg/parser/queries"
	"github.com/gnana997/refract/pkg/text"
)

// newTestContext writes source to a temp file and builds a context around it,
// so both preview-only and apply tests work against real files.
func newTestContext(t *testing.T, name, source string) *Context {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	pm := parser.NewParserManager(logger)
	t.Cleanup(func() { pm.Close() })
	qm := queries.NewQueryManager(pm, logger)
	t.Cleanup(func() { qm.Close() })

	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))

	return NewContext(dir, path, pm, qm, logger).WithSource(source)
}

func TestContextSelectedText(t *testing.T) {
	ctx := newTestContext(t, "main.rs", "fn main() {\n    let x = 42;\n}\n")
	ctx.WithSelection(1, 4, 1, 15)

	assert.Equal(t, "let x = 42;", ctx.SelectedText())
}

func TestContextIndentationAt(t *testing.T) {
	ctx := newTestContext(t, "main.rs", "fn main() {\n    let x = 42;\n\tlet y = 1;\n}\n")

	assert.Equal(t, "", ctx.IndentationAt(0))
	assert.Equal(t, "    ", ctx.IndentationAt(1))
	assert.Equal(t, "\t", ctx.IndentationAt(2))
}

func TestContextLoadSource(t *testing.T) {
	ctx := newTestContext(t, "main.rs", "fn main() {}\n")
	ctx.Source = ""

	require.NoError(t, ctx.LoadSource())
	assert.Equal(t, "fn main() {}\n", ctx.Source)
}

func TestContextValidateEmptySource(t *testing.T) {
	ctx := newTestContext(t, "main.rs", "fn main() {}\n")
	ctx.Source = ""

	err := ctx.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestContextValidateUnknownExtension(t *testing.T) {
	ctx := newTestContext(t, "README.md", "# readme\n")

	err := ctx.Validate()
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestContextLanguageDetection(t *testing.T) {
	ctx := newTestContext(t, "service.ts", "export function f() {}\n")
	assert.Equal(t, parser.LanguageTypeScript, ctx.Language())
}

func TestValidationResultBuilders(t *testing.T) {
	v := Valid()
	assert.True(t, v.IsValid)
	assert.Empty(t, v.Errors)

	v = v.WithWarning("careful")
	assert.True(t, v.IsValid)
	assert.Equal(t, []string{"careful"}, v.Warnings)

	inv := Invalid("bad input").WithError("worse input")
	assert.False(t, inv.IsValid)
	assert.Len(t, inv.Errors, 2)
}

func TestPreviewTracksAffectedFiles(t *testing.T) {
	p := NewPreview("test")
	p.AddEdit(text.Insert("a.rs", text.Position{}, "x"))
	p.AddEdit(text.Insert("a.rs", text.Position{Line: 1}, "y"))
	p.AddEdit(text.Insert("b.rs", text.Position{}, "z"))

	assert.Equal(t, []string{"a.rs", "b.rs"}, p.AffectedFiles)
	assert.Len(t, p.Edits, 3)
}

func TestResultWithFileDeduplicates(t *testing.T) {
	r := Success("done").WithFile("a.rs").WithFile("a.rs").WithFile("b.rs")
	assert.Equal(t, []string{"a.rs", "b.rs"}, r.ModifiedFiles)
}
