package refactor

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVariableRust(t *testing.T) {
	ctx := newTestContext(t, "main.rs", "fn main() {\n    let x = 1 + 2;\n}\n")
	ctx.WithSelection(1, 12, 1, 17)

	op := NewExtractVariable("sum")

	validation, err := op.Validate(ctx)
	require.NoError(t, err)
	require.True(t, validation.IsValid)

	result, err := op.Apply(ctx)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Contains(t, ctx.Source, "let sum = 1 + 2;")
	assert.Contains(t, ctx.Source, "let x = sum;")

	data, err := os.ReadFile(ctx.TargetFile)
	require.NoError(t, err)
	assert.Equal(t, ctx.Source, string(data))
}

func TestExtractVariablePreservesIndentation(t *testing.T) {
	ctx := newTestContext(t, "main.rs", "fn main() {\n    let x = 1 + 2;\n}\n")
	ctx.WithSelection(1, 12, 1, 17)

	preview, err := NewExtractVariable("sum").Preview(ctx)
	require.NoError(t, err)

	require.Len(t, preview.Edits, 2)
	assert.Equal(t, "    let sum = 1 + 2;\n", preview.Edits[0].NewText)
}

func TestExtractVariablePreviewIsIdempotent(t *testing.T) {
	ctx := newTestContext(t, "main.rs", "fn main() {\n    let x = 1 + 2;\n}\n")
	ctx.WithSelection(1, 12, 1, 17)

	op := NewExtractVariable("sum")
	first, err := op.Preview(ctx)
	require.NoError(t, err)
	second, err := op.Preview(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Edits, second.Edits)
	assert.Equal(t, first.Diff, second.Diff)
}

func TestExtractVariableReplaceAll(t *testing.T) {
	source := "fn main() {\n    let a = 1 + 2;\n    let b = 1 + 2;\n}\n"
	ctx := newTestContext(t, "main.rs", source)
	ctx.WithSelection(1, 12, 1, 17)

	result, err := NewExtractVariable("sum").ReplaceAllOccurrences().Apply(ctx)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Contains(t, ctx.Source, "let a = sum;")
	assert.Contains(t, ctx.Source, "let b = sum;")
	assert.Equal(t, 1, strings.Count(ctx.Source, "1 + 2"))
}

func TestExtractVariableValidate(t *testing.T) {
	ctx := newTestContext(t, "main.rs", "fn main() {\n    let x = 1 + 2;\n}\n")

	validation, err := NewExtractVariable("sum").Validate(ctx)
	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	assert.Contains(t, validation.Errors[0], "No expression selected")

	ctx.WithSelection(1, 12, 1, 17)

	validation, err = NewExtractVariable("").Validate(ctx)
	require.NoError(t, err)
	assert.False(t, validation.IsValid)

	validation, err = NewExtractVariable("9lives").Validate(ctx)
	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	assert.Contains(t, validation.Errors[0], "must start with a letter or underscore")
}

func TestExtractFunctionWithExplicitParams(t *testing.T) {
	source := "fn main() {\n    let z = x + y;\n}\n"
	ctx := newTestContext(t, "main.rs", source)
	ctx.WithSelection(1, 4, 1, 18)

	op := NewExtractFunction("compute").WithParams(map[string]string{"x": "i32"})

	preview, err := op.Preview(ctx)
	require.NoError(t, err)

	require.Len(t, preview.Edits, 2)
	assert.Contains(t, preview.Edits[0].NewText, "fn compute(x: i32)")
	assert.Equal(t, "compute(x)", preview.Edits[1].NewText)
	assert.Contains(t, preview.Diff, "Extract to:")
}

func TestExtractFunctionPublicRust(t *testing.T) {
	ctx := newTestContext(t, "main.rs", "fn main() {\n    let z = x + y;\n}\n")
	ctx.WithSelection(1, 4, 1, 18)

	preview, err := NewExtractFunction("compute").Public().Preview(ctx)
	require.NoError(t, err)
	assert.Contains(t, preview.Edits[0].NewText, "pub fn compute(")
}

func TestExtractFunctionValidate(t *testing.T) {
	ctx := newTestContext(t, "main.rs", "fn main() {\n    let z = x + y;\n}\n")

	validation, err := NewExtractFunction("f").Validate(ctx)
	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	assert.Contains(t, validation.Errors[0], "No code selected")

	ctx.WithSelection(1, 4, 1, 18)

	validation, err = NewExtractFunction("").Validate(ctx)
	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	assert.Contains(t, validation.Errors[0], "Function name is required")
}

func TestExtractConstantRust(t *testing.T) {
	ctx := newTestContext(t, "main.rs", "fn main() {\n    let area = 3.14 * r * r;\n}\n")
	ctx.WithSelection(1, 15, 1, 19)
	require.Equal(t, "3.14", ctx.SelectedText())

	result, err := NewExtractConstant("pi").Apply(ctx)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.True(t, strings.HasPrefix(ctx.Source, "const PI: _ = 3.14;\n"))
	assert.Contains(t, ctx.Source, "let area = PI * r * r;")
}

func TestExtractConstantLocalKeepsIndent(t *testing.T) {
	ctx := newTestContext(t, "app.ts", "function f() {\n    const area = 3.14 * r;\n}\n")
	ctx.WithSelection(1, 17, 1, 21)
	require.Equal(t, "3.14", ctx.SelectedText())

	preview, err := NewExtractConstant("pi").Local().Preview(ctx)
	require.NoError(t, err)

	require.Len(t, preview.Edits, 2)
	assert.Equal(t, "    const pi = 3.14;\n", preview.Edits[0].NewText)
	assert.Equal(t, "pi", preview.Edits[1].NewText)
}

func TestFindOccurrences(t *testing.T) {
	occurrences := findOccurrences("a + b\nc = a + b\n", "a + b")
	assert.Len(t, occurrences, 2)
	assert.Equal(t, uint32(0), occurrences[0].Start.Line)
	assert.Equal(t, uint32(1), occurrences[1].Start.Line)

	assert.Empty(t, findOccurrences("abc", ""))
}
