package refactor

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deadCodeNames(items []DeadCodeItem) map[string]DeadCodeKind {
	names := make(map[string]DeadCodeKind)
	for _, item := range items {
		names[item.Name] = item.Kind
	}
	return names
}

func TestFindDeadCodeUnusedFunction(t *testing.T) {
	source := "fn unused() {}\n\nfn main() {}\n"
	ctx := newTestContext(t, "main.rs", source)

	report, err := NewFindDeadCode().Analyze(ctx)
	require.NoError(t, err)

	// Exactly one finding: unused. main is the entry point, never dead.
	require.Len(t, report.Items, 1)
	assert.Equal(t, "unused", report.Items[0].Name)
	assert.Equal(t, UnusedFunctions, report.Items[0].Kind)
	assert.Equal(t, 1, report.Summary.Total)
}

func TestFindDeadCodeSkipsUsedFunction(t *testing.T) {
	source := "fn used() {}\n\nfn main() {\n    used();\n}\n"
	ctx := newTestContext(t, "main.rs", source)

	report, err := NewFindDeadCode().Analyze(ctx)
	require.NoError(t, err)

	assert.Empty(t, report.Items)
}

func TestFindDeadCodeEntryPointExcluded(t *testing.T) {
	source := "fn main() {}\n"
	ctx := newTestContext(t, "main.rs", source)

	report, err := NewFindDeadCode().IncludeKinds(UnusedFunctions).Analyze(ctx)
	require.NoError(t, err)

	assert.Empty(t, report.Items)
}

func TestFindDeadCodeSelfRecursion(t *testing.T) {
	// A function whose only caller is itself is unreachable from outside.
	source := "fn spin() {\n    spin();\n}\n\nfn main() {}\n"
	ctx := newTestContext(t, "main.rs", source)

	report, err := NewFindDeadCode().IncludeKinds(UnusedFunctions).Analyze(ctx)
	require.NoError(t, err)

	names := deadCodeNames(report.Items)
	assert.Contains(t, names, "spin")
	assert.Equal(t, UnusedFunctions, names["spin"])
}

func TestFindDeadCodeUnusedImport(t *testing.T) {
	source := "use std::collections::HashMap;\n\nfn main() {}\n"
	ctx := newTestContext(t, "main.rs", source)

	report, err := NewFindDeadCode().IncludeKinds(UnusedImports).Analyze(ctx)
	require.NoError(t, err)

	names := deadCodeNames(report.Items)
	assert.Contains(t, names, "HashMap")
	assert.Equal(t, UnusedImports, names["HashMap"])
}

func TestFindDeadCodeUsedImport(t *testing.T) {
	source := "use std::collections::HashMap;\n\n" +
		"fn main() {\n    let mut m = HashMap::new();\n    m.insert(1, 2);\n}\n"
	ctx := newTestContext(t, "main.rs", source)

	report, err := NewFindDeadCode().IncludeKinds(UnusedImports).Analyze(ctx)
	require.NoError(t, err)

	assert.NotContains(t, deadCodeNames(report.Items), "HashMap")
}

func TestFindDeadCodeAliasedImport(t *testing.T) {
	source := "use std::collections::HashMap as Map;\n\nfn main() {}\n"
	ctx := newTestContext(t, "main.rs", source)

	report, err := NewFindDeadCode().IncludeKinds(UnusedImports).Analyze(ctx)
	require.NoError(t, err)

	names := deadCodeNames(report.Items)
	assert.Contains(t, names, "Map")
}

func TestFindDeadCodeUnderscoreSuppression(t *testing.T) {
	source := "fn main() {\n    let _unused = 5;\n    let dead = 2;\n}\n"
	ctx := newTestContext(t, "main.rs", source)

	report, err := NewFindDeadCode().IncludeKinds(UnusedVariables).Analyze(ctx)
	require.NoError(t, err)

	names := deadCodeNames(report.Items)
	assert.NotContains(t, names, "_unused")
	assert.Contains(t, names, "dead")
	assert.Equal(t, UnusedVariables, names["dead"])
}

func TestFindDeadCodeEmptyBlocks(t *testing.T) {
	source := "fn noop() {\n}\n\nfn main() {\n    noop();\n}\n"
	ctx := newTestContext(t, "main.rs", source)

	report, err := NewFindDeadCode().IncludeKinds(EmptyBlocks).Analyze(ctx)
	require.NoError(t, err)

	require.NotEmpty(t, report.Items)
	assert.Equal(t, EmptyBlocks, report.Items[0].Kind)
	assert.Equal(t, uint32(0), report.Items[0].Range.Start.Line)
}

func TestFindDeadCodeCommentedCode(t *testing.T) {
	source := "fn main() {\n" +
		"    // let old_value = compute_something();\n" +
		"    // explains the approach in plain words\n" +
		"}\n"
	ctx := newTestContext(t, "main.rs", source)

	report, err := NewFindDeadCode().IncludeKinds(CommentedCode).Analyze(ctx)
	require.NoError(t, err)

	require.Len(t, report.Items, 1)
	assert.Equal(t, CommentedCode, report.Items[0].Kind)
	assert.Equal(t, uint32(1), report.Items[0].Range.Start.Line)
}

func TestFindDeadCodeUnreachable(t *testing.T) {
	source := "fn f() -> i32 {\n    return 1;\n    let x = 2;\n}\n"
	ctx := newTestContext(t, "main.rs", source)

	report, err := NewFindDeadCode().IncludeKinds(UnreachableCode).Analyze(ctx)
	require.NoError(t, err)

	require.Len(t, report.Items, 1)
	assert.Equal(t, UnreachableCode, report.Items[0].Kind)
	assert.Equal(t, uint32(2), report.Items[0].Range.Start.Line)
	assert.Contains(t, report.Items[0].Context, "let x = 2;")
}

func TestDeadCodeReportRender(t *testing.T) {
	source := "fn unused() {}\n\nfn main() {}\n"
	ctx := newTestContext(t, "main.rs", source)

	report, err := NewFindDeadCode().IncludeKinds(UnusedFunctions).Analyze(ctx)
	require.NoError(t, err)

	rendered := report.Render()
	assert.True(t, strings.HasPrefix(rendered, "Dead Code Analysis Report\n"+strings.Repeat("=", 40)))
	assert.Contains(t, rendered, "Total: "+strconv.Itoa(report.Summary.Total)+" item(s)")
	assert.Contains(t, rendered, "[UnusedFunctions] unused (line 1): fn unused() {}")
}

func TestFindDeadCodeApplyWithoutAutoDelete(t *testing.T) {
	source := "fn unused() {}\n\nfn main() {}\n"
	ctx := newTestContext(t, "main.rs", source)

	result, err := NewFindDeadCode().IncludeKinds(UnusedFunctions).Apply(ctx)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Contains(t, result.Description, "Found")
	assert.Contains(t, result.Description, "Dead Code Analysis Report")

	// Nothing written without auto-delete.
	data, err := os.ReadFile(ctx.TargetFile)
	require.NoError(t, err)
	assert.Equal(t, source, string(data))
}

func TestFindDeadCodeAutoDelete(t *testing.T) {
	source := "fn unused() {}\n\nfn main() {\n    keep();\n}\n\nfn keep() {}\n"
	ctx := newTestContext(t, "main.rs", source)

	result, err := NewFindDeadCode().
		IncludeKinds(UnusedFunctions).
		WithAutoDelete().
		Apply(ctx)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Contains(t, result.Description, "Deleted")
	assert.NotContains(t, ctx.Source, "fn unused")
	assert.Contains(t, ctx.Source, "fn keep")

	data, err := os.ReadFile(ctx.TargetFile)
	require.NoError(t, err)
	assert.Equal(t, ctx.Source, string(data))
}

func TestFindDeadCodeSearchPaths(t *testing.T) {
	ctx := newTestContext(t, "main.rs", "fn main() {}\n")

	other := filepath.Join(ctx.WorkspaceRoot, "extra.rs")
	require.NoError(t, os.WriteFile(other, []byte("fn orphan() {}\n"), 0o644))

	report, err := NewFindDeadCode().
		IncludeKinds(UnusedFunctions).
		WithSearchPaths(ctx.WorkspaceRoot).
		Analyze(ctx)
	require.NoError(t, err)

	var found *DeadCodeItem
	for i := range report.Items {
		if report.Items[i].Name == "orphan" {
			found = &report.Items[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, other, found.File)
	assert.Contains(t, report.Render(), "extra.rs")
}

func TestFindDeadCodeExcludePatterns(t *testing.T) {
	op := NewFindDeadCode().Exclude("**/vendor/**", "*_gen.rs")

	assert.True(t, op.excluded("/ws", "/ws/vendor/dep/lib.rs"))
	assert.True(t, op.excluded("/ws", "/ws/types_gen.rs"))
	assert.False(t, op.excluded("/ws", "/ws/src.rs"))
}

func TestFindDeadCodeValidate(t *testing.T) {
	ctx := newTestContext(t, "main.rs", "fn main() {}\n")

	validation, err := NewFindDeadCode().IncludeKinds().Validate(ctx)
	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	assert.Contains(t, validation.Errors[0], "No dead code kinds selected")
}

func TestIsEmptyBlock(t *testing.T) {
	assert.True(t, isEmptyBlock("{}"))
	assert.True(t, isEmptyBlock("{\n}"))
	assert.True(t, isEmptyBlock("pass"))
	assert.True(t, isEmptyBlock("{\n    // nothing yet\n}"))
	assert.False(t, isEmptyBlock("{ run(); }"))
}

func TestLooksLikeCode(t *testing.T) {
	assert.True(t, looksLikeCode("let old_value = compute();"))
	assert.True(t, looksLikeCode("fn removed_helper(a, b)"))
	assert.False(t, looksLikeCode("short"))
	assert.False(t, looksLikeCode("explains the approach in plain words"))
}
