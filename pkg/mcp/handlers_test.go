package mcp

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/refract/pkg/parser"
	"github.com/gnana997/refract/pkg/parser/queries"
	"github.com/gnana997/refract/pkg/workspace"
)

// --- helpers ---

func testServer(t *testing.T) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	pm := parser.NewParserManager(logger)
	t.Cleanup(func() { pm.Close() })

	qm := queries.NewQueryManager(pm, logger)
	t.Cleanup(func() { qm.Close() })

	ws, err := workspace.New(t.TempDir(), pm, qm, logger, workspace.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	return NewServer(ws, pm, qm, logger, nil)
}

func writeTestFile(t *testing.T, s *Server, name, source string) string {
	t.Helper()
	path := filepath.Join(s.ws.Root(), name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// --- extract_variable ---

func TestHandleExtractVariableDryRun(t *testing.T) {
	s := testServer(t)
	path := writeTestFile(t, s, "main.rs", "fn main() {\n    let x = 1 + 2;\n}\n")

	result, err := s.handleExtractVariable(context.Background(), makeRequest("extract_variable", map[string]any{
		"file":         "main.rs",
		"start_line":   float64(1),
		"start_column": float64(12),
		"end_line":     float64(1),
		"end_column":   float64(17),
		"name":         "sum",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "[DRY RUN]")

	// Dry run leaves the file untouched.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sum")
}

func TestHandleExtractVariableApply(t *testing.T) {
	s := testServer(t)
	path := writeTestFile(t, s, "main.rs", "fn main() {\n    let x = 1 + 2;\n}\n")

	result, err := s.handleExtractVariable(context.Background(), makeRequest("extract_variable", map[string]any{
		"file":         "main.rs",
		"start_line":   float64(1),
		"start_column": float64(12),
		"end_line":     float64(1),
		"end_column":   float64(17),
		"name":         "sum",
		"apply":        true,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "let sum = 1 + 2;")
	assert.Contains(t, string(data), "let x = sum;")

	// The workspace snapshot was refreshed after the write.
	assert.NotNil(t, s.ws.Analyzer().FindBinding("sum"))
}

func TestHandleExtractVariableMissingName(t *testing.T) {
	s := testServer(t)
	writeTestFile(t, s, "main.rs", "fn main() {}\n")

	result, err := s.handleExtractVariable(context.Background(), makeRequest("extract_variable", map[string]any{
		"file":         "main.rs",
		"start_line":   float64(0),
		"start_column": float64(0),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleExtractVariableMissingFile(t *testing.T) {
	s := testServer(t)

	result, err := s.handleExtractVariable(context.Background(), makeRequest("extract_variable", map[string]any{
		"file":         "missing.rs",
		"start_line":   float64(0),
		"start_column": float64(0),
		"name":         "sum",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

// --- extract_function ---

func TestHandleExtractFunctionDryRun(t *testing.T) {
	s := testServer(t)
	writeTestFile(t, s, "main.rs", "fn main() {\n    let x = 1;\n    let y = x + 1;\n}\n")

	result, err := s.handleExtractFunction(context.Background(), makeRequest("extract_function", map[string]any{
		"file":         "main.rs",
		"start_line":   float64(2),
		"start_column": float64(4),
		"end_line":     float64(2),
		"end_column":   float64(18),
		"name":         "compute",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "compute")
}

// --- inline_variable ---

func TestHandleInlineVariableApply(t *testing.T) {
	s := testServer(t)
	path := writeTestFile(t, s, "main.rs", "fn main() {\n    let x = 42;\n    let y = x;\n}\n")

	result, err := s.handleInlineVariable(context.Background(), makeRequest("inline_variable", map[string]any{
		"file":         "main.rs",
		"start_line":   float64(1),
		"start_column": float64(8),
		"apply":        true,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "let y = 42;")
	assert.NotContains(t, string(data), "let x")
}

// --- change_signature ---

func TestHandleChangeSignatureAddParameter(t *testing.T) {
	s := testServer(t)
	path := writeTestFile(t, s, "main.rs", "fn greet(name: String) {\n}\n\nfn main() {\n    greet(value);\n}\n")

	result, err := s.handleChangeSignature(context.Background(), makeRequest("change_signature", map[string]any{
		"file":         "main.rs",
		"start_line":   float64(0),
		"start_column": float64(0),
		"add_name":     "count",
		"add_type":     "u32",
		"add_default":  "1",
		"apply":        true,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fn greet(name: String, count: u32)")
	assert.Contains(t, string(data), "greet(value, 1);")
}

func TestHandleChangeSignatureNoChanges(t *testing.T) {
	s := testServer(t)
	writeTestFile(t, s, "main.rs", "fn greet() {}\n")

	result, err := s.handleChangeSignature(context.Background(), makeRequest("change_signature", map[string]any{
		"file":         "main.rs",
		"start_line":   float64(0),
		"start_column": float64(0),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "no signature changes")
}

// --- safe_delete ---

func TestHandleSafeDeleteBlocked(t *testing.T) {
	s := testServer(t)
	writeTestFile(t, s, "main.rs", "fn used_func() { }\n\nfn main() { used_func(); }\n")

	result, err := s.handleSafeDelete(context.Background(), makeRequest("safe_delete", map[string]any{
		"file":         "main.rs",
		"start_line":   float64(0),
		"start_column": float64(0),
		"apply":        true,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "has 1 usage(s)")
}

func TestHandleSafeDeleteUnused(t *testing.T) {
	s := testServer(t)
	path := writeTestFile(t, s, "main.rs", "fn unused() {}\n\nfn main() {}\n")

	result, err := s.handleSafeDelete(context.Background(), makeRequest("safe_delete", map[string]any{
		"file":         "main.rs",
		"start_line":   float64(0),
		"start_column": float64(0),
		"apply":        true,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "fn unused")
}

// --- find_dead_code ---

func TestHandleFindDeadCode(t *testing.T) {
	s := testServer(t)
	writeTestFile(t, s, "main.rs", "fn unused() {}\n\nfn main() {}\n")

	result, err := s.handleFindDeadCode(context.Background(), makeRequest("find_dead_code", map[string]any{
		"file": "main.rs",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Dead Code Analysis Report")
	assert.Contains(t, text, "unused")
}

// --- find_references ---

func TestHandleFindReferences(t *testing.T) {
	s := testServer(t)
	lib := writeTestFile(t, s, "lib.rs", "fn helper() {}\n")
	app := writeTestFile(t, s, "app.rs", "fn main() {\n    helper();\n}\n")

	_, err := s.ws.Refresh(lib)
	require.NoError(t, err)
	_, err = s.ws.Refresh(app)
	require.NoError(t, err)

	result, err := s.handleFindReferences(context.Background(), makeRequest("find_references", map[string]any{
		"name": "helper",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Found 1 reference(s) to 'helper'")
	assert.Contains(t, text, "app.rs")
}

func TestHandleFindReferencesUnknown(t *testing.T) {
	s := testServer(t)

	result, err := s.handleFindReferences(context.Background(), makeRequest("find_references", map[string]any{
		"name": "missing",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
