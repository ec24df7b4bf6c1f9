package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/refract/pkg/mcplog"
)

func readCallLog(t *testing.T, path string) []mcplog.LogEntry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []mcplog.LogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if scanner.Text() == "" {
			continue
		}
		var e mcplog.LogEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	return entries
}

func TestLoggingMiddlewareRecordsCall(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "calls.jsonl")
	callLog, err := mcplog.NewLogger(logPath)
	require.NoError(t, err)

	s := &Server{logger: callLog}

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	}

	wrapped := s.loggingMiddleware()(server.ToolHandlerFunc(handler))

	req := makeRequest("find_references", map[string]any{"name": "helper"})
	result, err := wrapped(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	require.NoError(t, callLog.Close())

	entries := readCallLog(t, logPath)
	require.Len(t, entries, 1)
	assert.Equal(t, "find_references", entries[0].Tool)
	assert.Equal(t, "helper", entries[0].Params["name"])
	assert.Greater(t, entries[0].ResponseBytes, 0)
	assert.Nil(t, entries[0].Error)
}
