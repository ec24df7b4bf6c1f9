package mcplog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeParams(t *testing.T) {
	t.Run("nil map returns empty", func(t *testing.T) {
		assert.Empty(t, SanitizeParams(nil))
	})

	t.Run("short values pass through", func(t *testing.T) {
		out := SanitizeParams(map[string]any{
			"file":  "main.rs",
			"apply": true,
			"extra": nil,
		})
		assert.Equal(t, "main.rs", out["file"])
		assert.Equal(t, true, out["apply"])
		assert.Contains(t, out, "extra")
	})

	t.Run("long string replaced with length", func(t *testing.T) {
		out := SanitizeParams(map[string]any{
			"name":   "sum",
			"source": strings.Repeat("x", 200),
		})
		assert.Equal(t, "sum", out["name"])
		assert.NotContains(t, out, "source")
		assert.Equal(t, 200, out["source_len"])
	})
}

func TestResponseBytesNil(t *testing.T) {
	assert.Zero(t, ResponseBytes(nil))
}

func readEntries(t *testing.T, path string) []LogEntry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var got []LogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var e LogEntry
		require.NoError(t, json.Unmarshal([]byte(line), &e), "bad line %q", line)
		got = append(got, e)
	}
	return got
}

func TestLoggerWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.jsonl")

	logger, err := NewLogger(path)
	require.NoError(t, err)

	entries := []LogEntry{
		{Ts: time.Now().UTC().Format(time.RFC3339), Tool: "find_references", Params: map[string]any{"name": "helper"}, DurationMs: 5, ResponseBytes: 100, TokensEst: 25},
		{Ts: time.Now().UTC().Format(time.RFC3339), Tool: "extract_variable", Params: map[string]any{"file": "main.rs", "apply": false}, DurationMs: 42, ResponseBytes: 800, TokensEst: 200},
		{Ts: time.Now().UTC().Format(time.RFC3339), Tool: "find_dead_code", Params: map[string]any{"file": "main.rs"}, DurationMs: 3, ResponseBytes: 50, TokensEst: 12},
	}
	for _, e := range entries {
		require.NoError(t, logger.Write(e))
	}
	require.NoError(t, logger.Close())

	got := readEntries(t, path)
	require.Len(t, got, len(entries))
	for i, e := range entries {
		assert.Equal(t, e.Tool, got[i].Tool)
		assert.Equal(t, e.DurationMs, got[i].DurationMs)
	}
}

func TestLoggerConcurrency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.jsonl")

	logger, err := NewLogger(path)
	require.NoError(t, err)

	const goroutines = 50
	const writesEach = 10

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < writesEach; j++ {
				_ = logger.Write(LogEntry{
					Ts:   time.Now().UTC().Format(time.RFC3339),
					Tool: "find_references",
				})
			}
		}()
	}
	wg.Wait()
	require.NoError(t, logger.Close())

	// Every line must be intact JSON; torn writes would fail unmarshaling.
	got := readEntries(t, path)
	assert.Len(t, got, goroutines*writesEach)
}

func TestNewLoggerCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "mcp.jsonl")

	logger, err := NewLogger(path)
	require.NoError(t, err)
	defer logger.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNewLoggerEmptyPath(t *testing.T) {
	logger, err := NewLogger("")
	require.NoError(t, err)
	assert.Nil(t, logger, "empty path disables logging")
}
