package workspace

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/refract/pkg/parser"
	"github.com/gnana997/refract/pkg/parser/queries"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	pm := parser.NewParserManager(logger)
	t.Cleanup(func() { pm.Close() })

	qm := queries.NewQueryManager(pm, logger)
	t.Cleanup(func() { qm.Close() })

	ws, err := New(t.TempDir(), pm, qm, logger, DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	return ws
}

func writeSource(t *testing.T, ws *Workspace, name, source string) string {
	t.Helper()
	path := filepath.Join(ws.Root(), name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestWorkspaceRootMustExist(t *testing.T) {
	ws := newTestWorkspace(t)

	_, err := New(filepath.Join(ws.Root(), "missing"), nil, nil, nil, DefaultConfig())
	assert.Error(t, err)
}

func TestWorkspaceTrackerFor(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeSource(t, ws, "lib.rs", "fn helper() {}\n")

	tracker, err := ws.TrackerFor(path)
	require.NoError(t, err)
	require.NotNil(t, tracker.Find("helper"))

	// Unchanged file returns the cached snapshot.
	again, err := ws.TrackerFor(path)
	require.NoError(t, err)
	assert.Same(t, tracker, again)
}

func TestWorkspaceTrackerForDetectsStaleness(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeSource(t, ws, "lib.rs", "fn old_name() {}\n")

	tracker, err := ws.TrackerFor(path)
	require.NoError(t, err)
	require.NotNil(t, tracker.Find("old_name"))

	require.NoError(t, os.WriteFile(path, []byte("fn new_name() {}\n"), 0o644))
	require.NoError(t, os.Chtimes(path, time.Now(), time.Now().Add(time.Second)))

	fresh, err := ws.TrackerFor(path)
	require.NoError(t, err)
	assert.Nil(t, fresh.Find("old_name"))
	assert.NotNil(t, fresh.Find("new_name"))
}

func TestWorkspaceForget(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeSource(t, ws, "lib.rs", "fn helper() {}\n")

	_, err := ws.TrackerFor(path)
	require.NoError(t, err)
	require.Len(t, ws.AnalyzedFiles(), 1)

	ws.Forget(path)
	assert.Empty(t, ws.AnalyzedFiles())
}

func TestWorkspaceUsagesAcrossFiles(t *testing.T) {
	ws := newTestWorkspace(t)
	lib := writeSource(t, ws, "lib.rs", "fn helper() {}\n")
	app := writeSource(t, ws, "app.rs", "fn main() {\n    helper();\n}\n")

	_, err := ws.Refresh(lib)
	require.NoError(t, err)
	_, err = ws.Refresh(app)
	require.NoError(t, err)

	info, err := ws.Usages("helper")
	require.NoError(t, err)
	assert.Equal(t, 1, info.Count())
	assert.Contains(t, info.UsedInFiles(), app)
}

func TestWorkspaceUsagesUnknownBinding(t *testing.T) {
	ws := newTestWorkspace(t)

	_, err := ws.Usages("missing")
	assert.ErrorContains(t, err, "not found in workspace")
}

func TestWorkspaceDeadCode(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeSource(t, ws, "lib.rs", "fn orphan() {}\n\npub fn used() {}\n\nfn main() {\n    used();\n}\n")

	_, err := ws.Refresh(path)
	require.NoError(t, err)

	var names []string
	for _, d := range ws.DeadCode() {
		names = append(names, d.Binding.Name)
	}
	assert.Contains(t, names, "orphan")
	assert.NotContains(t, names, "used")
}

func TestWorkspaceCanSafelyDelete(t *testing.T) {
	ws := newTestWorkspace(t)
	lib := writeSource(t, ws, "lib.rs", "fn helper() {}\n")
	app := writeSource(t, ws, "app.rs", "fn main() {\n    helper();\n}\n")

	_, err := ws.Refresh(lib)
	require.NoError(t, err)
	_, err = ws.Refresh(app)
	require.NoError(t, err)

	result := ws.CanSafelyDelete("helper")
	assert.False(t, result.CanDelete)
}

func TestWorkspaceEvictionInvalidatesAnalyzer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	pm := parser.NewParserManager(logger)
	t.Cleanup(func() { pm.Close() })

	qm := queries.NewQueryManager(pm, logger)
	t.Cleanup(func() { qm.Close() })

	ws, err := New(t.TempDir(), pm, qm, logger, Config{MaxCachedFiles: 1})
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	first := writeSource(t, ws, "a.rs", "fn alpha() {}\n")
	second := writeSource(t, ws, "b.rs", "fn beta() {}\n")

	_, err = ws.Refresh(first)
	require.NoError(t, err)
	_, err = ws.Refresh(second)
	require.NoError(t, err)

	// Capacity 1: analyzing the second file evicted the first.
	files := ws.AnalyzedFiles()
	assert.Equal(t, []string{second}, files)
	assert.Nil(t, ws.Analyzer().FindBinding("alpha"))
	assert.NotNil(t, ws.Analyzer().FindBinding("beta"))
}

func TestWorkspaceStats(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeSource(t, ws, "lib.rs", "fn helper() {}\n")

	_, err := ws.TrackerFor(path)
	require.NoError(t, err)

	stats := ws.Stats()
	assert.Equal(t, 1, stats.AnalyzedFiles)
}
