package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, ws *Workspace) *Watcher {
	t.Helper()

	options := DefaultWatchOptions()
	options.DebounceMs = 20

	w, err := NewWatcher(ws, options, ws.logger)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	require.NoError(t, w.Start())
	return w
}

func TestWatcherAnalyzesNewFiles(t *testing.T) {
	ws := newTestWorkspace(t)
	newTestWatcher(t, ws)

	path := filepath.Join(ws.Root(), "lib.rs")
	require.NoError(t, os.WriteFile(path, []byte("fn helper() {}\n"), 0o644))

	assert.Eventually(t, func() bool {
		return ws.Analyzer().FindBinding("helper") != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherRefreshesChangedFiles(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeSource(t, ws, "lib.rs", "fn old_name() {}\n")
	_, err := ws.Refresh(path)
	require.NoError(t, err)

	newTestWatcher(t, ws)

	require.NoError(t, os.WriteFile(path, []byte("fn new_name() {}\n"), 0o644))

	assert.Eventually(t, func() bool {
		return ws.Analyzer().FindBinding("new_name") != nil &&
			ws.Analyzer().FindBinding("old_name") == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherForgetsRemovedFiles(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeSource(t, ws, "lib.rs", "fn helper() {}\n")
	_, err := ws.Refresh(path)
	require.NoError(t, err)

	newTestWatcher(t, ws)

	require.NoError(t, os.Remove(path))

	assert.Eventually(t, func() bool {
		return len(ws.AnalyzedFiles()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	ws := newTestWorkspace(t)
	w := newTestWatcher(t, ws)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	assert.False(t, w.Stats().IsRunning)
}

func TestWatcherShouldIgnore(t *testing.T) {
	ws := newTestWorkspace(t)
	w, err := NewWatcher(ws, DefaultWatchOptions(), ws.logger)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	assert.True(t, w.shouldIgnore("/ws/node_modules"))
	assert.True(t, w.shouldIgnore("/ws/target"))
	assert.True(t, w.shouldIgnore("/ws/src/lib.rs.swp"))
	assert.True(t, w.shouldIgnore("/ws/src/lib.rs~"))
	assert.False(t, w.shouldIgnore("/ws/src/lib.rs"))
}
