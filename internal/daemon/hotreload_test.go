package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/desknotify/internal/state"
)

func TestStateWatcher_DetectsSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	w := NewStateWatcher(path, nil)
	var calls atomic.Int32
	w.SetChangeCallback(func() { calls.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	s := state.Default()
	s.SetDnD(state.DnDOn, "focus", "cli")
	require.NoError(t, state.Save(path, s))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestStateWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()

	w := NewStateWatcher(filepath.Join(dir, "state.json"), nil)
	var calls atomic.Int32
	w.SetChangeCallback(func() { calls.Add(1) })

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o600))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, w.Stop())

	assert.Zero(t, calls.Load())
}

func TestStateWatcher_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "desknotify")

	w := NewStateWatcher(filepath.Join(dir, "state.json"), nil)
	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Stop() }()

	assert.DirExists(t, dir)
}

func TestStateWatcher_StopIdempotent(t *testing.T) {
	w := NewStateWatcher(filepath.Join(t.TempDir(), "state.json"), nil)
	assert.NoError(t, w.Stop())

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
