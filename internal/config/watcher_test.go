package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeAtomic replaces path in one step so the watcher never sees a partial file.
func writeAtomic(t *testing.T, path, content string) {
	t.Helper()
	tmp := filepath.Join(t.TempDir(), "next.toml")
	require.NoError(t, os.WriteFile(tmp, []byte(content), 0644))
	require.NoError(t, os.Rename(tmp, path))
}

func TestWatcher_ReloadsValidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desknotifyd.toml")
	require.NoError(t, os.WriteFile(path, []byte("[audio]\nvolume = 10\n"), 0644))

	initial, err := Load(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, initial, nil)
	require.NoError(t, err)

	reloaded := make(chan *Config, 1)
	w.SetReloadCallback(func(cfg *Config) { reloaded <- cfg })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	writeAtomic(t, path, "[audio]\nvolume = 20\n")

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 20, cfg.Audio.Volume)
		assert.Equal(t, 20, w.Current().Audio.Volume)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestWatcher_KeepsConfigOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desknotifyd.toml")
	require.NoError(t, os.WriteFile(path, []byte("[audio]\nvolume = 10\n"), 0644))

	initial, err := Load(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, initial, nil)
	require.NoError(t, err)

	failed := make(chan error, 1)
	w.SetErrorCallback(func(err error) {
		select {
		case failed <- err:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	writeAtomic(t, path, "[audio]\nvolume = 999\n")

	select {
	case err := <-failed:
		assert.Error(t, err)
		assert.Equal(t, 10, w.Current().Audio.Volume)
	case <-time.After(5 * time.Second):
		t.Fatal(errors.New("error callback not invoked"))
	}
}
