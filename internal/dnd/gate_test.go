package dnd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/desknotify/internal/platform"
	"github.com/jmylchreest/desknotify/internal/state"
)

func constProbe(v bool) Probe {
	return func() bool { return v }
}

func TestGate_DispatchesByPlatform(t *testing.T) {
	probes := Probes{
		Windows: constProbe(true),
		Darwin:  constProbe(false),
		Linux:   constProbe(true),
	}

	tests := []struct {
		platform platform.Platform
		want     bool
	}{
		{platform.Windows, true},
		{platform.Darwin, false},
		{platform.Linux, true},
		{platform.Unknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.platform.String(), func(t *testing.T) {
			g := NewGate(tt.platform, probes, nil)
			assert.Equal(t, tt.want, g.IsActive())
			assert.Equal(t, tt.platform, g.Platform())
		})
	}
}

func TestGate_ReevaluatesEveryCall(t *testing.T) {
	calls := 0
	active := false
	g := NewGate(platform.Linux, Probes{Linux: func() bool {
		calls++
		return active
	}}, nil)

	assert.False(t, g.IsActive())
	active = true
	assert.True(t, g.IsActive())
	assert.Equal(t, 2, calls)
}

func TestGate_Override(t *testing.T) {
	g := NewGate(platform.Linux, Probes{Linux: constProbe(true)}, nil)

	g.SetOverride(func() (bool, bool) { return false, true })
	assert.False(t, g.IsActive())
	assert.True(t, g.SystemActive())

	g.SetOverride(func() (bool, bool) { return false, false })
	assert.True(t, g.IsActive())
}

func TestGate_RespectSystem(t *testing.T) {
	g := NewGate(platform.Linux, Probes{Linux: constProbe(true)}, nil)
	g.SetRespectSystem(false)
	assert.False(t, g.IsActive())

	g.SetOverride(func() (bool, bool) { return true, true })
	assert.True(t, g.IsActive())
}

func TestStateOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	override := StateOverride(path, nil)

	_, forced := override()
	assert.False(t, forced)

	s := state.Default()
	s.SetDnD(state.DnDOn, "test", "test")
	require.NoError(t, state.Save(path, s))

	active, forced := override()
	assert.True(t, forced)
	assert.True(t, active)
}

func TestAny(t *testing.T) {
	assert.False(t, Any()())
	assert.False(t, Any(nil, constProbe(false))())
	assert.True(t, Any(constProbe(false), constProbe(true))())
}

func stubCommand(t *testing.T, out string, err error) {
	t.Helper()
	orig := commandOutput
	commandOutput = func(string, ...string) (string, error) { return out, err }
	t.Cleanup(func() { commandOutput = orig })
}

func TestGnomeBannersProbe(t *testing.T) {
	stubCommand(t, "false", nil)
	assert.True(t, GnomeBannersProbe()())

	stubCommand(t, "true", nil)
	assert.False(t, GnomeBannersProbe()())

	stubCommand(t, "", errors.New("no gsettings"))
	assert.False(t, GnomeBannersProbe()())
}

func writeAssertions(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, "Library", "DoNotDisturb", "DB")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Assertions.json"), []byte(content), 0644))
}

func TestDarwinFocusProbe(t *testing.T) {
	stubCommand(t, "", errors.New("no defaults"))

	active := t.TempDir()
	writeAssertions(t, active, `{"data":[{"storeAssertionRecords":[{"assertionDetails":{}}]}]}`)
	assert.True(t, DarwinFocusProbe(active)())

	idle := t.TempDir()
	writeAssertions(t, idle, `{"data":[{}]}`)
	assert.False(t, DarwinFocusProbe(idle)())

	corrupt := t.TempDir()
	writeAssertions(t, corrupt, `{`)
	assert.False(t, DarwinFocusProbe(corrupt)())
}

func TestDarwinFocusProbe_LegacyFallback(t *testing.T) {
	stubCommand(t, "1", nil)
	assert.True(t, DarwinFocusProbe(t.TempDir())())

	stubCommand(t, "0", nil)
	assert.False(t, DarwinFocusProbe(t.TempDir())())
}
