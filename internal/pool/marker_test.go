package pool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"queuectl/internal/config"
)

func TestMarkerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queuectl.pid")

	m, err := readMarker(path)
	require.NoError(t, err)
	require.Nil(t, m, "absent marker means no pool recorded")

	require.NoError(t, writeMarker(path, Marker{PID: 4321, Count: 3}))
	m, err = readMarker(path)
	require.NoError(t, err)
	require.Equal(t, &Marker{PID: 4321, Count: 3}, m)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "4321,3", string(raw))

	require.NoError(t, removeMarker(path))
	require.NoError(t, removeMarker(path), "remove is idempotent")
}

func TestMarkerMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queuectl.pid")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	_, err := readMarker(path)
	require.Error(t, err)
}

func TestAlive(t *testing.T) {
	require.True(t, alive(os.Getpid()))
	require.False(t, alive(0))
	require.False(t, alive(-5))
	// A pid far beyond pid_max cannot exist.
	require.False(t, alive(1 << 22))
}

func poolConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("QUEUECTL_DATA_DIR", t.TempDir())
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestPoolStatusNotRunning(t *testing.T) {
	cfg := poolConfig(t)
	status, err := PoolStatus(cfg)
	require.NoError(t, err)
	require.False(t, status.Running)
}

func TestPoolStatusCleansStaleMarker(t *testing.T) {
	cfg := poolConfig(t)
	require.NoError(t, writeMarker(cfg.MarkerPath(), Marker{PID: 1 << 22, Count: 2}))

	status, err := PoolStatus(cfg)
	require.NoError(t, err)
	require.False(t, status.Running)
	require.NoFileExists(t, cfg.MarkerPath(), "stale marker must be removed")
}

func TestPoolStatusReportsLivePool(t *testing.T) {
	cfg := poolConfig(t)
	// Record this test process as the supervisor; it is certainly alive.
	require.NoError(t, writeMarker(cfg.MarkerPath(), Marker{PID: os.Getpid(), Count: 4}))

	status, err := PoolStatus(cfg)
	require.NoError(t, err)
	require.True(t, status.Running)
	require.Equal(t, os.Getpid(), status.PID)
	require.Equal(t, 4, status.Count)
}

func TestStartRefusesWhenRunning(t *testing.T) {
	cfg := poolConfig(t)
	require.NoError(t, writeMarker(cfg.MarkerPath(), Marker{PID: os.Getpid(), Count: 1}))

	err := Start(cfg, 2)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already running")
}

func TestStartRejectsBadCount(t *testing.T) {
	cfg := poolConfig(t)
	require.Error(t, Start(cfg, 0))
}

func TestStopWithoutPool(t *testing.T) {
	cfg := poolConfig(t)
	require.ErrorIs(t, Stop(cfg), ErrNotRunning)
}

func TestStopCleansStaleMarker(t *testing.T) {
	cfg := poolConfig(t)
	require.NoError(t, writeMarker(cfg.MarkerPath(), Marker{PID: 1 << 22, Count: 2}))
	require.NoError(t, Stop(cfg))
	require.NoFileExists(t, cfg.MarkerPath())
}
