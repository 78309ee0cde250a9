// Package pool manages the worker pool as operating-system processes:
// one detached supervisor that spawns N worker-loop children and a
// marker file recording the supervisor's pid.
//
// The refuse-if-already-running check is advisory: two Start calls
// racing between the liveness probe and the marker write can both
// proceed. Jobs left in processing state by a forced kill are not
// reclaimed automatically; requeue them by hand if it happens.
package pool

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"queuectl/internal/config"
)

var ErrNotRunning = errors.New("no worker pool is running")

// stopWait bounds how long Stop waits for the supervisor to exit
// gracefully before escalating to SIGKILL of its process group.
const (
	stopWait   = 30 * time.Second
	startWait  = 5 * time.Second
	probeEvery = 100 * time.Millisecond
)

type Status struct {
	Running bool
	PID     int
	Count   int
}

// Start launches a detached supervisor process running count workers.
// It refuses to start when the marker records a live supervisor, and
// returns once the new supervisor has written its marker.
func Start(cfg *config.Config, count int) error {
	if count < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", count)
	}
	m, err := readMarker(cfg.MarkerPath())
	if err != nil {
		return err
	}
	if m != nil {
		if alive(m.PID) {
			return fmt.Errorf("worker pool already running (pid %d, %d workers)", m.PID, m.Count)
		}
		log.Warn().Int("pid", m.PID).Msg("removing stale pool marker")
		if err := removeMarker(cfg.MarkerPath()); err != nil {
			return err
		}
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	logf, err := os.OpenFile(cfg.LogPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open worker log: %w", err)
	}
	defer logf.Close()

	cmd := exec.Command(exe, "worker", "run", "--count", fmt.Sprint(count))
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.Env = os.Environ()
	// Own session so the supervisor survives this CLI process and
	// leads a process group Stop can SIGKILL as a unit.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn supervisor: %w", err)
	}
	if err := cmd.Process.Release(); err != nil {
		return fmt.Errorf("release supervisor: %w", err)
	}

	// Bounded wait for the supervisor to write its marker.
	deadline := time.Now().Add(startWait)
	for time.Now().Before(deadline) {
		m, err := readMarker(cfg.MarkerPath())
		if err == nil && m != nil && alive(m.PID) {
			return nil
		}
		time.Sleep(probeEvery)
	}
	return fmt.Errorf("supervisor did not report started within %s (see %s)", startWait, cfg.LogPath())
}

// Stop signals the supervisor with SIGTERM, waits up to stopWait for
// it to exit, escalates to SIGKILL of its process group, and removes
// the marker regardless of outcome.
func Stop(cfg *config.Config) error {
	m, err := readMarker(cfg.MarkerPath())
	if err != nil {
		return err
	}
	if m == nil {
		return ErrNotRunning
	}
	if !alive(m.PID) {
		log.Warn().Int("pid", m.PID).Msg("removing stale pool marker")
		return removeMarker(cfg.MarkerPath())
	}

	if err := syscall.Kill(m.PID, syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal supervisor %d: %w", m.PID, err)
	}

	deadline := time.Now().Add(stopWait)
	for time.Now().Before(deadline) {
		if !alive(m.PID) {
			return removeMarker(cfg.MarkerPath())
		}
		time.Sleep(probeEvery)
	}

	log.Warn().Int("pid", m.PID).Msg("supervisor did not exit in time, sending SIGKILL to process group")
	// Negative pid targets the whole group; may abandon a job in
	// processing state permanently.
	_ = syscall.Kill(-m.PID, syscall.SIGKILL)
	return removeMarker(cfg.MarkerPath())
}

// PoolStatus reports the recorded pool, cleaning up a stale marker
// whose supervisor is no longer alive.
func PoolStatus(cfg *config.Config) (Status, error) {
	m, err := readMarker(cfg.MarkerPath())
	if err != nil {
		return Status{}, err
	}
	if m == nil {
		return Status{}, nil
	}
	if !alive(m.PID) {
		if err := removeMarker(cfg.MarkerPath()); err != nil {
			return Status{}, err
		}
		return Status{}, nil
	}
	return Status{Running: true, PID: m.PID, Count: m.Count}, nil
}

// Restart stops any running pool (ignoring absence) and starts a new one.
func Restart(cfg *config.Config, count int) error {
	if err := Stop(cfg); err != nil && !errors.Is(err, ErrNotRunning) {
		return err
	}
	return Start(cfg, count)
}
