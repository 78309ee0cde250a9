package pool

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"queuectl/internal/config"
)

// gracePeriod is how long the supervisor waits after forwarding
// SIGTERM before killing workers that still have a job in flight.
const gracePeriod = 20 * time.Second

// Supervise is the body of the detached supervisor process. It spawns
// count worker-loop children, writes the marker once they are all up,
// and on SIGTERM/SIGINT forwards the signal so each worker finishes
// its current job, escalating to SIGKILL after the grace period.
func Supervise(cfg *config.Config, count int) error {
	if count < 1 {
		count = 1
	}
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	children := make([]*exec.Cmd, 0, count)
	var wg sync.WaitGroup
	for i := 1; i <= count; i++ {
		cmd := exec.Command(exe, "worker", "loop", "--worker-id", strconv.Itoa(i))
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Env = os.Environ()
		if err := cmd.Start(); err != nil {
			terminate(children)
			return fmt.Errorf("spawn worker %d: %w", i, err)
		}
		children = append(children, cmd)
		wg.Add(1)
		go func(c *exec.Cmd) {
			defer wg.Done()
			_ = c.Wait()
		}(cmd)
	}

	// Marker only exists once every worker actually spawned.
	if err := writeMarker(cfg.MarkerPath(), Marker{PID: os.Getpid(), Count: count}); err != nil {
		terminate(children)
		return fmt.Errorf("write marker: %w", err)
	}
	defer removeMarker(cfg.MarkerPath()) //nolint:errcheck // best effort on the way out

	allDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(allDone)
	}()

	log.Info().Int("count", count).Int("pid", os.Getpid()).Msg("worker pool started")

	select {
	case <-allDone:
		log.Info().Msg("all workers exited")
		return nil
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down worker pool")
	}

	terminate(children)
	select {
	case <-allDone:
	case <-time.After(gracePeriod):
		log.Warn().Msg("grace period expired, killing remaining workers")
		for _, c := range children {
			_ = c.Process.Kill()
		}
		<-allDone
	}
	log.Info().Msg("all workers stopped cleanly")
	return nil
}

func terminate(children []*exec.Cmd) {
	for _, c := range children {
		_ = c.Process.Signal(syscall.SIGTERM)
	}
}
