package pool

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// Marker is the persisted record of a running pool: the supervising
// process id and the worker count, stored as "pid,count". Absence
// means no pool is recorded.
type Marker struct {
	PID   int
	Count int
}

func writeMarker(path string, m Marker) error {
	return os.WriteFile(path, []byte(fmt.Sprintf("%d,%d", m.PID, m.Count)), 0o644)
}

// readMarker returns nil without error when no marker file exists.
func readMarker(path string) (*Marker, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read marker: %w", err)
	}
	parts := strings.SplitN(strings.TrimSpace(string(raw)), ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("malformed marker file %s: %q", path, raw)
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("malformed marker pid: %w", err)
	}
	count, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("malformed marker count: %w", err)
	}
	return &Marker{PID: pid, Count: count}, nil
}

func removeMarker(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// alive probes a pid with signal 0. EPERM still means the process
// exists, just owned by someone else.
func alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
