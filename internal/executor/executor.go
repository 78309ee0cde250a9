// Package executor runs a job's command through the host shell and
// reports a structured outcome. It never touches the store: failures
// here are data for the worker's state machine, not errors.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// ExitFault is the sentinel exit code for timeouts and launch faults
// where the command produced no real exit status.
const ExitFault = -1

type Outcome struct {
	Success  bool
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes command via `sh -c` with the given timeout. The child
// gets its own process group so a timeout kills the whole pipeline,
// not just the shell.
func Run(ctx context.Context, command string, timeout time.Duration) Outcome {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.Command("sh", "-c", command)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Outcome{Success: false, Stderr: err.Error(), ExitCode: ExitFault}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		// Kill the process group; reap the shell before returning so
		// nothing is left running.
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		<-done
		return Outcome{
			Success:  false,
			Stdout:   strings.TrimSpace(stdout.String()),
			Stderr:   fmt.Sprintf("Job exceeded timeout of %d seconds", int(timeout.Seconds())),
			ExitCode: ExitFault,
		}
	case err := <-done:
		out := Outcome{
			Stdout: strings.TrimSpace(stdout.String()),
			Stderr: strings.TrimSpace(stderr.String()),
		}
		if err == nil {
			out.Success = true
			return out
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			out.ExitCode = exitErr.ExitCode()
			return out
		}
		out.ExitCode = ExitFault
		if out.Stderr == "" {
			out.Stderr = err.Error()
		}
		return out
	}
}
