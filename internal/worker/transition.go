package worker

import (
	"context"
	"fmt"
	"time"

	"queuectl/internal/domain"
	"queuectl/internal/executor"
	"queuectl/internal/ports"
	"queuectl/pkg/backoff"
)

// applyOutcome decides the next state for a processing job from the
// executor's outcome and persists it.
//
// Success keeps the attempt count as claimed (a successful run does
// not spend an attempt) and clears error/next_retry_at. A failure
// increments attempts; while attempts stay below max_retries the job
// goes back to failed with next_retry_at = now + base^attempts, and
// once they reach max_retries it is dead-lettered.
func applyOutcome(ctx context.Context, st ports.Store, job *domain.Job, out executor.Outcome, backoffBase int) error {
	if out.Success {
		return st.Update(ctx, job.ID, domain.StateCompleted, ports.JobUpdate{
			Output:         &out.Stdout,
			ClearError:     true,
			ClearNextRetry: true,
		})
	}

	attempts := job.Attempts + 1
	errMsg := out.Stderr
	if errMsg == "" {
		errMsg = fmt.Sprintf("command failed with exit code %d", out.ExitCode)
	}

	if attempts >= job.MaxRetries {
		return st.Update(ctx, job.ID, domain.StateDead, ports.JobUpdate{
			Attempts:       &attempts,
			Error:          &errMsg,
			ClearNextRetry: true,
		})
	}

	next := time.Now().Add(backoff.Exponential(backoffBase, attempts))
	return st.Update(ctx, job.ID, domain.StateFailed, ports.JobUpdate{
		Attempts:    &attempts,
		Error:       &errMsg,
		NextRetryAt: &next,
	})
}
