package ports

import (
	"context"
	"time"

	"queuectl/internal/domain"
)

// JobUpdate carries the mutable attributes a state transition may set.
// Nil pointers leave the stored value untouched; ClearError and
// ClearNextRetry write NULL explicitly.
type JobUpdate struct {
	Attempts       *int
	Output         *string
	Error          *string
	NextRetryAt    *time.Time
	ClearError     bool
	ClearNextRetry bool
}

type Store interface {
	// Enqueue inserts a new pending job and returns its id.
	Enqueue(ctx context.Context, spec domain.Spec, maxRetries int) (string, error)

	// Claim atomically selects the highest-ranked eligible job and
	// transitions it to processing. Returns nil when nothing is
	// eligible. Two concurrent callers never receive the same job,
	// even from separate processes.
	Claim(ctx context.Context) (*domain.Job, error)

	// Update sets the job's state plus any attributes in upd, and
	// refreshes updated_at. Idempotent for identical arguments.
	Update(ctx context.Context, id string, state domain.JobState, upd JobUpdate) error

	Get(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context, state domain.JobState) ([]domain.Job, error)
	Stats(ctx context.Context) (map[domain.JobState]int, error)

	// RetryDead moves a dead job back to pending with attempts reset.
	RetryDead(ctx context.Context, id string) error

	Close() error
}
