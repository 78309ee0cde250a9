package sqliteq

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"queuectl/internal/domain"
	"queuectl/internal/ports"
)

var _ ports.Store = (*Store)(nil)

const jobColumns = `id, command, state, attempts, max_retries, priority,
	created_at, updated_at, next_retry_at, run_at, output, error`

func (s *Store) Enqueue(ctx context.Context, spec domain.Spec, maxRetries int) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	id := spec.ID
	if id == "" {
		id = uuid.NewString()
	}
	priority := spec.Priority
	if priority == 0 {
		priority = domain.PriorityNormal
	}
	runAt, err := spec.ParsedRunAt()
	if err != nil {
		return "", err
	}

	now := time.Now().UnixMilli()
	_, err = s.db.ExecContext(ctx, `
		insert into jobs (id, command, state, attempts, max_retries, priority, created_at, updated_at, run_at)
		values (?, ?, ?, 0, ?, ?, ?, ?, ?)`,
		id, spec.Command, domain.StatePending, maxRetries, priority, now, now, msOrNil(runAt),
	)
	if err != nil {
		if isPrimaryKeyConflict(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrDuplicateID, id)
		}
		return "", fmt.Errorf("sqliteq: enqueue: %w", err)
	}
	return id, nil
}

// Claim selects the eligible job with the lowest priority value,
// tie-broken by earliest created_at, and flips it to processing.
// The select and update run inside one immediate transaction, so the
// pair is atomic with respect to every other claimer on the database.
func (s *Store) Claim(ctx context.Context) (*domain.Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqliteq: claim begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().UnixMilli()
	row := tx.QueryRowContext(ctx, `
		select `+jobColumns+` from jobs
		where state in (?, ?)
		  and (next_retry_at is null or next_retry_at <= ?)
		  and (run_at is null or run_at <= ?)
		order by priority asc, created_at asc
		limit 1`,
		domain.StatePending, domain.StateFailed, now, now,
	)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqliteq: claim select: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`update jobs set state = ?, updated_at = ? where id = ?`,
		domain.StateProcessing, now, job.ID,
	); err != nil {
		return nil, fmt.Errorf("sqliteq: claim update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqliteq: claim commit: %w", err)
	}

	job.State = domain.StateProcessing
	job.UpdatedAt = time.UnixMilli(now)
	return job, nil
}

func (s *Store) Update(ctx context.Context, id string, state domain.JobState, upd ports.JobUpdate) error {
	sets := []string{"state = ?", "updated_at = ?"}
	args := []any{state, time.Now().UnixMilli()}

	if upd.Attempts != nil {
		sets = append(sets, "attempts = ?")
		args = append(args, *upd.Attempts)
	}
	if upd.Output != nil {
		sets = append(sets, "output = ?")
		args = append(args, *upd.Output)
	}
	switch {
	case upd.ClearError:
		sets = append(sets, "error = null")
	case upd.Error != nil:
		sets = append(sets, "error = ?")
		args = append(args, *upd.Error)
	}
	switch {
	case upd.ClearNextRetry:
		sets = append(sets, "next_retry_at = null")
	case upd.NextRetryAt != nil:
		sets = append(sets, "next_retry_at = ?")
		args = append(args, upd.NextRetryAt.UnixMilli())
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"update jobs set "+strings.Join(sets, ", ")+" where id = ?", args...)
	if err != nil {
		return fmt.Errorf("sqliteq: update %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Job, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+jobColumns+` from jobs where id = ?`, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqliteq: get %s: %w", id, err)
	}
	return job, nil
}

// List returns jobs filtered by state, or all jobs when state is empty,
// oldest first.
func (s *Store) List(ctx context.Context, state domain.JobState) ([]domain.Job, error) {
	query := `select ` + jobColumns + ` from jobs order by created_at asc`
	args := []any{}
	if state != "" {
		query = `select ` + jobColumns + ` from jobs where state = ? order by created_at asc`
		args = append(args, state)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqliteq: list: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("sqliteq: list scan: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (map[domain.JobState]int, error) {
	rows, err := s.db.QueryContext(ctx, `select state, count(*) from jobs group by state`)
	if err != nil {
		return nil, fmt.Errorf("sqliteq: stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[domain.JobState]int)
	for rows.Next() {
		var state domain.JobState
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("sqliteq: stats scan: %w", err)
		}
		stats[state] = count
	}
	return stats, rows.Err()
}

// RetryDead moves a dead job back to pending with its attempts reset,
// for the manual DLQ retry path.
func (s *Store) RetryDead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		update jobs set state = ?, attempts = 0, error = null, next_retry_at = null, updated_at = ?
		where id = ? and state = ?`,
		domain.StatePending, time.Now().UnixMilli(), id, domain.StateDead,
	)
	if err != nil {
		return fmt.Errorf("sqliteq: retry dead %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: no dead job %s", domain.ErrJobNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (*domain.Job, error) {
	var (
		j            domain.Job
		createdAt    int64
		updatedAt    int64
		nextRetryAt  sql.NullInt64
		runAt        sql.NullInt64
		output, jerr sql.NullString
	)
	err := r.Scan(&j.ID, &j.Command, &j.State, &j.Attempts, &j.MaxRetries, &j.Priority,
		&createdAt, &updatedAt, &nextRetryAt, &runAt, &output, &jerr)
	if err != nil {
		return nil, err
	}
	j.CreatedAt = time.UnixMilli(createdAt)
	j.UpdatedAt = time.UnixMilli(updatedAt)
	if nextRetryAt.Valid {
		t := time.UnixMilli(nextRetryAt.Int64)
		j.NextRetryAt = &t
	}
	if runAt.Valid {
		t := time.UnixMilli(runAt.Int64)
		j.RunAt = &t
	}
	j.Output = output.String
	j.Error = jerr.String
	return &j, nil
}

func msOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func isPrimaryKeyConflict(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			serr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
