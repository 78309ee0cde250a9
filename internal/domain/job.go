package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type JobState string

const (
	StatePending    JobState = "pending"
	StateProcessing JobState = "processing"
	StateCompleted  JobState = "completed"
	StateFailed     JobState = "failed"
	StateDead       JobState = "dead"
)

// Priority values: lower is claimed first.
const (
	PriorityHigh   = 1
	PriorityNormal = 2
	PriorityLow    = 3
)

var (
	ErrEmptyCommand = errors.New("command is required")
	ErrDuplicateID  = errors.New("job id already exists")
	ErrBadRunAt     = errors.New("invalid run_at timestamp")
	ErrBadPriority  = errors.New("priority must be 1, 2 or 3")
	ErrJobNotFound  = errors.New("job not found")
)

// Job is the persistent record of one enqueued shell command.
type Job struct {
	ID          string     `json:"id"`
	Command     string     `json:"command"`
	State       JobState   `json:"state"`
	Attempts    int        `json:"attempts"`
	MaxRetries  int        `json:"max_retries"`
	Priority    int        `json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
	RunAt       *time.Time `json:"run_at,omitempty"`
	Output      string     `json:"output,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Terminal reports whether no further automatic transition applies.
func (j *Job) Terminal() bool {
	return j.State == StateCompleted || j.State == StateDead
}

// Spec is the external enqueue payload: required command, optional
// id, run_at and priority.
type Spec struct {
	ID       string `json:"id,omitempty"`
	Command  string `json:"command"`
	RunAt    string `json:"run_at,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

// runAtLayout matches the original enqueue format; timestamps are
// interpreted in local time. RFC3339 is accepted as a fallback.
const runAtLayout = "2006-01-02 15:04:05"

// ParseSpec decodes and validates an enqueue payload.
func ParseSpec(raw []byte) (Spec, error) {
	var s Spec
	if err := json.Unmarshal(raw, &s); err != nil {
		return Spec{}, fmt.Errorf("invalid job payload: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

func (s Spec) Validate() error {
	if s.Command == "" {
		return ErrEmptyCommand
	}
	if s.Priority != 0 && (s.Priority < PriorityHigh || s.Priority > PriorityLow) {
		return ErrBadPriority
	}
	if s.RunAt != "" {
		if _, err := s.ParsedRunAt(); err != nil {
			return err
		}
	}
	return nil
}

// ParsedRunAt returns the parsed run_at, or nil when unset.
func (s Spec) ParsedRunAt() (*time.Time, error) {
	if s.RunAt == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(runAtLayout, s.RunAt, time.Local); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, s.RunAt); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrBadRunAt, s.RunAt)
}
