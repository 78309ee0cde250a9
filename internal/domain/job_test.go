package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"minimal", `{"command":"echo hi"}`, nil},
		{"with id and priority", `{"command":"ls","id":"job-1","priority":1}`, nil},
		{"run_at local layout", `{"command":"ls","run_at":"2026-09-01 10:00:00"}`, nil},
		{"run_at rfc3339", `{"command":"ls","run_at":"2026-09-01T10:00:00Z"}`, nil},
		{"missing command", `{"id":"x"}`, ErrEmptyCommand},
		{"empty command", `{"command":""}`, ErrEmptyCommand},
		{"bad priority", `{"command":"ls","priority":4}`, ErrBadPriority},
		{"zero priority means default", `{"command":"ls","priority":0}`, nil},
		{"bad run_at", `{"command":"ls","run_at":"tomorrow"}`, ErrBadRunAt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpec([]byte(tt.raw))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseSpecRejectsGarbage(t *testing.T) {
	_, err := ParseSpec([]byte("not json"))
	require.Error(t, err)
}

func TestParsedRunAtLocalTime(t *testing.T) {
	s := Spec{Command: "ls", RunAt: "2026-09-01 10:30:00"}
	got, err := s.ParsedRunAt()
	require.NoError(t, err)
	require.NotNil(t, got)
	want := time.Date(2026, 9, 1, 10, 30, 0, 0, time.Local)
	require.True(t, got.Equal(want), "got %v want %v", got, want)
}

func TestTerminal(t *testing.T) {
	require.True(t, (&Job{State: StateCompleted}).Terminal())
	require.True(t, (&Job{State: StateDead}).Terminal())
	require.False(t, (&Job{State: StatePending}).Terminal())
	require.False(t, (&Job{State: StateProcessing}).Terminal())
	require.False(t, (&Job{State: StateFailed}).Terminal())
}
