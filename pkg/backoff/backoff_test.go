package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExponentialLaw(t *testing.T) {
	tests := []struct {
		base    int
		attempt int
		want    time.Duration
	}{
		{2, 0, 1 * time.Second},
		{2, 1, 2 * time.Second},
		{2, 2, 4 * time.Second},
		{2, 3, 8 * time.Second},
		{3, 1, 3 * time.Second},
		{3, 2, 9 * time.Second},
		{3, 4, 81 * time.Second},
		{1, 5, 1 * time.Second},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Exponential(tt.base, tt.attempt),
			"base=%d attempt=%d", tt.base, tt.attempt)
	}
}

func TestExponentialMonotonic(t *testing.T) {
	for _, base := range []int{1, 2, 3, 5} {
		prev := time.Duration(-1)
		for attempt := 0; attempt <= 10; attempt++ {
			d := Exponential(base, attempt)
			require.GreaterOrEqual(t, d, prev, "base=%d attempt=%d", base, attempt)
			prev = d
		}
	}
}

func TestExponentialDegenerateInputs(t *testing.T) {
	// Zero or negative base is clamped rather than producing a zero
	// or oscillating delay.
	require.Equal(t, time.Second, Exponential(0, 3))
	require.Equal(t, time.Second, Exponential(-2, 3))
	require.Equal(t, time.Second, Exponential(2, -1))
}
