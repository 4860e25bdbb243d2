package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestQuotaEnforcer_WithinLimit tests normal operation within quota.
func TestQuotaEnforcer_WithinLimit(t *testing.T) {
	q := NewQuotaEnforcer(10)

	for i := 0; i < 10; i++ {
		err := q.Check()
		assert.NoError(t, err, "step %d should be allowed", i+1)
	}

	assert.Equal(t, 10, q.Current())
	assert.Equal(t, 10, q.MaxSteps())
}

// TestQuotaEnforcer_ExceedsLimit tests quota exceeded error.
func TestQuotaEnforcer_ExceedsLimit(t *testing.T) {
	q := NewQuotaEnforcer(5)

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Check())
	}

	err := q.Check()
	require.Error(t, err)
	assert.True(t, IsStepsExceededError(err))
	assert.True(t, IsQuotaError(err))
	assert.Equal(t, "exceeded max steps quota: 6 steps > 5 limit", err.Error())

	var se *StepsExceededError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 6, se.Steps)
	assert.Equal(t, 5, se.Limit)
	assert.False(t, IsCycleError(err))
}

func TestQuotaEnforcer_Reset(t *testing.T) {
	q := NewQuotaEnforcer(1)
	require.NoError(t, q.Check())
	require.Error(t, q.Check())

	q.Reset()
	assert.Equal(t, 0, q.Current())
	assert.NoError(t, q.Check())
}

func TestRuntimeErrorPredicates(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		isCycle bool
		isQuota bool
	}{
		{"cycle", NewCycleError("R_X", 3), true, false},
		{"steps", &StepsExceededError{Steps: 11, Limit: 10}, false, true},
		{"wrapped cycle", fmt.Errorf("outer: %w", NewCycleError("R_X", 3)), true, false},
		{"wrapped steps", fmt.Errorf("outer: %w", &StepsExceededError{Steps: 2, Limit: 1}), false, true},
		{"plain", fmt.Errorf("boom"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isCycle, IsCycleError(tt.err))
			assert.Equal(t, tt.isQuota, IsQuotaError(tt.err))
		})
	}
}

func TestRuntimeErrorMessage(t *testing.T) {
	assert.Equal(t,
		"CYCLE_DETECTED: rewriting reached a term it had already visited (rule=R_X)",
		NewCycleError("R_X", 1).Error())
	assert.Equal(t,
		"CYCLE_DETECTED: rewriting reached a term it had already visited",
		(&RuntimeError{Code: ErrCodeCycleDetected, Message: "rewriting reached a term it had already visited"}).Error())
}
