package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummary_Empty(t *testing.T) {
	t.Parallel()

	var s Summary
	assert.Equal(t, "Total runs:\t0\nSuccesses:\t0\nFailures:\t0\n", s.Render())
}

func TestSummary_SuccessesOnly(t *testing.T) {
	t.Parallel()

	var s Summary
	s.Record(ExitOutcome{Success: true})
	s.Record(ExitOutcome{Success: true})

	assert.Equal(t, "Total runs:\t2\nSuccesses:\t2\nFailures:\t0\n", s.Render())
}

func TestSummary_FailuresWithCodes(t *testing.T) {
	t.Parallel()

	var s Summary
	s.Record(ExitOutcome{Success: true})
	s.Record(ExitOutcome{Success: false, Code: 1})
	s.Record(ExitOutcome{Success: false, Code: 42})

	assert.Equal(t, "Total runs:\t3\nSuccesses:\t1\nFailures:\t2 (1, 42)\n", s.Render())
}
