// Package testutil provides shared helpers for tests that drive the
// iteration engine against real or fake children.
package testutil

import (
	"context"
	"testing"
	"time"
)

const (
	// DefaultRunTimeout bounds engine runs in tests that would otherwise
	// hang on a broken select loop.
	DefaultRunTimeout = 30 * time.Second

	// DefaultTestBuffer is subtracted from the test deadline so cleanup
	// can finish before the test binary is killed.
	DefaultTestBuffer = 5 * time.Second
)

// RunContext creates a context for driving an engine run. It respects the
// test's deadline minus a cleanup buffer, falling back to DefaultRunTimeout
// when the test has none.
func RunContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()

	if deadline, ok := t.Deadline(); ok {
		adjusted := deadline.Add(-DefaultTestBuffer)
		if time.Until(adjusted) > 0 {
			return context.WithDeadline(context.Background(), adjusted)
		}
	}
	return context.WithTimeout(context.Background(), DefaultRunTimeout)
}
