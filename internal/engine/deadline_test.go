package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func durptr(d time.Duration) *time.Duration { return &d }

func TestDeadlineGate_Unconfigured(t *testing.T) {
	t.Parallel()

	gate := newDeadlineGate(nil, nil, time.Now())
	assert.Nil(t, gate, "unconfigured gate must be a nil channel")
}

func TestDeadlineGate_ZeroDuration(t *testing.T) {
	t.Parallel()

	gate := newDeadlineGate(durptr(0), nil, time.Now())
	require.NotNil(t, gate)

	select {
	case <-gate:
	case <-time.After(time.Second):
		t.Fatal("zero duration gate did not fire")
	}
}

func TestDeadlineGate_PastUntilTime(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past := now.Add(-time.Minute)
	gate := newDeadlineGate(nil, &past, now)
	require.NotNil(t, gate)

	select {
	case <-gate:
	case <-time.After(time.Second):
		t.Fatal("past until-time gate did not fire")
	}
}

func TestDeadlineGate_EarliestWins(t *testing.T) {
	t.Parallel()

	// The absolute time is sooner than the relative duration, so the gate
	// must fire well before the hour is up.
	now := time.Now()
	soon := now.Add(10 * time.Millisecond)
	gate := newDeadlineGate(durptr(time.Hour), &soon, now)
	require.NotNil(t, gate)

	select {
	case <-gate:
	case <-time.After(time.Second):
		t.Fatal("gate did not fire at the earlier deadline")
	}
}
