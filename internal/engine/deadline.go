package engine

import "time"

// newDeadlineGate returns a one-shot timer channel for the whole run: the
// earlier of the relative duration and the absolute wall-clock time. When
// neither is configured the returned channel is nil, and selecting on it
// blocks forever.
func newDeadlineGate(forDuration *time.Duration, untilTime *time.Time, now time.Time) <-chan time.Time {
	var wait time.Duration
	have := false

	if forDuration != nil {
		wait = *forDuration
		have = true
	}
	if untilTime != nil {
		d := untilTime.Sub(now)
		if d < 0 {
			d = 0
		}
		if !have || d < wait {
			wait = d
		}
		have = true
	}

	if !have {
		return nil
	}
	return time.After(wait)
}
