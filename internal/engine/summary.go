package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Summary accumulates one exit outcome per completed child and renders the
// end-of-run report.
type Summary struct {
	successes int
	failures  []int
}

// Record adds one completed iteration's outcome.
func (s *Summary) Record(outcome ExitOutcome) {
	if outcome.Success {
		s.successes++
		return
	}
	s.failures = append(s.failures, outcome.Code)
}

// Render formats the report:
//
//	Total runs:	5
//	Successes:	3
//	Failures:	2 (1, 2)
func (s *Summary) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total runs:\t%d\n", s.successes+len(s.failures))
	fmt.Fprintf(&b, "Successes:\t%d\n", s.successes)

	if len(s.failures) == 0 {
		b.WriteString("Failures:\t0\n")
		return b.String()
	}

	codes := make([]string, len(s.failures))
	for i, code := range s.failures {
		codes[i] = strconv.Itoa(code)
	}
	fmt.Fprintf(&b, "Failures:\t%d (%s)\n", len(s.failures), strings.Join(codes, ", "))
	return b.String()
}
