package engine

import (
	"strings"

	"github.com/thruflo/loop/internal/config"
)

// shouldStop checks a single line against the configured per-line stop
// predicates. last is the previously seen line on the same channel, nil if
// none was retained. Comparison predicates are checked first, then the
// regular expression, then the substring.
func shouldStop(cfg *config.Config, line string, last *string) bool {
	if last != nil {
		if cfg.UntilChanges && *last != line {
			return true
		}
		if cfg.UntilSame && *last == line {
			return true
		}
	}

	if cfg.UntilMatch != nil && cfg.UntilMatch.MatchString(line) {
		return true
	}

	if cfg.UntilContains != "" && strings.Contains(line, cfg.UntilContains) {
		return true
	}

	return false
}

// lastLines remembers the most recent line seen on each output channel.
// It persists across iterations and is only populated when a comparison
// predicate is active.
type lastLines struct {
	stdout *string
	stderr *string
}

// replace stores line for the given channel and returns the previously
// stored line, nil if none.
func (m *lastLines) replace(src Source, line string) *string {
	slot := &m.stdout
	if src == SourceStderr {
		slot = &m.stderr
	}
	prev := *slot
	v := line
	*slot = &v
	return prev
}
