// Package config resolves the command line and the optional defaults file
// into an immutable run configuration. Durations are parsed, absolute times
// resolved and regular expressions compiled before the engine starts; the
// engine never sees raw configuration text.
package config

import (
	"fmt"
	"regexp"
	"time"
)

// Config is the fully resolved configuration for one run. It is read-only
// once the engine starts. Pointer fields distinguish "not configured" from
// a zero value (a --for-duration of 0s is a valid, immediately-firing
// deadline).
type Config struct {
	// Command is the command line to execute, run through the shell so
	// operators like pipes and redirects work.
	Command string

	// Shell is the interpreter argv prefix. Empty means ["sh", "-c"].
	Shell []string

	// Num is the iteration budget. Nil means unlimited.
	Num *int

	// CountBy and Offset control the COUNT value exposed to the child:
	// COUNT = Offset + iteration*CountBy.
	CountBy float64
	Offset  float64

	// Every is the pause between iterations. Zero means no pause.
	Every time.Duration

	// Items is the fixed --for list. Stdin reads items line-by-line from
	// standard input instead. At most one of the two may be configured.
	Items []string
	Stdin bool

	// ForDuration and UntilTime bound the whole run. The earlier of the
	// two wins when both are set.
	ForDuration *time.Duration
	UntilTime   *time.Time

	// Per-line stop predicates.
	UntilContains string
	UntilChanges  bool
	UntilSame     bool
	UntilMatch    *regexp.Regexp

	// Exit-outcome stop predicates.
	UntilCode    *int
	UntilSuccess bool
	UntilFail    bool

	// OnlyLast retains only the last iteration's output and prints it
	// after the run ends.
	OnlyLast bool

	// ErrorDuration reports deadline expiry with the timeout exit code
	// instead of 0.
	ErrorDuration bool

	// Summary prints a success/failure report after the run ends.
	Summary bool
}

// NeedsLastLine reports whether a comparison predicate is active, meaning
// the engine has to remember the previous line of each output channel.
func (c *Config) NeedsLastLine() bool {
	return c.UntilChanges || c.UntilSame
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Validate checks the configuration for contradictions. Changed/same stop
// predicates are mutually exclusive: whichever was evaluated first would
// mask the other, so the combination is rejected instead of picking an
// arbitrary precedence.
func Validate(c *Config) error {
	if c.Command == "" {
		return ValidationError{Field: "command", Message: "missing command"}
	}
	if c.UntilChanges && c.UntilSame {
		return ValidationError{
			Field:   "until-changes",
			Message: "cannot be combined with until-same",
		}
	}
	if len(c.Items) > 0 && c.Stdin {
		return ValidationError{
			Field:   "for",
			Message: "cannot be combined with stdin",
		}
	}
	if c.Num != nil && *c.Num < 0 {
		return ValidationError{Field: "num", Message: "must not be negative"}
	}
	return nil
}

// untilTimeLayouts are the accepted --until-time formats, tried in order.
// Layouts without an explicit zone are interpreted as UTC.
var untilTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseUntilTime parses an --until-time value. It accepts RFC3339 as well
// as the looser "2018-04-20 04:20:00" style forms.
func ParseUntilTime(s string) (time.Time, error) {
	for _, layout := range untilTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
