// Package engine implements the iteration loop that repeatedly re-executes
// an external command under stop and pacing conditions.
//
// Each iteration spawns one child through a Runner, merges its stdout and
// stderr into a single ordered stream of line events, and races four event
// sources in one select loop:
//
//   - the run-wide deadline gate (--for-duration / --until-time)
//   - the next merged line event
//   - the child's exit outcome
//   - both output channels closing
//
// Per-line stop predicates (contains, match, changes, same) and exit-outcome
// predicates (fail, success, code) end the whole run, not just the current
// iteration. Iterations are strictly sequential; the only state carried
// across them is the iteration counter and the remembered last line per
// output channel.
//
// All I/O failures while spawning, reading output or waiting are fatal for
// the run. The execution environment is broken, not the command's logic, and
// retrying would mask that.
package engine
