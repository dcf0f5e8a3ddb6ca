package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/thruflo/loop/internal/config"
	"github.com/thruflo/loop/internal/logging"
)

// timeoutExitCode matches the exit code of the timeout(1) shell command,
// reported when the deadline fires and --error-duration is set.
const timeoutExitCode = 124

// Engine drives the whole run: one child per iteration, strictly
// sequential, until a stop predicate, the deadline, item exhaustion or the
// iteration budget ends it.
type Engine struct {
	cfg     *config.Config
	runner  Runner
	sink    Sink
	items   ItemSource
	summary *Summary
	log     *logging.Logger
	now     func() time.Time

	last lastLines
}

// Options holds the dependencies for a new Engine. Runner, Sink and Now
// default to production implementations when unset; Items and Summary stay
// nil unless configured. This makes the engine testable with in-memory
// fakes instead of real processes.
type Options struct {
	Config  *config.Config
	Runner  Runner
	Sink    Sink
	Items   ItemSource
	Summary *Summary
	Logger  *logging.Logger
	Now     func() time.Time
}

// New creates an Engine from the given options.
func New(opts Options) *Engine {
	e := &Engine{
		cfg:     opts.Config,
		runner:  opts.Runner,
		sink:    opts.Sink,
		items:   opts.Items,
		summary: opts.Summary,
		log:     opts.Logger,
		now:     opts.Now,
	}
	if e.runner == nil {
		e.runner = NewShellRunner(e.cfg.Command, e.cfg.Shell)
	}
	if e.sink == nil {
		if e.cfg.OnlyLast {
			e.sink = NewLastOnlySink()
		} else {
			e.sink = NewStreamSink()
		}
	}
	if e.log == nil {
		e.log = logging.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Sink returns the engine's output sink so the caller can flush it after
// the run.
func (e *Engine) Sink() Sink { return e.sink }

// Run executes iterations until a terminal condition and returns the
// process exit code for the whole run. A non-nil error means a fatal
// environment failure (spawn, stream or wait); no retry is attempted.
func (e *Engine) Run(ctx context.Context) (int, error) {
	deadline := newDeadlineGate(e.cfg.ForDuration, e.cfg.UntilTime, e.now())

	remaining := 0
	if e.cfg.Num != nil {
		remaining = *e.cfg.Num
	}

	var iteration uint64
	for {
		// Budget check happens before anything else so -n 0 spawns
		// nothing and consumes no items.
		if e.cfg.Num != nil {
			if remaining == 0 {
				return 0, nil
			}
			remaining--
		}

		env := e.iterationEnv(iteration)
		if e.items != nil {
			item, ok := e.items.Next()
			if !ok {
				e.log.Debug("item source exhausted", "iteration", iteration)
				return 0, nil
			}
			env = append(env, "ITEM="+item)
		}

		e.sink.BeginIteration()

		code, done, err := e.runIteration(ctx, iteration, env, deadline)
		if err != nil {
			return 0, err
		}
		if done {
			return code, nil
		}

		iteration++
		if e.cfg.Every > 0 {
			// The pause is not raced against the deadline gate, so a
			// long --every can overrun --for-duration. Matches the
			// historical behavior of the tool.
			time.Sleep(e.cfg.Every)
		}
	}
}

// runIteration spawns one child and drains it. done reports that the whole
// run is over and code is its exit code; otherwise the loop continues with
// the next iteration.
func (e *Engine) runIteration(ctx context.Context, iteration uint64, env []string, deadline <-chan time.Time) (code int, done bool, err error) {
	child, err := e.runner.Start(ctx, env)
	if err != nil {
		return 0, false, err
	}
	e.log.Debug("spawned child", "iteration", iteration)

	events := mergeLines(child.Stdout(), child.Stderr())
	// On an early return (stop condition, deadline, fatal error) the
	// scanners must not be left blocked on the events channel.
	defer func() {
		if events != nil {
			go func(ch <-chan LineEvent) {
				for range ch {
				}
			}(events)
		}
	}()

	type waitResult struct {
		outcome ExitOutcome
		err     error
	}
	waitCh := make(chan waitResult, 1)
	go func() {
		outcome, err := child.Wait()
		waitCh <- waitResult{outcome: outcome, err: err}
	}()

	needLast := e.cfg.NeedsLastLine()
	var (
		exited       bool
		streamClosed bool
	)

	for {
		select {
		case <-deadline:
			// The deadline ends the whole run. Kill and reap the child
			// before returning so nothing is left running.
			if !exited {
				if err := child.Kill(); err != nil {
					return 0, false, err
				}
				<-waitCh
			}
			e.log.Debug("deadline fired", "iteration", iteration)
			if e.cfg.ErrorDuration {
				return timeoutExitCode, true, nil
			}
			return 0, true, nil

		case ev, ok := <-events:
			if !ok {
				events = nil
				streamClosed = true
				if exited {
					return 0, false, nil
				}
				continue
			}
			if ev.Err != nil {
				return 0, false, fmt.Errorf("failed to read %s: %w", ev.Source, ev.Err)
			}

			var last *string
			if needLast {
				last = e.last.replace(ev.Source, ev.Text)
			}
			stop := shouldStop(e.cfg, ev.Text, last)

			e.sink.Emit(ev)

			if stop {
				e.log.Debug("stop condition met", "iteration", iteration, "source", ev.Source)
				return 0, true, nil
			}

		case res := <-waitCh:
			waitCh = nil
			if res.err != nil {
				return 0, false, res.err
			}
			exited = true

			outcome := res.outcome
			e.log.Debug("child exited",
				"iteration", iteration,
				"success", outcome.Success,
				"code", outcome.Code,
			)
			if e.summary != nil {
				e.summary.Record(outcome)
			}

			if e.cfg.UntilFail && !outcome.Success {
				return outcome.Code, true, nil
			}
			if e.cfg.UntilSuccess && outcome.Success {
				return outcome.Code, true, nil
			}
			if e.cfg.UntilCode != nil && *e.cfg.UntilCode == outcome.Code {
				return outcome.Code, true, nil
			}

			if streamClosed {
				return 0, false, nil
			}
		}
	}
}

// iterationEnv builds the per-iteration counter variables. COUNT is the
// scaled counter (offset + iteration*step), ACTUALCOUNT the raw 0-based
// iteration.
func (e *Engine) iterationEnv(iteration uint64) []string {
	count := e.cfg.Offset + float64(iteration)*e.cfg.CountBy
	return []string{
		"COUNT=" + strconv.FormatFloat(count, 'f', -1, 64),
		"ACTUALCOUNT=" + strconv.FormatUint(iteration, 10),
	}
}
