// Package cli implements the loop command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thruflo/loop/internal/config"
	"github.com/thruflo/loop/internal/engine"
	"github.com/thruflo/loop/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	flagNum           int
	flagCountBy       float64
	flagOffset        float64
	flagEvery         time.Duration
	flagFor           string
	flagForDuration   time.Duration
	flagUntilContains string
	flagUntilChanges  bool
	flagUntilSame     bool
	flagUntilMatch    string
	flagUntilTime     string
	flagUntilCode     int
	flagUntilSuccess  bool
	flagUntilFail     bool
	flagOnlyLast      bool
	flagStdin         bool
	flagErrorDuration bool
	flagSummary       bool
	flagVerbose       bool
)

// exitCode holds the run's terminal exit code for Execute to return.
var exitCode int

var rootCmd = &cobra.Command{
	Use:   "loop [flags] -- command [args...]",
	Short: "UNIX's missing loop command",
	Long: `Loop re-executes a command until a stop condition is met: an output
line matching or containing a value, output changing or repeating, a
specific exit status, a deadline, an iteration count, or an exhausted
item list.

The command runs through the shell, so pipes and redirects work. Each
child sees COUNT (offset + iteration x step), ACTUALCOUNT (raw 0-based
iteration) and, with --for or --stdin, the current ITEM.

Example:
  loop -n 3 -- echo hi
  loop --every 5s --until-contains ready -- curl -s localhost:8080/health
  loop --for red,green,blue -- 'echo $ITEM'
  loop -d 1m30s -D -- ./flaky-test.sh`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLoop,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("loop version {{.Version}}\n")

	flags := rootCmd.Flags()
	flags.IntVarP(&flagNum, "num", "n", 0, "number of iterations to execute")
	flags.Float64VarP(&flagCountBy, "count-by", "b", 1, "amount to increment COUNT by per iteration")
	flags.Float64VarP(&flagOffset, "offset", "o", 0, "amount to offset the initial COUNT by")
	flags.DurationVarP(&flagEvery, "every", "e", 0, "pause between iterations (e.g. 5s, 1h1m)")
	flags.StringVar(&flagFor, "for", "", "comma-separated values placed into ITEM (e.g. red,green,blue)")
	flags.DurationVarP(&flagForDuration, "for-duration", "d", 0, "keep going until this duration has elapsed (e.g. 1m30s)")
	flags.StringVarP(&flagUntilContains, "until-contains", "c", "", "keep going until the output contains this string")
	flags.BoolVarP(&flagUntilChanges, "until-changes", "C", false, "keep going until the output changes")
	flags.BoolVarP(&flagUntilSame, "until-same", "S", false, "keep going until the output repeats")
	flags.StringVarP(&flagUntilMatch, "until-match", "m", "", "keep going until the output matches this regular expression")
	flags.StringVarP(&flagUntilTime, "until-time", "t", "", "keep going until this time (e.g. \"2018-04-20 04:20:00\", UTC)")
	flags.IntVarP(&flagUntilCode, "until-code", "r", 0, "keep going until the exit status is this value")
	flags.BoolVarP(&flagUntilSuccess, "until-success", "s", false, "keep going until the exit status is zero")
	flags.BoolVarP(&flagUntilFail, "until-fail", "f", false, "keep going until the exit status is non-zero")
	flags.BoolVarP(&flagOnlyLast, "only-last", "l", false, "only print the output of the last iteration")
	flags.BoolVarP(&flagStdin, "stdin", "i", false, "read items from standard input")
	flags.BoolVarP(&flagErrorDuration, "error-duration", "D", false, "exit with the timeout error code when the deadline fires")
	flags.BoolVar(&flagSummary, "summary", false, "print a run summary at the end")
	flags.BoolVar(&flagVerbose, "verbose", false, "enable debug logging")
}

// Execute runs the root command and returns the process exit code.
func Execute() (int, error) {
	if err := rootCmd.Execute(); err != nil {
		return 1, err
	}
	return exitCode, nil
}

func runLoop(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		logging.SetLevel(logging.LevelDebug)
	}

	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	var items engine.ItemSource
	switch {
	case len(cfg.Items) > 0:
		items = engine.Items(cfg.Items)
	case cfg.Stdin:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "loop: reading items from stdin; pipe input or press Ctrl-D to finish")
		}
		items = engine.LineItems(os.Stdin)
	}

	var summary *engine.Summary
	if cfg.Summary {
		summary = &engine.Summary{}
	}

	eng := engine.New(engine.Options{
		Config:  cfg,
		Items:   items,
		Summary: summary,
	})

	code, err := eng.Run(context.Background())
	if err != nil {
		return err
	}

	eng.Sink().Flush()
	if summary != nil {
		fmt.Print(summary.Render())
	}

	exitCode = code
	return nil
}

// buildConfig resolves flags and the optional defaults file into the run
// configuration. Flags win over file values, file values over built-in
// defaults.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := &config.Config{
		Command:       strings.Join(args, " "),
		CountBy:       flagCountBy,
		Offset:        flagOffset,
		Every:         flagEvery,
		Stdin:         flagStdin,
		UntilContains: flagUntilContains,
		UntilChanges:  flagUntilChanges,
		UntilSame:     flagUntilSame,
		UntilSuccess:  flagUntilSuccess,
		UntilFail:     flagUntilFail,
		OnlyLast:      flagOnlyLast,
		ErrorDuration: flagErrorDuration,
		Summary:       flagSummary,
	}

	changed := cmd.Flags().Changed

	if changed("num") {
		n := flagNum
		cfg.Num = &n
	}
	if changed("for-duration") {
		d := flagForDuration
		cfg.ForDuration = &d
	}
	if changed("until-code") {
		c := flagUntilCode
		cfg.UntilCode = &c
	}
	if flagFor != "" {
		cfg.Items = strings.Split(flagFor, ",")
	}

	if flagUntilMatch != "" {
		re, err := regexp.Compile(flagUntilMatch)
		if err != nil {
			return nil, fmt.Errorf("invalid --until-match: %w", err)
		}
		cfg.UntilMatch = re
	}

	if flagUntilTime != "" {
		t, err := config.ParseUntilTime(flagUntilTime)
		if err != nil {
			return nil, fmt.Errorf("invalid --until-time: %w", err)
		}
		cfg.UntilTime = &t
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	defaults, err := config.LoadDefaults(cwd)
	if err != nil {
		return nil, err
	}
	defaults.Apply(cfg, changed)

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
