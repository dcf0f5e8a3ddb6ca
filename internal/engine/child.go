package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// ExitOutcome is the decoded exit status of one child process.
type ExitOutcome struct {
	Success bool
	Code    int
}

// Child is a handle on one spawned process: its two captured output
// channels, a wait operation and a forced terminate. Wait may be called
// concurrently with reads from the output channels.
type Child interface {
	Stdout() io.ReadCloser
	Stderr() io.ReadCloser
	Wait() (ExitOutcome, error)
	Kill() error
}

// Runner starts one child process per iteration. The env slice carries the
// iteration variables (COUNT, ACTUALCOUNT, ITEM) in KEY=value form, on top
// of the parent environment.
type Runner interface {
	Start(ctx context.Context, env []string) (Child, error)
}

// ShellRunner runs a command line through the shell so operators like pipes
// and redirects work. Stdin is left disconnected; both output channels are
// captured.
type ShellRunner struct {
	// Command is the full command line passed to the interpreter.
	Command string

	// Shell is the interpreter argv prefix. Empty means ["sh", "-c"].
	Shell []string
}

// NewShellRunner creates a ShellRunner for the given command line.
func NewShellRunner(command string, shell []string) *ShellRunner {
	return &ShellRunner{Command: command, Shell: shell}
}

// Start spawns the command. The output channels are plain pipes rather than
// exec's managed ones: Wait must be safe to call while the pipes are still
// being drained, and exec.Cmd closes its own pipes on Wait.
func (r *ShellRunner) Start(ctx context.Context, env []string) (Child, error) {
	shell := r.Shell
	if len(shell) == 0 {
		shell = []string{"sh", "-c"}
	}
	argv := append(append([]string{}, shell...), r.Command)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), env...)

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	if err := cmd.Start(); err != nil {
		stdoutR.Close()
		stdoutW.Close()
		stderrR.Close()
		stderrW.Close()
		return nil, fmt.Errorf("failed to start command: %w", err)
	}

	// The child owns the write ends now. Close our copies so the readers
	// see EOF once the child exits.
	stdoutW.Close()
	stderrW.Close()

	return &shellChild{cmd: cmd, stdout: stdoutR, stderr: stderrR}, nil
}

// shellChild wraps a started exec.Cmd.
type shellChild struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser
}

func (c *shellChild) Stdout() io.ReadCloser { return c.stdout }
func (c *shellChild) Stderr() io.ReadCloser { return c.stderr }

// Wait blocks until the process exits. A process that terminated without an
// exit code (killed by a signal) is an error, not an outcome.
func (c *shellChild) Wait() (ExitOutcome, error) {
	err := c.cmd.Wait()
	if err == nil {
		return ExitOutcome{Success: true, Code: 0}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			return ExitOutcome{}, fmt.Errorf("failed to get exit code: %w", err)
		}
		return ExitOutcome{Success: false, Code: code}, nil
	}
	return ExitOutcome{}, fmt.Errorf("failed to get process exit status: %w", err)
}

// Kill requests forced termination. The caller must still reap the process
// via Wait. Killing a process that already exited is not an error.
func (c *shellChild) Kill() error {
	err := c.cmd.Process.Kill()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to terminate child process: %w", err)
	}
	return nil
}
