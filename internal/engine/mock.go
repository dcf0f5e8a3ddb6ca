package engine

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"
)

// MockRunner is a test double for Runner. It records the env of every Start
// call and hands out children from a script of MockChild values, one per
// iteration. When the script runs out the last child is reused.
type MockRunner struct {
	mu       sync.Mutex
	children []*MockChild
	envs     [][]string

	// StartErr, when set, is returned by every Start call.
	StartErr error
}

// NewMockRunner creates a MockRunner serving the given children in order.
func NewMockRunner(children ...*MockChild) *MockRunner {
	return &MockRunner{children: children}
}

// Start hands out the next scripted child.
func (m *MockRunner) Start(ctx context.Context, env []string) (Child, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.envs = append(m.envs, append([]string{}, env...))
	if m.StartErr != nil {
		return nil, m.StartErr
	}

	i := len(m.envs) - 1
	if i >= len(m.children) {
		i = len(m.children) - 1
	}
	child := m.children[i]
	child.start()
	return child, nil
}

// Starts returns how many times Start was called.
func (m *MockRunner) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.envs)
}

// Envs returns the env slices passed to each Start call.
func (m *MockRunner) Envs() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.envs
}

// MockChild is a test double for Child. Its output channels replay fixed
// text; Wait returns after WaitDelay (or when killed) with the scripted
// outcome.
type MockChild struct {
	StdoutData string
	StderrData string
	Outcome    ExitOutcome
	WaitErr    error

	// WaitDelay keeps the process "running" after its output is drained.
	// Zero means it exits as soon as Wait is called.
	WaitDelay time.Duration

	mu     sync.Mutex
	killed bool
	killCh chan struct{}
}

func (c *MockChild) start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.killCh == nil {
		c.killCh = make(chan struct{})
	}
}

func (c *MockChild) Stdout() io.ReadCloser {
	return io.NopCloser(strings.NewReader(c.StdoutData))
}

func (c *MockChild) Stderr() io.ReadCloser {
	return io.NopCloser(strings.NewReader(c.StderrData))
}

// Wait returns the scripted outcome after WaitDelay, or immediately once
// the child is killed.
func (c *MockChild) Wait() (ExitOutcome, error) {
	c.mu.Lock()
	killCh := c.killCh
	c.mu.Unlock()

	if c.WaitDelay > 0 {
		select {
		case <-time.After(c.WaitDelay):
		case <-killCh:
			return ExitOutcome{}, nil
		}
	}
	return c.Outcome, c.WaitErr
}

// Kill marks the child as killed and unblocks Wait.
func (c *MockChild) Kill() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.killed {
		c.killed = true
		close(c.killCh)
	}
	return nil
}

// Killed reports whether Kill was called.
func (c *MockChild) Killed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.killed
}
