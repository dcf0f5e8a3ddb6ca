package engine

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thruflo/loop/internal/config"
)

func strptr(s string) *string { return &s }

func TestShouldStop_Contains(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{UntilContains: "ready"}

	assert.True(t, shouldStop(cfg, "server ready now", nil))
	assert.False(t, shouldStop(cfg, "starting up", nil))
}

func TestShouldStop_Match(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{UntilMatch: regexp.MustCompile(`^done [0-9]+$`)}

	assert.True(t, shouldStop(cfg, "done 42", nil))
	assert.False(t, shouldStop(cfg, "done forty-two", nil))
}

func TestShouldStop_Changes(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{UntilChanges: true}

	// No previous line retained: nothing to compare against.
	assert.False(t, shouldStop(cfg, "a", nil))
	assert.False(t, shouldStop(cfg, "a", strptr("a")))
	assert.True(t, shouldStop(cfg, "b", strptr("a")))
}

func TestShouldStop_Same(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{UntilSame: true}

	assert.False(t, shouldStop(cfg, "a", nil))
	assert.False(t, shouldStop(cfg, "b", strptr("a")))
	assert.True(t, shouldStop(cfg, "a", strptr("a")))
}

func TestShouldStop_ComparisonBeforePatterns(t *testing.T) {
	t.Parallel()

	// A changed line stops the run even when the pattern predicates would
	// not match it.
	cfg := &config.Config{
		UntilChanges:  true,
		UntilContains: "never-in-output",
	}
	assert.True(t, shouldStop(cfg, "b", strptr("a")))
}

func TestShouldStop_NoPredicates(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	assert.False(t, shouldStop(cfg, "anything", nil))
}

func TestLastLines_ReplaceReturnsPrevious(t *testing.T) {
	t.Parallel()

	var m lastLines

	prev := m.replace(SourceStdout, "a")
	assert.Nil(t, prev)

	prev = m.replace(SourceStdout, "b")
	require.NotNil(t, prev)
	assert.Equal(t, "a", *prev)

	prev = m.replace(SourceStdout, "c")
	require.NotNil(t, prev)
	assert.Equal(t, "b", *prev)

	require.NotNil(t, m.stdout)
	assert.Equal(t, "c", *m.stdout)
}

func TestLastLines_ChannelsIndependent(t *testing.T) {
	t.Parallel()

	var m lastLines

	m.replace(SourceStdout, "out")
	prev := m.replace(SourceStderr, "err")
	assert.Nil(t, prev, "stderr memory must not see stdout lines")

	prev = m.replace(SourceStdout, "out2")
	require.NotNil(t, prev)
	assert.Equal(t, "out", *prev)
}
