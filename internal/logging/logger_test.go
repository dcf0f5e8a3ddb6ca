package logging

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newCaptured(level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(log.New(&buf, "", 0))
	l.SetLevel(level)
	return l, &buf
}

func TestLogger_LevelGate(t *testing.T) {
	t.Parallel()

	l, buf := newCaptured(LevelWarn)

	l.Debug("nope")
	l.Info("nope")
	assert.Empty(t, buf.String())

	l.Warn("something odd")
	assert.Equal(t, "WARN: something odd\n", buf.String())
}

func TestLogger_KeyValues(t *testing.T) {
	t.Parallel()

	l, buf := newCaptured(LevelDebug)

	l.Debug("spawned child", "iteration", 3)
	assert.Equal(t, "DEBUG: spawned child iteration=3\n", buf.String())
}

func TestLogger_QuotesValuesWithSpaces(t *testing.T) {
	t.Parallel()

	l, buf := newCaptured(LevelDebug)

	l.Error("run failed", "err", errors.New("spawn failed: no shell"))
	assert.Equal(t, "ERROR: run failed err=\"spawn failed: no shell\"\n", buf.String())
}

func TestLogger_OddKeyValsIgnored(t *testing.T) {
	t.Parallel()

	l, buf := newCaptured(LevelDebug)

	l.Info("msg", "dangling")
	assert.Equal(t, "INFO: msg\n", buf.String())
}
