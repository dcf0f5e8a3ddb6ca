package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The root command and its flags are package state, so these tests run
// sequentially, in order: flags set by one invocation stay set for the
// next, and each case only depends on errors that surface before any
// leftover flag is looked at.

func TestExecute_ZeroIterations(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	rootCmd.SetArgs([]string{"-n", "0", "--", "echo", "hi"})
	code, err := Execute()
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestExecute_MissingCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	rootCmd.SetArgs([]string{"-n", "0"})
	_, err := Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing command")
}

func TestExecute_ConflictingComparisonPredicates(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	rootCmd.SetArgs([]string{"-n", "0", "-C", "-S", "--", "echo", "hi"})
	_, err := Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "until-changes")
}

func TestExecute_InvalidUntilTime(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	rootCmd.SetArgs([]string{"-n", "0", "-t", "four twenty", "--", "echo", "hi"})
	_, err := Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "until-time")
}

func TestExecute_InvalidRegexp(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	rootCmd.SetArgs([]string{"-n", "0", "-m", "(", "--", "echo", "hi"})
	_, err := Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "until-match")
}
