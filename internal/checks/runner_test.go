package checks

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell commands differ on windows")
	}
}

func TestRun_Passed(t *testing.T) {
	requireUnix(t)

	result := Run(context.Background(), Check{
		Name:    "echo",
		Command: []string{"echo", "ok"},
	}, t.TempDir())

	assert.Equal(t, Passed, result.Status)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Output, "ok")
}

func TestRun_Failed(t *testing.T) {
	requireUnix(t)

	result := Run(context.Background(), Check{
		Name:    "false",
		Command: []string{"false"},
	}, t.TempDir())

	assert.Equal(t, Failed, result.Status)
	assert.NotEqual(t, 0, result.ExitCode)
}

func TestRun_Timeout(t *testing.T) {
	requireUnix(t)

	start := time.Now()
	result := Run(context.Background(), Check{
		Name:    "sleep",
		Command: []string{"sleep", "10"},
		Timeout: 100 * time.Millisecond,
	}, t.TempDir())

	assert.Equal(t, Timeout, result.Status)
	assert.Less(t, time.Since(start), 5*time.Second, "timeout must kill the command")
}

func TestRun_MissingBinary(t *testing.T) {
	result := Run(context.Background(), Check{
		Name:    "ghost",
		Command: []string{"definitely-not-a-real-binary-xyz"},
	}, t.TempDir())

	assert.Equal(t, Errored, result.Status)
	assert.NotEmpty(t, result.Output)
}

func TestRun_EmptyCommandSkipped(t *testing.T) {
	result := Run(context.Background(), Check{Name: "noop"}, t.TempDir())
	assert.Equal(t, Skipped, result.Status)
}

func TestRunAll_HonorsSkipSet(t *testing.T) {
	requireUnix(t)

	cs := []Check{
		{Name: "build", Command: []string{"echo", "build"}},
		{Name: "test", Command: []string{"echo", "test"}},
	}

	results := RunAll(context.Background(), cs, t.TempDir(), map[string]bool{"test": true})
	require.Len(t, results, 2)

	assert.Equal(t, Passed, results[0].Status)
	assert.Equal(t, Skipped, results[1].Status)
	assert.Equal(t, "test", results[1].Name)
}
