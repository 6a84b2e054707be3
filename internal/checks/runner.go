// Package checks runs external validation commands (build, test, lint)
// with explicit timeouts. A failing or hanging command is captured as a
// status value, never propagated as an error: check outcomes are data.
package checks

import (
	"context"
	"errors"
	"os/exec"
	"time"
)

// Status values for a check outcome.
type Status string

const (
	Passed  Status = "passed"
	Failed  Status = "failed"
	Timeout Status = "timeout"
	Skipped Status = "skipped"
	Errored Status = "error" // Could not start at all
)

// maxOutputLen bounds captured command output.
const maxOutputLen = 16 * 1024

// DefaultTimeout applies when a check has no explicit timeout.
const DefaultTimeout = 2 * time.Minute

// Check describes one external validation command.
type Check struct {
	Name    string        `json:"name"`
	Command []string      `json:"command"`
	Timeout time.Duration `json:"timeout"`
}

// Result is the captured outcome of one check.
type Result struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	ExitCode int           `json:"exitCode"`
	Output   string        `json:"output,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Run executes a check in dir and captures its outcome. The command is
// killed when the timeout elapses.
func Run(ctx context.Context, c Check, dir string) Result {
	result := Result{Name: c.Name}

	if len(c.Command) == 0 {
		result.Status = Skipped
		return result
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Command[0], c.Command[1:]...)
	cmd.Dir = dir

	start := time.Now()
	out, err := cmd.CombinedOutput()
	result.Duration = time.Since(start)
	result.Output = boundOutput(out)

	switch {
	case ctx.Err() == context.DeadlineExceeded:
		result.Status = Timeout
		result.ExitCode = -1
	case err == nil:
		result.Status = Passed
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.Status = Failed
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.Status = Errored
			result.ExitCode = -1
			result.Output = err.Error()
		}
	}

	return result
}

// RunAll executes checks in order, honoring the skip set by name.
func RunAll(ctx context.Context, cs []Check, dir string, skip map[string]bool) []Result {
	results := make([]Result, 0, len(cs))
	for _, c := range cs {
		if skip[c.Name] {
			results = append(results, Result{Name: c.Name, Status: Skipped})
			continue
		}
		results = append(results, Run(ctx, c, dir))
	}
	return results
}

func boundOutput(out []byte) string {
	if len(out) <= maxOutputLen {
		return string(out)
	}
	return string(out[:maxOutputLen]) + "...[truncated]"
}
