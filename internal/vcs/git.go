// Package vcs captures version-control state for a checkpoint.
// Capture is best-effort: a directory that is not a git repository,
// or a machine without a git binary, yields a nil State, never an error.
package vcs

import (
	"os/exec"
	"strings"
)

// State represents the git state of a directory at capture time.
type State struct {
	Branch     string   `json:"branch"`               // Current branch name
	Commit     string   `json:"commit"`               // HEAD commit hash
	DirtyPaths []string `json:"dirtyPaths,omitempty"` // Paths with uncommitted changes
}

// CaptureState reads branch, HEAD commit, and dirty paths from git.
// Returns nil if the directory is not under version control or git
// is unavailable.
func CaptureState(dir string) *State {
	branch, err := runGit(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil
	}

	state := &State{Branch: branch}

	// HEAD may not exist in a repository with no commits yet.
	if commit, err := runGit(dir, "rev-parse", "HEAD"); err == nil {
		state.Commit = commit
	}

	if status, err := runGit(dir, "status", "--porcelain"); err == nil {
		state.DirtyPaths = parsePorcelain(status)
	}

	return state
}

// runGit executes a git subcommand in dir and returns trimmed stdout.
func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// parsePorcelain extracts paths from `git status --porcelain` output.
// Each line is "XY path" where XY is the two-character status code.
func parsePorcelain(output string) []string {
	if output == "" {
		return nil
	}

	var paths []string
	for _, line := range strings.Split(output, "\n") {
		if len(line) < 4 {
			continue
		}
		path := strings.TrimSpace(line[3:])
		// Renames are reported as "old -> new"; keep the new path.
		if idx := strings.Index(path, " -> "); idx != -1 {
			path = path[idx+4:]
		}
		paths = append(paths, path)
	}
	return paths
}
