package match

import (
	"strings"

	"attest/internal/claim"
	"attest/internal/execlog"
)

// fileMutatingTools are tools whose invocation changes the filesystem.
var fileMutatingTools = map[string]bool{
	"Write":        true,
	"Edit":         true,
	"MultiEdit":    true,
	"NotebookEdit": true,
}

// DefaultCommandPrefixes are the Bash command prefixes treated as
// significant when no configuration overrides them: package managers,
// VCS, container and deployment CLIs, build tools.
var DefaultCommandPrefixes = []string{
	"npm", "yarn", "pnpm", "pip", "git", "docker", "kubectl", "make", "go",
}

// IsSignificant reports whether an execution should have a matching
// claim: any file-mutating tool, or a Bash command whose text starts
// with a configured prefix.
func IsSignificant(r execlog.Record, prefixes []string) bool {
	if fileMutatingTools[r.ToolName] {
		return true
	}
	if r.ToolName != "Bash" {
		return false
	}

	command := strings.TrimSpace(r.Parameters["command"])
	if command == "" {
		return false
	}
	if len(prefixes) == 0 {
		prefixes = DefaultCommandPrefixes
	}
	first := strings.Fields(command)[0]
	for _, p := range prefixes {
		if first == p {
			return true
		}
	}
	return false
}

// Unclaimed returns the significant executions that no claim matches,
// applying the same strategy chain symmetrically.
func Unclaimed(claims []claim.Claim, records []execlog.Record, prefixes []string) []execlog.Record {
	var unclaimed []execlog.Record

	for _, r := range records {
		if !IsSignificant(r, prefixes) {
			continue
		}

		matched := false
		for _, strat := range Chain() {
			for _, c := range claims {
				if strat.Matches(c, r) {
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}

		if !matched {
			unclaimed = append(unclaimed, r)
		}
	}

	return unclaimed
}
