// Package match cross-references claims against execution records.
// Matching is an ordered chain of strategies, applied first-match-wins:
// exact path, exact tool, keyword heuristic, command substring.
package match

import (
	"strings"

	"attest/internal/claim"
	"attest/internal/execlog"
)

// Strategy decides whether a claim corresponds to an execution record.
type Strategy interface {
	Name() string
	Matches(c claim.Claim, r execlog.Record) bool
}

// Chain returns the default ordered strategy chain.
func Chain() []Strategy {
	return []Strategy{
		pathStrategy{},
		toolStrategy{},
		keywordStrategy{},
		commandStrategy{},
	}
}

// Match finds the first execution record matched by any strategy, in
// strict priority order across the chain. Returns nil when no record
// matches; the confidence value is informational only, never a
// classification threshold.
func Match(c claim.Claim, records []execlog.Record) (*execlog.Record, float64) {
	for _, strat := range Chain() {
		for i := range records {
			if strat.Matches(c, records[i]) {
				return &records[i], Confidence(c, records[i])
			}
		}
	}
	return nil, 0
}

// Confidence scores a claim/record pair: 0.5 base, +0.4 exact path,
// +0.3 exact tool, +0.2 successful execution, clamped to 1.0.
func Confidence(c claim.Claim, r execlog.Record) float64 {
	score := 0.5
	if c.Path != "" && c.Path == r.Parameters["file_path"] {
		score += 0.4
	}
	if c.Tool != "" && strings.EqualFold(c.Tool, r.ToolName) {
		score += 0.3
	}
	if r.Success {
		score += 0.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// pathStrategy: exact equality with the execution's file_path parameter.
type pathStrategy struct{}

func (pathStrategy) Name() string { return "exact-path" }

func (pathStrategy) Matches(c claim.Claim, r execlog.Record) bool {
	return c.Path != "" && c.Path == r.Parameters["file_path"]
}

// toolStrategy: case-insensitive equality with the execution's tool name.
type toolStrategy struct{}

func (toolStrategy) Name() string { return "exact-tool" }

func (toolStrategy) Matches(c claim.Claim, r execlog.Record) bool {
	return c.Tool != "" && strings.EqualFold(c.Tool, r.ToolName)
}

// keywordStrategy infers the expected tool from free-text claim content.
type keywordStrategy struct{}

func (keywordStrategy) Name() string { return "keyword-heuristic" }

// keywordTools maps claim-text keywords to the tool names they imply.
var keywordTools = []struct {
	keywords []string
	tools    []string
}{
	{[]string{"created", "wrote"}, []string{"Write"}},
	{[]string{"modified", "edited"}, []string{"Edit", "MultiEdit"}},
	{[]string{"ran", "executed"}, []string{"Bash"}},
}

func (keywordStrategy) Matches(c claim.Claim, r execlog.Record) bool {
	text := strings.ToLower(c.Description)
	if text == "" {
		return false
	}
	for _, entry := range keywordTools {
		for _, kw := range entry.keywords {
			if !strings.Contains(text, kw) {
				continue
			}
			for _, tool := range entry.tools {
				if r.ToolName == tool {
					return true
				}
			}
		}
	}
	return false
}

// commandStrategy: the execution's command contains the claimed command.
type commandStrategy struct{}

func (commandStrategy) Name() string { return "command-substring" }

func (commandStrategy) Matches(c claim.Claim, r execlog.Record) bool {
	return c.Command != "" && strings.Contains(r.Parameters["command"], c.Command)
}
