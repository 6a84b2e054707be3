// Package reconcile cross-references agent claims against detected
// filesystem changes and the execution log. It classifies every claim
// and reports detected changes no claim accounted for.
package reconcile

import (
	"fmt"

	"attest/internal/change"
	"attest/internal/checkpoint"
	"attest/internal/claim"
	"attest/internal/execlog"
	"attest/internal/match"
)

// Report is the outcome of reconciling one set of claims.
type Report struct {
	Verified        []claim.Claim   `json:"verified"`
	PhantomClaims   []claim.Claim   `json:"phantomClaims"`
	MissedChanges   []change.Change `json:"missedChanges"`
	ClaimedVsActual float64         `json:"claimedVsActual"` // verified/total*100, 100 if no claims
	Results         []claim.Result  `json:"results"`
}

// Reconcile validates each claim against the pre-work snapshot and the
// live filesystem, corroborates unverified claims via the execution
// log, and flags detected changes no claim refers to.
func Reconcile(claims []claim.Claim, before checkpoint.Snapshot, root string, changes []change.Change, records []execlog.Record) Report {
	report := Report{
		Verified:      []claim.Claim{},
		PhantomClaims: []claim.Claim{},
		MissedChanges: []change.Change{},
	}

	claimedPaths := make(map[string]bool)

	for _, c := range claims {
		if c.Path != "" {
			claimedPaths[c.Path] = true
		}

		result := claim.Validate(c, before, root)

		// A claim the validator could not corroborate may still have a
		// matching execution record; that demotes it from phantom to
		// partial rather than leaving it unverified. Command claims
		// always go through the log: the filesystem says nothing about
		// them, so a matched one stays partial and an unmatched one is
		// phantom.
		if result.Status == claim.Phantom || c.Type == claim.CommandExecuted {
			if rec, confidence := match.Match(c, records); rec != nil {
				result.Status = claim.Partial
				result.Evidence = append(result.Evidence,
					fmt.Sprintf("matched execution %s (tool %s, confidence %.2f)",
						rec.ExecutionID, rec.ToolName, confidence))
			} else if c.Type == claim.CommandExecuted {
				result.Status = claim.Phantom
				result.Issues = append(result.Issues, "no execution record corroborates this command")
			}
		}

		switch result.Status {
		case claim.Verified:
			report.Verified = append(report.Verified, c)
		case claim.Phantom:
			report.PhantomClaims = append(report.PhantomClaims, c)
		}

		report.Results = append(report.Results, result)
	}

	for _, ch := range changes {
		if !claimedPaths[ch.Path] {
			report.MissedChanges = append(report.MissedChanges, ch)
		}
	}

	report.ClaimedVsActual = claimedVsActual(len(report.Verified), len(claims))
	return report
}

// claimedVsActual is the per-claim match rate as a percentage.
// Vacuously 100 when there are no claims.
func claimedVsActual(verified, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(verified) / float64(total) * 100
}
