// Package score turns reconciliation results into a 0-100 reliability
// score with discrepancy classification and advisory recommendations.
package score

import (
	"fmt"

	"attest/internal/claim"
	"attest/internal/execlog"
	"attest/internal/match"
	"attest/internal/reconcile"
)

// Severity levels for discrepancies.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

// Discrepancy describes one mismatch between claimed and actual work.
type Discrepancy struct {
	Type        string `json:"type"` // "phantom_claim" or "missing_claim"
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// Recommendation is advisory text emitted when a reliability rule fires.
type Recommendation struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
}

// Report is the scored reliability result for one session.
type Report struct {
	Score             float64          `json:"score"` // Composite, clamped to [0,100]
	ClaimAccuracy     float64          `json:"claimAccuracy"`
	ExecutionCoverage float64          `json:"executionCoverage"`
	PhantomCount      int              `json:"phantomCount"`
	Discrepancies     []Discrepancy    `json:"discrepancies"`
	Recommendations   []Recommendation `json:"recommendations"`
}

// Weights of the composite formula. The phantom penalty is count*0.1
// applied at 0.2 weight; the double discount is deliberate upstream
// behavior and is reproduced as-is.
const (
	accuracyWeight = 0.5
	coverageWeight = 0.3
	penaltyWeight  = 0.2
	perPhantomCost = 0.1
)

// scoreThreshold is the score below which a reliability recommendation
// fires.
const scoreThreshold = 80

// Compute scores a reconciliation report against the session's claims
// and execution records.
func Compute(recon reconcile.Report, claims []claim.Claim, records []execlog.Record, prefixes []string) Report {
	claimAccuracy := 1.0
	if len(claims) > 0 {
		claimAccuracy = float64(len(recon.Verified)) / float64(len(claims))
	}

	significant := 0
	for _, r := range records {
		if match.IsSignificant(r, prefixes) {
			significant++
		}
	}
	unclaimed := match.Unclaimed(claims, records, prefixes)

	executionCoverage := 1.0
	if significant > 0 {
		executionCoverage = float64(significant-len(unclaimed)) / float64(significant)
	}

	phantomCount := len(recon.PhantomClaims)
	phantomPenalty := float64(phantomCount) * perPhantomCost

	raw := (claimAccuracy*accuracyWeight + executionCoverage*coverageWeight - phantomPenalty*penaltyWeight) * 100

	report := Report{
		Score:             clamp(raw, 0, 100),
		ClaimAccuracy:     claimAccuracy,
		ExecutionCoverage: executionCoverage,
		PhantomCount:      phantomCount,
		Discrepancies:     []Discrepancy{},
		Recommendations:   []Recommendation{},
	}

	for _, c := range recon.PhantomClaims {
		report.Discrepancies = append(report.Discrepancies, Discrepancy{
			Type:        "phantom_claim",
			Severity:    SeverityHigh,
			Description: describeClaim(c),
		})
	}
	for _, r := range unclaimed {
		report.Discrepancies = append(report.Discrepancies, Discrepancy{
			Type:        "missing_claim",
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("significant %s execution %s has no matching claim", r.ToolName, r.ExecutionID),
		})
	}

	report.Recommendations = recommend(report, records)
	return report
}

// recommend applies the advisory rules: low composite score, repeated
// phantom claims, and more failed than successful executions.
func recommend(report Report, records []execlog.Record) []Recommendation {
	recs := []Recommendation{}

	if report.Score < scoreThreshold {
		recs = append(recs, Recommendation{
			Type:     "reliability",
			Priority: SeverityHigh,
			Message:  fmt.Sprintf("reliability score %.1f is below threshold %d", report.Score, scoreThreshold),
		})
	}

	if report.PhantomCount > 2 {
		recs = append(recs, Recommendation{
			Type:     "phantom_claims",
			Priority: SeverityHigh,
			Message:  fmt.Sprintf("%d phantom claims detected; agent may be overstating work", report.PhantomCount),
		})
	}

	failed, succeeded := 0, 0
	for _, r := range records {
		if r.Success {
			succeeded++
		} else {
			failed++
		}
	}
	if failed > succeeded {
		recs = append(recs, Recommendation{
			Type:     "error_handling",
			Priority: SeverityMedium,
			Message:  fmt.Sprintf("%d of %d executions failed; check error handling", failed, failed+succeeded),
		})
	}

	return recs
}

// describeClaim renders a claim for discrepancy text.
func describeClaim(c claim.Claim) string {
	switch {
	case c.Path != "":
		return fmt.Sprintf("claimed %s for path %s has no corroborating change", c.Type, c.Path)
	case c.Command != "":
		return fmt.Sprintf("claimed command %q has no corroborating execution", c.Command)
	case c.Description != "":
		return fmt.Sprintf("claim %q could not be verified", c.Description)
	default:
		return fmt.Sprintf("claim of type %s could not be verified", c.Type)
	}
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
