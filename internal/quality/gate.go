// Package quality checks generated reports for structural and arithmetic
// soundness before they are served or cached.
package quality

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/company-analyst/internal/types"
)

// Violation type names emitted by the gate.
const (
	ViolationMissingSection   = "missing_section"
	ViolationEmptySection     = "empty_section"
	ViolationScoreOutOfRange  = "score_out_of_range"
	ViolationMissingAxis      = "missing_axis"
	ViolationTotalMismatch    = "total_mismatch"
	ViolationVerdictMismatch  = "verdict_mismatch"
	ViolationNoAttractions    = "no_attractions"
	ViolationNoRisks          = "no_risks"
	ViolationUnsupportedClaim = "unsupported_claim"
	ViolationUnknownCitation  = "unknown_citation"
)

// TotalTolerance is how far the reported total score may drift from the
// recomputed weighted total before the gate rejects it.
const TotalTolerance = 0.05

// Evaluate runs every check against a generated report. factIDs is the set
// of fact IDs that were present in the evaluation context; judgments must
// cite only those. The result is Passed only when no error-severity
// violation was found.
func Evaluate(rpt *types.Report, factIDs map[string]bool) types.QualityResult {
	var violations []types.Violation
	violations = append(violations, checkSections(rpt)...)
	violations = append(violations, checkScores(rpt)...)
	violations = append(violations, checkTotals(rpt)...)
	violations = append(violations, checkHighlights(rpt)...)
	violations = append(violations, checkJudgments(rpt, factIDs)...)

	vs := types.Violations{Violations: violations}
	return types.QualityResult{
		Passed:     !vs.HasErrors(),
		Violations: violations,
	}
}

// checkSections requires every mandatory section to exist with a
// non-empty body.
func checkSections(rpt *types.Report) []types.Violation {
	var out []types.Violation
	for _, name := range types.RequiredSections() {
		section := name
		body, ok := rpt.Section(name)
		if !ok {
			out = append(out, types.Violation{
				Type:     ViolationMissingSection,
				Severity: types.SeverityError,
				Details:  fmt.Sprintf("required section %q is missing", name),
				Section:  &section,
			})
			continue
		}
		if strings.TrimSpace(body) == "" {
			out = append(out, types.Violation{
				Type:     ViolationEmptySection,
				Severity: types.SeverityError,
				Details:  fmt.Sprintf("required section %q is empty", name),
				Section:  &section,
			})
		}
	}
	return out
}

// checkScores requires a score for every axis, each within bounds.
func checkScores(rpt *types.Report) []types.Violation {
	var out []types.Violation
	for _, name := range types.AxisNames() {
		axis := name
		score, ok := rpt.Scores[name]
		if !ok {
			out = append(out, types.Violation{
				Type:     ViolationMissingAxis,
				Severity: types.SeverityError,
				Details:  fmt.Sprintf("no score for axis %q", name),
				Axis:     &axis,
			})
			continue
		}
		if score < types.ScoreMin || score > types.ScoreMax {
			value := score
			out = append(out, types.Violation{
				Type:     ViolationScoreOutOfRange,
				Severity: types.SeverityError,
				Details:  fmt.Sprintf("score %.2f for axis %q is outside [%.0f, %.0f]", score, name, types.ScoreMin, types.ScoreMax),
				Axis:     &axis,
				Value:    &value,
			})
		}
	}
	return out
}

// checkTotals recomputes the weighted total from the per-axis scores and
// verifies both the reported total and the verdict band against it.
func checkTotals(rpt *types.Report) []types.Violation {
	var out []types.Violation

	expected := rpt.Weights.WeightedTotal(rpt.Scores)
	if math.Abs(expected-rpt.TotalScore) > TotalTolerance {
		value := rpt.TotalScore
		out = append(out, types.Violation{
			Type:     ViolationTotalMismatch,
			Severity: types.SeverityError,
			Details:  fmt.Sprintf("reported total %.2f differs from recomputed weighted total %.2f", rpt.TotalScore, expected),
			Value:    &value,
		})
	}

	// The verdict is checked against the recomputed total, not the
	// reported one, so a wrong total cannot mask a wrong verdict.
	if want := types.VerdictForScore(expected); rpt.Verdict != want {
		value := expected
		out = append(out, types.Violation{
			Type:     ViolationVerdictMismatch,
			Severity: types.SeverityError,
			Details:  fmt.Sprintf("verdict %q does not match band %q for total %.2f", rpt.Verdict, want, expected),
			Value:    &value,
		})
	}
	return out
}

// checkHighlights requires at least one attraction and one risk; a report
// with neither upside nor downside is not an evaluation.
func checkHighlights(rpt *types.Report) []types.Violation {
	var out []types.Violation
	if len(nonBlank(rpt.KeyAttractions)) == 0 {
		out = append(out, types.Violation{
			Type:     ViolationNoAttractions,
			Severity: types.SeverityError,
			Details:  "report lists no key attractions",
		})
	}
	if len(nonBlank(rpt.KeyRisks)) == 0 {
		out = append(out, types.Violation{
			Type:     ViolationNoRisks,
			Severity: types.SeverityError,
			Details:  "report lists no key risks",
		})
	}
	return out
}

// checkJudgments verifies claim traceability: every judgment must cite at
// least one fact ID, and every cited ID must exist in the context the
// report was generated from. Uncited claims are warnings; citations of
// nonexistent facts are errors because they indicate fabrication.
func checkJudgments(rpt *types.Report, factIDs map[string]bool) []types.Violation {
	var out []types.Violation
	for _, j := range rpt.Judgments {
		claim := j.Claim
		if len(j.Cites) == 0 {
			out = append(out, types.Violation{
				Type:     ViolationUnsupportedClaim,
				Severity: types.SeverityWarning,
				Details:  "judgment cites no supporting facts",
				Claim:    &claim,
			})
			continue
		}
		for _, id := range j.Cites {
			if !factIDs[id] {
				out = append(out, types.Violation{
					Type:     ViolationUnknownCitation,
					Severity: types.SeverityError,
					Details:  fmt.Sprintf("judgment cites fact %q which is not in the evaluation context", id),
					Claim:    &claim,
				})
			}
		}
	}
	return out
}

func nonBlank(items []string) []string {
	out := items[:0:0]
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
