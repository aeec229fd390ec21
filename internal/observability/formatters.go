// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/company-analyst/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintEvidenceSummary outputs the per-source evidence counts collected
// for a company.
func (p *Printer) PrintEvidenceSummary(company string, manifest types.SourceManifest) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Company:    %s\n", company))
	sb.WriteString(fmt.Sprintf("Records:    %d\n\n", manifest.Total()))
	sb.WriteString(fmt.Sprintf("  postings:   %d\n", manifest.Postings))
	sb.WriteString(fmt.Sprintf("  reviews:    %d\n", manifest.Reviews))
	sb.WriteString(fmt.Sprintf("  interviews: %d\n", manifest.Interviews))
	sb.WriteString(fmt.Sprintf("  salaries:   %d\n", manifest.Salaries))
	sb.WriteString(fmt.Sprintf("  benefits:   %d\n", manifest.Benefits))
	sb.WriteString(fmt.Sprintf("  news:       %d", manifest.News))
	if manifest.Profile {
		sb.WriteString("\n  profile:    yes")
	}

	p.printBox("COLLECTED EVIDENCE", sb.String())
}

// PrintContextSummary outputs how the evaluation context came out of the
// budgeting pass.
func (p *Printer) PrintContextSummary(factCount, chars int, truncated bool, fingerprint string) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Facts:       %d\n", factCount))
	sb.WriteString(fmt.Sprintf("Size:        %d chars\n", chars))
	if truncated {
		sb.WriteString("Truncated:   yes, low-priority items dropped\n")
	} else {
		sb.WriteString("Truncated:   no\n")
	}
	if len(fingerprint) > 12 {
		fingerprint = fingerprint[:12]
	}
	sb.WriteString(fmt.Sprintf("Fingerprint: %s", fingerprint))

	p.printBox("EVALUATION CONTEXT", sb.String())
}

// PrintScorecard outputs the verdict and per-axis scores of a report.
func (p *Printer) PrintScorecard(rpt *types.Report) {
	if rpt == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Verdict:     %s\n", rpt.Verdict))
	sb.WriteString(fmt.Sprintf("Total score: %.2f / %.0f\n\n", rpt.TotalScore, types.ScoreMax))

	weightMap := rpt.Weights.ToMap()
	for _, axis := range types.AxisNames() {
		sb.WriteString(fmt.Sprintf("  %-13s %.1f  (weight %d)\n", axis, rpt.Scores[axis], weightMap[axis]))
	}

	if len(rpt.Judgments) > 0 {
		sb.WriteString(fmt.Sprintf("\nJudgments:   %d traced claims", len(rpt.Judgments)))
	}

	p.printBox("REPORT SCORECARD", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHighlights outputs the attraction and risk lists of a report.
func (p *Printer) PrintHighlights(rpt *types.Report) {
	if rpt == nil || (len(rpt.KeyAttractions) == 0 && len(rpt.KeyRisks) == 0) {
		return
	}

	var sb strings.Builder
	writeCapped := func(header string, items []string) {
		if len(items) == 0 {
			return
		}
		sb.WriteString(header + "\n")
		count := min(len(items), maxItemsToShow)
		for i := 0; i < count; i++ {
			text := items[i]
			if len(text) > 50 {
				text = text[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", text))
		}
		if len(items) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
		}
	}

	writeCapped("Attractions:", rpt.KeyAttractions)
	if len(rpt.KeyAttractions) > 0 && len(rpt.KeyRisks) > 0 {
		sb.WriteString("\n")
	}
	writeCapped("Risks:", rpt.KeyRisks)

	p.printBox("HIGHLIGHTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintViolations outputs any quality-gate violations found.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintViolations(violations *types.Violations) {
	if violations == nil || len(violations.Violations) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO VIOLATIONS FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d violations:\n\n", len(violations.Violations)))

	for i, v := range violations.Violations {
		details := v.Details
		if len(details) > 45 {
			details = details[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ %s (%s)\n", v.Type, v.Severity))
		sb.WriteString(fmt.Sprintf("  %s\n", details))
		if i < len(violations.Violations)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("QUALITY VIOLATIONS", sb.String())
}
