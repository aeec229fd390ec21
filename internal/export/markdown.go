package export

import (
	"fmt"
	"strings"

	"github.com/jonathan/company-analyst/internal/types"
)

// RenderMarkdown renders a report as a markdown document.
func RenderMarkdown(rpt *types.Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s — Evaluation Report\n\n", rpt.CompanyName)
	fmt.Fprintf(&sb, "**Verdict:** %s  \n", rpt.Verdict)
	fmt.Fprintf(&sb, "**Total score:** %.2f / %.0f  \n", rpt.TotalScore, types.ScoreMax)
	fmt.Fprintf(&sb, "**Generated:** %s by %s/%s\n\n", rpt.GeneratedAt.Format("2006-01-02 15:04 MST"), rpt.Provider, rpt.Model)

	if !rpt.Quality.Passed {
		sb.WriteString("> **Warning:** this report failed quality checks and should not be relied on.\n\n")
	}

	sb.WriteString("## Scores\n\n")
	sb.WriteString("| Axis | Score | Weight |\n|---|---|---|\n")
	weightMap := rpt.Weights.ToMap()
	for _, axis := range types.AxisNames() {
		fmt.Fprintf(&sb, "| %s | %.1f | %d |\n", axis, rpt.Scores[axis], weightMap[axis])
	}
	sb.WriteString("\n")

	writeList(&sb, "Key Attractions", rpt.KeyAttractions)
	writeList(&sb, "Key Risks", rpt.KeyRisks)
	writeList(&sb, "Verify During Interviews", rpt.VerificationItems)

	for _, section := range rpt.Sections {
		fmt.Fprintf(&sb, "## %s\n\n%s\n\n", sectionTitle(section.Name), section.Body)
	}

	if len(rpt.Judgments) > 0 {
		sb.WriteString("## Supporting Evidence\n\n")
		for _, j := range rpt.Judgments {
			fmt.Fprintf(&sb, "- %s _(cites %s)_\n", j.Claim, strings.Join(j.Cites, ", "))
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "---\n\n_Based on %d evidence records", rpt.DataSources.Total())
	if rpt.JobPostingID != nil {
		fmt.Fprintf(&sb, " for job posting #%d", *rpt.JobPostingID)
	}
	sb.WriteString("._\n")
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
	sb.WriteString("\n")
}

// sectionTitle turns a snake_case section name into a display heading.
func sectionTitle(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
