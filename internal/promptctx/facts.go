package promptctx

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/company-analyst/internal/types"
)

// collectFacts derives the tagged fact groups from a bundle, in render
// order (highest retention priority first). Raw records become facts;
// aggregates computed here become interpretations.
func collectFacts(bundle *types.EvidenceBundle) []*sourceFacts {
	return []*sourceFacts{
		profileFacts(bundle),
		postingFacts(bundle),
		reviewFacts(bundle),
		salaryFacts(bundle),
		interviewFacts(bundle),
		benefitFacts(bundle),
		newsFacts(bundle),
	}
}

func fact(source, text string) types.ContextFact {
	return types.ContextFact{Tag: types.TagFact, Source: source, Text: text}
}

func interpretation(source, text string) types.ContextFact {
	return types.ContextFact{Tag: types.TagInterpretation, Source: source, Text: text}
}

func profileFacts(bundle *types.EvidenceBundle) *sourceFacts {
	g := &sourceFacts{source: types.SourceProfile}
	c := bundle.Company
	if c.IsEmpty() {
		return g
	}

	var parts []string
	if c.Industry != "" {
		parts = append(parts, "industry: "+c.Industry)
	}
	if c.EmployeeSize != "" {
		parts = append(parts, "size: "+c.EmployeeSize)
	}
	if c.Founded != 0 {
		parts = append(parts, fmt.Sprintf("founded: %d", c.Founded))
	}
	if c.Location != "" {
		parts = append(parts, "location: "+c.Location)
	}
	if c.Rating != 0 {
		parts = append(parts, fmt.Sprintf("overall rating: %.1f/5.0", c.Rating))
	}
	g.facts = append(g.facts, fact(types.SourceProfile,
		fmt.Sprintf("Company %s — %s", c.Name, strings.Join(parts, ", "))))

	if c.Description != "" {
		g.facts = append(g.facts, fact(types.SourceProfile, clip(c.Description, 500)))
	}
	return g
}

func postingFacts(bundle *types.EvidenceBundle) *sourceFacts {
	g := &sourceFacts{source: types.SourcePostings}
	if len(bundle.Postings) == 0 {
		return g
	}

	active := 0
	for _, p := range bundle.Postings {
		if p.Active {
			active++
		}
	}
	g.facts = append(g.facts, interpretation(types.SourcePostings,
		fmt.Sprintf("%d job postings collected, %d currently active", len(bundle.Postings), active)))

	for _, p := range bundle.Postings {
		text := fmt.Sprintf("Posting %q (%s)", p.Title, p.JobCategory)
		if len(p.RequiredSkills) > 0 {
			text += " requires " + strings.Join(p.RequiredSkills, ", ")
		}
		if p.ExperienceLevel != "" {
			text += "; experience: " + p.ExperienceLevel
		}
		if p.SalaryText != "" {
			text += "; salary: " + p.SalaryText
		}
		if p.Description != "" {
			text += ". " + clip(p.Description, 400)
		}
		g.facts = append(g.facts, fact(types.SourcePostings, text))
	}
	return g
}

func reviewFacts(bundle *types.EvidenceBundle) *sourceFacts {
	g := &sourceFacts{source: types.SourceReviews}
	if len(bundle.Reviews) == 0 {
		return g
	}

	g.facts = append(g.facts, interpretation(types.SourceReviews,
		fmt.Sprintf("%d employee reviews, average rating %.1f/5.0",
			len(bundle.Reviews), bundle.AvgReviewRating())))

	if stats := categoryScoreAverages(bundle.Reviews); len(stats) > 0 {
		g.facts = append(g.facts, interpretation(types.SourceReviews,
			"review category averages: "+stats))
	}

	for _, r := range bundle.Reviews {
		text := fmt.Sprintf("Review (%.1f/5.0", r.Rating)
		if r.JobCategory != "" {
			text += ", " + r.JobCategory
		}
		text += ")"
		if r.Pros != "" {
			text += " pros: " + clip(r.Pros, 200)
		}
		if r.Cons != "" {
			text += " cons: " + clip(r.Cons, 200)
		}
		g.facts = append(g.facts, fact(types.SourceReviews, text))
	}
	return g
}

func salaryFacts(bundle *types.EvidenceBundle) *sourceFacts {
	g := &sourceFacts{source: types.SourceSalaries}
	if len(bundle.Salaries) == 0 {
		return g
	}

	minAmt, maxAmt := bundle.SalaryRange()
	g.facts = append(g.facts, interpretation(types.SourceSalaries,
		fmt.Sprintf("%d salary reports ranging %d to %d manwon/year",
			len(bundle.Salaries), minAmt, maxAmt)))

	for _, s := range bundle.Salaries {
		text := fmt.Sprintf("Salary report: %d manwon/year", s.AmountManwon)
		if s.Position != "" {
			text += " for " + s.Position
		}
		if s.Experience != "" {
			text += " (" + s.Experience + ")"
		}
		if s.IndustryAvg > 0 {
			diff := float64(s.AmountManwon-s.IndustryAvg) / float64(s.IndustryAvg) * 100
			text += fmt.Sprintf(", %+.1f%% vs industry average", diff)
		}
		g.facts = append(g.facts, fact(types.SourceSalaries, text))
	}
	return g
}

func interviewFacts(bundle *types.EvidenceBundle) *sourceFacts {
	g := &sourceFacts{source: types.SourceInterviews}
	if len(bundle.Interviews) == 0 {
		return g
	}

	passed, decided := 0, 0
	for _, iv := range bundle.Interviews {
		switch iv.Result {
		case "pass", "accepted":
			passed++
			decided++
		case "fail", "rejected":
			decided++
		}
	}
	summary := fmt.Sprintf("%d interview reports", len(bundle.Interviews))
	if decided > 0 {
		summary += fmt.Sprintf(", %.0f%% pass rate among decided outcomes",
			float64(passed)/float64(decided)*100)
	}
	g.facts = append(g.facts, interpretation(types.SourceInterviews, summary))

	for _, iv := range bundle.Interviews {
		text := "Interview"
		if iv.Difficulty != "" {
			text += " (difficulty: " + iv.Difficulty + ")"
		}
		if len(iv.Questions) > 0 {
			text += " questions: " + clip(strings.Join(iv.Questions, " | "), 300)
		}
		if iv.Experience != "" {
			text += ". " + clip(iv.Experience, 200)
		}
		g.facts = append(g.facts, fact(types.SourceInterviews, text))
	}
	return g
}

func benefitFacts(bundle *types.EvidenceBundle) *sourceFacts {
	g := &sourceFacts{source: types.SourceBenefits}
	if len(bundle.Benefits) == 0 {
		return g
	}

	g.facts = append(g.facts, interpretation(types.SourceBenefits,
		fmt.Sprintf("%d benefit items on record", len(bundle.Benefits))))

	for _, b := range bundle.Benefits {
		text := "Benefit [" + b.Category + "]"
		if b.Item != "" {
			text += " " + b.Item
		}
		if b.Score > 0 {
			text += fmt.Sprintf(" rated %.1f/5.0", b.Score)
		}
		g.facts = append(g.facts, fact(types.SourceBenefits, text))
	}
	return g
}

func newsFacts(bundle *types.EvidenceBundle) *sourceFacts {
	g := &sourceFacts{source: types.SourceNews}
	if len(bundle.News) == 0 {
		return g
	}

	recent := 0
	cutoff := time.Now().AddDate(0, -6, 0)
	for _, n := range bundle.News {
		if n.PublishedAt.After(cutoff) {
			recent++
		}
	}
	g.facts = append(g.facts, interpretation(types.SourceNews,
		fmt.Sprintf("%d news articles, %d within the last 6 months", len(bundle.News), recent)))

	for _, n := range bundle.News {
		text := fmt.Sprintf("News %q", n.Title)
		if n.ArticleType != "" {
			text += " [" + n.ArticleType + "]"
		}
		if n.Reliability != "" {
			text += " (reliability " + n.Reliability + ")"
		}
		if !n.PublishedAt.IsZero() {
			text += " " + n.PublishedAt.Format("2006-01-02")
		}
		if n.Summary != "" {
			text += ": " + clip(n.Summary, 300)
		}
		g.facts = append(g.facts, fact(types.SourceNews, text))
	}
	return g
}

// categoryScoreAverages flattens per-review category scores into a
// deterministic "category avg, ..." summary string.
func categoryScoreAverages(reviews []types.Review) string {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range reviews {
		for category, score := range r.CategoryScores {
			sums[category] += score
			counts[category]++
		}
	}
	if len(sums) == 0 {
		return ""
	}

	categories := make([]string, 0, len(sums))
	for category := range sums {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	parts := make([]string, len(categories))
	for i, category := range categories {
		parts[i] = fmt.Sprintf("%s %.1f", category, sums[category]/float64(counts[category]))
	}
	return strings.Join(parts, ", ")
}

// clip truncates text to at most n runes, appending an ellipsis marker.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
