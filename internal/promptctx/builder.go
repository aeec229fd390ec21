// Package promptctx transforms an evidence bundle into the bounded,
// fact-tagged context handed to the report generator.
package promptctx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/company-analyst/internal/evidence"
	"github.com/jonathan/company-analyst/internal/types"
)

// ErrContextTooLarge is returned when the evidence cannot fit the context
// budget even after truncating every source to its floor.
var ErrContextTooLarge = errors.New("evidence context exceeds budget after truncation")

// DefaultBudgetChars bounds the rendered context size. Roughly 8k tokens
// of evidence, leaving provider headroom for the prompt frame and output.
const DefaultBudgetChars = 32000

// Options controls context construction.
type Options struct {
	Weights     types.PriorityWeights
	Applicant   *types.ApplicantProfile
	BudgetChars int
}

// Context is the bounded evaluation context: ordered tagged facts, the
// rendered evidence text, and a stable fingerprint over the inputs.
type Context struct {
	Facts       []types.ContextFact
	Text        string
	Fingerprint string
	Manifest    types.SourceManifest
	Truncated   bool
}

// FactIDs returns the set of fact IDs present in the context.
func (c *Context) FactIDs() map[string]bool {
	ids := make(map[string]bool, len(c.Facts))
	for _, f := range c.Facts {
		ids[f.ID] = true
	}
	return ids
}

// sourceFacts groups the facts derived from one evidence source, ordered
// most-important first so truncation drops from the tail.
type sourceFacts struct {
	source string
	facts  []types.ContextFact
}

// Build assembles the evaluation context from a bundle. When the evidence
// exceeds the budget, whole items are dropped from the lowest-priority
// sources first, always preserving at least one item per present source.
func Build(bundle *types.EvidenceBundle, opts Options) (*Context, error) {
	budget := opts.BudgetChars
	if budget <= 0 {
		budget = DefaultBudgetChars
	}

	groups := collectFacts(bundle)
	total := 0
	for _, g := range groups {
		for _, f := range g.facts {
			total += len(f.Text)
		}
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: no usable facts in bundle", evidence.ErrInsufficientEvidence)
	}

	truncated, err := truncate(groups, total, budget)
	if err != nil {
		return nil, err
	}

	// Assign stable fact IDs in render order, after truncation.
	var facts []types.ContextFact
	for _, g := range groups {
		for _, f := range g.facts {
			f.ID = fmt.Sprintf("F%d", len(facts)+1)
			facts = append(facts, f)
		}
	}

	ctx := &Context{
		Facts:     facts,
		Manifest:  bundle.Manifest(),
		Truncated: truncated,
	}
	ctx.Text = render(groups, facts)
	ctx.Fingerprint = fingerprint(facts, opts.Weights, opts.Applicant)
	return ctx, nil
}

// truncate drops facts from the tail of the highest drop-priority source
// that still has more than one item, until the budget is met. Reports
// whether anything was dropped.
func truncate(groups []*sourceFacts, total, budget int) (bool, error) {
	truncated := false
	for total > budget {
		dropped := false
		for _, source := range dropOrder() {
			g := findGroup(groups, source)
			if g == nil || len(g.facts) <= 1 {
				continue
			}
			last := g.facts[len(g.facts)-1]
			g.facts = g.facts[:len(g.facts)-1]
			total -= len(last.Text)
			dropped = true
			truncated = true
			break
		}
		if !dropped {
			return truncated, fmt.Errorf("%w: %d chars over a %d char budget",
				ErrContextTooLarge, total-budget, budget)
		}
	}
	return truncated, nil
}

// dropOrder lists sources from first-dropped to last-dropped.
func dropOrder() []string {
	return []string{
		types.SourceNews,
		types.SourceBenefits,
		types.SourceInterviews,
		types.SourceSalaries,
		types.SourceReviews,
		types.SourcePostings,
		types.SourceProfile,
	}
}

func findGroup(groups []*sourceFacts, source string) *sourceFacts {
	for _, g := range groups {
		if g.source == source {
			return g
		}
	}
	return nil
}

func render(groups []*sourceFacts, facts []types.ContextFact) string {
	var sb strings.Builder
	i := 0
	for _, g := range groups {
		if len(g.facts) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n", strings.ToUpper(g.source))
		for range g.facts {
			f := facts[i]
			fmt.Fprintf(&sb, "[%s] (%s) %s\n", f.ID, f.Tag, f.Text)
			i++
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
