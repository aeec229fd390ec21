// Package report turns an evaluation context into a structured company
// report by prompting an LLM provider and validating its response.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/company-analyst/internal/llm"
	"github.com/jonathan/company-analyst/internal/promptctx"
	"github.com/jonathan/company-analyst/internal/prompts"
	"github.com/jonathan/company-analyst/internal/types"
)

// Generation phases, in order. A run only ever moves forward; failures
// record the phase they occurred in so operators can tell a provider
// outage from a malformed response.
type phase string

const (
	phaseIdle           phase = "idle"
	phasePromptBuilt    phase = "prompt_built"
	phaseProviderCalled phase = "provider_called"
)

// Retry policy. Provider retries cover transient failures (timeouts, rate
// limits, 5xx); parse retries cover structurally invalid responses.
const (
	maxProviderAttempts = 3
	maxParseRetries     = 2
	backoffBase         = 2 * time.Second
	backoffCap          = 30 * time.Second
)

// Input carries everything one generation run needs.
type Input struct {
	CompanyID    int64
	CompanyName  string
	JobPostingID *int64
	Context      *promptctx.Context
	Weights      types.PriorityWeights
	Applicant    *types.ApplicantProfile
}

// Generator produces reports through a single LLM client. It is stateless
// between runs and safe for concurrent use.
type Generator struct {
	client   llm.Client
	provider string

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// NewGenerator creates a generator over a provider client.
func NewGenerator(client llm.Client, provider string) *Generator {
	return &Generator{
		client:   client,
		provider: provider,
		sleep:    time.Sleep,
	}
}

// Prompt builds the provider prompt for an input without calling the
// provider. It backs dry runs where the caller wants to inspect what
// would be sent.
func (g *Generator) Prompt(in Input) (string, error) {
	if in.Context == nil || len(in.Context.Facts) == 0 {
		return "", fmt.Errorf("prompt building requires a non-empty evaluation context")
	}
	return buildPrompt(in)
}

// Generate runs one full generation: build the prompt, call the provider
// with retries, parse and validate the response, and assemble the report.
// The returned report has not yet been through the quality gate.
func (g *Generator) Generate(ctx context.Context, in Input) (*types.Report, error) {
	if in.Context == nil || len(in.Context.Facts) == 0 {
		return nil, fmt.Errorf("generation requires a non-empty evaluation context")
	}

	current := phaseIdle
	prompt, err := buildPrompt(in)
	if err != nil {
		return nil, fmt.Errorf("generation failed at %s: %w", current, err)
	}
	current = phasePromptBuilt

	var payload *responsePayload
	parseRetries := 0
	for attempt := 1; ; attempt++ {
		raw, err := g.client.Generate(ctx, prompt)
		if err != nil {
			if llm.IsTransient(err) && attempt < maxProviderAttempts {
				g.sleep(backoffFor(attempt))
				continue
			}
			return nil, fmt.Errorf("generation failed at %s after %d attempt(s): %w", current, attempt, err)
		}
		current = phaseProviderCalled

		payload, err = parseResponse(raw)
		if err != nil {
			if parseRetries < maxParseRetries {
				parseRetries++
				continue
			}
			return nil, fmt.Errorf("generation failed at %s: %w", current, err)
		}
		break
	}

	return g.assemble(in, payload), nil
}

// assemble converts a validated payload into the persisted report form.
func (g *Generator) assemble(in Input, payload *responsePayload) *types.Report {
	verdict, _ := types.ParseVerdict(payload.Verdict)
	return &types.Report{
		UID:               uuid.New(),
		CompanyID:         in.CompanyID,
		CompanyName:       in.CompanyName,
		JobPostingID:      in.JobPostingID,
		Provider:          g.provider,
		Model:             g.client.Model(),
		Version:           types.ReportVersion,
		Verdict:           verdict,
		TotalScore:        payload.TotalScore,
		Scores:            payload.Scores,
		KeyAttractions:    payload.KeyAttractions,
		KeyRisks:          payload.KeyRisks,
		VerificationItems: payload.VerificationItems,
		Sections:          orderedSections(payload.Sections),
		Judgments:         payload.Judgments,
		DataSources:       in.Context.Manifest,
		Weights:           in.Weights,
		GeneratedAt:       time.Now().UTC(),
	}
}

// buildPrompt renders the report prompt template for one run.
func buildPrompt(in Input) (string, error) {
	template, err := prompts.Get("company-report")
	if err != nil {
		return "", err
	}

	applicantSection, err := applicantSectionFor(in.Applicant)
	if err != nil {
		return "", err
	}

	return prompts.Format(template, map[string]string{
		"CompanyName":      in.CompanyName,
		"WeightsTable":     weightsTable(in.Weights),
		"ApplicantSection": applicantSection,
		"Context":          in.Context.Text,
	}), nil
}

func applicantSectionFor(profile *types.ApplicantProfile) (string, error) {
	if profile.IsEmpty() {
		return prompts.Get("no-applicant-section")
	}

	template, err := prompts.Get("applicant-section")
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if profile.CurrentExperience != "" {
		fmt.Fprintf(&sb, "- experience: %s\n", profile.CurrentExperience)
	}
	if len(profile.CoreSkills) > 0 {
		fmt.Fprintf(&sb, "- core skills: %s\n", strings.Join(profile.CoreSkills, ", "))
	}
	if profile.Motivation != "" {
		fmt.Fprintf(&sb, "- motivation: %s\n", profile.Motivation)
	}
	if profile.CareerDirection != "" {
		fmt.Fprintf(&sb, "- career direction: %s\n", profile.CareerDirection)
	}
	return prompts.Format(template, map[string]string{"Profile": strings.TrimRight(sb.String(), "\n")}), nil
}

// weightsTable renders one line per axis in canonical order.
func weightsTable(w types.PriorityWeights) string {
	m := w.ToMap()
	lines := make([]string, 0, len(m))
	for _, axis := range types.AxisNames() {
		lines = append(lines, fmt.Sprintf("- %s: %d", axis, m[axis]))
	}
	return strings.Join(lines, "\n")
}

// backoffFor doubles per attempt from the base, capped.
func backoffFor(attempt int) time.Duration {
	d := backoffBase << (attempt - 1)
	if d > backoffCap {
		return backoffCap
	}
	return d
}
