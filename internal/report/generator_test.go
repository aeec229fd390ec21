package report

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/company-analyst/internal/llm"
	"github.com/jonathan/company-analyst/internal/promptctx"
	"github.com/jonathan/company-analyst/internal/types"
)

// fakeClient replays a scripted sequence of responses and errors.
type fakeClient struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeClient) Generate(_ context.Context, prompt string) (string, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", fmt.Errorf("unexpected call %d", i)
}

func (f *fakeClient) Model() string { return "fake-model-1" }
func (f *fakeClient) Close() error  { return nil }

func validResponse() string {
	return `{
		"verdict": "Go",
		"total_score": 3.75,
		"scores": {"growth": 4, "stability": 3.5, "compensation": 4, "worklife": 3, "rolefit": 4},
		"key_attractions": ["strong engineering culture", "growing market"],
		"key_risks": ["below-market base salary"],
		"verification_items": ["ask about on-call rotation"],
		"sections": {
			"executive_summary": "A solid choice overall.",
			"company_overview": "Mid-stage startup.",
			"position_analysis": "Backend role with clear scope.",
			"internal_signals": "Reviews trend positive.",
			"external_signals": "Recent funding round.",
			"scorecard": "Growth scores high on hiring volume.",
			"interview_guide": "Expect two technical rounds."
		},
		"judgments": [{"claim": "compensation trails peers", "cites": ["F2"]}]
	}`
}

func testInput() Input {
	return Input{
		CompanyID:   42,
		CompanyName: "Acme",
		Context: &promptctx.Context{
			Facts: []types.ContextFact{
				{ID: "F1", Tag: types.TagFact, Source: types.SourceReviews, Text: "rating 4.1"},
				{ID: "F2", Tag: types.TagInterpretation, Source: types.SourceSalaries, Text: "median below market"},
			},
			Text:        "[F1] (fact) rating 4.1\n[F2] (interpretation) median below market\n",
			Fingerprint: "abc123",
			Manifest:    types.SourceManifest{Reviews: 1, Salaries: 1},
		},
		Weights: types.DefaultWeights(),
	}
}

func newTestGenerator(client llm.Client) *Generator {
	g := NewGenerator(client, "fake")
	g.sleep = func(time.Duration) {}
	return g
}

func TestGenerate_Success(t *testing.T) {
	client := &fakeClient{responses: []string{validResponse()}}
	g := newTestGenerator(client)

	rpt, err := g.Generate(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, types.VerdictGo, rpt.Verdict)
	assert.InDelta(t, 3.75, rpt.TotalScore, 1e-9)
	assert.Equal(t, "fake", rpt.Provider)
	assert.Equal(t, "fake-model-1", rpt.Model)
	assert.Equal(t, types.ReportVersion, rpt.Version)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", rpt.UID.String())
	assert.Equal(t, int64(42), rpt.CompanyID)
	assert.Len(t, rpt.Sections, 7)
	assert.Equal(t, types.SectionExecutiveSummary, rpt.Sections[0].Name)
	assert.Equal(t, types.SectionInterviewGuide, rpt.Sections[6].Name)
	require.Len(t, rpt.Judgments, 1)
	assert.Equal(t, []string{"F2"}, rpt.Judgments[0].Cites)
	assert.Equal(t, 1, rpt.DataSources.Reviews)
}

func TestGenerate_PromptContents(t *testing.T) {
	client := &fakeClient{responses: []string{validResponse()}}
	g := newTestGenerator(client)

	in := testInput()
	in.Weights = types.PriorityWeights{Growth: 40, Stability: 15, Compensation: 15, WorkLife: 15, RoleFit: 15}
	in.Applicant = &types.ApplicantProfile{CoreSkills: []string{"Go", "Postgres"}}

	_, err := g.Generate(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, client.prompts, 1)
	prompt := client.prompts[0]
	assert.Contains(t, prompt, "Acme")
	assert.Contains(t, prompt, "- growth: 40")
	assert.Contains(t, prompt, "Go, Postgres")
	assert.Contains(t, prompt, "[F1] (fact) rating 4.1")
}

func TestPrompt_BuildsWithoutProviderCall(t *testing.T) {
	client := &fakeClient{}
	g := newTestGenerator(client)

	prompt, err := g.Prompt(testInput())
	require.NoError(t, err)
	assert.Contains(t, prompt, "Acme")
	assert.Contains(t, prompt, "[F1] (fact) rating 4.1")
	assert.Equal(t, 0, client.calls)
}

func TestPrompt_EmptyContextRejected(t *testing.T) {
	g := newTestGenerator(&fakeClient{})

	_, err := g.Prompt(Input{CompanyName: "Acme", Context: &promptctx.Context{}})
	assert.Error(t, err)
}

func TestGenerate_FencedResponse(t *testing.T) {
	client := &fakeClient{responses: []string{"```json\n" + validResponse() + "\n```"}}
	g := newTestGenerator(client)

	rpt, err := g.Generate(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, types.VerdictGo, rpt.Verdict)
}

func TestGenerate_RetriesTransientError(t *testing.T) {
	transient := &llm.ProviderError{Provider: "fake", StatusCode: http.StatusTooManyRequests, Message: "rate limited"}
	client := &fakeClient{
		errs:      []error{transient, nil},
		responses: []string{"", validResponse()},
	}
	g := newTestGenerator(client)

	rpt, err := g.Generate(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
	assert.Equal(t, types.VerdictGo, rpt.Verdict)
}

func TestGenerate_FatalErrorDoesNotRetry(t *testing.T) {
	fatal := &llm.ProviderError{Provider: "fake", StatusCode: http.StatusUnauthorized, Message: "bad key"}
	client := &fakeClient{errs: []error{fatal}}
	g := newTestGenerator(client)

	_, err := g.Generate(context.Background(), testInput())
	require.Error(t, err)
	assert.Equal(t, 1, client.calls)
	assert.ErrorAs(t, err, new(*llm.ProviderError))
}

func TestGenerate_TransientErrorExhaustsAttempts(t *testing.T) {
	transient := &llm.ProviderError{Provider: "fake", StatusCode: http.StatusServiceUnavailable, Message: "down"}
	client := &fakeClient{errs: []error{transient, transient, transient}}
	g := newTestGenerator(client)

	_, err := g.Generate(context.Background(), testInput())
	require.Error(t, err)
	assert.Equal(t, maxProviderAttempts, client.calls)
}

func TestGenerate_ParseRetryThenSuccess(t *testing.T) {
	client := &fakeClient{responses: []string{"not json at all", validResponse()}}
	g := newTestGenerator(client)

	rpt, err := g.Generate(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
	assert.Equal(t, types.VerdictGo, rpt.Verdict)
}

func TestGenerate_ParseRetriesExhausted(t *testing.T) {
	client := &fakeClient{responses: []string{"bad", "worse", `{"verdict": "Maybe"}`}}
	g := newTestGenerator(client)

	_, err := g.Generate(context.Background(), testInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Equal(t, 1+maxParseRetries, client.calls)
}

func TestGenerate_EmptyContextRejected(t *testing.T) {
	g := newTestGenerator(&fakeClient{})

	_, err := g.Generate(context.Background(), Input{CompanyName: "Acme", Context: &promptctx.Context{}})
	assert.Error(t, err)
}

func TestBackoffFor(t *testing.T) {
	assert.Equal(t, 2*time.Second, backoffFor(1))
	assert.Equal(t, 4*time.Second, backoffFor(2))
	assert.Equal(t, 8*time.Second, backoffFor(3))
	assert.Equal(t, 30*time.Second, backoffFor(10))
}
