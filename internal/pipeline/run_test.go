package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/company-analyst/internal/evidence"
	"github.com/jonathan/company-analyst/internal/quality"
	"github.com/jonathan/company-analyst/internal/report"
	"github.com/jonathan/company-analyst/internal/types"
)

// memStore is an in-memory Store covering evidence reads and report writes.
type memStore struct {
	mu        sync.Mutex
	company   *types.CompanyInfo
	postings  []types.JobPosting
	reviews   []types.Review
	salaries  []types.Salary
	news      []types.NewsItem
	reports   []*types.Report
	nextID    int64
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{
		company: &types.CompanyInfo{
			ID:       7,
			Name:     "Acme",
			Industry: "robotics",
			Rating:   4.1,
		},
		reviews: []types.Review{
			{ID: 1, Rating: 4.5, Pros: "great peers", Cons: "slow promos"},
			{ID: 2, Rating: 3.8, Pros: "stable", Cons: "legacy stack"},
		},
		salaries: []types.Salary{{ID: 1, Position: "backend", AmountManwon: 6500}},
		news:     []types.NewsItem{{ID: 1, Title: "Acme raises series B", PublishedAt: time.Now()}},
		nextID:   1,
	}
}

func (s *memStore) GetCompanyByName(_ context.Context, name string) (*types.CompanyInfo, error) {
	if s.company != nil && s.company.Name == name {
		return s.company, nil
	}
	return nil, nil
}

func (s *memStore) GetCompanyByID(_ context.Context, id int64) (*types.CompanyInfo, error) {
	if s.company != nil && s.company.ID == id {
		return s.company, nil
	}
	return nil, nil
}

func (s *memStore) ListJobPostings(_ context.Context, _ int64, _ *int64) ([]types.JobPosting, error) {
	return s.postings, nil
}
func (s *memStore) ListReviews(_ context.Context, _ int64, _ int) ([]types.Review, error) {
	return s.reviews, nil
}
func (s *memStore) ListInterviews(_ context.Context, _ int64, _ int) ([]types.Interview, error) {
	return nil, nil
}
func (s *memStore) ListSalaries(_ context.Context, _ int64) ([]types.Salary, error) {
	return s.salaries, nil
}
func (s *memStore) ListBenefits(_ context.Context, _ int64) ([]types.Benefit, error) {
	return nil, nil
}
func (s *memStore) ListNews(_ context.Context, _ int64, _ int) ([]types.NewsItem, error) {
	return s.news, nil
}

func (s *memStore) GetReportByCacheKey(_ context.Context, key string) (*types.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.reports) - 1; i >= 0; i-- {
		if s.reports[i].CacheKey == key {
			return s.reports[i], nil
		}
	}
	return nil, nil
}

func (s *memStore) InsertReport(_ context.Context, rpt *types.Report) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	// Last write wins: the new row takes over the cache slot.
	if rpt.CacheKey != "" {
		for _, prev := range s.reports {
			if prev.CacheKey == rpt.CacheKey {
				prev.CacheKey = ""
			}
		}
	}
	id := s.nextID
	s.nextID++
	cp := *rpt
	cp.ID = id
	s.reports = append(s.reports, &cp)
	return id, nil
}

func (s *memStore) LatestReport(_ context.Context, companyID int64, passedOnly bool) (*types.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.reports) - 1; i >= 0; i-- {
		rpt := s.reports[i]
		if rpt.CompanyID != companyID {
			continue
		}
		if passedOnly && !rpt.Quality.Passed {
			continue
		}
		return rpt, nil
	}
	return nil, nil
}

// fakeGenerator returns a well-formed report, or a scripted error.
type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
	// breakReport makes the generated report fail the quality gate.
	breakReport bool
}

func (g *fakeGenerator) Generate(_ context.Context, in report.Input) (*types.Report, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}

	scores := map[string]float64{
		types.AxisGrowth:       4.0,
		types.AxisStability:    3.5,
		types.AxisCompensation: 4.0,
		types.AxisWorkLife:     3.0,
		types.AxisRoleFit:      4.0,
	}
	total := in.Weights.WeightedTotal(scores)

	sections := make([]types.ReportSection, 0, 7)
	for _, name := range types.RequiredSections() {
		sections = append(sections, types.ReportSection{Name: name, Body: "body"})
	}

	rpt := &types.Report{
		UID:            uuid.New(),
		CompanyID:      in.CompanyID,
		CompanyName:    in.CompanyName,
		JobPostingID:   in.JobPostingID,
		Provider:       "fake",
		Model:          "fake-model",
		Version:        types.ReportVersion,
		Verdict:        types.VerdictForScore(total),
		TotalScore:     total,
		Scores:         scores,
		KeyAttractions: []string{"solid team"},
		KeyRisks:       []string{"legacy stack"},
		Sections:       sections,
		Judgments:      []types.Judgment{{Claim: "pay is fair", Cites: []string{"F1"}}},
		DataSources:    in.Context.Manifest,
		Weights:        in.Weights,
		GeneratedAt:    time.Now().UTC(),
	}
	if g.breakReport {
		rpt.TotalScore = 5.0 // far from the recomputed weighted total
	}
	return rpt, nil
}

func (g *fakeGenerator) Prompt(in report.Input) (string, error) {
	if in.Context == nil || len(in.Context.Facts) == 0 {
		return "", fmt.Errorf("prompt building requires a non-empty evaluation context")
	}
	return "Evaluate " + in.CompanyName + "\n" + in.Context.Text, nil
}

func defaultRequest() types.ReportRequest {
	return types.ReportRequest{
		CompanyName: "Acme",
		Weights:     types.DefaultWeights(),
		CacheDays:   types.DefaultCacheDays,
	}
}

func newTestRunner(store Store, gen generator) *Runner {
	r := NewRunner(store, gen)
	r.out = &bytes.Buffer{}
	return r
}

func TestRun_EndToEnd(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{}
	r := newTestRunner(store, gen)

	result, err := r.Run(context.Background(), RunOptions{Request: defaultRequest()})
	require.NoError(t, err)

	assert.False(t, result.FromCache)
	assert.False(t, result.Degraded)
	require.NotNil(t, result.Report)
	assert.True(t, result.Report.Quality.Passed)
	assert.Equal(t, types.VerdictGo, result.Report.Verdict)
	assert.Equal(t, result.CacheKey, result.Report.CacheKey)
	assert.Equal(t, 1, gen.calls)
	require.Len(t, store.reports, 1)
}

func TestRun_AcmeScenarioManifestAndScores(t *testing.T) {
	store := newMemStore()
	store.postings = []types.JobPosting{
		{ID: 1, Title: "Backend Engineer", Active: true},
		{ID: 2, Title: "Data Engineer", Active: true},
		{ID: 3, Title: "SRE", Active: true},
	}
	store.salaries = nil
	store.news = nil
	gen := &fakeGenerator{}
	r := newTestRunner(store, gen)

	req := defaultRequest()
	req.Weights = types.PriorityWeights{Growth: 30, Stability: 20, Compensation: 25, WorkLife: 10, RoleFit: 15}
	result, err := r.Run(context.Background(), RunOptions{Request: req})
	require.NoError(t, err)

	rpt := result.Report
	require.NotNil(t, rpt)

	sources := rpt.DataSources
	assert.True(t, sources.Profile)
	assert.Equal(t, 3, sources.Postings)
	assert.Equal(t, 2, sources.Reviews)
	assert.Equal(t, 0, sources.Interviews)
	assert.Equal(t, 0, sources.Salaries)
	assert.Equal(t, 0, sources.Benefits)
	assert.Equal(t, 0, sources.News)

	for _, axis := range types.AxisNames() {
		score, ok := rpt.Scores[axis]
		require.True(t, ok, "missing axis %s", axis)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, types.ScoreMax)
	}
	assert.Equal(t, req.Weights, rpt.Weights)
	assert.InDelta(t, req.Weights.WeightedTotal(rpt.Scores), rpt.TotalScore, quality.TotalTolerance)
	assert.Equal(t, types.VerdictForScore(rpt.TotalScore), rpt.Verdict)
	assert.True(t, rpt.Quality.Passed)
}

func TestRun_PromptOnlySkipsProviderAndStore(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{}
	r := newTestRunner(store, gen)

	result, err := r.Run(context.Background(), RunOptions{Request: defaultRequest(), PromptOnly: true})
	require.NoError(t, err)

	assert.Nil(t, result.Report)
	assert.Contains(t, result.Prompt, "Evaluate Acme")
	assert.NotEmpty(t, result.CacheKey)
	assert.Equal(t, 0, gen.calls)
	assert.Empty(t, store.reports)
}

func TestRun_SkipStoreGeneratesWithoutPersisting(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{}
	r := newTestRunner(store, gen)

	result, err := r.Run(context.Background(), RunOptions{Request: defaultRequest(), SkipStore: true})
	require.NoError(t, err)

	require.NotNil(t, result.Report)
	assert.True(t, result.Report.Quality.Passed)
	assert.Empty(t, result.Report.CacheKey)
	assert.Empty(t, store.reports)
	assert.Equal(t, 1, gen.calls)

	// Nothing was persisted, so the same request generates again.
	second, err := r.Run(context.Background(), RunOptions{Request: defaultRequest()})
	require.NoError(t, err)
	assert.False(t, second.FromCache)
	assert.Equal(t, 2, gen.calls)
}

func TestRun_VerboseOutputIncludesHighlights(t *testing.T) {
	store := newMemStore()
	r := NewRunner(store, &fakeGenerator{})
	out := &bytes.Buffer{}
	r.out = out

	_, err := r.Run(context.Background(), RunOptions{Request: defaultRequest(), Verbose: true})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "REPORT SCORECARD")
	assert.Contains(t, out.String(), "HIGHLIGHTS")
	assert.Contains(t, out.String(), "solid team")
}

func TestRun_SecondRequestServedFromCache(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{}
	r := newTestRunner(store, gen)

	opts := RunOptions{Request: defaultRequest()}
	first, err := r.Run(context.Background(), opts)
	require.NoError(t, err)

	second, err := r.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.True(t, second.FromCache)
	assert.Equal(t, first.CacheKey, second.CacheKey)
	assert.Equal(t, 1, gen.calls)
	assert.Len(t, store.reports, 1)
}

func TestRun_BypassRegeneratesAndReplacesCacheSlot(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{}
	r := newTestRunner(store, gen)

	_, err := r.Run(context.Background(), RunOptions{Request: defaultRequest()})
	require.NoError(t, err)

	req := defaultRequest()
	req.BypassCache = true
	result, err := r.Run(context.Background(), RunOptions{Request: req})
	require.NoError(t, err)

	assert.False(t, result.FromCache)
	assert.Equal(t, 2, gen.calls)
	require.Len(t, store.reports, 2)
	// The older row stays queryable but no longer owns the cache slot.
	assert.Empty(t, store.reports[0].CacheKey)
	assert.Equal(t, result.CacheKey, store.reports[1].CacheKey)
}

func TestRun_WeightChangeMissesCache(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{}
	r := newTestRunner(store, gen)

	first, err := r.Run(context.Background(), RunOptions{Request: defaultRequest()})
	require.NoError(t, err)

	req := defaultRequest()
	req.Weights = types.PriorityWeights{Growth: 40, Stability: 15, Compensation: 15, WorkLife: 15, RoleFit: 15}
	second, err := r.Run(context.Background(), RunOptions{Request: req})
	require.NoError(t, err)

	assert.NotEqual(t, first.CacheKey, second.CacheKey)
	assert.False(t, second.FromCache)
	assert.Equal(t, 2, gen.calls)
}

func TestRun_UnknownCompany(t *testing.T) {
	store := newMemStore()
	r := newTestRunner(store, &fakeGenerator{})

	req := defaultRequest()
	req.CompanyName = "Ghost Corp"
	_, err := r.Run(context.Background(), RunOptions{Request: req})
	require.Error(t, err)
	assert.ErrorIs(t, err, evidence.ErrCompanyNotFound)
}

func TestRun_InsufficientEvidenceBeforeProviderCall(t *testing.T) {
	store := newMemStore()
	store.company = &types.CompanyInfo{ID: 7, Name: "Acme"} // identity only
	store.reviews = nil
	store.salaries = nil
	store.news = nil
	gen := &fakeGenerator{}
	r := newTestRunner(store, gen)

	_, err := r.Run(context.Background(), RunOptions{Request: defaultRequest()})
	require.Error(t, err)
	assert.ErrorIs(t, err, evidence.ErrInsufficientEvidence)
	assert.Equal(t, 0, gen.calls)
}

func TestRun_FailedQualityStoredButNotCached(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{breakReport: true}
	r := newTestRunner(store, gen)

	result, err := r.Run(context.Background(), RunOptions{Request: defaultRequest()})
	require.NoError(t, err)

	require.NotNil(t, result.Report)
	assert.False(t, result.Report.Quality.Passed)
	require.Len(t, store.reports, 1)
	assert.Empty(t, store.reports[0].CacheKey)

	// The next identical request must regenerate, not serve the failure.
	gen.breakReport = false
	second, err := r.Run(context.Background(), RunOptions{Request: defaultRequest()})
	require.NoError(t, err)
	assert.False(t, second.FromCache)
	assert.Equal(t, 2, gen.calls)
}

func TestRun_DegradedFallbackOnGenerationFailure(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{}
	r := newTestRunner(store, gen)

	// Seed a passing report, then force the provider to fail.
	req := defaultRequest()
	req.BypassCache = true
	_, err := r.Run(context.Background(), RunOptions{Request: req})
	require.NoError(t, err)

	gen.err = fmt.Errorf("provider exploded")
	result, err := r.Run(context.Background(), RunOptions{Request: req})
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	require.NotNil(t, result.Report)
	assert.True(t, result.Report.Quality.Passed)
}

func TestRun_GenerationFailureWithoutFallback(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{err: fmt.Errorf("provider exploded")}
	r := newTestRunner(store, gen)

	_, err := r.Run(context.Background(), RunOptions{Request: defaultRequest()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider exploded")
}

func TestRun_InvalidRequest(t *testing.T) {
	r := newTestRunner(newMemStore(), &fakeGenerator{})

	req := defaultRequest()
	req.CompanyName = ""
	_, err := r.Run(context.Background(), RunOptions{Request: req})
	assert.Error(t, err)

	req = defaultRequest()
	req.CacheDays = 365
	_, err = r.Run(context.Background(), RunOptions{Request: req})
	assert.Error(t, err)
}

func TestRun_ProgressEvents(t *testing.T) {
	store := newMemStore()
	r := newTestRunner(store, &fakeGenerator{})

	var mu sync.Mutex
	var steps []string
	opts := RunOptions{
		Request: defaultRequest(),
		OnProgress: func(event ProgressEvent) {
			mu.Lock()
			steps = append(steps, event.Step)
			mu.Unlock()
		},
	}

	_, err := r.Run(context.Background(), opts)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{StepEvidence, StepContext, StepReport, StepStored}, steps)
}

func TestRun_OnReportStoredHookFires(t *testing.T) {
	store := newMemStore()
	r := newTestRunner(store, &fakeGenerator{})

	fired := make(chan *types.Report, 1)
	opts := RunOptions{
		Request:        defaultRequest(),
		OnReportStored: func(rpt *types.Report) { fired <- rpt },
	}

	result, err := r.Run(context.Background(), opts)
	require.NoError(t, err)

	select {
	case rpt := <-fired:
		assert.Equal(t, result.Report.UID, rpt.UID)
	case <-time.After(time.Second):
		t.Fatal("OnReportStored hook never fired")
	}
}
