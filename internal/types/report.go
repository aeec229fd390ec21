package types

import (
	"time"

	"github.com/google/uuid"
)

// ReportVersion identifies the prompt/scoring contract a report was
// generated under. Bumping it invalidates all existing cache keys.
const ReportVersion = "v1"

// Report section names, in render order. Every generated report must
// contain all of them.
const (
	SectionExecutiveSummary = "executive_summary"
	SectionCompanyOverview  = "company_overview"
	SectionPositionAnalysis = "position_analysis"
	SectionInternalSignals  = "internal_signals"
	SectionExternalSignals  = "external_signals"
	SectionScorecard        = "scorecard"
	SectionInterviewGuide   = "interview_guide"
)

// RequiredSections lists the sections every report must contain, in order.
func RequiredSections() []string {
	return []string{
		SectionExecutiveSummary,
		SectionCompanyOverview,
		SectionPositionAnalysis,
		SectionInternalSignals,
		SectionExternalSignals,
		SectionScorecard,
		SectionInterviewGuide,
	}
}

// ReportSection is one named body of report prose.
type ReportSection struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// QualityResult is the outcome of running the quality gate on a report.
type QualityResult struct {
	Passed     bool        `json:"passed"`
	Violations []Violation `json:"violations,omitempty"`
}

// Report is the persisted unit of work product: a full company evaluation
// produced by one generation run. Once persisted it is immutable except
// for cache metadata.
type Report struct {
	ID  int64     `json:"id"`
	UID uuid.UUID `json:"uid"`

	CompanyID    int64  `json:"company_id"`
	CompanyName  string `json:"company_name"`
	JobPostingID *int64 `json:"job_posting_id,omitempty"`

	Provider string `json:"provider"`
	Model    string `json:"model"`
	Version  string `json:"version"`

	Verdict           Verdict            `json:"verdict"`
	TotalScore        float64            `json:"total_score"`
	Scores            map[string]float64 `json:"scores"`
	KeyAttractions    []string           `json:"key_attractions"`
	KeyRisks          []string           `json:"key_risks"`
	VerificationItems []string           `json:"verification_items"`
	Sections          []ReportSection    `json:"sections"`
	Judgments         []Judgment         `json:"judgments,omitempty"`

	Quality     QualityResult   `json:"quality"`
	DataSources SourceManifest  `json:"data_sources"`
	Weights     PriorityWeights `json:"weights"`

	CacheKey       string    `json:"cache_key"`
	CacheExpiresAt time.Time `json:"cache_expires_at"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Section returns the body of a named section and whether it exists.
func (r *Report) Section(name string) (string, bool) {
	for _, s := range r.Sections {
		if s.Name == name {
			return s.Body, true
		}
	}
	return "", false
}

// Usable reports whether the report passed the quality gate and may be
// served as a valid result.
func (r *Report) Usable() bool {
	return r.Quality.Passed
}
