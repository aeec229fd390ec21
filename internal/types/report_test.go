package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredSections_Order(t *testing.T) {
	sections := RequiredSections()
	require.Len(t, sections, 7)
	assert.Equal(t, SectionExecutiveSummary, sections[0])
	assert.Equal(t, SectionInterviewGuide, sections[6])
}

func TestReport_Section(t *testing.T) {
	rpt := &Report{Sections: []ReportSection{
		{Name: SectionExecutiveSummary, Body: "summary body"},
		{Name: SectionScorecard, Body: "scorecard body"},
	}}

	body, ok := rpt.Section(SectionScorecard)
	assert.True(t, ok)
	assert.Equal(t, "scorecard body", body)

	_, ok = rpt.Section(SectionInterviewGuide)
	assert.False(t, ok)
}

func TestReport_Usable(t *testing.T) {
	rpt := &Report{Quality: QualityResult{Passed: true}}
	assert.True(t, rpt.Usable())

	rpt.Quality.Passed = false
	assert.False(t, rpt.Usable())
}

func TestViolations_HasErrors(t *testing.T) {
	vs := &Violations{Violations: []Violation{
		{Type: "unsupported_claim", Severity: SeverityWarning},
	}}
	assert.False(t, vs.HasErrors())

	vs.Violations = append(vs.Violations, Violation{Type: "total_mismatch", Severity: SeverityError})
	assert.True(t, vs.HasErrors())
}

func TestReportRequest_Validate(t *testing.T) {
	req := &ReportRequest{
		CompanyName: "Acme",
		Weights:     DefaultWeights(),
		CacheDays:   DefaultCacheDays,
	}
	assert.NoError(t, req.Validate())

	req.CompanyName = ""
	assert.Error(t, req.Validate())

	req.CompanyName = "Acme"
	req.CacheDays = 91
	assert.Error(t, req.Validate())

	// Zero means the default window, not an invalid request.
	req.CacheDays = 0
	assert.NoError(t, req.Validate())

	req.CacheDays = DefaultCacheDays
	req.Weights = PriorityWeights{Growth: 100, Stability: 10}
	assert.Error(t, req.Validate())
}

func TestApplicantProfile_IsEmpty(t *testing.T) {
	var nilProfile *ApplicantProfile
	assert.True(t, nilProfile.IsEmpty())
	assert.True(t, (&ApplicantProfile{}).IsEmpty())
	assert.False(t, (&ApplicantProfile{CoreSkills: []string{"Go"}}).IsEmpty())
}
