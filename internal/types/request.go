package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ApplicantProfile carries optional freeform attributes about the
// applicant, used to personalize the evaluation.
type ApplicantProfile struct {
	CurrentExperience string   `json:"current_experience,omitempty"`
	CoreSkills        []string `json:"core_skills,omitempty"`
	Motivation        string   `json:"motivation,omitempty"`
	CareerDirection   string   `json:"career_direction,omitempty"`
}

// IsEmpty reports whether the profile carries no attributes at all.
func (p *ApplicantProfile) IsEmpty() bool {
	return p == nil || (p.CurrentExperience == "" && len(p.CoreSkills) == 0 &&
		p.Motivation == "" && p.CareerDirection == "")
}

// ReportRequest identifies one report generation request.
type ReportRequest struct {
	CompanyName  string            `json:"company_name" validate:"required"`
	CompanyID    int64             `json:"company_id,omitempty"`
	JobPostingID *int64            `json:"job_posting_id,omitempty"`
	Applicant    *ApplicantProfile `json:"applicant,omitempty"`
	Weights      PriorityWeights   `json:"weights"`
	BypassCache  bool              `json:"bypass_cache"`
	// CacheDays is the cache validity window. Zero means DefaultCacheDays.
	CacheDays int `json:"cache_days" validate:"gte=0,lte=90"`
}

// DefaultCacheDays is the cache validity window applied when the caller
// does not specify one.
const DefaultCacheDays = 7

var requestValidator = validator.New()

// Validate checks structural validity of the request, including the
// weights-sum invariant.
func (r *ReportRequest) Validate() error {
	if err := requestValidator.Struct(r); err != nil {
		return fmt.Errorf("invalid report request: %w", err)
	}
	if err := r.Weights.Validate(); err != nil {
		return fmt.Errorf("invalid report request: %w", err)
	}
	return nil
}
