package types

import "time"

// Evidence source names, in truncation priority order (first dropped first).
const (
	SourceNews       = "news"
	SourceBenefits   = "benefits"
	SourceInterviews = "interviews"
	SourceSalaries   = "salaries"
	SourceReviews    = "reviews"
	SourcePostings   = "postings"
	SourceProfile    = "profile"
)

// CompanyInfo is the profile record for a company.
type CompanyInfo struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Industry     string   `json:"industry,omitempty"`
	EmployeeSize string   `json:"employee_size,omitempty"`
	Founded      int      `json:"founded,omitempty"`
	Location     string   `json:"location,omitempty"`
	Website      string   `json:"website,omitempty"`
	Rating       float64  `json:"rating,omitempty"`
	Description  string   `json:"description,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// IsEmpty reports whether the profile carries no usable fields beyond the
// identity.
func (c CompanyInfo) IsEmpty() bool {
	return c.Industry == "" && c.EmployeeSize == "" && c.Founded == 0 &&
		c.Location == "" && c.Website == "" && c.Rating == 0 &&
		c.Description == "" && len(c.Tags) == 0
}

// JobPosting is one collected job posting for a company.
type JobPosting struct {
	ID              int64     `json:"id"`
	CompanyID       int64     `json:"company_id"`
	Title           string    `json:"title"`
	JobCategory     string    `json:"job_category,omitempty"`
	RequiredSkills  []string  `json:"required_skills,omitempty"`
	PreferredSkills []string  `json:"preferred_skills,omitempty"`
	ExperienceLevel string    `json:"experience_level,omitempty"`
	SalaryText      string    `json:"salary_text,omitempty"`
	Description     string    `json:"description,omitempty"`
	SourceSite      string    `json:"source_site,omitempty"`
	Active          bool      `json:"active"`
	PostedAt        time.Time `json:"posted_at,omitempty"`
}

// Review is an employee review record.
type Review struct {
	ID             int64              `json:"id"`
	Rating         float64            `json:"rating"`
	CategoryScores map[string]float64 `json:"category_scores,omitempty"`
	Pros           string             `json:"pros,omitempty"`
	Cons           string             `json:"cons,omitempty"`
	JobCategory    string             `json:"job_category,omitempty"`
	CreatedAt      time.Time          `json:"created_at,omitempty"`
}

// Interview is an interview experience record.
type Interview struct {
	ID          int64     `json:"id"`
	Difficulty  string    `json:"difficulty,omitempty"`
	Questions   []string  `json:"questions,omitempty"`
	Result      string    `json:"result,omitempty"`
	JobCategory string    `json:"job_category,omitempty"`
	Experience  string    `json:"experience,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Salary is a self-reported salary record in units of 10k KRW per year.
type Salary struct {
	ID           int64  `json:"id"`
	Position     string `json:"position,omitempty"`
	Experience   string `json:"experience,omitempty"`
	AmountManwon int    `json:"amount_manwon"`
	IndustryAvg  int    `json:"industry_avg,omitempty"`
}

// Benefit is one benefit category rating.
type Benefit struct {
	ID       int64   `json:"id"`
	Category string  `json:"category"`
	Item     string  `json:"item,omitempty"`
	Score    float64 `json:"score,omitempty"`
}

// NewsItem is one collected news article about the company.
type NewsItem struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	ArticleType string    `json:"article_type,omitempty"`
	Reliability string    `json:"reliability,omitempty"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// SourceManifest records which evidence sources contributed to a report and
// how many records each supplied. Zero counts are meaningful: they signal
// an absent source, not an error.
type SourceManifest struct {
	Profile    bool `json:"profile"`
	Postings   int  `json:"postings"`
	Reviews    int  `json:"reviews"`
	Interviews int  `json:"interviews"`
	Salaries   int  `json:"salaries"`
	Benefits   int  `json:"benefits"`
	News       int  `json:"news"`
}

// Total returns the number of records across all counted sources.
func (m SourceManifest) Total() int {
	return m.Postings + m.Reviews + m.Interviews + m.Salaries + m.Benefits + m.News
}

// EvidenceBundle is the complete per-company evidence snapshot assembled
// for one report request. Sub-collections may be empty; the bundle is
// built fresh per request and never persisted as-is.
type EvidenceBundle struct {
	Company      CompanyInfo  `json:"company"`
	Postings     []JobPosting `json:"postings"`
	Reviews      []Review     `json:"reviews"`
	Interviews   []Interview  `json:"interviews"`
	Salaries     []Salary     `json:"salaries"`
	Benefits     []Benefit    `json:"benefits"`
	News         []NewsItem   `json:"news"`
	JobPostingID *int64       `json:"job_posting_id,omitempty"`
	CollectedAt  time.Time    `json:"collected_at"`
}

// Manifest computes the per-source count manifest for the bundle.
func (b *EvidenceBundle) Manifest() SourceManifest {
	return SourceManifest{
		Profile:    !b.Company.IsEmpty(),
		Postings:   len(b.Postings),
		Reviews:    len(b.Reviews),
		Interviews: len(b.Interviews),
		Salaries:   len(b.Salaries),
		Benefits:   len(b.Benefits),
		News:       len(b.News),
	}
}

// HasMinimumData reports whether the bundle carries any usable evidence at
// all. A company that resolves to zero records across every source cannot
// be analyzed.
func (b *EvidenceBundle) HasMinimumData() bool {
	m := b.Manifest()
	return m.Profile || m.Total() > 0
}

// AvgReviewRating returns the mean overall rating across reviews, or 0
// when there are none.
func (b *EvidenceBundle) AvgReviewRating() float64 {
	if len(b.Reviews) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range b.Reviews {
		sum += r.Rating
	}
	return sum / float64(len(b.Reviews))
}

// SalaryRange returns the min and max reported salary, or (0, 0) when no
// salary records exist.
func (b *EvidenceBundle) SalaryRange() (int, int) {
	if len(b.Salaries) == 0 {
		return 0, 0
	}
	minAmt, maxAmt := b.Salaries[0].AmountManwon, b.Salaries[0].AmountManwon
	for _, s := range b.Salaries[1:] {
		if s.AmountManwon < minAmt {
			minAmt = s.AmountManwon
		}
		if s.AmountManwon > maxAmt {
			maxAmt = s.AmountManwon
		}
	}
	return minAmt, maxAmt
}
