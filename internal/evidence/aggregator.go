// Package evidence assembles per-company evidence bundles from the
// collected records in the database.
package evidence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/company-analyst/internal/types"
)

// ErrInsufficientEvidence is returned when a company resolves to zero
// usable records across all evidence sources.
var ErrInsufficientEvidence = errors.New("insufficient evidence for company")

// ErrCompanyNotFound is returned when the company identity resolves to no
// company record at all.
var ErrCompanyNotFound = errors.New("company not found")

// Per-source fetch caps. Evidence beyond these counts adds little signal
// and inflates the context.
const (
	maxReviews    = 50
	maxInterviews = 30
	maxNews       = 30
)

// Store is the read surface the aggregator needs. *db.DB satisfies it.
type Store interface {
	GetCompanyByName(ctx context.Context, name string) (*types.CompanyInfo, error)
	GetCompanyByID(ctx context.Context, companyID int64) (*types.CompanyInfo, error)
	ListJobPostings(ctx context.Context, companyID int64, jobPostingID *int64) ([]types.JobPosting, error)
	ListReviews(ctx context.Context, companyID int64, limit int) ([]types.Review, error)
	ListInterviews(ctx context.Context, companyID int64, limit int) ([]types.Interview, error)
	ListSalaries(ctx context.Context, companyID int64) ([]types.Salary, error)
	ListBenefits(ctx context.Context, companyID int64) ([]types.Benefit, error)
	ListNews(ctx context.Context, companyID int64, limit int) ([]types.NewsItem, error)
}

// CollectOptions identifies the company whose evidence should be
// assembled. Either CompanyID or CompanyName must be set.
type CollectOptions struct {
	CompanyID    int64
	CompanyName  string
	JobPostingID *int64
}

// Collect builds the evidence bundle for one company. Missing sources
// produce empty collections, not failures; Collect fails only when the
// company cannot be resolved or no source holds any record for it.
func Collect(ctx context.Context, store Store, opts CollectOptions) (*types.EvidenceBundle, error) {
	company, err := resolveCompany(ctx, store, opts)
	if err != nil {
		return nil, err
	}

	bundle := &types.EvidenceBundle{
		Company:      *company,
		JobPostingID: opts.JobPostingID,
		CollectedAt:  time.Now(),
	}

	// The source queries are independent reads; fetch them concurrently.
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		postings, err := store.ListJobPostings(gCtx, company.ID, opts.JobPostingID)
		if err != nil {
			return fmt.Errorf("collecting job postings: %w", err)
		}
		bundle.Postings = postings
		return nil
	})
	g.Go(func() error {
		reviews, err := store.ListReviews(gCtx, company.ID, maxReviews)
		if err != nil {
			return fmt.Errorf("collecting reviews: %w", err)
		}
		bundle.Reviews = reviews
		return nil
	})
	g.Go(func() error {
		interviews, err := store.ListInterviews(gCtx, company.ID, maxInterviews)
		if err != nil {
			return fmt.Errorf("collecting interviews: %w", err)
		}
		bundle.Interviews = interviews
		return nil
	})
	g.Go(func() error {
		salaries, err := store.ListSalaries(gCtx, company.ID)
		if err != nil {
			return fmt.Errorf("collecting salaries: %w", err)
		}
		bundle.Salaries = salaries
		return nil
	})
	g.Go(func() error {
		benefits, err := store.ListBenefits(gCtx, company.ID)
		if err != nil {
			return fmt.Errorf("collecting benefits: %w", err)
		}
		bundle.Benefits = benefits
		return nil
	})
	g.Go(func() error {
		news, err := store.ListNews(gCtx, company.ID, maxNews)
		if err != nil {
			return fmt.Errorf("collecting news: %w", err)
		}
		bundle.News = news
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !bundle.HasMinimumData() {
		return nil, fmt.Errorf("%w: %s has no records in any source", ErrInsufficientEvidence, company.Name)
	}
	return bundle, nil
}

func resolveCompany(ctx context.Context, store Store, opts CollectOptions) (*types.CompanyInfo, error) {
	var company *types.CompanyInfo
	var err error

	switch {
	case opts.CompanyID != 0:
		company, err = store.GetCompanyByID(ctx, opts.CompanyID)
	case opts.CompanyName != "":
		company, err = store.GetCompanyByName(ctx, opts.CompanyName)
	default:
		return nil, fmt.Errorf("company id or name is required")
	}
	if err != nil {
		return nil, fmt.Errorf("resolving company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("%w: %q", ErrCompanyNotFound, opts.CompanyName)
	}
	return company, nil
}
