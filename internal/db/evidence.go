package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/company-analyst/internal/types"
)

// -----------------------------------------------------------------------------
// Company lookup
// -----------------------------------------------------------------------------

// GetCompanyByName retrieves a company record by exact name. Returns nil
// when no such company exists.
func (db *DB) GetCompanyByName(ctx context.Context, name string) (*types.CompanyInfo, error) {
	return db.getCompany(ctx,
		`SELECT id, name, COALESCE(industry, ''), COALESCE(employee_size, ''),
		        COALESCE(founded, 0), COALESCE(location, ''), COALESCE(website, ''),
		        COALESCE(rating, 0), COALESCE(description, ''), tags
		 FROM companies WHERE name = $1`,
		name)
}

// GetCompanyByID retrieves a company record by id.
func (db *DB) GetCompanyByID(ctx context.Context, companyID int64) (*types.CompanyInfo, error) {
	return db.getCompany(ctx,
		`SELECT id, name, COALESCE(industry, ''), COALESCE(employee_size, ''),
		        COALESCE(founded, 0), COALESCE(location, ''), COALESCE(website, ''),
		        COALESCE(rating, 0), COALESCE(description, ''), tags
		 FROM companies WHERE id = $1`,
		companyID)
}

func (db *DB) getCompany(ctx context.Context, query string, arg any) (*types.CompanyInfo, error) {
	var c types.CompanyInfo
	var tagsJSON []byte
	err := db.pool.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.Name, &c.Industry, &c.EmployeeSize, &c.Founded,
		&c.Location, &c.Website, &c.Rating, &c.Description, &tagsJSON,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	if len(tagsJSON) > 0 {
		_ = json.Unmarshal(tagsJSON, &c.Tags)
	}
	return &c, nil
}

// -----------------------------------------------------------------------------
// Evidence source queries
// -----------------------------------------------------------------------------

// ListJobPostings retrieves postings for a company, newest first. When
// jobPostingID is non-nil that posting is included even if inactive.
func (db *DB) ListJobPostings(ctx context.Context, companyID int64, jobPostingID *int64) ([]types.JobPosting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, company_id, title, COALESCE(job_category, ''), required_skills,
		        preferred_skills, COALESCE(experience_level, ''), COALESCE(salary_text, ''),
		        COALESCE(description, ''), COALESCE(source_site, ''), active, posted_at
		 FROM job_postings
		 WHERE company_id = $1 AND (active OR id = $2)
		 ORDER BY posted_at DESC NULLS LAST`,
		companyID, jobPostingID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer rows.Close()

	var postings []types.JobPosting
	for rows.Next() {
		var p types.JobPosting
		var requiredJSON, preferredJSON []byte
		var postedAt *time.Time
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Title, &p.JobCategory, &requiredJSON,
			&preferredJSON, &p.ExperienceLevel, &p.SalaryText, &p.Description,
			&p.SourceSite, &p.Active, &postedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		_ = json.Unmarshal(requiredJSON, &p.RequiredSkills)
		_ = json.Unmarshal(preferredJSON, &p.PreferredSkills)
		if postedAt != nil {
			p.PostedAt = *postedAt
		}
		postings = append(postings, p)
	}
	return postings, nil
}

// ListReviews retrieves employee reviews for a company, newest first.
func (db *DB) ListReviews(ctx context.Context, companyID int64, limit int) ([]types.Review, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, rating, category_scores, COALESCE(pros, ''), COALESCE(cons, ''),
		        COALESCE(job_category, ''), created_at
		 FROM company_reviews WHERE company_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		companyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []types.Review
	for rows.Next() {
		var r types.Review
		var scoresJSON []byte
		if err := rows.Scan(&r.ID, &r.Rating, &scoresJSON, &r.Pros, &r.Cons,
			&r.JobCategory, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		if len(scoresJSON) > 0 {
			_ = json.Unmarshal(scoresJSON, &r.CategoryScores)
		}
		reviews = append(reviews, r)
	}
	return reviews, nil
}

// ListInterviews retrieves interview records for a company, newest first.
func (db *DB) ListInterviews(ctx context.Context, companyID int64, limit int) ([]types.Interview, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, COALESCE(difficulty, ''), questions, COALESCE(result, ''),
		        COALESCE(job_category, ''), COALESCE(experience, ''), created_at
		 FROM company_interviews WHERE company_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		companyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	var interviews []types.Interview
	for rows.Next() {
		var iv types.Interview
		var questionsJSON []byte
		if err := rows.Scan(&iv.ID, &iv.Difficulty, &questionsJSON, &iv.Result,
			&iv.JobCategory, &iv.Experience, &iv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		_ = json.Unmarshal(questionsJSON, &iv.Questions)
		interviews = append(interviews, iv)
	}
	return interviews, nil
}

// ListSalaries retrieves salary records for a company.
func (db *DB) ListSalaries(ctx context.Context, companyID int64) ([]types.Salary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, COALESCE(position, ''), COALESCE(experience, ''),
		        amount_manwon, COALESCE(industry_avg, 0)
		 FROM company_salaries WHERE company_id = $1 ORDER BY id`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list salaries: %w", err)
	}
	defer rows.Close()

	var salaries []types.Salary
	for rows.Next() {
		var s types.Salary
		if err := rows.Scan(&s.ID, &s.Position, &s.Experience, &s.AmountManwon, &s.IndustryAvg); err != nil {
			return nil, fmt.Errorf("failed to scan salary: %w", err)
		}
		salaries = append(salaries, s)
	}
	return salaries, nil
}

// ListBenefits retrieves benefit category ratings for a company.
func (db *DB) ListBenefits(ctx context.Context, companyID int64) ([]types.Benefit, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, category, COALESCE(item, ''), COALESCE(score, 0)
		 FROM company_benefits WHERE company_id = $1 ORDER BY category, id`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list benefits: %w", err)
	}
	defer rows.Close()

	var benefits []types.Benefit
	for rows.Next() {
		var b types.Benefit
		if err := rows.Scan(&b.ID, &b.Category, &b.Item, &b.Score); err != nil {
			return nil, fmt.Errorf("failed to scan benefit: %w", err)
		}
		benefits = append(benefits, b)
	}
	return benefits, nil
}

// ListNews retrieves news articles about a company, newest first.
func (db *DB) ListNews(ctx context.Context, companyID int64, limit int) ([]types.NewsItem, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, title, COALESCE(summary, ''), COALESCE(article_type, ''),
		        COALESCE(reliability, ''), COALESCE(url, ''), published_at
		 FROM company_news WHERE company_id = $1
		 ORDER BY published_at DESC NULLS LAST LIMIT $2`,
		companyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}
	defer rows.Close()

	var items []types.NewsItem
	for rows.Next() {
		var n types.NewsItem
		var publishedAt *time.Time
		if err := rows.Scan(&n.ID, &n.Title, &n.Summary, &n.ArticleType,
			&n.Reliability, &n.URL, &publishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan news item: %w", err)
		}
		if publishedAt != nil {
			n.PublishedAt = *publishedAt
		}
		items = append(items, n)
	}
	return items, nil
}
