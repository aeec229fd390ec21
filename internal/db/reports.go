package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/company-analyst/internal/types"
)

const reportColumns = `id, uid, company_id, company_name, job_posting_id, provider, model,
	report_version, verdict, total_score, scores, key_attractions, key_risks,
	verification_items, sections, judgments, quality_passed, quality_violations,
	data_sources, priority_weights, cache_key, cache_expires_at, generated_at`

// InsertReport persists a finalized report and returns its assigned id.
// Any prior report holding the same cache key loses its cache pointer
// (last-write-wins) but remains queryable by id.
func (db *DB) InsertReport(ctx context.Context, report *types.Report) (int64, error) {
	scoresJSON, err := json.Marshal(report.Scores)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal scores: %w", err)
	}
	attractionsJSON, _ := json.Marshal(report.KeyAttractions)
	risksJSON, _ := json.Marshal(report.KeyRisks)
	verificationJSON, _ := json.Marshal(report.VerificationItems)
	sectionsJSON, _ := json.Marshal(report.Sections)
	judgmentsJSON, _ := json.Marshal(report.Judgments)
	violationsJSON, _ := json.Marshal(report.Quality.Violations)
	sourcesJSON, _ := json.Marshal(report.DataSources)
	weightsJSON, _ := json.Marshal(report.Weights)

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Release the cache pointer held by any superseded report.
	if report.CacheKey != "" {
		_, err = tx.Exec(ctx,
			`UPDATE company_reports SET cache_key = NULL WHERE cache_key = $1`,
			report.CacheKey,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to release prior cache pointer: %w", err)
		}
	}

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO company_reports (uid, company_id, company_name, job_posting_id,
		     provider, model, report_version, verdict, total_score, scores,
		     key_attractions, key_risks, verification_items, sections, judgments,
		     quality_passed, quality_violations, data_sources, priority_weights,
		     cache_key, cache_expires_at, generated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		     $16, $17, $18, $19, $20, $21, $22)
		 RETURNING id`,
		report.UID, report.CompanyID, report.CompanyName, report.JobPostingID,
		report.Provider, report.Model, report.Version, string(report.Verdict),
		report.TotalScore, scoresJSON, attractionsJSON, risksJSON, verificationJSON,
		sectionsJSON, judgmentsJSON, report.Quality.Passed, violationsJSON,
		sourcesJSON, weightsJSON, nullIfEmpty(report.CacheKey),
		report.CacheExpiresAt, report.GeneratedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit report insert: %w", err)
	}

	report.ID = id
	return id, nil
}

// GetReportByID retrieves a report by its id. Returns nil when not found.
func (db *DB) GetReportByID(ctx context.Context, id int64) (*types.Report, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM company_reports WHERE id = $1`, id)
	return scanReport(row)
}

// GetReportByCacheKey retrieves the report currently holding a cache key.
func (db *DB) GetReportByCacheKey(ctx context.Context, cacheKey string) (*types.Report, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM company_reports WHERE cache_key = $1`, cacheKey)
	return scanReport(row)
}

// LatestReport retrieves the most recent report for a company. With
// passedOnly set, reports that failed the quality gate are skipped.
func (db *DB) LatestReport(ctx context.Context, companyID int64, passedOnly bool) (*types.Report, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM company_reports
		 WHERE company_id = $1 AND (NOT $2 OR quality_passed)
		 ORDER BY generated_at DESC LIMIT 1`,
		companyID, passedOnly)
	return scanReport(row)
}

// ListReports retrieves reports for a company, newest first.
func (db *DB) ListReports(ctx context.Context, companyID int64, limit int) ([]types.Report, error) {
	if limit == 0 {
		limit = 10
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+reportColumns+` FROM company_reports
		 WHERE company_id = $1 ORDER BY generated_at DESC LIMIT $2`,
		companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()
	return collectReports(rows)
}

// ListRecentReports retrieves the most recent reports across all
// companies, optionally filtered by verdict.
func (db *DB) ListRecentReports(ctx context.Context, limit int, verdict string) ([]types.Report, error) {
	if limit == 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+reportColumns+` FROM company_reports
		 WHERE ($2 = '' OR verdict = $2)
		 ORDER BY generated_at DESC LIMIT $1`,
		limit, verdict)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent reports: %w", err)
	}
	defer rows.Close()
	return collectReports(rows)
}

// PurgeExpiredCache releases cache pointers whose expiry has passed. The
// underlying reports stay queryable by id. Returns the number of pointers
// released.
func (db *DB) PurgeExpiredCache(ctx context.Context, now time.Time) (int64, error) {
	result, err := db.pool.Exec(ctx,
		`UPDATE company_reports SET cache_key = NULL
		 WHERE cache_key IS NOT NULL AND cache_expires_at < $1`,
		now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired cache: %w", err)
	}
	return result.RowsAffected(), nil
}

// ReportStatistics summarizes the stored reports.
type ReportStatistics struct {
	TotalReports    int64            `json:"total_reports"`
	ByVerdict       map[string]int64 `json:"by_verdict"`
	AvgTotalScore   float64          `json:"avg_total_score"`
	QualityPassed   int64            `json:"quality_passed"`
	QualityPassRate float64          `json:"quality_pass_rate"`
}

// GetStatistics computes aggregate statistics over all stored reports.
func (db *DB) GetStatistics(ctx context.Context) (*ReportStatistics, error) {
	stats := &ReportStatistics{ByVerdict: make(map[string]int64)}

	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(total_score), 0),
		        COUNT(*) FILTER (WHERE quality_passed)
		 FROM company_reports`,
	).Scan(&stats.TotalReports, &stats.AvgTotalScore, &stats.QualityPassed)
	if err != nil {
		return nil, fmt.Errorf("failed to get report statistics: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT verdict, COUNT(*) FROM company_reports GROUP BY verdict`)
	if err != nil {
		return nil, fmt.Errorf("failed to get verdict statistics: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var verdict string
		var count int64
		if err := rows.Scan(&verdict, &count); err != nil {
			return nil, fmt.Errorf("failed to scan verdict count: %w", err)
		}
		stats.ByVerdict[verdict] = count
	}

	if stats.TotalReports > 0 {
		stats.QualityPassRate = float64(stats.QualityPassed) / float64(stats.TotalReports) * 100
	}
	return stats, nil
}

// scanReport scans a single report row, returning nil when no row exists.
func scanReport(row pgx.Row) (*types.Report, error) {
	var r types.Report
	var verdict string
	var cacheKey *string
	var scoresJSON, attractionsJSON, risksJSON, verificationJSON []byte
	var sectionsJSON, judgmentsJSON, violationsJSON, sourcesJSON, weightsJSON []byte

	err := row.Scan(&r.ID, &r.UID, &r.CompanyID, &r.CompanyName, &r.JobPostingID,
		&r.Provider, &r.Model, &r.Version, &verdict, &r.TotalScore, &scoresJSON,
		&attractionsJSON, &risksJSON, &verificationJSON, &sectionsJSON,
		&judgmentsJSON, &r.Quality.Passed, &violationsJSON, &sourcesJSON,
		&weightsJSON, &cacheKey, &r.CacheExpiresAt, &r.GeneratedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	r.Verdict = types.Verdict(verdict)
	if cacheKey != nil {
		r.CacheKey = *cacheKey
	}
	_ = json.Unmarshal(scoresJSON, &r.Scores)
	_ = json.Unmarshal(attractionsJSON, &r.KeyAttractions)
	_ = json.Unmarshal(risksJSON, &r.KeyRisks)
	_ = json.Unmarshal(verificationJSON, &r.VerificationItems)
	_ = json.Unmarshal(sectionsJSON, &r.Sections)
	_ = json.Unmarshal(judgmentsJSON, &r.Judgments)
	_ = json.Unmarshal(violationsJSON, &r.Quality.Violations)
	_ = json.Unmarshal(sourcesJSON, &r.DataSources)
	_ = json.Unmarshal(weightsJSON, &r.Weights)
	return &r, nil
}

func collectReports(rows pgx.Rows) ([]types.Report, error) {
	var reports []types.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, nil
}
