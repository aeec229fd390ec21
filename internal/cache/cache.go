// Package cache derives deterministic report cache keys and mediates
// lookups against the report store.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonathan/company-analyst/internal/types"
)

// Key derives the deterministic cache key for one report identity: the
// company, the optional posting, the weighting, and the evidence
// fingerprint. The report contract version is included so a prompt or
// scoring change invalidates every existing entry at once.
func Key(companyID int64, jobPostingID *int64, weights types.PriorityWeights, fingerprint string) string {
	posting := "none"
	if jobPostingID != nil {
		posting = fmt.Sprintf("%d", *jobPostingID)
	}
	material := fmt.Sprintf("%s|company=%d|posting=%s|weights=%s|evidence=%s",
		types.ReportVersion, companyID, posting, weights.Canonical(), fingerprint)
	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:])
}

// Store is the subset of report persistence the cache needs.
type Store interface {
	GetReportByCacheKey(ctx context.Context, cacheKey string) (*types.Report, error)
	InsertReport(ctx context.Context, report *types.Report) (int64, error)
}

// Manager answers cache lookups and stamps cache metadata onto reports
// before they are persisted. Concurrent work on the same key is
// serialized through a singleflight group so identical requests share one
// generation instead of racing.
type Manager struct {
	store Store
	group singleflight.Group

	// now is swapped out in tests.
	now func() time.Time
}

// NewManager creates a cache manager over a report store.
func NewManager(store Store) *Manager {
	return &Manager{
		store: store,
		now:   time.Now,
	}
}

// Lookup returns the cached report for a key, or nil when there is no
// usable entry. Entries that are expired or failed the quality gate are
// treated as absent; expiry here is lazy, physical cleanup belongs to
// PurgeExpiredCache.
func (m *Manager) Lookup(ctx context.Context, key string) (*types.Report, error) {
	rpt, err := m.store.GetReportByCacheKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}
	if rpt == nil {
		return nil, nil
	}
	if !rpt.Usable() {
		return nil, nil
	}
	if !rpt.CacheExpiresAt.After(m.now()) {
		return nil, nil
	}
	return rpt, nil
}

// Store stamps cache metadata onto the report and persists it. Reports
// that failed the quality gate are persisted for the audit trail but
// never claim the cache key, so the previous valid entry stays live.
func (m *Manager) Store(ctx context.Context, key string, rpt *types.Report, ttlDays int) (int64, error) {
	if ttlDays <= 0 {
		ttlDays = types.DefaultCacheDays
	}
	if rpt.Usable() {
		rpt.CacheKey = key
		rpt.CacheExpiresAt = m.now().Add(time.Duration(ttlDays) * 24 * time.Hour)
	} else {
		rpt.CacheKey = ""
		rpt.CacheExpiresAt = time.Time{}
	}

	id, err := m.store.InsertReport(ctx, rpt)
	if err != nil {
		return 0, fmt.Errorf("failed to store report: %w", err)
	}
	rpt.ID = id
	return id, nil
}

// Do runs fn under the key's singleflight slot. Concurrent callers with
// the same key block and share the first caller's result.
func (m *Manager) Do(key string, fn func() (*types.Report, error)) (*types.Report, error) {
	v, err, _ := m.group.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.(*types.Report), nil
}
