package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/company-analyst/internal/types"
)

type fakeStore struct {
	mu      sync.Mutex
	byKey   map[string]*types.Report
	nextID  int64
	inserts int
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{byKey: map[string]*types.Report{}, nextID: 1}
}

func (s *fakeStore) GetReportByCacheKey(_ context.Context, key string) (*types.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.byKey[key], nil
}

func (s *fakeStore) InsertReport(_ context.Context, rpt *types.Report) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.inserts++
	id := s.nextID
	s.nextID++
	if rpt.CacheKey != "" {
		cp := *rpt
		cp.ID = id
		s.byKey[rpt.CacheKey] = &cp
	}
	return id, nil
}

func usableReport() *types.Report {
	return &types.Report{
		CompanyID: 7,
		Quality:   types.QualityResult{Passed: true},
		Weights:   types.DefaultWeights(),
	}
}

func TestKey_Deterministic(t *testing.T) {
	w := types.DefaultWeights()
	posting := int64(99)

	k1 := Key(7, &posting, w, "fp1")
	k2 := Key(7, &posting, w, "fp1")
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 64)
}

func TestKey_VariesByInputs(t *testing.T) {
	w := types.DefaultWeights()
	posting := int64(99)
	base := Key(7, &posting, w, "fp1")

	assert.NotEqual(t, base, Key(8, &posting, w, "fp1"))
	assert.NotEqual(t, base, Key(7, nil, w, "fp1"))
	assert.NotEqual(t, base, Key(7, &posting, w, "fp2"))

	shifted := types.PriorityWeights{Growth: 40, Stability: 15, Compensation: 15, WorkLife: 15, RoleFit: 15}
	assert.NotEqual(t, base, Key(7, &posting, shifted, "fp1"))
}

func TestLookup_HitAndExpiry(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	rpt := usableReport()
	_, err := m.Store(context.Background(), "k1", rpt, 7)
	require.NoError(t, err)

	got, err := m.Lookup(context.Background(), "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rpt.CacheExpiresAt, got.CacheExpiresAt)

	// Past the TTL the entry is invisible even though the row remains.
	m.now = func() time.Time { return now.Add(8 * 24 * time.Hour) }
	got, err = m.Lookup(context.Background(), "k1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLookup_Miss(t *testing.T) {
	m := NewManager(newFakeStore())
	got, err := m.Lookup(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLookup_FailedReportNeverServed(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)

	rpt := usableReport()
	rpt.Quality.Passed = false
	rpt.CacheKey = "k1"
	rpt.CacheExpiresAt = time.Now().Add(time.Hour)
	store.byKey["k1"] = rpt

	got, err := m.Lookup(context.Background(), "k1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_StampsMetadata(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	rpt := usableReport()
	id, err := m.Store(context.Background(), "k1", rpt, 3)
	require.NoError(t, err)

	assert.Equal(t, id, rpt.ID)
	assert.Equal(t, "k1", rpt.CacheKey)
	assert.Equal(t, now.Add(3*24*time.Hour), rpt.CacheExpiresAt)
}

func TestStore_DefaultTTL(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	rpt := usableReport()
	_, err := m.Store(context.Background(), "k1", rpt, 0)
	require.NoError(t, err)
	assert.Equal(t, now.Add(types.DefaultCacheDays*24*time.Hour), rpt.CacheExpiresAt)
}

func TestStore_FailedReportGetsNoCacheKey(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)

	rpt := usableReport()
	rpt.Quality.Passed = false
	id, err := m.Store(context.Background(), "k1", rpt, 7)
	require.NoError(t, err)

	assert.NotZero(t, id)
	assert.Empty(t, rpt.CacheKey)
	assert.True(t, rpt.CacheExpiresAt.IsZero())
	assert.Equal(t, 1, store.inserts)
	assert.Nil(t, store.byKey["k1"])
}

func TestDo_SerializesSameKey(t *testing.T) {
	m := NewManager(newFakeStore())

	var calls int
	var mu sync.Mutex
	started := make(chan struct{})
	release := make(chan struct{})

	fn := func() (*types.Report, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			close(started)
			<-release
		}
		return usableReport(), nil
	}

	var wg sync.WaitGroup
	results := make([]*types.Report, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rpt, err := m.Do("same-key", fn)
			assert.NoError(t, err)
			results[i] = rpt
		}(i)
	}

	<-started
	// Give the second caller time to join the in-flight slot.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
	assert.Same(t, results[0], results[1])
}

func TestDo_PropagatesError(t *testing.T) {
	m := NewManager(newFakeStore())
	_, err := m.Do("k", func() (*types.Report, error) {
		return nil, fmt.Errorf("generation blew up")
	})
	assert.EqualError(t, err, "generation blew up")
}
