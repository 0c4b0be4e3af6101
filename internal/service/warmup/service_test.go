package warmup

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	cacheAvailability "github.com/m04kA/SMC-AvailabilityService/internal/infra/cache/availability"
	"github.com/m04kA/SMC-AvailabilityService/internal/integrations/emsservice"
)

type testLogger struct{}

func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fakeCache struct {
	mu         sync.Mutex
	refreshed  []string
	forced     []bool
	errs       map[string]error
	stale      map[string]bool
	purged     bool
	purgedWith time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{errs: make(map[string]error), stale: make(map[string]bool)}
}

func (c *fakeCache) GetOrFetch(_ context.Context, date time.Time, forceRefresh bool) (*domain.DayAvailability, error) {
	key := domain.FormatDate(date)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshed = append(c.refreshed, key)
	c.forced = append(c.forced, forceRefresh)

	if err, ok := c.errs[key]; ok {
		return nil, &cacheAvailability.UpstreamError{Kind: cacheAvailability.KindOf(err), Date: date, Err: err}
	}
	status := domain.SourceFresh
	if c.stale[key] {
		status = domain.SourceStale
	}
	return &domain.DayAvailability{Date: date, SourceStatus: status}, nil
}

func (c *fakeCache) Purge(maxStaleAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purged = true
	c.purgedWith = maxStaleAge
	return 3
}

type fakePruner struct {
	before time.Time
	err    error
}

func (p *fakePruner) DeleteOlderThan(_ context.Context, before time.Time) (int64, error) {
	p.before = before
	return 5, p.err
}

type recordedRuns struct {
	mu   sync.Mutex
	runs []string
}

func (r *recordedRuns) RecordJobRun(job, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, job+":"+status)
}

var now = time.Date(2025, 3, 5, 14, 30, 0, 0, time.UTC)

func TestWarmUp_RefreshesNearTermDays(t *testing.T) {
	cache := newFakeCache()
	runs := &recordedRuns{}
	svc := NewService(cache, Options{WarmupDays: 3, WarmupConcurrency: 2}, testLogger{}).
		WithTimeProvider(fixedTime{now: now}).
		WithMetrics(runs)

	result, err := svc.WarmUp(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Result{Refreshed: 3}, result)

	sort.Strings(cache.refreshed)
	assert.Equal(t, []string{"2025-03-05", "2025-03-06", "2025-03-07"}, cache.refreshed)
	assert.Equal(t, []bool{true, true, true}, cache.forced)
	assert.Equal(t, []string{"warmup:success"}, runs.runs)
}

func TestWarmUp_PartialFailureDoesNotStop(t *testing.T) {
	cache := newFakeCache()
	cache.errs["2025-03-06"] = emsservice.ErrUnavailable
	cache.stale["2025-03-07"] = true
	runs := &recordedRuns{}
	svc := NewService(cache, Options{WarmupDays: 4}, testLogger{}).
		WithTimeProvider(fixedTime{now: now}).
		WithMetrics(runs)

	result, err := svc.WarmUp(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Result{Refreshed: 2, Failed: 2}, result)
	assert.Len(t, cache.refreshed, 4)
	assert.Equal(t, []string{"warmup:partial"}, runs.runs)
}

func TestWarmUp_AuthStops(t *testing.T) {
	cache := newFakeCache()
	cache.errs["2025-03-05"] = emsservice.ErrAuth
	runs := &recordedRuns{}
	svc := NewService(cache, Options{WarmupDays: 7, WarmupConcurrency: 1}, testLogger{}).
		WithTimeProvider(fixedTime{now: now}).
		WithMetrics(runs)

	_, err := svc.WarmUp(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamAuth)
	// при лимите 1 после отказа оставшиеся дни не запрашиваются
	assert.Equal(t, []string{"2025-03-05"}, cache.refreshed)
	assert.Equal(t, []string{"warmup:failed"}, runs.runs)
}

func TestPurge(t *testing.T) {
	t.Run("memory only", func(t *testing.T) {
		cache := newFakeCache()
		svc := NewService(cache, Options{MaxStaleAge: 6 * time.Hour}, testLogger{}).
			WithTimeProvider(fixedTime{now: now})

		require.NoError(t, svc.Purge(context.Background()))
		assert.Equal(t, 6*time.Hour, cache.purgedWith)
	})

	t.Run("with snapshots", func(t *testing.T) {
		cache := newFakeCache()
		pruner := &fakePruner{}
		svc := NewService(cache, Options{}, testLogger{}).
			WithTimeProvider(fixedTime{now: now}).
			WithSnapshots(pruner)

		require.NoError(t, svc.Purge(context.Background()))
		assert.False(t, cache.purged)
		assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), pruner.before)
	})

	t.Run("zero max stale age keeps entries until eviction", func(t *testing.T) {
		cache := newFakeCache()
		runs := &recordedRuns{}
		svc := NewService(cache, Options{MaxStaleAge: 0}, testLogger{}).
			WithTimeProvider(fixedTime{now: now}).
			WithMetrics(runs)

		require.NoError(t, svc.Purge(context.Background()))
		assert.False(t, cache.purged)
		assert.Equal(t, []string{"purge:success"}, runs.runs)
	})

	t.Run("snapshot error", func(t *testing.T) {
		runs := &recordedRuns{}
		svc := NewService(newFakeCache(), Options{}, testLogger{}).
			WithTimeProvider(fixedTime{now: now}).
			WithSnapshots(&fakePruner{err: errors.New("db down")}).
			WithMetrics(runs)

		assert.Error(t, svc.Purge(context.Background()))
		assert.Equal(t, []string{"purge:failed"}, runs.runs)
	})
}

func TestSnapshotRetentionStart(t *testing.T) {
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		snapshotRetentionStart(time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		snapshotRetentionStart(time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC)))
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler(NewService(newFakeCache(), Options{}, testLogger{}), time.Minute, testLogger{})

	assert.Error(t, s.Schedule("not a cron spec", ""))
	assert.NoError(t, s.Schedule("*/5 * * * *", "0 * * * *"))
	assert.NoError(t, s.Stop(context.Background()))
}
