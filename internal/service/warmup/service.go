package warmup

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	cacheAvailability "github.com/m04kA/SMC-AvailabilityService/internal/infra/cache/availability"
)

const defaultWarmupConcurrency = 2

// ErrUpstreamAuth EMS отклонил учетные данные, прогрев остановлен
var ErrUpstreamAuth = errors.New("warmup: upstream rejected credentials")

// Service задачи обслуживания кэша: прогрев ближайших дней и очистка устаревших записей
type Service struct {
	cache        Cache
	snapshots    SnapshotPruner
	opts         Options
	timeProvider TimeProvider
	metrics      MetricsRecorder
	logger       Logger
}

// NewService создает новый экземпляр сервиса обслуживания кэша
func NewService(cache Cache, opts Options, logger Logger) *Service {
	if opts.WarmupDays <= 0 {
		opts.WarmupDays = domain.DefaultNearTermDays
	}
	if opts.WarmupConcurrency <= 0 {
		opts.WarmupConcurrency = defaultWarmupConcurrency
	}

	return &Service{
		cache:        cache,
		opts:         opts,
		timeProvider: &RealTimeProvider{},
		metrics:      noopMetrics{},
		logger:       logger,
	}
}

// WithSnapshots подключает очистку снимков в БД
func (s *Service) WithSnapshots(p SnapshotPruner) *Service {
	s.snapshots = p
	return s
}

// WithMetrics подключает метрики
func (s *Service) WithMetrics(m MetricsRecorder) *Service {
	if m != nil {
		s.metrics = m
	}
	return s
}

// WithTimeProvider подменяет часы (для тестов)
func (s *Service) WithTimeProvider(p TimeProvider) *Service {
	s.timeProvider = p
	return s
}

// WarmUp принудительно обновляет дни с сегодняшнего по today+WarmupDays-1.
// Ошибки отдельных дней не прерывают прогрев, кроме отказа в авторизации
func (s *Service) WarmUp(ctx context.Context) (Result, error) {
	today := domain.DateOf(s.timeProvider.Now())
	s.logger.Info("Warmup: refreshing %d days starting %s", s.opts.WarmupDays, domain.FormatDate(today))

	var refreshed, failed atomic.Int32

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.opts.WarmupConcurrency)

	for i := 0; i < s.opts.WarmupDays; i++ {
		date := today.AddDate(0, 0, i)
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return nil
			}
			day, err := s.cache.GetOrFetch(groupCtx, date, true)
			if err != nil {
				failed.Add(1)
				if cacheAvailability.KindOf(err) == domain.ErrorKindAuth {
					return fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
				}
				s.logger.Warn("Warmup: failed to refresh date=%s: %v", domain.FormatDate(date), err)
				return nil
			}
			// устаревшие данные - EMS не ответил, но запись осталась
			if day.IsStale() {
				failed.Add(1)
				return nil
			}
			refreshed.Add(1)
			return nil
		})
	}

	err := group.Wait()
	result := Result{Refreshed: int(refreshed.Load()), Failed: int(failed.Load())}

	switch {
	case err != nil:
		s.metrics.RecordJobRun(JobWarmup, StatusFailed)
		s.logger.Error("Warmup: aborted after %d refreshed: %v", result.Refreshed, err)
		return result, err
	case result.Failed > 0:
		s.metrics.RecordJobRun(JobWarmup, StatusPartial)
		s.logger.Warn("Warmup: refreshed %d days, %d failed", result.Refreshed, result.Failed)
	default:
		s.metrics.RecordJobRun(JobWarmup, StatusSuccess)
		s.logger.Info("Warmup: refreshed %d days", result.Refreshed)
	}

	return result, nil
}

// Purge удаляет из памяти записи, истекшие больше MaxStaleAge назад,
// и снимки за даты раньше начала прошлого месяца.
// MaxStaleAge = 0 отключает чистку памяти: записи живут до вытеснения LRU
func (s *Service) Purge(ctx context.Context) error {
	if s.opts.MaxStaleAge > 0 {
		removed := s.cache.Purge(s.opts.MaxStaleAge)
		s.logger.Info("Purge: removed %d cache entries expired more than %s ago", removed, s.opts.MaxStaleAge)
	} else {
		s.logger.Info("Purge: max stale age is not set, cache entries are kept until eviction")
	}

	if s.snapshots == nil {
		s.metrics.RecordJobRun(JobPurge, StatusSuccess)
		return nil
	}

	before := snapshotRetentionStart(s.timeProvider.Now())
	deleted, err := s.snapshots.DeleteOlderThan(ctx, before)
	if err != nil {
		s.metrics.RecordJobRun(JobPurge, StatusFailed)
		s.logger.Error("Purge: failed to delete snapshots before %s: %v", domain.FormatDate(before), err)
		return fmt.Errorf("purge snapshots: %w", err)
	}

	s.metrics.RecordJobRun(JobPurge, StatusSuccess)
	s.logger.Info("Purge: deleted %d snapshots before %s", deleted, domain.FormatDate(before))
	return nil
}

// snapshotRetentionStart первый день прошлого месяца: месячный вид
// может запросить текущий и прошлый месяц
func snapshotRetentionStart(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m-1, 1, 0, 0, 0, 0, time.UTC)
}
