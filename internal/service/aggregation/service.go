package aggregation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/cache/availability"
)

// Service собирает недельные и месячные представления из дневных записей кэша
type Service struct {
	cache   DayCache
	fetches *semaphore.Weighted // общий лимит на все агрегаты сразу
	logger  Logger
	metrics MetricsRecorder
}

// NewService создает новый экземпляр сервиса агрегации.
// maxConcurrentFetches - сколько дней одновременно могут ждать загрузки из EMS
func NewService(cache DayCache, maxConcurrentFetches int, logger Logger) *Service {
	if maxConcurrentFetches <= 0 {
		maxConcurrentFetches = domain.DefaultMaxConcurrentFetches
	}
	return &Service{
		cache:   cache,
		fetches: semaphore.NewWeighted(int64(maxConcurrentFetches)),
		logger:  logger,
		metrics: noopMetrics{},
	}
}

// WithMetrics подключает метрики
func (s *Service) WithMetrics(m MetricsRecorder) *Service {
	if m != nil {
		s.metrics = m
	}
	return s
}

// GetWeek возвращает 7 дней начиная с weekStart в календарном порядке
func (s *Service) GetWeek(ctx context.Context, weekStart time.Time) (*Week, error) {
	dates := domain.WeekDates(weekStart)

	days, err := s.resolve(ctx, ViewWeek, dates)
	if err != nil {
		return nil, err
	}

	return &Week{WeekStart: dates[0], Days: days}, nil
}

// GetMonth возвращает все дни месяца в календарном порядке
func (s *Service) GetMonth(ctx context.Context, year int, month time.Month) (*Month, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d", ErrInvalidInput, month)
	}

	days, err := s.resolve(ctx, ViewMonth, domain.MonthDates(year, month))
	if err != nil {
		return nil, err
	}

	return &Month{Year: year, Month: month, Days: days}, nil
}

// resolve получает все даты. Попадания в кэш разрешаются сразу,
// промахи - параллельно, не больше лимита семафора.
// Ошибка по отдельному дню превращается в маркер этого дня
func (s *Service) resolve(ctx context.Context, view string, dates []time.Time) ([]*domain.DayAvailability, error) {
	days := make([]*domain.DayAvailability, len(dates))

	misses := make([]int, 0, len(dates))
	for i, date := range dates {
		if day, ok := s.cache.Lookup(date); ok {
			days[i] = day
			continue
		}
		misses = append(misses, i)
	}

	if len(misses) > 0 {
		group, groupCtx := errgroup.WithContext(ctx)
		for _, i := range misses {
			group.Go(func() error {
				day, err := s.fetchDay(groupCtx, dates[i])
				if err != nil {
					return err
				}
				// каждая горутина пишет только в свой индекс
				days[i] = day
				return nil
			})
		}

		if err := group.Wait(); err != nil {
			s.logger.Error("Aggregation %s: aborted: %v", view, err)
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed := len(failedDates(days))
	if failed > 0 {
		s.logger.Warn("Aggregation %s: %d of %d days failed (%s..%s)", view, failed, len(dates),
			domain.FormatDate(dates[0]), domain.FormatDate(dates[len(dates)-1]))
	}
	s.metrics.RecordFailedDays(view, failed)

	return days, nil
}

// fetchDay возвращает ошибку только для ErrUpstreamAuth, остальное - маркер дня
func (s *Service) fetchDay(ctx context.Context, date time.Time) (*domain.DayAvailability, error) {
	if err := s.fetches.Acquire(ctx, 1); err != nil {
		return domain.FailedDay(date, domain.ErrorKindCancelled, err.Error()), nil
	}
	defer s.fetches.Release(1)

	day, err := s.cache.GetOrFetch(ctx, date, false)
	if err == nil {
		return day, nil
	}

	kind := availability.KindOf(err)
	if kind == domain.ErrorKindAuth {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		kind = domain.ErrorKindCancelled
	}

	return domain.FailedDay(date, kind, err.Error()), nil
}
