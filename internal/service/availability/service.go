package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	cacheAvailability "github.com/m04kA/SMC-AvailabilityService/internal/infra/cache/availability"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/aggregation"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/availability/models"
)

// Service фасад для получения доступности комнат за день, неделю и месяц
type Service struct {
	cache      DayCache
	aggregator Aggregator
	logger     Logger
}

// NewService создает новый экземпляр сервиса доступности
func NewService(cache DayCache, aggregator Aggregator, logger Logger) *Service {
	return &Service{
		cache:      cache,
		aggregator: aggregator,
		logger:     logger,
	}
}

// GetDaily возвращает доступность на дату.
// forceRefresh заставляет перечитать день из EMS
func (s *Service) GetDaily(ctx context.Context, date string, forceRefresh bool) (*models.DayResponse, error) {
	s.logger.Info("GetDaily: date=%s, refresh=%t", date, forceRefresh)

	// 1. Валидация даты до любых запросов к EMS
	day, err := parseDate(date)
	if err != nil {
		s.logger.Warn("GetDaily: %v", err)
		return nil, err
	}

	// 2. Кэш или EMS
	result, err := s.cache.GetOrFetch(ctx, day, forceRefresh)
	if err != nil {
		return nil, s.mapDayError("GetDaily", date, err)
	}

	if result.IsStale() {
		s.logger.Warn("GetDaily: serving stale data for date=%s", date)
	}

	resp := models.FromDomainDay(result)
	return &resp, nil
}

// GetWeekly возвращает неделю (понедельник - воскресенье), в которую входит дата.
// При частичном отказе возвращает и ответ, и *PartialFailureError
func (s *Service) GetWeekly(ctx context.Context, date string) (*models.WeekResponse, error) {
	s.logger.Info("GetWeekly: date=%s", date)

	day, err := parseDate(date)
	if err != nil {
		s.logger.Warn("GetWeekly: %v", err)
		return nil, err
	}

	weekStart := domain.WeekStart(day)

	week, err := s.aggregator.GetWeek(ctx, weekStart)
	if err != nil {
		return nil, s.mapAggregateError("GetWeekly", date, err)
	}

	failed := week.FailedDays()
	if len(failed) == len(week.Days) {
		s.logger.Error("GetWeekly: no data for any day of week starting %s", domain.FormatDate(weekStart))
		return nil, fmt.Errorf("%w: week starting %s", ErrTotalFailure, domain.FormatDate(weekStart))
	}

	resp := &models.WeekResponse{
		WeekStart:  domain.FormatDate(week.WeekStart),
		WeekEnd:    domain.FormatDate(week.WeekStart.AddDate(0, 0, domain.DaysInWeek-1)),
		Days:       models.FromDomainDays(week.Days),
		Partial:    len(failed) > 0,
		FailedDays: models.FormatDates(failed),
	}

	if len(failed) > 0 {
		s.logger.Warn("GetWeekly: partial result for week starting %s, failed days: %v", resp.WeekStart, resp.FailedDays)
		return resp, &PartialFailureError{Days: failed}
	}

	s.logger.Info("GetWeekly: successfully fetched week starting %s", resp.WeekStart)
	return resp, nil
}

// GetMonthly возвращает все дни месяца, в который входит дата.
// При частичном отказе возвращает и ответ, и *PartialFailureError
func (s *Service) GetMonthly(ctx context.Context, date string) (*models.MonthResponse, error) {
	s.logger.Info("GetMonthly: date=%s", date)

	day, err := parseDate(date)
	if err != nil {
		s.logger.Warn("GetMonthly: %v", err)
		return nil, err
	}

	month, err := s.aggregator.GetMonth(ctx, day.Year(), day.Month())
	if err != nil {
		return nil, s.mapAggregateError("GetMonthly", date, err)
	}

	failed := month.FailedDays()
	if len(failed) == len(month.Days) {
		s.logger.Error("GetMonthly: no data for any day of %s", day.Format(domain.MonthFormat))
		return nil, fmt.Errorf("%w: month %s", ErrTotalFailure, day.Format(domain.MonthFormat))
	}

	resp := &models.MonthResponse{
		Month:      int(month.Month),
		Year:       month.Year,
		Days:       models.FromDomainDays(month.Days),
		Partial:    len(failed) > 0,
		FailedDays: models.FormatDates(failed),
	}

	if len(failed) > 0 {
		s.logger.Warn("GetMonthly: partial result for %s, failed days: %v", day.Format(domain.MonthFormat), resp.FailedDays)
		return resp, &PartialFailureError{Days: failed}
	}

	s.logger.Info("GetMonthly: successfully fetched %s", day.Format(domain.MonthFormat))
	return resp, nil
}

func (s *Service) mapDayError(op, date string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("%s: request for date=%s cancelled: %v", op, date, err)
		return err
	}

	var upstreamErr *cacheAvailability.UpstreamError
	if errors.As(err, &upstreamErr) {
		if upstreamErr.IsAuth() {
			s.logger.Error("%s: EMS rejected credentials: %v", op, err)
			return fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
		}
		if upstreamErr.Kind == domain.ErrorKindCancelled {
			s.logger.Warn("%s: request for date=%s cancelled: %v", op, date, err)
			return context.Canceled
		}
		s.logger.Error("%s: no data for date=%s: %v", op, date, err)
		return fmt.Errorf("%w: %v", ErrTotalFailure, err)
	}

	s.logger.Error("%s: unexpected error for date=%s: %v", op, date, err)
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}

func (s *Service) mapAggregateError(op, date string, err error) error {
	switch {
	case errors.Is(err, aggregation.ErrUpstreamAuth):
		s.logger.Error("%s: EMS rejected credentials: %v", op, err)
		return fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("%s: request for date=%s cancelled: %v", op, date, err)
		return err
	default:
		s.logger.Error("%s: aggregation failed for date=%s: %v", op, date, err)
		return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
	}
}

func parseDate(s string) (time.Time, error) {
	d, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, expected YYYY-MM-DD", ErrInvalidDate, s)
	}
	return d, nil
}
