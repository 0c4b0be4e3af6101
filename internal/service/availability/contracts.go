package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/aggregation"
)

// DayCache интерфейс кэша доступности по дням
type DayCache interface {
	GetOrFetch(ctx context.Context, date time.Time, forceRefresh bool) (*domain.DayAvailability, error)
}

// Aggregator интерфейс слоя агрегации
type Aggregator interface {
	GetWeek(ctx context.Context, weekStart time.Time) (*aggregation.Week, error)
	GetMonth(ctx context.Context, year int, month time.Month) (*aggregation.Month, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
