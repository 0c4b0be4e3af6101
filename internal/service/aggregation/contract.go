package aggregation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// DayCache интерфейс кэша доступности по дням
type DayCache interface {
	// Lookup свежая запись без ожидания и без запроса к EMS
	Lookup(date time.Time) (*domain.DayAvailability, bool)
	// GetOrFetch запись из кэша или из EMS
	GetOrFetch(ctx context.Context, date time.Time, forceRefresh bool) (*domain.DayAvailability, error)
}

// MetricsRecorder интерфейс для учета дней с ошибкой
type MetricsRecorder interface {
	RecordFailedDays(view string, n int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type noopMetrics struct{}

func (noopMetrics) RecordFailedDays(string, int) {}
