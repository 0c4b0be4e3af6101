package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// Upstream источник данных о доступности (клиент EMS)
type Upstream interface {
	FetchDay(ctx context.Context, date time.Time) (*domain.DayAvailability, error)
}

// SnapshotStore долговременное хранилище последних успешных ответов.
// Используется только как источник устаревших данных при отказе EMS.
// Каждое обращение ограничено Config.SnapshotTimeout
type SnapshotStore interface {
	Save(ctx context.Context, day *domain.DayAvailability) error
	Load(ctx context.Context, date time.Time) (*domain.DayAvailability, error)
}

// MetricsRecorder интерфейс для учета работы кэша
type MetricsRecorder interface {
	RecordCacheLookup(result string)
	RecordRetry()
	SetCacheEntries(n int)
	SetInFlight(n int)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Sleeper ожидание между повторами; прерывается по контексту
type Sleeper func(ctx context.Context, d time.Duration) error

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

func timerSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type noopMetrics struct{}

func (noopMetrics) RecordCacheLookup(string) {}
func (noopMetrics) RecordRetry()             {}
func (noopMetrics) SetCacheEntries(int)      {}
func (noopMetrics) SetInFlight(int)          {}
