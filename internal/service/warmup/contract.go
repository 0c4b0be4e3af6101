package warmup

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// Cache интерфейс кэша доступности
type Cache interface {
	GetOrFetch(ctx context.Context, date time.Time, forceRefresh bool) (*domain.DayAvailability, error)
	Purge(maxStaleAge time.Duration) int
}

// SnapshotPruner удаление старых снимков из БД (опционально)
type SnapshotPruner interface {
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// MetricsRecorder интерфейс для учета запусков задач
type MetricsRecorder interface {
	RecordJobRun(job, status string)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реализация TimeProvider для production
type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type noopMetrics struct{}

func (noopMetrics) RecordJobRun(string, string) {}
