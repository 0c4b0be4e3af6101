package health

import (
	"context"

	cacheAvailability "github.com/m04kA/SMC-AvailabilityService/internal/infra/cache/availability"
)

type CacheStats interface {
	Stats() cacheAvailability.Stats
}

// Pinger проверка доступности хранилища снимков (опционально)
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
