package availability

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// RetryPolicy экспоненциальная задержка между повторами запроса к EMS
type RetryPolicy struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy 2 повтора, 200ms, 400ms (не больше 2s)
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     domain.DefaultMaxRetries,
		InitialBackoff: domain.DefaultInitialBackoff,
		MaxBackoff:     domain.DefaultMaxBackoff,
	}
}

// Next решает, нужен ли повтор после неудачной попытки номер attempt (с 1),
// и возвращает задержку перед ним. Функция не зависит от транспорта и часов.
func (p RetryPolicy) Next(attempt int, err error) (bool, time.Duration) {
	if attempt < 1 || attempt > p.MaxRetries || !IsRetryable(err) {
		return false, 0
	}

	delay := p.InitialBackoff
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxBackoff {
			break
		}
	}
	if delay > p.MaxBackoff {
		delay = p.MaxBackoff
	}

	return true, delay
}

// TTLPolicy время жизни записи зависит от удаленности даты:
// ближайшие дни меняются часто, дальние - редко
type TTLPolicy struct {
	NearTerm     time.Duration
	FarFuture    time.Duration
	NearTermDays int
}

// DefaultTTLPolicy 2 минуты для сегодня..+7 дней, 1 час дальше
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		NearTerm:     domain.DefaultNearTermTTL,
		FarFuture:    domain.DefaultFarFutureTTL,
		NearTermDays: domain.DefaultNearTermDays,
	}
}

// TTL выбирает время жизни по расстоянию от текущего дня на момент загрузки.
// Прошедшие даты попадают в короткую корзину
func (p TTLPolicy) TTL(date, now time.Time) time.Duration {
	if domain.DaysBetween(now, date) <= p.NearTermDays {
		return p.NearTerm
	}
	return p.FarFuture
}
