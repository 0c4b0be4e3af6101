package availability

import (
	"errors"
	"strings"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

var (
	// ErrInvalidDate возвращается, если дата не в формате YYYY-MM-DD
	ErrInvalidDate = errors.New("invalid date")

	// ErrPartialFailure возвращается вместе с данными, когда часть дней получить не удалось
	ErrPartialFailure = errors.New("partial failure")

	// ErrTotalFailure возвращается, когда не удалось получить данные ни за один день
	ErrTotalFailure = errors.New("no availability data could be obtained")

	// ErrUpstreamAuth возвращается, когда EMS отклонил учетные данные
	ErrUpstreamAuth = errors.New("upstream rejected credentials")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)

// PartialFailureError перечисляет дни, для которых нет данных.
// Возвращается вместе с ответом, ответ при этом пригоден к использованию
type PartialFailureError struct {
	Days []time.Time
}

func (e *PartialFailureError) Error() string {
	dates := make([]string, len(e.Days))
	for i, d := range e.Days {
		dates[i] = domain.FormatDate(d)
	}
	return ErrPartialFailure.Error() + ": " + strings.Join(dates, ", ")
}

func (e *PartialFailureError) Unwrap() error {
	return ErrPartialFailure
}
