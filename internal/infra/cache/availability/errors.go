package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/integrations/emsservice"
)

// ErrUpstream общий маркер для всех ошибок получения данных из EMS
var ErrUpstream = errors.New("availability cache: upstream error")

// UpstreamError данные за дату получить не удалось, и устаревшей копии нет
type UpstreamError struct {
	Kind domain.ErrorKind
	Date time.Time
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("availability cache: %s for %s: %v", e.Kind, domain.FormatDate(e.Date), e.Err)
}

// Unwrap позволяет проверять и ErrUpstream, и исходные ошибки клиента
func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstream, e.Err}
}

// IsAuth возвращает true, если EMS отклонил учетные данные
func (e *UpstreamError) IsAuth() bool {
	return e.Kind == domain.ErrorKindAuth
}

// KindOf классифицирует ошибку клиента EMS
func KindOf(err error) domain.ErrorKind {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Kind
	}

	switch {
	case errors.Is(err, emsservice.ErrAuth):
		return domain.ErrorKindAuth
	case errors.Is(err, emsservice.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return domain.ErrorKindTimeout
	case errors.Is(err, emsservice.ErrUnavailable):
		return domain.ErrorKindUnavailable
	case errors.Is(err, emsservice.ErrBadResponse):
		return domain.ErrorKindBadResponse
	case errors.Is(err, emsservice.ErrCanceled), errors.Is(err, context.Canceled):
		return domain.ErrorKindCancelled
	default:
		return domain.ErrorKindInternal
	}
}

// IsRetryable повторяем только таймауты и недоступность EMS
func IsRetryable(err error) bool {
	return errors.Is(err, emsservice.ErrTimeout) || errors.Is(err, emsservice.ErrUnavailable)
}
