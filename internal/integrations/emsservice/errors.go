package emsservice

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout возвращается, когда EMS не ответил за отведенное время
	ErrTimeout = errors.New("emsservice client: upstream timeout")

	// ErrUnavailable возвращается при сетевых ошибках, 5xx и 429 от EMS
	ErrUnavailable = errors.New("emsservice client: upstream unavailable")

	// ErrBadResponse возвращается при неожиданном статусе или некорректном теле ответа
	ErrBadResponse = errors.New("emsservice client: bad upstream response")

	// ErrAuth возвращается, когда EMS отклонил токен (401/403).
	// Повторять такой запрос бессмысленно
	ErrAuth = errors.New("emsservice client: upstream rejected credentials")

	// ErrCanceled возвращается, если вызывающий отменил контекст
	ErrCanceled = errors.New("emsservice client: request canceled")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("emsservice client: internal error")
)

// maxDiagnosticBody ограничение на размер тела ответа, сохраняемого в ошибке
const maxDiagnosticBody = 512

// ResponseError ответ EMS, который не удалось принять.
// Хранит статус и начало тела ответа для диагностики.
type ResponseError struct {
	Kind       error // ErrBadResponse, ErrUnavailable или ErrAuth
	StatusCode int
	Body       string
	Reason     string
}

func (e *ResponseError) Error() string {
	msg := fmt.Sprintf("%v: status=%d", e.Kind, e.StatusCode)
	if e.Reason != "" {
		msg += ", " + e.Reason
	}
	if e.Body != "" {
		msg += ", body=" + e.Body
	}
	return msg
}

func (e *ResponseError) Unwrap() error {
	return e.Kind
}

func newResponseError(kind error, status int, body []byte, reason string) *ResponseError {
	if len(body) > maxDiagnosticBody {
		body = body[:maxDiagnosticBody]
	}
	return &ResponseError{
		Kind:       kind,
		StatusCode: status,
		Body:       string(body),
		Reason:     reason,
	}
}
