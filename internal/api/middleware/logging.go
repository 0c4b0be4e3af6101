package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// AccessLog пишет по строке на каждый запрос
func AccessLog(logger Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			requestID, _ := GetRequestID(r.Context())
			duration := time.Since(start)

			switch {
			case rec.status >= http.StatusInternalServerError:
				logger.Error("%s %s - %d in %s, request_id=%s", r.Method, r.URL.RequestURI(), rec.status, duration, requestID)
			case rec.status >= http.StatusBadRequest:
				logger.Warn("%s %s - %d in %s, request_id=%s", r.Method, r.URL.RequestURI(), rec.status, duration, requestID)
			default:
				logger.Info("%s %s - %d in %s, request_id=%s", r.Method, r.URL.RequestURI(), rec.status, duration, requestID)
			}
		})
	}
}
