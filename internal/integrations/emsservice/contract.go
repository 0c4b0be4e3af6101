package emsservice

import "time"

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// MetricsRecorder интерфейс для учета вызовов EMS
type MetricsRecorder interface {
	RecordUpstreamCall(outcome string, d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) RecordUpstreamCall(string, time.Duration) {}
