package warmup

import "time"

// Названия задач для логов и метрик
const (
	JobWarmup = "warmup"
	JobPurge  = "purge"
)

// Статусы запуска задачи
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Options параметры задач обслуживания кэша
type Options struct {
	WarmupDays        int // сколько дней начиная с сегодня держать свежими
	WarmupConcurrency int
	MaxStaleAge       time.Duration // 0 - устаревшие записи не чистятся, только вытесняются
}

// Result итог одного запуска прогрева
type Result struct {
	Refreshed int
	Failed    int
}
