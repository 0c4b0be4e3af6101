package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты обращения к кэшу
const (
	CacheResultHit       = "hit"
	CacheResultMiss      = "miss"
	CacheResultCoalesced = "coalesced"
	CacheResultStale     = "stale"
	CacheResultError     = "error"
)

// Metrics набор prometheus-метрик сервиса.
// Все методы безопасны для вызова на nil (метрики выключены).
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CacheLookupsTotal *prometheus.CounterVec
	CacheEntries      prometheus.Gauge
	InFlightFetches   prometheus.Gauge

	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration prometheus.Histogram
	UpstreamRetriesTotal    prometheus.Counter

	AggregateFailedDaysTotal *prometheus.CounterVec
	JobRunsTotal             *prometheus.CounterVec
}

// New регистрирует метрики в глобальном реестре (его отдает promhttp.Handler)
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry регистрирует метрики в переданном реестре
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		CacheLookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "availability_cache_lookups_total",
			Help:        "Availability cache lookups by result",
			ConstLabels: labels,
		}, []string{"result"}),
		CacheEntries: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "availability_cache_entries",
			Help:        "Number of days held in the availability cache",
			ConstLabels: labels,
		}),
		InFlightFetches: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "availability_cache_inflight_fetches",
			Help:        "Upstream fetches currently in flight",
			ConstLabels: labels,
		}),

		UpstreamRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "ems_upstream_requests_total",
			Help:        "Calls to the EMS availability API by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
		UpstreamRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "ems_upstream_request_duration_seconds",
			Help:        "EMS availability API latency",
			ConstLabels: labels,
			Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		UpstreamRetriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name:        "ems_upstream_retries_total",
			Help:        "Retries issued against the EMS availability API",
			ConstLabels: labels,
		}),

		AggregateFailedDaysTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "availability_aggregate_failed_days_total",
			Help:        "Days returned with an error marker inside week/month views",
			ConstLabels: labels,
		}, []string{"view"}),
		JobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "availability_job_runs_total",
			Help:        "Maintenance job runs by job and status",
			ConstLabels: labels,
		}, []string{"job", "status"}),
	}
}

// RecordHTTPRequest учитывает входящий HTTP запрос и его длительность
func (m *Metrics) RecordHTTPRequest(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordCacheLookup учитывает обращение к кэшу с результатом CacheResult*
func (m *Metrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// SetCacheEntries выставляет текущее число дней в кэше
func (m *Metrics) SetCacheEntries(n int) {
	if m == nil {
		return
	}
	m.CacheEntries.Set(float64(n))
}

// SetInFlight выставляет число идущих загрузок из EMS
func (m *Metrics) SetInFlight(n int) {
	if m == nil {
		return
	}
	m.InFlightFetches.Set(float64(n))
}

// RecordUpstreamCall учитывает запрос к EMS, его исход и длительность
func (m *Metrics) RecordUpstreamCall(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(outcome).Inc()
	m.UpstreamRequestDuration.Observe(d.Seconds())
}

// RecordRetry учитывает повторный запрос к EMS
func (m *Metrics) RecordRetry() {
	if m == nil {
		return
	}
	m.UpstreamRetriesTotal.Inc()
}

// RecordFailedDays учитывает дни без данных в недельном или месячном ответе
func (m *Metrics) RecordFailedDays(view string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.AggregateFailedDaysTotal.WithLabelValues(view).Add(float64(n))
}

// RecordJobRun учитывает запуск фоновой задачи и его статус
func (m *Metrics) RecordJobRun(job, status string) {
	if m == nil {
		return
	}
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
}
