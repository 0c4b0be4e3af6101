package availability

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/metrics"
)

// Config параметры кэша
type Config struct {
	Capacity int
	TTL      TTLPolicy
	Retry    RetryPolicy
	// SnapshotTimeout ограничивает каждое обращение к хранилищу снимков
	SnapshotTimeout time.Duration
}

// DefaultConfig значения по умолчанию
func DefaultConfig() Config {
	return Config{
		Capacity:        domain.DefaultCacheCapacity,
		TTL:             DefaultTTLPolicy(),
		Retry:           DefaultRetryPolicy(),
		SnapshotTimeout: domain.DefaultSnapshotTimeout,
	}
}

// Stats снимок состояния кэша
type Stats struct {
	Entries  int
	InFlight int
}

// Cache read-through кэш доступности по датам.
//
// Гарантии:
//   - попадание в кэш не блокируется и не обращается к EMS;
//   - на одну дату одновременно выполняется не больше одного запроса к EMS,
//     остальные вызывающие ждут его результат;
//   - отмена контекста вызывающего не прерывает общую загрузку;
//   - при окончательной ошибке отдаются устаревшие данные, если они есть.
type Cache struct {
	upstream  Upstream
	snapshots SnapshotStore
	table     *table
	group     singleflight.Group
	inFlight  atomic.Int64

	ttl             TTLPolicy
	retry           RetryPolicy
	snapshotTimeout time.Duration

	clock   TimeProvider
	sleep   Sleeper
	metrics MetricsRecorder
	logger  Logger
}

// NewCache создает новый экземпляр кэша
func NewCache(upstream Upstream, cfg Config, logger Logger) *Cache {
	if cfg.SnapshotTimeout <= 0 {
		cfg.SnapshotTimeout = domain.DefaultSnapshotTimeout
	}
	return &Cache{
		upstream:        upstream,
		table:           newTable(cfg.Capacity),
		ttl:             cfg.TTL,
		retry:           cfg.Retry,
		snapshotTimeout: cfg.SnapshotTimeout,
		clock:           &RealTimeProvider{},
		sleep:           timerSleep,
		metrics:         noopMetrics{},
		logger:          logger,
	}
}

// WithSnapshots подключает хранилище снимков для отката после перезапуска
func (c *Cache) WithSnapshots(store SnapshotStore) *Cache {
	c.snapshots = store
	return c
}

// WithMetrics подключает метрики
func (c *Cache) WithMetrics(m MetricsRecorder) *Cache {
	if m != nil {
		c.metrics = m
	}
	return c
}

// WithClock подменяет часы (для тестов)
func (c *Cache) WithClock(clock TimeProvider) *Cache {
	c.clock = clock
	return c
}

// WithSleeper подменяет ожидание между повторами (для тестов)
func (c *Cache) WithSleeper(sleep Sleeper) *Cache {
	c.sleep = sleep
	return c
}

// Lookup возвращает свежую запись без обращения к EMS и без ожидания
func (c *Cache) Lookup(date time.Time) (*domain.DayAvailability, bool) {
	day, ok := c.table.getFresh(cacheKey(date), c.clock.Now())
	if ok {
		c.metrics.RecordCacheLookup(metrics.CacheResultHit)
	}
	return day, ok
}

// GetOrFetch возвращает доступность на дату, при необходимости загружая ее из EMS.
// forceRefresh пропускает проверку свежести, но присоединяется к уже идущей загрузке.
// Ошибка *UpstreamError возвращается, только если нет и устаревших данных.
func (c *Cache) GetOrFetch(ctx context.Context, date time.Time, forceRefresh bool) (*domain.DayAvailability, error) {
	date = domain.DateOf(date)
	key := cacheKey(date)

	// 1. Свежая запись - сразу отдаем
	if !forceRefresh {
		if day, ok := c.table.getFresh(key, c.clock.Now()); ok {
			c.metrics.RecordCacheLookup(metrics.CacheResultHit)
			return day, nil
		}
	}

	// 2. Присоединяемся к загрузке или начинаем новую.
	// Загрузка не зависит от отмены контекста инициатора
	fetchCtx := context.WithoutCancel(ctx)
	var leader atomic.Bool
	resultCh := c.group.DoChan(key, func() (interface{}, error) {
		leader.Store(true)
		return c.load(fetchCtx, date, key, forceRefresh)
	})

	select {
	case res := <-resultCh:
		// Shared выставляется и инициатору, считаем только присоединившихся
		if res.Shared && !leader.Load() {
			c.metrics.RecordCacheLookup(metrics.CacheResultCoalesced)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.DayAvailability), nil

	case <-ctx.Done():
		return nil, &UpstreamError{Kind: domain.ErrorKindCancelled, Date: date, Err: ctx.Err()}
	}
}

// load выполняется не более одного раза одновременно для каждой даты
func (c *Cache) load(ctx context.Context, date time.Time, key string, forceRefresh bool) (*domain.DayAvailability, error) {
	c.metrics.SetInFlight(int(c.inFlight.Add(1)))
	defer func() {
		c.metrics.SetInFlight(int(c.inFlight.Add(-1)))
	}()

	// Запись могла обновиться, пока мы ждали своей очереди
	if !forceRefresh {
		if day, ok := c.table.getFresh(key, c.clock.Now()); ok {
			c.metrics.RecordCacheLookup(metrics.CacheResultHit)
			return day, nil
		}
	}
	c.metrics.RecordCacheLookup(metrics.CacheResultMiss)

	// 3. Запрос к EMS с повторами
	day, err := c.fetchWithRetry(ctx, date)
	if err == nil {
		// 4. Сохраняем с TTL, зависящим от удаленности даты
		c.store(key, day)
		return day, nil
	}

	kind := KindOf(err)

	// Проблема с учетными данными сама не исправится - сообщаем сразу
	if kind == domain.ErrorKindAuth {
		c.metrics.RecordCacheLookup(metrics.CacheResultError)
		c.logger.Error("AvailabilityCache: EMS rejected credentials for date=%s: %v", key, err)
		return nil, &UpstreamError{Kind: kind, Date: date, Err: err}
	}

	// 5. Откат на устаревшие данные
	if stale, ok := c.staleFallback(ctx, date, key); ok {
		c.metrics.RecordCacheLookup(metrics.CacheResultStale)
		c.logger.Warn("AvailabilityCache: serving stale data for date=%s (fetched at %s): %v",
			key, stale.FetchedAt.Format(time.RFC3339), err)
		return stale, nil
	}

	c.metrics.RecordCacheLookup(metrics.CacheResultError)
	c.logger.Error("AvailabilityCache: no data for date=%s, kind=%s: %v", key, kind, err)
	return nil, &UpstreamError{Kind: kind, Date: date, Err: err}
}

func (c *Cache) fetchWithRetry(ctx context.Context, date time.Time) (*domain.DayAvailability, error) {
	for attempt := 1; ; attempt++ {
		day, err := c.upstream.FetchDay(ctx, date)
		if err == nil {
			return day, nil
		}

		retry, delay := c.retry.Next(attempt, err)
		if !retry {
			return nil, err
		}

		c.metrics.RecordRetry()
		c.logger.Warn("AvailabilityCache: attempt %d for date=%s failed, retrying in %s: %v",
			attempt, domain.FormatDate(date), delay, err)

		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			return nil, err
		}
	}
}

func (c *Cache) store(key string, day *domain.DayAvailability) {
	now := c.clock.Now()
	ttl := c.ttl.TTL(day.Date, now)

	if evicted := c.table.put(key, day, now.Add(ttl)); evicted > 0 {
		c.logger.Info("AvailabilityCache: evicted %d entries (capacity %d)", evicted, c.table.capacity)
	}
	c.metrics.SetCacheEntries(c.table.len())

	if c.snapshots != nil {
		// Снимок пишется в фоне: ожидающие загрузку не зависят от хранилища
		go c.saveSnapshot(key, day)
	}
}

func (c *Cache) saveSnapshot(key string, day *domain.DayAvailability) {
	ctx, cancel := context.WithTimeout(context.Background(), c.snapshotTimeout)
	defer cancel()

	if err := c.snapshots.Save(ctx, day); err != nil {
		c.logger.Warn("AvailabilityCache: failed to save snapshot for date=%s: %v", key, err)
	}
}

type snapshotResult struct {
	day *domain.DayAvailability
	err error
}

// loadSnapshot ждет хранилище не дольше snapshotTimeout, даже если оно игнорирует контекст
func (c *Cache) loadSnapshot(ctx context.Context, date time.Time) (*domain.DayAvailability, error) {
	ctx, cancel := context.WithTimeout(ctx, c.snapshotTimeout)
	defer cancel()

	resultCh := make(chan snapshotResult, 1)
	go func() {
		day, err := c.snapshots.Load(ctx, date)
		resultCh <- snapshotResult{day: day, err: err}
	}()

	select {
	case res := <-resultCh:
		return res.day, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) staleFallback(ctx context.Context, date time.Time, key string) (*domain.DayAvailability, bool) {
	if prev, _, ok := c.table.getAny(key); ok {
		return prev.WithStatus(domain.SourceStale), true
	}

	if c.snapshots == nil {
		return nil, false
	}

	snapshot, err := c.loadSnapshot(ctx, date)
	if err != nil || snapshot == nil {
		if err != nil {
			c.logger.Warn("AvailabilityCache: failed to load snapshot for date=%s: %v", key, err)
		}
		return nil, false
	}

	// Кладем в таблицу уже истекшей, чтобы следующий отказ не ходил в хранилище
	c.table.put(key, snapshot, c.clock.Now())
	c.metrics.SetCacheEntries(c.table.len())

	return snapshot.WithStatus(domain.SourceStale), true
}

// Invalidate удаляет запись; идущая загрузка не прерывается
func (c *Cache) Invalidate(date time.Time) bool {
	removed := c.table.remove(cacheKey(date))
	c.metrics.SetCacheEntries(c.table.len())
	return removed
}

// Purge удаляет записи, истекшие больше maxStaleAge назад
func (c *Cache) Purge(maxStaleAge time.Duration) int {
	removed := c.table.purgeExpiredBefore(c.clock.Now().Add(-maxStaleAge))
	c.metrics.SetCacheEntries(c.table.len())
	return removed
}

// Stats возвращает текущее состояние кэша
func (c *Cache) Stats() Stats {
	return Stats{
		Entries:  c.table.len(),
		InFlight: int(c.inFlight.Load()),
	}
}

func cacheKey(date time.Time) string {
	return domain.FormatDate(domain.DateOf(date))
}
