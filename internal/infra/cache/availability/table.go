package availability

import (
	"container/list"
	"sync"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// entry запись кэша. Значение не изменяется после записи:
// обновление заменяет запись целиком
type entry struct {
	key       string
	value     *domain.DayAvailability
	expiresAt time.Time
	element   *list.Element
}

// table LRU-таблица записей с ограничением по количеству дней.
// Мьютекс держится только на время O(1) операций и никогда на время запроса к EMS.
// Загрузки в процессе учитываются отдельно (singleflight), вытеснение их не затрагивает
type table struct {
	mu       sync.Mutex
	items    map[string]*entry
	order    *list.List // front = most recently used
	capacity int
}

func newTable(capacity int) *table {
	if capacity <= 0 {
		capacity = domain.DefaultCacheCapacity
	}
	return &table{
		items:    make(map[string]*entry, capacity),
		order:    list.New(),
		capacity: capacity,
	}
}

// getFresh возвращает неистекшее значение и поднимает запись в LRU
func (t *table) getFresh(key string, now time.Time) (*domain.DayAvailability, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.items[key]
	if !ok || !now.Before(e.expiresAt) {
		return nil, false
	}

	t.order.MoveToFront(e.element)
	return e.value, true
}

// getAny возвращает значение независимо от срока жизни (для отката на устаревшие данные)
func (t *table) getAny(key string) (*domain.DayAvailability, time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.items[key]
	if !ok {
		return nil, time.Time{}, false
	}
	return e.value, e.expiresAt, true
}

// put атомарно заменяет запись и вытесняет самые старые записи сверх емкости.
// Возвращает количество вытесненных записей
func (t *table) put(key string, value *domain.DayAvailability, expiresAt time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.items[key]; ok {
		t.order.Remove(old.element)
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	e.element = t.order.PushFront(e)
	t.items[key] = e

	evicted := 0
	for t.order.Len() > t.capacity {
		oldest := t.order.Back()
		victim := oldest.Value.(*entry)
		t.order.Remove(oldest)
		delete(t.items, victim.key)
		evicted++
	}
	return evicted
}

// purgeExpiredBefore удаляет записи, истекшие раньше cutoff
func (t *table) purgeExpiredBefore(cutoff time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key, e := range t.items {
		if e.expiresAt.Before(cutoff) {
			t.order.Remove(e.element)
			delete(t.items, key)
			removed++
		}
	}
	return removed
}

func (t *table) remove(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.items[key]
	if !ok {
		return false
	}
	t.order.Remove(e.element)
	delete(t.items, key)
	return true
}

func (t *table) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.Len()
}
