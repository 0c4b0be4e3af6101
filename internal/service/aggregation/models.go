package aggregation

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// Названия представлений для логов и метрик
const (
	ViewWeek  = "week"
	ViewMonth = "month"
)

// Week доступность за неделю, 7 дней начиная с понедельника
type Week struct {
	WeekStart time.Time
	Days      []*domain.DayAvailability // в календарном порядке
}

// FailedDays даты, для которых данные получить не удалось
func (w *Week) FailedDays() []time.Time {
	return failedDates(w.Days)
}

// Month доступность за все дни месяца
type Month struct {
	Year  int
	Month time.Month
	Days  []*domain.DayAvailability // в календарном порядке
}

// FailedDays даты, для которых данные получить не удалось
func (m *Month) FailedDays() []time.Time {
	return failedDates(m.Days)
}

func failedDates(days []*domain.DayAvailability) []time.Time {
	var failed []time.Time
	for _, d := range days {
		if d.IsFailed() {
			failed = append(failed, d.Date)
		}
	}
	return failed
}
