package models

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// SlotResponse свободный интервал комнаты
type SlotResponse struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// RoomResponse доступность одной комнаты
type RoomResponse struct {
	RoomName     string         `json:"roomName"`
	RoomType     string         `json:"roomType"`
	BuildingName string         `json:"buildingName"`
	Slots        []SlotResponse `json:"slots"`
}

// DayErrorResponse причина, по которой день не удалось получить
type DayErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// DayResponse доступность всех комнат на дату
type DayResponse struct {
	Date         string            `json:"date"`
	Rooms        []RoomResponse    `json:"rooms"`
	FetchedAt    *time.Time        `json:"fetchedAt,omitempty"`
	SourceStatus string            `json:"sourceStatus"`
	Error        *DayErrorResponse `json:"error,omitempty"`
}

// WeekResponse доступность за неделю с понедельника по воскресенье
type WeekResponse struct {
	WeekStart  string        `json:"weekStart"`
	WeekEnd    string        `json:"weekEnd"`
	Days       []DayResponse `json:"days"`
	Partial    bool          `json:"partial"`
	FailedDays []string      `json:"failedDays,omitempty"`
}

// MonthResponse доступность за все дни месяца
type MonthResponse struct {
	Month      int           `json:"month"`
	Year       int           `json:"year"`
	Days       []DayResponse `json:"days"`
	Partial    bool          `json:"partial"`
	FailedDays []string      `json:"failedDays,omitempty"`
}

// FromDomainDay конвертирует domain.DayAvailability в DayResponse
func FromDomainDay(day *domain.DayAvailability) DayResponse {
	resp := DayResponse{
		Date:         domain.FormatDate(day.Date),
		Rooms:        make([]RoomResponse, 0, len(day.Rooms)),
		SourceStatus: string(day.SourceStatus),
	}

	if !day.FetchedAt.IsZero() {
		fetchedAt := day.FetchedAt
		resp.FetchedAt = &fetchedAt
	}

	for _, room := range day.Rooms {
		slots := make([]SlotResponse, 0, len(room.Slots))
		for _, slot := range room.Slots {
			slots = append(slots, SlotResponse{
				StartTime: slot.StartTime.String(),
				EndTime:   slot.EndTime.String(),
			})
		}
		resp.Rooms = append(resp.Rooms, RoomResponse{
			RoomName:     room.RoomName,
			RoomType:     room.RoomType,
			BuildingName: room.BuildingName,
			Slots:        slots,
		})
	}

	if day.Error != nil {
		resp.Error = &DayErrorResponse{
			Kind:    string(day.Error.Kind),
			Message: day.Error.Message,
		}
	}

	return resp
}

// FromDomainDays конвертирует список дней, сохраняя порядок
func FromDomainDays(days []*domain.DayAvailability) []DayResponse {
	result := make([]DayResponse, 0, len(days))
	for _, d := range days {
		result = append(result, FromDomainDay(d))
	}
	return result
}

// FormatDates форматирует даты как YYYY-MM-DD
func FormatDates(dates []time.Time) []string {
	if len(dates) == 0 {
		return nil
	}
	result := make([]string, len(dates))
	for i, d := range dates {
		result[i] = domain.FormatDate(d)
	}
	return result
}
