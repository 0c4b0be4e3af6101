package emsservice

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// toDomainDay приводит ответ EMS к доменной модели:
// помещения сортируются по зданию и названию, слоты - по времени начала,
// пересекающиеся и смежные интервалы склеиваются
func toDomainDay(requested time.Time, data *DailyData, fetchedAt time.Time) (*domain.DayAvailability, error) {
	date := domain.DateOf(requested)

	if data.Date != "" {
		respDate, err := domain.ParseDate(data.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date in response: %v", err)
		}
		if !respDate.Equal(date) {
			return nil, fmt.Errorf("response date %s does not match requested %s",
				data.Date, domain.FormatDate(date))
		}
	}

	rooms := make([]domain.RoomAvailability, 0, len(data.Rooms))
	for _, room := range data.Rooms {
		slots, err := normalizeSlots(room.Slots)
		if err != nil {
			return nil, fmt.Errorf("room %q: %v", room.RoomName, err)
		}

		rooms = append(rooms, domain.RoomAvailability{
			RoomName:     room.RoomName,
			RoomType:     room.RoomType,
			BuildingName: room.BuildingName,
			Slots:        slots,
		})
	}

	sort.SliceStable(rooms, func(i, j int) bool {
		if rooms[i].BuildingName != rooms[j].BuildingName {
			return rooms[i].BuildingName < rooms[j].BuildingName
		}
		return rooms[i].RoomName < rooms[j].RoomName
	})

	return &domain.DayAvailability{
		Date:         date,
		Rooms:        rooms,
		FetchedAt:    fetchedAt,
		SourceStatus: domain.SourceFresh,
	}, nil
}

func normalizeSlots(raw []Slot) ([]domain.AvailabilitySlot, error) {
	slots := make([]domain.AvailabilitySlot, 0, len(raw))
	for _, s := range raw {
		start, err := types.NewTimeStringFromString(s.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := types.NewTimeStringFromString(s.EndTime)
		if err != nil {
			return nil, err
		}

		slot := domain.AvailabilitySlot{StartTime: start, EndTime: end}
		if !slot.IsValid() {
			return nil, fmt.Errorf("slot %s-%s: start must be before end", start, end)
		}
		slots = append(slots, slot)
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].StartTime.IsBefore(slots[j].StartTime)
	})

	merged := make([]domain.AvailabilitySlot, 0, len(slots))
	for _, slot := range slots {
		last := len(merged) - 1
		if last >= 0 && (merged[last].Overlaps(slot) || merged[last].Adjoins(slot)) {
			if slot.EndTime.IsAfter(merged[last].EndTime) {
				merged[last].EndTime = slot.EndTime
			}
			continue
		}
		merged = append(merged, slot)
	}

	return merged, nil
}
