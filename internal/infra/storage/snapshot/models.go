package snapshot

import (
	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// payload формат хранения помещений в колонке JSONB
type payload struct {
	Rooms []roomPayload `json:"rooms"`
}

type roomPayload struct {
	RoomName     string        `json:"roomName"`
	RoomType     string        `json:"roomType"`
	BuildingName string        `json:"buildingName"`
	Slots        []slotPayload `json:"slots"`
}

type slotPayload struct {
	StartTime types.TimeString `json:"startTime"`
	EndTime   types.TimeString `json:"endTime"`
}

func toPayload(day *domain.DayAvailability) payload {
	rooms := make([]roomPayload, len(day.Rooms))
	for i, room := range day.Rooms {
		slots := make([]slotPayload, len(room.Slots))
		for j, s := range room.Slots {
			slots[j] = slotPayload{StartTime: s.StartTime, EndTime: s.EndTime}
		}
		rooms[i] = roomPayload{
			RoomName:     room.RoomName,
			RoomType:     room.RoomType,
			BuildingName: room.BuildingName,
			Slots:        slots,
		}
	}
	return payload{Rooms: rooms}
}

func (p payload) toDomainRooms() []domain.RoomAvailability {
	rooms := make([]domain.RoomAvailability, len(p.Rooms))
	for i, room := range p.Rooms {
		slots := make([]domain.AvailabilitySlot, len(room.Slots))
		for j, s := range room.Slots {
			slots[j] = domain.AvailabilitySlot{StartTime: s.StartTime, EndTime: s.EndTime}
		}
		rooms[i] = domain.RoomAvailability{
			RoomName:     room.RoomName,
			RoomType:     room.RoomType,
			BuildingName: room.BuildingName,
			Slots:        slots,
		}
	}
	return rooms
}
