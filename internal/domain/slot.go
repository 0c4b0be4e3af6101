package domain

import "github.com/m04kA/SMC-AvailabilityService/pkg/types"

// AvailabilitySlot represents a free interval of a room within one day
type AvailabilitySlot struct {
	StartTime types.TimeString
	EndTime   types.TimeString
}

// IsValid returns true if the slot has a positive length
func (s AvailabilitySlot) IsValid() bool {
	return s.StartTime.IsBefore(s.EndTime)
}

// Overlaps returns true if two slots share any time.
// Slots that only touch at a boundary do not overlap.
func (s AvailabilitySlot) Overlaps(other AvailabilitySlot) bool {
	return s.StartTime.IsBefore(other.EndTime) && s.EndTime.IsAfter(other.StartTime)
}

// Adjoins returns true if other starts exactly where s ends
func (s AvailabilitySlot) Adjoins(other AvailabilitySlot) bool {
	return s.EndTime.Equal(other.StartTime)
}
