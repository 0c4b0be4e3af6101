package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

func slot(start, end string) AvailabilitySlot {
	return AvailabilitySlot{StartTime: types.MustTimeString(start), EndTime: types.MustTimeString(end)}
}

func TestAvailabilitySlot_Overlaps(t *testing.T) {
	base := slot("11:30", "12:00")

	assert.True(t, base.Overlaps(slot("11:20", "11:40")))
	assert.False(t, base.Overlaps(slot("11:00", "11:30")))
	assert.False(t, base.Overlaps(slot("12:00", "12:30")))
}

func TestAvailabilitySlot_IsValid(t *testing.T) {
	assert.True(t, slot("08:00", "09:00").IsValid())
	assert.False(t, slot("09:00", "09:00").IsValid())
	assert.False(t, slot("10:00", "09:00").IsValid())
}

func TestAvailabilitySlot_Adjoins(t *testing.T) {
	base := slot("11:30", "12:00")

	assert.True(t, base.Adjoins(slot("12:00", "12:30")))
	assert.False(t, base.Adjoins(slot("11:00", "11:30")))
	assert.False(t, base.Adjoins(slot("12:05", "12:30")))
}
