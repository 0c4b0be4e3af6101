package domain

import (
	"time"
)

// SourceStatus describes where a day's availability came from
type SourceStatus string

const (
	SourceFresh  SourceStatus = "fresh"
	SourceStale  SourceStatus = "stale"
	SourceFailed SourceStatus = "failed"
)

// ErrorKind classifies a failed upstream lookup
type ErrorKind string

const (
	ErrorKindTimeout     ErrorKind = "upstream_timeout"
	ErrorKindUnavailable ErrorKind = "upstream_unavailable"
	ErrorKindBadResponse ErrorKind = "upstream_bad_response"
	ErrorKindAuth        ErrorKind = "auth_error"
	ErrorKindCancelled   ErrorKind = "cancelled"
	ErrorKindInternal    ErrorKind = "internal"
)

// RoomAvailability represents the free slots of one room on one day
type RoomAvailability struct {
	RoomName     string
	RoomType     string
	BuildingName string
	Slots        []AvailabilitySlot // sorted, non-overlapping
}

// DayError is the per-day failure marker used inside week/month views
type DayError struct {
	Kind    ErrorKind
	Message string
}

// DayAvailability represents availability of all rooms for a single date.
// Values handed out by the cache are shared and must be treated as read-only.
type DayAvailability struct {
	Date         time.Time
	Rooms        []RoomAvailability
	FetchedAt    time.Time
	SourceStatus SourceStatus
	Error        *DayError // set only when SourceStatus == SourceFailed
}

// IsFailed returns true if the day carries an error marker instead of data
func (d *DayAvailability) IsFailed() bool {
	return d.SourceStatus == SourceFailed
}

// IsStale returns true if the day was served from expired cache data
func (d *DayAvailability) IsStale() bool {
	return d.SourceStatus == SourceStale
}

// WithStatus returns a shallow copy with a different source status.
// Rooms are shared with the original value.
func (d *DayAvailability) WithStatus(status SourceStatus) *DayAvailability {
	cp := *d
	cp.SourceStatus = status
	return &cp
}

// FailedDay builds the error marker for a date that could not be resolved
func FailedDay(date time.Time, kind ErrorKind, message string) *DayAvailability {
	return &DayAvailability{
		Date:         date,
		Rooms:        []RoomAvailability{},
		SourceStatus: SourceFailed,
		Error: &DayError{
			Kind:    kind,
			Message: message,
		},
	}
}
