package domain

import (
	"time"

	"github.com/m04kA/SMC-StudyRoomService/pkg/types"
)

// Facility is a building or site that owns study rooms
type Facility struct {
	ID          int64
	Name        string
	Address     string
	Description string
}

// Room is a bookable study room. Read-only for the reservation core.
type Room struct {
	ID         int64
	FacilityID int64
	Name       string
	Floor      string
	Capacity   int
	Equipment  *string

	// Operating hours; both nil means the room has no restriction
	OpenTime  *types.TimeString
	CloseTime *types.TimeString

	// Facility is populated by lookups that join the owning facility
	Facility *Facility
}

// HasOperatingHours reports whether the room restricts bookable time of day
func (r *Room) HasOperatingHours() bool {
	return r.OpenTime != nil && r.CloseTime != nil &&
		!r.OpenTime.IsZero() && !r.CloseTime.IsZero()
}

// WithinOperatingHours reports whether [start, end) lies inside the room's hours.
// Rooms without operating hours accept any interval.
func (r *Room) WithinOperatingHours(start, end time.Time) (bool, error) {
	if !r.HasOperatingHours() {
		return true, nil
	}

	open, err := r.OpenTime.SinceMidnight()
	if err != nil {
		return false, err
	}
	closing, err := r.CloseTime.SinceMidnight()
	if err != nil {
		return false, err
	}

	startOffset := start.Sub(DateOf(start))
	endOffset := end.Sub(DateOf(end))

	return startOffset >= open && endOffset <= closing, nil
}
