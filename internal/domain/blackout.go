package domain

import "time"

// BlackoutWindow is an administrator-declared interval during which a room cannot be booked
type BlackoutWindow struct {
	ID         int64
	RoomID     int64
	FacilityID int64
	Date       time.Time
	StartAt    time.Time
	EndAt      time.Time
	Reason     *string
}

// Overlaps reports whether the blackout intersects [start, end)
func (b *BlackoutWindow) Overlaps(start, end time.Time) bool {
	return Overlaps(b.StartAt, b.EndAt, start, end)
}
