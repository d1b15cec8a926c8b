package domain

import (
	"fmt"
	"time"
)

// ReservationStatus is the lifecycle state of a reservation
type ReservationStatus string

const (
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
)

// ParseReservationStatus converts a stored token into a status
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch ReservationStatus(s) {
	case StatusConfirmed, StatusCancelled:
		return ReservationStatus(s), nil
	default:
		return "", fmt.Errorf("%w: unknown reservation status %q", ErrInvariantViolation, s)
	}
}

// Reservation is a student's booking of a room interval
type Reservation struct {
	ID         int64
	StudentID  int64
	RoomID     int64
	FacilityID int64
	Status     ReservationStatus

	Date    time.Time // calendar date, midnight in service location
	StartAt time.Time
	EndAt   time.Time
	Credits int

	Active     bool
	CancelDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Populated only by detail projections
	Room     *Room
	Facility *Facility
}

// IsConfirmed returns true if the reservation occupies its interval
func (r *Reservation) IsConfirmed() bool {
	return r.Status == StatusConfirmed
}

// Duration returns EndAt - StartAt
func (r *Reservation) Duration() time.Duration {
	return r.EndAt.Sub(r.StartAt)
}

// Overlaps reports whether the reservation intersects [start, end)
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return Overlaps(r.StartAt, r.EndAt, start, end)
}

// CancelDeadline is the last instant (exclusive) at which the reservation may be cancelled
func (r *Reservation) CancelDeadline(notice time.Duration) time.Time {
	return r.StartAt.Add(-notice)
}

// CheckCancel evaluates the cancel transition preconditions in order:
// ownership, current status, notice period.
func (r *Reservation) CheckCancel(studentID int64, now time.Time, notice time.Duration) error {
	if r.StudentID != studentID {
		return ErrForbidden
	}
	if r.Status != StatusConfirmed {
		return fmt.Errorf("%w: status is %s", ErrInvalidState, r.Status)
	}
	if !now.Before(r.CancelDeadline(notice)) {
		return fmt.Errorf("%w: must cancel at least %d minutes before start", ErrTooLateToCancel, int(notice.Minutes()))
	}
	return nil
}

// Cancel applies the Confirmed -> Cancelled transition after CheckCancel succeeds.
// Cancelled is terminal.
func (r *Reservation) Cancel(studentID int64, now time.Time, notice time.Duration) error {
	if err := r.CheckCancel(studentID, now, notice); err != nil {
		return err
	}
	today := DateOf(now)
	r.Status = StatusCancelled
	r.CancelDate = &today
	return nil
}

// CheckInvariants verifies the structural invariants a confirmed reservation must hold
func (r *Reservation) CheckInvariants() error {
	if !r.StartAt.Before(r.EndAt) {
		return fmt.Errorf("%w: reservation %d start %s is not before end %s",
			ErrInvariantViolation, r.ID, r.StartAt.Format(DateTimeFormat), r.EndAt.Format(DateTimeFormat))
	}
	if !SameDate(r.StartAt, r.Date) || !SameDate(r.EndAt, r.Date) {
		return fmt.Errorf("%w: reservation %d interval is not on %s",
			ErrInvariantViolation, r.ID, r.Date.Format(DateFormat))
	}
	credits, ok := CreditsFor(r.Duration())
	if !ok || credits != r.Credits {
		return fmt.Errorf("%w: reservation %d has %d credits for %s",
			ErrInvariantViolation, r.ID, r.Credits, r.Duration())
	}
	return nil
}

// StudentReservationsFilter narrows a student's reservation list
type StudentReservationsFilter struct {
	StudentID int64
	Status    *ReservationStatus
}
