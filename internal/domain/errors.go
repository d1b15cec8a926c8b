package domain

import (
	"errors"
	"fmt"
)

// Error kinds returned by the reservation core. Callers match them with errors.Is.
var (
	// ErrValidation malformed or policy-violating request
	ErrValidation = errors.New("validation error")

	// ErrNotFound referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrQuotaExceeded daily credit limit would be exceeded
	ErrQuotaExceeded = errors.New("daily quota exceeded")

	// ErrConflict the interval overlaps an existing booking or blackout
	ErrConflict = errors.New("reservation conflict")

	// ErrForbidden requester does not own the reservation
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState reservation is not in a state allowing the transition
	ErrInvalidState = errors.New("invalid reservation state")

	// ErrTooLateToCancel cancellation notice period has passed
	ErrTooLateToCancel = errors.New("too late to cancel")

	// ErrTransientStorage storage failed or timed out; caller may retry
	ErrTransientStorage = errors.New("transient storage error")

	// ErrInvariantViolation stored data breaks a domain invariant; indicates a bug
	ErrInvariantViolation = errors.New("invariant violation")
)

// Validation messages
const (
	MsgDateOutOfRange       = "date out of range"
	MsgDateTimeMismatch     = "date/time mismatch"
	MsgEndBeforeStart       = "end before start"
	MsgInvalidDuration      = "invalid duration"
	MsgOutsideOperatingHrs  = "outside operating hours"
	MsgRoomFacilityMismatch = "room does not belong to facility"
)

// ValidationError returns an ErrValidation carrying msg
func ValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Entity names for NotFoundError
const (
	EntityRoom        = "room"
	EntityFacility    = "facility"
	EntityReservation = "reservation"
)

// NotFoundError reports which entity was missing
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// Is makes errors.Is(err, ErrNotFound) match
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFound returns a NotFoundError for entity
func NewNotFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

// ConflictKind identifies what the candidate interval collided with
type ConflictKind string

const (
	ConflictRoom      ConflictKind = "room"
	ConflictRequester ConflictKind = "requester"
	ConflictBlackout  ConflictKind = "blackout"
)

// ConflictError reports the first conflict encountered
type ConflictError struct {
	Kind ConflictKind
	// ConflictingID is the reservation or blackout id that collided, 0 if unknown
	ConflictingID int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("reservation conflict (%s)", e.Kind)
}

// Is makes errors.Is(err, ErrConflict) match
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewConflict returns a ConflictError of kind
func NewConflict(kind ConflictKind, conflictingID int64) error {
	return &ConflictError{Kind: kind, ConflictingID: conflictingID}
}

// ConflictKindOf extracts the conflict kind from err
func ConflictKindOf(err error) (ConflictKind, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict.Kind, true
	}
	return "", false
}
