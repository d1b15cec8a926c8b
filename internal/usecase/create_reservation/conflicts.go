package create_reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
)

// OverlapFinder источник пересекающихся подтвержденных бронирований
type OverlapFinder interface {
	FindRoomOverlapping(ctx context.Context, roomID int64, date, start, end time.Time) (*domain.Reservation, error)
	FindStudentOverlapping(ctx context.Context, studentID int64, date, start, end time.Time) (*domain.Reservation, error)
}

// ConflictDetector ищет пересечения кандидата с бронированиями студента,
// бронированиями комнаты и окнами недоступности, в этом порядке.
type ConflictDetector struct {
	reservations OverlapFinder
	blackouts    BlackoutRepository
}

// NewConflictDetector создает детектор конфликтов
func NewConflictDetector(reservations OverlapFinder, blackouts BlackoutRepository) *ConflictDetector {
	return &ConflictDetector{reservations: reservations, blackouts: blackouts}
}

// Detect возвращает ConflictError первого найденного конфликта или nil
func (d *ConflictDetector) Detect(ctx context.Context, c *candidate) error {
	own, err := d.reservations.FindStudentOverlapping(ctx, c.studentID, c.date, c.start, c.end)
	if err != nil {
		return fmt.Errorf("find student overlapping: %w", err)
	}
	if own != nil && own.Overlaps(c.start, c.end) {
		return domain.NewConflict(domain.ConflictRequester, own.ID)
	}

	taken, err := d.reservations.FindRoomOverlapping(ctx, c.roomID, c.date, c.start, c.end)
	if err != nil {
		return fmt.Errorf("find room overlapping: %w", err)
	}
	if taken != nil && taken.Overlaps(c.start, c.end) {
		return domain.NewConflict(domain.ConflictRoom, taken.ID)
	}

	blackout, err := d.blackouts.FindOverlapping(ctx, c.roomID, c.date, c.start, c.end)
	if err != nil {
		return fmt.Errorf("find blackout overlapping: %w", err)
	}
	if blackout != nil && blackout.Overlaps(c.start, c.end) {
		return domain.NewConflict(domain.ConflictBlackout, blackout.ID)
	}

	return nil
}
