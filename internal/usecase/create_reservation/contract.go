package create_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
	"github.com/m04kA/SMC-StudyRoomService/internal/integrations/eventbus"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	LockRoomDay(ctx context.Context, roomID int64, date time.Time) error
	LockStudentDay(ctx context.Context, studentID int64, date time.Time) error
	SumActiveCredits(ctx context.Context, studentID int64, date time.Time) (int, error)
	FindRoomOverlapping(ctx context.Context, roomID int64, date, start, end time.Time) (*domain.Reservation, error)
	FindStudentOverlapping(ctx context.Context, studentID int64, date, start, end time.Time) (*domain.Reservation, error)
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
}

// RoomRepository интерфейс справочника комнат
type RoomRepository interface {
	GetByID(ctx context.Context, roomID int64) (*domain.Room, error)
	GetFacilityByID(ctx context.Context, facilityID int64) (*domain.Facility, error)
}

// BlackoutRepository интерфейс репозитория окон недоступности
type BlackoutRepository interface {
	FindOverlapping(ctx context.Context, roomID int64, date, start, end time.Time) (*domain.BlackoutWindow, error)
}

// EventPublisher интерфейс издателя событий
type EventPublisher interface {
	PublishReservationConfirmed(ctx context.Context, event eventbus.ReservationConfirmed) error
}

// MetricsRecorder интерфейс для учета исходов операции
type MetricsRecorder interface {
	RecordOutcome(operation, result string)
}

// TransactionManager интерфейс для управления транзакциями (READ COMMITTED)
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
