package reservations

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований (только чтение)
type ReservationRepository interface {
	GetDetailByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetByStudentID(ctx context.Context, filter domain.StudentReservationsFilter) ([]*domain.Reservation, error)
}

// RoomRepository интерфейс справочника комнат
type RoomRepository interface {
	GetByID(ctx context.Context, roomID int64) (*domain.Room, error)
}

// BlackoutRepository интерфейс репозитория окон недоступности
type BlackoutRepository interface {
	ListByRoomAndDate(ctx context.Context, roomID int64, date time.Time) ([]*domain.BlackoutWindow, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
