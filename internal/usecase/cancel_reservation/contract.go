package cancel_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
	"github.com/m04kA/SMC-StudyRoomService/internal/integrations/eventbus"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error)
	Cancel(ctx context.Context, id int64, cancelDate time.Time) error
}

// EventPublisher интерфейс издателя событий
type EventPublisher interface {
	PublishReservationCancelled(ctx context.Context, event eventbus.ReservationCancelled) error
}

// MetricsRecorder интерфейс для учета исходов операции
type MetricsRecorder interface {
	RecordOutcome(operation, result string)
}

// TransactionManager интерфейс для управления транзакциями (READ COMMITTED)
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
