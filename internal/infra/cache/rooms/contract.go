package rooms

import (
	"context"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
)

// Source основной источник справочника комнат (PostgreSQL)
type Source interface {
	GetByID(ctx context.Context, roomID int64) (*domain.Room, error)
	GetFacilityByID(ctx context.Context, facilityID int64) (*domain.Facility, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}
