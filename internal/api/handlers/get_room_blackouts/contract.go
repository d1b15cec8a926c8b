package get_room_blackouts

import (
	"context"

	"github.com/m04kA/SMC-StudyRoomService/internal/service/reservations/models"
)

type ReservationService interface {
	GetRoomBlackouts(ctx context.Context, req *models.GetRoomBlackoutsRequest) (*models.BlackoutListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
