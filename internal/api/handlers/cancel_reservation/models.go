package cancel_reservation

import (
	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
	cancelReservation "github.com/m04kA/SMC-StudyRoomService/internal/usecase/cancel_reservation"
)

// CancelReservationResponse HTTP response model
type CancelReservationResponse struct {
	ReservationID int64  `json:"reservation_id"`
	Status        string `json:"reservation_status"`
	CancelDate    string `json:"cancel_date"` // "2025-03-10"
	Message       string `json:"message"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelReservation.Response) *CancelReservationResponse {
	return &CancelReservationResponse{
		ReservationID: resp.ReservationID,
		Status:        resp.Status,
		CancelDate:    resp.CancelDate.Format(domain.DateFormat),
		Message:       msgCancelled,
	}
}
