package cancel_reservation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-StudyRoomService/internal/api/handlers"
	"github.com/m04kA/SMC-StudyRoomService/internal/api/middleware"
	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
	cancelReservation "github.com/m04kA/SMC-StudyRoomService/internal/usecase/cancel_reservation"
)

const (
	msgCancelled            = "cancelled"
	msgUnauthorized         = "не указан ID пользователя"
	msgInvalidReservationID = "некорректный ID бронирования"
	msgNotFound             = "бронирование не найдено"
	msgForbidden            = "доступ запрещен"
	msgInvalidState         = "бронирование уже отменено"
	msgTooLate              = "отмена возможна не позднее чем за час до начала"
)

type Handler struct {
	useCase CancelReservationUseCase
	logger  Logger
}

func NewHandler(useCase CancelReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/reservations/{reservationId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	reservationID, err := strconv.ParseInt(mux.Vars(r)["reservationId"], 10, 64)
	if err != nil || reservationID <= 0 {
		h.logger.Warn("PATCH /reservations/{id}/cancel - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &cancelReservation.Request{
		ReservationID: reservationID,
		StudentID:     studentID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			handlers.RespondBadRequest(w, msgInvalidReservationID)

		case errors.Is(err, domain.ErrNotFound):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Reservation not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrForbidden):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Access denied: reservation_id=%d, student_id=%d",
				reservationID, studentID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, domain.ErrInvalidState):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Invalid state: reservation_id=%d", reservationID)
			handlers.RespondBadRequest(w, msgInvalidState)

		case errors.Is(err, domain.ErrTooLateToCancel):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Too late: reservation_id=%d", reservationID)
			handlers.RespondBadRequest(w, msgTooLate)

		case errors.Is(err, domain.ErrTransientStorage):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Storage unavailable: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("PATCH /reservations/{id}/cancel - Failed to cancel reservation: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /reservations/{id}/cancel - Reservation cancelled: reservation_id=%d, student_id=%d",
		reservationID, studentID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
