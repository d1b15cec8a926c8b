package get_my_reservations

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-StudyRoomService/internal/api/handlers"
	"github.com/m04kA/SMC-StudyRoomService/internal/api/middleware"
	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
	"github.com/m04kA/SMC-StudyRoomService/internal/service/reservations"
	"github.com/m04kA/SMC-StudyRoomService/internal/service/reservations/models"
	"github.com/m04kA/SMC-StudyRoomService/pkg/ptr"
)

const (
	msgUnauthorized  = "не указан ID пользователя"
	msgInvalidStatus = "некорректный статус, ожидается confirmed или cancelled"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/reservations/me?status=confirmed
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	req := &models.GetStudentReservationsRequest{StudentID: studentID}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = ptr.Ptr(status)
	}

	list, err := h.service.GetStudentReservations(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidStatus)
		case errors.Is(err, domain.ErrTransientStorage):
			handlers.RespondServiceUnavailable(w)
		default:
			h.logger.Error("GET /reservations/me - Failed to get reservations: student_id=%d, error=%v", studentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /reservations/me - Returned %d reservations: student_id=%d", list.TotalCount, studentID)
	handlers.RespondJSON(w, http.StatusOK, list)
}
