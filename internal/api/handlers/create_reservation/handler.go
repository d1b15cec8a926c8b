package create_reservation

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/m04kA/SMC-StudyRoomService/internal/api/handlers"
	"github.com/m04kA/SMC-StudyRoomService/internal/api/middleware"
	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
)

const (
	msgCreated            = "created"
	msgUnauthorized       = "не указан ID пользователя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateTime    = "некорректный формат даты или времени, ожидается YYYY-MM-DD и YYYY-MM-DDTHH:MM:SS"
	msgInvalidReservation = "некорректные параметры бронирования"
	msgCreditsMismatch    = "reservation_count не соответствует длительности бронирования"
	msgNotFound           = "комната или учреждение не найдены"
	msgQuotaExceeded      = "превышен дневной лимит бронирований"
	msgRoomConflict       = "комната уже забронирована на это время"
	msgRequesterConflict  = "у вас уже есть бронирование на это время"
	msgBlackoutConflict   = "комната недоступна в выбранное время"
	msgConflict           = "выбранное время недоступно"
)

var validationMessages = map[string]string{
	domain.MsgDateOutOfRange:       "дата бронирования вне допустимого окна",
	domain.MsgDateTimeMismatch:     "время не соответствует дате бронирования",
	domain.MsgEndBeforeStart:       "время окончания раньше времени начала",
	domain.MsgInvalidDuration:      "длительность бронирования должна быть 1 или 2 часа",
	domain.MsgOutsideOperatingHrs:  "время вне часов работы комнаты",
	domain.MsgRoomFacilityMismatch: "комната не принадлежит учреждению",
}

type Handler struct {
	useCase  CreateReservationUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase CreateReservationUseCase, location *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(studentID, h.location)
	if err != nil {
		h.logger.Warn("POST /reservations - Failed to parse request: %v", err)
		if errors.Is(err, errCreditsMismatch) {
			handlers.RespondBadRequest(w, msgCreditsMismatch)
			return
		}
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		h.respondError(w, &req, studentID, err)
		return
	}

	h.logger.Info("POST /reservations - Reservation created: reservation_id=%d, student_id=%d, room_id=%d",
		result.ID, studentID, req.RoomID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result, h.location))
}

func (h *Handler) respondError(w http.ResponseWriter, req *CreateReservationRequest, studentID int64, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		h.logger.Warn("POST /reservations - Validation failed: student_id=%d, room_id=%d, error=%v",
			studentID, req.RoomID, err)
		handlers.RespondBadRequest(w, validationMessage(err))

	case errors.Is(err, domain.ErrNotFound):
		h.logger.Warn("POST /reservations - Not found: room_id=%d, facility_id=%d, error=%v",
			req.RoomID, req.FacilityID, err)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, domain.ErrQuotaExceeded):
		h.logger.Warn("POST /reservations - Quota exceeded: student_id=%d", studentID)
		handlers.RespondBadRequest(w, msgQuotaExceeded)

	case errors.Is(err, domain.ErrConflict):
		kind, _ := domain.ConflictKindOf(err)
		h.logger.Warn("POST /reservations - Conflict: student_id=%d, room_id=%d, kind=%s",
			studentID, req.RoomID, kind)
		handlers.RespondConflict(w, conflictMessage(kind))

	case errors.Is(err, domain.ErrTransientStorage):
		h.logger.Warn("POST /reservations - Storage unavailable: student_id=%d, error=%v", studentID, err)
		handlers.RespondServiceUnavailable(w)

	default:
		h.logger.Error("POST /reservations - Failed to create reservation: student_id=%d, room_id=%d, error=%v",
			studentID, req.RoomID, err)
		handlers.RespondInternalError(w)
	}
}

func conflictMessage(kind domain.ConflictKind) string {
	switch kind {
	case domain.ConflictRoom:
		return msgRoomConflict
	case domain.ConflictRequester:
		return msgRequesterConflict
	case domain.ConflictBlackout:
		return msgBlackoutConflict
	default:
		return msgConflict
	}
}

func validationMessage(err error) string {
	text := err.Error()
	for reason, msg := range validationMessages {
		if strings.HasSuffix(text, reason) {
			return msg
		}
	}
	return msgInvalidReservation
}
