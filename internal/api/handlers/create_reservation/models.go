package create_reservation

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
	createReservation "github.com/m04kA/SMC-StudyRoomService/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	RoomID     int64  `json:"room_id"`
	FacilityID int64  `json:"facility_id"`
	Date       string `json:"reservation_date"`       // "2025-03-10"
	StartAt    string `json:"reservation_start_date"` // "2025-03-10T10:00:00"
	EndAt      string `json:"reservation_end_date"`   // "2025-03-10T11:00:00"
	// Кредиты считаются по длительности; присланное значение должно с ней совпадать
	Credits *int  `json:"reservation_count,omitempty"`
	Active  *bool `json:"use_tf,omitempty"`
}

// CreateReservationResponse HTTP response model
type CreateReservationResponse struct {
	ReservationID int64  `json:"reservation_id"`
	Status        string `json:"reservation_status"`
	Date          string `json:"reservation_date"`
	StartAt       string `json:"reservation_start_date"`
	EndAt         string `json:"reservation_end_date"`
	Credits       int    `json:"reservation_count"`
	Message       string `json:"message"`
}

// errCreditsMismatch reservation_count не соответствует длительности интервала
var errCreditsMismatch = errors.New("reservation_count does not match duration")

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Дата и время без смещения трактуются в часовом поясе сервиса.
func (r *CreateReservationRequest) ToUseCaseRequest(studentID int64, loc *time.Location) (*createReservation.Request, error) {
	date, err := time.ParseInLocation(domain.DateFormat, r.Date, loc)
	if err != nil {
		return nil, fmt.Errorf("reservation_date: %w", err)
	}

	start, err := time.ParseInLocation(domain.DateTimeFormat, r.StartAt, loc)
	if err != nil {
		return nil, fmt.Errorf("reservation_start_date: %w", err)
	}

	end, err := time.ParseInLocation(domain.DateTimeFormat, r.EndAt, loc)
	if err != nil {
		return nil, fmt.Errorf("reservation_end_date: %w", err)
	}

	// Недопустимую длительность отклоняет валидатор use case
	if r.Credits != nil {
		if credits, ok := domain.CreditsFor(end.Sub(start)); ok && credits != *r.Credits {
			return nil, fmt.Errorf("%w: got %d, expected %d", errCreditsMismatch, *r.Credits, credits)
		}
	}

	return &createReservation.Request{
		StudentID:  studentID,
		RoomID:     r.RoomID,
		FacilityID: r.FacilityID,
		Date:       date,
		StartAt:    start,
		EndAt:      end,
		Active:     r.Active,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response, loc *time.Location) *CreateReservationResponse {
	return &CreateReservationResponse{
		ReservationID: resp.ID,
		Status:        resp.Status,
		Date:          resp.Date.In(loc).Format(domain.DateFormat),
		StartAt:       resp.StartAt.In(loc).Format(domain.DateTimeFormat),
		EndAt:         resp.EndAt.In(loc).Format(domain.DateTimeFormat),
		Credits:       resp.Credits,
		Message:       msgCreated,
	}
}
