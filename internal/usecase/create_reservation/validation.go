package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
	roomRepo "github.com/m04kA/SMC-StudyRoomService/internal/infra/storage/room"
)

// validateRequest проверяет форму запроса до любых обращений к хранилищу
func validateRequest(req *Request) error {
	if req.StudentID <= 0 {
		return fmt.Errorf("%w: studentID must be positive", domain.ErrValidation)
	}

	if req.RoomID <= 0 {
		return fmt.Errorf("%w: roomID must be positive", domain.ErrValidation)
	}

	if req.FacilityID <= 0 {
		return fmt.Errorf("%w: facilityID must be positive", domain.ErrValidation)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrValidation)
	}

	if req.StartAt.IsZero() || req.EndAt.IsZero() {
		return fmt.Errorf("%w: start and end are required", domain.ErrValidation)
	}

	return nil
}

// Validator проверяет структурную и временную корректность кандидата.
// Не имеет побочных эффектов, кроме чтения справочника комнат.
type Validator struct {
	rooms      RoomRepository
	windowDays int
}

// NewValidator создает валидатор с окном бронирования windowDays дней
func NewValidator(rooms RoomRepository, windowDays int) *Validator {
	return &Validator{rooms: rooms, windowDays: windowDays}
}

// Validate выполняет проверки по порядку и останавливается на первой ошибке:
// комната и учреждение, окно дат, совпадение дат, порядок времени,
// длительность 60/120 минут, часы работы комнаты.
// Возвращает комнату и стоимость бронирования в кредитах.
func (v *Validator) Validate(ctx context.Context, c *candidate, today time.Time) (*domain.Room, int, error) {
	// 1. Комната и учреждение
	room, err := v.rooms.GetByID(ctx, c.roomID)
	if err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			return nil, 0, domain.NewNotFound(domain.EntityRoom)
		}
		return nil, 0, fmt.Errorf("get room id=%d: %w", c.roomID, err)
	}

	if _, err := v.rooms.GetFacilityByID(ctx, c.facilityID); err != nil {
		if errors.Is(err, roomRepo.ErrFacilityNotFound) {
			return nil, 0, domain.NewNotFound(domain.EntityFacility)
		}
		return nil, 0, fmt.Errorf("get facility id=%d: %w", c.facilityID, err)
	}

	if room.FacilityID != c.facilityID {
		return nil, 0, domain.ValidationError(domain.MsgRoomFacilityMismatch)
	}

	// 2. Дата в окне [today, today+windowDays]
	lastAllowed := today.AddDate(0, 0, v.windowDays)
	if c.date.Before(today) || c.date.After(lastAllowed) {
		return nil, 0, domain.ValidationError(domain.MsgDateOutOfRange)
	}

	// 3. Начало и конец в ту же дату
	if !domain.SameDate(c.start, c.date) || !domain.SameDate(c.end, c.date) {
		return nil, 0, domain.ValidationError(domain.MsgDateTimeMismatch)
	}

	// 4. Конец позже начала
	if !c.end.After(c.start) {
		return nil, 0, domain.ValidationError(domain.MsgEndBeforeStart)
	}

	// 5. Только 60 или 120 минут
	credits, ok := domain.CreditsFor(c.end.Sub(c.start))
	if !ok {
		return nil, 0, domain.ValidationError(domain.MsgInvalidDuration)
	}

	// 6. Часы работы, если заданы
	within, err := room.WithinOperatingHours(c.start, c.end)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: room id=%d has malformed operating hours: %v",
			domain.ErrInvariantViolation, room.ID, err)
	}
	if !within {
		return nil, 0, domain.ValidationError(domain.MsgOutsideOperatingHrs)
	}

	return room, credits, nil
}
