package cancel_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-StudyRoomService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-StudyRoomService/internal/integrations/eventbus"
	"github.com/m04kA/SMC-StudyRoomService/internal/usecase/errkind"
)

const operation = "cancel"

// UseCase переход Confirmed -> Cancelled.
// Строка бронирования читается с FOR UPDATE, предусловия проверяются на заблокированной
// строке, обновление дополнительно защищено условием status = 'confirmed'.
type UseCase struct {
	reservationRepo ReservationRepository
	txManager       TransactionManager
	publisher       EventPublisher
	metrics         MetricsRecorder
	timeProvider    TimeProvider
	notice          time.Duration
	loc             *time.Location
	logger          Logger
}

// NewUseCase создает новый экземпляр use case.
// notice минимальный интервал между отменой и началом бронирования.
func NewUseCase(
	reservationRepo ReservationRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics MetricsRecorder,
	notice time.Duration,
	loc *time.Location,
	logger Logger,
) *UseCase {
	if loc == nil {
		loc = time.Local
	}
	return &UseCase{
		reservationRepo: reservationRepo,
		txManager:       txManager,
		publisher:       publisher,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		notice:          notice,
		loc:             loc,
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute отменяет бронирование от имени студента
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	result, err := uc.execute(ctx, req)
	if uc.metrics != nil {
		uc.metrics.RecordOutcome(operation, errkind.Outcome(err, errkind.OutcomeCancelled))
	}
	return result, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelReservation: reservation=%d, student=%d", req.ReservationID, req.StudentID)

	if req.ReservationID <= 0 || req.StudentID <= 0 {
		return nil, fmt.Errorf("%w: reservationID and studentID must be positive", domain.ErrValidation)
	}

	now := uc.timeProvider.Now().In(uc.loc)
	var cancelled *domain.Reservation

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Существование, с блокировкой строки
		res, err := uc.reservationRepo.GetByIDForUpdate(txCtx, req.ReservationID)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return domain.NewNotFound(domain.EntityReservation)
			}
			return fmt.Errorf("get reservation: %w", err)
		}

		// 2-4. Владелец, статус, срок отмены
		if err := res.Cancel(req.StudentID, now, uc.notice); err != nil {
			return err
		}

		if err := uc.reservationRepo.Cancel(txCtx, res.ID, *res.CancelDate); err != nil {
			if errors.Is(err, reservationRepo.ErrCannotCancel) {
				return fmt.Errorf("%w: reservation changed concurrently", domain.ErrInvalidState)
			}
			return fmt.Errorf("cancel reservation: %w", err)
		}

		cancelled = res
		return nil
	})

	if err != nil {
		classified := errkind.Classify(err, ErrInternal)
		switch {
		case errors.Is(classified, ErrInternal), errors.Is(classified, domain.ErrInvariantViolation):
			uc.logger.Error("CancelReservation: failed reservation=%d: %v", req.ReservationID, err)
		default:
			uc.logger.Warn("CancelReservation: rejected reservation=%d, student=%d: %v",
				req.ReservationID, req.StudentID, classified)
		}
		return nil, classified
	}

	uc.logger.Info("CancelReservation: cancelled reservation id=%d", cancelled.ID)

	if uc.publisher != nil {
		event := eventbus.ReservationCancelled{
			ReservationID: cancelled.ID,
			StudentID:     cancelled.StudentID,
			RoomID:        cancelled.RoomID,
			Date:          cancelled.Date.Format(domain.DateFormat),
			StartAt:       cancelled.StartAt,
			CancelDate:    cancelled.CancelDate.Format(domain.DateFormat),
		}
		if err := uc.publisher.PublishReservationCancelled(ctx, event); err != nil {
			uc.logger.Warn("CancelReservation: failed to publish event for reservation id=%d: %v", cancelled.ID, err)
		}
	}

	return &Response{
		ReservationID: cancelled.ID,
		Status:        string(cancelled.Status),
		CancelDate:    *cancelled.CancelDate,
	}, nil
}
