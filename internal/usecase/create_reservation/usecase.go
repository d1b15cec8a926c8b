package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
	"github.com/m04kA/SMC-StudyRoomService/internal/integrations/eventbus"
	"github.com/m04kA/SMC-StudyRoomService/internal/usecase/errkind"
)

const operation = "create"

// UseCase use case для создания бронирования (Commit Coordinator).
// Валидация, квота, поиск конфликтов и вставка выполняются в одной
// транзакции READ COMMITTED под advisory-блокировками комнаты и студента на дату:
// все чтения идут после получения блокировок и видят уже зафиксированные брони.
type UseCase struct {
	reservationRepo ReservationRepository
	validator       *Validator
	quota           *QuotaAccountant
	conflicts       *ConflictDetector
	txManager       TransactionManager
	publisher       EventPublisher
	metrics         MetricsRecorder
	timeProvider    TimeProvider
	policy          Policy
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	roomRepo RoomRepository,
	blackoutRepo BlackoutRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics MetricsRecorder,
	policy Policy,
	logger Logger,
) *UseCase {
	if policy.Location == nil {
		policy.Location = time.Local
	}
	return &UseCase{
		reservationRepo: reservationRepo,
		validator:       NewValidator(roomRepo, policy.BookingWindowDays),
		quota:           NewQuotaAccountant(reservationRepo, policy.MaxDailyCredits),
		conflicts:       NewConflictDetector(reservationRepo, blackoutRepo),
		txManager:       txManager,
		publisher:       publisher,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		policy:          policy,
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute принимает или отклоняет кандидата на бронирование
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	result, err := uc.execute(ctx, req)
	if uc.metrics != nil {
		uc.metrics.RecordOutcome(operation, errkind.Outcome(err, errkind.OutcomeConfirmed))
	}
	return result, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: student=%d, room=%d, facility=%d, date=%s, start=%s, end=%s",
		req.StudentID, req.RoomID, req.FacilityID, req.Date.Format(domain.DateFormat),
		req.StartAt.Format(domain.DateTimeFormat), req.EndAt.Format(domain.DateTimeFormat))

	// 1. Проверка формы запроса
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: invalid request: %v", err)
		return nil, err
	}

	loc := uc.policy.Location
	now := uc.timeProvider.Now().In(loc)
	today := domain.DateOf(now)

	c := &candidate{
		studentID:  req.StudentID,
		roomID:     req.RoomID,
		facilityID: req.FacilityID,
		date:       domain.DateOf(req.Date.In(loc)),
		start:      req.StartAt.In(loc),
		end:        req.EndAt.In(loc),
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	var created *domain.Reservation

	// 2. Все проверки и вставка в одной транзакции
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 2.1. Блокировки в фиксированном порядке: комната, затем студент
		if err := uc.reservationRepo.LockRoomDay(txCtx, c.roomID, c.date); err != nil {
			return fmt.Errorf("lock room day: %w", err)
		}
		if err := uc.reservationRepo.LockStudentDay(txCtx, c.studentID, c.date); err != nil {
			return fmt.Errorf("lock student day: %w", err)
		}

		// 2.2. Валидация
		room, credits, err := uc.validator.Validate(txCtx, c, today)
		if err != nil {
			return err
		}
		c.credits = credits

		// 2.3. Квота
		if err := uc.quota.Check(txCtx, c.studentID, c.date, c.credits); err != nil {
			return err
		}

		// 2.4. Конфликты
		if err := uc.conflicts.Detect(txCtx, c); err != nil {
			return err
		}

		// 2.5. Вставка
		res := &domain.Reservation{
			StudentID:  c.studentID,
			RoomID:     c.roomID,
			FacilityID: room.FacilityID,
			Status:     domain.StatusConfirmed,
			Date:       c.date,
			StartAt:    c.start,
			EndAt:      c.end,
			Credits:    c.credits,
			Active:     active,
		}
		if err := res.CheckInvariants(); err != nil {
			return err
		}

		created, err = uc.reservationRepo.Create(txCtx, res)
		if err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, uc.reject(req, err)
	}

	uc.logger.Info("CreateReservation: created reservation id=%d, student=%d, room=%d, credits=%d",
		created.ID, created.StudentID, created.RoomID, created.Credits)

	uc.publishConfirmed(ctx, created)

	return &Response{
		ID:         created.ID,
		StudentID:  created.StudentID,
		RoomID:     created.RoomID,
		FacilityID: created.FacilityID,
		Status:     string(created.Status),
		Date:       created.Date,
		StartAt:    created.StartAt,
		EndAt:      created.EndAt,
		Credits:    created.Credits,
		CreatedAt:  created.CreatedAt,
	}, nil
}

// reject приводит ошибку к доменной таксономии и логирует ее с подходящим уровнем
func (uc *UseCase) reject(req *Request, err error) error {
	classified := errkind.Classify(err, ErrInternal)

	switch {
	case errors.Is(classified, domain.ErrTransientStorage):
		uc.logger.Warn("CreateReservation: transient storage failure student=%d, room=%d: %v",
			req.StudentID, req.RoomID, err)
	case errors.Is(classified, domain.ErrInvariantViolation), errors.Is(classified, ErrInternal):
		uc.logger.Error("CreateReservation: failed student=%d, room=%d: %v", req.StudentID, req.RoomID, err)
	default:
		uc.logger.Warn("CreateReservation: rejected student=%d, room=%d: %v", req.StudentID, req.RoomID, classified)
	}

	return classified
}

// publishConfirmed публикует событие после фиксации; ошибка только логируется
func (uc *UseCase) publishConfirmed(ctx context.Context, res *domain.Reservation) {
	if uc.publisher == nil {
		return
	}

	event := eventbus.ReservationConfirmed{
		ReservationID: res.ID,
		StudentID:     res.StudentID,
		RoomID:        res.RoomID,
		FacilityID:    res.FacilityID,
		Date:          res.Date.Format(domain.DateFormat),
		StartAt:       res.StartAt,
		EndAt:         res.EndAt,
		Credits:       res.Credits,
	}

	if err := uc.publisher.PublishReservationConfirmed(ctx, event); err != nil {
		uc.logger.Warn("CreateReservation: failed to publish event for reservation id=%d: %v", res.ID, err)
	}
}
