package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-StudyRoomService/internal/infra/storage/reservation"
	roomRepo "github.com/m04kA/SMC-StudyRoomService/internal/infra/storage/room"
	"github.com/m04kA/SMC-StudyRoomService/internal/service/reservations/models"
	"github.com/m04kA/SMC-StudyRoomService/internal/usecase/errkind"
)

// Service сервис чтения бронирований и окон недоступности.
// Каждый метод явно определяет, какие связанные записи загружаются.
type Service struct {
	reservationRepo ReservationRepository
	roomRepo        RoomRepository
	blackoutRepo    BlackoutRepository
	logger          Logger
}

// NewService создает новый экземпляр сервиса
func NewService(
	reservationRepo ReservationRepository,
	roomRepo RoomRepository,
	blackoutRepo BlackoutRepository,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		roomRepo:        roomRepo,
		blackoutRepo:    blackoutRepo,
		logger:          logger,
	}
}

// GetByID получает бронирование вместе с комнатой и учреждением
func (s *Service) GetByID(ctx context.Context, id int64) (*models.ReservationDetail, error) {
	s.logger.Info("GetByID: fetching reservation id=%d", id)

	res, err := s.reservationRepo.GetDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("GetByID: reservation id=%d not found", id)
			return nil, domain.NewNotFound(domain.EntityReservation)
		}
		s.logger.Error("GetByID: repository error for reservation id=%d: %v", id, err)
		return nil, errkind.Classify(fmt.Errorf("GetByID - repository error: %w", err), ErrInternal)
	}

	return models.FromDomainDetail(res), nil
}

// GetStudentReservations получает бронирования студента, сначала новые.
// Опционально фильтрует по статусу.
func (s *Service) GetStudentReservations(ctx context.Context, req *models.GetStudentReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetStudentReservations: fetching reservations for student=%d, status=%v", req.StudentID, req.Status)

	filter := domain.StudentReservationsFilter{StudentID: req.StudentID}
	if req.Status != nil {
		status, err := models.ToDomainStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetStudentReservations: invalid status=%s for student=%d", *req.Status, req.StudentID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	list, err := s.reservationRepo.GetByStudentID(ctx, filter)
	if err != nil {
		s.logger.Error("GetStudentReservations: repository error for student=%d: %v", req.StudentID, err)
		return nil, errkind.Classify(fmt.Errorf("GetStudentReservations - repository error: %w", err), ErrInternal)
	}

	s.logger.Info("GetStudentReservations: fetched %d reservations for student=%d", len(list), req.StudentID)
	return models.FromDomainList(list), nil
}

// GetRoomBlackouts получает окна недоступности комнаты на дату
func (s *Service) GetRoomBlackouts(ctx context.Context, req *models.GetRoomBlackoutsRequest) (*models.BlackoutListResponse, error) {
	s.logger.Info("GetRoomBlackouts: room=%d, date=%s", req.RoomID, req.Date.Format(domain.DateFormat))

	if _, err := s.roomRepo.GetByID(ctx, req.RoomID); err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			s.logger.Warn("GetRoomBlackouts: room id=%d not found", req.RoomID)
			return nil, domain.NewNotFound(domain.EntityRoom)
		}
		s.logger.Error("GetRoomBlackouts: failed to get room id=%d: %v", req.RoomID, err)
		return nil, errkind.Classify(fmt.Errorf("GetRoomBlackouts - room lookup: %w", err), ErrInternal)
	}

	list, err := s.blackoutRepo.ListByRoomAndDate(ctx, req.RoomID, req.Date)
	if err != nil {
		s.logger.Error("GetRoomBlackouts: repository error for room=%d: %v", req.RoomID, err)
		return nil, errkind.Classify(fmt.Errorf("GetRoomBlackouts - repository error: %w", err), ErrInternal)
	}

	return models.FromDomainBlackouts(req.RoomID, req.Date, list), nil
}
