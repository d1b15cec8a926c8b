package room

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
	"github.com/m04kA/SMC-StudyRoomService/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudyRoomService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-StudyRoomService/pkg/types"
)

const (
	roomsTable      = "study_rooms"
	facilitiesTable = "facilities"
)

// Repository читает справочник комнат и учреждений.
// Ядро бронирования этот справочник не изменяет.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория комнат
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает комнату вместе с учреждением, которому она принадлежит
func (r *Repository) GetByID(ctx context.Context, roomID int64) (*domain.Room, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"sr.id",
		"sr.facility_id",
		"sr.name",
		"sr.floor",
		"sr.capacity",
		"sr.equipment",
		"sr.open_time",
		"sr.close_time",
		"f.id",
		"f.name",
		"f.address",
		"f.description",
	).
		From(roomsTable + " sr").
		Join(facilitiesTable + " f ON f.id = sr.facility_id").
		Where(squirrel.Eq{"sr.id": roomID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		room                domain.Room
		facility            domain.Facility
		openTime, closeTime *types.TimeString
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&room.ID,
		&room.FacilityID,
		&room.Name,
		&room.Floor,
		&room.Capacity,
		&room.Equipment,
		&openTime,
		&closeTime,
		&facility.ID,
		&facility.Name,
		&facility.Address,
		&facility.Description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan room: %w", ErrScanRow, err)
	}

	room.OpenTime = openTime
	room.CloseTime = closeTime
	room.Facility = &facility

	return &room, nil
}

// GetFacilityByID получает учреждение по ID
func (r *Repository) GetFacilityByID(ctx context.Context, facilityID int64) (*domain.Facility, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "address", "description").
		From(facilitiesTable).
		Where(squirrel.Eq{"id": facilityID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetFacilityByID - build select query: %v", ErrBuildQuery, err)
	}

	var facility domain.Facility
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&facility.ID,
		&facility.Name,
		&facility.Address,
		&facility.Description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFacilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetFacilityByID - scan facility: %w", ErrScanRow, err)
	}

	return &facility, nil
}
