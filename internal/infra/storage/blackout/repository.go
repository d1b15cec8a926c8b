package blackout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
	"github.com/m04kA/SMC-StudyRoomService/internal/infra/storage/localtime"
	"github.com/m04kA/SMC-StudyRoomService/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudyRoomService/pkg/psqlbuilder"
)

const table = "blackout_windows"

var columns = []string{
	"id",
	"room_id",
	"facility_id",
	"blackout_date",
	"start_at",
	"end_at",
	"reason",
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Repository читает окна недоступности комнат
type Repository struct {
	db  dbmetrics.DBExecutor
	loc *time.Location
}

// NewRepository создает новый экземпляр репозитория окон недоступности
func NewRepository(db dbmetrics.DBExecutor, loc *time.Location) *Repository {
	return &Repository{db: db, loc: loc}
}

// FindOverlapping возвращает первое окно недоступности комнаты на дату,
// пересекающее [start, end), или nil
func (r *Repository) FindOverlapping(ctx context.Context, roomID int64, date, start, end time.Time) (*domain.BlackoutWindow, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"room_id": roomID}).
		Where(squirrel.Eq{"blackout_date": localtime.Date(date, r.loc)}).
		Where(squirrel.Lt{"start_at": localtime.Wall(end, r.loc)}).
		Where(squirrel.Gt{"end_at": localtime.Wall(start, r.loc)}).
		OrderBy("start_at ASC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	b, err := r.scan(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - scan blackout: %w", ErrScanRow, err)
	}

	return b, nil
}

// ListByRoomAndDate возвращает все окна недоступности комнаты на дату по возрастанию начала
func (r *Repository) ListByRoomAndDate(ctx context.Context, roomID int64, date time.Time) ([]*domain.BlackoutWindow, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"room_id": roomID}).
		Where(squirrel.Eq{"blackout_date": localtime.Date(date, r.loc)}).
		OrderBy("start_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByRoomAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByRoomAndDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.BlackoutWindow, 0)
	for rows.Next() {
		b, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByRoomAndDate - scan row: %w", ErrScanRow, err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByRoomAndDate - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

func (r *Repository) scan(row rowScanner) (*domain.BlackoutWindow, error) {
	var b domain.BlackoutWindow
	if err := row.Scan(
		&b.ID,
		&b.RoomID,
		&b.FacilityID,
		&b.Date,
		&b.StartAt,
		&b.EndAt,
		&b.Reason,
	); err != nil {
		return nil, err
	}

	b.Date = localtime.In(b.Date, r.loc)
	b.StartAt = localtime.In(b.StartAt, r.loc)
	b.EndAt = localtime.In(b.EndAt, r.loc)

	return &b, nil
}
