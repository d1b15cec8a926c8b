package reservation

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
	"github.com/m04kA/SMC-StudyRoomService/pkg/types"
)

const table = "reservations"

// Ключи advisory-блокировок; значения хешируются через hashtext()
const (
	roomDayLockKey    = "reservations:room:%d:%s"
	studentDayLockKey = "reservations:student:%d:%s"
)

var columns = []string{
	"r.id",
	"r.student_id",
	"r.room_id",
	"r.facility_id",
	"r.status",
	"r.reservation_date",
	"r.start_at",
	"r.end_at",
	"r.credits",
	"r.is_active",
	"r.cancel_date",
	"r.created_at",
	"r.updated_at",
}

// Колонки комнаты и учреждения для детальных проекций
var detailColumns = []string{
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
}

// Repository репозиторий для работы с бронированиями.
// Даты и время хранятся в локальном поясе сервиса loc.
type Repository struct {
	db  DBExecutor
	loc *time.Location
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor, loc *time.Location) *Repository {
	return &Repository{db: db, loc: loc}
}

// Create создает новое бронирование.
// Вызывается внутри транзакции Commit Coordinator'а, транзакция берется из контекста.
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"student_id",
			"room_id",
			"facility_id",
			"status",
			"reservation_date",
			"start_at",
			"end_at",
			"credits",
			"is_active",
		).
		Values(
			res.StudentID,
			res.RoomID,
			res.FacilityID,
			string(res.Status),
			localtime.Date(res.Date, r.loc),
			localtime.Wall(res.StartAt, r.loc),
			localtime.Wall(res.EndAt, r.loc),
			res.Credits,
			res.Active,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&res.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return res, nil
}

// GetByID получает бронирование по ID без связанных записей
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate получает бронирование и блокирует строку до конца транзакции
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil, fmt.Errorf("%w: GetByIDForUpdate", ErrNotInTransaction)
	}
	return r.getByID(ctx, id, true)
}

func (r *Repository) getByID(ctx context.Context, id int64, forUpdate bool) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table + " r").
		Where(squirrel.Eq{"r.id": id})
	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := r.scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	return res, nil
}

// GetDetailByID получает бронирование вместе с комнатой и учреждением.
// Читает ровно три таблицы: reservations, study_rooms, facilities.
func (r *Repository) GetDetailByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(append(append([]string{}, columns...), detailColumns...)...).
		From(table + " r").
		Join("study_rooms sr ON sr.id = r.room_id").
		Join("facilities f ON f.id = r.facility_id").
		Where(squirrel.Eq{"r.id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetDetailByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := r.scanReservationDetail(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetDetailByID - scan reservation: %w", ErrScanRow, err)
	}

	return res, nil
}

// GetByStudentID получает бронирования студента с комнатами и учреждениями,
// сначала новые. Опционально фильтрует по статусу.
func (r *Repository) GetByStudentID(ctx context.Context, filter domain.StudentReservationsFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(append(append([]string{}, columns...), detailColumns...)...).
		From(table + " r").
		Join("study_rooms sr ON sr.id = r.room_id").
		Join("facilities f ON f.id = r.facility_id").
		Where(squirrel.Eq{"r.student_id": filter.StudentID}).
		OrderBy("r.reservation_date DESC", "r.start_at DESC")

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"r.status": string(*filter.Status)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByStudentID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByStudentID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.Reservation, 0)
	for rows.Next() {
		res, err := r.scanReservationDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByStudentID - scan row: %w", ErrScanRow, err)
		}
		result = append(result, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByStudentID - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

// FindRoomOverlapping ищет подтвержденное бронирование комнаты на дату,
// пересекающее [start, end). Возвращает nil, если пересечений нет.
// В транзакции найденные строки блокируются (FOR UPDATE).
func (r *Repository) FindRoomOverlapping(ctx context.Context, roomID int64, date, start, end time.Time) (*domain.Reservation, error) {
	return r.findOverlapping(ctx, "FindRoomOverlapping", squirrel.Eq{"r.room_id": roomID}, date, start, end)
}

// FindStudentOverlapping ищет подтвержденное бронирование студента на дату в любой комнате,
// пересекающее [start, end). Возвращает nil, если пересечений нет.
func (r *Repository) FindStudentOverlapping(ctx context.Context, studentID int64, date, start, end time.Time) (*domain.Reservation, error) {
	return r.findOverlapping(ctx, "FindStudentOverlapping", squirrel.Eq{"r.student_id": studentID}, date, start, end)
}

func (r *Repository) findOverlapping(ctx context.Context, op string, owner squirrel.Eq, date, start, end time.Time) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	// Полуинтервалы: пересечение только при start_at < end И end_at > start
	selectBuilder := psqlbuilder.Select(columns...).
		From(table + " r").
		Where(owner).
		Where(squirrel.Eq{"r.reservation_date": localtime.Date(date, r.loc)}).
		Where(squirrel.Eq{"r.status": string(domain.StatusConfirmed)}).
		Where(squirrel.Lt{"r.start_at": localtime.Wall(end, r.loc)}).
		Where(squirrel.Gt{"r.end_at": localtime.Wall(start, r.loc)}).
		OrderBy("r.start_at ASC").
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	res, err := r.scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan reservation: %w", ErrScanRow, op, err)
	}

	return res, nil
}

// SumActiveCredits суммирует кредиты подтвержденных бронирований студента на дату
func (r *Repository) SumActiveCredits(ctx context.Context, studentID int64, date time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COALESCE(SUM(r.credits), 0)").
		From(table + " r").
		Where(squirrel.Eq{"r.student_id": studentID}).
		Where(squirrel.Eq{"r.reservation_date": localtime.Date(date, r.loc)}).
		Where(squirrel.Eq{"r.status": string(domain.StatusConfirmed)}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: SumActiveCredits - build select query: %v", ErrBuildQuery, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: SumActiveCredits - scan sum: %w", ErrScanRow, err)
	}

	return total, nil
}

// LockRoomDay берет транзакционную advisory-блокировку на пару (комната, дата).
// Блокировка снимается при COMMIT/ROLLBACK и действует между всеми инстансами сервиса.
func (r *Repository) LockRoomDay(ctx context.Context, roomID int64, date time.Time) error {
	return r.advisoryLock(ctx, "LockRoomDay", fmt.Sprintf(roomDayLockKey, roomID, date.Format(domain.DateFormat)))
}

// LockStudentDay берет транзакционную advisory-блокировку на пару (студент, дата)
func (r *Repository) LockStudentDay(ctx context.Context, studentID int64, date time.Time) error {
	return r.advisoryLock(ctx, "LockStudentDay", fmt.Sprintf(studentDayLockKey, studentID, date.Format(domain.DateFormat)))
}

func (r *Repository) advisoryLock(ctx context.Context, op string, key string) error {
	tx, ok := dbmetrics.TxFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotInTransaction, op)
	}

	query, args, err := psqlbuilder.Select().
		Column(squirrel.Expr("pg_advisory_xact_lock(hashtext(?))", key)).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build lock query: %v", ErrBuildQuery, op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %s - acquire lock: %w", ErrExecQuery, op, err)
	}

	return nil
}

// Cancel переводит бронирование в статус cancelled.
// Обновление защищено условием status = 'confirmed': повторная отмена не меняет строку.
func (r *Repository) Cancel(ctx context.Context, id int64, cancelDate time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", string(domain.StatusCancelled)).
		Set("cancel_date", localtime.Date(cancelDate, r.loc)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": string(domain.StatusConfirmed)}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrCannotCancel
	}

	return nil
}

// scanReservation сканирует строку с колонками columns
func (r *Repository) scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		res                  domain.Reservation
		status               string
		cancelDate           sql.NullTime
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&res.ID,
		&res.StudentID,
		&res.RoomID,
		&res.FacilityID,
		&status,
		&res.Date,
		&res.StartAt,
		&res.EndAt,
		&res.Credits,
		&res.Active,
		&cancelDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	return r.finish(&res, status, cancelDate, createdAt, updatedAt)
}

// scanReservationDetail сканирует строку с колонками columns + detailColumns
func (r *Repository) scanReservationDetail(row rowScanner) (*domain.Reservation, error) {
	var (
		res                  domain.Reservation
		room                 domain.Room
		facility             domain.Facility
		status               string
		cancelDate           sql.NullTime
		createdAt, updatedAt sql.NullTime
		openTime, closeTime  *types.TimeString
	)

	err := row.Scan(
		&res.ID,
		&res.StudentID,
		&res.RoomID,
		&res.FacilityID,
		&status,
		&res.Date,
		&res.StartAt,
		&res.EndAt,
		&res.Credits,
		&res.Active,
		&cancelDate,
		&createdAt,
		&updatedAt,
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
	if err != nil {
		return nil, err
	}

	room.OpenTime = openTime
	room.CloseTime = closeTime
	room.Facility = &facility
	res.Room = &room
	res.Facility = &facility

	return r.finish(&res, status, cancelDate, createdAt, updatedAt)
}

// finish приводит время к поясу сервиса и проверяет статус
func (r *Repository) finish(
	res *domain.Reservation,
	status string,
	cancelDate sql.NullTime,
	createdAt, updatedAt sql.NullTime,
) (*domain.Reservation, error) {
	parsed, err := domain.ParseReservationStatus(status)
	if err != nil {
		return nil, err
	}
	res.Status = parsed

	res.Date = localtime.In(res.Date, r.loc)
	res.StartAt = localtime.In(res.StartAt, r.loc)
	res.EndAt = localtime.In(res.EndAt, r.loc)
	if cancelDate.Valid {
		d := localtime.In(cancelDate.Time, r.loc)
		res.CancelDate = &d
	}
	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return res, nil
}
