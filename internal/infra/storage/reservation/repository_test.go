package reservation

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
	"github.com/m04kA/SMC-StudyRoomService/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudyRoomService/pkg/pgerr"
)

var reservationColumns = []string{
	"id", "student_id", "room_id", "facility_id", "status", "reservation_date",
	"start_at", "end_at", "credits", "is_active", "cancel_date", "created_at", "updated_at",
}

func newRepo(t *testing.T) (*Repository, *dbmetrics.DB, sqlmock.Sqlmock, *time.Location) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	db := dbmetrics.Wrap(sqlDB, nil)
	return NewRepository(db, loc), db, mock, loc
}

// withTx открывает транзакцию sqlmock и кладет ее в контекст
func withTx(t *testing.T, db *dbmetrics.DB, mock sqlmock.Sqlmock) context.Context {
	t.Helper()
	mock.ExpectBegin()
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	return dbmetrics.WithTx(context.Background(), tx)
}

// Значения TIMESTAMP приходят из lib/pq в UTC с верными показаниями часов
func wall(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestCreate_ReturnsGeneratedFields(t *testing.T) {
	repo, _, mock, loc := newRepo(t)
	created := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reservations")).
		WithArgs(
			int64(7), int64(3), int64(1), "confirmed",
			wall(2025, 3, 10, 0, 0), wall(2025, 3, 10, 10, 0), wall(2025, 3, 10, 11, 0),
			1, true,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(42), created, created))

	res, err := repo.Create(context.Background(), &domain.Reservation{
		StudentID:  7,
		RoomID:     3,
		FacilityID: 1,
		Status:     domain.StatusConfirmed,
		Date:       time.Date(2025, 3, 10, 0, 0, 0, 0, loc),
		StartAt:    time.Date(2025, 3, 10, 10, 0, 0, 0, loc),
		EndAt:      time.Date(2025, 3, 10, 11, 0, 0, 0, loc),
		Credits:    1,
		Active:     true,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), res.ID)
	assert.Equal(t, created, res.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ExclusionViolationIsClassifiable(t *testing.T) {
	repo, _, mock, loc := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reservations")).
		WillReturnError(&pq.Error{Code: "23P01", Constraint: "reservations_no_room_overlap"})

	_, err := repo.Create(context.Background(), &domain.Reservation{
		StudentID: 7, RoomID: 3, FacilityID: 1, Status: domain.StatusConfirmed,
		Date:    time.Date(2025, 3, 10, 0, 0, 0, 0, loc),
		StartAt: time.Date(2025, 3, 10, 10, 0, 0, 0, loc),
		EndAt:   time.Date(2025, 3, 10, 11, 0, 0, 0, loc),
		Credits: 1, Active: true,
	})

	require.ErrorIs(t, err, ErrExecQuery)
	assert.True(t, pgerr.IsExclusionViolation(err))
}

func TestGetByID_ConvertsToServiceZone(t *testing.T) {
	repo, _, mock, loc := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations r WHERE r.id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(reservationColumns).AddRow(
			int64(5), int64(7), int64(3), int64(1), "cancelled",
			wall(2025, 3, 10, 0, 0), wall(2025, 3, 10, 14, 0), wall(2025, 3, 10, 16, 0),
			int64(2), true, wall(2025, 3, 9, 0, 0), time.Now(), time.Now(),
		))

	res, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, res.Status)
	assert.Equal(t, time.Date(2025, 3, 10, 14, 0, 0, 0, loc), res.StartAt)
	assert.Equal(t, 2*time.Hour, res.Duration())
	require.NotNil(t, res.CancelDate)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, loc), *res.CancelDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, _, mock, _ := newRepo(t)

	mock.ExpectQuery("FROM reservations").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestGetByID_UnknownStatusIsInvariantViolation(t *testing.T) {
	repo, _, mock, _ := newRepo(t)

	mock.ExpectQuery("FROM reservations").
		WillReturnRows(sqlmock.NewRows(reservationColumns).AddRow(
			int64(5), int64(7), int64(3), int64(1), "pending",
			wall(2025, 3, 10, 0, 0), wall(2025, 3, 10, 14, 0), wall(2025, 3, 10, 15, 0),
			int64(1), true, nil, time.Now(), time.Now(),
		))

	_, err := repo.GetByID(context.Background(), 5)
	assert.ErrorIs(t, err, ErrScanRow)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestGetByIDForUpdate_RequiresTransaction(t *testing.T) {
	repo, _, _, _ := newRepo(t)

	_, err := repo.GetByIDForUpdate(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotInTransaction)
}

func TestGetByIDForUpdate_LocksRow(t *testing.T) {
	repo, db, mock, _ := newRepo(t)
	ctx := withTx(t, db, mock)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.id = $1 FOR UPDATE")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(reservationColumns).AddRow(
			int64(5), int64(7), int64(3), int64(1), "confirmed",
			wall(2025, 3, 10, 0, 0), wall(2025, 3, 10, 14, 0), wall(2025, 3, 10, 15, 0),
			int64(1), true, nil, time.Now(), time.Now(),
		))

	res, err := repo.GetByIDForUpdate(ctx, 5)
	require.NoError(t, err)
	assert.True(t, res.IsConfirmed())
	assert.Nil(t, res.CancelDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByStudentID_JoinsRoomAndFacility(t *testing.T) {
	repo, _, mock, _ := newRepo(t)
	status := domain.StatusConfirmed

	cols := append(append([]string{}, reservationColumns...),
		"room_id", "room_facility_id", "room_name", "floor", "capacity", "equipment",
		"open_time", "close_time", "f_id", "f_name", "address", "description")

	mock.ExpectQuery(regexp.QuoteMeta("JOIN study_rooms sr ON sr.id = r.room_id JOIN facilities f ON f.id = r.facility_id")+
		".*"+regexp.QuoteMeta("ORDER BY r.reservation_date DESC, r.start_at DESC")).
		WithArgs(int64(7), "confirmed").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(
				int64(2), int64(7), int64(3), int64(1), "confirmed",
				wall(2025, 3, 11, 0, 0), wall(2025, 3, 11, 9, 0), wall(2025, 3, 11, 10, 0),
				int64(1), true, nil, time.Now(), time.Now(),
				int64(3), int64(1), "R-301", "3", int64(6), "whiteboard",
				"09:00:00", "22:00:00", int64(1), "Main Library", "Campus 1", "",
			).
			AddRow(
				int64(1), int64(7), int64(4), int64(1), "confirmed",
				wall(2025, 3, 10, 0, 0), wall(2025, 3, 10, 9, 0), wall(2025, 3, 10, 11, 0),
				int64(2), true, nil, time.Now(), time.Now(),
				int64(4), int64(1), "R-302", "3", int64(4), nil,
				nil, nil, int64(1), "Main Library", "Campus 1", "",
			))

	list, err := repo.GetByStudentID(context.Background(), domain.StudentReservationsFilter{
		StudentID: 7,
		Status:    &status,
	})
	require.NoError(t, err)
	require.Len(t, list, 2)

	first := list[0]
	require.NotNil(t, first.Room)
	require.NotNil(t, first.Facility)
	assert.Equal(t, "R-301", first.Room.Name)
	assert.True(t, first.Room.HasOperatingHours())
	assert.Equal(t, "09:00", first.Room.OpenTime.String())
	assert.Equal(t, "Main Library", first.Facility.Name)

	second := list[1]
	assert.Nil(t, second.Room.Equipment)
	assert.False(t, second.Room.HasOperatingHours())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindRoomOverlapping(t *testing.T) {
	t.Run("no overlap returns nil", func(t *testing.T) {
		repo, _, mock, loc := newRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta("r.start_at < $4 AND r.end_at > $5")).
			WithArgs(int64(3), wall(2025, 3, 10, 0, 0), "confirmed",
				wall(2025, 3, 10, 11, 0), wall(2025, 3, 10, 10, 0)).
			WillReturnError(sql.ErrNoRows)

		res, err := repo.FindRoomOverlapping(context.Background(), 3,
			time.Date(2025, 3, 10, 0, 0, 0, 0, loc),
			time.Date(2025, 3, 10, 10, 0, 0, 0, loc),
			time.Date(2025, 3, 10, 11, 0, 0, 0, loc))

		require.NoError(t, err)
		assert.Nil(t, res)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inside transaction locks rows", func(t *testing.T) {
		repo, db, mock, loc := newRepo(t)
		ctx := withTx(t, db, mock)

		mock.ExpectQuery(regexp.QuoteMeta("LIMIT 1 FOR UPDATE")).
			WillReturnRows(sqlmock.NewRows(reservationColumns).AddRow(
				int64(11), int64(8), int64(3), int64(1), "confirmed",
				wall(2025, 3, 10, 0, 0), wall(2025, 3, 10, 10, 0), wall(2025, 3, 10, 12, 0),
				int64(2), true, nil, time.Now(), time.Now(),
			))

		res, err := repo.FindRoomOverlapping(ctx, 3,
			time.Date(2025, 3, 10, 0, 0, 0, 0, loc),
			time.Date(2025, 3, 10, 11, 0, 0, 0, loc),
			time.Date(2025, 3, 10, 12, 0, 0, 0, loc))

		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, int64(11), res.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFindStudentOverlapping_FiltersByStudent(t *testing.T) {
	repo, _, mock, loc := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.student_id = $1")).
		WithArgs(int64(7), sqlmock.AnyArg(), "confirmed", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	res, err := repo.FindStudentOverlapping(context.Background(), 7,
		time.Date(2025, 3, 10, 0, 0, 0, 0, loc),
		time.Date(2025, 3, 10, 10, 0, 0, 0, loc),
		time.Date(2025, 3, 10, 11, 0, 0, 0, loc))

	require.NoError(t, err)
	assert.Nil(t, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSumActiveCredits(t *testing.T) {
	repo, _, mock, loc := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(r.credits), 0) FROM reservations r")).
		WithArgs(int64(7), wall(2025, 3, 10, 0, 0), "confirmed").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(int64(1)))

	total, err := repo.SumActiveCredits(context.Background(), 7, time.Date(2025, 3, 10, 0, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockRoomDay(t *testing.T) {
	t.Run("outside transaction", func(t *testing.T) {
		repo, _, _, loc := newRepo(t)

		err := repo.LockRoomDay(context.Background(), 3, time.Date(2025, 3, 10, 0, 0, 0, 0, loc))
		assert.ErrorIs(t, err, ErrNotInTransaction)
	})

	t.Run("acquires advisory lock", func(t *testing.T) {
		repo, db, mock, loc := newRepo(t)
		ctx := withTx(t, db, mock)

		mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
			WithArgs("reservations:room:3:2025-03-10").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
			WithArgs("reservations:student:7:2025-03-10").
			WillReturnResult(sqlmock.NewResult(0, 1))

		date := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
		require.NoError(t, repo.LockRoomDay(ctx, 3, date))
		require.NoError(t, repo.LockStudentDay(ctx, 7, date))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCancel(t *testing.T) {
	t.Run("updates confirmed reservation", func(t *testing.T) {
		repo, _, mock, loc := newRepo(t)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET status = $1, cancel_date = $2, updated_at = NOW() WHERE id = $3 AND status = $4")).
			WithArgs("cancelled", wall(2025, 3, 9, 0, 0), int64(5), "confirmed").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Cancel(context.Background(), 5, time.Date(2025, 3, 9, 18, 30, 0, 0, loc))
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already cancelled", func(t *testing.T) {
		repo, _, mock, loc := newRepo(t)

		mock.ExpectExec("UPDATE reservations").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Cancel(context.Background(), 5, time.Date(2025, 3, 9, 0, 0, 0, 0, loc))
		assert.ErrorIs(t, err, ErrCannotCancel)
	})
}
