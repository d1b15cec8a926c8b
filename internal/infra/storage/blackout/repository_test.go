package blackout

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var blackoutColumns = []string{"id", "room_id", "facility_id", "blackout_date", "start_at", "end_at", "reason"}

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock, *time.Location) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return NewRepository(db, loc), mock, loc
}

func utc(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestFindOverlapping(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock, loc := newRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE room_id = $1 AND blackout_date = $2 AND start_at < $3 AND end_at > $4")).
			WithArgs(int64(3), utc(2025, 3, 10, 0, 0), utc(2025, 3, 10, 16, 0), utc(2025, 3, 10, 14, 0)).
			WillReturnRows(sqlmock.NewRows(blackoutColumns).AddRow(
				int64(9), int64(3), int64(1), utc(2025, 3, 10, 0, 0),
				utc(2025, 3, 10, 15, 0), utc(2025, 3, 10, 17, 0), "maintenance",
			))

		b, err := repo.FindOverlapping(context.Background(), 3,
			time.Date(2025, 3, 10, 0, 0, 0, 0, loc),
			time.Date(2025, 3, 10, 14, 0, 0, 0, loc),
			time.Date(2025, 3, 10, 16, 0, 0, 0, loc))

		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, int64(9), b.ID)
		assert.Equal(t, time.Date(2025, 3, 10, 15, 0, 0, 0, loc), b.StartAt)
		require.NotNil(t, b.Reason)
		assert.Equal(t, "maintenance", *b.Reason)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("none", func(t *testing.T) {
		repo, mock, loc := newRepo(t)

		mock.ExpectQuery("FROM blackout_windows").WillReturnError(sql.ErrNoRows)

		b, err := repo.FindOverlapping(context.Background(), 3,
			time.Date(2025, 3, 10, 0, 0, 0, 0, loc),
			time.Date(2025, 3, 10, 9, 0, 0, 0, loc),
			time.Date(2025, 3, 10, 10, 0, 0, 0, loc))

		require.NoError(t, err)
		assert.Nil(t, b)
	})
}

func TestListByRoomAndDate(t *testing.T) {
	repo, mock, loc := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY start_at ASC")).
		WithArgs(int64(3), utc(2025, 3, 10, 0, 0)).
		WillReturnRows(sqlmock.NewRows(blackoutColumns).
			AddRow(int64(1), int64(3), int64(1), utc(2025, 3, 10, 0, 0),
				utc(2025, 3, 10, 9, 0), utc(2025, 3, 10, 10, 0), nil).
			AddRow(int64(2), int64(3), int64(1), utc(2025, 3, 10, 0, 0),
				utc(2025, 3, 10, 15, 0), utc(2025, 3, 10, 17, 0), "exam"))

	list, err := repo.ListByRoomAndDate(context.Background(), 3, time.Date(2025, 3, 10, 0, 0, 0, 0, loc))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Nil(t, list[0].Reason)
	assert.True(t, list[0].StartAt.Before(list[1].StartAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}
