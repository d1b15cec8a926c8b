package cancel_reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
	"github.com/m04kA/SMC-StudyRoomService/internal/infra/storage/pgtest"
	reservationRepo "github.com/m04kA/SMC-StudyRoomService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-StudyRoomService/pkg/txmanager"
)

func TestPostgres_ConcurrentDoubleCancel(t *testing.T) {
	db := pgtest.Open(t)
	facilityID, rooms := pgtest.SeedRoom(t, db, 1)

	uc := NewUseCase(
		reservationRepo.NewRepository(db, seoul),
		txmanager.NewTransactionManager(db, 10*time.Second),
		nil,
		nil,
		time.Hour,
		seoul,
		nopLogger{},
	).WithTimeProvider(fixedTime{now: time.Date(2025, 3, 10, 8, 0, 0, 0, seoul)})

	// Несколько строк, чтобы хотя бы часть пар столкнулась на FOR UPDATE
	for i := 0; i < 5; i++ {
		id := pgtest.SeedReservation(t, db, 7, rooms[0], facilityID, "2025-03-10",
			time.Date(2025, 3, 10, 10+2*i, 0, 0, 0, time.UTC).Format("2006-01-02 15:04:05"),
			time.Date(2025, 3, 10, 11+2*i, 0, 0, 0, time.UTC).Format("2006-01-02 15:04:05"),
			1)

		errs := make([]error, 2)
		start := make(chan struct{})
		var wg sync.WaitGroup
		for j := range errs {
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				<-start
				_, errs[j] = uc.Execute(context.Background(), &Request{ReservationID: id, StudentID: 7})
			}(j)
		}
		close(start)
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.True(t, errors.Is(err, domain.ErrInvalidState), "reservation %d: expected invalid state, got %v", id, err)
		}
		require.Equal(t, 1, succeeded, "reservation %d", id)
	}
}
