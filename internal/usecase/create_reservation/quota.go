package create_reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
)

// CreditCounter источник использованных кредитов
type CreditCounter interface {
	SumActiveCredits(ctx context.Context, studentID int64, date time.Time) (int, error)
}

// QuotaAccountant проверяет дневной лимит кредитов студента.
// Лимит считается на календарную дату, а не на скользящее окно.
type QuotaAccountant struct {
	counter CreditCounter
	limit   int
}

// NewQuotaAccountant создает счетчик квоты с лимитом limit кредитов в день
func NewQuotaAccountant(counter CreditCounter, limit int) *QuotaAccountant {
	return &QuotaAccountant{counter: counter, limit: limit}
}

// Check возвращает ErrQuotaExceeded, если credits не помещаются в остаток лимита
func (q *QuotaAccountant) Check(ctx context.Context, studentID int64, date time.Time, credits int) error {
	used, err := q.counter.SumActiveCredits(ctx, studentID, date)
	if err != nil {
		return fmt.Errorf("sum active credits: %w", err)
	}

	if used+credits > q.limit {
		return fmt.Errorf("%w: used %d of %d, requested %d", domain.ErrQuotaExceeded, used, q.limit, credits)
	}

	return nil
}
