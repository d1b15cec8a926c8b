package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudyRoomService/pkg/dbmetrics"
)

var (
	// ErrBeginTx ошибка открытия транзакции
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommitTx ошибка фиксации транзакции
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")

	// ErrTxTimeout транзакция не уложилась в отведенное время
	ErrTxTimeout = errors.New("txmanager: transaction timeout")
)

// TxBeginner источник транзакций, реализуется *dbmetrics.DB
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager выполняет функции внутри транзакции, передавая её через контекст.
// Каждая транзакция ограничена таймаутом; повторов при ошибках нет.
type TransactionManager struct {
	db      TxBeginner
	timeout time.Duration
}

// NewTransactionManager создает менеджер транзакций.
// timeout <= 0 отключает ограничение по времени.
func NewTransactionManager(db TxBeginner, timeout time.Duration) *TransactionManager {
	return &TransactionManager{db: db, timeout: timeout}
}

// Do выполняет fn в транзакции READ COMMITTED.
// Снимок данных берется заново для каждого запроса, поэтому чтения после
// advisory-блокировки видят строки, зафиксированные до ее получения.
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	// Вложенный вызов переиспользует внешнюю транзакцию
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return m.wrapTimeout(ctx, fmt.Errorf("%w: %w", ErrBeginTx, err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		return m.wrapTimeout(ctx, err)
	}

	if err = tx.Commit(); err != nil {
		return m.wrapTimeout(ctx, fmt.Errorf("%w: %w", ErrCommitTx, err))
	}

	return nil
}

// wrapTimeout помечает ошибку как таймаут, если истек дедлайн транзакции
func (m *TransactionManager) wrapTimeout(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w: %w", ErrTxTimeout, context.DeadlineExceeded, err)
	}
	return err
}
