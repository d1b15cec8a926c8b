// Package errkind сводит ошибки хранилища к доменной таксономии ошибок
// и к меткам исхода операции для метрик.
package errkind

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
	"github.com/m04kA/SMC-StudyRoomService/pkg/pgerr"
	"github.com/m04kA/SMC-StudyRoomService/pkg/txmanager"
)

// Метки исхода операции
const (
	OutcomeConfirmed         = "confirmed"
	OutcomeCancelled         = "cancelled"
	OutcomeValidation        = "validation"
	OutcomeNotFound          = "not_found"
	OutcomeQuotaExceeded     = "quota_exceeded"
	OutcomeConflictRoom      = "conflict_room"
	OutcomeConflictRequester = "conflict_requester"
	OutcomeConflictBlackout  = "conflict_blackout"
	OutcomeForbidden         = "forbidden"
	OutcomeInvalidState      = "invalid_state"
	OutcomeTooLateToCancel   = "too_late_to_cancel"
	OutcomeTransient         = "transient"
	OutcomeInvariant         = "invariant_violation"
	OutcomeInternal          = "internal"
)

var domainKinds = []error{
	domain.ErrValidation,
	domain.ErrNotFound,
	domain.ErrQuotaExceeded,
	domain.ErrConflict,
	domain.ErrForbidden,
	domain.ErrInvalidState,
	domain.ErrTooLateToCancel,
	domain.ErrTransientStorage,
	domain.ErrInvariantViolation,
}

// IsDomain true, если err уже относится к доменной таксономии
func IsDomain(err error) bool {
	for _, kind := range domainKinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// Classify приводит ошибку к доменной таксономии.
// Доменные ошибки возвращаются как есть; нарушение EXCLUDE-ограничения комнаты
// становится конфликтом комнаты; сбои сериализации, таймауты и обрывы соединения
// становятся ErrTransientStorage; прочее оборачивается в internal.
func Classify(err error, internal error) error {
	switch {
	case err == nil:
		return nil
	case IsDomain(err):
		return err
	case pgerr.IsExclusionViolation(err):
		return domain.NewConflict(domain.ConflictRoom, 0)
	case pgerr.IsTransient(err), errors.Is(err, txmanager.ErrTxTimeout):
		return fmt.Errorf("%w: %v", domain.ErrTransientStorage, err)
	default:
		return fmt.Errorf("%w: %v", internal, err)
	}
}

// Outcome возвращает метку исхода для ошибки, прошедшей через Classify
func Outcome(err error, success string) string {
	if err == nil {
		return success
	}

	if kind, ok := domain.ConflictKindOf(err); ok {
		switch kind {
		case domain.ConflictRoom:
			return OutcomeConflictRoom
		case domain.ConflictRequester:
			return OutcomeConflictRequester
		case domain.ConflictBlackout:
			return OutcomeConflictBlackout
		}
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return OutcomeValidation
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrQuotaExceeded):
		return OutcomeQuotaExceeded
	case errors.Is(err, domain.ErrForbidden):
		return OutcomeForbidden
	case errors.Is(err, domain.ErrInvalidState):
		return OutcomeInvalidState
	case errors.Is(err, domain.ErrTooLateToCancel):
		return OutcomeTooLateToCancel
	case errors.Is(err, domain.ErrTransientStorage):
		return OutcomeTransient
	case errors.Is(err, domain.ErrInvariantViolation):
		return OutcomeInvariant
	default:
		return OutcomeInternal
	}
}
