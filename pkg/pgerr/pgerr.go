// Package pgerr классифицирует ошибки PostgreSQL (lib/pq) и database/sql.
package pgerr

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/lib/pq"
)

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
	codeTooManyConnections   = "53300"
	codeUniqueViolation      = "23505"
	codeExclusionViolation   = "23P01"

	classConnectionException = "08"
)

// Code возвращает SQLSTATE ошибки PostgreSQL или пустую строку
func Code(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsTransient true для ошибок, после которых запрос имеет смысл повторить:
// конфликт сериализации, deadlock, таймаут, потеря соединения
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}

	switch code := Code(err); {
	case code == codeSerializationFailure,
		code == codeDeadlockDetected,
		code == codeLockNotAvailable,
		code == codeQueryCanceled,
		code == codeTooManyConnections:
		return true
	case strings.HasPrefix(code, classConnectionException):
		return true
	}
	return false
}

// IsUniqueViolation true при нарушении уникального индекса
func IsUniqueViolation(err error) bool {
	return Code(err) == codeUniqueViolation
}

// IsExclusionViolation true при нарушении EXCLUDE-ограничения
func IsExclusionViolation(err error) bool {
	return Code(err) == codeExclusionViolation
}
