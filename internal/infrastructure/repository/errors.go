package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/receiptly/receiptly-api/pkg/apperror"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes that mean "try the transaction again"
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

// translateError maps driver errors that signal a lost race to a conflict
// AppError so callers can retry. Other errors pass through unchanged.
func translateError(err error) error {
	if err == nil || apperror.IsAppError(err) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.WrapConflict("duplicate key", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected:
			return apperror.WrapConflict("concurrent update, retry", err)
		case pgUniqueViolation:
			return apperror.WrapConflict("duplicate key", err)
		}
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "SQLITE_BUSY"), strings.Contains(msg, "database is locked"):
		return apperror.WrapConflict("concurrent update, retry", err)
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return apperror.WrapConflict("duplicate key", err)
	}
	return err
}
