package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"orderdesk/internal/core/apperror"
)

// PostgreSQL SQLSTATE codes the repositories distinguish.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err carries SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == CodeUniqueViolation
}

// IsForeignKeyViolation reports whether err carries SQLSTATE 23503.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == CodeForeignKeyViolation
}

// MapError converts a store error into an AppError.
// An AppError anywhere in the chain is returned as is. Unique violations become
// Duplicate, foreign-key violations become InvalidInput, deadline overruns
// become Timeout and everything else is a DATABASE_ERROR. A foreign-key
// violation on delete means the row is still referenced.
func MapError(op, entity, key string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := apperror.AsAppError(err); ok {
		return appErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case CodeUniqueViolation:
			return apperror.NewDuplicate(entity, "id", key).
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case CodeForeignKeyViolation:
			msg := "referenced record does not exist"
			if strings.HasPrefix(op, "delete ") {
				msg = "record is still referenced"
			}
			return apperror.NewInvalidInput(msg).
				WithDetail("entity", entity).
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.NewTimeout(op, err)
	}

	return apperror.NewDatabase(op, err)
}
