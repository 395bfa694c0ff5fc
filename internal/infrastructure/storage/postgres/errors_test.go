package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/core/apperror"
)

func TestMapError(t *testing.T) {
	unique := &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "users_pkey"}
	fk := &pgconn.PgError{Code: CodeForeignKeyViolation, ConstraintName: "fk_orders_user"}
	other := &pgconn.PgError{Code: "42P01"}

	tests := []struct {
		name string
		err  error
		want apperror.Kind
		code string
	}{
		{"unique violation", unique, apperror.KindDuplicate, apperror.CodeDuplicate},
		{"wrapped unique violation", fmt.Errorf("exec: %w", unique), apperror.KindDuplicate, apperror.CodeDuplicate},
		{"foreign key violation", fk, apperror.KindBadRequest, apperror.CodeInvalidInput},
		{"undefined table", other, apperror.KindInternal, apperror.CodeDatabase},
		{"deadline", context.DeadlineExceeded, apperror.KindInternal, apperror.CodeTimeout},
		{"plain", errors.New("broken pipe"), apperror.KindInternal, apperror.CodeDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError("insert users", "users", "u1", tt.err)

			appErr, ok := apperror.AsAppError(got)
			if assert.True(t, ok) {
				assert.Equal(t, tt.code, appErr.Code)
			}
			assert.Equal(t, tt.want, apperror.KindOf(got))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestMapError_ForeignKeyMessage(t *testing.T) {
	fk := &pgconn.PgError{Code: CodeForeignKeyViolation, ConstraintName: "fk_orders_user"}

	insert, ok := apperror.AsAppError(MapError("insert orders", "orders", "o1", fk))
	require.True(t, ok)
	assert.Equal(t, "referenced record does not exist", insert.Message)

	del, ok := apperror.AsAppError(MapError("delete users", "users", "u1", fk))
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidInput, del.Code)
	assert.Equal(t, "record is still referenced", del.Message)
}

func TestMapError_PassThrough(t *testing.T) {
	nf := apperror.NewNotFound("users", "u1")

	assert.Same(t, nf, MapError("get users", "users", "u1", nf))

	done := apperror.NewTxDone("committed")
	assert.Same(t, done, MapError("select users", "users", "", fmt.Errorf("scany: query rows: %w", done)))
	assert.NoError(t, MapError("get users", "users", "u1", nil))
}
