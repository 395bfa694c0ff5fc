package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", NewValidation("bad"), KindBadRequest},
		{"invalid input", NewInvalidInput("bad id"), KindBadRequest},
		{"not found", NewNotFound("users", "u1"), KindNotFound},
		{"duplicate", NewDuplicate("users", "id", "u1"), KindDuplicate},
		{"database", NewDatabase("insert users", errors.New("conn reset")), KindInternal},
		{"timeout", NewTimeout("acquire connection", errors.New("deadline")), KindInternal},
		{"tx done", NewTxDone("committed"), KindInternal},
		{"plain error", errors.New("boom"), KindInternal},
		{"wrapped not found", fmt.Errorf("load: %w", NewNotFound("orders", "o1")), KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("users", "u1")))
	assert.False(t, IsNotFound(nil))
	assert.True(t, IsDuplicate(fmt.Errorf("wrap: %w", NewDuplicate("users", "id", "u1"))))
	assert.True(t, IsBadRequest(NewValidation("name is required")))
	assert.True(t, IsTxDone(NewTxDone("rolled back")))
	assert.False(t, IsTxDone(NewInternal(nil)))

	assert.Equal(t, http.StatusConflict, GetHTTPStatus(NewDuplicate("users", "id", "u1")))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("x")))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabase("select users", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "DATABASE_ERROR")
	assert.Contains(t, err.Error(), "connection refused")
}
