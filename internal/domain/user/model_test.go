package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/core/apperror"
	"orderdesk/internal/core/id"
)

func TestNewName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", true},
		{"single char", "A", false},
		{"max length", strings.Repeat("a", 255), false},
		{"too long", strings.Repeat("a", 256), true},
		{"multibyte counted as runes", strings.Repeat("é", 255), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, n.String())
		})
	}
}

func TestNew(t *testing.T) {
	u := New(ID{}, "Alice")
	assert.False(t, u.ID.IsZero())
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)
	assert.Equal(t, u.ID, u.GetID())

	fixed := id.From[User]("u-1")
	assert.Equal(t, fixed, New(fixed, "Bob").ID)
}

func TestRename(t *testing.T) {
	u := New(ID{}, "Alice")
	created := u.CreatedAt

	u.Rename("Alicia")

	assert.Equal(t, Name("Alicia"), u.Name)
	assert.Equal(t, created, u.CreatedAt)
	assert.True(t, u.UpdatedAt.After(u.CreatedAt))
}
