// Package user provides the User entity and its persistence contract.
package user

import (
	"unicode/utf8"

	"orderdesk/internal/core/apperror"
	"orderdesk/internal/core/entity"
	"orderdesk/internal/core/id"
)

// ID identifies a User.
type ID = id.ID[User]

// Name bounds
const (
	NameMinLen = 1
	NameMaxLen = 255
)

// Name is a user's display name, 1 to 255 characters.
type Name string

// NewName validates s.
func NewName(s string) (Name, error) {
	n := utf8.RuneCountInString(s)
	if n < NameMinLen || n > NameMaxLen {
		return "", apperror.NewValidation("user name must be between 1 and 255 characters").
			WithDetail("field", "name").
			WithDetail("length", n)
	}
	return Name(s), nil
}

func (n Name) String() string {
	return string(n)
}

// User is a customer placing orders.
type User struct {
	ID   ID   `json:"id"`
	Name Name `json:"name"`
	entity.Timestamps
}

// New creates a user with the given id. A zero id is replaced by a generated one.
func New(userID ID, name Name) User {
	if userID.IsZero() {
		userID = id.New[User]()
	}
	return User{
		ID:         userID,
		Name:       name,
		Timestamps: entity.NewTimestamps(),
	}
}

// Rename changes the name and refreshes UpdatedAt.
func (u *User) Rename(name Name) {
	u.Name = name
	u.Touch()
}

// GetID implements entity.HasID.
func (u User) GetID() ID {
	return u.ID
}
