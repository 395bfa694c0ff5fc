package entity_repo

import (
	"orderdesk/internal/core/id"
	"orderdesk/internal/domain/user"
	"orderdesk/internal/infrastructure/storage/postgres"
)

const userTable = "users"

type userRow struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	AuditCols
}

// UserRepo implements user.Repository.
type UserRepo struct {
	*BaseRepo[user.User, userRow]
}

var _ user.Repository[postgres.Handle] = (*UserRepo)(nil)

// NewUserRepo creates a new user repository.
func NewUserRepo() *UserRepo {
	return &UserRepo{
		BaseRepo: NewBaseRepo(Table[user.User, userRow]{
			Name:    userTable,
			Entity:  "user",
			ToRow:   userToRow,
			FromRow: userFromRow,
		}),
	}
}

func userToRow(u user.User) userRow {
	return userRow{
		ID:        u.ID.String(),
		Name:      u.Name.String(),
		AuditCols: auditCols(u.Timestamps),
	}
}

func userFromRow(row userRow) (user.User, error) {
	name, err := user.NewName(row.Name)
	if err != nil {
		return user.User{}, err
	}
	return user.User{
		ID:         id.From[user.User](row.ID),
		Name:       name,
		Timestamps: row.timestamps(),
	}, nil
}
