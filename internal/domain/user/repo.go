package user

import "context"

// Repository defines the interface for User persistence.
// H is the data handle: a pooled connection or an open transaction.
type Repository[H any] interface {
	// Find returns all users, newest first.
	Find(ctx context.Context, h H) ([]User, error)

	// Get returns one user or a NotFound error.
	Get(ctx context.Context, h H, id ID) (User, error)

	// GetMulti returns the subset of ids that exist. Missing ids are not an error.
	GetMulti(ctx context.Context, h H, ids []ID) ([]User, error)

	// Insert fails with Duplicate if the id is taken.
	Insert(ctx context.Context, h H, u User) error

	// Update replaces the stored row by id.
	Update(ctx context.Context, h H, u User) error

	// Delete removes the row by id.
	Delete(ctx context.Context, h H, id ID) error
}
