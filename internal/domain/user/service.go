package user

import (
	"context"

	"orderdesk/internal/core/tx"
)

// Service provides business logic for users.
type Service[H any] struct {
	repo Repository[H]
	txm  tx.Manager[H]
}

// NewService creates a new user service.
func NewService[H any](repo Repository[H], txm tx.Manager[H]) *Service[H] {
	return &Service[H]{repo: repo, txm: txm}
}

// Register validates name and stores a new user. An empty id generates one;
// a caller-supplied id that already exists fails with Duplicate.
func (s *Service[H]) Register(ctx context.Context, userID ID, name string) (User, error) {
	n, err := NewName(name)
	if err != nil {
		return User{}, err
	}

	u := New(userID, n)
	if err := s.repo.Insert(ctx, s.txm.Handle(), u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Rename reads and rewrites the user inside one transaction.
func (s *Service[H]) Rename(ctx context.Context, userID ID, name string) (User, error) {
	n, err := NewName(name)
	if err != nil {
		return User{}, err
	}

	var out User
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context, h H) error {
		u, err := s.repo.Get(ctx, h, userID)
		if err != nil {
			return err
		}
		u.Rename(n)
		if err := s.repo.Update(ctx, h, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	return out, err
}

// Remove deletes the user inside one transaction. An unknown id is NotFound;
// a user who still owns orders is rejected by the store as bad input.
func (s *Service[H]) Remove(ctx context.Context, userID ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context, h H) error {
		u, err := s.repo.Get(ctx, h, userID)
		if err != nil {
			return err
		}
		return s.repo.Delete(ctx, h, u.ID)
	})
}

// List returns all users, newest first.
func (s *Service[H]) List(ctx context.Context) ([]User, error) {
	return s.repo.Find(ctx, s.txm.Handle())
}
