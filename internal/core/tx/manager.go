// Package tx provides transaction management abstractions.
// This package defines interfaces that decouple domain logic from specific
// database implementations, following the Dependency Inversion Principle.
package tx

import (
	"context"
)

// State is the lifecycle state of a transaction guard.
type State int32

const (
	// Active means BEGIN succeeded and neither COMMIT nor ROLLBACK completed.
	Active State = iota
	// Committed means COMMIT succeeded; the connection is back in the pool.
	Committed
	// RolledBack means ROLLBACK ran (explicitly, on Close, or on abandonment).
	RolledBack
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// Finalizer is the part of a transaction guard domain code is allowed to touch.
//
// Typical use:
//
//	g, err := txm.Begin(ctx)
//	if err != nil {
//	    return err
//	}
//	defer g.Close()
//	... writes through g.Handle() ...
//	return g.Commit(ctx)
type Finalizer interface {
	// Commit issues COMMIT. On failure the guard stays Active.
	Commit(ctx context.Context) error

	// Rollback issues ROLLBACK. Store errors are logged, not returned;
	// an error is returned only if the guard was already finalized.
	Rollback(ctx context.Context) error

	// Close rolls back if the guard is still Active and is a no-op otherwise.
	Close()

	// State reports the current lifecycle state.
	State() State
}

// Manager defines the contract for transaction management.
// Implementations handle BEGIN, COMMIT, ROLLBACK and the abandonment safety net.
//
// Domain services depend on this interface, not concrete implementations.
// The actual implementation lives in infrastructure/storage/postgres; H is its data handle type.
type Manager[H any] interface {
	// Handle returns a pooled, autocommit handle for reads and single-statement writes.
	Handle() H

	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context, h H) error) error
}
