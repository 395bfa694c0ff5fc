package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"orderdesk/internal/core/apperror"
	"orderdesk/internal/core/tx"
)

// Querier is the statement-execution capability shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// HandleKind tags which variant a Handle holds.
type HandleKind int

const (
	// Pooled handles run each statement in autocommit mode on a pooled connection.
	Pooled HandleKind = iota
	// Transactional handles run every statement inside one open Guard.
	Transactional
)

func (k HandleKind) String() string {
	if k == Transactional {
		return "transactional"
	}
	return "pooled"
}

// Handle is what every repository method accepts: either the pool or an open transaction.
// It borrows the underlying resource and owns nothing; it adds no buffering or retries.
// The zero Handle is unusable.
type Handle struct {
	kind  HandleKind
	pool  Querier
	guard *Guard
}

// PooledHandle wraps a pool-like querier.
func PooledHandle(q Querier) Handle {
	return Handle{kind: Pooled, pool: q}
}

// Kind reports the handle variant.
func (h Handle) Kind() HandleKind {
	return h.kind
}

// InTransaction reports whether statements run inside a Guard.
func (h Handle) InTransaction() bool {
	return h.kind == Transactional
}

func (h Handle) querier() (Querier, error) {
	if h.kind == Transactional {
		if h.guard == nil {
			return nil, apperror.NewInternal(errors.New("postgres: transactional handle without guard"))
		}
		if s := h.guard.State(); s != tx.Active {
			return nil, apperror.NewTxDone(s.String())
		}
		return h.guard.st.tx, nil
	}
	if h.pool == nil {
		return nil, apperror.NewInternal(errors.New("postgres: zero handle"))
	}
	return h.pool, nil
}

// Exec executes a statement that returns no rows.
func (h Handle) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q, err := h.querier()
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return q.Exec(ctx, sql, args...)
}

// Query executes a statement returning any number of rows.
func (h Handle) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q, err := h.querier()
	if err != nil {
		return nil, err
	}
	return q.Query(ctx, sql, args...)
}

// QueryRow executes a statement expected to return at most one row.
// Errors, including a finalized transaction, surface on Scan.
func (h Handle) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q, err := h.querier()
	if err != nil {
		return errRow{err: err}
	}
	return q.QueryRow(ctx, sql, args...)
}

// ExecRaw runs sql through the simple protocol without arguments.
// Multiple semicolon-separated statements are allowed.
func (h Handle) ExecRaw(ctx context.Context, sql string) error {
	q, err := h.querier()
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, sql, pgx.QueryExecModeSimpleProtocol)
	return err
}

// SendBatch queues all statements of b in a single round-trip.
func (h Handle) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	q, err := h.querier()
	if err != nil {
		return errBatchResults{err: err}
	}
	return q.SendBatch(ctx, b)
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}

type errBatchResults struct {
	err error
}

func (r errBatchResults) Exec() (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, r.err
}

func (r errBatchResults) Query() (pgx.Rows, error) {
	return nil, r.err
}

func (r errBatchResults) QueryRow() pgx.Row {
	return errRow{err: r.err}
}

func (r errBatchResults) Close() error {
	return r.err
}
