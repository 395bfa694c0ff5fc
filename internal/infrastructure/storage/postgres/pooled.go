package postgres

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// statementConn is one checked-out connection running autocommit statements.
// *pgxpool.Conn satisfies it.
type statementConn interface {
	Querier
	Release()
}

// pooledQuerier runs every statement on a connection checked out for that
// statement alone, so a pooled handle waits for a connection no longer than
// the pool's acquire timeout.
type pooledQuerier struct {
	acquire func(ctx context.Context) (statementConn, error)
}

// statements returns the querier behind pooled handles of p.
func (p *Pool) statements() pooledQuerier {
	return pooledQuerier{acquire: func(ctx context.Context) (statementConn, error) {
		conn, err := p.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}}
}

func (q pooledQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	conn, err := q.acquire(ctx)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	defer conn.Release()
	return conn.Exec(ctx, sql, args...)
}

// Query keeps the connection until the rows are closed or exhausted.
func (q pooledQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	conn, err := q.acquire(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		conn.Release()
		return nil, err
	}
	return &releasingRows{Rows: rows, release: conn.Release}, nil
}

// QueryRow keeps the connection until Scan.
func (q pooledQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	conn, err := q.acquire(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return &releasingRow{row: conn.QueryRow(ctx, sql, args...), release: conn.Release}
}

// SendBatch keeps the connection until the results are closed.
func (q pooledQuerier) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	conn, err := q.acquire(ctx)
	if err != nil {
		return errBatchResults{err: err}
	}
	return &releasingBatch{BatchResults: conn.SendBatch(ctx, b), release: conn.Release}
}

type releasingRows struct {
	pgx.Rows
	once    sync.Once
	release func()
}

func (r *releasingRows) Next() bool {
	if r.Rows.Next() {
		return true
	}
	r.done()
	return false
}

func (r *releasingRows) Close() {
	r.Rows.Close()
	r.done()
}

func (r *releasingRows) done() {
	r.once.Do(r.release)
}

type releasingRow struct {
	row     pgx.Row
	once    sync.Once
	release func()
}

func (r *releasingRow) Scan(dest ...any) error {
	defer r.once.Do(r.release)
	return r.row.Scan(dest...)
}

type releasingBatch struct {
	pgx.BatchResults
	once    sync.Once
	release func()
}

func (r *releasingBatch) Close() error {
	err := r.BatchResults.Close()
	r.once.Do(r.release)
	return err
}
