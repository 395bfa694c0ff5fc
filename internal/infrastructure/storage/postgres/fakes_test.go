package postgres

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeTx records the statements and finalization calls issued through a pgx.Tx.
// Methods not overridden panic through the nil embedded interface.
type fakeTx struct {
	pgx.Tx

	mu              sync.Mutex
	execs           []string
	commits         int
	rollbacks       int
	rollbackCtxErrs []error
	commitErr       error
	rollbackErr     error
	execErr         error
}

func (f *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, sql)
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits++
	return f.commitErr
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rollbacks++
	f.rollbackCtxErrs = append(f.rollbackCtxErrs, ctx.Err())
	return f.rollbackErr
}

func (f *fakeTx) counts() (commits, rollbacks int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits, f.rollbacks
}

func (f *fakeTx) statements() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.execs...)
}

type fakeConn struct {
	tx       *fakeTx
	beginErr error

	mu       sync.Mutex
	released int
	opts     []pgx.TxOptions
}

func (c *fakeConn) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts = append(c.opts, opts)
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	return c.tx, nil
}

func (c *fakeConn) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released++
}

func (c *fakeConn) releaseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}

type fakeConnector struct {
	conn *fakeConn
	err  error
}

func (f *fakeConnector) acquireConn(ctx context.Context) (txConn, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.conn, nil
}

// fakePool stands in for *pgxpool.Pool as a pooled Querier.
type fakePool struct {
	mu    sync.Mutex
	execs []string
	args  [][]any
}

func (p *fakePool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.execs = append(p.execs, sql)
	p.args = append(p.args, args)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (p *fakePool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("fakePool: Query not supported")
}

func (p *fakePool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{err: pgx.ErrNoRows}
}

func (p *fakePool) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, q := range b.QueuedQueries {
		p.execs = append(p.execs, q.SQL)
		p.args = append(p.args, q.Arguments)
	}
	return fakeBatchResults{n: b.Len()}
}

type fakeBatchResults struct {
	n int
}

func (r fakeBatchResults) Exec() (pgconn.CommandTag, error) { return pgconn.NewCommandTag("INSERT 0 1"), nil }
func (r fakeBatchResults) Query() (pgx.Rows, error)         { return nil, errors.New("not supported") }
func (r fakeBatchResults) QueryRow() pgx.Row                { return errRow{err: pgx.ErrNoRows} }
func (r fakeBatchResults) Close() error                     { return nil }

func newFakeManager(tx *fakeTx) (*TxManager, *fakeConn) {
	conn := &fakeConn{tx: tx}
	return newTxManager(&fakeConnector{conn: conn}, &fakePool{}, nil), conn
}
