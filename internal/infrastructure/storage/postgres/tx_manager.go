package postgres

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"orderdesk/internal/core/apperror"
	"orderdesk/internal/core/tx"
	"orderdesk/pkg/logger"
)

var tracer = otel.Tracer("orderdesk/tx")

// Compile-time checks.
var (
	_ tx.Manager[Handle] = (*TxManager)(nil)
	_ tx.Finalizer       = (*Guard)(nil)
)

// rollbackTimeout bounds rollbacks that run detached from the caller's context.
const rollbackTimeout = 5 * time.Second

// TxOptions configures transaction behavior.
type TxOptions struct {
	// IsolationLevel: pgx.Serializable, pgx.RepeatableRead, pgx.ReadCommitted
	IsolationLevel pgx.TxIsoLevel

	// AccessMode: pgx.ReadWrite, pgx.ReadOnly
	AccessMode pgx.TxAccessMode

	// StatementTimeout protects against long-running queries (default 30s)
	StatementTimeout time.Duration
}

// DefaultTxOptions returns production-safe defaults.
func DefaultTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel:   pgx.ReadCommitted,
		AccessMode:       pgx.ReadWrite,
		StatementTimeout: 30 * time.Second,
	}
}

// txConn is one checked-out connection able to start a transaction.
// *pgxpool.Conn satisfies it.
type txConn interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Release()
}

// connector hands out connections for transactions. *Pool satisfies it.
type connector interface {
	acquireConn(ctx context.Context) (txConn, error)
}

// TxManager opens transaction guards and hands out pooled handles.
type TxManager struct {
	conns  connector
	pooled Querier
	log    *logger.Logger
}

// NewTxManager creates a new transaction manager.
func NewTxManager(pool *Pool, log *logger.Logger) *TxManager {
	return newTxManager(pool, pool.statements(), log)
}

func newTxManager(conns connector, pooled Querier, log *logger.Logger) *TxManager {
	if log == nil {
		log = logger.Default()
	}
	return &TxManager{
		conns:  conns,
		pooled: pooled,
		log:    log.WithComponent("tx"),
	}
}

// Handle returns a pooled handle for autocommit operations.
func (m *TxManager) Handle() Handle {
	return PooledHandle(m.pooled)
}

// Begin checks out a connection and starts a transaction with default options.
// The returned guard must be finalized; callers defer Close right after a successful Begin.
func (m *TxManager) Begin(ctx context.Context) (*Guard, error) {
	return m.BeginWithOptions(ctx, DefaultTxOptions())
}

// BeginWithOptions starts a transaction with custom options.
func (m *TxManager) BeginWithOptions(ctx context.Context, opts TxOptions) (*Guard, error) {
	ctx, span := tracer.Start(ctx, "tx.begin",
		trace.WithAttributes(
			attribute.String("tx.isolation", string(opts.IsolationLevel)),
			attribute.String("tx.access_mode", string(opts.AccessMode)),
		))
	defer span.End()

	conn, err := m.conns.acquireConn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "acquire")
		return nil, err
	}

	pgTx, err := conn.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   opts.IsolationLevel,
		AccessMode: opts.AccessMode,
	})
	if err != nil {
		conn.Release()
		span.RecordError(err)
		span.SetStatus(codes.Error, "begin")
		return nil, apperror.NewDatabase("begin transaction", err)
	}

	// Set statement timeout for protection against runaway queries
	if opts.StatementTimeout > 0 {
		_, err = pgTx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", opts.StatementTimeout.Milliseconds()))
		if err != nil {
			_ = pgTx.Rollback(context.WithoutCancel(ctx))
			conn.Release()
			span.RecordError(err)
			return nil, apperror.NewDatabase("set statement_timeout", err)
		}
	}

	st := &guardState{
		ctx:       context.WithoutCancel(ctx),
		tx:        pgTx,
		conn:      conn,
		log:       m.log,
		startedAt: time.Now(),
	}
	g := &Guard{st: st}
	g.cleanup = runtime.AddCleanup(g, abandon, st)
	return g, nil
}

// RunInTransaction executes fn within a transaction.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context, h Handle) error) error {
	return m.RunInTransactionWithOptions(ctx, DefaultTxOptions(), fn)
}

// RunInTransactionWithOptions executes fn with custom transaction options.
// fn's error rolls the transaction back; otherwise it is committed.
func (m *TxManager) RunInTransactionWithOptions(ctx context.Context, opts TxOptions, fn func(ctx context.Context, h Handle) error) error {
	ctx, span := tracer.Start(ctx, "transaction")
	defer span.End()

	g, err := m.BeginWithOptions(ctx, opts)
	if err != nil {
		return err
	}
	defer g.Close()

	if err := fn(ctx, g.Handle()); err != nil {
		span.RecordError(err)
		if rbErr := g.Rollback(ctx); rbErr != nil {
			logger.Error(ctx, "rollback failed", "error", rbErr, "original_error", err)
		}
		return err
	}

	return g.Commit(ctx)
}

// ReadOnly executes fn in a read-only transaction.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context, h Handle) error) error {
	opts := DefaultTxOptions()
	opts.AccessMode = pgx.ReadOnly
	return m.RunInTransactionWithOptions(ctx, opts, fn)
}

// Guard owns one checked-out connection with an open transaction.
//
// At most one of Commit/Rollback completes. A Guard that becomes unreachable while
// still Active is rolled back asynchronously before its connection returns to the pool;
// Close gives the same guarantee deterministically and should always be deferred.
// A Guard belongs to one request and must not be shared between goroutines.
type Guard struct {
	st      *guardState
	cleanup runtime.Cleanup
}

// guardState is everything the abandonment cleanup needs. It must not point back to Guard.
type guardState struct {
	mu        sync.Mutex
	state     atomic.Int32
	ctx       context.Context
	tx        pgx.Tx
	conn      txConn
	log       *logger.Logger
	startedAt time.Time
}

func (s *guardState) current() tx.State {
	return tx.State(s.state.Load())
}

// finish records the terminal state and returns the connection to the pool.
// Caller holds mu.
func (s *guardState) finish(to tx.State) {
	s.state.Store(int32(to))
	s.conn.Release()
}

func (s *guardState) rollback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.current(); st != tx.Active {
		return apperror.NewTxDone(st.String())
	}

	// Cancellation of the request must not skip the rollback.
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	if err := s.tx.Rollback(rbCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		s.log.WithContext(ctx).Errorw("rollback failed", "error", err)
	}
	s.finish(tx.RolledBack)
	return nil
}

// abandon runs on the runtime cleanup goroutine once the Guard is unreachable.
func abandon(s *guardState) {
	if s.current() != tx.Active {
		return
	}
	go func() {
		s.log.WithContext(s.ctx).Warnw("transaction abandoned without commit, rolling back",
			"age", time.Since(s.startedAt).String())
		_ = s.rollback(s.ctx)
	}()
}

// Handle returns the transactional data handle. It is valid until the guard is finalized.
func (g *Guard) Handle() Handle {
	return Handle{kind: Transactional, guard: g}
}

// State reports the current lifecycle state.
func (g *Guard) State() tx.State {
	return g.st.current()
}

// Commit issues COMMIT. On success the connection is released.
// On a store error the guard stays Active; Close or Rollback then finishes it.
func (g *Guard) Commit(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "tx.commit")
	defer span.End()

	s := g.st
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.current(); st != tx.Active {
		return apperror.NewTxDone(st.String())
	}

	if err := s.tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit")
		return apperror.NewDatabase("commit transaction", err)
	}

	s.finish(tx.Committed)
	g.cleanup.Stop()
	return nil
}

// Rollback issues ROLLBACK and releases the connection.
// Store errors are logged; only rolling back a finalized guard returns an error.
func (g *Guard) Rollback(ctx context.Context) error {
	_, span := tracer.Start(ctx, "tx.rollback")
	defer span.End()

	if err := g.st.rollback(ctx); err != nil {
		return err
	}
	g.cleanup.Stop()
	return nil
}

// Close rolls back an Active guard and does nothing otherwise.
func (g *Guard) Close() {
	if g.State() != tx.Active {
		return
	}
	if err := g.st.rollback(g.st.ctx); err == nil {
		g.cleanup.Stop()
	}
}
