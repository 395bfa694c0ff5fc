package entity_repo

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type call struct {
	sql  string
	args []any
}

// recordingQuerier captures every statement and answers queries with canned rows.
type recordingQuerier struct {
	mu       sync.Mutex
	calls    []call
	columns  []string
	rows     [][]any
	affected int64
	err      error
}

func (q *recordingQuerier) record(sql string, args []any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls = append(q.calls, call{sql: sql, args: args})
}

func (q *recordingQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.record(sql, args)
	if q.err != nil {
		return pgconn.CommandTag{}, q.err
	}
	return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", q.affected)), nil
}

func (q *recordingQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.record(sql, args)
	if q.err != nil {
		return nil, q.err
	}
	return &fakeRows{columns: q.columns, rows: q.rows, pos: -1}, nil
}

func (q *recordingQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	rows, _ := q.Query(ctx, sql, args...)
	return rows
}

func (q *recordingQuerier) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	for _, qq := range b.QueuedQueries {
		q.record(qq.SQL, qq.Arguments)
	}
	return &fakeBatchResults{err: q.err}
}

type fakeBatchResults struct {
	err error
	n   int
}

func (r *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	r.n++
	if r.err != nil && r.n == 2 {
		return pgconn.CommandTag{}, r.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *fakeBatchResults) Query() (pgx.Rows, error) { return nil, r.err }
func (r *fakeBatchResults) QueryRow() pgx.Row        { return nil }
func (r *fakeBatchResults) Close() error             { return nil }

// fakeRows serves rows of plain Go values; Scan assigns them by reflection.
type fakeRows struct {
	columns []string
	rows    [][]any
	pos     int
}

func (r *fakeRows) Close()                        {}
func (r *fakeRows) Err() error                    { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) RawValues() [][]byte           { return nil }
func (r *fakeRows) Conn() *pgx.Conn               { return nil }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.columns))
	for i, c := range r.columns {
		fds[i] = pgconn.FieldDescription{Name: c}
	}
	return fds
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.pos], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.pos < 0 || r.pos >= len(r.rows) {
		return pgx.ErrNoRows
	}
	row := r.rows[r.pos]
	if len(dest) != len(row) {
		return fmt.Errorf("fakeRows: %d destinations for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(row[i]))
	}
	return nil
}
