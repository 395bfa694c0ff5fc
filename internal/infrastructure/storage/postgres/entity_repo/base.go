// Package entity_repo provides PostgreSQL implementations of the domain repositories.
// Every repository is a BaseRepo bound to one table. The data handle is passed per call,
// so the same repository value serves pooled and transactional work.
package entity_repo

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"orderdesk/internal/core/apperror"
	"orderdesk/internal/core/entity"
	"orderdesk/internal/core/id"
	"orderdesk/internal/infrastructure/storage/postgres"
)

const (
	colID        = "id"
	colCreatedAt = "created_at"
)

// AuditCols are the timestamp columns every table carries.
type AuditCols struct {
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func auditCols(t entity.Timestamps) AuditCols {
	return AuditCols{CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

func (a AuditCols) timestamps() entity.Timestamps {
	return entity.Timestamps{CreatedAt: a.CreatedAt.UTC(), UpdatedAt: a.UpdatedAt.UTC()}
}

// Table describes how entity E is stored as row R.
// Columns come from R's db tags; R must carry "id" and "created_at".
type Table[E any, R any] struct {
	// Name is the SQL table name.
	Name string
	// Entity names the record kind in errors.
	Entity string
	// ToRow maps an entity to its stored form.
	ToRow func(E) R
	// FromRow rebuilds an entity, validating every field.
	FromRow func(R) (E, error)
	// Check, if set, rejects entities the columns cannot hold before any write.
	Check func(E) error
}

// BaseRepo provides the CRUD operations shared by all entity repositories.
// Embed it in specific repositories.
type BaseRepo[E entity.HasID[id.ID[E]], R any] struct {
	table      Table[E, R]
	selectCols []string
	updateCols []string
}

// NewBaseRepo creates a new base repository for table.
func NewBaseRepo[E entity.HasID[id.ID[E]], R any](table Table[E, R]) *BaseRepo[E, R] {
	cols := postgres.ExtractDBColumns[R]()
	if !slices.Contains(cols, colID) || !slices.Contains(cols, colCreatedAt) {
		panic(fmt.Sprintf("entity_repo: %s row must have id and created_at columns", table.Name))
	}

	update := make([]string, 0, len(cols))
	for _, c := range cols {
		if c == colID || c == colCreatedAt {
			continue
		}
		update = append(update, c)
	}

	return &BaseRepo[E, R]{
		table:      table,
		selectCols: cols,
		updateCols: update,
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseRepo[E, R]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// TableName returns the SQL table name.
func (r *BaseRepo[E, R]) TableName() string {
	return r.table.Name
}

func (r *BaseRepo[E, R]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.table.Name)
}

// Find returns every row, newest first.
func (r *BaseRepo[E, R]) Find(ctx context.Context, h postgres.Handle) ([]E, error) {
	return r.FindMany(ctx, h, r.baseSelect().OrderBy(colCreatedAt+" DESC"))
}

// FindBy returns rows whose column equals value, newest first.
func (r *BaseRepo[E, R]) FindBy(ctx context.Context, h postgres.Handle, column string, value any) ([]E, error) {
	if !slices.Contains(r.selectCols, column) {
		return nil, apperror.NewInternal(fmt.Errorf("%s has no column %q", r.table.Name, column))
	}

	q := r.baseSelect().
		Where(squirrel.Eq{column: value}).
		OrderBy(colCreatedAt + " DESC")

	return r.FindMany(ctx, h, q)
}

// FindMany executes a SELECT built from baseSelect and maps every row.
func (r *BaseRepo[E, R]) FindMany(ctx context.Context, h postgres.Handle, q squirrel.SelectBuilder) ([]E, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("build query: %w", err))
	}

	var rows []R
	if err := pgxscan.Select(ctx, h, &rows, sql, args...); err != nil {
		return nil, postgres.MapError("select "+r.table.Name, r.table.Entity, "", err)
	}

	return r.fromRows(rows)
}

// Get retrieves one entity by id.
func (r *BaseRepo[E, R]) Get(ctx context.Context, h postgres.Handle, key id.ID[E]) (E, error) {
	var zero E

	q := r.baseSelect().
		Where(squirrel.Eq{colID: key.String()}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return zero, apperror.NewInternal(fmt.Errorf("build query: %w", err))
	}

	var row R
	if err := pgxscan.Get(ctx, h, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return zero, apperror.NewNotFound(r.table.Entity, key.String())
		}
		return zero, postgres.MapError("get "+r.table.Name, r.table.Entity, key.String(), err)
	}

	return r.fromRow(row)
}

// GetMulti returns the entities that exist among keys. Missing keys are skipped,
// duplicates are collapsed and an empty key set issues no query.
func (r *BaseRepo[E, R]) GetMulti(ctx context.Context, h postgres.Handle, keys []id.ID[E]) ([]E, error) {
	keys = id.Unique(keys)
	if len(keys) == 0 {
		return nil, nil
	}

	q := r.baseSelect().
		Where(squirrel.Eq{colID: id.Strings(keys)}).
		OrderBy(colCreatedAt + " DESC")

	return r.FindMany(ctx, h, q)
}

// Insert writes a new row. A taken id fails with Duplicate.
func (r *BaseRepo[E, R]) Insert(ctx context.Context, h postgres.Handle, e E) error {
	if err := r.check(e); err != nil {
		return err
	}
	sql, args, err := r.insertQuery(e).ToSql()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build insert: %w", err))
	}

	if _, err := h.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError("insert "+r.table.Name, r.table.Entity, e.GetID().String(), err)
	}
	return nil
}

// InsertMany writes all entities in a single round-trip.
// Atomicity requires a transactional handle.
func (r *BaseRepo[E, R]) InsertMany(ctx context.Context, h postgres.Handle, es []E) error {
	queries := make([]postgres.BatchQuery, 0, len(es))
	for _, e := range es {
		if err := r.check(e); err != nil {
			return err
		}
		sql, args, err := r.insertQuery(e).ToSql()
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("build insert: %w", err))
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}

	failed, err := postgres.ExecBatch(ctx, h, queries)
	if err != nil {
		key := ""
		if failed >= 0 && failed < len(es) {
			key = es[failed].GetID().String()
		}
		return postgres.MapError("insert "+r.table.Name, r.table.Entity, key, err)
	}
	return nil
}

func (r *BaseRepo[E, R]) insertQuery(e E) squirrel.InsertBuilder {
	return r.Builder().
		Insert(r.table.Name).
		Columns(r.selectCols...).
		Values(r.values(e)...)
}

// Update replaces every mutable column of the row with e's id.
func (r *BaseRepo[E, R]) Update(ctx context.Context, h postgres.Handle, e E) error {
	if err := r.check(e); err != nil {
		return err
	}
	data := postgres.StructToMap(r.table.ToRow(e))

	q := r.Builder().Update(r.table.Name)
	for _, c := range r.updateCols {
		q = q.Set(c, data[c])
	}
	q = q.Where(squirrel.Eq{colID: e.GetID().String()})

	sql, args, err := q.ToSql()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build update: %w", err))
	}

	result, err := h.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError("update "+r.table.Name, r.table.Entity, e.GetID().String(), err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.table.Entity, e.GetID().String())
	}
	return nil
}

// Delete removes the row with key. Deleting an absent row is not an error.
func (r *BaseRepo[E, R]) Delete(ctx context.Context, h postgres.Handle, key id.ID[E]) error {
	return r.DeleteBy(ctx, h, colID, key.String())
}

// DeleteBy removes every row whose column equals value.
func (r *BaseRepo[E, R]) DeleteBy(ctx context.Context, h postgres.Handle, column string, value any) error {
	if !slices.Contains(r.selectCols, column) {
		return apperror.NewInternal(fmt.Errorf("%s has no column %q", r.table.Name, column))
	}

	sql, args, err := r.Builder().
		Delete(r.table.Name).
		Where(squirrel.Eq{column: value}).
		ToSql()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build delete: %w", err))
	}

	if _, err := h.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError("delete "+r.table.Name, r.table.Entity, fmt.Sprint(value), err)
	}
	return nil
}

func (r *BaseRepo[E, R]) check(e E) error {
	if r.table.Check == nil {
		return nil
	}
	return r.table.Check(e)
}

// values returns the row's column values in selectCols order.
func (r *BaseRepo[E, R]) values(e E) []any {
	data := postgres.StructToMap(r.table.ToRow(e))
	vals := make([]any, len(r.selectCols))
	for i, c := range r.selectCols {
		vals[i] = data[c]
	}
	return vals
}

func (r *BaseRepo[E, R]) fromRow(row R) (E, error) {
	e, err := r.table.FromRow(row)
	if err != nil {
		var zero E
		return zero, apperror.NewInternal(fmt.Errorf("malformed %s row: %w", r.table.Name, err)).
			WithDetail("entity", r.table.Entity)
	}
	return e, nil
}

func (r *BaseRepo[E, R]) fromRows(rows []R) ([]E, error) {
	out := make([]E, 0, len(rows))
	for _, row := range rows {
		e, err := r.fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
