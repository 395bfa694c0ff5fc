package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchQuery represents a query in a batch.
type BatchQuery struct {
	SQL  string
	Args []any
}

// ExecBatch sends all queries in a single round-trip through h.
// On a pooled handle the batch runs as one implicit transaction: a failing
// statement undoes the ones before it. On a transactional handle it joins the
// open transaction.
// The index of the first failing query is reported alongside its error.
func ExecBatch(ctx context.Context, h Handle, queries []BatchQuery) (int, error) {
	if len(queries) == 0 {
		return -1, nil
	}

	batch := &pgx.Batch{}
	for _, q := range queries {
		batch.Queue(q.SQL, q.Args...)
	}

	results := h.SendBatch(ctx, batch)
	for n := range queries {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return n, fmt.Errorf("batch query %d failed: %w", n, err)
		}
	}

	if err := results.Close(); err != nil {
		return len(queries) - 1, fmt.Errorf("close batch: %w", err)
	}
	return -1, nil
}
