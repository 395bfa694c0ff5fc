package entity_repo

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/core/apperror"
	"orderdesk/internal/core/id"
	"orderdesk/internal/domain/order"
	"orderdesk/internal/domain/user"
	"orderdesk/internal/infrastructure/storage/postgres"
)

var userCols = []string{"id", "name", "created_at", "updated_at"}

func newUserFixture(t *testing.T) (*UserRepo, *recordingQuerier, postgres.Handle) {
	t.Helper()
	q := &recordingQuerier{affected: 1}
	return NewUserRepo(), q, postgres.PooledHandle(q)
}

func userValues(userID, name string, at time.Time) []any {
	return []any{userID, name, at, at}
}

func TestNewBaseRepo_Columns(t *testing.T) {
	r := NewUserRepo()
	assert.Equal(t, userCols, r.selectCols)
	assert.Equal(t, []string{"name", "updated_at"}, r.updateCols)

	d := NewOrderDetailRepo()
	assert.Equal(t, []string{"id", "order_id", "product_name", "quantity", "created_at", "updated_at"}, d.selectCols)
}

func TestNewBaseRepo_RequiresIDAndCreatedAt(t *testing.T) {
	type noID struct {
		Name string `db:"name"`
	}
	assert.Panics(t, func() {
		NewBaseRepo(Table[user.User, noID]{Name: "broken"})
	})
}

func TestBaseRepo_Insert(t *testing.T) {
	ctx := context.Background()
	repo, q, h := newUserFixture(t)
	u := user.New(id.From[user.User]("u-1"), "Alice")

	require.NoError(t, repo.Insert(ctx, h, u))

	require.Len(t, q.calls, 1)
	assert.Equal(t, "INSERT INTO users (id,name,created_at,updated_at) VALUES ($1,$2,$3,$4)", q.calls[0].sql)
	assert.Equal(t, userValues("u-1", "Alice", u.CreatedAt), q.calls[0].args)
}

func TestBaseRepo_InsertDuplicate(t *testing.T) {
	ctx := context.Background()
	repo, q, h := newUserFixture(t)
	q.err = &pgconn.PgError{Code: postgres.CodeUniqueViolation, ConstraintName: "users_pkey"}

	err := repo.Insert(ctx, h, user.New(id.From[user.User]("u-1"), "Alice"))

	assert.True(t, apperror.IsDuplicate(err))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "u-1", appErr.Details["value"])
}

func TestBaseRepo_InsertOtherStoreErrorIsInternal(t *testing.T) {
	ctx := context.Background()
	repo, q, h := newUserFixture(t)
	q.err = &pgconn.PgError{Code: "42P01"}

	err := repo.Insert(ctx, h, user.New(user.ID{}, "Alice"))

	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}

func TestBaseRepo_Update(t *testing.T) {
	ctx := context.Background()
	repo, q, h := newUserFixture(t)
	u := user.New(id.From[user.User]("u-1"), "Alice")
	u.Rename("Alicia")

	require.NoError(t, repo.Update(ctx, h, u))
	assert.Equal(t, "UPDATE users SET name = $1, updated_at = $2 WHERE id = $3", q.calls[0].sql)
	assert.Equal(t, []any{"Alicia", u.UpdatedAt, "u-1"}, q.calls[0].args)

	q.affected = 0
	assert.True(t, apperror.IsNotFound(repo.Update(ctx, h, u)))
}

func TestOrderDetailRepo_QuantityOutOfRange(t *testing.T) {
	ctx := context.Background()
	o := order.New(user.New(user.ID{}, "Alice"))
	tooMany := order.NewDetail(o, "Widget", order.MaxQuantity+1)
	repo := NewOrderDetailRepo()

	q := &recordingQuerier{affected: 1}
	h := postgres.PooledHandle(q)

	err := repo.Insert(ctx, h, tooMany)
	assert.Equal(t, apperror.CodeValidation, codeOf(t, err))

	err = repo.InsertMany(ctx, h, []order.Detail{order.NewDetail(o, "Gadget", 1), tooMany})
	assert.Equal(t, apperror.CodeValidation, codeOf(t, err))

	err = repo.Update(ctx, h, tooMany)
	assert.Equal(t, apperror.CodeValidation, codeOf(t, err))

	assert.Empty(t, q.calls, "nothing reaches the store")

	require.NoError(t, repo.Insert(ctx, h, order.NewDetail(o, "Widget", order.MaxQuantity)))
	assert.Equal(t, int32(order.MaxQuantity), q.calls[0].args[3])
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "got %v", err)
	return appErr.Code
}

func TestBaseRepo_Delete(t *testing.T) {
	ctx := context.Background()
	repo, q, h := newUserFixture(t)
	q.affected = 0

	require.NoError(t, repo.Delete(ctx, h, id.From[user.User]("u-1")), "deleting an absent row is not an error")
	assert.Equal(t, "DELETE FROM users WHERE id = $1", q.calls[0].sql)
	assert.Equal(t, []any{"u-1"}, q.calls[0].args)
}

func TestBaseRepo_DeleteReferencedRowIsBadRequest(t *testing.T) {
	ctx := context.Background()
	repo, q, h := newUserFixture(t)
	q.err = &pgconn.PgError{Code: postgres.CodeForeignKeyViolation}

	err := repo.Delete(ctx, h, id.From[user.User]("u-1"))

	assert.True(t, apperror.IsBadRequest(err))
}

func TestBaseRepo_Find(t *testing.T) {
	ctx := context.Background()
	repo, q, h := newUserFixture(t)
	newer := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	q.columns = userCols
	q.rows = [][]any{
		userValues("u-2", "Bob", newer),
		userValues("u-1", "Alice", older),
	}

	users, err := repo.Find(ctx, h)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, name, created_at, updated_at FROM users ORDER BY created_at DESC", q.calls[0].sql)
	require.Len(t, users, 2)
	assert.Equal(t, "u-2", users[0].ID.String())
	assert.Equal(t, user.Name("Alice"), users[1].Name)
	assert.Equal(t, older, users[1].CreatedAt)
}

func TestBaseRepo_FindByUnknownColumn(t *testing.T) {
	repo, q, h := newUserFixture(t)

	_, err := repo.FindBy(context.Background(), h, "name; DROP TABLE users", "x")

	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.Empty(t, q.calls)
}

func TestBaseRepo_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo, q, h := newUserFixture(t)
		at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		q.columns = userCols
		q.rows = [][]any{userValues("u-1", "Alice", at)}

		u, err := repo.Get(ctx, h, id.From[user.User]("u-1"))
		require.NoError(t, err)

		assert.Equal(t, "SELECT id, name, created_at, updated_at FROM users WHERE id = $1 LIMIT 1", q.calls[0].sql)
		assert.Equal(t, user.Name("Alice"), u.Name)
	})

	t.Run("absent", func(t *testing.T) {
		repo, q, h := newUserFixture(t)
		q.columns = userCols

		_, err := repo.Get(ctx, h, id.From[user.User]("missing"))

		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("malformed row", func(t *testing.T) {
		repo, q, h := newUserFixture(t)
		q.columns = userCols
		q.rows = [][]any{userValues("u-1", "", time.Now())}

		_, err := repo.Get(ctx, h, id.From[user.User]("u-1"))

		assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	})
}

func TestBaseRepo_GetMulti(t *testing.T) {
	ctx := context.Background()

	t.Run("empty input issues no query", func(t *testing.T) {
		repo, q, h := newUserFixture(t)

		users, err := repo.GetMulti(ctx, h, nil)

		require.NoError(t, err)
		assert.Empty(t, users)
		assert.Empty(t, q.calls)
	})

	t.Run("duplicates collapse and missing ids are skipped", func(t *testing.T) {
		repo, q, h := newUserFixture(t)
		q.columns = userCols
		q.rows = [][]any{userValues("u-1", "Alice", time.Now())}
		u1 := id.From[user.User]("u-1")

		users, err := repo.GetMulti(ctx, h, []user.ID{u1, id.From[user.User]("u-9"), u1})
		require.NoError(t, err)

		assert.Equal(t, "SELECT id, name, created_at, updated_at FROM users WHERE id IN ($1,$2) ORDER BY created_at DESC", q.calls[0].sql)
		assert.Equal(t, []any{"u-1", "u-9"}, q.calls[0].args)
		assert.Len(t, users, 1)
	})
}

func TestBaseRepo_InsertMany(t *testing.T) {
	ctx := context.Background()
	alice := user.New(user.ID{}, "Alice")
	o := order.New(alice)
	details := []order.Detail{
		order.NewDetail(o, "Widget", 3),
		order.NewDetail(o, "Gadget", 1),
	}

	t.Run("one batch", func(t *testing.T) {
		q := &recordingQuerier{}
		require.NoError(t, NewOrderDetailRepo().InsertMany(ctx, postgres.PooledHandle(q), details))

		require.Len(t, q.calls, 2)
		assert.Equal(t, "INSERT INTO order_details (id,order_id,product_name,quantity,created_at,updated_at) VALUES ($1,$2,$3,$4,$5,$6)", q.calls[0].sql)
		assert.Equal(t, int32(3), q.calls[0].args[3])
	})

	t.Run("failing row is reported", func(t *testing.T) {
		q := &recordingQuerier{err: &pgconn.PgError{Code: postgres.CodeUniqueViolation}}

		err := NewOrderDetailRepo().InsertMany(ctx, postgres.PooledHandle(q), details)

		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
		assert.Equal(t, details[1].ID.String(), appErr.Details["value"])
	})
}

func TestOrderRepo_FindByUser(t *testing.T) {
	q := &recordingQuerier{columns: []string{"id", "user_id", "created_at", "updated_at"}}
	h := postgres.PooledHandle(q)

	orders, err := NewOrderRepo().FindByUser(context.Background(), h, id.From[user.User]("nobody"))

	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, "SELECT id, user_id, created_at, updated_at FROM orders WHERE user_id = $1 ORDER BY created_at DESC", q.calls[0].sql)
}

func TestOrderRepo_FindByUsers(t *testing.T) {
	q := &recordingQuerier{columns: []string{"id", "user_id", "created_at", "updated_at"}}
	h := postgres.PooledHandle(q)
	repo := NewOrderRepo()

	a, b := id.From[user.User]("u1"), id.From[user.User]("u2")
	_, err := repo.FindByUsers(context.Background(), h, []user.ID{a, b, b})

	require.NoError(t, err)
	require.Len(t, q.calls, 1)
	assert.Equal(t, "SELECT id, user_id, created_at, updated_at FROM orders WHERE user_id IN ($1,$2) ORDER BY created_at DESC", q.calls[0].sql)
	assert.Equal(t, []any{"u1", "u2"}, q.calls[0].args)

	orders, err := repo.FindByUsers(context.Background(), h, nil)
	require.NoError(t, err)
	assert.Nil(t, orders)
	assert.Len(t, q.calls, 1)
}

func TestOrderDetailRepo_FindByOrders(t *testing.T) {
	q := &recordingQuerier{columns: []string{"id", "order_id", "product_name", "quantity", "created_at", "updated_at"}}
	h := postgres.PooledHandle(q)
	repo := NewOrderDetailRepo()

	a, b := id.From[order.Order]("o1"), id.From[order.Order]("o2")
	_, err := repo.FindByOrders(context.Background(), h, []order.ID{a, b, a})

	require.NoError(t, err)
	require.Len(t, q.calls, 1)
	assert.Equal(t, "SELECT id, order_id, product_name, quantity, created_at, updated_at FROM order_details WHERE order_id IN ($1,$2) ORDER BY created_at DESC", q.calls[0].sql)
	assert.Equal(t, []any{"o1", "o2"}, q.calls[0].args)

	details, err := repo.FindByOrders(context.Background(), h, nil)
	require.NoError(t, err)
	assert.Nil(t, details)
	assert.Len(t, q.calls, 1, "no query for an empty key set")
}

func TestOrderDetailFromRow(t *testing.T) {
	at := time.Now().UTC()
	valid := orderDetailRow{ID: "d-1", OrderID: "o-1", ProductName: "Widget", Quantity: 3, AuditCols: AuditCols{at, at}}

	d, err := orderDetailFromRow(valid)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), d.Quantity)
	assert.Equal(t, "o-1", d.OrderID.String())

	negative := valid
	negative.Quantity = -1
	_, err = orderDetailFromRow(negative)
	assert.Error(t, err)

	unnamed := valid
	unnamed.ProductName = ""
	_, err = orderDetailFromRow(unnamed)
	assert.Error(t, err)
}

func TestOrderFromRow(t *testing.T) {
	at := time.Now().UTC()
	valid := orderRow{ID: "o-1", UserID: "u-1", AuditCols: AuditCols{at, at}}

	o, err := orderFromRow(valid)
	require.NoError(t, err)
	assert.Equal(t, "u-1", o.UserID.String())

	noID := valid
	noID.ID = ""
	_, err = orderFromRow(noID)
	assert.Error(t, err)

	noOwner := valid
	noOwner.UserID = ""
	_, err = orderFromRow(noOwner)
	assert.Error(t, err)
}

func TestOrderRepo_GetRowWithoutOwnerIsInternal(t *testing.T) {
	q := &recordingQuerier{columns: []string{"id", "user_id", "created_at", "updated_at"}}
	at := time.Now()
	q.rows = [][]any{{"o-1", "", at, at}}

	_, err := NewOrderRepo().Get(context.Background(), postgres.PooledHandle(q), id.From[order.Order]("o-1"))

	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}
