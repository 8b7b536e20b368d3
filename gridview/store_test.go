package gridview

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"

	"github.com/goliatone/go-errors"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorCode(err error) string {
	var ge *errors.Error
	if stderrors.As(err, &ge) {
		return ge.TextCode
	}
	return ""
}

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every pooled connection would otherwise see its own empty database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	id, err := store.Create(ctx, View{
		Label:    "Open orders",
		Type:     TypePrivate,
		GridName: "orders-grid",
		Filters:  map[string]any{"status": "open"},
		Sorters:  map[string]any{"created_at": "DESC"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = store.Create(ctx, View{Label: "Other grid", Type: TypePublic, GridName: "users-grid"})
	require.NoError(t, err)

	views, err := store.List(ctx, "orders-grid")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, id, views[0].Name)
	assert.Empty(t, views[0].ID)
	assert.Equal(t, "Open orders", views[0].Label)
	assert.Equal(t, TypePrivate, views[0].Type)
	assert.Equal(t, "open", views[0].Filters["status"])
	assert.Equal(t, "DESC", views[0].Sorters["created_at"])

	updated := views[0]
	updated.Type = TypePublic
	updated.Label = "Open orders (shared)"
	require.NoError(t, store.Update(ctx, updated))

	views, err = store.List(ctx, "orders-grid")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, TypePublic, views[0].Type)
	assert.Equal(t, "Open orders (shared)", views[0].Label)

	err = store.Update(ctx, View{Name: "999", GridName: "orders-grid"})
	assert.Equal(t, ErrCodeViewNotFound, errorCode(err))

	require.NoError(t, store.Delete(ctx, id))
	views, err = store.List(ctx, "orders-grid")
	require.NoError(t, err)
	assert.Empty(t, views)

	err = store.Delete(ctx, id)
	assert.Equal(t, ErrCodeViewNotFound, errorCode(err))
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestSQLStore(t *testing.T) {
	storeContract(t, NewSQLStore(openSQLite(t), ""))
}

func TestSQLStoreRejectsNonNumericNames(t *testing.T) {
	store := NewSQLStore(openSQLite(t), "views")
	err := store.Delete(context.Background(), "not-a-number")
	assert.Equal(t, ErrCodeViewNotFound, errorCode(err))
}

func TestSQLStoreNotConfigured(t *testing.T) {
	store := NewSQLStore(nil, "")
	_, err := store.List(context.Background(), "grid")
	require.Error(t, err)
	assert.Equal(t, ErrCodeStoreFailure, errorCode(err))
}

func TestSQLStoreListReportsCorruptState(t *testing.T) {
	db := openSQLite(t)
	store := NewSQLStore(db, "")
	ctx := context.Background()

	id, err := store.Create(ctx, View{Label: "Open", Type: TypePrivate, GridName: "orders-grid", Filters: map[string]any{"status": "open"}})
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `UPDATE grid_views SET filters = '{broken' WHERE id = ?`, id)
	require.NoError(t, err)
	views, err := store.List(ctx, "orders-grid")
	require.Error(t, err)
	assert.Nil(t, views)
	assert.Equal(t, ErrCodeStoreFailure, errorCode(err))

	_, err = db.ExecContext(ctx, `UPDATE grid_views SET filters = '{}', sorters = '[1' WHERE id = ?`, id)
	require.NoError(t, err)
	_, err = store.List(ctx, "orders-grid")
	assert.Equal(t, ErrCodeStoreFailure, errorCode(err))
}
