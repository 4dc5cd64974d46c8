package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS roles (name TEXT PRIMARY KEY)`)
	require.NoError(t, err)
	return db
}

func roleCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM roles`).Scan(&n))
	return n
}

func insertRoles(ctx context.Context, tx DBTX, names ...string) error {
	for _, n := range names {
		if _, err := tx.ExecContext(ctx, `INSERT INTO roles(name) VALUES (?)`, n); err != nil {
			return err
		}
	}
	return nil
}

func TestWithTx_CommitsAllStatements(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return insertRoles(ctx, tx, "Reader", "Writer")
	})
	require.NoError(t, err)
	assert.Equal(t, 2, roleCount(t, db))
}

func TestWithTx_RollsBackPartialWork(t *testing.T) {
	db := setupDB(t)

	// second insert hits the primary key, first one must disappear too
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return insertRoles(ctx, tx, "Reader", "Reader")
	})
	require.Error(t, err)
	assert.Equal(t, 0, roleCount(t, db))
}

func TestWithTx_RollsBackOnFnError(t *testing.T) {
	db := setupDB(t)
	boom := errors.New("boom")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, insertRoles(ctx, tx, "Writer"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, roleCount(t, db))
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		assert.Equal(t, 0, roleCount(t, db))
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, insertRoles(ctx, tx, "Writer"))
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}
