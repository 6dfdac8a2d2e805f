package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestTestPool_ReturnsSharedPool(t *testing.T) {
	p1 := TestPool(t)
	p2 := TestPool(t)

	require.NotNil(t, p1)
	require.Same(t, p1, p2)
}

func TestTestTx_ReturnsUsableTx(t *testing.T) {
	db := TestTx(t)

	var n int
	require.NoError(t, db.QueryRow(context.Background(), "SELECT 1").Scan(&n))
	require.Equal(t, 1, n)
}

// queryOnly satisfies PGXDB without being able to begin a transaction.
type queryOnly struct{ PGXDB }

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects handles without transactions", func(t *testing.T) {
		err := WithTx(ctx, queryOnly{}, func(pgx.Tx) error { return nil })
		require.ErrorIs(t, err, ErrNoTransactions)
	})

	countUsers := func(t *testing.T, db PGXDB, id int64) int {
		t.Helper()
		var n int
		require.NoError(t, db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE id = $1`, id).Scan(&n))
		return n
	}
	insertUser := func(id int64) func(pgx.Tx) error {
		return func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, `INSERT INTO users (id, username) VALUES ($1, 'withtx')`, id)
			return err
		}
	}

	t.Run("commits when fn succeeds", func(t *testing.T) {
		db := TestTx(t)
		require.NoError(t, WithTx(ctx, db, insertUser(990003)))
		require.Equal(t, 1, countUsers(t, db, 990003))
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db := TestTx(t)
		boom := errors.New("boom")
		err := WithTx(ctx, db, func(tx pgx.Tx) error {
			if err := insertUser(990004)(tx); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)
		require.Zero(t, countUsers(t, db, 990004))
	})

	t.Run("rolls back on a failing statement", func(t *testing.T) {
		db := TestTx(t)
		err := WithTx(ctx, db, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, `INSERT INTO accounts (user_id, name, type) VALUES (990005, 'x', 'crypto')`)
			return err
		})
		var pgErr *pgconn.PgError
		require.ErrorAs(t, err, &pgErr)

		var one int
		require.NoError(t, db.QueryRow(ctx, "SELECT 1").Scan(&one))
	})
}
