package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGXDB is the query surface shared by pgxpool.Pool and pgx.Tx.
// Repositories accept it so the same code runs against the pool, inside a
// transfer, or inside a rolled-back test transaction.
type PGXDB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner can start a transaction. On a pgx.Tx this opens a savepoint.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

var (
	_ PGXDB      = (*pgxpool.Pool)(nil)
	_ PGXDB      = (pgx.Tx)(nil)
	_ TxBeginner = (*pgxpool.Pool)(nil)
	_ TxBeginner = (pgx.Tx)(nil)
)

// ErrNoTransactions is returned by WithTx for handles that cannot begin one.
var ErrNoTransactions = errors.New("database handle does not support transactions")

// WithTx runs fn inside a transaction on db and commits when fn returns nil.
// Any error from fn, or a panic, rolls everything back.
func WithTx(ctx context.Context, db PGXDB, fn func(tx pgx.Tx) error) error {
	beginner, ok := db.(TxBeginner)
	if !ok {
		return ErrNoTransactions
	}
	tx, err := beginner.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
