package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx so queries can be
// composed inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner is satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithinTx runs fn in a transaction, committing on nil and rolling back on error or panic.
func WithinTx(ctx context.Context, db TxBeginner, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SetActingUser exposes userID to the rest of the transaction as app.current_user_id.
// The setting is transaction-local and disappears on commit or rollback.
func SetActingUser(ctx context.Context, tx DBTX, userID int) error {
	_, err := tx.Exec(ctx, `SELECT set_config('app.current_user_id', $1, true)`, fmt.Sprint(userID))
	if err != nil {
		return fmt.Errorf("setting acting user: %w", err)
	}
	return nil
}

// ActingUserExpr reads app.current_user_id back inside SQL, yielding NULL when unset.
const ActingUserExpr = `NULLIF(current_setting('app.current_user_id', true), '')::int`
