// Package dbx holds the database plumbing behind the PostgreSQL account
// store: the DBTX handle shared by *sql.DB and *sql.Tx, transactional
// execution, and opening a migrated connection.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is what the account repository needs from a database handle.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction on db. The transaction is committed
// when fn returns nil and rolled back when it returns an error or panics;
// a panic is re-raised after the rollback.
//
// Account writes use it to keep the row lock and the rewrite of a document
// in one transaction:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    var doc string
//	    err := tx.QueryRowContext(ctx,
//	        `SELECT document FROM account_documents WHERE path = $1 FOR UPDATE`, path).Scan(&doc)
//	    if err != nil {
//	        return err
//	    }
//	    _, err = tx.ExecContext(ctx,
//	        `UPDATE account_documents SET document = $2 WHERE path = $1`, path, merged(doc))
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}
