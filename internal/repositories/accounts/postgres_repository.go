package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ftpaccounts/internal/common"
	"github.com/dmitrijs2005/ftpaccounts/internal/dbx"
	"github.com/dmitrijs2005/ftpaccounts/internal/models"
)

// PostgresRepository keeps each document as one row of the
// account_documents table, keyed by path. Writes lock the row for the
// read-merge-write cycle. Two writers creating the same missing document
// concurrently may still overwrite each other.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Stat(ctx context.Context, path string) (time.Time, error) {
	query :=
		`SELECT modified_at FROM account_documents
		 WHERE path = $1
		 `

	var modTime time.Time
	if err := r.db.QueryRowContext(ctx, query, path).Scan(&modTime); err != nil {
		return time.Time{}, r.wrap("stat", path, err)
	}
	return modTime, nil
}

func (r *PostgresRepository) Load(ctx context.Context, path string) (*Snapshot, error) {
	query :=
		`SELECT document, modified_at FROM account_documents
		 WHERE path = $1
		 `

	var (
		document string
		modTime  time.Time
	)
	if err := r.db.QueryRowContext(ctx, query, path).Scan(&document, &modTime); err != nil {
		return nil, r.wrap("load", path, err)
	}

	accounts, err := models.DecodeAccounts([]byte(document))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return &Snapshot{Accounts: accounts, ModTime: modTime}, nil
}

func (r *PostgresRepository) Save(ctx context.Context, path string, account models.Account) (time.Time, error) {
	if err := account.Validate(); err != nil {
		return time.Time{}, err
	}

	var modTime time.Time
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		data, _, err := r.lock(ctx, tx, path)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		out, err := mergeAccount(data, account)
		if err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}

		query :=
			`INSERT INTO account_documents (path, document, modified_at)
			 VALUES ($1, $2, clock_timestamp())
			 ON CONFLICT (path) DO UPDATE
			 SET document = EXCLUDED.document,
			     modified_at = GREATEST(account_documents.modified_at, EXCLUDED.modified_at)
			 RETURNING modified_at
			 `

		if err := tx.QueryRowContext(ctx, query, path, string(out)).Scan(&modTime); err != nil {
			return r.wrap("save", path, err)
		}
		return nil
	})

	return modTime, err
}

func (r *PostgresRepository) Remove(ctx context.Context, path string, name string) (time.Time, error) {
	var modTime time.Time
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		data, current, err := r.lock(ctx, tx, path)
		if err != nil {
			return err
		}

		out, removed, err := removeAccount(data, name)
		if err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
		if !removed {
			modTime = current
			return nil
		}

		query :=
			`UPDATE account_documents
			 SET document = $2, modified_at = GREATEST(modified_at, clock_timestamp())
			 WHERE path = $1
			 RETURNING modified_at
			 `

		if err := tx.QueryRowContext(ctx, query, path, string(out)).Scan(&modTime); err != nil {
			return r.wrap("remove", path, err)
		}
		return nil
	})

	return modTime, err
}

// lock reads the document at path and locks its row until the end of tx.
func (r *PostgresRepository) lock(ctx context.Context, tx dbx.DBTX, path string) ([]byte, time.Time, error) {
	query :=
		`SELECT document, modified_at FROM account_documents
		 WHERE path = $1
		 FOR UPDATE
		 `

	var (
		document string
		modTime  time.Time
	)
	if err := tx.QueryRowContext(ctx, query, path).Scan(&document, &modTime); err != nil {
		return nil, time.Time{}, r.wrap("read", path, err)
	}
	return []byte(document), modTime, nil
}

func (r *PostgresRepository) wrap(op, path string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", op, path, common.ErrorNotFound)
	}
	return fmt.Errorf("%s %s: db error: %w", op, path, err)
}
