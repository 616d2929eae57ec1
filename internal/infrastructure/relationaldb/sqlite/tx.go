package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ersonp/lineage-core/internal/domain/ports"
)

// querier is the statement surface shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithinTx runs fn against a repository bound to one transaction. It
// commits when fn returns nil and rolls back otherwise. Inside fn, only
// the repository passed to it may be used: the pool holds a single
// connection, which the transaction owns until it ends.
func (r *Repository) WithinTx(ctx context.Context, fn func(tx ports.RelationalDB) error) error {
	return r.withTx(ctx, func(tx *Repository) error { return fn(tx) })
}

// withTx joins the surrounding transaction when r already is one.
func (r *Repository) withTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.tx {
		return fn(r)
	}

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer sqlTx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(&Repository{db: r.db, q: sqlTx, tx: true, path: r.path}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
