// Package sqlite implements the eventlink repository on top of sqlx and
// the modernc sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/eventlink/eventlink/internal/eventlink"
)

// Ensure Repo implements the Repository interface
var _ eventlink.Repository = (*Repo)(nil)

// querier is the subset of sqlx satisfied by both *sqlx.DB and *sqlx.Tx,
// so the same queries run inside and outside a transaction.
type querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
}

type Repo struct {
	db *sqlx.DB
	q  querier
}

func New(db *sqlx.DB) Repo {
	return Repo{db: db, q: db}
}

// InTx runs fn against a repository bound to a single transaction. If the
// repo is already transactional, fn runs on the existing transaction.
func (r Repo) InTx(ctx context.Context, fn func(eventlink.Repository) error) error {
	if _, ok := r.q.(*sqlx.Tx); ok {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning tx: %s", err)
	}

	if err := fn(Repo{db: r.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back (%s) after: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing tx: %s", err)
	}

	return nil
}
