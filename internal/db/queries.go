// internal/db/queries.go
package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/store"
)

// Queries implements store.Queries against either the pool or a
// transaction.
type Queries struct {
	db sqlx.ExtContext
}

var _ store.Queries = (*Queries)(nil)

func NewQueries(db sqlx.ExtContext) *Queries {
	return &Queries{db: db}
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// notFound translates sql.ErrNoRows so callers can rely on errors.Is.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return err
}

func requireAffected(result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return nil
}
