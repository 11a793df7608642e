// internal/db/users.go
package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/codr1/courtbook/internal/models"
)

func (q *Queries) UpsertUser(ctx context.Context, user models.User) error {
	_, err := sqlx.NamedExecContext(ctx, q.db, `INSERT INTO users (email, name, created_at)
		VALUES (:email, :name, :created_at)
		ON CONFLICT (email) DO UPDATE SET name = excluded.name`, user)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (q *Queries) GetUser(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, q.db, &user,
		`SELECT email, name, created_at FROM users WHERE email = ?`, email)
	if err != nil {
		return models.User{}, notFound(err, "user "+email)
	}
	return user, nil
}
