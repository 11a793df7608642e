package tournament

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/store"
)

// Directory resolves identity records for partner linkage. LookupUser
// returns an error matching models.ErrNotFound for unknown addresses.
type Directory interface {
	LookupUser(ctx context.Context, email string) (models.User, error)
}

// storeDirectory reads users through a store's queries, so a lookup made
// inside a registration transaction sees the same snapshot.
type storeDirectory struct {
	q store.UserQueries
}

func (d storeDirectory) LookupUser(ctx context.Context, email string) (models.User, error) {
	return d.q.GetUser(ctx, email)
}

// SaveUser creates or renames the identity record for email.
func (r *Registrar) SaveUser(ctx context.Context, email, name string) (models.User, error) {
	email, err := models.NormalizeEmail(email, "email")
	if err != nil {
		return models.User{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.User{}, models.FieldError{Field: "name", Reason: "is required"}
	}

	user := models.User{Email: email, Name: name, CreatedAt: r.now().UTC()}
	if err := r.store.UpsertUser(ctx, user); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("email", email).Msg("Failed to save user")
		return models.User{}, err
	}
	return r.store.GetUser(ctx, email)
}
