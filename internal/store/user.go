package store

import (
	"context"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"github.com/hbnb/apiserver/types"
)

// password_hash is deliberately not filterable.
var userColumns = columns("id", "email", "is_admin")

// UserRepository handles persistence for users.
type UserRepository struct {
	tx *Tx
	t  table[types.User]
}

func (r *UserRepository) Get(ctx context.Context, id string) (types.User, error) {
	return r.t.get(ctx, goqu.Ex{"id": id})
}

// GetByEmail looks up a user by exact, case-sensitive email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return r.t.get(ctx, goqu.Ex{"email": email})
}

func (r *UserRepository) List(ctx context.Context, q Query) ([]types.User, error) {
	return r.t.list(ctx, q)
}

func (r *UserRepository) Count(ctx context.Context, filter Filter) (int, error) {
	return r.t.count(ctx, filter)
}

func (r *UserRepository) Insert(ctx context.Context, user types.User) (types.User, error) {
	if err := validateUser(user); err != nil {
		return types.User{}, err
	}
	if user.ID == "" {
		user.ID = newID()
	}
	now := r.tx.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	err := r.t.insert(ctx, goqu.Record{
		"id":            user.ID,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"is_admin":      user.IsAdmin,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	})
	if err != nil {
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	if err := validateUser(user); err != nil {
		return types.User{}, err
	}

	err := r.t.update(ctx, user.ID, goqu.Record{
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"is_admin":      user.IsAdmin,
		"updated_at":    r.tx.now(),
	})
	if err != nil {
		return types.User{}, err
	}
	return r.Get(ctx, user.ID)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.t.remove(ctx, id)
}

func validateUser(user types.User) error {
	if strings.TrimSpace(user.Email) == "" {
		return violation("users.email")
	}
	if user.PasswordHash == "" {
		return violation("users.password_hash")
	}
	return nil
}
