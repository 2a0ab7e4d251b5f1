package services

import (
	"context"
	"errors"
	"strings"

	"github.com/hbnb/apiserver/internal/apperr"
	"github.com/hbnb/apiserver/internal/auth"
	"github.com/hbnb/apiserver/internal/policy"
	"github.com/hbnb/apiserver/internal/store"
	"github.com/hbnb/apiserver/types"
)

type RegisterInput struct {
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string
	User  types.User
}

type CreateUserInput struct {
	Email    string
	Password string
	IsAdmin  bool
}

// UpdateUserInput changes only the fields that are set. Setting IsAdmin to
// true is a promotion and needs an admin caller; clearing it follows the
// ordinary update rule.
type UpdateUserInput struct {
	Email    *string
	Password *string
	IsAdmin  *bool
}

// Register creates a regular account and logs it in.
func (c *Coordinator) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	user, err := c.CreateUser(ctx, nil, CreateUserInput{Email: in.Email, Password: in.Password})
	if err != nil {
		return AuthResult{}, err
	}
	return c.authResult(user)
}

// Login checks the credentials and issues a token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (c *Coordinator) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return AuthResult{}, apperr.Invalid("email and password are required")
	}

	var user types.User
	err := c.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		user, err = tx.Users().GetByEmail(ctx, email)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return AuthResult{}, apperr.Unauthenticated("invalid credentials")
	}
	if err != nil {
		return AuthResult{}, c.translate(operation{op: policy.OpRead, kind: policy.KindUser}, err)
	}
	if !c.credentials.Verify(in.Password, user.PasswordHash) {
		return AuthResult{}, apperr.Unauthenticated("invalid credentials")
	}
	return c.authResult(user)
}

func (c *Coordinator) authResult(user types.User) (AuthResult, error) {
	token, err := c.credentials.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return AuthResult{}, apperr.Internal("failed to create token", err)
	}
	return AuthResult{Token: token, User: user}, nil
}

// Me returns the caller's own account.
func (c *Coordinator) Me(ctx context.Context, identity *auth.Identity) (types.User, error) {
	if identity == nil {
		return types.User{}, apperr.Unauthenticated("authentication required")
	}
	user, err := c.GetUser(ctx, identity, identity.UserID)
	if apperr.Is(err, apperr.KindNotFound) {
		return types.User{}, apperr.Unauthenticated("account no longer exists")
	}
	return user, err
}

func (c *Coordinator) CreateUser(ctx context.Context, identity *auth.Identity, in CreateUserInput) (types.User, error) {
	op := policy.OpCreate
	if in.IsAdmin {
		op = policy.OpPromote
	}

	email := strings.TrimSpace(in.Email)
	var hash string
	var user types.User
	err := c.perform(ctx, identity, operation{
		op:   op,
		kind: policy.KindUser,
		validate: func() error {
			if err := validateEmail(email); err != nil {
				return err
			}
			if err := validatePassword(in.Password); err != nil {
				return err
			}
			var err error
			hash, err = c.credentials.Hash(in.Password)
			if err != nil {
				return apperr.Internal("failed to hash password", err)
			}
			return nil
		},
		apply: func(ctx context.Context, tx *store.Tx) error {
			var err error
			user, err = tx.Users().Insert(ctx, types.User{
				Email:        email,
				PasswordHash: hash,
				IsAdmin:      in.IsAdmin,
			})
			return err
		},
	})
	if err != nil {
		return types.User{}, err
	}
	c.publish(ctx, identity, policy.KindUser, types.ActionCreated, user.ID)
	return user, nil
}

func (c *Coordinator) GetUser(ctx context.Context, identity *auth.Identity, id string) (types.User, error) {
	var user types.User
	err := c.perform(ctx, identity, operation{
		op:     policy.OpRead,
		kind:   policy.KindUser,
		target: id,
		apply: func(ctx context.Context, tx *store.Tx) error {
			var err error
			user, err = tx.Users().Get(ctx, id)
			return err
		},
	})
	return user, err
}

func (c *Coordinator) ListUsers(ctx context.Context, identity *auth.Identity, page Page) ([]types.User, int, error) {
	var (
		users []types.User
		total int
	)
	err := c.perform(ctx, identity, operation{
		op:   policy.OpList,
		kind: policy.KindUser,
		apply: func(ctx context.Context, tx *store.Tx) error {
			var err error
			if users, err = tx.Users().List(ctx, page.query(nil)); err != nil {
				return err
			}
			total, err = tx.Users().Count(ctx, nil)
			return err
		},
	})
	return users, total, err
}

func (c *Coordinator) UpdateUser(ctx context.Context, identity *auth.Identity, id string, in UpdateUserInput) (types.User, error) {
	op := policy.OpUpdate
	if in.IsAdmin != nil && *in.IsAdmin {
		op = policy.OpPromote
	}

	var email, hash string
	var user types.User
	err := c.perform(ctx, identity, operation{
		op:     op,
		kind:   policy.KindUser,
		target: id,
		validate: func() error {
			if in.Email != nil {
				email = strings.TrimSpace(*in.Email)
				if err := validateEmail(email); err != nil {
					return err
				}
			}
			if in.Password != nil {
				if err := validatePassword(*in.Password); err != nil {
					return err
				}
				var err error
				hash, err = c.credentials.Hash(*in.Password)
				if err != nil {
					return apperr.Internal("failed to hash password", err)
				}
			}
			return nil
		},
		apply: func(ctx context.Context, tx *store.Tx) error {
			current, err := tx.Users().Get(ctx, id)
			if err != nil {
				return err
			}
			if in.Email != nil {
				current.Email = email
			}
			if in.Password != nil {
				current.PasswordHash = hash
			}
			if in.IsAdmin != nil {
				current.IsAdmin = *in.IsAdmin
			}
			user, err = tx.Users().Update(ctx, current)
			return err
		},
	})
	if err != nil {
		return types.User{}, err
	}
	c.publish(ctx, identity, policy.KindUser, types.ActionUpdated, user.ID)
	return user, nil
}

// PromoteUser grants admin rights.
func (c *Coordinator) PromoteUser(ctx context.Context, identity *auth.Identity, id string) (types.User, error) {
	var user types.User
	err := c.perform(ctx, identity, operation{
		op:     policy.OpPromote,
		kind:   policy.KindUser,
		target: id,
		apply: func(ctx context.Context, tx *store.Tx) error {
			current, err := tx.Users().Get(ctx, id)
			if err != nil {
				return err
			}
			if current.IsAdmin {
				user = current
				return nil
			}
			current.IsAdmin = true
			user, err = tx.Users().Update(ctx, current)
			return err
		},
	})
	if err != nil {
		return types.User{}, err
	}
	c.publish(ctx, identity, policy.KindUser, types.ActionPromoted, user.ID)
	return user, nil
}

// DeleteUser removes an account that neither hosts places nor wrote reviews.
func (c *Coordinator) DeleteUser(ctx context.Context, identity *auth.Identity, id string) error {
	err := c.perform(ctx, identity, operation{
		op:     policy.OpDelete,
		kind:   policy.KindUser,
		target: id,
		apply: func(ctx context.Context, tx *store.Tx) error {
			if _, err := tx.Users().Get(ctx, id); err != nil {
				return err
			}
			if err := noDependents("user still hosts places")(tx.Places().Count(ctx, store.Filter{"host_id": id})); err != nil {
				return err
			}
			if err := noDependents("user still has reviews")(tx.Reviews().Count(ctx, store.Filter{"user_id": id})); err != nil {
				return err
			}
			return tx.Users().Delete(ctx, id)
		},
	})
	if err != nil {
		return err
	}
	c.publish(ctx, identity, policy.KindUser, types.ActionDeleted, id)
	return nil
}
