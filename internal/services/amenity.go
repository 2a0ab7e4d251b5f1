package services

import (
	"context"
	"strings"

	"github.com/hbnb/apiserver/internal/auth"
	"github.com/hbnb/apiserver/internal/policy"
	"github.com/hbnb/apiserver/internal/store"
	"github.com/hbnb/apiserver/types"
)

func (c *Coordinator) CreateAmenity(ctx context.Context, identity *auth.Identity, name string) (types.Amenity, error) {
	name = strings.TrimSpace(name)

	var amenity types.Amenity
	err := c.perform(ctx, identity, operation{
		op:   policy.OpCreate,
		kind: policy.KindAmenity,
		validate: func() error {
			return requireText("name", name, maxNameLength)
		},
		apply: func(ctx context.Context, tx *store.Tx) error {
			var err error
			amenity, err = tx.Amenities().Insert(ctx, types.Amenity{Name: name})
			return err
		},
	})
	if err != nil {
		return types.Amenity{}, err
	}
	c.publish(ctx, identity, policy.KindAmenity, types.ActionCreated, amenity.ID)
	return amenity, nil
}

func (c *Coordinator) GetAmenity(ctx context.Context, identity *auth.Identity, id string) (types.Amenity, error) {
	var amenity types.Amenity
	err := c.perform(ctx, identity, operation{
		op:     policy.OpRead,
		kind:   policy.KindAmenity,
		target: id,
		apply: func(ctx context.Context, tx *store.Tx) error {
			var err error
			amenity, err = tx.Amenities().Get(ctx, id)
			return err
		},
	})
	return amenity, err
}

func (c *Coordinator) ListAmenities(ctx context.Context, identity *auth.Identity, page Page) ([]types.Amenity, int, error) {
	var (
		amenities []types.Amenity
		total     int
	)
	err := c.perform(ctx, identity, operation{
		op:   policy.OpList,
		kind: policy.KindAmenity,
		apply: func(ctx context.Context, tx *store.Tx) error {
			var err error
			if amenities, err = tx.Amenities().List(ctx, page.query(nil)); err != nil {
				return err
			}
			total, err = tx.Amenities().Count(ctx, nil)
			return err
		},
	})
	return amenities, total, err
}

func (c *Coordinator) UpdateAmenity(ctx context.Context, identity *auth.Identity, id, name string) (types.Amenity, error) {
	name = strings.TrimSpace(name)

	var amenity types.Amenity
	err := c.perform(ctx, identity, operation{
		op:     policy.OpUpdate,
		kind:   policy.KindAmenity,
		target: id,
		validate: func() error {
			return requireText("name", name, maxNameLength)
		},
		apply: func(ctx context.Context, tx *store.Tx) error {
			current, err := tx.Amenities().Get(ctx, id)
			if err != nil {
				return err
			}
			current.Name = name
			amenity, err = tx.Amenities().Update(ctx, current)
			return err
		},
	})
	if err != nil {
		return types.Amenity{}, err
	}
	c.publish(ctx, identity, policy.KindAmenity, types.ActionUpdated, amenity.ID)
	return amenity, nil
}

func (c *Coordinator) DeleteAmenity(ctx context.Context, identity *auth.Identity, id string) error {
	err := c.perform(ctx, identity, operation{
		op:     policy.OpDelete,
		kind:   policy.KindAmenity,
		target: id,
		apply: func(ctx context.Context, tx *store.Tx) error {
			return tx.Amenities().Delete(ctx, id)
		},
	})
	if err != nil {
		return err
	}
	c.publish(ctx, identity, policy.KindAmenity, types.ActionDeleted, id)
	return nil
}
