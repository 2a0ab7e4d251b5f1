package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hbnb/apiserver/internal/apperr"
	"github.com/hbnb/apiserver/internal/auth"
	"github.com/hbnb/apiserver/internal/policy"
	"github.com/hbnb/apiserver/internal/storage"
	"github.com/hbnb/apiserver/internal/store"
	"github.com/hbnb/apiserver/types"
)

// MaxPhotoBytes bounds a single place photo upload.
const MaxPhotoBytes = 5 << 20

var photoContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

type CreatePlaceInput struct {
	Name        string
	Description string
	CityID      string
}

type UpdatePlaceInput struct {
	Name        *string
	Description *string
	CityID      *string
}

// PlaceFilter narrows ListPlaces. Empty fields match everything.
type PlaceFilter struct {
	CityID string
	HostID string
}

// Photo is an uploaded place photo.
type Photo struct {
	Body        io.Reader
	Size        int64
	ContentType string
}

// photoKey returns a key no earlier upload of the place has used.
func photoKey(placeID string) string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("places/%s/photo-%s", placeID, uuid.NewString())
	}
	return fmt.Sprintf("places/%s/photo-%s", placeID, id)
}

// CreatePlace lists a new place hosted by the caller.
func (c *Coordinator) CreatePlace(ctx context.Context, identity *auth.Identity, in CreatePlaceInput) (types.Place, error) {
	name := strings.TrimSpace(in.Name)

	var place types.Place
	err := c.perform(ctx, identity, operation{
		op:   policy.OpCreate,
		kind: policy.KindPlace,
		validate: func() error {
			if err := requireText("name", name, maxNameLength); err != nil {
				return err
			}
			if err := limitText("description", in.Description, maxDescriptionLength); err != nil {
				return err
			}
			return requireID("city_id", in.CityID)
		},
		apply: func(ctx context.Context, tx *store.Tx) error {
			var err error
			place, err = tx.Places().Insert(ctx, types.Place{
				Name:        name,
				Description: in.Description,
				CityID:      in.CityID,
				HostID:      identity.UserID,
			})
			return err
		},
	})
	if err != nil {
		return types.Place{}, err
	}
	c.publish(ctx, identity, policy.KindPlace, types.ActionCreated, place.ID)
	return place, nil
}

func (c *Coordinator) GetPlace(ctx context.Context, identity *auth.Identity, id string) (types.Place, error) {
	var place types.Place
	err := c.perform(ctx, identity, operation{
		op:     policy.OpRead,
		kind:   policy.KindPlace,
		target: id,
		apply: func(ctx context.Context, tx *store.Tx) error {
			var err error
			place, err = tx.Places().Get(ctx, id)
			return err
		},
	})
	return place, err
}

func (c *Coordinator) ListPlaces(ctx context.Context, identity *auth.Identity, filter PlaceFilter, page Page) ([]types.Place, int, error) {
	where := store.Filter{}
	if filter.CityID != "" {
		where["city_id"] = filter.CityID
	}
	if filter.HostID != "" {
		where["host_id"] = filter.HostID
	}

	var (
		places []types.Place
		total  int
	)
	err := c.perform(ctx, identity, operation{
		op:   policy.OpList,
		kind: policy.KindPlace,
		apply: func(ctx context.Context, tx *store.Tx) error {
			var err error
			if places, err = tx.Places().List(ctx, page.query(where)); err != nil {
				return err
			}
			total, err = tx.Places().Count(ctx, where)
			return err
		},
	})
	return places, total, err
}

// placeOwner loads the place and records its host for the policy.
func placeOwner(id string, place *types.Place) func(context.Context, *store.Tx, *policy.Request) error {
	return func(ctx context.Context, tx *store.Tx, req *policy.Request) error {
		current, err := tx.Places().Get(ctx, id)
		if err != nil {
			return err
		}
		*place = current
		req.TargetOwner = current.HostID
		return nil
	}
}

func (c *Coordinator) UpdatePlace(ctx context.Context, identity *auth.Identity, id string, in UpdatePlaceInput) (types.Place, error) {
	var name string
	var current, place types.Place
	err := c.perform(ctx, identity, operation{
		op:     policy.OpUpdate,
		kind:   policy.KindPlace,
		target: id,
		validate: func() error {
			if in.Name != nil {
				name = strings.TrimSpace(*in.Name)
				if err := requireText("name", name, maxNameLength); err != nil {
					return err
				}
			}
			if in.Description != nil {
				if err := limitText("description", *in.Description, maxDescriptionLength); err != nil {
					return err
				}
			}
			if in.CityID != nil {
				return requireID("city_id", *in.CityID)
			}
			return nil
		},
		facts: placeOwner(id, &current),
		apply: func(ctx context.Context, tx *store.Tx) error {
			if in.Name != nil {
				current.Name = name
			}
			if in.Description != nil {
				current.Description = *in.Description
			}
			if in.CityID != nil {
				current.CityID = *in.CityID
			}
			var err error
			place, err = tx.Places().Update(ctx, current)
			return err
		},
	})
	if err != nil {
		return types.Place{}, err
	}
	c.publish(ctx, identity, policy.KindPlace, types.ActionUpdated, place.ID)
	return place, nil
}

// DeletePlace removes a place that has no reviews, and its photo.
func (c *Coordinator) DeletePlace(ctx context.Context, identity *auth.Identity, id string) error {
	var current types.Place
	err := c.perform(ctx, identity, operation{
		op:     policy.OpDelete,
		kind:   policy.KindPlace,
		target: id,
		facts:  placeOwner(id, &current),
		apply: func(ctx context.Context, tx *store.Tx) error {
			if err := noDependents("place has reviews")(tx.Reviews().Count(ctx, store.Filter{"place_id": id})); err != nil {
				return err
			}
			return tx.Places().Delete(ctx, id)
		},
	})
	if err != nil {
		return err
	}

	if current.PhotoKey != "" && c.photos != nil {
		c.removePhoto(ctx, id, current.PhotoKey)
	}
	c.publish(ctx, identity, policy.KindPlace, types.ActionDeleted, id)
	return nil
}

// SetPlacePhoto stores photo for the place, replacing any previous one. The
// same rule as UpdatePlace applies. The object is written between two store
// transactions, under a key no earlier upload used.
func (c *Coordinator) SetPlacePhoto(ctx context.Context, identity *auth.Identity, id string, photo Photo) (types.Place, error) {
	var current types.Place
	err := c.perform(ctx, identity, operation{
		op:     policy.OpUpdate,
		kind:   policy.KindPlace,
		target: id,
		validate: func() error {
			if c.photos == nil {
				return apperr.Internal("photo storage is not configured", nil)
			}
			if _, ok := photoContentTypes[photo.ContentType]; !ok {
				return apperr.Invalid("photo must be a jpeg, png, webp or gif image")
			}
			if photo.Size <= 0 {
				return apperr.Invalid("photo is empty")
			}
			if photo.Size > MaxPhotoBytes {
				return apperr.Invalid(fmt.Sprintf("photo must be at most %d bytes", MaxPhotoBytes))
			}
			return nil
		},
		facts: placeOwner(id, &current),
		apply: func(context.Context, *store.Tx) error { return nil },
	})
	if err != nil {
		return types.Place{}, err
	}

	key := photoKey(id)
	if err := c.photos.Put(ctx, key, photo.Body, photo.Size, photo.ContentType); err != nil {
		c.logger.Error("upload place photo failed",
			zap.String("place_id", id),
			zap.String("key", key),
			zap.Error(err),
		)
		return types.Place{}, apperr.Internal("failed to store photo", err)
	}

	var previous string
	var place types.Place
	err = c.perform(ctx, identity, operation{
		op:     policy.OpUpdate,
		kind:   policy.KindPlace,
		target: id,
		facts:  placeOwner(id, &current),
		apply: func(ctx context.Context, tx *store.Tx) error {
			previous = current.PhotoKey
			current.PhotoKey = key
			var err error
			place, err = tx.Places().Update(ctx, current)
			return err
		},
	})
	if err != nil {
		c.removePhoto(ctx, id, key)
		return types.Place{}, err
	}

	if previous != "" && previous != key {
		c.removePhoto(ctx, id, previous)
	}
	c.publish(ctx, identity, policy.KindPlace, types.ActionUpdated, place.ID)
	return place, nil
}

// removePhoto deletes an object no place points at. Failures only leave an
// orphan behind, so they are logged.
func (c *Coordinator) removePhoto(ctx context.Context, placeID, key string) {
	if err := c.photos.Delete(ctx, key); err != nil {
		c.logger.Warn("delete place photo failed",
			zap.String("place_id", placeID),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// OpenPlacePhoto returns the stored photo of a place. The caller closes it.
func (c *Coordinator) OpenPlacePhoto(ctx context.Context, identity *auth.Identity, id string) (io.ReadCloser, error) {
	var place types.Place
	err := c.perform(ctx, identity, operation{
		op:     policy.OpRead,
		kind:   policy.KindPlace,
		target: id,
		apply: func(ctx context.Context, tx *store.Tx) error {
			var err error
			place, err = tx.Places().Get(ctx, id)
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	if place.PhotoKey == "" || c.photos == nil {
		return nil, apperr.NotFound("place has no photo")
	}

	body, err := c.photos.Get(ctx, place.PhotoKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("place has no photo")
	}
	if err != nil {
		c.logger.Error("open place photo failed",
			zap.String("place_id", id),
			zap.String("key", place.PhotoKey),
			zap.Error(err),
		)
		return nil, apperr.Internal("failed to open photo", err)
	}
	return body, nil
}
