package store

import (
	"context"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"github.com/hbnb/apiserver/types"
)

var placeColumns = columns("id", "name", "city_id", "host_id")

// PlaceRepository handles persistence for places.
type PlaceRepository struct {
	tx *Tx
	t  table[types.Place]
}

func (r *PlaceRepository) Get(ctx context.Context, id string) (types.Place, error) {
	return r.t.get(ctx, goqu.Ex{"id": id})
}

func (r *PlaceRepository) List(ctx context.Context, q Query) ([]types.Place, error) {
	return r.t.list(ctx, q)
}

func (r *PlaceRepository) Count(ctx context.Context, filter Filter) (int, error) {
	return r.t.count(ctx, filter)
}

func (r *PlaceRepository) Insert(ctx context.Context, place types.Place) (types.Place, error) {
	if err := r.validate(ctx, place); err != nil {
		return types.Place{}, err
	}
	if place.ID == "" {
		place.ID = newID()
	}
	now := r.tx.now()
	place.CreatedAt = now
	place.UpdatedAt = now

	err := r.t.insert(ctx, goqu.Record{
		"id":          place.ID,
		"name":        place.Name,
		"description": place.Description,
		"city_id":     place.CityID,
		"host_id":     place.HostID,
		"photo_key":   place.PhotoKey,
		"created_at":  place.CreatedAt,
		"updated_at":  place.UpdatedAt,
	})
	if err != nil {
		return types.Place{}, err
	}
	return place, nil
}

// Update writes the mutable fields of place. The host never changes.
func (r *PlaceRepository) Update(ctx context.Context, place types.Place) (types.Place, error) {
	if err := r.validate(ctx, place); err != nil {
		return types.Place{}, err
	}

	err := r.t.update(ctx, place.ID, goqu.Record{
		"name":        place.Name,
		"description": place.Description,
		"city_id":     place.CityID,
		"photo_key":   place.PhotoKey,
		"updated_at":  r.tx.now(),
	})
	if err != nil {
		return types.Place{}, err
	}
	return r.Get(ctx, place.ID)
}

func (r *PlaceRepository) Delete(ctx context.Context, id string) error {
	return r.t.remove(ctx, id)
}

func (r *PlaceRepository) validate(ctx context.Context, place types.Place) error {
	if strings.TrimSpace(place.Name) == "" {
		return violation("places.name")
	}
	ok, err := r.tx.exists(ctx, "cities", place.CityID)
	if err != nil {
		return err
	}
	if !ok {
		return violation("places.city_id")
	}
	ok, err = r.tx.exists(ctx, "users", place.HostID)
	if err != nil {
		return err
	}
	if !ok {
		return violation("places.host_id")
	}
	return nil
}
