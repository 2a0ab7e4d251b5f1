package store

import (
	"context"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"github.com/hbnb/apiserver/types"
)

var amenityColumns = columns("id", "name")

// AmenityRepository handles persistence for amenities.
type AmenityRepository struct {
	tx *Tx
	t  table[types.Amenity]
}

func (r *AmenityRepository) Get(ctx context.Context, id string) (types.Amenity, error) {
	return r.t.get(ctx, goqu.Ex{"id": id})
}

func (r *AmenityRepository) GetByName(ctx context.Context, name string) (types.Amenity, error) {
	return r.t.get(ctx, goqu.Ex{"name": name})
}

func (r *AmenityRepository) List(ctx context.Context, q Query) ([]types.Amenity, error) {
	return r.t.list(ctx, q)
}

func (r *AmenityRepository) Count(ctx context.Context, filter Filter) (int, error) {
	return r.t.count(ctx, filter)
}

func (r *AmenityRepository) Insert(ctx context.Context, amenity types.Amenity) (types.Amenity, error) {
	if strings.TrimSpace(amenity.Name) == "" {
		return types.Amenity{}, violation("amenities.name")
	}
	if amenity.ID == "" {
		amenity.ID = newID()
	}
	now := r.tx.now()
	amenity.CreatedAt = now
	amenity.UpdatedAt = now

	err := r.t.insert(ctx, goqu.Record{
		"id":         amenity.ID,
		"name":       amenity.Name,
		"created_at": amenity.CreatedAt,
		"updated_at": amenity.UpdatedAt,
	})
	if err != nil {
		return types.Amenity{}, err
	}
	return amenity, nil
}

func (r *AmenityRepository) Update(ctx context.Context, amenity types.Amenity) (types.Amenity, error) {
	if strings.TrimSpace(amenity.Name) == "" {
		return types.Amenity{}, violation("amenities.name")
	}

	err := r.t.update(ctx, amenity.ID, goqu.Record{
		"name":       amenity.Name,
		"updated_at": r.tx.now(),
	})
	if err != nil {
		return types.Amenity{}, err
	}
	return r.Get(ctx, amenity.ID)
}

func (r *AmenityRepository) Delete(ctx context.Context, id string) error {
	return r.t.remove(ctx, id)
}
