package store

import (
	"context"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"github.com/hbnb/apiserver/types"
)

var cityColumns = columns("id", "name", "country_id")

// CityRepository handles persistence for cities.
type CityRepository struct {
	tx *Tx
	t  table[types.City]
}

func (r *CityRepository) Get(ctx context.Context, id string) (types.City, error) {
	return r.t.get(ctx, goqu.Ex{"id": id})
}

func (r *CityRepository) List(ctx context.Context, q Query) ([]types.City, error) {
	return r.t.list(ctx, q)
}

func (r *CityRepository) Count(ctx context.Context, filter Filter) (int, error) {
	return r.t.count(ctx, filter)
}

func (r *CityRepository) Insert(ctx context.Context, city types.City) (types.City, error) {
	if err := r.validate(ctx, city); err != nil {
		return types.City{}, err
	}
	if city.ID == "" {
		city.ID = newID()
	}
	now := r.tx.now()
	city.CreatedAt = now
	city.UpdatedAt = now

	err := r.t.insert(ctx, goqu.Record{
		"id":         city.ID,
		"name":       city.Name,
		"country_id": city.CountryID,
		"created_at": city.CreatedAt,
		"updated_at": city.UpdatedAt,
	})
	if err != nil {
		return types.City{}, err
	}
	return city, nil
}

func (r *CityRepository) Update(ctx context.Context, city types.City) (types.City, error) {
	if err := r.validate(ctx, city); err != nil {
		return types.City{}, err
	}

	err := r.t.update(ctx, city.ID, goqu.Record{
		"name":       city.Name,
		"country_id": city.CountryID,
		"updated_at": r.tx.now(),
	})
	if err != nil {
		return types.City{}, err
	}
	return r.Get(ctx, city.ID)
}

func (r *CityRepository) Delete(ctx context.Context, id string) error {
	return r.t.remove(ctx, id)
}

func (r *CityRepository) validate(ctx context.Context, city types.City) error {
	if strings.TrimSpace(city.Name) == "" {
		return violation("cities.name")
	}
	ok, err := r.tx.exists(ctx, "countries", city.CountryID)
	if err != nil {
		return err
	}
	if !ok {
		return violation("cities.country_id")
	}
	return nil
}
