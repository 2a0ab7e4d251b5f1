package store

import (
	"context"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"github.com/hbnb/apiserver/types"
)

var countryColumns = columns("id", "name", "code")

// CountryRepository handles persistence for countries.
type CountryRepository struct {
	tx *Tx
	t  table[types.Country]
}

func (r *CountryRepository) Get(ctx context.Context, id string) (types.Country, error) {
	return r.t.get(ctx, goqu.Ex{"id": id})
}

// GetByCode looks up a country by its ISO code. The code is matched
// upper-cased.
func (r *CountryRepository) GetByCode(ctx context.Context, code string) (types.Country, error) {
	return r.t.get(ctx, goqu.Ex{"code": strings.ToUpper(code)})
}

func (r *CountryRepository) List(ctx context.Context, q Query) ([]types.Country, error) {
	return r.t.list(ctx, q)
}

func (r *CountryRepository) Count(ctx context.Context, filter Filter) (int, error) {
	return r.t.count(ctx, filter)
}

func (r *CountryRepository) Insert(ctx context.Context, country types.Country) (types.Country, error) {
	country.Code = strings.ToUpper(strings.TrimSpace(country.Code))
	if err := validateCountry(country); err != nil {
		return types.Country{}, err
	}
	if country.ID == "" {
		country.ID = newID()
	}
	now := r.tx.now()
	country.CreatedAt = now
	country.UpdatedAt = now

	err := r.t.insert(ctx, goqu.Record{
		"id":         country.ID,
		"name":       country.Name,
		"code":       country.Code,
		"created_at": country.CreatedAt,
		"updated_at": country.UpdatedAt,
	})
	if err != nil {
		return types.Country{}, err
	}
	return country, nil
}

func (r *CountryRepository) Update(ctx context.Context, country types.Country) (types.Country, error) {
	country.Code = strings.ToUpper(strings.TrimSpace(country.Code))
	if err := validateCountry(country); err != nil {
		return types.Country{}, err
	}

	err := r.t.update(ctx, country.ID, goqu.Record{
		"name":       country.Name,
		"code":       country.Code,
		"updated_at": r.tx.now(),
	})
	if err != nil {
		return types.Country{}, err
	}
	return r.Get(ctx, country.ID)
}

func (r *CountryRepository) Delete(ctx context.Context, id string) error {
	return r.t.remove(ctx, id)
}

func validateCountry(country types.Country) error {
	if strings.TrimSpace(country.Name) == "" {
		return violation("countries.name")
	}
	if country.Code == "" {
		return violation("countries.code")
	}
	return nil
}
