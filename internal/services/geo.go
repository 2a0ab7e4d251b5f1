package services

import (
	"context"
	"strings"

	"github.com/hbnb/apiserver/internal/apperr"
	"github.com/hbnb/apiserver/internal/auth"
	"github.com/hbnb/apiserver/internal/policy"
	"github.com/hbnb/apiserver/internal/store"
	"github.com/hbnb/apiserver/types"
)

type CreateCountryInput struct {
	Name string
	Code string
}

type UpdateCountryInput struct {
	Name *string
	Code *string
}

type CreateCityInput struct {
	Name      string
	CountryID string
}

type UpdateCityInput struct {
	Name      *string
	CountryID *string
}

// CityFilter narrows ListCities. Empty fields match everything.
type CityFilter struct {
	CountryID string
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// validateCode accepts ISO 3166-1 alpha-2 codes in either case.
func validateCode(code string) error {
	if code == "" {
		return apperr.Invalid("code is required")
	}
	if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return apperr.Invalid("code must be a two-letter ISO 3166-1 code")
	}
	return nil
}

func (c *Coordinator) CreateCountry(ctx context.Context, identity *auth.Identity, in CreateCountryInput) (types.Country, error) {
	name := strings.TrimSpace(in.Name)
	code := normalizeCode(in.Code)

	var country types.Country
	err := c.perform(ctx, identity, operation{
		op:   policy.OpCreate,
		kind: policy.KindCountry,
		validate: func() error {
			if err := requireText("name", name, maxNameLength); err != nil {
				return err
			}
			return validateCode(code)
		},
		apply: func(ctx context.Context, tx *store.Tx) error {
			var err error
			country, err = tx.Countries().Insert(ctx, types.Country{Name: name, Code: code})
			return err
		},
	})
	if err != nil {
		return types.Country{}, err
	}
	c.publish(ctx, identity, policy.KindCountry, types.ActionCreated, country.ID)
	return country, nil
}

// GetCountry looks a country up by its ISO code.
func (c *Coordinator) GetCountry(ctx context.Context, identity *auth.Identity, code string) (types.Country, error) {
	var country types.Country
	err := c.perform(ctx, identity, operation{
		op:     policy.OpRead,
		kind:   policy.KindCountry,
		target: code,
		apply: func(ctx context.Context, tx *store.Tx) error {
			var err error
			country, err = tx.Countries().GetByCode(ctx, code)
			return err
		},
	})
	return country, err
}

func (c *Coordinator) ListCountries(ctx context.Context, identity *auth.Identity, page Page) ([]types.Country, int, error) {
	var (
		countries []types.Country
		total     int
	)
	err := c.perform(ctx, identity, operation{
		op:   policy.OpList,
		kind: policy.KindCountry,
		apply: func(ctx context.Context, tx *store.Tx) error {
			var err error
			if countries, err = tx.Countries().List(ctx, page.query(nil)); err != nil {
				return err
			}
			total, err = tx.Countries().Count(ctx, nil)
			return err
		},
	})
	return countries, total, err
}

func (c *Coordinator) UpdateCountry(ctx context.Context, identity *auth.Identity, code string, in UpdateCountryInput) (types.Country, error) {
	var name, newCode string
	var country types.Country
	err := c.perform(ctx, identity, operation{
		op:     policy.OpUpdate,
		kind:   policy.KindCountry,
		target: code,
		validate: func() error {
			if in.Name != nil {
				name = strings.TrimSpace(*in.Name)
				if err := requireText("name", name, maxNameLength); err != nil {
					return err
				}
			}
			if in.Code != nil {
				newCode = normalizeCode(*in.Code)
				return validateCode(newCode)
			}
			return nil
		},
		apply: func(ctx context.Context, tx *store.Tx) error {
			current, err := tx.Countries().GetByCode(ctx, code)
			if err != nil {
				return err
			}
			if in.Name != nil {
				current.Name = name
			}
			if in.Code != nil {
				current.Code = newCode
			}
			country, err = tx.Countries().Update(ctx, current)
			return err
		},
	})
	if err != nil {
		return types.Country{}, err
	}
	c.publish(ctx, identity, policy.KindCountry, types.ActionUpdated, country.ID)
	return country, nil
}

// DeleteCountry removes a country that has no cities.
func (c *Coordinator) DeleteCountry(ctx context.Context, identity *auth.Identity, code string) error {
	var id string
	err := c.perform(ctx, identity, operation{
		op:     policy.OpDelete,
		kind:   policy.KindCountry,
		target: code,
		apply: func(ctx context.Context, tx *store.Tx) error {
			country, err := tx.Countries().GetByCode(ctx, code)
			if err != nil {
				return err
			}
			id = country.ID
			if err := noDependents("country has cities")(tx.Cities().Count(ctx, store.Filter{"country_id": id})); err != nil {
				return err
			}
			return tx.Countries().Delete(ctx, id)
		},
	})
	if err != nil {
		return err
	}
	c.publish(ctx, identity, policy.KindCountry, types.ActionDeleted, id)
	return nil
}

func (c *Coordinator) CreateCity(ctx context.Context, identity *auth.Identity, in CreateCityInput) (types.City, error) {
	name := strings.TrimSpace(in.Name)

	var city types.City
	err := c.perform(ctx, identity, operation{
		op:   policy.OpCreate,
		kind: policy.KindCity,
		validate: func() error {
			if err := requireText("name", name, maxNameLength); err != nil {
				return err
			}
			return requireID("country_id", in.CountryID)
		},
		apply: func(ctx context.Context, tx *store.Tx) error {
			var err error
			city, err = tx.Cities().Insert(ctx, types.City{Name: name, CountryID: in.CountryID})
			return err
		},
	})
	if err != nil {
		return types.City{}, err
	}
	c.publish(ctx, identity, policy.KindCity, types.ActionCreated, city.ID)
	return city, nil
}

// CreateCityInCountry creates a city under the country with the given code.
// An unknown code is NOT_FOUND rather than a conflict.
func (c *Coordinator) CreateCityInCountry(ctx context.Context, identity *auth.Identity, code, name string) (types.City, error) {
	name = strings.TrimSpace(name)

	var city types.City
	err := c.perform(ctx, identity, operation{
		op:   policy.OpCreate,
		kind: policy.KindCity,
		validate: func() error {
			return requireText("name", name, maxNameLength)
		},
		apply: func(ctx context.Context, tx *store.Tx) error {
			country, err := tx.Countries().GetByCode(ctx, code)
			if err != nil {
				return missing(err, policy.KindCountry)
			}
			city, err = tx.Cities().Insert(ctx, types.City{Name: name, CountryID: country.ID})
			return err
		},
	})
	if err != nil {
		return types.City{}, err
	}
	c.publish(ctx, identity, policy.KindCity, types.ActionCreated, city.ID)
	return city, nil
}

func (c *Coordinator) GetCity(ctx context.Context, identity *auth.Identity, id string) (types.City, error) {
	var city types.City
	err := c.perform(ctx, identity, operation{
		op:     policy.OpRead,
		kind:   policy.KindCity,
		target: id,
		apply: func(ctx context.Context, tx *store.Tx) error {
			var err error
			city, err = tx.Cities().Get(ctx, id)
			return err
		},
	})
	return city, err
}

func (c *Coordinator) ListCities(ctx context.Context, identity *auth.Identity, filter CityFilter, page Page) ([]types.City, int, error) {
	where := store.Filter{}
	if filter.CountryID != "" {
		where["country_id"] = filter.CountryID
	}
	return c.listCities(ctx, identity, page, func(context.Context, *store.Tx) (store.Filter, error) {
		return where, nil
	})
}

// ListCitiesByCountry lists the cities of the country with the given code.
func (c *Coordinator) ListCitiesByCountry(ctx context.Context, identity *auth.Identity, code string, page Page) ([]types.City, int, error) {
	return c.listCities(ctx, identity, page, func(ctx context.Context, tx *store.Tx) (store.Filter, error) {
		country, err := tx.Countries().GetByCode(ctx, code)
		if err != nil {
			return nil, missing(err, policy.KindCountry)
		}
		return store.Filter{"country_id": country.ID}, nil
	})
}

func (c *Coordinator) listCities(
	ctx context.Context,
	identity *auth.Identity,
	page Page,
	scope func(context.Context, *store.Tx) (store.Filter, error),
) ([]types.City, int, error) {
	var (
		cities []types.City
		total  int
	)
	err := c.perform(ctx, identity, operation{
		op:   policy.OpList,
		kind: policy.KindCity,
		apply: func(ctx context.Context, tx *store.Tx) error {
			filter, err := scope(ctx, tx)
			if err != nil {
				return err
			}
			if cities, err = tx.Cities().List(ctx, page.query(filter)); err != nil {
				return err
			}
			total, err = tx.Cities().Count(ctx, filter)
			return err
		},
	})
	return cities, total, err
}

func (c *Coordinator) UpdateCity(ctx context.Context, identity *auth.Identity, id string, in UpdateCityInput) (types.City, error) {
	var name string
	var city types.City
	err := c.perform(ctx, identity, operation{
		op:     policy.OpUpdate,
		kind:   policy.KindCity,
		target: id,
		validate: func() error {
			if in.Name != nil {
				name = strings.TrimSpace(*in.Name)
				if err := requireText("name", name, maxNameLength); err != nil {
					return err
				}
			}
			if in.CountryID != nil {
				return requireID("country_id", *in.CountryID)
			}
			return nil
		},
		apply: func(ctx context.Context, tx *store.Tx) error {
			current, err := tx.Cities().Get(ctx, id)
			if err != nil {
				return err
			}
			if in.Name != nil {
				current.Name = name
			}
			if in.CountryID != nil {
				current.CountryID = *in.CountryID
			}
			city, err = tx.Cities().Update(ctx, current)
			return err
		},
	})
	if err != nil {
		return types.City{}, err
	}
	c.publish(ctx, identity, policy.KindCity, types.ActionUpdated, city.ID)
	return city, nil
}

// DeleteCity removes a city that has no places.
func (c *Coordinator) DeleteCity(ctx context.Context, identity *auth.Identity, id string) error {
	err := c.perform(ctx, identity, operation{
		op:     policy.OpDelete,
		kind:   policy.KindCity,
		target: id,
		apply: func(ctx context.Context, tx *store.Tx) error {
			if _, err := tx.Cities().Get(ctx, id); err != nil {
				return err
			}
			if err := noDependents("city has places")(tx.Places().Count(ctx, store.Filter{"city_id": id})); err != nil {
				return err
			}
			return tx.Cities().Delete(ctx, id)
		},
	})
	if err != nil {
		return err
	}
	c.publish(ctx, identity, policy.KindCity, types.ActionDeleted, id)
	return nil
}
