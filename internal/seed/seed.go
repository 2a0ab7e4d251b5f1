package seed

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hbnb/apiserver/internal/store"
	"github.com/hbnb/apiserver/types"
)

//go:embed countries.csv
var countriesCSV []byte

// Hasher digests the bootstrap admin password.
type Hasher interface {
	Hash(secret string) (string, error)
}

// ParseCountries reads "code,name" records. The first record is a header.
func ParseCountries(r io.Reader) ([]types.Country, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read countries header: %w", err)
	}

	var countries []types.Country
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read countries: %w", err)
		}

		code := strings.ToUpper(strings.TrimSpace(record[0]))
		name := strings.TrimSpace(record[1])
		if len(code) != 2 || name == "" {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("invalid country on line %d", line)
		}
		countries = append(countries, types.Country{Code: code, Name: name})
	}
	return countries, nil
}

// Countries inserts every ISO 3166-1 country whose code is not stored yet
// and returns how many were inserted.
func Countries(ctx context.Context, st *store.Store) (int, error) {
	countries, err := ParseCountries(bytes.NewReader(countriesCSV))
	if err != nil {
		return 0, err
	}

	var inserted int
	err = st.WithTx(ctx, func(tx *store.Tx) error {
		inserted = 0
		for _, country := range countries {
			_, err := tx.Countries().GetByCode(ctx, country.Code)
			if err == nil {
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			if _, err := tx.Countries().Insert(ctx, country); err != nil {
				return fmt.Errorf("insert country %s: %w", country.Code, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed countries: %w", err)
	}
	return inserted, nil
}

// Admin makes sure an administrator with email exists. A new account gets
// password; an existing account is promoted and keeps its password.
func Admin(ctx context.Context, st *store.Store, hasher Hasher, email, password string) (types.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return types.User{}, errors.New("admin email and password are required")
	}

	var admin types.User
	err := st.WithTx(ctx, func(tx *store.Tx) error {
		existing, err := tx.Users().GetByEmail(ctx, email)
		switch {
		case err == nil:
			if existing.IsAdmin {
				admin = existing
				return nil
			}
			existing.IsAdmin = true
			admin, err = tx.Users().Update(ctx, existing)
			return err
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		hash, err := hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		admin, err = tx.Users().Insert(ctx, types.User{Email: email, PasswordHash: hash, IsAdmin: true})
		return err
	})
	if err != nil {
		return types.User{}, fmt.Errorf("seed admin: %w", err)
	}
	return admin, nil
}
