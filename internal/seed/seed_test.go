package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hbnb/apiserver/config"
	"github.com/hbnb/apiserver/internal/auth"
	"github.com/hbnb/apiserver/internal/db"
	"github.com/hbnb/apiserver/internal/store"
	"github.com/hbnb/apiserver/types"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()

	cfg := config.DatabaseConfig{Driver: config.DriverSQLite, DBName: "seed_" + uuid.NewString()}
	conn, err := db.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.MigrateUp(cfg))
	return store.New(conn)
}

func TestParseCountries(t *testing.T) {
	countries, err := ParseCountries(strings.NewReader("code,name\nuy,Uruguay\n\"KR\",\"Korea (South)\"\n"))
	require.NoError(t, err)
	assert.Equal(t, []types.Country{
		{Code: "UY", Name: "Uruguay"},
		{Code: "KR", Name: "Korea (South)"},
	}, countries)

	_, err = ParseCountries(strings.NewReader("code,name\nURY,Uruguay\n"))
	assert.Error(t, err)

	_, err = ParseCountries(strings.NewReader("code,name\nUY\n"))
	assert.Error(t, err)
}

func TestEmbeddedCountries(t *testing.T) {
	countries, err := ParseCountries(strings.NewReader(string(countriesCSV)))
	require.NoError(t, err)
	assert.Greater(t, len(countries), 240)

	seen := map[string]bool{}
	for _, c := range countries {
		assert.False(t, seen[c.Code], "duplicate code %s", c.Code)
		seen[c.Code] = true
	}
	assert.True(t, seen["UY"])
}

func TestCountriesIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	err := st.WithTx(ctx, func(tx *store.Tx) error {
		_, err := tx.Countries().Insert(ctx, types.Country{Code: "UY", Name: "República Oriental"})
		return err
	})
	require.NoError(t, err)

	first, err := Countries(ctx, st)
	require.NoError(t, err)
	second, err := Countries(ctx, st)
	require.NoError(t, err)
	assert.Zero(t, second)

	var total int
	var uy types.Country
	err = st.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		if total, err = tx.Countries().Count(ctx, nil); err != nil {
			return err
		}
		uy, err = tx.Countries().GetByCode(ctx, "UY")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, first+1, total)
	assert.Equal(t, "República Oriental", uy.Name)
}

func TestAdmin(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	verifier := auth.NewVerifier("secret", auth.WithBcryptCost(bcrypt.MinCost))

	created, err := Admin(ctx, st, verifier, "root@example.com", "password123")
	require.NoError(t, err)
	assert.True(t, created.IsAdmin)
	assert.True(t, verifier.Verify("password123", created.PasswordHash))

	again, err := Admin(ctx, st, verifier, "root@example.com", "other-password")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.True(t, verifier.Verify("password123", again.PasswordHash))

	_, err = Admin(ctx, st, verifier, "", "password123")
	assert.Error(t, err)
}

func TestAdminPromotesExistingUser(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	verifier := auth.NewVerifier("secret", auth.WithBcryptCost(bcrypt.MinCost))

	hash, err := verifier.Hash("password123")
	require.NoError(t, err)
	var user types.User
	err = st.WithTx(ctx, func(tx *store.Tx) error {
		user, err = tx.Users().Insert(ctx, types.User{Email: "alice@example.com", PasswordHash: hash})
		return err
	})
	require.NoError(t, err)

	admin, err := Admin(ctx, st, verifier, "alice@example.com", "ignored-password")
	require.NoError(t, err)
	assert.Equal(t, user.ID, admin.ID)
	assert.True(t, admin.IsAdmin)
}
