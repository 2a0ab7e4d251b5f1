package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hbnb/apiserver/types"
)

// Filter selects records by exact match on named columns. An empty filter
// matches every record.
type Filter map[string]any

// Query describes a list request. A zero Limit returns every match.
type Query struct {
	Filter Filter
	Limit  int
	Offset int
}

// Store persists the six entity kinds. All access goes through a Tx.
type Store struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the clock used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New constructs a Store over db. The SQL dialect follows the driver name.
func New(db *sqlx.DB, opts ...Option) *Store {
	dialect := "postgres"
	if db.DriverName() == "sqlite3" {
		dialect = "sqlite3"
	}
	s := &Store{
		db:      db,
		dialect: goqu.Dialect(dialect),
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithTx runs fn inside one transaction. The transaction is committed when
// fn returns nil and rolled back otherwise; either happens exactly once.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	tx := &Tx{tx: sqlTx, dialect: s.dialect, now: s.now}

	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return mapDriverError(fmt.Errorf("commit transaction: %w", err))
	}
	committed = true
	return nil
}

// Tx is the unit of work handed to WithTx callbacks. It must not be used
// after the callback returns.
type Tx struct {
	tx      *sqlx.Tx
	dialect goqu.DialectWrapper
	now     func() time.Time
}

func (tx *Tx) Users() *UserRepository {
	return &UserRepository{tx: tx, t: newTable[types.User](tx, "users", userColumns)}
}

func (tx *Tx) Countries() *CountryRepository {
	return &CountryRepository{tx: tx, t: newTable[types.Country](tx, "countries", countryColumns)}
}

func (tx *Tx) Cities() *CityRepository {
	return &CityRepository{tx: tx, t: newTable[types.City](tx, "cities", cityColumns)}
}

func (tx *Tx) Amenities() *AmenityRepository {
	return &AmenityRepository{tx: tx, t: newTable[types.Amenity](tx, "amenities", amenityColumns)}
}

func (tx *Tx) Places() *PlaceRepository {
	return &PlaceRepository{tx: tx, t: newTable[types.Place](tx, "places", placeColumns)}
}

func (tx *Tx) Reviews() *ReviewRepository {
	return &ReviewRepository{tx: tx, t: newTable[types.Review](tx, "reviews", reviewColumns)}
}

// exists reports whether a row with id is present in table name.
func (tx *Tx) exists(ctx context.Context, name, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	query, args, err := tx.dialect.From(name).
		Select(goqu.COUNT("*")).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return false, err
	}
	var n int
	if err := tx.tx.GetContext(ctx, &n, query, args...); err != nil {
		return false, err
	}
	return n > 0, nil
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func columns(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// table holds the SQL shared by every entity repository.
type table[T any] struct {
	tx      *Tx
	name    string
	columns map[string]struct{}
}

func newTable[T any](tx *Tx, name string, cols map[string]struct{}) table[T] {
	return table[T]{tx: tx, name: name, columns: cols}
}

func (t table[T]) get(ctx context.Context, where goqu.Ex) (T, error) {
	var out T
	query, args, err := t.tx.dialect.From(t.name).Where(where).Limit(1).Prepared(true).ToSQL()
	if err != nil {
		return out, err
	}
	if err := t.tx.tx.GetContext(ctx, &out, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return out, ErrNotFound
		}
		return out, err
	}
	return out, nil
}

func (t table[T]) where(filter Filter) (goqu.Ex, error) {
	where := goqu.Ex{}
	for column, value := range filter {
		if _, ok := t.columns[column]; !ok {
			return nil, fmt.Errorf("%w: unknown %s column %q", ErrInvalidFilter, t.name, column)
		}
		where[column] = value
	}
	return where, nil
}

func (t table[T]) list(ctx context.Context, q Query) ([]T, error) {
	where, err := t.where(q.Filter)
	if err != nil {
		return nil, err
	}

	ds := t.tx.dialect.From(t.name).
		Where(where).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc())
	if q.Limit > 0 {
		ds = ds.Limit(uint(q.Limit))
	}
	if q.Offset > 0 {
		ds = ds.Offset(uint(q.Offset))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	items := []T{}
	if err := t.tx.tx.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (t table[T]) count(ctx context.Context, filter Filter) (int, error) {
	where, err := t.where(filter)
	if err != nil {
		return 0, err
	}
	query, args, err := t.tx.dialect.From(t.name).
		Select(goqu.COUNT("*")).
		Where(where).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, err
	}
	var n int
	if err := t.tx.tx.GetContext(ctx, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

func (t table[T]) insert(ctx context.Context, record goqu.Record) error {
	query, args, err := t.tx.dialect.Insert(t.name).Rows(record).Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	if _, err := t.tx.tx.ExecContext(ctx, query, args...); err != nil {
		return mapDriverError(err)
	}
	return nil
}

func (t table[T]) update(ctx context.Context, id string, record goqu.Record) error {
	query, args, err := t.tx.dialect.Update(t.name).
		Set(record).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}
	result, err := t.tx.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return mapDriverError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t table[T]) remove(ctx context.Context, id string) error {
	query, args, err := t.tx.dialect.Delete(t.name).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}
	result, err := t.tx.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return mapDriverError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
