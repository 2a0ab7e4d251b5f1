package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hbnb/apiserver/internal/apperr"
	"github.com/hbnb/apiserver/internal/auth"
	"github.com/hbnb/apiserver/internal/policy"
	"github.com/hbnb/apiserver/internal/store"
	"github.com/hbnb/apiserver/types"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Credentials hashes passwords and issues tokens.
type Credentials interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
	Issue(userID string, isAdmin bool) (string, error)
}

// EventPublisher receives committed entity changes.
type EventPublisher interface {
	PublishEntityEvent(ctx context.Context, event types.EntityEvent) error
}

// PhotoStorage holds place photos.
type PhotoStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Page selects a window of a list result.
type Page struct {
	Offset int
	Limit  int
}

func (p Page) query(filter store.Filter) store.Query {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return store.Query{Filter: filter, Limit: limit, Offset: offset}
}

// Coordinator runs every entity operation: it checks the caller against the
// access policy and applies the change in one store transaction.
type Coordinator struct {
	store       *store.Store
	credentials Credentials
	events      EventPublisher
	photos      PhotoStorage
	logger      *zap.Logger
	now         func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithEvents publishes an EntityEvent after every committed mutation.
func WithEvents(events EventPublisher) Option {
	return func(c *Coordinator) {
		c.events = events
	}
}

// WithPhotoStorage enables place photos.
func WithPhotoStorage(photos PhotoStorage) Option {
	return func(c *Coordinator) {
		c.photos = photos
	}
}

// WithLogger sets the logger used for internal failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

func NewCoordinator(st *store.Store, credentials Credentials, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:       st,
		credentials: credentials,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// operation is one request against the store.
type operation struct {
	op     policy.Operation
	kind   policy.Kind
	target string
	scoped bool

	// validate checks the input before any store access.
	validate func() error

	// facts fills in the policy request from current store state.
	facts func(ctx context.Context, tx *store.Tx, req *policy.Request) error

	// apply runs once the policy allows the request.
	apply func(ctx context.Context, tx *store.Tx) error
}

func (c *Coordinator) perform(ctx context.Context, identity *auth.Identity, o operation) error {
	if identity == nil && policy.RequiresIdentity(o.op, o.kind, o.scoped) {
		return apperr.Unauthenticated("authentication required")
	}
	if o.validate != nil {
		if err := o.validate(); err != nil {
			return err
		}
	}

	err := c.store.WithTx(ctx, func(tx *store.Tx) error {
		req := policy.Request{
			Identity:  identity,
			Operation: o.op,
			Kind:      o.kind,
			TargetID:  o.target,
			Scoped:    o.scoped,
		}
		if o.facts != nil {
			if err := o.facts(ctx, tx, &req); err != nil {
				return err
			}
		}
		if err := policy.Authorize(req); err != nil {
			return err
		}
		return o.apply(ctx, tx)
	})
	return c.translate(o, err)
}

func (c *Coordinator) translate(o operation, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(fmt.Sprintf("%s not found", o.kind))
	case errors.Is(err, store.ErrConstraint):
		return apperr.Conflict(conflictMessage(err), err)
	case errors.Is(err, store.ErrInvalidFilter):
		return apperr.Invalid(err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperr.Internal("request cancelled", err)
	}

	c.logger.Error("entity operation failed",
		zap.String("operation", string(o.op)),
		zap.String("kind", string(o.kind)),
		zap.String("target", o.target),
		zap.Error(err),
	)
	return apperr.Internal("internal error", err)
}

var conflictMessages = map[string]string{
	"users_email_key":              "email already registered",
	"users.email":                  "email already registered",
	"countries_code_key":           "country code already exists",
	"countries.code":               "country code already exists",
	"amenities_name_key":           "amenity already exists",
	"amenities.name":               "amenity already exists",
	"reviews_user_id_place_id_key": "place already reviewed by this user",
	"cities.country_id":            "country does not exist",
	"places.city_id":               "city does not exist",
	"places.host_id":               "host does not exist",
	"reviews.place_id":             "place does not exist",
	"reviews.user_id":              "user does not exist",
	"reviews.own_place":            "cannot review your own place",
	"reviews.rating":               "rating must be between 1 and 5",
	"cities_country_id_fkey":       "country does not exist",
	"places_city_id_fkey":          "city does not exist",
	"places_host_id_fkey":          "host does not exist",
	"reviews_place_id_fkey":        "place does not exist",
	"reviews_user_id_fkey":         "user does not exist",
	"reviews_rating_check":         "rating must be between 1 and 5",
}

func conflictMessage(err error) string {
	var cErr *store.ConstraintError
	if errors.As(err, &cErr) {
		if msg, ok := conflictMessages[cErr.Constraint]; ok {
			return msg
		}
		// SQLite names composite unique keys by their columns.
		if strings.Contains(cErr.Constraint, "reviews.user_id") && strings.Contains(cErr.Constraint, "reviews.place_id") {
			return "place already reviewed by this user"
		}
		return "conflicts with existing data"
	}
	return "conflict"
}

// missing turns a store miss on a referenced entity into NOT_FOUND naming
// that entity.
func missing(err error, kind policy.Kind) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(fmt.Sprintf("%s not found", kind))
	}
	return err
}

// noDependents returns a check that fails with CONFLICT when a count of
// dependent records is non-zero. It takes a Count result directly:
//
//	noDependents("city has places")(tx.Places().Count(ctx, filter))
func noDependents(message string) func(int, error) error {
	return func(n int, err error) error {
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict(message, nil)
		}
		return nil
	}
}

// publish reports a committed change. Delivery failures are logged, the
// mutation itself already succeeded.
func (c *Coordinator) publish(ctx context.Context, identity *auth.Identity, kind policy.Kind, action types.EntityAction, id string) {
	if c.events == nil {
		return
	}
	event := types.EntityEvent{
		Kind:       string(kind),
		Action:     action,
		EntityID:   id,
		OccurredAt: c.now().UTC(),
	}
	if identity != nil {
		event.ActorID = identity.UserID
	}
	if err := c.events.PublishEntityEvent(ctx, event); err != nil {
		c.logger.Warn("publish entity event failed",
			zap.String("kind", event.Kind),
			zap.String("action", string(event.Action)),
			zap.String("entity_id", event.EntityID),
			zap.Error(err),
		)
	}
}
