package store

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/hbnb/apiserver/types"
)

var reviewColumns = columns("id", "place_id", "user_id", "rating")

// ReviewRepository handles persistence for reviews.
type ReviewRepository struct {
	tx *Tx
	t  table[types.Review]
}

func (r *ReviewRepository) Get(ctx context.Context, id string) (types.Review, error) {
	return r.t.get(ctx, goqu.Ex{"id": id})
}

// GetByUserAndPlace returns the review userID wrote for placeID, if any.
func (r *ReviewRepository) GetByUserAndPlace(ctx context.Context, userID, placeID string) (types.Review, error) {
	return r.t.get(ctx, goqu.Ex{"user_id": userID, "place_id": placeID})
}

func (r *ReviewRepository) List(ctx context.Context, q Query) ([]types.Review, error) {
	return r.t.list(ctx, q)
}

func (r *ReviewRepository) Count(ctx context.Context, filter Filter) (int, error) {
	return r.t.count(ctx, filter)
}

func (r *ReviewRepository) Insert(ctx context.Context, review types.Review) (types.Review, error) {
	if err := r.validate(ctx, review); err != nil {
		return types.Review{}, err
	}
	if review.ID == "" {
		review.ID = newID()
	}
	now := r.tx.now()
	review.CreatedAt = now
	review.UpdatedAt = now

	err := r.t.insert(ctx, goqu.Record{
		"id":         review.ID,
		"place_id":   review.PlaceID,
		"user_id":    review.UserID,
		"rating":     review.Rating,
		"comment":    review.Comment,
		"created_at": review.CreatedAt,
		"updated_at": review.UpdatedAt,
	})
	if err != nil {
		return types.Review{}, err
	}
	return review, nil
}

// Update writes the rating and comment. Author and place never change.
func (r *ReviewRepository) Update(ctx context.Context, review types.Review) (types.Review, error) {
	if !types.ValidRating(review.Rating) {
		return types.Review{}, violation("reviews.rating")
	}

	err := r.t.update(ctx, review.ID, goqu.Record{
		"rating":     review.Rating,
		"comment":    review.Comment,
		"updated_at": r.tx.now(),
	})
	if err != nil {
		return types.Review{}, err
	}
	return r.Get(ctx, review.ID)
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	return r.t.remove(ctx, id)
}

func (r *ReviewRepository) validate(ctx context.Context, review types.Review) error {
	if !types.ValidRating(review.Rating) {
		return violation("reviews.rating")
	}
	place, err := r.tx.Places().Get(ctx, review.PlaceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return violation("reviews.place_id")
		}
		return err
	}
	ok, err := r.tx.exists(ctx, "users", review.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return violation("reviews.user_id")
	}
	if place.HostID == review.UserID {
		return violation("reviews.own_place")
	}
	return nil
}
