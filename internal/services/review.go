package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/hbnb/apiserver/internal/apperr"
	"github.com/hbnb/apiserver/internal/auth"
	"github.com/hbnb/apiserver/internal/policy"
	"github.com/hbnb/apiserver/internal/store"
	"github.com/hbnb/apiserver/types"
)

type CreateReviewInput struct {
	Rating  int
	Comment string
}

type UpdateReviewInput struct {
	Rating  *int
	Comment *string
}

func validateRating(rating int) error {
	if !types.ValidRating(rating) {
		return apperr.Invalid(fmt.Sprintf("rating must be between %d and %d", types.MinRating, types.MaxRating))
	}
	return nil
}

// CreateReview records the caller's review of a place. Hosts cannot review
// their own places and each user reviews a place at most once.
func (c *Coordinator) CreateReview(ctx context.Context, identity *auth.Identity, placeID string, in CreateReviewInput) (types.Review, error) {
	var review types.Review
	err := c.perform(ctx, identity, operation{
		op:     policy.OpCreate,
		kind:   policy.KindReview,
		target: placeID,
		validate: func() error {
			if err := validateRating(in.Rating); err != nil {
				return err
			}
			return limitText("comment", in.Comment, maxCommentLength)
		},
		facts: func(ctx context.Context, tx *store.Tx, req *policy.Request) error {
			place, err := tx.Places().Get(ctx, placeID)
			if err != nil {
				return missing(err, policy.KindPlace)
			}
			req.TargetOwner = place.HostID

			_, err = tx.Reviews().GetByUserAndPlace(ctx, identity.UserID, placeID)
			switch {
			case err == nil:
				req.Duplicate = true
			case !errors.Is(err, store.ErrNotFound):
				return err
			}
			return nil
		},
		apply: func(ctx context.Context, tx *store.Tx) error {
			var err error
			review, err = tx.Reviews().Insert(ctx, types.Review{
				PlaceID: placeID,
				UserID:  identity.UserID,
				Rating:  in.Rating,
				Comment: in.Comment,
			})
			return err
		},
	})
	if err != nil {
		return types.Review{}, err
	}
	c.publish(ctx, identity, policy.KindReview, types.ActionCreated, review.ID)
	return review, nil
}

func (c *Coordinator) GetReview(ctx context.Context, identity *auth.Identity, id string) (types.Review, error) {
	var review types.Review
	err := c.perform(ctx, identity, operation{
		op:     policy.OpRead,
		kind:   policy.KindReview,
		target: id,
		apply: func(ctx context.Context, tx *store.Tx) error {
			var err error
			review, err = tx.Reviews().Get(ctx, id)
			return err
		},
	})
	return review, err
}

// ListPlaceReviews lists the reviews of a place. It is public.
func (c *Coordinator) ListPlaceReviews(ctx context.Context, identity *auth.Identity, placeID string, page Page) ([]types.Review, int, error) {
	return c.listReviews(ctx, identity, false, page, func(ctx context.Context, tx *store.Tx) (store.Filter, error) {
		if _, err := tx.Places().Get(ctx, placeID); err != nil {
			return nil, missing(err, policy.KindPlace)
		}
		return store.Filter{"place_id": placeID}, nil
	})
}

// ListUserReviews lists the reviews written by a user.
func (c *Coordinator) ListUserReviews(ctx context.Context, identity *auth.Identity, userID string, page Page) ([]types.Review, int, error) {
	return c.listReviews(ctx, identity, true, page, func(ctx context.Context, tx *store.Tx) (store.Filter, error) {
		if _, err := tx.Users().Get(ctx, userID); err != nil {
			return nil, missing(err, policy.KindUser)
		}
		return store.Filter{"user_id": userID}, nil
	})
}

func (c *Coordinator) listReviews(
	ctx context.Context,
	identity *auth.Identity,
	scoped bool,
	page Page,
	scope func(context.Context, *store.Tx) (store.Filter, error),
) ([]types.Review, int, error) {
	var (
		reviews []types.Review
		total   int
	)
	err := c.perform(ctx, identity, operation{
		op:     policy.OpList,
		kind:   policy.KindReview,
		scoped: scoped,
		apply: func(ctx context.Context, tx *store.Tx) error {
			filter, err := scope(ctx, tx)
			if err != nil {
				return err
			}
			if reviews, err = tx.Reviews().List(ctx, page.query(filter)); err != nil {
				return err
			}
			total, err = tx.Reviews().Count(ctx, filter)
			return err
		},
	})
	return reviews, total, err
}

// reviewAuthor loads the review and records its author for the policy.
func reviewAuthor(id string, review *types.Review) func(context.Context, *store.Tx, *policy.Request) error {
	return func(ctx context.Context, tx *store.Tx, req *policy.Request) error {
		current, err := tx.Reviews().Get(ctx, id)
		if err != nil {
			return err
		}
		*review = current
		req.TargetOwner = current.UserID
		return nil
	}
}

func (c *Coordinator) UpdateReview(ctx context.Context, identity *auth.Identity, id string, in UpdateReviewInput) (types.Review, error) {
	var current, review types.Review
	err := c.perform(ctx, identity, operation{
		op:     policy.OpUpdate,
		kind:   policy.KindReview,
		target: id,
		validate: func() error {
			if in.Rating != nil {
				if err := validateRating(*in.Rating); err != nil {
					return err
				}
			}
			if in.Comment != nil {
				return limitText("comment", *in.Comment, maxCommentLength)
			}
			return nil
		},
		facts: reviewAuthor(id, &current),
		apply: func(ctx context.Context, tx *store.Tx) error {
			if in.Rating != nil {
				current.Rating = *in.Rating
			}
			if in.Comment != nil {
				current.Comment = *in.Comment
			}
			var err error
			review, err = tx.Reviews().Update(ctx, current)
			return err
		},
	})
	if err != nil {
		return types.Review{}, err
	}
	c.publish(ctx, identity, policy.KindReview, types.ActionUpdated, review.ID)
	return review, nil
}

func (c *Coordinator) DeleteReview(ctx context.Context, identity *auth.Identity, id string) error {
	var current types.Review
	err := c.perform(ctx, identity, operation{
		op:     policy.OpDelete,
		kind:   policy.KindReview,
		target: id,
		facts:  reviewAuthor(id, &current),
		apply: func(ctx context.Context, tx *store.Tx) error {
			return tx.Reviews().Delete(ctx, id)
		},
	})
	if err != nil {
		return err
	}
	c.publish(ctx, identity, policy.KindReview, types.ActionDeleted, id)
	return nil
}
