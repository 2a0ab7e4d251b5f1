package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hbnb/apiserver/internal/apperr"
	"github.com/hbnb/apiserver/internal/auth"
)

func TestAuthorize(t *testing.T) {
	admin := &auth.Identity{UserID: "admin", IsAdmin: true}
	alice := &auth.Identity{UserID: "alice"}
	bob := &auth.Identity{UserID: "bob"}

	tests := []struct {
		name string
		req  Request
		want apperr.Kind
	}{
		{name: "anonymous reads country", req: Request{Operation: OpRead, Kind: KindCountry}},
		{name: "anonymous lists places", req: Request{Operation: OpList, Kind: KindPlace}},
		{name: "anonymous reads amenity", req: Request{Operation: OpRead, Kind: KindAmenity}},
		{name: "anonymous lists place reviews", req: Request{Operation: OpList, Kind: KindReview}},
		{name: "anonymous lists user reviews", req: Request{Operation: OpList, Kind: KindReview, Scoped: true}, want: apperr.KindUnauthenticated},
		{name: "anonymous reads review", req: Request{Operation: OpRead, Kind: KindReview}, want: apperr.KindUnauthenticated},
		{name: "anonymous reads user", req: Request{Operation: OpRead, Kind: KindUser}, want: apperr.KindUnauthenticated},
		{name: "user reads user", req: Request{Identity: bob, Operation: OpRead, Kind: KindUser, TargetID: "alice"}},
		{name: "anonymous registers", req: Request{Operation: OpCreate, Kind: KindUser}},

		{name: "anonymous creates country", req: Request{Operation: OpCreate, Kind: KindCountry}, want: apperr.KindUnauthenticated},
		{name: "user creates country", req: Request{Identity: alice, Operation: OpCreate, Kind: KindCountry}, want: apperr.KindForbidden},
		{name: "admin creates country", req: Request{Identity: admin, Operation: OpCreate, Kind: KindCountry}},
		{name: "user deletes city", req: Request{Identity: alice, Operation: OpDelete, Kind: KindCity}, want: apperr.KindForbidden},
		{name: "user updates amenity", req: Request{Identity: alice, Operation: OpUpdate, Kind: KindAmenity}, want: apperr.KindForbidden},
		{name: "admin deletes amenity", req: Request{Identity: admin, Operation: OpDelete, Kind: KindAmenity}},

		{name: "anonymous creates place", req: Request{Operation: OpCreate, Kind: KindPlace}, want: apperr.KindUnauthenticated},
		{name: "user creates place", req: Request{Identity: alice, Operation: OpCreate, Kind: KindPlace}},
		{name: "host updates place", req: Request{Identity: alice, Operation: OpUpdate, Kind: KindPlace, TargetOwner: "alice"}},
		{name: "stranger updates place", req: Request{Identity: bob, Operation: OpUpdate, Kind: KindPlace, TargetOwner: "alice"}, want: apperr.KindForbidden},
		{name: "admin deletes place", req: Request{Identity: admin, Operation: OpDelete, Kind: KindPlace, TargetOwner: "alice"}},
		{name: "anonymous deletes place", req: Request{Operation: OpDelete, Kind: KindPlace, TargetOwner: "alice"}, want: apperr.KindUnauthenticated},

		{name: "guest reviews place", req: Request{Identity: bob, Operation: OpCreate, Kind: KindReview, TargetOwner: "alice"}},
		{name: "host reviews own place", req: Request{Identity: alice, Operation: OpCreate, Kind: KindReview, TargetOwner: "alice"}, want: apperr.KindForbidden},
		{name: "guest reviews twice", req: Request{Identity: bob, Operation: OpCreate, Kind: KindReview, TargetOwner: "alice", Duplicate: true}, want: apperr.KindConflict},
		{name: "admin reviews own place", req: Request{Identity: admin, Operation: OpCreate, Kind: KindReview, TargetOwner: "admin"}, want: apperr.KindForbidden},
		{name: "author edits review", req: Request{Identity: bob, Operation: OpUpdate, Kind: KindReview, TargetOwner: "bob"}},
		{name: "other user deletes review", req: Request{Identity: alice, Operation: OpDelete, Kind: KindReview, TargetOwner: "bob"}, want: apperr.KindForbidden},
		{name: "admin deletes review", req: Request{Identity: admin, Operation: OpDelete, Kind: KindReview, TargetOwner: "bob"}},

		{name: "user promotes user", req: Request{Identity: alice, Operation: OpPromote, Kind: KindUser, TargetID: "alice"}, want: apperr.KindForbidden},
		{name: "admin promotes user", req: Request{Identity: admin, Operation: OpPromote, Kind: KindUser, TargetID: "alice"}},
		{name: "user updates self", req: Request{Identity: alice, Operation: OpUpdate, Kind: KindUser, TargetID: "alice"}},
		{name: "user deletes other", req: Request{Identity: alice, Operation: OpDelete, Kind: KindUser, TargetID: "bob"}, want: apperr.KindForbidden},
		{name: "admin deletes other", req: Request{Identity: admin, Operation: OpDelete, Kind: KindUser, TargetID: "bob"}},

		{name: "unknown operation", req: Request{Identity: alice, Operation: Operation("archive"), Kind: KindPlace}, want: apperr.KindForbidden},
		{name: "unknown operation anonymous", req: Request{Operation: Operation("archive"), Kind: KindPlace}, want: apperr.KindUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.req)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, apperr.KindOf(err), "got %v", err)
		})
	}
}

func TestRequiresIdentity(t *testing.T) {
	assert.False(t, RequiresIdentity(OpRead, KindPlace, false))
	assert.False(t, RequiresIdentity(OpCreate, KindUser, false))
	assert.False(t, RequiresIdentity(OpList, KindReview, false))
	assert.True(t, RequiresIdentity(OpList, KindReview, true))
	assert.True(t, RequiresIdentity(OpRead, KindReview, false))
	assert.True(t, RequiresIdentity(OpUpdate, KindPlace, false))
	assert.True(t, RequiresIdentity(OpCreate, KindReview, false))
	assert.True(t, RequiresIdentity(OpPromote, KindUser, false))
}
