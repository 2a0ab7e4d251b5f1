package policy

import (
	"github.com/hbnb/apiserver/internal/apperr"
	"github.com/hbnb/apiserver/internal/auth"
)

// Operation is the intent of a request.
type Operation string

const (
	OpRead    Operation = "read"
	OpList    Operation = "list"
	OpCreate  Operation = "create"
	OpUpdate  Operation = "update"
	OpDelete  Operation = "delete"
	OpPromote Operation = "promote"
)

// Kind is the entity kind an operation targets.
type Kind string

const (
	KindUser    Kind = "user"
	KindCountry Kind = "country"
	KindCity    Kind = "city"
	KindPlace   Kind = "place"
	KindAmenity Kind = "amenity"
	KindReview  Kind = "review"
)

// Request describes an attempted operation and the facts the rules need.
type Request struct {
	// Identity is the resolved caller, nil for anonymous requests.
	Identity *auth.Identity

	Operation Operation
	Kind      Kind

	// TargetID is the entity the operation addresses, if any.
	TargetID string

	// TargetOwner is the owning user: Place.HostID for place updates and
	// deletes and for review creation, Review.UserID for review updates and
	// deletes.
	TargetOwner string

	// Duplicate is set on review creation when the caller already reviewed
	// the place.
	Duplicate bool

	// Scoped marks list operations restricted to one user's records.
	Scoped bool
}

type rule struct {
	match  func(Request) bool
	decide func(Request) error
}

// rules are evaluated in order; the first match decides.
var rules = []rule{
	{
		match: func(r Request) bool {
			return (r.Operation == OpRead || r.Operation == OpList) && publicKinds[r.Kind]
		},
		decide: allow,
	},
	{
		match: func(r Request) bool {
			return r.Operation == OpList && r.Kind == KindReview && !r.Scoped
		},
		decide: allow,
	},
	{
		match: func(r Request) bool {
			return (r.Operation == OpRead || r.Operation == OpList) && (r.Kind == KindUser || r.Kind == KindReview)
		},
		decide: authenticated,
	},
	{
		match: func(r Request) bool {
			return adminKinds[r.Kind] && (r.Operation == OpCreate || r.Operation == OpUpdate || r.Operation == OpDelete)
		},
		decide: adminOnly,
	},
	{
		match:  func(r Request) bool { return r.Kind == KindPlace && r.Operation == OpCreate },
		decide: authenticated,
	},
	{
		match: func(r Request) bool {
			return (r.Kind == KindPlace || r.Kind == KindReview) && (r.Operation == OpUpdate || r.Operation == OpDelete)
		},
		decide: ownerOrAdmin,
	},
	{
		match:  func(r Request) bool { return r.Kind == KindReview && r.Operation == OpCreate },
		decide: reviewCreate,
	},
	{
		match:  func(r Request) bool { return r.Kind == KindUser && r.Operation == OpPromote },
		decide: adminOnly,
	},
	{
		match:  func(r Request) bool { return r.Kind == KindUser && r.Operation == OpCreate },
		decide: allow,
	},
	{
		match: func(r Request) bool {
			return r.Kind == KindUser && (r.Operation == OpUpdate || r.Operation == OpDelete)
		},
		decide: selfOrAdmin,
	},
}

var publicKinds = map[Kind]bool{
	KindCountry: true,
	KindCity:    true,
	KindAmenity: true,
	KindPlace:   true,
}

var adminKinds = map[Kind]bool{
	KindCountry: true,
	KindCity:    true,
	KindAmenity: true,
}

// Authorize returns nil when req is allowed. A denial is an *apperr.Error of
// kind UNAUTHENTICATED, FORBIDDEN or CONFLICT.
func Authorize(req Request) error {
	for _, r := range rules {
		if r.match(req) {
			return r.decide(req)
		}
	}
	if req.Identity == nil {
		return apperr.Unauthenticated("authentication required")
	}
	return apperr.Forbidden("operation not permitted")
}

// RequiresIdentity reports whether op on kind can never be allowed for an
// anonymous caller. Callers use it to reject anonymous requests before
// looking anything up.
func RequiresIdentity(op Operation, kind Kind, scoped bool) bool {
	return Authorize(Request{Operation: op, Kind: kind, Scoped: scoped}) != nil
}

func allow(Request) error {
	return nil
}

func authenticated(r Request) error {
	if r.Identity == nil {
		return apperr.Unauthenticated("authentication required")
	}
	return nil
}

func adminOnly(r Request) error {
	if err := authenticated(r); err != nil {
		return err
	}
	if !r.Identity.IsAdmin {
		return apperr.Forbidden("admin access required")
	}
	return nil
}

func ownerOrAdmin(r Request) error {
	if err := authenticated(r); err != nil {
		return err
	}
	if r.Identity.IsAdmin || (r.TargetOwner != "" && r.Identity.UserID == r.TargetOwner) {
		return nil
	}
	return apperr.Forbidden("only the owner or an admin may modify this " + string(r.Kind))
}

func selfOrAdmin(r Request) error {
	if err := authenticated(r); err != nil {
		return err
	}
	if r.Identity.IsAdmin || r.Identity.UserID == r.TargetID {
		return nil
	}
	return apperr.Forbidden("only the user or an admin may modify this account")
}

func reviewCreate(r Request) error {
	if err := authenticated(r); err != nil {
		return err
	}
	if r.Identity.UserID == r.TargetOwner {
		return apperr.Forbidden("cannot review your own place")
	}
	if r.Duplicate {
		return apperr.Conflict("place already reviewed by this user", nil)
	}
	return nil
}
