package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("unique constraint users.email")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "invalid", err: Invalid("rating must be between 1 and 5"), want: KindInvalid},
		{name: "unauthenticated", err: Unauthenticated("authentication required"), want: KindUnauthenticated},
		{name: "forbidden", err: Forbidden("admin access required"), want: KindForbidden},
		{name: "not found", err: NotFound("place not found"), want: KindNotFound},
		{name: "conflict", err: Conflict("email already registered", cause), want: KindConflict},
		{name: "wrapped", err: fmt.Errorf("create user: %w", NotFound("user not found")), want: KindNotFound},
		{name: "plain error", err: errors.New("boom"), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_UnwrapAndMessage(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("failed to create place", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "INTERNAL: failed to create place: disk full", err.Error())
	assert.Equal(t, "internal error", MessageOf(err))
	assert.Equal(t, "internal error", MessageOf(cause))
	assert.Equal(t, "place not found", MessageOf(NotFound("place not found")))
	assert.True(t, Is(Forbidden("nope"), KindForbidden))
	assert.False(t, Is(nil, KindForbidden))
}
