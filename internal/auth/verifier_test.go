package auth

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestVerifier(opts ...Option) *Verifier {
	return NewVerifier("test-secret", append([]Option{WithBcryptCost(bcrypt.MinCost)}, opts...)...)
}

func TestVerifier_HashIsSalted(t *testing.T) {
	v := newTestVerifier()

	first, err := v.Hash("hunter2")
	require.NoError(t, err)
	second, err := v.Hash("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "equal secrets must not produce equal digests")
	assert.True(t, v.Verify("hunter2", first))
	assert.True(t, v.Verify("hunter2", second))
	assert.False(t, v.Verify("hunter3", first))
	assert.False(t, v.Verify("hunter2", "not-a-digest"))
}

func TestVerifier_IssueAndResolve(t *testing.T) {
	v := newTestVerifier()

	token, err := v.Issue("user-1", true)
	require.NoError(t, err)

	identity, err := v.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "user-1", IsAdmin: true}, identity)
}

func TestVerifier_ResolveFailures(t *testing.T) {
	v := newTestVerifier()

	expired, err := newTestVerifier(WithTokenTTL(-time.Minute)).Issue("user-1", false)
	require.NoError(t, err)

	foreign, err := NewVerifier("other-secret").Issue("user-1", true)
	require.NoError(t, err)

	valid, err := v.Issue("user-1", false)
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	// Re-sign the same header with a payload claiming admin rights.
	forgedPayload, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		IsAdmin:          true,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("x"))
	require.NoError(t, err)
	swapped := parts[0] + "." + strings.Split(forgedPayload, ".")[1] + "." + parts[2]

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		IsAdmin:          true,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "empty", token: "", want: ErrTokenMalformed},
		{name: "garbage", token: "not-a-jwt", want: ErrTokenMalformed},
		{name: "missing subject", token: noSubject, want: ErrTokenMalformed},
		{name: "expired", token: expired, want: ErrTokenExpired},
		{name: "signed with another key", token: foreign, want: ErrTokenTampered},
		{name: "payload swapped", token: swapped, want: ErrTokenTampered},
		{name: "alg none", token: none, want: ErrTokenTampered},
		{name: "unexpected algorithm", token: hs512, want: ErrTokenTampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := v.Resolve(tt.token)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, identity.UserID)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "absent", header: "", want: ""},
		{name: "bearer", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "case insensitive scheme", header: "bearer abc", want: "abc"},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", wantErr: true},
		{name: "no token", header: "Bearer   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, err := BearerToken(r)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTokenMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
