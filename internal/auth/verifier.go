package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 24 * time.Hour

var (
	// ErrTokenMalformed means no usable token was presented: the header is
	// missing or badly formed, or the token cannot be decoded.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrTokenExpired means the token is well formed and correctly signed
	// but past its expiry. The client should log in again.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenTampered means the token signature does not match the
	// server key, or it was signed with an unexpected algorithm.
	ErrTokenTampered = errors.New("token signature invalid")
)

// Identity is the resolved caller behind a valid token.
type Identity struct {
	UserID  string
	IsAdmin bool
}

// Claims are the JWT claims issued by the Verifier.
type Claims struct {
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}

// Verifier hashes and checks passwords and issues and resolves bearer tokens.
type Verifier struct {
	secret   []byte
	tokenTTL time.Duration
	cost     int
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(v *Verifier) {
		v.tokenTTL = ttl
	}
}

// WithBcryptCost sets the bcrypt work factor. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(v *Verifier) {
		v.cost = cost
	}
}

// NewVerifier constructs a Verifier signing tokens with jwtSecret.
func NewVerifier(jwtSecret string, opts ...Option) *Verifier {
	v := &Verifier{
		secret:   []byte(jwtSecret),
		tokenTTL: defaultTokenTTL,
		cost:     bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Hash returns a salted one-way digest of secret.
func (v *Verifier) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), v.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether secret matches digest.
func (v *Verifier) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}

// Issue signs a token for userID carrying the admin flag.
func (v *Verifier) Issue(userID string, isAdmin bool) (string, error) {
	now := time.Now()
	claims := Claims{
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// Resolve validates tokenString and returns the identity it carries.
// The error is one of ErrTokenMalformed, ErrTokenExpired or ErrTokenTampered.
func (v *Verifier) Resolve(tokenString string) (Identity, error) {
	if strings.TrimSpace(tokenString) == "" {
		return Identity{}, ErrTokenMalformed
	}

	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Identity{}, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return Identity{}, ErrTokenTampered
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, ErrTokenExpired
		default:
			return Identity{}, ErrTokenMalformed
		}
	}
	if !token.Valid {
		return Identity{}, ErrTokenMalformed
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, ErrTokenMalformed
	}
	return Identity{UserID: claims.Subject, IsAdmin: claims.IsAdmin}, nil
}

// BearerToken extracts the bearer credential from the Authorization header.
// It returns "" and no error when the header is absent.
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrTokenMalformed
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrTokenMalformed
	}
	return token, nil
}
