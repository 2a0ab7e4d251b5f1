package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hbnb/apiserver/internal/auth"
	"github.com/hbnb/apiserver/internal/services"
	"github.com/hbnb/apiserver/types"
)

const (
	codeTokenMalformed = "token_malformed"
	codeTokenExpired   = "token_expired"
	codeTokenInvalid   = "token_invalid"
)

// TokenResolver turns a bearer token into the identity it carries.
type TokenResolver interface {
	Resolve(token string) (auth.Identity, error)
}

// Authenticate resolves the bearer token, if any, and stores the identity in
// the request context. Requests without a token continue anonymously; a
// token that does not resolve is rejected here.
func Authenticate(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r)
			if err != nil {
				writeTokenError(w, err)
				return
			}
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := resolver.Resolve(token)
			if err != nil {
				writeTokenError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), &identity)))
		})
	}
}

func writeTokenError(w http.ResponseWriter, err error) {
	code, message := codeTokenMalformed, "malformed token"
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		code, message = codeTokenExpired, "token expired"
	case errors.Is(err, auth.ErrTokenTampered):
		code, message = codeTokenInvalid, "invalid token"
	}
	w.Header().Set("WWW-Authenticate", `Bearer realm="hbnb", error="invalid_token"`)
	writeError(w, http.StatusUnauthorized, code, message)
}

// AuthHandler provides registration, login and the current account.
type AuthHandler struct {
	coordinator *services.Coordinator
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(coordinator *services.Coordinator) *AuthHandler {
	return &AuthHandler{coordinator: coordinator}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, coordinator *services.Coordinator) {
	handler := NewAuthHandler(coordinator)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Get("/me", handler.Me)
}

// Register creates a regular account and returns a token for it.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err.Error())
		return
	}

	result, err := h.coordinator.Register(r.Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{Token: result.Token, User: result.User})
}

// Login verifies credentials and returns a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err.Error())
		return
	}

	result, err := h.coordinator.Login(r.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Token: result.Token, User: result.User})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.coordinator.Me(r.Context(), IdentityFromContext(r.Context()))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}
