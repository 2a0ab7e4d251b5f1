package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hbnb/apiserver/internal/services"
)

// UserHandler provides HTTP handlers for user accounts.
type UserHandler struct {
	coordinator *services.Coordinator
}

func NewUserHandler(coordinator *services.Coordinator) *UserHandler {
	return &UserHandler{coordinator: coordinator}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, coordinator *services.Coordinator) {
	handler := NewUserHandler(coordinator)

	r.Get("/", handler.ListUsers)
	r.Post("/", handler.CreateUser)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.Put("/", handler.UpdateUser)
		r.Delete("/", handler.DeleteUser)
		r.Post("/promote", handler.PromoteUser)
		r.Get("/reviews", handler.ListUserReviews)
	})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r)
	if err != nil {
		writeInvalid(w, err.Error())
		return
	}

	users, total, err := h.coordinator.ListUsers(r.Context(), IdentityFromContext(r.Context()), p.window())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(users, p, total))
}

// CreateUser adds an account. Only admins may create admin accounts.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err.Error())
		return
	}

	user, err := h.coordinator.CreateUser(r.Context(), IdentityFromContext(r.Context()), services.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.coordinator.GetUser(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "userID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err.Error())
		return
	}

	user, err := h.coordinator.UpdateUser(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "userID"), services.UpdateUserInput{
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.coordinator.DeleteUser(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "userID")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) PromoteUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.coordinator.PromoteUser(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "userID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) ListUserReviews(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r)
	if err != nil {
		writeInvalid(w, err.Error())
		return
	}

	reviews, total, err := h.coordinator.ListUserReviews(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "userID"), p.window())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(reviews, p, total))
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"is_admin"`
}
