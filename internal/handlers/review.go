package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hbnb/apiserver/internal/services"
)

// ReviewHandler provides HTTP handlers for single reviews. Reviews are
// created and listed under their place.
type ReviewHandler struct {
	coordinator *services.Coordinator
}

func NewReviewHandler(coordinator *services.Coordinator) *ReviewHandler {
	return &ReviewHandler{coordinator: coordinator}
}

// ReviewRouter registers review routes on the given router.
func ReviewRouter(r chi.Router, coordinator *services.Coordinator) {
	handler := NewReviewHandler(coordinator)

	r.Route("/{reviewID}", func(r chi.Router) {
		r.Get("/", handler.GetReview)
		r.Put("/", handler.UpdateReview)
		r.Delete("/", handler.DeleteReview)
	})
}

func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	review, err := h.coordinator.GetReview(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "reviewID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	var req UpdateReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err.Error())
		return
	}

	review, err := h.coordinator.UpdateReview(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "reviewID"), services.UpdateReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.coordinator.DeleteReview(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "reviewID")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}
