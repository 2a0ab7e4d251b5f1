package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hbnb/apiserver/internal/services"
)

// AmenityHandler provides HTTP handlers for amenities.
type AmenityHandler struct {
	coordinator *services.Coordinator
}

func NewAmenityHandler(coordinator *services.Coordinator) *AmenityHandler {
	return &AmenityHandler{coordinator: coordinator}
}

// AmenityRouter registers amenity routes on the given router.
func AmenityRouter(r chi.Router, coordinator *services.Coordinator) {
	handler := NewAmenityHandler(coordinator)

	r.Get("/", handler.ListAmenities)
	r.Post("/", handler.CreateAmenity)
	r.Route("/{amenityID}", func(r chi.Router) {
		r.Get("/", handler.GetAmenity)
		r.Put("/", handler.UpdateAmenity)
		r.Delete("/", handler.DeleteAmenity)
	})
}

func (h *AmenityHandler) ListAmenities(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r)
	if err != nil {
		writeInvalid(w, err.Error())
		return
	}

	amenities, total, err := h.coordinator.ListAmenities(r.Context(), IdentityFromContext(r.Context()), p.window())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(amenities, p, total))
}

func (h *AmenityHandler) CreateAmenity(w http.ResponseWriter, r *http.Request) {
	var req AmenityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err.Error())
		return
	}

	amenity, err := h.coordinator.CreateAmenity(r.Context(), IdentityFromContext(r.Context()), req.Name)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, amenity)
}

func (h *AmenityHandler) GetAmenity(w http.ResponseWriter, r *http.Request) {
	amenity, err := h.coordinator.GetAmenity(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "amenityID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, amenity)
}

func (h *AmenityHandler) UpdateAmenity(w http.ResponseWriter, r *http.Request) {
	var req AmenityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err.Error())
		return
	}

	amenity, err := h.coordinator.UpdateAmenity(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "amenityID"), req.Name)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, amenity)
}

func (h *AmenityHandler) DeleteAmenity(w http.ResponseWriter, r *http.Request) {
	if err := h.coordinator.DeleteAmenity(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "amenityID")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type AmenityRequest struct {
	Name string `json:"name"`
}
