package handlers

import (
	"bufio"
	"bytes"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hbnb/apiserver/internal/apperr"
	"github.com/hbnb/apiserver/internal/services"
)

const sniffLen = 512

// PlaceHandler provides HTTP handlers for places, their reviews and photo.
type PlaceHandler struct {
	coordinator *services.Coordinator
}

func NewPlaceHandler(coordinator *services.Coordinator) *PlaceHandler {
	return &PlaceHandler{coordinator: coordinator}
}

// PlaceRouter registers place routes on the given router.
func PlaceRouter(r chi.Router, coordinator *services.Coordinator) {
	handler := NewPlaceHandler(coordinator)

	r.Get("/", handler.ListPlaces)
	r.Post("/", handler.CreatePlace)
	r.Route("/{placeID}", func(r chi.Router) {
		r.Get("/", handler.GetPlace)
		r.Put("/", handler.UpdatePlace)
		r.Delete("/", handler.DeletePlace)
		r.Get("/reviews", handler.ListReviews)
		r.Post("/reviews", handler.CreateReview)
		r.Get("/photo", handler.GetPhoto)
		r.Put("/photo", handler.PutPhoto)
	})
}

func (h *PlaceHandler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r)
	if err != nil {
		writeInvalid(w, err.Error())
		return
	}

	query := r.URL.Query()
	filter := services.PlaceFilter{
		CityID: strings.TrimSpace(query.Get("city_id")),
		HostID: strings.TrimSpace(query.Get("host_id")),
	}
	places, total, err := h.coordinator.ListPlaces(r.Context(), IdentityFromContext(r.Context()), filter, p.window())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(places, p, total))
}

// CreatePlace lists a new place hosted by the caller. A host_id in the body
// is ignored.
func (h *PlaceHandler) CreatePlace(w http.ResponseWriter, r *http.Request) {
	var req PlaceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err.Error())
		return
	}

	place, err := h.coordinator.CreatePlace(r.Context(), IdentityFromContext(r.Context()), services.CreatePlaceInput{
		Name:        req.Name,
		Description: req.Description,
		CityID:      req.CityID,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, place)
}

func (h *PlaceHandler) GetPlace(w http.ResponseWriter, r *http.Request) {
	place, err := h.coordinator.GetPlace(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "placeID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, place)
}

func (h *PlaceHandler) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	var req UpdatePlaceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err.Error())
		return
	}

	place, err := h.coordinator.UpdatePlace(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "placeID"), services.UpdatePlaceInput{
		Name:        req.Name,
		Description: req.Description,
		CityID:      req.CityID,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, place)
}

func (h *PlaceHandler) DeletePlace(w http.ResponseWriter, r *http.Request) {
	if err := h.coordinator.DeletePlace(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "placeID")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlaceHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r)
	if err != nil {
		writeInvalid(w, err.Error())
		return
	}

	reviews, total, err := h.coordinator.ListPlaceReviews(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "placeID"), p.window())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(reviews, p, total))
}

func (h *PlaceHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err.Error())
		return
	}

	review, err := h.coordinator.CreateReview(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "placeID"), services.CreateReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// PutPhoto replaces the place photo with the raw request body. Anonymous
// callers are turned away before the body is read.
func (h *PlaceHandler) PutPhoto(w http.ResponseWriter, r *http.Request) {
	if IdentityFromContext(r.Context()) == nil {
		writeAppError(w, apperr.Unauthenticated("authentication required"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, services.MaxPhotoBytes+1))
	if err != nil {
		writeInvalid(w, "failed to read photo")
		return
	}

	place, err := h.coordinator.SetPlacePhoto(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "placeID"), services.Photo{
		Body:        bytes.NewReader(body),
		Size:        int64(len(body)),
		ContentType: photoContentType(r.Header.Get("Content-Type"), body),
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, place)
}

func (h *PlaceHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	photo, err := h.coordinator.OpenPlacePhoto(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "placeID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	defer photo.Close()

	br := bufio.NewReaderSize(photo, sniffLen)
	head, _ := br.Peek(sniffLen)
	w.Header().Set("Content-Type", http.DetectContentType(head))
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, br)
}

// photoContentType trusts a declared media type and sniffs the body
// otherwise.
func photoContentType(header string, body []byte) string {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil || mediaType == "application/octet-stream" {
		return http.DetectContentType(body)
	}
	return mediaType
}

type PlaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CityID      string `json:"city_id"`
}

type UpdatePlaceRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CityID      *string `json:"city_id"`
}
