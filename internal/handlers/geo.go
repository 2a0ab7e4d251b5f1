package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hbnb/apiserver/internal/services"
)

// GeoHandler provides HTTP handlers for countries and cities.
type GeoHandler struct {
	coordinator *services.Coordinator
}

func NewGeoHandler(coordinator *services.Coordinator) *GeoHandler {
	return &GeoHandler{coordinator: coordinator}
}

// CountryRouter registers country routes, including the cities nested under
// a country code.
func CountryRouter(r chi.Router, coordinator *services.Coordinator) {
	handler := NewGeoHandler(coordinator)

	r.Get("/", handler.ListCountries)
	r.Post("/", handler.CreateCountry)
	r.Route("/{code}", func(r chi.Router) {
		r.Get("/", handler.GetCountry)
		r.Put("/", handler.UpdateCountry)
		r.Delete("/", handler.DeleteCountry)
		r.Get("/cities", handler.ListCountryCities)
		r.Post("/cities", handler.CreateCountryCity)
	})
}

// CityRouter registers city routes on the given router.
func CityRouter(r chi.Router, coordinator *services.Coordinator) {
	handler := NewGeoHandler(coordinator)

	r.Get("/", handler.ListCities)
	r.Post("/", handler.CreateCity)
	r.Route("/{cityID}", func(r chi.Router) {
		r.Get("/", handler.GetCity)
		r.Put("/", handler.UpdateCity)
		r.Delete("/", handler.DeleteCity)
	})
}

func (h *GeoHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r)
	if err != nil {
		writeInvalid(w, err.Error())
		return
	}

	countries, total, err := h.coordinator.ListCountries(r.Context(), IdentityFromContext(r.Context()), p.window())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(countries, p, total))
}

func (h *GeoHandler) CreateCountry(w http.ResponseWriter, r *http.Request) {
	var req CountryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err.Error())
		return
	}

	country, err := h.coordinator.CreateCountry(r.Context(), IdentityFromContext(r.Context()), services.CreateCountryInput{
		Name: req.Name,
		Code: req.Code,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, country)
}

func (h *GeoHandler) GetCountry(w http.ResponseWriter, r *http.Request) {
	country, err := h.coordinator.GetCountry(r.Context(), IdentityFromContext(r.Context()), countryCode(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, country)
}

func (h *GeoHandler) UpdateCountry(w http.ResponseWriter, r *http.Request) {
	var req UpdateCountryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err.Error())
		return
	}

	country, err := h.coordinator.UpdateCountry(r.Context(), IdentityFromContext(r.Context()), countryCode(r), services.UpdateCountryInput{
		Name: req.Name,
		Code: req.Code,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, country)
}

func (h *GeoHandler) DeleteCountry(w http.ResponseWriter, r *http.Request) {
	if err := h.coordinator.DeleteCountry(r.Context(), IdentityFromContext(r.Context()), countryCode(r)); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GeoHandler) ListCountryCities(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r)
	if err != nil {
		writeInvalid(w, err.Error())
		return
	}

	cities, total, err := h.coordinator.ListCitiesByCountry(r.Context(), IdentityFromContext(r.Context()), countryCode(r), p.window())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(cities, p, total))
}

func (h *GeoHandler) CreateCountryCity(w http.ResponseWriter, r *http.Request) {
	var req CityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err.Error())
		return
	}

	city, err := h.coordinator.CreateCityInCountry(r.Context(), IdentityFromContext(r.Context()), countryCode(r), req.Name)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, city)
}

func (h *GeoHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r)
	if err != nil {
		writeInvalid(w, err.Error())
		return
	}

	filter := services.CityFilter{CountryID: strings.TrimSpace(r.URL.Query().Get("country_id"))}
	cities, total, err := h.coordinator.ListCities(r.Context(), IdentityFromContext(r.Context()), filter, p.window())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(cities, p, total))
}

func (h *GeoHandler) CreateCity(w http.ResponseWriter, r *http.Request) {
	var req CityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err.Error())
		return
	}

	city, err := h.coordinator.CreateCity(r.Context(), IdentityFromContext(r.Context()), services.CreateCityInput{
		Name:      req.Name,
		CountryID: req.CountryID,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, city)
}

func (h *GeoHandler) GetCity(w http.ResponseWriter, r *http.Request) {
	city, err := h.coordinator.GetCity(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "cityID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, city)
}

func (h *GeoHandler) UpdateCity(w http.ResponseWriter, r *http.Request) {
	var req UpdateCityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err.Error())
		return
	}

	city, err := h.coordinator.UpdateCity(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "cityID"), services.UpdateCityInput{
		Name:      req.Name,
		CountryID: req.CountryID,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, city)
}

func (h *GeoHandler) DeleteCity(w http.ResponseWriter, r *http.Request) {
	if err := h.coordinator.DeleteCity(r.Context(), IdentityFromContext(r.Context()), urlParam(r, "cityID")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func countryCode(r *http.Request) string {
	return strings.ToUpper(urlParam(r, "code"))
}

type CountryRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type UpdateCountryRequest struct {
	Name *string `json:"name"`
	Code *string `json:"code"`
}

type CityRequest struct {
	Name      string `json:"name"`
	CountryID string `json:"country_id"`
}

type UpdateCityRequest struct {
	Name      *string `json:"name"`
	CountryID *string `json:"country_id"`
}
