package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbnb/apiserver/internal/apperr"
	"github.com/hbnb/apiserver/internal/auth"
	"github.com/hbnb/apiserver/internal/services"
)

type stubResolver struct {
	identity auth.Identity
	err      error
	calls    int
}

func (s *stubResolver) Resolve(string) (auth.Identity, error) {
	s.calls++
	return s.identity, s.err
}

func TestParsePagination(t *testing.T) {
	for _, tc := range []struct {
		query  string
		want   pagination
		window services.Page
		fails  bool
	}{
		{query: "", want: pagination{page: 1, limit: 20}, window: services.Page{Offset: 0, Limit: 20}},
		{query: "page=3&limit=10", want: pagination{page: 3, limit: 10}, window: services.Page{Offset: 20, Limit: 10}},
		{query: "per_page=5", want: pagination{page: 1, limit: 5}, window: services.Page{Offset: 0, Limit: 5}},
		{query: "limit=1000", want: pagination{page: 1, limit: 100}, window: services.Page{Offset: 0, Limit: 100}},
		{query: "page=" + strconv.Itoa(maxPage) + "&limit=100", want: pagination{page: maxPage, limit: 100}, window: services.Page{Offset: (maxPage - 1) * 100, Limit: 100}},
		{query: "page=0", fails: true},
		{query: "page=x", fails: true},
		{query: "page=9223372036854775807", fails: true},
		{query: "page=" + strconv.Itoa(maxPage+1), fails: true},
		{query: "limit=-1", fails: true},
	} {
		t.Run(tc.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/items?"+tc.query, nil)
			got, err := parsePagination(r)
			if tc.fails {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.window, got.window())
		})
	}
}

func TestWriteAppError(t *testing.T) {
	for _, tc := range []struct {
		err     error
		status  int
		code    string
		message string
	}{
		{apperr.Invalid("name is required"), http.StatusBadRequest, "INVALID", "name is required"},
		{apperr.Unauthenticated("authentication required"), http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required"},
		{apperr.Forbidden("admin only"), http.StatusForbidden, "FORBIDDEN", "admin only"},
		{apperr.NotFound("place not found"), http.StatusNotFound, "NOT_FOUND", "place not found"},
		{apperr.Conflict("email already registered", nil), http.StatusConflict, "CONFLICT", "email already registered"},
		{apperr.Internal("db down", errors.New("dial tcp")), http.StatusInternalServerError, "INTERNAL", "internal error"},
		{errors.New("raw"), http.StatusInternalServerError, "INTERNAL", "internal error"},
	} {
		t.Run(tc.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeAppError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.message, body.Error)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	var seen *auth.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("anonymous", func(t *testing.T) {
		resolver := &stubResolver{}
		rec := httptest.NewRecorder()
		Authenticate(resolver)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Nil(t, seen)
		assert.Zero(t, resolver.calls)
	})

	t.Run("valid token", func(t *testing.T) {
		resolver := &stubResolver{identity: auth.Identity{UserID: "u1", IsAdmin: true}}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc")
		rec := httptest.NewRecorder()
		Authenticate(resolver)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "u1", seen.UserID)
		assert.True(t, seen.IsAdmin)
	})

	for _, tc := range []struct {
		name   string
		header string
		err    error
		code   string
	}{
		{"wrong scheme", "Basic dXNlcjpwYXNz", nil, codeTokenMalformed},
		{"expired", "Bearer abc", auth.ErrTokenExpired, codeTokenExpired},
		{"tampered", "Bearer abc", auth.ErrTokenTampered, codeTokenInvalid},
		{"undecodable", "Bearer abc", auth.ErrTokenMalformed, codeTokenMalformed},
	} {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tc.header)
			rec := httptest.NewRecorder()
			Authenticate(&stubResolver{err: tc.err})(next).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Code)
			assert.Nil(t, seen)
		})
	}
}

func TestPhotoContentType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x00")

	assert.Equal(t, "image/jpeg", photoContentType("image/jpeg", png))
	assert.Equal(t, "image/png", photoContentType("", png))
	assert.Equal(t, "image/png", photoContentType("application/octet-stream", png))
	assert.Equal(t, "image/webp", photoContentType("image/webp; q=1", png))
}

func TestListResponseNeverNull(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, listResponse[string](nil, pagination{page: 1, limit: 20}, 0))
	assert.JSONEq(t, `{"items":[],"page":1,"limit":20,"total":0}`, rec.Body.String())
}

// unreadBody fails the test when a handler reads it.
type unreadBody struct {
	t *testing.T
}

func (b unreadBody) Read([]byte) (int, error) {
	b.t.Error("request body was read")
	return 0, io.EOF
}

func TestPutPhotoAnonymousSkipsBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/places/p1/photo", unreadBody{t: t})
	rec := httptest.NewRecorder()

	NewPlaceHandler(nil).PutPhoto(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
}
