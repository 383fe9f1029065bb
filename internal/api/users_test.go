package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	elerrs "github.com/eventlink/eventlink/internal/errors"
	"github.com/eventlink/eventlink/internal/eventlink"
	"github.com/eventlink/eventlink/internal/recon"
	"github.com/eventlink/eventlink/internal/sync"
)

func TestPostUser_ProfaneUsername(t *testing.T) {
	var (
		req = httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"username": "f u c k", "email": "x@example.com", "password": "pw"}`))
		rec = httptest.NewRecorder()
		s   = newTestServer(t, &fakeRepo{})
	)

	err := s.postUser(rec, req)
	require.Error(t, err)

	// The validation status carries through untouched.
	var apiErr *elerrs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	require.Len(t, apiErr.Details, 1)
	assert.Equal(t, "username", apiErr.Details[0].Field)
}

func TestPostUser_MalformedBody(t *testing.T) {
	var (
		req = httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"username":`))
		rec = httptest.NewRecorder()
		s   = newTestServer(t, &fakeRepo{})
	)

	err := s.postUser(rec, req)
	require.Error(t, err)

	var apiErr *elerrs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestUserRoutes_AdminOnly(t *testing.T) {
	repo := &fakeRepo{usersByName: map[string]eventlink.User{}}
	srvr := NewServer(ServerConfig{
		CookieHashKey:  []byte("0123456789abcdef0123456789abcdef"),
		CookieBlockKey: []byte("0123456789abcdef0123456789abcdef"),
		CorsOrigin:     "*",
	}, repo, sync.NewEngine(repo), sync.NewApprover(repo), recon.Engine{})

	sessionCookie := func(role eventlink.Role) *http.Cookie {
		encoded, err := srvr.secureCookie.Encode(sessionCookieName, sessionState{
			UserID: "1-usr",
			Role:   role,
		})
		require.NoError(t, err)
		return &http.Cookie{Name: sessionCookieName, Value: encoded}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.AddCookie(sessionCookie(eventlink.RoleEditor))
	rec := httptest.NewRecorder()
	srvr.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.AddCookie(sessionCookie(eventlink.RoleAdmin))
	rec = httptest.NewRecorder()
	srvr.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostUser_MissingPassword(t *testing.T) {
	var (
		req = httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"username": "sam", "email": "sam@example.com"}`))
		rec = httptest.NewRecorder()
		s   = newTestServer(t, &fakeRepo{})
	)

	err := s.postUser(rec, req)
	require.Error(t, err)

	var apiErr *elerrs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}
