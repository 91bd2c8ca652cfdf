package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peliculas/catalog-api/internal/core/domain"
	"github.com/peliculas/catalog-api/internal/core/ports"
	"github.com/peliculas/catalog-api/internal/core/service"
)

// emptyCatalog answers every read with an empty result.
type emptyCatalog struct {
	ports.MovieService
	searched []string
}

func (c *emptyCatalog) Search(_ context.Context, term string) ([]*domain.Movie, error) {
	c.searched = append(c.searched, term)
	return []*domain.Movie{}, nil
}

func (c *emptyCatalog) GetMovie(_ context.Context, id string) (*domain.Movie, error) {
	return nil, &domain.NotFoundError{Resource: domain.ResourceMovie, ID: id}
}

func newTestRouter(t *testing.T) (http.Handler, *service.TokenIssuer, *emptyCatalog) {
	t.Helper()
	tokens, err := service.NewTokenIssuer("router-test-secret", time.Hour)
	require.NoError(t, err)

	movies := &emptyCatalog{}
	e := NewRouter(Dependencies{
		Movies:   movies,
		Tokens:   tokens,
		Registry: prometheus.NewRegistry(),
		Log:      zerolog.Nop(),
	})
	return e, tokens, movies
}

func do(h http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	h, _, _ := newTestRouter(t)

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health/ready", "").Code)
}

func TestRouter_SearchIsNotShadowedByID(t *testing.T) {
	h, _, movies := newTestRouter(t)

	rec := do(h, http.MethodGet, "/api/v1/peliculas/buscar?nombre=roma", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"roma"}, movies.searched)

	rec = do(h, http.MethodGet, "/api/v1/peliculas/m404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_WritesRequireAdmin(t *testing.T) {
	h, tokens, _ := newTestRouter(t)

	rec := do(h, http.MethodDelete, "/api/v1/peliculas/m1", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	registered, _, err := tokens.Issue("bob", domain.RoleRegistered)
	require.NoError(t, err)
	rec = do(h, http.MethodDelete, "/api/v1/peliculas/m1", registered)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(h, http.MethodGet, "/api/v1/usuarios", registered)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_Me(t *testing.T) {
	h, tokens, _ := newTestRouter(t)

	token, _, err := tokens.Issue("alice", domain.RoleAdmin)
	require.NoError(t, err)

	rec := do(h, http.MethodGet, "/api/v1/usuarios/me", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"username":"alice","role":"admin"}`, rec.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	h, _, _ := newTestRouter(t)
	do(h, http.MethodGet, "/health", "")

	rec := do(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "catalog_requests_total")
}
