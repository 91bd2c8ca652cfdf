package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peliculas/catalog-api/internal/core/domain"
	"github.com/peliculas/catalog-api/internal/core/service"
)

type fakeVerifier struct {
	claims *domain.TokenClaims
	err    error
}

func (f fakeVerifier) Verify(string) (*domain.TokenClaims, error) {
	return f.claims, f.err
}

func runAuth(t *testing.T, verifier TokenVerifier, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth(verifier)(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func mustNotReach(t *testing.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	issuer, err := service.NewTokenIssuer("secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	signed, _, err := issuer.Issue("alice", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	called := false
	rec := runAuth(t, issuer, "Bearer "+signed, func(c echo.Context) error {
		called = true
		claims, err := Claims(c)
		if err != nil {
			t.Fatalf("claims not set: %v", err)
		}
		if claims.Username != "alice" || claims.Role != domain.RoleAdmin {
			t.Fatalf("unexpected claims: %+v", claims)
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rec := runAuth(t, fakeVerifier{}, "", mustNotReach(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	rec := runAuth(t, fakeVerifier{}, "Token abc", mustNotReach(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	issuer, err := service.NewTokenIssuer("secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	rec := runAuth(t, issuer, "Bearer not-a-token", mustNotReach(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	other, _ := service.NewTokenIssuer("other-secret", time.Hour)
	signed, _, _ := other.Issue("mallory", domain.RoleAdmin)

	issuer, _ := service.NewTokenIssuer("secret", time.Hour)
	rec := runAuth(t, issuer, "Bearer "+signed, mustNotReach(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	rec := runAuth(t, fakeVerifier{err: domain.ErrTokenExpired}, "Bearer x.y.z", mustNotReach(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "token expired") {
		t.Fatalf("expected expiry message, got %s", body)
	}
}
