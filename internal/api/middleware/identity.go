package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/peliculas/catalog-api/internal/core/domain"
)

const claimsKey = "claims"

// WithClaims stores the verified token claims on the request context.
func WithClaims(c echo.Context, claims *domain.TokenClaims) {
	c.Set(claimsKey, claims)
}

// Claims returns the caller's verified token claims. It fails with 401 when
// Auth did not run for the route.
func Claims(c echo.Context) (*domain.TokenClaims, error) {
	claims, _ := c.Get(claimsKey).(*domain.TokenClaims)
	if claims == nil || claims.Username == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
