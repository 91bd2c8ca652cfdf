package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/peliculas/catalog-api/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Errors []domain.FieldError `json:"errors"`
}

type notFoundResponse struct {
	Error    string `json:"error"`
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to status codes and logs anything unexpected without leaking it to
// the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, any) {
	// Echo's own errors (bind failures, 404 from router, auth middleware).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, validationResponse{Errors: verr.Fields}
	}

	var nerr *domain.NotFoundError
	if errors.As(err, &nerr) {
		return http.StatusNotFound, notFoundResponse{Error: nerr.Error(), Resource: nerr.Resource, ID: nerr.ID}
	}

	switch {
	case errors.Is(err, domain.ErrUploadLimitExceeded):
		return http.StatusBadRequest, validationResponse{Errors: []domain.FieldError{
			{Field: "images", Message: fmt.Sprintf("at most %d images are allowed", domain.MaxImages)},
		}}
	case errors.Is(err, domain.ErrImagesRequired):
		return http.StatusBadRequest, validationResponse{Errors: []domain.FieldError{
			{Field: "images", Message: err.Error()},
		}}
	case errors.Is(err, domain.ErrMovieNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, errorResponse{Error: "token expired"}
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, errorResponse{Error: "invalid token"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
