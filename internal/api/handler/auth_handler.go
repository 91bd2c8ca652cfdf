package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/peliculas/catalog-api/internal/api/middleware"
	"github.com/peliculas/catalog-api/internal/api/metrics"
	"github.com/peliculas/catalog-api/internal/core/domain"
	"github.com/peliculas/catalog-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account. The first account ever created becomes admin.
//
// @Summary      Register a new user
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  domain.UserSummary
// @Failure      400   {object}  validationResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/v1/usuarios/registro [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return err
	}

	role := ""
	if len(user.Roles) > 0 {
		role = user.Roles[0]
	}
	metrics.RegistrationsTotal.WithLabelValues(role).Inc()

	return c.JSON(http.StatusCreated, user)
}

// Login exchanges credentials for a bearer token. Wrong credentials answer
// 401 with an empty token.
//
// @Summary      Login
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  validationResponse
// @Failure      401   {object}  loginResponse
// @Router       /api/v1/usuarios/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return err
	}
	if !result.Authenticated() {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return c.JSON(http.StatusUnauthorized, loginResponse{})
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, loginResponse{Token: result.Token, User: result.User})
}

// Me echoes the identity carried by the bearer token.
//
// @Summary      Current identity
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  identityResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/v1/usuarios/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identityResponse{Username: claims.Username, Role: claims.Role})
}

// ListUsers returns every account ordered by username.
//
// @Summary      List users
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.UserSummary
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/v1/usuarios [get]
func (h *AuthHandler) ListUsers(c echo.Context) error {
	users, err := h.authService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []*domain.UserSummary{}
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser returns a single account.
//
// @Summary      Get a user
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  domain.UserSummary
// @Failure      404  {object}  notFoundResponse
// @Router       /api/v1/usuarios/{id} [get]
func (h *AuthHandler) GetUser(c echo.Context) error {
	user, err := h.authService.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
