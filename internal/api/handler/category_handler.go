package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/peliculas/catalog-api/internal/core/ports"
)

type CategoryHandler struct {
	service ports.CategoryService
}

func NewCategoryHandler(service ports.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// List handles GET /api/v1/categorias.
//
// @Summary      List categories
// @Tags         categorias
// @Produce      json
// @Success      200  {array}  categoryResponse
// @Router       /api/v1/categorias [get]
func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCategoryResponses(categories))
}

// Get handles GET /api/v1/categorias/:id.
//
// @Summary      Get a category
// @Tags         categorias
// @Produce      json
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  categoryResponse
// @Failure      404  {object}  notFoundResponse
// @Router       /api/v1/categorias/{id} [get]
func (h *CategoryHandler) Get(c echo.Context) error {
	category, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// Create handles POST /api/v1/categorias.
//
// @Summary      Create a category
// @Tags         categorias
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      categoryRequest  true  "Category"
// @Success      201   {object}  categoryResponse
// @Failure      400   {object}  validationResponse
// @Router       /api/v1/categorias [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	category, err := h.service.Create(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCategoryResponse(category))
}

// Update handles PATCH /api/v1/categorias/:id.
//
// @Summary      Rename a category
// @Tags         categorias
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Category ID"
// @Param        body  body      categoryRequest  true  "Category"
// @Success      200   {object}  categoryResponse
// @Failure      400   {object}  validationResponse
// @Failure      404   {object}  notFoundResponse
// @Router       /api/v1/categorias/{id} [patch]
func (h *CategoryHandler) Update(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	category, err := h.service.Update(c.Request().Context(), c.Param("id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// Delete handles DELETE /api/v1/categorias/:id.
//
// @Summary      Delete a category
// @Tags         categorias
// @Security     BearerAuth
// @Param        id   path  string  true  "Category ID"
// @Success      204
// @Failure      404  {object}  notFoundResponse
// @Router       /api/v1/categorias/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
