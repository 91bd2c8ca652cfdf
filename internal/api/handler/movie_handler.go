package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/peliculas/catalog-api/internal/api/metrics"
	"github.com/peliculas/catalog-api/internal/core/domain"
	"github.com/peliculas/catalog-api/internal/core/ports"
)

const (
	defaultPageNumber = 1
	defaultPageSize   = 10

	imagesField = "images"
)

// MovieHandler handles HTTP requests for the movie catalog.
type MovieHandler struct {
	service ports.MovieService
	// pathBase is the prefix the service is mounted under behind a proxy,
	// appended to scheme://host when building image URLs.
	pathBase string
}

func NewMovieHandler(service ports.MovieService, pathBase string) *MovieHandler {
	return &MovieHandler{service: service, pathBase: pathBase}
}

// Create handles POST /api/v1/peliculas.
//
// @Summary      Create a movie
// @Tags         peliculas
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        name            formData  string  true   "Name"
// @Param        description     formData  string  false  "Description"
// @Param        duration        formData  int     false  "Duration in minutes"
// @Param        classification  formData  string  true   "siete, trece, dieciseis or dieciocho"
// @Param        category_id     formData  string  true   "Category ID"
// @Param        images          formData  file    true   "One to three images"
// @Success      201  {object}  movieResponse
// @Failure      400  {object}  validationResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/v1/peliculas [post]
func (h *MovieHandler) Create(c echo.Context) error {
	form, files, err := h.bindMovieForm(c)
	if err != nil {
		return err
	}

	movie, err := h.service.CreateMovie(c.Request().Context(), ports.CreateMovieInput{
		Fields:  toMovieFields(form),
		BaseURL: requestBaseURL(c, h.pathBase),
		Files:   files,
	})
	metrics.MovieWritesTotal.WithLabelValues("create", writeResult(err)).Inc()
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, c.Echo().Reverse("movies.get", movie.ID))
	return c.JSON(http.StatusCreated, toMovieResponse(movie))
}

// Update handles PATCH /api/v1/peliculas/:id. Image parts are matched to the
// stored slots by position; a part whose file name equals the stored file
// name leaves that slot untouched.
//
// @Summary      Update a movie
// @Tags         peliculas
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id              path      string  true   "Movie ID"
// @Param        name            formData  string  true   "Name"
// @Param        description     formData  string  false  "Description"
// @Param        duration        formData  int     false  "Duration in minutes"
// @Param        classification  formData  string  true   "siete, trece, dieciseis or dieciocho"
// @Param        category_id     formData  string  true   "Category ID"
// @Param        images          formData  file    true   "One to three images"
// @Success      200  {object}  movieResponse
// @Failure      400  {object}  validationResponse
// @Failure      404  {object}  notFoundResponse
// @Router       /api/v1/peliculas/{id} [patch]
func (h *MovieHandler) Update(c echo.Context) error {
	form, files, err := h.bindMovieForm(c)
	if err != nil {
		return err
	}

	movie, err := h.service.UpdateMovie(c.Request().Context(), ports.UpdateMovieInput{
		ID:      c.Param("id"),
		Fields:  toMovieFields(form),
		BaseURL: requestBaseURL(c, h.pathBase),
		Files:   files,
	})
	metrics.MovieWritesTotal.WithLabelValues("update", writeResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toMovieResponse(movie))
}

// Delete handles DELETE /api/v1/peliculas/:id.
//
// @Summary      Delete a movie and its images
// @Tags         peliculas
// @Security     BearerAuth
// @Param        id   path  string  true  "Movie ID"
// @Success      204
// @Failure      404  {object}  notFoundResponse
// @Router       /api/v1/peliculas/{id} [delete]
func (h *MovieHandler) Delete(c echo.Context) error {
	err := h.service.DeleteMovie(c.Request().Context(), c.Param("id"))
	metrics.MovieWritesTotal.WithLabelValues("delete", writeResult(err)).Inc()
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /api/v1/peliculas/:id.
//
// @Summary      Get a movie
// @Tags         peliculas
// @Produce      json
// @Param        id   path      string  true  "Movie ID"
// @Success      200  {object}  movieResponse
// @Failure      404  {object}  notFoundResponse
// @Router       /api/v1/peliculas/{id} [get]
func (h *MovieHandler) Get(c echo.Context) error {
	movie, err := h.service.GetMovie(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMovieResponse(movie))
}

// List handles GET /api/v1/peliculas.
//
// @Summary      List movies one page at a time
// @Tags         peliculas
// @Produce      json
// @Param        page_number  query     int  false  "Page number, from 1"  default(1)
// @Param        page_size    query     int  false  "Page size"            default(10)
// @Success      200          {object}  pageResponse
// @Failure      400          {object}  validationResponse
// @Router       /api/v1/peliculas [get]
func (h *MovieHandler) List(c echo.Context) error {
	q := pageQuery{PageNumber: defaultPageNumber, PageSize: defaultPageSize}
	if err := c.Bind(&q); err != nil {
		return domain.NewValidationError("page_number", "page_number and page_size must be integers")
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	page, err := h.service.GetPage(c.Request().Context(), q.PageNumber, q.PageSize)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(page))
}

// Search handles GET /api/v1/peliculas/buscar?nombre=.
//
// @Summary      Search movies by name or description
// @Tags         peliculas
// @Produce      json
// @Param        nombre  query     string  false  "Substring to look for"
// @Success      200     {array}   movieResponse
// @Router       /api/v1/peliculas/buscar [get]
func (h *MovieHandler) Search(c echo.Context) error {
	movies, err := h.service.Search(c.Request().Context(), c.QueryParam("nombre"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMovieResponses(movies))
}

// ListByCategory handles GET /api/v1/peliculas/categoria/:categoryId.
//
// @Summary      List the movies of a category
// @Tags         peliculas
// @Produce      json
// @Param        categoryId  path      string  true  "Category ID"
// @Success      200         {array}   movieResponse
// @Failure      404         {object}  notFoundResponse
// @Router       /api/v1/peliculas/categoria/{categoryId} [get]
func (h *MovieHandler) ListByCategory(c echo.Context) error {
	movies, err := h.service.ListByCategory(c.Request().Context(), c.Param("categoryId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMovieResponses(movies))
}

func (h *MovieHandler) bindMovieForm(c echo.Context) (movieForm, []domain.Upload, error) {
	var form movieForm
	if err := c.Bind(&form); err != nil {
		return form, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		return form, nil, err
	}

	mf, err := c.MultipartForm()
	if err != nil {
		return form, nil, echo.NewHTTPError(http.StatusBadRequest, "expected multipart/form-data")
	}
	return form, toUploads(mf.File[imagesField]), nil
}

// writeResult is the result label of MovieWritesTotal.
func writeResult(err error) string {
	var (
		verr *domain.ValidationError
		nerr *domain.NotFoundError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr),
		errors.Is(err, domain.ErrUploadLimitExceeded),
		errors.Is(err, domain.ErrImagesRequired):
		return "invalid"
	case errors.As(err, &nerr):
		return "not_found"
	default:
		return "error"
	}
}
