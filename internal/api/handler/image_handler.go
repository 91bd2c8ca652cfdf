package handler

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/peliculas/catalog-api/internal/core/ports"
)

// ImageHandler streams stored movie images, whichever backend holds them.
type ImageHandler struct {
	files ports.FileStore
}

func NewImageHandler(files ports.FileStore) *ImageHandler {
	return &ImageHandler{files: files}
}

// Serve handles GET /ImagenesPeliculas/:name.
//
// @Summary      Fetch a stored movie image
// @Tags         imagenes
// @Produce      octet-stream
// @Param        name  path  string  true  "File name"
// @Success      200
// @Failure      404   {object}  errorResponse
// @Router       /ImagenesPeliculas/{name} [get]
func (h *ImageHandler) Serve(c echo.Context) error {
	name := filepath.Base(c.Param("name"))
	if name == "." || name == "/" || name == "" {
		return echo.NewHTTPError(http.StatusNotFound, "image not found")
	}

	rc, err := h.files.Open(c.Request().Context(), h.files.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return echo.NewHTTPError(http.StatusNotFound, "image not found")
		}
		return err
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, contentType, rc)
}
