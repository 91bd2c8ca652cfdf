package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"

	"github.com/peliculas/catalog-api/internal/infrastructure/storage"
)

func newImageHandler(t *testing.T) (*ImageHandler, *storage.LocalStore) {
	t.Helper()
	store, err := storage.NewLocalStore(afero.NewMemMapFs(), "/images")
	if err != nil {
		t.Fatalf("local store: %v", err)
	}
	return NewImageHandler(store), store
}

func serveImage(h *ImageHandler, name string) (*httptest.ResponseRecorder, error) {
	e := newTestEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/ImagenesPeliculas/"+name, nil), rec)
	c.SetParamNames("name")
	c.SetParamValues(name)
	return rec, h.Serve(c)
}

func TestImageHandler_Serve(t *testing.T) {
	h, store := newImageHandler(t)
	if err := store.Write(context.Background(), store.Path("m1-a.png"), strings.NewReader("png-bytes")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec, err := serveImage(h, "m1-a.png")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "image/png" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if rec.Body.String() != "png-bytes" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestImageHandler_NotFound(t *testing.T) {
	h, _ := newImageHandler(t)

	for _, name := range []string{"missing.jpg", "..%2Fsecret", ""} {
		_, err := serveImage(h, name)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusNotFound {
			t.Fatalf("%q: expected 404, got %v", name, err)
		}
	}
}
