package ports

import (
	"context"
	"io"
)

// FileStore is where movie images live. Paths are the values kept in
// domain.ImageSlot.LocalPath.
type FileStore interface {
	// Path joins the store root with a file name.
	Path(name string) string
	Exists(ctx context.Context, path string) (bool, error)
	// Delete removes the file at path. A missing file is not an error.
	Delete(ctx context.Context, path string) error
	Write(ctx context.Context, path string, r io.Reader) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}
