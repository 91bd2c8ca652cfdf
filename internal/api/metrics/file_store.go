package metrics

import (
	"context"
	"io"
	"time"

	"github.com/peliculas/catalog-api/internal/core/ports"
)

type instrumentedStore struct {
	ports.FileStore
}

// InstrumentFileStore wraps next so writes and deletes are counted.
func InstrumentFileStore(next ports.FileStore) ports.FileStore {
	return &instrumentedStore{FileStore: next}
}

func (s *instrumentedStore) Write(ctx context.Context, path string, r io.Reader) error {
	start := time.Now()
	err := s.FileStore.Write(ctx, path, r)
	ImageWriteDuration.Observe(time.Since(start).Seconds())
	ImageFilesTotal.WithLabelValues("write", result(err)).Inc()
	return err
}

func (s *instrumentedStore) Delete(ctx context.Context, path string) error {
	err := s.FileStore.Delete(ctx, path)
	ImageFilesTotal.WithLabelValues("delete", result(err)).Inc()
	return err
}
