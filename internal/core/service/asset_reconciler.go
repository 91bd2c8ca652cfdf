package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/peliculas/catalog-api/internal/core/domain"
	"github.com/peliculas/catalog-api/internal/core/ports"
)

// ImagesRoute is the URL segment stored images are served under.
const ImagesRoute = "/ImagenesPeliculas/"

// AssetReconciler keeps a movie's image slots and the files in the FileStore
// in step.
type AssetReconciler struct {
	files    ports.FileStore
	newToken func() string
	log      zerolog.Logger
}

func NewAssetReconciler(files ports.FileStore, log zerolog.Logger) *AssetReconciler {
	return &AssetReconciler{files: files, newToken: uuid.NewString, log: log}
}

// OnCreate stores files for a new movie and returns its slots in upload order.
// The count is checked before anything is written.
func (r *AssetReconciler) OnCreate(ctx context.Context, movieID, baseURL string, files []domain.Upload) ([]domain.ImageSlot, error) {
	if len(files) == 0 {
		return nil, domain.ErrImagesRequired
	}
	if len(files) > domain.MaxImages {
		return nil, domain.ErrUploadLimitExceeded
	}

	slots := make([]domain.ImageSlot, 0, len(files))
	for _, f := range files {
		slot, err := r.put(ctx, movieID, baseURL, f)
		if err != nil {
			r.discard(ctx, slots)
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// ImageChange is a pending reconciliation of a movie's slots. The new files
// are already stored; the superseded ones are still on disk until Commit.
type ImageChange struct {
	Slots      []domain.ImageSlot
	written    []domain.ImageSlot
	superseded []string
}

// OnUpdate reconciles movie.Images against files, slot by slot, without
// touching movie. A slot whose stored file name equals the uploaded file name
// is kept; any other slot gets the new file, and its previous file is queued
// for removal. Nothing is deleted here: the caller persists change.Slots and
// then calls Commit, or Discard if persisting failed.
func (r *AssetReconciler) OnUpdate(ctx context.Context, movie *domain.Movie, baseURL string, files []domain.Upload) (*ImageChange, error) {
	if len(files) == 0 {
		return nil, domain.ErrImagesRequired
	}
	if len(files) > domain.MaxImages {
		return nil, domain.ErrUploadLimitExceeded
	}

	change := &ImageChange{Slots: append([]domain.ImageSlot{}, movie.Images...)}
	for i, f := range files {
		existing := ""
		if i < len(change.Slots) && change.Slots[i].LocalPath != "" {
			existing = filepath.Base(change.Slots[i].LocalPath)
		}
		if existing == f.Filename {
			continue
		}

		slot, err := r.put(ctx, movie.ID, baseURL, f)
		if err != nil {
			r.Discard(ctx, change)
			return nil, err
		}
		change.written = append(change.written, slot)

		if i < len(change.Slots) {
			if old := change.Slots[i].LocalPath; old != "" {
				change.superseded = append(change.superseded, old)
			}
			change.Slots[i] = slot
			continue
		}
		change.Slots = append(change.Slots, slot)
	}
	return change, nil
}

// Commit removes the files replaced by change once the new slots are stored.
// The record no longer references them, so failures are only logged.
func (r *AssetReconciler) Commit(ctx context.Context, change *ImageChange) {
	for _, path := range change.superseded {
		if err := r.remove(ctx, path); err != nil {
			r.log.Warn().Err(err).Str("path", path).Msg("failed to remove replaced image")
		}
	}
}

// Discard removes the files written for change, leaving the previous slots
// and their files as they were.
func (r *AssetReconciler) Discard(ctx context.Context, change *ImageChange) {
	r.discard(ctx, change.written)
}

// OnDelete removes every file referenced by the movie. Files already gone are
// skipped.
func (r *AssetReconciler) OnDelete(ctx context.Context, movie *domain.Movie) error {
	for _, slot := range movie.Images {
		if err := r.remove(ctx, slot.LocalPath); err != nil {
			return err
		}
	}
	return nil
}

func (r *AssetReconciler) put(ctx context.Context, movieID, baseURL string, f domain.Upload) (domain.ImageSlot, error) {
	name := movieID + r.newToken() + filepath.Ext(f.Filename)
	path := r.files.Path(name)

	if err := r.remove(ctx, path); err != nil {
		return domain.ImageSlot{}, err
	}

	rc, err := f.Open()
	if err != nil {
		return domain.ImageSlot{}, fmt.Errorf("open upload %q: %w", f.Filename, err)
	}
	defer rc.Close()

	if err := r.files.Write(ctx, path, rc); err != nil {
		if rmErr := r.remove(context.WithoutCancel(ctx), path); rmErr != nil {
			r.log.Warn().Err(rmErr).Str("path", path).Msg("failed to remove partial image")
		}
		return domain.ImageSlot{}, fmt.Errorf("write image %s: %w", name, err)
	}

	r.log.Debug().Str("movie_id", movieID).Str("path", path).Msg("image stored")
	return domain.ImageSlot{
		URL:       strings.TrimRight(baseURL, "/") + ImagesRoute + name,
		LocalPath: path,
	}, nil
}

func (r *AssetReconciler) remove(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	ok, err := r.files.Exists(ctx, path)
	if err != nil {
		return fmt.Errorf("stat image %s: %w", path, err)
	}
	if !ok {
		return nil
	}
	if err := r.files.Delete(ctx, path); err != nil {
		return fmt.Errorf("delete image %s: %w", path, err)
	}
	return nil
}

// discard best-effort removes files written by a failed operation.
func (r *AssetReconciler) discard(ctx context.Context, slots []domain.ImageSlot) {
	ctx = context.WithoutCancel(ctx)
	for _, s := range slots {
		if err := r.remove(ctx, s.LocalPath); err != nil {
			r.log.Warn().Err(err).Str("path", s.LocalPath).Msg("failed to discard image")
		}
	}
}
