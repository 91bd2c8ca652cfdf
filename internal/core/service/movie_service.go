package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/peliculas/catalog-api/internal/core/domain"
	"github.com/peliculas/catalog-api/internal/core/ports"
)

type MovieService struct {
	repo       ports.MovieRepository
	categories ports.CategoryRepository
	assets     *AssetReconciler
	serial     ports.KeyedExecutor
	logger     zerolog.Logger
	now        func() time.Time
}

// NewMovieService wires the catalog use cases. serial may be nil, in which
// case writes to the same movie are not serialized.
func NewMovieService(repo ports.MovieRepository, categories ports.CategoryRepository, assets *AssetReconciler, serial ports.KeyedExecutor, logger zerolog.Logger) *MovieService {
	return &MovieService{repo: repo, categories: categories, assets: assets, serial: serial, logger: logger, now: time.Now}
}

// CreateMovie validates the fields, stores the images and inserts the movie.
// If the insert fails the stored images are removed again.
func (s *MovieService) CreateMovie(ctx context.Context, input ports.CreateMovieInput) (*domain.Movie, error) {
	if err := s.validate(ctx, input.Fields, ""); err != nil {
		return nil, err
	}

	id := s.repo.NewID()
	images, err := s.assets.OnCreate(ctx, id, input.BaseURL, input.Files)
	if err != nil {
		return nil, err
	}

	movie := &domain.Movie{
		ID:             id,
		Name:           strings.TrimSpace(input.Fields.Name),
		Description:    input.Fields.Description,
		Duration:       input.Fields.Duration,
		Classification: input.Fields.Classification,
		CategoryID:     input.Fields.CategoryID,
		Images:         images,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.repo.Create(ctx, movie); err != nil {
		s.logger.Error().Err(err).Str("movie_id", id).Msg("failed to create movie")
		if cleanupErr := s.assets.OnDelete(ctx, movie); cleanupErr != nil {
			s.logger.Warn().Err(cleanupErr).Str("movie_id", id).Msg("failed to remove images of unsaved movie")
		}
		return nil, err
	}

	s.logger.Info().Str("movie_id", id).Int("images", len(images)).Msg("movie created")
	return movie, nil
}

// UpdateMovie replaces the movie's fields and reconciles its images. Replaced
// files are removed only after the record is stored; on failure the newly
// written files are removed and the stored record keeps its old images.
func (s *MovieService) UpdateMovie(ctx context.Context, input ports.UpdateMovieInput) (*domain.Movie, error) {
	var movie *domain.Movie
	err := s.run(ctx, input.ID, func(ctx context.Context) error {
		var err error
		movie, err = s.updateMovie(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movie, nil
}

func (s *MovieService) updateMovie(ctx context.Context, input ports.UpdateMovieInput) (*domain.Movie, error) {
	movie, err := s.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, input.Fields, movie.ID); err != nil {
		return nil, err
	}

	change, err := s.assets.OnUpdate(ctx, movie, input.BaseURL, input.Files)
	if err != nil {
		return nil, err
	}

	movie.Name = strings.TrimSpace(input.Fields.Name)
	movie.Description = input.Fields.Description
	movie.Duration = input.Fields.Duration
	movie.Classification = input.Fields.Classification
	movie.CategoryID = input.Fields.CategoryID
	movie.Images = change.Slots
	movie.CreatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, movie); err != nil {
		s.logger.Error().Err(err).Str("movie_id", movie.ID).Msg("failed to update movie")
		s.assets.Discard(ctx, change)
		return nil, err
	}
	s.assets.Commit(ctx, change)

	s.logger.Info().Str("movie_id", movie.ID).Int("images", len(movie.Images)).Msg("movie updated")
	return movie, nil
}

// DeleteMovie removes the movie's images, then the movie.
func (s *MovieService) DeleteMovie(ctx context.Context, id string) error {
	return s.run(ctx, id, func(ctx context.Context) error {
		return s.deleteMovie(ctx, id)
	})
}

func (s *MovieService) deleteMovie(ctx context.Context, id string) error {
	movie, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.assets.OnDelete(ctx, movie); err != nil {
		return fmt.Errorf("delete movie %s: %w", id, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete movie %s: %w", id, err)
	}

	s.logger.Info().Str("movie_id", id).Msg("movie deleted")
	return nil
}

func (s *MovieService) GetMovie(ctx context.Context, id string) (*domain.Movie, error) {
	return s.repo.FindByID(ctx, id)
}

// GetPage returns page pageNumber of the catalog ordered by name. A page past
// the end is empty, not an error.
func (s *MovieService) GetPage(ctx context.Context, pageNumber, pageSize int) (*ports.PageResult, error) {
	verr := &domain.ValidationError{}
	if pageNumber < 1 {
		verr.Add("page_number", "page_number must be at least 1")
	}
	if pageSize < 1 {
		verr.Add("page_size", "page_size must be at least 1")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	skip := int64(pageNumber-1) * int64(pageSize)
	items, err := s.repo.List(ctx, skip, int64(pageSize))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Movie{}
	}

	return &ports.PageResult{
		Items:      items,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
		TotalItems: total,
	}, nil
}

// Search returns movies whose name or description contains term. An empty
// term returns the whole catalog.
func (s *MovieService) Search(ctx context.Context, term string) ([]*domain.Movie, error) {
	var (
		movies []*domain.Movie
		err    error
	)
	if term == "" {
		movies, err = s.repo.List(ctx, 0, 0)
	} else {
		movies, err = s.repo.Search(ctx, term)
	}
	if err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []*domain.Movie{}
	}
	return movies, nil
}

func (s *MovieService) ListByCategory(ctx context.Context, categoryID string) ([]*domain.Movie, error) {
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		return nil, err
	}
	movies, err := s.repo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []*domain.Movie{}
	}
	return movies, nil
}

// validate checks fields, the category reference and name uniqueness.
// excludeID is the movie being updated, empty on create.
func (s *MovieService) validate(ctx context.Context, f domain.MovieFields, excludeID string) error {
	if verr := f.Validate(); verr != nil {
		return verr
	}

	verr := &domain.ValidationError{}
	if _, err := s.categories.FindByID(ctx, f.CategoryID); err != nil {
		if !errors.Is(err, domain.ErrCategoryNotFound) {
			return err
		}
		verr.Add("category_id", "category does not exist")
	}

	taken, err := s.repo.ExistsByName(ctx, f.Name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		verr.Add("name", "movie already exists")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// run executes fn under the per-movie serializer when one is configured.
func (s *MovieService) run(ctx context.Context, id string, fn func(context.Context) error) error {
	if s.serial == nil {
		return fn(ctx)
	}
	return s.serial.Do(ctx, id, fn)
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	size := int64(pageSize)
	return int((total + size - 1) / size)
}
