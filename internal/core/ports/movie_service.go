package ports

import (
	"context"

	"github.com/peliculas/catalog-api/internal/core/domain"
)

// CreateMovieInput carries a new movie and its images.
// BaseURL is scheme://host/base-path of the current request.
type CreateMovieInput struct {
	Fields  domain.MovieFields
	BaseURL string
	Files   []domain.Upload
}

// UpdateMovieInput replaces the fields of movie ID and reconciles its images.
type UpdateMovieInput struct {
	ID      string
	Fields  domain.MovieFields
	BaseURL string
	Files   []domain.Upload
}

// PageResult is one page of the catalog.
type PageResult struct {
	Items      []*domain.Movie
	PageNumber int
	PageSize   int
	TotalPages int
	TotalItems int64
}

// MovieService defines use-case operations for the movie catalog.
type MovieService interface {
	CreateMovie(ctx context.Context, input CreateMovieInput) (*domain.Movie, error)
	UpdateMovie(ctx context.Context, input UpdateMovieInput) (*domain.Movie, error)
	DeleteMovie(ctx context.Context, id string) error
	GetMovie(ctx context.Context, id string) (*domain.Movie, error)
	GetPage(ctx context.Context, pageNumber, pageSize int) (*PageResult, error)
	Search(ctx context.Context, term string) ([]*domain.Movie, error)
	ListByCategory(ctx context.Context, categoryID string) ([]*domain.Movie, error)
}
