package ports

import (
	"context"

	"github.com/peliculas/catalog-api/internal/core/domain"
)

// MovieRepository defines persistence operations for movies.
type MovieRepository interface {
	// NewID reserves an identifier so image files can be named before the
	// movie is inserted.
	NewID() string
	FindByID(ctx context.Context, id string) (*domain.Movie, error)
	// List returns movies ordered by name, skipping skip and returning at most
	// limit rows. limit <= 0 means no limit.
	List(ctx context.Context, skip, limit int64) ([]*domain.Movie, error)
	Count(ctx context.Context) (int64, error)
	// Search matches term as a substring of name or description.
	Search(ctx context.Context, term string) ([]*domain.Movie, error)
	ListByCategory(ctx context.Context, categoryID string) ([]*domain.Movie, error)
	// ExistsByName compares trimmed, lower-cased names. excludeID skips one
	// record so updates can keep their own name.
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, m *domain.Movie) error
	Update(ctx context.Context, m *domain.Movie) error
	Delete(ctx context.Context, id string) error
}
