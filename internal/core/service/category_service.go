package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/peliculas/catalog-api/internal/core/domain"
	"github.com/peliculas/catalog-api/internal/core/ports"
)

type CategoryService struct {
	repo   ports.CategoryRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewCategoryService(repo ports.CategoryRepository, logger zerolog.Logger) *CategoryService {
	return &CategoryService{repo: repo, logger: logger, now: time.Now}
}

func (s *CategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []*domain.Category{}
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if err := s.checkName(ctx, name, ""); err != nil {
		return nil, err
	}

	category := &domain.Category{Name: name, CreatedAt: s.now().UTC()}
	if err := s.repo.Create(ctx, category); err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("failed to create category")
		return nil, err
	}

	s.logger.Info().Str("category_id", category.ID).Msg("category created")
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id, name string) (*domain.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if err := s.checkName(ctx, name, id); err != nil {
		return nil, err
	}

	category.Name = name
	category.CreatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, category); err != nil {
		s.logger.Error().Err(err).Str("category_id", id).Msg("failed to update category")
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("category_id", id).Msg("category deleted")
	return nil
}

func (s *CategoryService) checkName(ctx context.Context, name, excludeID string) error {
	if name == "" {
		return domain.NewValidationError("name", "name is required")
	}
	taken, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.NewValidationError("name", "category already exists")
	}
	return nil
}
