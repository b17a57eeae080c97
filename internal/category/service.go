package category

import (
	"context"
	"fmt"
	"strings"

	"github.com/adilzhan/gameportal/internal/assetpath"
	"github.com/google/uuid"
)

type categoryStore interface {
	Create(ctx context.Context, category Category) (Category, error)
	Update(ctx context.Context, category Category) (Category, error)
	Get(ctx context.Context, id uuid.UUID) (Category, error)
	List(ctx context.Context) ([]Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service manages the category taxonomy.
type Service struct {
	repo categoryStore
}

// NewService constructs a category service.
func NewService(repo categoryStore) *Service {
	return &Service{repo: repo}
}

// Create adds a category, deriving its slug from the name.
func (s *Service) Create(ctx context.Context, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return Category{}, fmt.Errorf("%w: name must be at least 2 characters", ErrInvalidCategory)
	}

	return s.repo.Create(ctx, Category{
		ID:   uuid.New(),
		Name: name,
		Slug: assetpath.Slugify(name),
	})
}

// Rename changes a category's name and slug.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return Category{}, fmt.Errorf("%w: name must be at least 2 characters", ErrInvalidCategory)
	}

	category, err := s.repo.Get(ctx, id)
	if err != nil {
		return Category{}, err
	}

	category.Name = name
	category.Slug = assetpath.Slugify(name)
	return s.repo.Update(ctx, category)
}

// List returns all categories.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

// Delete removes a category.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
