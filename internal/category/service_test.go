package category

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type fakeStore struct {
	records map[uuid.UUID]Category
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[uuid.UUID]Category{}}
}

func (f *fakeStore) Create(_ context.Context, category Category) (Category, error) {
	for _, existing := range f.records {
		if existing.Slug == category.Slug {
			return Category{}, ErrCategoryExists
		}
	}
	f.records[category.ID] = category
	return category, nil
}

func (f *fakeStore) Update(_ context.Context, category Category) (Category, error) {
	if _, ok := f.records[category.ID]; !ok {
		return Category{}, ErrCategoryNotFound
	}
	f.records[category.ID] = category
	return category, nil
}

func (f *fakeStore) Get(_ context.Context, id uuid.UUID) (Category, error) {
	category, ok := f.records[id]
	if !ok {
		return Category{}, ErrCategoryNotFound
	}
	return category, nil
}

func (f *fakeStore) List(_ context.Context) ([]Category, error) {
	out := make([]Category, 0, len(f.records))
	for _, c := range f.records {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.records[id]; !ok {
		return ErrCategoryNotFound
	}
	delete(f.records, id)
	return nil
}

func TestCreateDerivesSlug(t *testing.T) {
	service := NewService(newFakeStore())

	category, err := service.Create(context.Background(), "  Tower Defense!  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if category.Name != "Tower Defense!" {
		t.Fatalf("expected trimmed name, got %q", category.Name)
	}
	if category.Slug != "tower-defense" {
		t.Fatalf("expected slug tower-defense, got %q", category.Slug)
	}
}

func TestCreateRejectsShortName(t *testing.T) {
	service := NewService(newFakeStore())

	_, err := service.Create(context.Background(), " x ")
	if !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	store := newFakeStore()
	service := NewService(store)

	if _, err := service.Create(context.Background(), "Arcade"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := service.Create(context.Background(), "ARCADE")
	if !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("expected ErrCategoryExists, got %v", err)
	}
}

func TestRenameUpdatesSlug(t *testing.T) {
	store := newFakeStore()
	service := NewService(store)

	category, err := service.Create(context.Background(), "Puzzle")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	renamed, err := service.Rename(context.Background(), category.ID, "Logic Puzzles")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Slug != "logic-puzzles" {
		t.Fatalf("expected slug logic-puzzles, got %q", renamed.Slug)
	}
}

func TestRenameMissingCategory(t *testing.T) {
	service := NewService(newFakeStore())

	_, err := service.Rename(context.Background(), uuid.New(), "Racing")
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}
