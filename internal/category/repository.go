package category

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repositoryTimeout = 5 * time.Second

// Repository provides database access for categories.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a category repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const categoryColumns = `id, name, slug, created_at, updated_at`

// Create inserts a new category.
func (r *Repository) Create(ctx context.Context, category Category) (Category, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
INSERT INTO categories (id, name, slug)
VALUES ($1, $2, $3)
RETURNING ` + categoryColumns + `;`

	row := r.pool.QueryRow(ctx, query, category.ID, category.Name, category.Slug)
	stored, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Category{}, ErrCategoryExists
		}
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	return stored, nil
}

// Update persists a renamed category.
func (r *Repository) Update(ctx context.Context, category Category) (Category, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
UPDATE categories
SET name = $2, slug = $3, updated_at = NOW()
WHERE id = $1
RETURNING ` + categoryColumns + `;`

	row := r.pool.QueryRow(ctx, query, category.ID, category.Name, category.Slug)
	stored, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, ErrCategoryNotFound
		}
		if isUniqueViolation(err) {
			return Category{}, ErrCategoryExists
		}
		return Category{}, fmt.Errorf("update category: %w", err)
	}
	return stored, nil
}

// Get fetches a single category.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Category, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1;`, id)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, ErrCategoryNotFound
		}
		return Category{}, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// List returns all categories ordered by name.
func (r *Repository) List(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name ASC;`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// Delete removes a category.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (Category, error) {
	var category Category
	err := row.Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt, &category.UpdatedAt)
	return category, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
