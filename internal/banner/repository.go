package banner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repositoryTimeout = 5 * time.Second

// Repository provides database access for banners.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a banner repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const bannerColumns = `id, label, image_path, target_url, active, position, created_at, updated_at`

// Create inserts a new banner.
func (r *Repository) Create(ctx context.Context, banner Banner) (Banner, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
INSERT INTO banners (id, label, image_path, target_url, active, position)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + bannerColumns + `;`

	row := r.pool.QueryRow(ctx, query, banner.ID, banner.Label, banner.ImagePath, banner.TargetURL, banner.Active, banner.Position)
	stored, err := scanBanner(row)
	if err != nil {
		return Banner{}, fmt.Errorf("create banner: %w", err)
	}
	return stored, nil
}

// Update persists mutated banner fields.
func (r *Repository) Update(ctx context.Context, banner Banner) (Banner, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
UPDATE banners
SET label = $2, image_path = $3, target_url = $4, active = $5, position = $6, updated_at = NOW()
WHERE id = $1
RETURNING ` + bannerColumns + `;`

	row := r.pool.QueryRow(ctx, query, banner.ID, banner.Label, banner.ImagePath, banner.TargetURL, banner.Active, banner.Position)
	stored, err := scanBanner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Banner{}, ErrBannerNotFound
		}
		return Banner{}, fmt.Errorf("update banner: %w", err)
	}
	return stored, nil
}

// Get fetches a single banner.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Banner, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+bannerColumns+` FROM banners WHERE id = $1;`, id)
	banner, err := scanBanner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Banner{}, ErrBannerNotFound
		}
		return Banner{}, fmt.Errorf("get banner: %w", err)
	}
	return banner, nil
}

// List returns banners ordered by position.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]Banner, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `SELECT ` + bannerColumns + ` FROM banners ORDER BY position ASC, created_at DESC;`
	if activeOnly {
		query = `SELECT ` + bannerColumns + ` FROM banners WHERE active ORDER BY position ASC, created_at DESC;`
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	defer rows.Close()

	var banners []Banner
	for rows.Next() {
		banner, err := scanBanner(rows)
		if err != nil {
			return nil, fmt.Errorf("scan banner: %w", err)
		}
		banners = append(banners, banner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate banners: %w", err)
	}
	return banners, nil
}

// Delete removes the banner, returning it for asset cleanup.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (Banner, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `DELETE FROM banners WHERE id = $1 RETURNING `+bannerColumns+`;`, id)
	banner, err := scanBanner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Banner{}, ErrBannerNotFound
		}
		return Banner{}, fmt.Errorf("delete banner: %w", err)
	}
	return banner, nil
}

func scanBanner(row pgx.Row) (Banner, error) {
	var banner Banner
	err := row.Scan(
		&banner.ID,
		&banner.Label,
		&banner.ImagePath,
		&banner.TargetURL,
		&banner.Active,
		&banner.Position,
		&banner.CreatedAt,
		&banner.UpdatedAt,
	)
	return banner, err
}
