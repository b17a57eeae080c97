package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repositoryTimeout = 5 * time.Second

// Repository provides database access for site settings.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a settings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches a setting by key.
func (r *Repository) Get(ctx context.Context, key string) (Setting, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	var setting Setting
	err := r.pool.QueryRow(ctx, `SELECT key, value, updated_at FROM site_settings WHERE key = $1;`, key).
		Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Setting{}, ErrSettingNotFound
		}
		return Setting{}, fmt.Errorf("get setting: %w", err)
	}
	return setting, nil
}

// Put inserts or replaces a setting value.
func (r *Repository) Put(ctx context.Context, key string, value json.RawMessage) (Setting, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
INSERT INTO site_settings (key, value)
VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
RETURNING key, value, updated_at;`

	var setting Setting
	if err := r.pool.QueryRow(ctx, query, key, value).Scan(&setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
		return Setting{}, fmt.Errorf("put setting: %w", err)
	}
	return setting, nil
}

// List returns every setting ordered by key.
func (r *Repository) List(ctx context.Context) ([]Setting, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT key, value, updated_at FROM site_settings ORDER BY key ASC;`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var out []Setting
	for rows.Next() {
		var setting Setting
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out = append(out, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}
	return out, nil
}
