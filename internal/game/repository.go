package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repositoryTimeout = 5 * time.Second

// Repository provides database access for game records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a game repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const gameColumns = `id, slug, name, description, categories, size, thumbnail_path, icon_path, preview_path, play_path, active, created_at, updated_at`

// Create inserts a new game record.
func (r *Repository) Create(ctx context.Context, game Game) (Game, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
INSERT INTO games (id, slug, name, description, categories, size, thumbnail_path, icon_path, preview_path, play_path, active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + gameColumns + `;`

	row := r.pool.QueryRow(ctx, query,
		game.ID, game.Slug, game.Name, game.Description, game.Categories, game.Size,
		game.ThumbnailPath, game.IconPath, game.PreviewPath, game.PlayPath, game.Active,
	)

	stored, err := scanGame(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Game{}, ErrSlugExists
		}
		return Game{}, fmt.Errorf("create game: %w", err)
	}
	return stored, nil
}

// Update persists mutated fields of an existing record.
func (r *Repository) Update(ctx context.Context, game Game) (Game, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
UPDATE games
SET slug = $2, name = $3, description = $4, categories = $5, size = $6,
    thumbnail_path = $7, icon_path = $8, preview_path = $9, play_path = $10,
    active = $11, updated_at = NOW()
WHERE id = $1
RETURNING ` + gameColumns + `;`

	row := r.pool.QueryRow(ctx, query,
		game.ID, game.Slug, game.Name, game.Description, game.Categories, game.Size,
		game.ThumbnailPath, game.IconPath, game.PreviewPath, game.PlayPath, game.Active,
	)

	stored, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Game{}, ErrGameNotFound
		}
		if isUniqueViolation(err) {
			return Game{}, ErrSlugExists
		}
		return Game{}, fmt.Errorf("update game: %w", err)
	}
	return stored, nil
}

// GetByID fetches a single record by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Game, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1;`, id)
	game, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Game{}, ErrGameNotFound
		}
		return Game{}, fmt.Errorf("get game: %w", err)
	}
	return game, nil
}

// GetBySlug fetches a single record by slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (Game, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE slug = $1;`, slug)
	game, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Game{}, ErrGameNotFound
		}
		return Game{}, fmt.Errorf("get game by slug: %w", err)
	}
	return game, nil
}

// List returns records matching the filter plus the unpaged total count.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Game, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		placeholder := arg("%" + search + "%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s)", placeholder, placeholder))
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("%s = ANY(categories)", arg(filter.Category)))
	}
	if filter.Size != "" {
		conditions = append(conditions, fmt.Sprintf("size = %s", arg(string(filter.Size))))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM games %s;", where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count games: %w", err)
	}

	limit := arg(filter.PerPage)
	offset := arg((filter.Page - 1) * filter.PerPage)
	listQuery := fmt.Sprintf(
		"SELECT %s FROM games %s ORDER BY created_at DESC LIMIT %s OFFSET %s;",
		gameColumns, where, limit, offset,
	)

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate games: %w", err)
	}

	return games, total, nil
}

// Delete removes the record, returning it so assets can be cleaned up.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (Game, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `DELETE FROM games WHERE id = $1 RETURNING `+gameColumns+`;`, id)
	game, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Game{}, ErrGameNotFound
		}
		return Game{}, fmt.Errorf("delete game: %w", err)
	}
	return game, nil
}

func scanGame(row pgx.Row) (Game, error) {
	var game Game
	err := row.Scan(
		&game.ID,
		&game.Slug,
		&game.Name,
		&game.Description,
		&game.Categories,
		&game.Size,
		&game.ThumbnailPath,
		&game.IconPath,
		&game.PreviewPath,
		&game.PlayPath,
		&game.Active,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	return game, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
