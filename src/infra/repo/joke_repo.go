package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"jokesite/src/core/domain"
	"jokesite/src/core/ports"
	"jokesite/src/infra/db"
)

var _ ports.JokeRepository = (*JokeRepository)(nil)

// JokeRepository implements ports.JokeRepository using pgx.
type JokeRepository struct {
	pool db.Pool
	log  *slog.Logger
}

// NewJokeRepository constructs a joke repository backed by Postgres.
func NewJokeRepository(pg *db.Postgres, log *slog.Logger) *JokeRepository {
	return &JokeRepository{pool: pg.Pool, log: log}
}

func (r *JokeRepository) Health(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *JokeRepository) Create(ctx context.Context, j *domain.Joke) error {
	const q = `
		INSERT INTO jokes (id, jokester_id, slug, name, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, q, j.ID, j.JokesterID, j.Slug, j.Name, j.Content).Scan(&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.log.Warn("joke slug already taken", "slug", j.Slug)
			return domain.NewConflictError(fmt.Sprintf("slug %q already taken", j.Slug))
		}
		return fmt.Errorf("insert joke: %w", err)
	}
	return nil
}

func (r *JokeRepository) GetBySlug(ctx context.Context, slug string) (*domain.Joke, error) {
	const q = `
		SELECT id, jokester_id, slug, name, content, created_at, updated_at
		FROM jokes
		WHERE slug = $1
	`
	return scanJoke(r.pool.QueryRow(ctx, q, slug))
}

func (r *JokeRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM jokes WHERE slug = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, slug).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *JokeRepository) Count(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM jokes`
	var n int64
	if err := r.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *JokeRepository) GetAt(ctx context.Context, offset int64) (*domain.Joke, error) {
	const q = `
		SELECT id, jokester_id, slug, name, content, created_at, updated_at
		FROM jokes
		ORDER BY created_at, id
		LIMIT 1 OFFSET $1
	`
	return scanJoke(r.pool.QueryRow(ctx, q, offset))
}

func (r *JokeRepository) ListRecent(ctx context.Context, limit int) ([]domain.JokeSummary, error) {
	const q = `
		SELECT slug, name
		FROM jokes
		ORDER BY updated_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jokes := make([]domain.JokeSummary, 0, limit)
	for rows.Next() {
		var j domain.JokeSummary
		if err := rows.Scan(&j.Slug, &j.Name); err != nil {
			return nil, err
		}
		jokes = append(jokes, j)
	}
	return jokes, rows.Err()
}

func (r *JokeRepository) ListFeed(ctx context.Context, limit int) ([]domain.FeedEntry, error) {
	const q = `
		SELECT j.id, j.jokester_id, j.slug, j.name, j.content, j.created_at, j.updated_at, u.username
		FROM jokes j
		JOIN users u ON u.id = j.jokester_id
		ORDER BY j.created_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.FeedEntry, 0, limit)
	for rows.Next() {
		var e domain.FeedEntry
		if err := rows.Scan(
			&e.ID, &e.JokesterID, &e.Slug, &e.Name, &e.Content, &e.CreatedAt, &e.UpdatedAt, &e.Username,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *JokeRepository) DeleteBySlug(ctx context.Context, slug string) error {
	const q = `DELETE FROM jokes WHERE slug = $1`
	res, err := r.pool.Exec(ctx, q, slug)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NewNotFoundError("joke")
	}
	return nil
}

func scanJoke(row pgx.Row) (*domain.Joke, error) {
	var j domain.Joke
	if err := row.Scan(&j.ID, &j.JokesterID, &j.Slug, &j.Name, &j.Content, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("joke")
		}
		return nil, err
	}
	return &j, nil
}
