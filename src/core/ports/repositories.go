// Package ports defines interfaces (ports) that connect core domain to infrastructure.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern.
//
// Ports are defined here in the core layer, while implementations (adapters)
// live in src/infra. This ensures the core has no dependency on infrastructure.
package ports

import (
	"context"

	"github.com/google/uuid"

	"jokesite/src/core/domain"
)

// Repository is the base interface for all repositories.
// Concrete repositories should embed this and add entity-specific methods.
type Repository interface {
	// Health checks if the underlying storage is reachable.
	Health(ctx context.Context) error
}

// UserRepository stores jokesters.
// Lookups return a domain not-found error when no row matches.
type UserRepository interface {
	Repository

	// Create inserts u. A taken username yields a conflict error.
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// JokeRepository stores jokes.
type JokeRepository interface {
	Repository

	// Create inserts j. A taken slug yields a conflict error.
	Create(ctx context.Context, j *domain.Joke) error
	GetBySlug(ctx context.Context, slug string) (*domain.Joke, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Count(ctx context.Context) (int64, error)
	// GetAt returns the joke at offset in storage order, or not-found past the end.
	GetAt(ctx context.Context, offset int64) (*domain.Joke, error)
	// ListRecent returns up to limit jokes, most recently updated first.
	ListRecent(ctx context.Context, limit int) ([]domain.JokeSummary, error)
	// ListFeed returns up to limit jokes with their jokester, newest first.
	ListFeed(ctx context.Context, limit int) ([]domain.FeedEntry, error)
	DeleteBySlug(ctx context.Context, slug string) error
}
