package usecase

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"

	"jokesite/src/core/domain"
	"jokesite/src/core/ports"
)

const (
	// RecentJokesLimit is how many jokes the sidebar lists.
	RecentJokesLimit = 10
	// FeedLimit is how many jokes the RSS feed carries.
	FeedLimit = 100

	maxSlugAttempts = 3
)

// ErrNotYourJoke is returned when someone other than the owner tries to delete a joke.
var ErrNotYourJoke = domain.NewForbiddenError("Pssh, nice try. That's not your joke")

// JokeService reads, creates and deletes jokes.
type JokeService struct {
	jokes ports.JokeRepository
	log   *slog.Logger
	randN func(n int64) int64
}

// NewJokeService creates a new JokeService.
func NewJokeService(jokes ports.JokeRepository, log *slog.Logger) *JokeService {
	return &JokeService{
		jokes: jokes,
		log:   log,
		randN: rand.Int64N,
	}
}

// ListRecent returns the most recently updated jokes for the sidebar.
func (s *JokeService) ListRecent(ctx context.Context) ([]domain.JokeSummary, error) {
	return s.jokes.ListRecent(ctx, RecentJokesLimit)
}

// Random picks a uniformly random joke. An empty table is a not-found.
func (s *JokeService) Random(ctx context.Context) (*domain.Joke, error) {
	n, err := s.jokes.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.NewNotFoundError("joke")
	}
	return s.jokes.GetAt(ctx, s.randN(n))
}

func (s *JokeService) Get(ctx context.Context, slug string) (*domain.Joke, error) {
	return s.jokes.GetBySlug(ctx, slug)
}

// Feed returns the newest jokes with their jokesters.
func (s *JokeService) Feed(ctx context.Context) ([]domain.FeedEntry, error) {
	return s.jokes.ListFeed(ctx, FeedLimit)
}

// Create validates and stores a new joke owned by jokesterID.
//
// A taken slug gets "-<count+1>" appended. Two concurrent creations can
// compute the same suffix; the loser hits the unique constraint and retries
// with a bumped suffix, giving up after maxSlugAttempts.
func (s *JokeService) Create(ctx context.Context, jokesterID uuid.UUID, name, content string) (*domain.Joke, error) {
	if errs := domain.ValidateJoke(name, content); errs.Any() {
		return nil, errs
	}

	base := domain.JokeSlug(name)
	slug := base
	taken, err := s.jokes.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if taken {
		if slug, err = s.suffixed(ctx, base, 0); err != nil {
			return nil, err
		}
	}

	for attempt := 1; ; attempt++ {
		j := &domain.Joke{
			ID:         uuid.New(),
			JokesterID: jokesterID,
			Slug:       slug,
			Name:       name,
			Content:    content,
		}
		err := s.jokes.Create(ctx, j)
		if err == nil {
			s.log.Info("joke created", "slug", j.Slug, "jokester_id", jokesterID)
			return j, nil
		}
		if !domain.IsConflict(err) || attempt >= maxSlugAttempts {
			return nil, err
		}

		s.log.Warn("slug collision, retrying", "slug", slug, "attempt", attempt)
		if slug, err = s.suffixed(ctx, base, int64(attempt)); err != nil {
			return nil, err
		}
	}
}

func (s *JokeService) suffixed(ctx context.Context, base string, bump int64) (string, error) {
	n, err := s.jokes.Count(ctx)
	if err != nil {
		return "", err
	}
	return domain.SuffixSlug(base, n+1+bump), nil
}

// Delete removes the joke at slug when userID owns it.
// Ownership is read from storage, never from the request.
func (s *JokeService) Delete(ctx context.Context, slug string, userID uuid.UUID) error {
	j, err := s.jokes.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if !j.OwnedBy(userID) {
		s.log.Warn("delete refused", "slug", slug, "user_id", userID)
		return ErrNotYourJoke
	}
	if err := s.jokes.DeleteBySlug(ctx, slug); err != nil {
		return err
	}
	s.log.Info("joke deleted", "slug", slug, "user_id", userID)
	return nil
}
