// Package memory keeps users and jokes in process memory.
//
// It implements the same ports as the Postgres repositories and is selected
// with APP_STORAGE=memory. Tests across the module use it as their fake store.
// Returned entities are copies; mutating them does not touch the store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"jokesite/src/core/domain"
	"jokesite/src/core/ports"
)

var (
	_ ports.UserRepository = (*UserRepository)(nil)
	_ ports.JokeRepository = (*JokeRepository)(nil)
)

type jokeRow struct {
	joke domain.Joke
	seq  int64
}

// Store holds every table behind a single lock.
type Store struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]domain.User
	byName  map[string]uuid.UUID
	jokes   []*jokeRow
	bySlug  map[string]*jokeRow
	nextSeq int64
	now     func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:  make(map[uuid.UUID]domain.User),
		byName: make(map[string]uuid.UUID),
		bySlug: make(map[string]*jokeRow),
		now:    time.Now,
	}
}

// Users returns the user table.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Jokes returns the joke table.
func (s *Store) Jokes() *JokeRepository { return &JokeRepository{s: s} }

// UserRepository implements ports.UserRepository on a Store.
type UserRepository struct{ s *Store }

func (r *UserRepository) Health(context.Context) error { return nil }

func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.byName[u.Username]; taken {
		return domain.NewConflictError(fmt.Sprintf("User with username %s already exists", u.Username))
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := r.s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = *u
	r.s.byName[u.Username] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("user")
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byName[username]
	if !ok {
		return nil, domain.NewNotFoundError("user")
	}
	u := r.s.users[id]
	return &u, nil
}

// JokeRepository implements ports.JokeRepository on a Store.
type JokeRepository struct{ s *Store }

func (r *JokeRepository) Health(context.Context) error { return nil }

func (r *JokeRepository) Create(_ context.Context, j *domain.Joke) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.bySlug[j.Slug]; taken {
		return domain.NewConflictError(fmt.Sprintf("slug %q already taken", j.Slug))
	}
	if _, ok := r.s.users[j.JokesterID]; !ok {
		return fmt.Errorf("insert joke: jokester %s does not exist", j.JokesterID)
	}
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	now := r.s.now()
	j.CreatedAt, j.UpdatedAt = now, now

	r.s.nextSeq++
	row := &jokeRow{joke: *j, seq: r.s.nextSeq}
	r.s.jokes = append(r.s.jokes, row)
	r.s.bySlug[j.Slug] = row
	return nil
}

func (r *JokeRepository) GetBySlug(_ context.Context, slug string) (*domain.Joke, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.bySlug[slug]
	if !ok {
		return nil, domain.NewNotFoundError("joke")
	}
	j := row.joke
	return &j, nil
}

func (r *JokeRepository) SlugExists(_ context.Context, slug string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.bySlug[slug]
	return ok, nil
}

func (r *JokeRepository) Count(context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.s.jokes)), nil
}

func (r *JokeRepository) GetAt(_ context.Context, offset int64) (*domain.Joke, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if offset < 0 || offset >= int64(len(r.s.jokes)) {
		return nil, domain.NewNotFoundError("joke")
	}
	j := r.s.jokes[offset].joke
	return &j, nil
}

func (r *JokeRepository) ListRecent(_ context.Context, limit int) ([]domain.JokeSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := r.sorted(func(a, b *jokeRow) bool {
		if !a.joke.UpdatedAt.Equal(b.joke.UpdatedAt) {
			return a.joke.UpdatedAt.After(b.joke.UpdatedAt)
		}
		return a.seq > b.seq
	}, limit)

	out := make([]domain.JokeSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.JokeSummary{Slug: row.joke.Slug, Name: row.joke.Name})
	}
	return out, nil
}

func (r *JokeRepository) ListFeed(_ context.Context, limit int) ([]domain.FeedEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := r.sorted(func(a, b *jokeRow) bool {
		if !a.joke.CreatedAt.Equal(b.joke.CreatedAt) {
			return a.joke.CreatedAt.After(b.joke.CreatedAt)
		}
		return a.seq > b.seq
	}, limit)

	out := make([]domain.FeedEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.FeedEntry{Joke: row.joke, Username: r.s.users[row.joke.JokesterID].Username})
	}
	return out, nil
}

func (r *JokeRepository) DeleteBySlug(_ context.Context, slug string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.bySlug[slug]; !ok {
		return domain.NewNotFoundError("joke")
	}
	delete(r.s.bySlug, slug)
	kept := r.s.jokes[:0]
	for _, row := range r.s.jokes {
		if row.joke.Slug != slug {
			kept = append(kept, row)
		}
	}
	r.s.jokes = kept
	return nil
}

// sorted must be called with the read lock held.
func (r *JokeRepository) sorted(less func(a, b *jokeRow) bool, limit int) []*jokeRow {
	rows := make([]*jokeRow, len(r.s.jokes))
	copy(rows, r.s.jokes)
	sort.SliceStable(rows, func(i, k int) bool { return less(rows[i], rows[k]) })
	if limit >= 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
