package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"jokesite/src/core/domain"
	"jokesite/src/core/ports"
)

// SeedJoke is one entry of the starter set.
type SeedJoke struct {
	Name    string
	Content string
}

// StarterJokes is loaded by `jokesite seed`.
var StarterJokes = []SeedJoke{
	{
		Name:    "Road worker",
		Content: "I never wanted to believe that my Dad was stealing from his job as a road worker. But when I got home, all the signs were there.",
	},
	{
		Name:    "Frisbee",
		Content: "I was wondering why the frisbee was getting bigger, then it hit me.",
	},
	{
		Name:    "Trees",
		Content: "Why do trees seem suspicious on sunny days? Dunno, they're just a bit shady.",
	},
	{
		Name:    "Skeletons",
		Content: "Why don't skeletons ride roller coasters? They don't have the stomach for it.",
	},
	{
		Name:    "Hippos",
		Content: "Why don't you find hippopotamuses hiding in trees? They're really good at it.",
	},
	{
		Name:    "Dinner",
		Content: "What did one plate say to the other plate? Dinner is on me!",
	},
	{
		Name:    "Elevator",
		Content: "My first time using an elevator was an uplifting experience. The second time let me down.",
	},
}

// SeedService loads a starter user and jokes.
type SeedService struct {
	users  ports.UserRepository
	jokes  ports.JokeRepository
	hasher ports.PasswordHasher
	log    *slog.Logger
}

func NewSeedService(users ports.UserRepository, jokes ports.JokeRepository, hasher ports.PasswordHasher, log *slog.Logger) *SeedService {
	return &SeedService{users: users, jokes: jokes, hasher: hasher, log: log}
}

// SeedResult counts what a seed run wrote.
type SeedResult struct {
	User         *domain.User
	JokesCreated int
	JokesSkipped int
}

// Seed creates username (if missing) and every starter joke whose slug is free.
// Running it twice is harmless.
func (s *SeedService) Seed(ctx context.Context, username, password string) (*SeedResult, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !domain.IsNotFound(err) {
			return nil, err
		}
		digest, err := s.hasher.Hash(password)
		if err != nil {
			return nil, err
		}
		u = &domain.User{ID: uuid.New(), Username: username, PasswordHash: digest}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, err
		}
		s.log.Info("seed user created", "username", username)
	}

	res := &SeedResult{User: u}
	for _, sj := range StarterJokes {
		slug := domain.Slugify(sj.Name)
		taken, err := s.jokes.SlugExists(ctx, slug)
		if err != nil {
			return nil, err
		}
		if taken {
			res.JokesSkipped++
			continue
		}
		j := &domain.Joke{
			ID:         uuid.New(),
			JokesterID: u.ID,
			Slug:       slug,
			Name:       sj.Name,
			Content:    sj.Content,
		}
		if err := s.jokes.Create(ctx, j); err != nil {
			return nil, err
		}
		res.JokesCreated++
	}

	s.log.Info("seed complete", "created", res.JokesCreated, "skipped", res.JokesSkipped)
	return res, nil
}
