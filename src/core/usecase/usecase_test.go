package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"jokesite/src/core/domain"
	"jokesite/src/core/ports"
	"jokesite/src/infra/logger"
	"jokesite/src/infra/repo/memory"
	"jokesite/src/infra/security"
)

type countingHasher struct {
	ports.PasswordHasher
	verifies atomic.Int32
}

func (h *countingHasher) Verify(plaintext, digest string) bool {
	h.verifies.Add(1)
	return h.PasswordHasher.Verify(plaintext, digest)
}

type fixture struct {
	store  *memory.Store
	hasher *countingHasher
	auth   *AuthService
	jokes  *JokeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	hasher := &countingHasher{PasswordHasher: security.NewBcryptHasher(bcrypt.MinCost)}
	codec, err := security.NewJWTSessionCodec("test-secret", time.Hour)
	require.NoError(t, err)

	auth, err := NewAuthService(store.Users(), hasher, codec, logger.Discard())
	require.NoError(t, err)

	return &fixture{
		store:  store,
		hasher: hasher,
		auth:   auth,
		jokes:  NewJokeService(store.Jokes(), logger.Discard()),
	}
}

func TestAuth_RegisterThenLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.auth.Register(ctx, "kody", "twixrox")
	require.NoError(t, err)
	require.NotEqual(t, "twixrox", u.PasswordHash)

	got, err := f.auth.Login(ctx, "kody", "twixrox")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
}

func TestAuth_RegisterRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "kody", "twixrox")
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, "kody", "another1")
	require.True(t, domain.IsConflict(err))
	require.Equal(t, "User with username kody already exists", domain.Message(err))

	_, err = f.auth.Register(ctx, "k!", "123")
	fe, ok := domain.AsFieldErrors(err)
	require.True(t, ok)
	require.Contains(t, fe, "username")
	require.Contains(t, fe, "password")
}

func TestAuth_LoginFailuresAreUniform(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "kody", "twixrox")
	require.NoError(t, err)
	f.hasher.verifies.Store(0)

	u, wrongPassword := f.auth.Login(ctx, "kody", "wrong-password")
	require.Nil(t, u)
	require.Equal(t, int32(1), f.hasher.verifies.Load())

	u, unknownUser := f.auth.Login(ctx, "nobody", "wrong-password")
	require.Nil(t, u)
	require.Equal(t, int32(2), f.hasher.verifies.Load())

	require.Equal(t, wrongPassword, unknownUser)
	require.True(t, IsInvalidCredentials(wrongPassword))
	require.True(t, domain.IsUnauthorized(unknownUser))
}

func TestAuth_Sessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.auth.Register(ctx, "kody", "twixrox")
	require.NoError(t, err)

	value, err := f.auth.IssueSession(u.ID)
	require.NoError(t, err)

	id, ok := f.auth.ResolveSession(value)
	require.True(t, ok)
	require.Equal(t, u.ID, id)

	_, ok = f.auth.ResolveSession(value + "x")
	require.False(t, ok)

	found, err := f.auth.UserByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "kody", found.Username)

	missing, err := f.auth.UserByID(ctx, uuid.New())
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestJokes_CreateSameNameTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.auth.Register(ctx, "kody", "twixrox")
	require.NoError(t, err)

	_, err = f.jokes.Create(ctx, u.ID, "Trees", "Why do trees seem suspicious on sunny days?")
	require.NoError(t, err)

	first, err := f.jokes.Create(ctx, u.ID, "Frisbee", "I was wondering why the frisbee was getting bigger.")
	require.NoError(t, err)
	require.Equal(t, "frisbee", first.Slug)

	second, err := f.jokes.Create(ctx, u.ID, "Frisbee", "Then it hit me. Then it hit me again.")
	require.NoError(t, err)
	require.Equal(t, "frisbee-3", second.Slug)

	got, err := f.jokes.Get(ctx, "frisbee-3")
	require.NoError(t, err)
	require.Equal(t, second.ID, got.ID)
}

func TestJokes_CreateReservedAndInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.auth.Register(ctx, "kody", "twixrox")
	require.NoError(t, err)

	j, err := f.jokes.Create(ctx, u.ID, "New", "A brand new joke, fresh off the press.")
	require.NoError(t, err)
	require.Equal(t, "new-slug", j.Slug)

	_, err = f.jokes.Create(ctx, u.ID, "ab", "short")
	fe, ok := domain.AsFieldErrors(err)
	require.True(t, ok)
	require.Equal(t, "The joke's name should be 3 characters or more", fe["name"])
	require.Equal(t, "Joke should be 10 characters or more", fe["content"])
}

type racingJokes struct {
	*memory.JokeRepository
	conflicts int
}

func (r *racingJokes) Create(ctx context.Context, j *domain.Joke) error {
	if r.conflicts > 0 {
		r.conflicts--
		return domain.NewConflictError("slug taken")
	}
	return r.JokeRepository.Create(ctx, j)
}

func TestJokes_CreateRetriesOnConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.auth.Register(ctx, "kody", "twixrox")
	require.NoError(t, err)

	repo := &racingJokes{JokeRepository: f.store.Jokes(), conflicts: 1}
	svc := NewJokeService(repo, logger.Discard())

	j, err := svc.Create(ctx, u.ID, "Frisbee", "I was wondering why the frisbee was getting bigger.")
	require.NoError(t, err)
	require.Equal(t, "frisbee-2", j.Slug)

	repo.conflicts = maxSlugAttempts
	_, err = svc.Create(ctx, u.ID, "Dinner", "What did one plate say to the other plate?")
	require.True(t, domain.IsConflict(err))
}

func TestJokes_Random(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.jokes.Random(ctx)
	require.True(t, domain.IsNotFound(err))

	u, err := f.auth.Register(ctx, "kody", "twixrox")
	require.NoError(t, err)
	for _, name := range []string{"Trees", "Hippos", "Dinner"} {
		_, err := f.jokes.Create(ctx, u.ID, name, "content long enough to pass")
		require.NoError(t, err)
	}

	f.jokes.randN = func(n int64) int64 {
		require.Equal(t, int64(3), n)
		return 1
	}
	j, err := f.jokes.Random(ctx)
	require.NoError(t, err)
	require.Equal(t, "hippos", j.Slug)
}

func TestJokes_DeleteOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, err := f.auth.Register(ctx, "kody", "twixrox")
	require.NoError(t, err)
	other, err := f.auth.Register(ctx, "rofi", "password1")
	require.NoError(t, err)

	j, err := f.jokes.Create(ctx, owner.ID, "Skeletons", "They don't have the stomach for it.")
	require.NoError(t, err)

	err = f.jokes.Delete(ctx, j.Slug, other.ID)
	require.True(t, domain.IsForbidden(err))
	_, err = f.jokes.Get(ctx, j.Slug)
	require.NoError(t, err)

	require.NoError(t, f.jokes.Delete(ctx, j.Slug, owner.ID))
	_, err = f.jokes.Get(ctx, j.Slug)
	require.True(t, domain.IsNotFound(err))

	require.True(t, domain.IsNotFound(f.jokes.Delete(ctx, "missing", owner.ID)))
}

func TestJokes_ListRecentAndFeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.auth.Register(ctx, "kody", "twixrox")
	require.NoError(t, err)

	for i := 0; i < RecentJokesLimit+2; i++ {
		_, err := f.jokes.Create(ctx, u.ID, "Elevator", "An uplifting experience, then a let down.")
		require.NoError(t, err)
	}

	recent, err := f.jokes.ListRecent(ctx)
	require.NoError(t, err)
	require.Len(t, recent, RecentJokesLimit)

	feed, err := f.jokes.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, RecentJokesLimit+2)
	require.Equal(t, "kody", feed[0].Username)
}

func TestSeed_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewSeedService(f.store.Users(), f.store.Jokes(), f.hasher, logger.Discard())

	res, err := svc.Seed(ctx, "rofi", "secret")
	require.NoError(t, err)
	require.Equal(t, len(StarterJokes), res.JokesCreated)

	res, err = svc.Seed(ctx, "rofi", "secret")
	require.NoError(t, err)
	require.Zero(t, res.JokesCreated)
	require.Equal(t, len(StarterJokes), res.JokesSkipped)

	j, err := f.jokes.Get(ctx, "road-worker")
	require.NoError(t, err)
	require.True(t, j.OwnedBy(res.User.ID))

	u, err := f.auth.Login(ctx, "rofi", "secret")
	require.NoError(t, err)
	require.Equal(t, res.User.ID, u.ID)
}

type brokenRepo struct{}

func (brokenRepo) Health(context.Context) error { return errors.New("connection refused") }

func TestHealth_Check(t *testing.T) {
	f := newFixture(t)

	ok := NewHealthService(logger.Discard(), map[string]ports.Repository{"users": f.store.Users()})
	require.Equal(t, "ok", ok.Check(context.Background()).Status)

	bad := NewHealthService(logger.Discard(), map[string]ports.Repository{
		"users":    f.store.Users(),
		"database": brokenRepo{},
	})
	status := bad.Check(context.Background())
	require.Equal(t, "degraded", status.Status)
	require.Equal(t, "unhealthy", status.Components["database"].Status)
	require.Equal(t, "healthy", status.Components["users"].Status)
}
