package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"jokesite/src/core/domain"
	"jokesite/src/core/ports"
	"jokesite/src/infra/config"
	"jokesite/src/infra/logger"
	"jokesite/src/infra/repo/memory"
	"jokesite/src/infra/security"
)

const (
	cookieName   = "RJ_session"
	testSecret   = "test-secret"
	testPassword = "twixrox"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080, ShutdownTimeout: time.Second},
		Log:    config.LogConfig{Level: "error", Format: "json"},
		Session: config.SessionConfig{
			Secret:       testSecret,
			CookieName:   cookieName,
			MaxAge:       time.Hour,
			Env:          "test",
			PasswordCost: bcrypt.MinCost,
		},
		Site: config.SiteConfig{
			URL:         "http://localhost:8080",
			Name:        "Remix Jokes",
			Title:       "Remix J🤪kes",
			Description: "Collection of jokes built with Remix",
			IconSizes:   []string{"192", "512"},
			Version:     "test",
		},
	}
}

func newTestServer(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	store := memory.New()
	srv, err := New(testConfig(), logger.Discard(), Deps{Users: store.Users(), Jokes: store.Jokes()})
	require.NoError(t, err)
	return srv.Router(), store
}

func sessionFrom(t *testing.T, res *http.Response) string {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == cookieName {
			return c.Value
		}
	}
	t.Fatal("response did not set a session cookie")
	return ""
}

func register(t *testing.T, h http.Handler, username string) string {
	t.Helper()
	res := apitest.New().
		Handler(h).
		Post("/login").
		FormData("loginType", "register").
		FormData("username", username).
		FormData("password", testPassword).
		Expect(t).
		Status(http.StatusSeeOther).
		Header("Location", "/jokes").
		End()
	return sessionFrom(t, res.Response)
}

func createJoke(t *testing.T, h http.Handler, session, name, wantLocation string) {
	t.Helper()
	apitest.New().
		Handler(h).
		Post("/jokes/new").
		Cookie(cookieName, session).
		FormData("jokeName", name).
		FormData("jokeContent", "I was wondering why the frisbee was getting bigger, then it hit me.").
		Expect(t).
		Status(http.StatusSeeOther).
		Header("Location", wantLocation).
		End()
}

func bodyContains(want string) func(*http.Response, *http.Request) error {
	return func(res *http.Response, _ *http.Request) error {
		b, err := io.ReadAll(res.Body)
		if err != nil {
			return err
		}
		if !strings.Contains(string(b), want) {
			return &mismatch{want: want, got: string(b)}
		}
		return nil
	}
}

type mismatch struct{ want, got string }

func (m *mismatch) Error() string { return "body does not contain " + m.want + ":\n" + m.got }

func TestLandingPage(t *testing.T) {
	h, _ := newTestServer(t)

	apitest.New().
		Handler(h).
		Get("/").
		Expect(t).
		Status(http.StatusOK).
		Header("X-Content-Type-Options", "nosniff").
		Assert(bodyContains("<title>Remix J🤪kes</title>")).
		Assert(bodyContains(`href="/jokes.rss"`)).
		End()
}

func TestJokes_EmptyTable(t *testing.T) {
	h, _ := newTestServer(t)

	apitest.New().
		Handler(h).
		Get("/jokes").
		Header("Accept", "application/json").
		Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal("$.error.message", "There are no jokes to display.")).
		End()
}

func TestJokes_CreateSameNameTwice(t *testing.T) {
	h, _ := newTestServer(t)
	session := register(t, h, "kody")

	createJoke(t, h, session, "Frisbee", "/jokes/frisbee")
	createJoke(t, h, session, "Frisbee", "/jokes/frisbee-2")
	createJoke(t, h, session, "Something new", "/jokes/something-new-slug")

	apitest.New().
		Handler(h).
		Get("/jokes/frisbee-2").
		Cookie(cookieName, session).
		Header("Accept", "application/json").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.joke.slug", "frisbee-2")).
		Assert(jsonpath.Equal("$.isOwner", true)).
		Assert(jsonpath.Equal("$.user.username", "kody")).
		Assert(jsonpath.Len("$.jokes", 3)).
		End()

	apitest.New().
		Handler(h).
		Get("/jokes").
		Header("Accept", "application/json").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Present("$.randomJoke.slug")).
		Assert(jsonpath.NotPresent("$.user")).
		End()
}

func TestJokes_CreateValidation(t *testing.T) {
	h, _ := newTestServer(t)
	session := register(t, h, "kody")

	apitest.New().
		Handler(h).
		Post("/jokes/new").
		Cookie(cookieName, session).
		Header("Accept", "application/json").
		FormData("jokeName", "ab").
		FormData("jokeContent", "short").
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.fieldErrors.name", "The joke's name should be 3 characters or more")).
		Assert(jsonpath.Equal("$.fieldErrors.content", "Joke should be 10 characters or more")).
		Assert(jsonpath.Equal("$.fields.name", "ab")).
		Assert(jsonpath.Equal("$.fields.content", "short")).
		End()

	apitest.New().
		Handler(h).
		Post("/jokes/new").
		Cookie(cookieName, session).
		Header("Accept", "application/json").
		FormData("jokeName", "Only a name").
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.formError", "Form not submitted correctly.")).
		End()
}

func TestJokes_AnonymousCreate(t *testing.T) {
	h, _ := newTestServer(t)

	apitest.New().
		Handler(h).
		Get("/jokes/new").
		Header("Accept", "application/json").
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.error.login", "/login?redirectTo=%2Fjokes%2Fnew")).
		End()

	apitest.New().
		Handler(h).
		Post("/jokes/new").
		FormData("jokeName", "Frisbee").
		FormData("jokeContent", "I was wondering why the frisbee was getting bigger").
		Expect(t).
		Status(http.StatusSeeOther).
		Header("Location", "/login?redirectTo=%2Fjokes%2Fnew").
		End()
}

func TestJokes_DeleteOwnership(t *testing.T) {
	h, _ := newTestServer(t)
	owner := register(t, h, "kody")
	other := register(t, h, "rofi")
	createJoke(t, h, owner, "Frisbee", "/jokes/frisbee")

	apitest.New().
		Handler(h).
		Get("/jokes/frisbee").
		Cookie(cookieName, other).
		Header("Accept", "application/json").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.isOwner", false)).
		End()

	apitest.New().
		Handler(h).
		Post("/jokes/frisbee").
		Cookie(cookieName, other).
		Header("Accept", "application/json").
		FormData("_method", "delete").
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.error.code", "FORBIDDEN")).
		Assert(jsonpath.Equal("$.error.message", "Sorry, but frisbee is not your joke.")).
		End()

	apitest.New().
		Handler(h).
		Get("/jokes/frisbee").
		Expect(t).
		Status(http.StatusOK).
		End()

	apitest.New().
		Handler(h).
		Post("/jokes/frisbee").
		FormData("_method", "delete").
		Expect(t).
		Status(http.StatusSeeOther).
		Header("Location", "/login?redirectTo=%2Fjokes%2Ffrisbee").
		End()

	apitest.New().
		Handler(h).
		Post("/jokes/frisbee").
		Cookie(cookieName, owner).
		FormData("_method", "delete").
		Expect(t).
		Status(http.StatusSeeOther).
		Header("Location", "/jokes").
		End()

	apitest.New().
		Handler(h).
		Get("/jokes/frisbee").
		Header("Accept", "application/json").
		Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal("$.error.message", `Huh? What the heck is "frisbee"?`)).
		End()
}

func TestJokes_UnknownAction(t *testing.T) {
	h, _ := newTestServer(t)
	owner := register(t, h, "kody")
	createJoke(t, h, owner, "Frisbee", "/jokes/frisbee")

	apitest.New().
		Handler(h).
		Post("/jokes/frisbee").
		Cookie(cookieName, owner).
		FormData("_method", "patch").
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestLogin(t *testing.T) {
	h, _ := newTestServer(t)
	register(t, h, "kody")

	res := apitest.New().
		Handler(h).
		Post("/login").
		FormData("loginType", "login").
		FormData("username", "kody").
		FormData("password", testPassword).
		FormData("redirectTo", "/jokes/new").
		Expect(t).
		Status(http.StatusSeeOther).
		Header("Location", "/jokes/new").
		CookiePresent(cookieName).
		End()
	require.NotEmpty(t, sessionFrom(t, res.Response))

	for _, username := range []string{"kody", "nobody"} {
		apitest.New().
			Handler(h).
			Post("/login").
			Header("Accept", "application/json").
			FormData("loginType", "login").
			FormData("username", username).
			FormData("password", "wrong-password").
			Expect(t).
			Status(http.StatusBadRequest).
			Assert(jsonpath.Equal("$.formError", "Username or password combination is incorrect")).
			Assert(jsonpath.Equal("$.fields.username", username)).
			CookieNotPresent(cookieName).
			End()
	}
}

func TestLogin_FormErrors(t *testing.T) {
	h, _ := newTestServer(t)
	register(t, h, "kody")

	apitest.New().
		Handler(h).
		Post("/login").
		Header("Accept", "application/json").
		FormData("loginType", "register").
		FormData("username", "kody").
		FormData("password", testPassword).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.formError", "User with username kody already exists")).
		End()

	apitest.New().
		Handler(h).
		Post("/login").
		Header("Accept", "application/json").
		FormData("loginType", "register").
		FormData("username", "k!").
		FormData("password", "123").
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.fieldErrors.username", "Username must be at least 3 characters long")).
		Assert(jsonpath.Equal("$.fieldErrors.password", "Passwords must be at least 6 characters long")).
		End()

	apitest.New().
		Handler(h).
		Post("/login").
		Header("Accept", "application/json").
		FormData("loginType", "sudo").
		FormData("username", "kody").
		FormData("password", testPassword).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.formError", "Login type invalid")).
		End()

	apitest.New().
		Handler(h).
		Post("/login").
		Header("Accept", "application/json").
		FormData("username", "kody").
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.formError", "Form not submitted correctly.")).
		End()

	apitest.New().
		Handler(h).
		Post("/login").
		FormData("loginType", "login").
		FormData("username", "kody").
		FormData("password", testPassword).
		FormData("redirectTo", "https://evil.example").
		Expect(t).
		Status(http.StatusSeeOther).
		Header("Location", "/jokes").
		End()
}

func TestLoginPage(t *testing.T) {
	h, _ := newTestServer(t)

	apitest.New().
		Handler(h).
		Get("/login").
		Query("redirectTo", "/jokes/new").
		Expect(t).
		Status(http.StatusOK).
		Assert(bodyContains(`<title>Login | Remix J🤪kes</title>`)).
		Assert(bodyContains(`name="redirectTo" value="/jokes/new"`)).
		End()
}

func TestLogout(t *testing.T) {
	h, _ := newTestServer(t)
	session := register(t, h, "kody")

	res := apitest.New().
		Handler(h).
		Post("/logout").
		Cookie(cookieName, session).
		Expect(t).
		Status(http.StatusSeeOther).
		Header("Location", "/login").
		End()
	cleared := sessionFrom(t, res.Response)
	require.Empty(t, cleared)

	apitest.New().
		Handler(h).
		Get("/jokes/new").
		Cookie(cookieName, cleared).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	apitest.New().
		Handler(h).
		Post("/logout").
		FormData("redirectTo", "/jokes").
		Expect(t).
		Status(http.StatusSeeOther).
		Header("Location", "/jokes").
		End()

	apitest.New().
		Handler(h).
		Get("/logout").
		Expect(t).
		Status(http.StatusPermanentRedirect).
		Header("Location", "/").
		End()
}

func TestStaleSessionIsCleared(t *testing.T) {
	h, store := newTestServer(t)
	owner := register(t, h, "kody")
	createJoke(t, h, owner, "Frisbee", "/jokes/frisbee")

	codec, err := security.NewJWTSessionCodec(testSecret, time.Hour)
	require.NoError(t, err)
	ghost, err := codec.Encode(domain.Session{UserID: uuid.New()})
	require.NoError(t, err)

	res := apitest.New().
		Handler(h).
		Get("/jokes").
		Cookie(cookieName, ghost).
		Header("Accept", "application/json").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.NotPresent("$.user")).
		End()
	require.Empty(t, sessionFrom(t, res.Response))

	apitest.New().
		Handler(h).
		Post("/jokes/new").
		Cookie(cookieName, ghost).
		FormData("jokeName", "Ghost").
		FormData("jokeContent", "Boo! Did I scare you? No? Fine.").
		Expect(t).
		Status(http.StatusSeeOther).
		Header("Location", "/login?redirectTo=%2Fjokes%2Fnew").
		End()

	n, err := store.Jokes().Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestRSS(t *testing.T) {
	h, _ := newTestServer(t)
	session := register(t, h, "kody")
	createJoke(t, h, session, "Frisbee", "/jokes/frisbee")

	apitest.New().
		Handler(h).
		Get("/jokes.rss").
		Header("X-Forwarded-Host", "localhost:3000").
		Expect(t).
		Status(http.StatusOK).
		Header("Content-Type", "application/xml").
		Header("Cache-Control", "public, max-age=600, s-maxage=86400").
		Assert(bodyContains("<link>http://localhost:3000/jokes/frisbee</link>")).
		Assert(bodyContains("A funny joke called Frisbee")).
		Assert(bodyContains("<ttl>40</ttl>")).
		Assert(bodyContains("kody")).
		End()

	apitest.New().
		Handler(h).
		Get("/jokes.rss").
		Header("X-Forwarded-Host", "remix-jokes.lol").
		Expect(t).
		Status(http.StatusOK).
		Assert(bodyContains("https://remix-jokes.lol/jokes")).
		End()
}

func TestManifest(t *testing.T) {
	h, _ := newTestServer(t)

	apitest.New().
		Handler(h).
		Get("/manifest.json").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.name", "Remix Jokes")).
		Assert(jsonpath.Equal("$.start_url", "/")).
		Assert(jsonpath.Len("$.icons", 4)).
		Assert(jsonpath.Equal("$.icons[1].purpose", "maskable")).
		Assert(jsonpath.Equal("$.icons[2].sizes", "512x512")).
		End()
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)

	apitest.New().
		Handler(h).
		Get("/health").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.status", "ok")).
		End()

	apitest.New().
		Handler(h).
		Get("/health/detailed").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.components.jokes.status", "healthy")).
		End()
}

func TestNoRoute(t *testing.T) {
	h, _ := newTestServer(t)

	apitest.New().
		Handler(h).
		Get("/nope").
		Header("Accept", "application/json").
		Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal("$.error.code", "NOT_FOUND")).
		End()
}

func TestJokes_AnonymousCreateKeepsQuery(t *testing.T) {
	h, _ := newTestServer(t)

	apitest.New().
		Handler(h).
		Get("/jokes/new").
		Query("x", "1").
		Header("Accept", "application/json").
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.error.login", "/login?redirectTo=%2Fjokes%2Fnew%3Fx%3D1")).
		End()
}

// Sessions are stateless signed cookies: logout clears the browser's copy
// but a replayed copy stays valid until it expires.
func TestLogout_ReplayedCookieStillValid(t *testing.T) {
	h, _ := newTestServer(t)
	session := register(t, h, "kody")

	apitest.New().
		Handler(h).
		Post("/logout").
		Cookie(cookieName, session).
		Expect(t).
		Status(http.StatusSeeOther).
		End()

	apitest.New().
		Handler(h).
		Get("/jokes/new").
		Cookie(cookieName, session).
		Header("Accept", "application/json").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.user.username", "kody")).
		End()
}

type brokenJokes struct {
	ports.JokeRepository
}

func (brokenJokes) ListRecent(context.Context, int) ([]domain.JokeSummary, error) {
	return nil, errors.New("connection refused")
}

func TestJokes_StorageFailureIsLogged(t *testing.T) {
	store := memory.New()
	var buf bytes.Buffer
	log := logger.NewWithWriter(config.LogConfig{Level: "info", Format: "json"}, &buf)
	srv, err := New(testConfig(), log, Deps{Users: store.Users(), Jokes: brokenJokes{store.Jokes()}})
	require.NoError(t, err)

	apitest.New().
		Handler(srv.Router()).
		Get("/jokes").
		Header("Accept", "application/json").
		Expect(t).
		Status(http.StatusInternalServerError).
		Assert(jsonpath.Equal("$.error.message", "Something unexpected went wrong. Sorry about that.")).
		End()

	require.Contains(t, buf.String(), `"msg":"list recent jokes"`)
	require.Contains(t, buf.String(), "connection refused")
}

func TestServer_RunAndShutdown(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Port = 0
	store := memory.New()
	srv, err := New(cfg, logger.Discard(), Deps{Users: store.Users(), Jokes: store.Jokes()})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background()) }()

	require.NoError(t, srv.WaitForReady(5*time.Second))

	resp, err := http.Get("http://" + srv.Addr() + "/manifest.json")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Shutdown())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}
