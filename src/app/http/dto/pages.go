package dto

import (
	"time"

	"jokesite/src/app/http/views"
	"jokesite/src/core/domain"
)

// UserResponse is the signed-in user as shown in the header.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (UserResponse) FromDomain(u *domain.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{ID: u.ID.String(), Username: u.Username}
}

// JokeLink is one entry of the jokes sidebar.
type JokeLink struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

func JokeLinks(jokes []domain.JokeSummary) []JokeLink {
	out := make([]JokeLink, 0, len(jokes))
	for _, j := range jokes {
		out = append(out, JokeLink{Slug: j.Slug, Name: j.Name})
	}
	return out
}

// JokeResponse is a full joke.
type JokeResponse struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	JokesterID string    `json:"jokesterId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (JokeResponse) FromDomain(j *domain.Joke) JokeResponse {
	return JokeResponse{
		ID:         j.ID.String(),
		Slug:       j.Slug,
		Name:       j.Name,
		Content:    j.Content,
		JokesterID: j.JokesterID.String(),
		CreatedAt:  j.CreatedAt,
	}
}

// JokesLayout is shared by every page under /jokes.
type JokesLayout struct {
	User       *UserResponse `json:"user"`
	Jokes      []JokeLink    `json:"jokes"`
	RedirectTo string        `json:"-"`
	LoginURL   string        `json:"-"`
}

// IndexPage is the landing page.
type IndexPage struct {
	Meta views.Meta `json:"-"`
}

// JokesIndexPage is /jokes with a random joke.
type JokesIndexPage struct {
	Meta views.Meta `json:"-"`
	JokesLayout
	RandomJoke JokeResponse `json:"randomJoke"`
}

// JokePage is /jokes/:slug.
type JokePage struct {
	Meta views.Meta `json:"-"`
	JokesLayout
	Joke    JokeResponse `json:"joke"`
	IsOwner bool         `json:"isOwner"`
}

// JokeFields echoes a submitted joke form.
type JokeFields struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// NewJokePage is /jokes/new, empty or with validation errors.
type NewJokePage struct {
	Meta views.Meta `json:"-"`
	JokesLayout
	FormError   string             `json:"formError,omitempty"`
	FieldErrors domain.FieldErrors `json:"fieldErrors,omitempty"`
	Fields      JokeFields         `json:"fields"`
}

// LoginFields echoes a submitted login form.
type LoginFields struct {
	LoginType string `json:"loginType"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// LoginPage is /login, empty or with errors.
type LoginPage struct {
	Meta        views.Meta         `json:"-"`
	RedirectTo  string             `json:"redirectTo"`
	FormError   string             `json:"formError,omitempty"`
	FieldErrors domain.FieldErrors `json:"fieldErrors,omitempty"`
	Fields      LoginFields        `json:"fields"`
}
