package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jokesite/src/app/http/dto"
	"jokesite/src/app/http/response"
	"jokesite/src/app/http/session"
	"jokesite/src/app/http/views"
	"jokesite/src/app/middleware"
	"jokesite/src/core/domain"
	"jokesite/src/core/usecase"
	"jokesite/src/infra/config"
)

const msgFormNotSubmitted = "Form not submitted correctly."

// JokeHandler serves everything under /jokes.
type JokeHandler struct {
	jokes    *usecase.JokeService
	sessions *session.Manager
	site     config.SiteConfig
	log      *slog.Logger
}

func NewJokeHandler(jokes *usecase.JokeService, sessions *session.Manager, site config.SiteConfig, log *slog.Logger) *JokeHandler {
	return &JokeHandler{jokes: jokes, sessions: sessions, site: site, log: log}
}

// Index shows a random joke next to the recent jokes list.
// GET /jokes
func (h *JokeHandler) Index(c *gin.Context) {
	layout, ok := h.layout(c)
	if !ok {
		return
	}

	j, err := h.jokes.Random(c.Request.Context())
	if err != nil {
		if domain.IsNotFound(err) {
			response.NotFound(c, "There are no jokes to display.", middleware.GetRequestID(c))
			return
		}
		fail(c, h.log, "pick random joke", err)
		return
	}

	response.OK(c, "jokes.html", dto.JokesIndexPage{
		Meta:        h.meta(c, "Jokes collection", ""),
		JokesLayout: layout,
		RandomJoke:  dto.JokeResponse{}.FromDomain(j),
	})
}

// Detail shows one joke. The delete button is only offered to its owner.
// GET /jokes/:slug
func (h *JokeHandler) Detail(c *gin.Context) {
	slug := c.Param("slug")
	layout, ok := h.layout(c)
	if !ok {
		return
	}

	j, err := h.jokes.Get(c.Request.Context(), slug)
	if err != nil {
		if domain.IsNotFound(err) {
			response.NotFound(c, fmt.Sprintf("Huh? What the heck is %q?", slug), middleware.GetRequestID(c))
			return
		}
		fail(c, h.log, "load joke", err)
		return
	}

	isOwner := false
	if u := middleware.GetUser(c); u != nil {
		isOwner = j.OwnedBy(u.ID)
	}

	response.OK(c, "joke.html", dto.JokePage{
		Meta:        h.meta(c, j.Name, ""),
		JokesLayout: layout,
		Joke:        dto.JokeResponse{}.FromDomain(j),
		IsOwner:     isOwner,
	})
}

// Action handles form posts to a joke. Only "_method=delete" is supported.
// POST /jokes/:slug
func (h *JokeHandler) Action(c *gin.Context) {
	slug := c.Param("slug")
	requestID := middleware.GetRequestID(c)

	var form dto.JokeActionForm
	if err := c.ShouldBind(&form); err != nil || form.Method != "delete" {
		response.Invalid(c, msgFormNotSubmitted, requestID)
		return
	}

	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	err := h.jokes.Delete(c.Request.Context(), slug, userID)
	switch {
	case err == nil:
		response.SeeOther(c, "/jokes")
	case domain.IsNotFound(err):
		response.NotFound(c, fmt.Sprintf("Huh? What the heck is %q?", slug), requestID)
	case domain.IsForbidden(err):
		response.Forbidden(c, fmt.Sprintf("Sorry, but %s is not your joke.", slug), requestID)
	default:
		fail(c, h.log, "delete joke", err)
	}
}

// New renders the empty joke form.
// GET /jokes/new
func (h *JokeHandler) New(c *gin.Context) {
	if middleware.GetUser(c) == nil {
		response.Unauthorized(c, "You must be logged in to create a joke.",
			session.LoginURL(c.Request.URL.RequestURI()), middleware.GetRequestID(c))
		return
	}

	layout, ok := h.layout(c)
	if !ok {
		return
	}
	response.OK(c, "new.html", h.newPage(c, layout))
}

// Create stores a joke and redirects to it.
// POST /jokes/new
func (h *JokeHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	form, complete := dto.BindJokeForm(c)
	if !complete {
		h.rejectJoke(c, msgFormNotSubmitted, nil, form)
		return
	}

	j, err := h.jokes.Create(c.Request.Context(), userID, form.Name, form.Content)
	if err != nil {
		if fieldErrs, ok := domain.AsFieldErrors(err); ok {
			h.rejectJoke(c, "", fieldErrs, form)
			return
		}
		fail(c, h.log, "create joke", err)
		return
	}

	response.SeeOther(c, "/jokes/"+j.Slug)
}

func (h *JokeHandler) rejectJoke(c *gin.Context, formError string, fieldErrs domain.FieldErrors, form dto.JokeForm) {
	layout, ok := h.layout(c)
	if !ok {
		return
	}
	page := h.newPage(c, layout)
	page.FormError = formError
	page.FieldErrors = fieldErrs
	page.Fields = dto.JokeFields{Name: form.Name, Content: form.Content}
	response.BadRequest(c, "new.html", page)
}

func (h *JokeHandler) newPage(c *gin.Context, layout dto.JokesLayout) dto.NewJokePage {
	return dto.NewJokePage{
		Meta:        h.meta(c, "Add new joke", "Add your own hilarious joke here 🚀"),
		JokesLayout: layout,
	}
}

// requireUser returns the session user or redirects to the login page.
// A session whose user no longer exists counts as anonymous.
func (h *JokeHandler) requireUser(c *gin.Context) (uuid.UUID, bool) {
	res := h.sessions.RequireUserID(c, "")
	if res.Authenticated() && middleware.GetUser(c) != nil {
		return res.UserID, true
	}

	target := res.RedirectTo
	if target == "" {
		target = session.LoginURL(c.Request.URL.RequestURI())
	}
	c.Redirect(http.StatusSeeOther, target)
	return uuid.Nil, false
}

func (h *JokeHandler) layout(c *gin.Context) (dto.JokesLayout, bool) {
	recent, err := h.jokes.ListRecent(c.Request.Context())
	if err != nil {
		fail(c, h.log, "list recent jokes", err)
		return dto.JokesLayout{}, false
	}

	here := c.Request.URL.RequestURI()
	return dto.JokesLayout{
		User:       dto.UserResponse{}.FromDomain(middleware.GetUser(c)),
		Jokes:      dto.JokeLinks(recent),
		RedirectTo: here,
		LoginURL:   session.LoginURL(here),
	}, true
}

func (h *JokeHandler) meta(c *gin.Context, title, description string) views.Meta {
	return views.BuildMeta(h.site, views.MetaOptions{
		Title:       title,
		Description: description,
		Path:        c.Request.URL.Path,
	})
}
