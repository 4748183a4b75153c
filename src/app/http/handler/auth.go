package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"jokesite/src/app/http/dto"
	"jokesite/src/app/http/response"
	"jokesite/src/app/http/session"
	"jokesite/src/app/http/views"
	"jokesite/src/app/middleware"
	"jokesite/src/core/domain"
	"jokesite/src/core/usecase"
	"jokesite/src/infra/config"
)

const (
	loginTypeLogin    = "login"
	loginTypeRegister = "register"
)

// AuthHandler serves login, registration and logout.
type AuthHandler struct {
	auth     *usecase.AuthService
	sessions *session.Manager
	site     config.SiteConfig
	log      *slog.Logger
}

func NewAuthHandler(auth *usecase.AuthService, sessions *session.Manager, site config.SiteConfig, log *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, site: site, log: log}
}

// LoginPage renders the login/register form.
// GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	response.OK(c, "login.html", dto.LoginPage{
		Meta:       h.meta(c, loginTypeLogin),
		RedirectTo: c.Query("redirectTo"),
		Fields:     dto.LoginFields{LoginType: loginTypeLogin},
	})
}

// Login logs in or registers depending on loginType, then starts a session.
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	form, complete := dto.BindLoginForm(c)
	redirectTo := form.RedirectTo
	if redirectTo == "" {
		redirectTo = session.DefaultLoginRedirect
	}

	page := dto.LoginPage{
		Meta:       h.meta(c, form.LoginType),
		RedirectTo: redirectTo,
	}
	if !complete {
		page.FormError = msgFormNotSubmitted
		response.BadRequest(c, "login.html", page)
		return
	}

	page.Fields = dto.LoginFields{
		LoginType: form.LoginType,
		Username:  form.Username,
		Password:  form.Password,
	}
	if fieldErrs := domain.ValidateCredentials(form.Username, form.Password); fieldErrs.Any() {
		page.FieldErrors = fieldErrs
		response.BadRequest(c, "login.html", page)
		return
	}

	ctx := c.Request.Context()
	var (
		user *domain.User
		err  error
	)
	switch form.LoginType {
	case loginTypeLogin:
		user, err = h.auth.Login(ctx, form.Username, form.Password)
	case loginTypeRegister:
		user, err = h.auth.Register(ctx, form.Username, form.Password)
	default:
		page.FormError = "Login type invalid"
		response.BadRequest(c, "login.html", page)
		return
	}

	if err != nil {
		if fieldErrs, ok := domain.AsFieldErrors(err); ok {
			page.FieldErrors = fieldErrs
			response.BadRequest(c, "login.html", page)
			return
		}
		if usecase.IsInvalidCredentials(err) || domain.IsConflict(err) {
			page.FormError = domain.Message(err)
			response.BadRequest(c, "login.html", page)
			return
		}
		fail(c, h.log, "authenticate", err)
		return
	}

	if err := h.sessions.CreateSession(c, user.ID, redirectTo); err != nil {
		fail(c, h.log, "create session", err)
	}
}

// Logout clears the session and redirects to redirectTo (default /login).
// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var form dto.LogoutForm
	if err := c.ShouldBind(&form); err != nil {
		response.Invalid(c, msgFormNotSubmitted, middleware.GetRequestID(c))
		return
	}
	h.sessions.Logout(c, form.RedirectTo)
}

// LogoutRedirect sends stray GETs home.
// GET /logout
func (h *AuthHandler) LogoutRedirect(c *gin.Context) {
	c.Redirect(http.StatusPermanentRedirect, "/")
}

func (h *AuthHandler) meta(c *gin.Context, loginType string) views.Meta {
	title := "Login"
	if loginType == loginTypeRegister {
		title = "Register"
	}
	return views.BuildMeta(h.site, views.MetaOptions{Title: title, Path: c.Request.URL.Path})
}
