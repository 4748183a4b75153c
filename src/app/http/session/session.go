// Package session binds the auth service to HTTP requests.
//
// The session lives entirely in a signed cookie. Nothing is stored on the
// server, so logout works by overwriting the client's cookie.
package session

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jokesite/src/core/domain"
	"jokesite/src/core/usecase"
	"jokesite/src/infra/config"
)

const (
	// DefaultLoginRedirect is where a successful login goes without redirectTo.
	DefaultLoginRedirect = "/jokes"
	// DefaultLogoutRedirect is where logout goes without redirectTo.
	DefaultLogoutRedirect = "/login"

	loginPath = "/login"
)

// AuthResult is the outcome of RequireUserID. Exactly one of UserID and
// RedirectTo is set.
type AuthResult struct {
	UserID     uuid.UUID
	RedirectTo string
}

// Authenticated reports whether the request carried a valid session.
func (r AuthResult) Authenticated() bool {
	return r.UserID != uuid.Nil
}

// Manager reads and writes the session cookie.
type Manager struct {
	auth       *usecase.AuthService
	cookieName string
	maxAge     time.Duration
	secure     bool
	log        *slog.Logger
}

// NewManager creates a new Manager.
func NewManager(auth *usecase.AuthService, cfg config.SessionConfig, log *slog.Logger) *Manager {
	return &Manager{
		auth:       auth,
		cookieName: cfg.CookieName,
		maxAge:     cfg.MaxAge,
		secure:     cfg.IsProduction(),
		log:        log,
	}
}

// CreateSession issues a fresh cookie for userID and redirects to redirectTo.
func (m *Manager) CreateSession(c *gin.Context, userID uuid.UUID, redirectTo string) error {
	value, err := m.auth.IssueSession(userID)
	if err != nil {
		return err
	}
	m.setCookie(c, value, int(m.maxAge.Seconds()))
	c.Redirect(http.StatusSeeOther, SafeRedirect(redirectTo, DefaultLoginRedirect))
	return nil
}

// CurrentUserID returns the session's user id. Missing or invalid cookies
// read as anonymous.
func (m *Manager) CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, err := c.Cookie(m.cookieName)
	if err != nil || value == "" {
		return uuid.Nil, false
	}
	return m.auth.ResolveSession(value)
}

// CurrentUser resolves the session to a user. When the session points at a
// user that no longer exists the cookie is cleared and nil is returned.
func (m *Manager) CurrentUser(c *gin.Context) (*domain.User, error) {
	id, ok := m.CurrentUserID(c)
	if !ok {
		return nil, nil
	}

	u, err := m.auth.UserByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		m.log.Info("stale session purged", "user_id", id)
		m.clearCookie(c)
		return nil, nil
	}
	return u, nil
}

// RequireUserID returns the session user, or a redirect to the login page.
// The login page is told to come back to fallback, or to the current
// path and query when fallback is empty.
func (m *Manager) RequireUserID(c *gin.Context, fallback string) AuthResult {
	if id, ok := m.CurrentUserID(c); ok {
		return AuthResult{UserID: id}
	}

	target := fallback
	if target == "" {
		target = c.Request.URL.RequestURI()
	}
	return AuthResult{RedirectTo: LoginURL(target)}
}

// Logout clears the cookie and redirects to redirectTo.
func (m *Manager) Logout(c *gin.Context, redirectTo string) {
	m.clearCookie(c)
	c.Redirect(http.StatusSeeOther, SafeRedirect(redirectTo, DefaultLogoutRedirect))
}

func (m *Manager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, value, maxAge, "/", "", m.secure, true)
}

func (m *Manager) clearCookie(c *gin.Context) {
	m.setCookie(c, "", -1)
}

// LoginURL builds /login?redirectTo=<target>.
func LoginURL(target string) string {
	return loginPath + "?" + url.Values{"redirectTo": {target}}.Encode()
}

// SafeRedirect returns target when it is a local path, otherwise fallback.
// Absolute URLs and protocol-relative "//host" targets are rejected.
func SafeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}
