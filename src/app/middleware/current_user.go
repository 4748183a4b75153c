package middleware

import (
	"github.com/gin-gonic/gin"

	"jokesite/src/app/http/response"
	"jokesite/src/app/http/session"
	"jokesite/src/app/http/views"
	"jokesite/src/core/domain"
	"jokesite/src/infra/config"
)

// UserKey is the context key for the signed-in user.
const UserKey = "user"

// CurrentUser resolves the session cookie once per request and stores the
// user (or nil) under UserKey. Stale sessions are cleared by the manager.
func CurrentUser(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := sessions.CurrentUser(c)
		if err != nil {
			response.FromDomainError(c, err, GetRequestID(c))
			c.Abort()
			return
		}
		c.Set(UserKey, u)
		c.Next()
	}
}

// GetUser returns the user stored by CurrentUser, or nil.
func GetUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(UserKey); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// SiteMeta stores the site's default page metadata for the request path.
func SiteMeta(site config.SiteConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		views.SetMeta(c, views.BuildMeta(site, views.MetaOptions{Path: c.Request.URL.Path}))
		c.Next()
	}
}
