package dto

import "github.com/gin-gonic/gin"

// JokeForm is posted to /jokes/new.
type JokeForm struct {
	Name    string `form:"jokeName"`
	Content string `form:"jokeContent"`
}

// BindJokeForm reads a JokeForm. ok is false when a field is missing.
func BindJokeForm(c *gin.Context) (f JokeForm, ok bool) {
	if err := c.ShouldBind(&f); err != nil {
		return f, false
	}
	return f, posted(c, "jokeName", "jokeContent")
}

// LoginForm is posted to /login for both login and registration.
type LoginForm struct {
	LoginType  string `form:"loginType"`
	Username   string `form:"username"`
	Password   string `form:"password"`
	RedirectTo string `form:"redirectTo"`
}

// BindLoginForm reads a LoginForm. redirectTo is optional.
func BindLoginForm(c *gin.Context) (f LoginForm, ok bool) {
	if err := c.ShouldBind(&f); err != nil {
		return f, false
	}
	return f, posted(c, "loginType", "username", "password")
}

// JokeActionForm is posted to /jokes/:slug.
type JokeActionForm struct {
	Method string `form:"_method"`
}

// LogoutForm is posted to /logout.
type LogoutForm struct {
	RedirectTo string `form:"redirectTo"`
}

// posted reports whether every key was submitted, empty values included.
// A missing key means the form did not come from our page.
func posted(c *gin.Context, keys ...string) bool {
	for _, k := range keys {
		if _, ok := c.GetPostForm(k); !ok {
			return false
		}
	}
	return true
}
