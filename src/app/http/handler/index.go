package handler

import (
	"github.com/gin-gonic/gin"

	"jokesite/src/app/http/dto"
	"jokesite/src/app/http/response"
	"jokesite/src/app/http/views"
)

// Index renders the landing page.
// GET /
func Index(c *gin.Context) {
	response.OK(c, "index.html", dto.IndexPage{Meta: views.MetaFrom(c)})
}
