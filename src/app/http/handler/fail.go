package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"jokesite/src/app/http/response"
	"jokesite/src/app/middleware"
)

// fail logs err and renders the error page FromDomainError picks for it.
func fail(c *gin.Context, log *slog.Logger, msg string, err error) {
	requestID := middleware.GetRequestID(c)
	log.Error(msg,
		"request_id", requestID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err,
	)
	response.FromDomainError(c, err, requestID)
}
