// Package response defines consistent HTTP response structures.
//
// Pages are negotiated: HTML through the named template by default, JSON
// when the Accept header prefers it. Both carry the same value.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jokesite/src/app/http/views"
	"jokesite/src/core/domain"
)

const errorTemplate = "error.html"

var offered = []string{gin.MIMEHTML, gin.MIMEJSON}

// ErrorPage is rendered for every error response.
type ErrorPage struct {
	Meta  views.Meta  `json:"-"`
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g., "NOT_FOUND", "FORBIDDEN")
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Login links to the login page when signing in would help
	Login string `json:"login,omitempty"`

	// RequestID is the request ID for debugging
	RequestID string `json:"request_id,omitempty"`
}

// Page renders tmpl with data, or data as JSON.
func Page(c *gin.Context, status int, tmpl string, data any) {
	c.Negotiate(status, gin.Negotiate{
		Offered:  offered,
		HTMLName: tmpl,
		HTMLData: data,
		JSONData: data,
	})
}

// OK renders a 200 page.
func OK(c *gin.Context, tmpl string, data any) {
	Page(c, http.StatusOK, tmpl, data)
}

// BadRequest re-renders a form page with its errors and submitted fields.
func BadRequest(c *gin.Context, tmpl string, data any) {
	Page(c, http.StatusBadRequest, tmpl, data)
}

// SeeOther redirects after a successful form post.
func SeeOther(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

func renderError(c *gin.Context, status int, detail ErrorDetail) {
	Page(c, status, errorTemplate, ErrorPage{Meta: views.MetaFrom(c), Error: detail})
}

// NotFound sends a 404 page.
func NotFound(c *gin.Context, message, requestID string) {
	renderError(c, http.StatusNotFound, ErrorDetail{
		Code:      "NOT_FOUND",
		Message:   message,
		RequestID: requestID,
	})
}

// Conflict sends a 409 page.
func Conflict(c *gin.Context, message, requestID string) {
	renderError(c, http.StatusConflict, ErrorDetail{
		Code:      "CONFLICT",
		Message:   message,
		RequestID: requestID,
	})
}

// Forbidden sends an ownership violation. The status is 401, not 403, to
// match what clients of this site have always received.
func Forbidden(c *gin.Context, message, requestID string) {
	renderError(c, http.StatusUnauthorized, ErrorDetail{
		Code:      "FORBIDDEN",
		Message:   message,
		RequestID: requestID,
	})
}

// Unauthorized sends a 401 page with a link to log in and come back.
func Unauthorized(c *gin.Context, message, loginURL, requestID string) {
	renderError(c, http.StatusUnauthorized, ErrorDetail{
		Code:      "UNAUTHORIZED",
		Message:   message,
		Login:     loginURL,
		RequestID: requestID,
	})
}

// Invalid sends a 400 page for requests that have no form to re-render.
func Invalid(c *gin.Context, message, requestID string) {
	renderError(c, http.StatusBadRequest, ErrorDetail{
		Code:      "BAD_REQUEST",
		Message:   message,
		RequestID: requestID,
	})
}

// InternalError sends a 500 page.
func InternalError(c *gin.Context, requestID string) {
	renderError(c, http.StatusInternalServerError, ErrorDetail{
		Code:      "INTERNAL_ERROR",
		Message:   "Something unexpected went wrong. Sorry about that.",
		RequestID: requestID,
	})
}

// FromDomainError converts a domain error to an appropriate HTTP response.
// This centralizes error handling and ensures consistent error responses.
func FromDomainError(c *gin.Context, err error, requestID string) {
	switch {
	case domain.IsNotFound(err):
		NotFound(c, domain.Message(err)+" not found", requestID)
	case domain.IsValidationError(err):
		Invalid(c, domain.Message(err), requestID)
	case domain.IsConflict(err):
		Conflict(c, domain.Message(err), requestID)
	case domain.IsForbidden(err):
		Forbidden(c, domain.Message(err), requestID)
	case domain.IsUnauthorized(err):
		Unauthorized(c, domain.Message(err), "", requestID)
	default:
		_ = c.Error(err)
		InternalError(c, requestID)
	}
}
