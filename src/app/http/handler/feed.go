package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"

	"jokesite/src/app/http/response"
	"jokesite/src/app/middleware"
	"jokesite/src/core/domain"
	"jokesite/src/core/usecase"
	"jokesite/src/infra/config"
)

const (
	feedCacheControl = "public, max-age=600, s-maxage=86400"
	feedTTLMinutes   = 40
	feedGenerator    = "jokesite"
)

var errNoHost = errors.New("could not determine domain URL")

// FeedHandler serves the RSS feed.
type FeedHandler struct {
	jokes *usecase.JokeService
	site  config.SiteConfig
}

func NewFeedHandler(jokes *usecase.JokeService, site config.SiteConfig) *FeedHandler {
	return &FeedHandler{jokes: jokes, site: site}
}

// RSS lists the newest jokes. Links point at the host the request came in
// on: http for localhost, https otherwise.
// GET /jokes.rss
func (h *FeedHandler) RSS(c *gin.Context) {
	requestID := middleware.GetRequestID(c)

	domainURL, err := requestDomain(c)
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c, requestID)
		return
	}

	entries, err := h.jokes.Feed(c.Request.Context())
	if err != nil {
		response.FromDomainError(c, err, requestID)
		return
	}

	body, err := h.render(domainURL+"/jokes", entries)
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c, requestID)
		return
	}

	c.Header("Cache-Control", feedCacheControl)
	c.Data(http.StatusOK, "application/xml", []byte(body))
}

func (h *FeedHandler) render(jokesURL string, entries []domain.FeedEntry) (string, error) {
	feed := &feeds.Feed{
		Title:       h.site.Name,
		Link:        &feeds.Link{Href: jokesURL},
		Description: "Some funny jokes",
		Items:       make([]*feeds.Item, 0, len(entries)),
	}
	for _, e := range entries {
		link := jokesURL + "/" + e.Slug
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          link,
			Title:       e.Name,
			Link:        &feeds.Link{Href: link},
			Description: "A funny joke called " + e.Name,
			Author:      &feeds.Author{Name: e.Username},
			Created:     e.CreatedAt,
		})
	}

	rss := (&feeds.Rss{Feed: feed}).RssFeed()
	rss.Language = "en-us"
	rss.Generator = feedGenerator
	rss.Ttl = feedTTLMinutes
	return feeds.ToXML(rss)
}

func requestDomain(c *gin.Context) (string, error) {
	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	if host == "" {
		return "", errNoHost
	}

	scheme := "https"
	if strings.Contains(host, "localhost") {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s", scheme, host), nil
}
