// Package views holds the HTML templates and the page metadata builder.
package views

import (
	"embed"
	"html/template"
	"strings"

	"github.com/gin-gonic/gin"

	"jokesite/src/infra/config"
)

const metaKey = "page_meta"

//go:embed templates/*.html
var templatesFS embed.FS

// Templates parses every embedded page template. Pages are referenced by
// file name, e.g. "joke.html"; layout.html only holds shared blocks.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templatesFS, "templates/*.html")
}

// Meta is the set of social and SEO tags rendered in every page head.
type Meta struct {
	Title          string
	Description    string
	Keywords       string
	Image          string
	URL            string
	SiteName       string
	TwitterCreator string
	ThemeColor     string
}

// MetaOptions overrides the site defaults for one page.
type MetaOptions struct {
	Title       string
	Description string
	Path        string
}

// BuildMeta fills page metadata from the site defaults. A page title is
// rendered as "<title> | <site title>".
func BuildMeta(site config.SiteConfig, opts MetaOptions) Meta {
	title := site.Title
	if opts.Title != "" && opts.Title != site.Title {
		title = opts.Title + " | " + site.Title
	}

	description := site.Description
	if opts.Description != "" {
		description = opts.Description
	}

	path := opts.Path
	if path == "" {
		path = "/"
	}

	return Meta{
		Title:          title,
		Description:    description,
		Keywords:       site.Keywords,
		Image:          site.Image,
		URL:            strings.TrimRight(site.URL, "/") + path,
		SiteName:       site.Name,
		TwitterCreator: site.TwitterCreator,
		ThemeColor:     site.ThemeColor,
	}
}

// SetMeta stores the default page metadata for the request.
func SetMeta(c *gin.Context, m Meta) {
	c.Set(metaKey, m)
}

// MetaFrom returns the metadata stored by SetMeta, or the zero Meta.
func MetaFrom(c *gin.Context) Meta {
	if v, ok := c.Get(metaKey); ok {
		if m, ok := v.(Meta); ok {
			return m
		}
	}
	return Meta{}
}
