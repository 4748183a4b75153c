package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jokesite/src/app/http/dto"
	"jokesite/src/infra/config"
)

// ManifestHandler serves the web app manifest built from site config.
type ManifestHandler struct {
	manifest dto.Manifest
}

func NewManifestHandler(site config.SiteConfig) *ManifestHandler {
	return &ManifestHandler{manifest: dto.NewManifest(site)}
}

// Manifest
// GET /manifest.json
func (h *ManifestHandler) Manifest(c *gin.Context) {
	c.JSON(http.StatusOK, h.manifest)
}
