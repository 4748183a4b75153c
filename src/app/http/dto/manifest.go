package dto

import (
	"fmt"
	"strings"

	"jokesite/src/infra/config"
)

// ManifestIcon is one icon entry of the web manifest.
type ManifestIcon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose"`
}

// Manifest is served as /manifest.json.
type Manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Version         string         `json:"version"`
	Description     string         `json:"description"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	Scope           string         `json:"scope"`
	Icons           []ManifestIcon `json:"icons"`
}

// NewManifest builds the manifest from site config. Each icon size is
// listed twice, once per purpose.
func NewManifest(site config.SiteConfig) Manifest {
	icons := make([]ManifestIcon, 0, 2*len(site.IconSizes))
	for _, size := range site.IconSizes {
		size = strings.TrimSpace(size)
		if size == "" {
			continue
		}
		icon := ManifestIcon{
			Src:   fmt.Sprintf("/icons/manifest-icon-%s.maskable.png", size),
			Sizes: size + "x" + size,
			Type:  "image/png",
		}
		for _, purpose := range []string{"any", "maskable"} {
			icon.Purpose = purpose
			icons = append(icons, icon)
		}
	}

	return Manifest{
		Name:            site.Name,
		ShortName:       site.Name,
		Version:         site.Version,
		Description:     site.Description,
		BackgroundColor: site.BackgroundColor,
		ThemeColor:      site.ThemeColor,
		StartURL:        "/",
		Display:         "standalone",
		Scope:           "/",
		Icons:           icons,
	}
}
