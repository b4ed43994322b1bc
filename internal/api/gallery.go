package api

import (
	_ "embed"
	"fmt"
	"net/url"

	"gopkg.in/yaml.v3"
)

//go:embed gallery.yaml
var galleryYAML []byte

// Gallery is the set of remote trend images shown below the station data.
type Gallery struct {
	Base     string           `yaml:"base"`
	Sections []GallerySection `yaml:"sections"`
}

type GallerySection struct {
	Title  string         `yaml:"title"`
	Note   string         `yaml:"note"`
	Images []GalleryImage `yaml:"images"`
}

type GalleryImage struct {
	File    string `yaml:"file"`
	Caption string `yaml:"caption"`
	URL     string `yaml:"-"`
}

func parseGallery(data []byte) (*Gallery, error) {
	var g Gallery
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse gallery: %w", err)
	}
	base, err := url.Parse(g.Base)
	if err != nil {
		return nil, fmt.Errorf("parse gallery base: %w", err)
	}
	for i := range g.Sections {
		for j := range g.Sections[i].Images {
			img := &g.Sections[i].Images[j]
			if img.File == "" {
				return nil, fmt.Errorf("gallery section %q: image %d has no file", g.Sections[i].Title, j)
			}
			u := base.JoinPath(img.File)
			u.RawQuery = "raw=true"
			img.URL = u.String()
		}
	}
	return &g, nil
}
