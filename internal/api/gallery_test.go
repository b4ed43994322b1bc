package api

import (
	"strings"
	"testing"
)

func TestParseGallery_Embedded(t *testing.T) {
	g, err := parseGallery(galleryYAML)
	if err != nil {
		t.Fatalf("parseGallery: %v", err)
	}
	if len(g.Sections) == 0 {
		t.Fatal("expected gallery sections")
	}
	first := g.Sections[0].Images[0]
	want := "https://github.com/echelon2718/Air-Quality-Analysis-Properties/blob/main/images/Tren%20Karbonmonoksida%20Per%20Bulan.png?raw=true"
	if first.URL != want {
		t.Errorf("URL = %q, want %q", first.URL, want)
	}
	for _, s := range g.Sections {
		for _, img := range s.Images {
			if img.Caption == "" {
				t.Errorf("%s: image %s has no caption", s.Title, img.File)
			}
		}
	}
}

func TestParseGallery_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bad yaml", "sections: [", "parse gallery"},
		{"missing file", "base: https://example.com/\nsections:\n  - title: A\n    images:\n      - caption: x\n", "has no file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseGallery([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}
