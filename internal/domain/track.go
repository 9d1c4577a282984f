package domain

import (
	"errors"
	"strings"
)

var (
	ErrEmptyCatalog       = errors.New("catalog has no tracks")
	ErrInvalidTrack       = errors.New("track has no title")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// Track is a single ambient audio item from the remote catalog.
// The title doubles as its identity; the catalog has no separate id.
type Track struct {
	Title      string   `json:"track_title"`
	Genres     []string `json:"track_genre"`
	Tags       []string `json:"tags"`
	MediaURL   string   `json:"link"`
	ImageURL   string   `json:"large_image"`
	FlavorText string   `json:"flavor_text"`
}

// PrimaryGenre returns the first genre, if any.
func (t Track) PrimaryGenre() (string, bool) {
	return firstNonBlank(t.Genres)
}

// FirstTag returns the first tag, if any.
func (t Track) FirstTag() (string, bool) {
	return firstNonBlank(t.Tags)
}

func (t Track) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrInvalidTrack
	}
	return nil
}

// SameAs compares tracks by title.
func (t Track) SameAs(other Track) bool {
	return t.Title == other.Title
}

func firstNonBlank(values []string) (string, bool) {
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return "", false
	}
	return values[0], true
}

// Catalog is the ordered track list as served by the remote source, newest first.
type Catalog []Track

func (c Catalog) Validate() error {
	if len(c) == 0 {
		return ErrEmptyCatalog
	}
	for _, t := range c {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Recent returns up to n tracks from the head of the catalog.
func (c Catalog) Recent(n int) Catalog {
	if n > len(c) {
		n = len(c)
	}
	if n < 0 {
		n = 0
	}
	return c[:n]
}

// Titles returns the titles of the given tracks in order.
func (c Catalog) Titles() []string {
	titles := make([]string, len(c))
	for i, t := range c {
		titles[i] = t.Title
	}
	return titles
}

// CatalogDocument is the JSON envelope served by the catalog endpoint.
type CatalogDocument struct {
	Tracks []Track `json:"tracks"`
}
