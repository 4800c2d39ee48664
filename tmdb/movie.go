package tmdb

import "strings"

// RatingRestricted is the only content rating the client can derive. It is
// set from the provider's adult flag and is not a certification lookup.
const RatingRestricted = "R"

// Movie is the canonical movie model handed to consumers. Empty strings,
// a zero Year and nil slices or pointers mean the value is unknown.
type Movie struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Synopsis    string   `json:"synopsis" yaml:"synopsis"`
	Director    string   `json:"director,omitempty" yaml:"director,omitempty"`
	Writer      string   `json:"writer,omitempty" yaml:"writer,omitempty"`
	Starring    []string `json:"starring,omitempty" yaml:"starring,omitempty"`
	Rating      string   `json:"rating,omitempty" yaml:"rating,omitempty"`
	Year        int      `json:"year,omitempty" yaml:"year,omitempty"`
	Duration    string   `json:"duration,omitempty" yaml:"duration,omitempty"`
	ImdbScore   *float64 `json:"imdbScore,omitempty" yaml:"imdbScore,omitempty"`
	Genres      []string `json:"genres,omitempty" yaml:"genres,omitempty"`
	PosterURL   string   `json:"posterUrl,omitempty" yaml:"posterUrl,omitempty"`
	BackdropURL string   `json:"backdropUrl,omitempty" yaml:"backdropUrl,omitempty"`
}

// HasGenre reports whether the movie is tagged with name, ignoring case.
func (m Movie) HasGenre(name string) bool {
	for _, g := range m.Genres {
		if strings.EqualFold(g, name) {
			return true
		}
	}
	return false
}

// Score returns the average score, or 0 when unknown.
func (m Movie) Score() float64 {
	if m.ImdbScore == nil {
		return 0
	}
	return *m.ImdbScore
}
