package tmdb

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/s0up4200/matchmaker/genres"
)

const (
	posterSize   = "w500"
	backdropSize = "w1280"
	maxStarring  = 3

	// NoSynopsis is used when TMDB has no overview for a movie.
	NoSynopsis = "No synopsis available."
)

// writerJobs lists crew jobs that count as the writer, highest precedence first.
var writerJobs = []string{"Screenplay", "Writer", "Story"}

// Normalizer converts TMDB records into Movie values.
type Normalizer struct {
	catalog      *genres.Catalog
	imageBaseURL string
}

// NewNormalizer creates a normalizer that maps genre ids through catalog.
func NewNormalizer(catalog *genres.Catalog, imageBaseURL string) *Normalizer {
	return &Normalizer{
		catalog:      catalog,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
	}
}

// ImageURL returns a full image URL for a relative path and size token.
func (n *Normalizer) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", n.imageBaseURL, size, path)
}

// Normalize converts a list record into a Movie. Credit and runtime derived
// fields stay empty.
func (n *Normalizer) Normalize(rec MovieResult) Movie {
	return n.normalize(rec, nil)
}

// NormalizeDetails converts a detail record, including its credits, into a Movie.
func (n *Normalizer) NormalizeDetails(details MovieDetails) Movie {
	return n.normalize(details.MovieResult, &details)
}

func (n *Normalizer) normalize(rec MovieResult, details *MovieDetails) Movie {
	movie := Movie{
		ID:       strconv.Itoa(rec.ID),
		Title:    rec.Title,
		Synopsis: rec.Overview,
		Year:     parseYear(rec.ReleaseDate),
		Genres:   n.genreNames(rec, details),
	}

	if movie.Title == "" {
		movie.Title = rec.OriginalTitle
	}
	if movie.Synopsis == "" {
		movie.Synopsis = NoSynopsis
	}
	if rec.VoteAverage != nil {
		score := roundScore(*rec.VoteAverage)
		movie.ImdbScore = &score
	}
	if rec.Adult {
		movie.Rating = RatingRestricted
	}
	if rec.PosterPath != nil {
		movie.PosterURL = n.ImageURL(*rec.PosterPath, posterSize)
	}
	if rec.BackdropPath != nil {
		movie.BackdropURL = n.ImageURL(*rec.BackdropPath, backdropSize)
	}

	if details != nil {
		movie.Duration = formatDuration(details.Runtime)
		if details.Credits != nil {
			movie.Director = findDirector(details.Credits.Crew)
			movie.Writer = findWriter(details.Credits.Crew)
			movie.Starring = topBilled(details.Credits.Cast)
		}
	}

	return movie
}

// genreNames maps list genre ids through the catalog. Detail records carry
// genre objects instead; their names cover ids the catalog does not know.
func (n *Normalizer) genreNames(rec MovieResult, details *MovieDetails) []string {
	if len(rec.GenreIDs) > 0 || details == nil || len(details.Genres) == 0 {
		names := n.catalog.NamesOf(rec.GenreIDs)
		if len(names) == 0 {
			return nil
		}
		return names
	}

	names := make([]string, 0, len(details.Genres))
	seen := make(map[int]struct{}, len(details.Genres))
	for _, g := range details.Genres {
		if _, dup := seen[g.ID]; dup {
			continue
		}
		seen[g.ID] = struct{}{}

		if name, ok := n.catalog.Lookup(g.ID); ok {
			names = append(names, name)
		} else if g.Name != "" {
			names = append(names, g.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return names
}

// parseYear returns the leading year of a YYYY-MM-DD date, or 0.
func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0
	}
	return year
}

// formatDuration renders a runtime in minutes as "Hh Mm".
func formatDuration(runtime *int) string {
	if runtime == nil || *runtime < 0 {
		return ""
	}
	return fmt.Sprintf("%dh %dm", *runtime/60, *runtime%60)
}

// roundScore rounds half-up to one decimal place.
func roundScore(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

func findDirector(crew []CrewMember) string {
	for _, member := range crew {
		if member.Job == "Director" && member.Name != "" {
			return member.Name
		}
	}
	return ""
}

func findWriter(crew []CrewMember) string {
	for _, job := range writerJobs {
		for _, member := range crew {
			if member.Job == job && member.Name != "" {
				return member.Name
			}
		}
	}
	return ""
}

// topBilled returns up to three names by billing order, or nil when no cast is known.
func topBilled(cast []CastMember) []string {
	billed := make([]CastMember, 0, len(cast))
	for _, member := range cast {
		if member.Name != "" {
			billed = append(billed, member)
		}
	}
	if len(billed) == 0 {
		return nil
	}

	sort.SliceStable(billed, func(i, j int) bool {
		return billed[i].Order < billed[j].Order
	})

	names := make([]string, 0, maxStarring)
	for _, member := range billed[:min(maxStarring, len(billed))] {
		names = append(names, member.Name)
	}
	return names
}
