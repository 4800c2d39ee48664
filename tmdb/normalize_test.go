package tmdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/matchmaker/genres"
)

func ptr[T any](v T) *T {
	return &v
}

func newTestNormalizer() *Normalizer {
	return NewNormalizer(genres.NewStaticCatalog(genres.DefaultGenres()), "https://image.tmdb.org/t/p")
}

func TestNormalize_ListRecord(t *testing.T) {
	rec := MovieResult{
		ID:           603,
		Title:        "The Matrix",
		Overview:     "A computer hacker learns about the true nature of reality.",
		ReleaseDate:  "1999-03-30",
		VoteAverage:  ptr(8.217),
		GenreIDs:     []int{28, 878},
		PosterPath:   ptr("/poster.jpg"),
		BackdropPath: ptr("/backdrop.jpg"),
	}

	movie := newTestNormalizer().Normalize(rec)

	assert.Equal(t, "603", movie.ID)
	assert.Equal(t, "The Matrix", movie.Title)
	assert.Equal(t, 1999, movie.Year)
	require.NotNil(t, movie.ImdbScore)
	assert.Equal(t, 8.2, *movie.ImdbScore)
	assert.Equal(t, []string{"Action", "Science Fiction"}, movie.Genres)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/poster.jpg", movie.PosterURL)
	assert.Equal(t, "https://image.tmdb.org/t/p/w1280/backdrop.jpg", movie.BackdropURL)

	assert.Empty(t, movie.Director)
	assert.Empty(t, movie.Writer)
	assert.Nil(t, movie.Starring)
	assert.Empty(t, movie.Duration)
	assert.Empty(t, movie.Rating)
}

func TestNormalize_MissingFields(t *testing.T) {
	movie := newTestNormalizer().Normalize(MovieResult{ID: 1, OriginalTitle: "Solaris"})

	assert.Equal(t, "Solaris", movie.Title)
	assert.Equal(t, NoSynopsis, movie.Synopsis)
	assert.Zero(t, movie.Year)
	assert.Nil(t, movie.ImdbScore)
	assert.Nil(t, movie.Genres)
	assert.Empty(t, movie.PosterURL)
	assert.Empty(t, movie.BackdropURL)
}

func TestNormalize_AdultRating(t *testing.T) {
	n := newTestNormalizer()

	assert.Equal(t, RatingRestricted, n.Normalize(MovieResult{ID: 1, Adult: true}).Rating)
	assert.Empty(t, n.Normalize(MovieResult{ID: 1}).Rating)
}

func TestNormalize_UnknownGenresDropped(t *testing.T) {
	movie := newTestNormalizer().Normalize(MovieResult{ID: 1, GenreIDs: []int{99999, 18}})
	assert.Equal(t, []string{"Drama"}, movie.Genres)
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"1999-03-30", 1999},
		{"2024", 2024},
		{"", 0},
		{"soon", 0},
		{"19", 0},
		{"0000-01-01", 0},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, parseYear(tt.date))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		runtime *int
		want    string
	}{
		{"two hours five", ptr(125), "2h 5m"},
		{"zero", ptr(0), "0h 0m"},
		{"under an hour", ptr(59), "0h 59m"},
		{"exact hours", ptr(180), "3h 0m"},
		{"absent", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.runtime))
		})
	}
}

func TestRoundScore(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{7.83, 7.8},
		{7.85, 7.9},
		{7.0, 7.0},
		{0, 0},
		{6.449, 6.4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, roundScore(tt.raw), "roundScore(%v)", tt.raw)
	}
}

func TestNormalizeDetails_Credits(t *testing.T) {
	details := MovieDetails{
		MovieResult: MovieResult{
			ID:          27205,
			Title:       "Inception",
			ReleaseDate: "2010-07-15",
			VoteAverage: ptr(8.369),
		},
		Runtime: ptr(148),
		Genres: []GenreRecord{
			{ID: 28, Name: "Action"},
			{ID: 878, Name: "Science Fiction"},
			{ID: 4242, Name: "Heist"},
		},
		Credits: &Credits{
			Cast: []CastMember{
				{Name: "Tom Hardy", Order: 3},
				{Name: "Joseph Gordon-Levitt", Order: 1},
				{Name: "Leonardo DiCaprio", Order: 0},
				{Name: "Elliot Page", Order: 2},
			},
			Crew: []CrewMember{
				{Name: "Hans Zimmer", Job: "Original Music Composer"},
				{Name: "Story Person", Job: "Story"},
				{Name: "Christopher Nolan", Job: "Director"},
				{Name: "Writer Person", Job: "Writer"},
				{Name: "Screenplay Person", Job: "Screenplay"},
			},
		},
	}

	movie := newTestNormalizer().NormalizeDetails(details)

	assert.Equal(t, "27205", movie.ID)
	assert.Equal(t, "2h 28m", movie.Duration)
	assert.Equal(t, "Christopher Nolan", movie.Director)
	assert.Equal(t, "Screenplay Person", movie.Writer)
	assert.Equal(t, []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt", "Elliot Page"}, movie.Starring)
	assert.Equal(t, []string{"Action", "Science Fiction", "Heist"}, movie.Genres)
	require.NotNil(t, movie.ImdbScore)
	assert.Equal(t, 8.4, *movie.ImdbScore)
}

func TestFindWriter_Precedence(t *testing.T) {
	tests := []struct {
		name string
		crew []CrewMember
		want string
	}{
		{"none", []CrewMember{{Name: "A", Job: "Producer"}}, ""},
		{"story only", []CrewMember{{Name: "A", Job: "Story"}}, "A"},
		{"writer beats story", []CrewMember{{Name: "A", Job: "Story"}, {Name: "B", Job: "Writer"}}, "B"},
		{"screenplay beats writer", []CrewMember{{Name: "B", Job: "Writer"}, {Name: "C", Job: "Screenplay"}}, "C"},
		{"first of same job", []CrewMember{{Name: "D", Job: "Writer"}, {Name: "E", Job: "Writer"}}, "D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findWriter(tt.crew))
		})
	}
}

func TestTopBilled(t *testing.T) {
	assert.Nil(t, topBilled(nil))
	assert.Nil(t, topBilled([]CastMember{}))
	assert.Nil(t, topBilled([]CastMember{{Name: "", Order: 0}}))

	assert.Equal(t, []string{"Solo"}, topBilled([]CastMember{{Name: "Solo", Order: 5}}))
}

func TestNormalizeDetails_NoCredits(t *testing.T) {
	movie := newTestNormalizer().NormalizeDetails(MovieDetails{
		MovieResult: MovieResult{ID: 1, Title: "Untitled"},
		Credits:     &Credits{},
	})

	assert.Empty(t, movie.Director)
	assert.Empty(t, movie.Writer)
	assert.Nil(t, movie.Starring)
	assert.Empty(t, movie.Duration)
}
