package display

import (
	"fmt"
	"strings"

	"github.com/s0up4200/matchmaker/tmdb"
)

// FormatOptions controls how much of each movie is printed in lists
type FormatOptions struct {
	ShowDetails  bool
	ShowSynopsis bool
}

// ConsoleFormatter provides console output formatting for movies
type ConsoleFormatter struct{}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// FormatMovieList formats a list of movies for console display
func (f *ConsoleFormatter) FormatMovieList(movies []tmdb.Movie, options FormatOptions) string {
	if len(movies) == 0 {
		return "No movies found"
	}

	var sb strings.Builder

	sb.WriteString("\nMovie")
	if len(movies) != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(&sb, " (%d):\n\n", len(movies))

	for i, movie := range movies {
		isLast := i == len(movies)-1
		f.formatMovie(&sb, movie, isLast, options)

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatMovieDetails formats a single movie with everything that is known about it
func (f *ConsoleFormatter) FormatMovieDetails(movie tmdb.Movie) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s\n", titleLine(movie))
	sb.WriteString(strings.Repeat("─", len([]rune(titleLine(movie)))))
	sb.WriteString("\n")

	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "%-10s %s\n", label+":", value)
		}
	}

	field("Score", scoreText(movie))
	field("Runtime", movie.Duration)
	field("Rating", movie.Rating)
	field("Genres", strings.Join(movie.Genres, ", "))
	field("Director", movie.Director)
	field("Writer", movie.Writer)
	field("Starring", strings.Join(movie.Starring, ", "))
	field("Poster", movie.PosterURL)

	fmt.Fprintf(&sb, "\n%s\n", movie.Synopsis)
	return sb.String()
}

// FormatGenres formats genre names as a bulleted list
func (f *ConsoleFormatter) FormatGenres(names []string) string {
	if len(names) == 0 {
		return "No genres available"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nGenres (%d):\n\n", len(names))
	for i, name := range names {
		prefix := "├"
		if i == len(names)-1 {
			prefix = "╰"
		}
		fmt.Fprintf(&sb, "%s── %s\n", prefix, name)
	}
	return sb.String()
}

func (f *ConsoleFormatter) formatMovie(sb *strings.Builder, movie tmdb.Movie, isLast bool, options FormatOptions) {
	prefix := "├"
	if isLast {
		prefix = "╰"
	}

	fmt.Fprintf(sb, "%s── %s [%s]\n", prefix, titleLine(movie), movie.ID)

	indent := "│   "
	if isLast {
		indent = "    "
	}

	var summary []string
	if s := scoreText(movie); s != "" {
		summary = append(summary, s)
	}
	if movie.Duration != "" {
		summary = append(summary, movie.Duration)
	}
	if movie.Rating != "" {
		summary = append(summary, "Rated "+movie.Rating)
	}
	if len(summary) > 0 {
		fmt.Fprintf(sb, "%s%s\n", indent, strings.Join(summary, " | "))
	}

	if len(movie.Genres) > 0 {
		fmt.Fprintf(sb, "%sGenres: %s\n", indent, strings.Join(movie.Genres, ", "))
	}

	if options.ShowDetails {
		if movie.Director != "" {
			fmt.Fprintf(sb, "%sDirector: %s\n", indent, movie.Director)
		}
		if len(movie.Starring) > 0 {
			fmt.Fprintf(sb, "%sStarring: %s\n", indent, strings.Join(movie.Starring, ", "))
		}
	}

	if options.ShowSynopsis {
		fmt.Fprintf(sb, "%s%s\n", indent, movie.Synopsis)
	}
}

func titleLine(movie tmdb.Movie) string {
	if movie.Year > 0 {
		return fmt.Sprintf("%s (%d)", movie.Title, movie.Year)
	}
	return movie.Title
}

func scoreText(movie tmdb.Movie) string {
	if movie.ImdbScore == nil {
		return ""
	}
	return fmt.Sprintf("★ %.1f", *movie.ImdbScore)
}
