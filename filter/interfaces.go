package filter

import (
	"context"

	"github.com/s0up4200/matchmaker/tmdb"
)

// Filter decides whether a movie is kept
type Filter interface {
	// Evaluate checks if a movie matches the filter
	Evaluate(movie tmdb.Movie) bool
}

// CompiledFilter is a filter built from an expression
type CompiledFilter interface {
	Filter

	// Match is Evaluate with the runtime error surfaced
	Match(movie tmdb.Movie) (bool, error)

	// Expression returns the source expression
	Expression() string
}

// Compiler compiles filter expressions
type Compiler interface {
	Compile(expression string) (CompiledFilter, error)
}

// Evaluator applies a filter to a list of movies, keeping their order
type Evaluator interface {
	Evaluate(ctx context.Context, filter Filter, movies []tmdb.Movie) ([]tmdb.Movie, error)
}
