package tmdb

import (
	"context"
)

// API defines the movie catalog operations
type API interface {
	// Initialize loads the genre catalog if needed
	Initialize(ctx context.Context)

	// Discover lists movies matching the criteria
	Discover(ctx context.Context, criteria Criteria) ([]Movie, error)

	// Search finds movies by title
	Search(ctx context.Context, query string, page int) ([]Movie, error)

	// GetDetails fetches a single movie with credits and runtime
	GetDetails(ctx context.Context, id string) (Movie, error)

	// ListGenres returns the known genre names
	ListGenres() []string
}

var _ API = (*Client)(nil)
