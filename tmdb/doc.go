// Package tmdb provides a movie catalog client for The Movie Database (TMDB) API.
//
// The client turns search and filter requests into TMDB queries, performs the
// requests, and normalizes the heterogeneous TMDB records into one Movie model.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Client: performs requests and owns the genre catalog's lifecycle
//   - Translator: converts Criteria into /discover/movie query parameters
//   - Normalizer: converts TMDB records into Movie values
//   - Models: wire types for TMDB responses
//   - Errors: the error taxonomy returned by every operation
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := tmdb.NewClient(
//		os.Getenv("TMDB_API_KEY"),
//		logger,
//		tmdb.WithTimeout(10*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	movies, err := client.Discover(ctx, tmdb.Criteria{
//		Genres: []string{"Science Fiction"},
//		SortBy: tmdb.SortRating,
//	})
//
// # Genres
//
// Genre names in Criteria are resolved through a genres.Catalog. The catalog is
// fetched once per client on first use; if that fetch fails, a built-in table of
// the standard TMDB genres is installed instead. Names that do not resolve are
// dropped from the filter rather than failing the request.
//
// # Error Handling
//
// The package defines the following errors:
//
//   - ErrMissingCredential: NewClient was given an empty API key
//   - TransportError: the request produced no HTTP response
//   - ProviderError: TMDB answered with a non-success status
//   - InvalidCriteriaError: the caller's input cannot be expressed as a query
//   - ErrInvalidResponse: a success body could not be decoded
//
// Provider errors include helper methods for classification:
//
//	var providerErr *tmdb.ProviderError
//	if errors.As(err, &providerErr) && providerErr.IsNotFound() {
//		// Handle unknown movie
//	}
//
// # Limitations
//
// Results are not cached, failed requests are not retried, and identical
// in-flight requests are not merged. The Rating field is derived only from the
// adult flag (RatingRestricted) and is not a real certification.
package tmdb
