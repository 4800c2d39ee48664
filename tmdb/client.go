package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/s0up4200/matchmaker/genres"
)

// Client is a TMDB movie catalog client
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger

	catalog    *genres.Catalog
	translator *Translator
	normalizer *Normalizer
}

// NewClient creates a new TMDB client. It fails with ErrMissingCredential
// when apiKey is empty.
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	c := &Client{
		baseURL:    strings.TrimRight(o.baseURL, "/"),
		apiKey:     apiKey,
		language:   o.language,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "tmdb").Logger(),
	}

	if o.requestsPerSecond > 0 {
		burst := max(1, int(math.Ceil(o.requestsPerSecond)))
		c.limiter = rate.NewLimiter(rate.Limit(o.requestsPerSecond), burst)
	}

	c.catalog = o.catalog
	if c.catalog == nil {
		c.catalog = genres.NewCatalog(c, logger)
	}
	c.translator = NewTranslator(c.catalog, apiKey, o.language)
	c.normalizer = NewNormalizer(c.catalog, o.imageBaseURL)

	return c, nil
}

// Catalog returns the genre catalog owned by the client.
func (c *Client) Catalog() *genres.Catalog {
	return c.catalog
}

// Initialize loads the genre catalog if it is still empty.
func (c *Client) Initialize(ctx context.Context) {
	c.catalog.EnsureLoaded(ctx)
}

// FetchGenres retrieves the full movie genre list from TMDB.
func (c *Client) FetchGenres(ctx context.Context) ([]genres.Genre, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)

	var response GenreListResponse
	if err := c.doRequest(ctx, "/genre/movie/list", params, &response); err != nil {
		return nil, err
	}

	list := make([]genres.Genre, 0, len(response.Genres))
	for _, g := range response.Genres {
		list = append(list, genres.Genre{ID: g.ID, Name: g.Name})
	}
	return list, nil
}

// Discover lists movies matching criteria.
func (c *Client) Discover(ctx context.Context, criteria Criteria) ([]Movie, error) {
	params, err := c.translator.Translate(ctx, criteria)
	if err != nil {
		return nil, err
	}

	var response PageResponse
	if err := c.doRequest(ctx, "/discover/movie", params, &response); err != nil {
		return nil, fmt.Errorf("failed to discover movies: %w", err)
	}

	movies := c.normalizeAll(response.Results)

	c.logger.Debug().
		Str("sort", string(criteria.sortKey())).
		Int("page", criteria.page()).
		Int("results", len(movies)).
		Msg("Discover completed")

	return movies, nil
}

// Search finds movies by title. Adult titles are never included.
func (c *Client) Search(ctx context.Context, query string, page int) ([]Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &InvalidCriteriaError{Field: "query", Reason: "must not be empty"}
	}
	if page < 0 {
		return nil, &InvalidCriteriaError{Field: "page", Reason: "must not be negative"}
	}

	c.catalog.EnsureLoaded(ctx)

	var response PageResponse
	if err := c.doRequest(ctx, "/search/movie", c.translator.searchParams(query, page), &response); err != nil {
		return nil, fmt.Errorf("failed to search movies: %w", err)
	}

	movies := c.normalizeAll(response.Results)

	c.logger.Debug().
		Str("query", query).
		Int("page", max(page, 1)).
		Int("results", len(movies)).
		Msg("Search completed")

	return movies, nil
}

// GetDetails fetches a movie and its credits concurrently. Both requests
// must succeed.
func (c *Client) GetDetails(ctx context.Context, id string) (Movie, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Movie{}, &InvalidCriteriaError{Field: "id", Reason: "must not be empty"}
	}
	path := "/movie/" + url.PathEscape(id)

	detailParams := url.Values{}
	detailParams.Set("api_key", c.apiKey)
	detailParams.Set("language", c.language)

	creditParams := url.Values{}
	creditParams.Set("api_key", c.apiKey)

	var (
		details MovieDetails
		credits Credits
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.doRequest(gctx, path, detailParams, &details)
	})
	g.Go(func() error {
		return c.doRequest(gctx, path+"/credits", creditParams, &credits)
	})
	if err := g.Wait(); err != nil {
		return Movie{}, fmt.Errorf("failed to get movie details: %w", err)
	}

	details.Credits = &credits
	movie := c.normalizer.NormalizeDetails(details)

	c.logger.Debug().
		Str("id", id).
		Str("title", movie.Title).
		Msg("Got movie details")

	return movie, nil
}

// ListGenres returns the known genre names in ascending order. It does not
// load the catalog.
func (c *Client) ListGenres() []string {
	return c.catalog.AllNames()
}

// ImageURL returns a full image URL for a relative path and size token.
func (c *Client) ImageURL(path, size string) string {
	return c.normalizer.ImageURL(path, size)
}

func (c *Client) normalizeAll(results []MovieResult) []Movie {
	movies := make([]Movie, 0, len(results))
	for _, rec := range results {
		movies = append(movies, c.normalizer.Normalize(rec))
	}
	return movies
}

// doRequest performs an HTTP GET request and decodes the JSON response.
// path is logged instead of the full URL to keep the API key out of logs.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values, result any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &TransportError{Endpoint: path, Err: err}
		}
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = redact(err)
		if ctx.Err() != nil {
			// Cancelled by the caller or a failed sibling request.
			c.logger.Debug().Err(err).Str("endpoint", path).Msg("HTTP request cancelled")
		} else {
			c.logger.Error().Err(err).Str("endpoint", path).Msg("HTTP request failed")
		}
		return &TransportError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		providerErr := &ProviderError{StatusCode: resp.StatusCode, Endpoint: path}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var errResp ErrorResponse
		if json.Unmarshal(body, &errResp) == nil {
			providerErr.Message = errResp.StatusMessage
		}

		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("endpoint", path).
			Str("message", providerErr.Message).
			Msg("TMDB API error")
		return providerErr
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, path, err)
	}

	return nil
}

// redact strips the request URL, which carries the API key, from transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
