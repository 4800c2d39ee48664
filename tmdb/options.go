package tmdb

import (
	"net/http"
	"time"

	"github.com/s0up4200/matchmaker/genres"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
	DefaultLanguage     = "en-US"
	DefaultTimeout      = 30 * time.Second
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL           string
	imageBaseURL      string
	language          string
	timeout           time.Duration
	httpClient        *http.Client
	requestsPerSecond float64
	catalog           *genres.Catalog
}

func defaultOptions() clientOptions {
	return clientOptions{
		baseURL:      DefaultBaseURL,
		imageBaseURL: DefaultImageBaseURL,
		language:     DefaultLanguage,
		timeout:      DefaultTimeout,
	}
}

// WithBaseURL points the client at a different API root.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// WithImageBaseURL sets the root used for poster and backdrop URLs.
func WithImageBaseURL(imageBaseURL string) Option {
	return func(o *clientOptions) {
		if imageBaseURL != "" {
			o.imageBaseURL = imageBaseURL
		}
	}
}

// WithLanguage sets the language tag sent with every request.
func WithLanguage(language string) Option {
	return func(o *clientOptions) {
		if language != "" {
			o.language = language
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the HTTP client. WithTimeout is ignored when set.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithRateLimit paces outbound requests. Zero disables pacing.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(o *clientOptions) {
		if requestsPerSecond >= 0 {
			o.requestsPerSecond = requestsPerSecond
		}
	}
}

// WithCatalog supplies the genre catalog instead of one backed by the client.
func WithCatalog(catalog *genres.Catalog) Option {
	return func(o *clientOptions) {
		o.catalog = catalog
	}
}
