package tmdb

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrMissingCredential indicates the client was constructed without an API key
	ErrMissingCredential = errors.New("TMDB API key not found: set TMDB_API_KEY in your environment")
	// ErrInvalidCriteria is matched by every *InvalidCriteriaError
	ErrInvalidCriteria = errors.New("invalid criteria")
	// ErrInvalidResponse indicates a success response whose body could not be decoded
	ErrInvalidResponse = errors.New("invalid response from TMDB API")
)

// TransportError indicates the request never produced an HTTP response
type TransportError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("TMDB request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProviderError represents a non-success HTTP status from TMDB
type ProviderError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("TMDB API error: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("TMDB API error: status %d", e.StatusCode)
}

// IsNotFound checks if the error indicates a not found response
func (e *ProviderError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *ProviderError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRateLimited checks if TMDB rejected the request for exceeding its rate limit
func (e *ProviderError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// InvalidCriteriaError reports malformed caller input
type InvalidCriteriaError struct {
	Field  string
	Reason string
}

func (e *InvalidCriteriaError) Error() string {
	return fmt.Sprintf("invalid criteria: %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidCriteria) match any criteria error.
func (e *InvalidCriteriaError) Is(target error) bool {
	return target == ErrInvalidCriteria
}
