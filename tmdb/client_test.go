package tmdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/matchmaker/genres"
)

const testAPIKey = "secret-test-key"

// fakeTMDB records requests and serves canned responses per path.
type fakeTMDB struct {
	mu       sync.Mutex
	requests map[string][]*http.Request

	genreCalls atomic.Int32
	handlers   map[string]http.HandlerFunc
}

func newFakeTMDB(t *testing.T) (*fakeTMDB, *httptest.Server) {
	t.Helper()

	f := &fakeTMDB{
		requests: make(map[string][]*http.Request),
		handlers: make(map[string]http.HandlerFunc),
	}
	f.handlers["/genre/movie/list"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, GenreListResponse{Genres: []GenreRecord{
			{ID: 28, Name: "Action"},
			{ID: 18, Name: "Drama"},
			{ID: 878, Name: "Science Fiction"},
		}})
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests[r.URL.Path] = append(f.requests[r.URL.Path], r)
		handler, ok := f.handlers[r.URL.Path]
		f.mu.Unlock()

		if r.URL.Path == "/genre/movie/list" {
			f.genreCalls.Add(1)
		}

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, ErrorResponse{StatusCode: 34, StatusMessage: "The resource you requested could not be found."})
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return f, srv
}

func (f *fakeTMDB) handle(path string, handler http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[path] = handler
}

func (f *fakeTMDB) lastRequest(path string) *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	reqs := f.requests[path]
	if len(reqs) == 0 {
		return nil
	}
	return reqs[len(reqs)-1]
}

func (f *fakeTMDB) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests[path])
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()

	opts = append([]Option{WithBaseURL(baseURL), WithTimeout(5 * time.Second)}, opts...)
	client, err := NewClient(testAPIKey, zerolog.Nop(), opts...)
	require.NoError(t, err)
	return client
}

func samplePage(ids ...int) PageResponse {
	results := make([]MovieResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, MovieResult{
			ID:          id,
			Title:       "Movie",
			ReleaseDate: "2001-01-01",
			GenreIDs:    []int{28},
		})
	}
	return PageResponse{Page: 1, Results: results, TotalPages: 1, TotalResults: len(ids)}
}

func TestNewClient_MissingCredential(t *testing.T) {
	for _, key := range []string{"", "   "} {
		client, err := NewClient(key, zerolog.Nop())
		assert.Nil(t, client)
		assert.ErrorIs(t, err, ErrMissingCredential)
	}
}

func TestClient_Discover(t *testing.T) {
	fake, srv := newFakeTMDB(t)
	fake.handle("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, samplePage(1, 2, 3))
	})

	client := newTestClient(t, srv.URL)
	movies, err := client.Discover(context.Background(), Criteria{
		Genres:         []string{"Action", "Drama"},
		ReleaseYearMin: 2000,
		SortBy:         SortRating,
		Page:           2,
	})
	require.NoError(t, err)
	require.Len(t, movies, 3)
	assert.Equal(t, "1", movies[0].ID)
	assert.Equal(t, []string{"Action"}, movies[0].Genres)

	req := fake.lastRequest("/discover/movie")
	require.NotNil(t, req)
	q := req.URL.Query()
	assert.Equal(t, testAPIKey, q.Get("api_key"))
	assert.Equal(t, "28,18", q.Get("with_genres"))
	assert.Equal(t, "2000-01-01", q.Get("primary_release_date.gte"))
	assert.Equal(t, "vote_average.desc", q.Get("sort_by"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "100", q.Get("vote_count.gte"))
}

func TestClient_DiscoverInvalidCriteriaMakesNoRequest(t *testing.T) {
	fake, srv := newFakeTMDB(t)
	client := newTestClient(t, srv.URL)

	_, err := client.Discover(context.Background(), Criteria{MinRating: 42})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCriteria)
	assert.Zero(t, fake.count("/discover/movie"))
}

func TestClient_Search(t *testing.T) {
	fake, srv := newFakeTMDB(t)
	fake.handle("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, samplePage(10))
	})

	client := newTestClient(t, srv.URL)
	movies, err := client.Search(context.Background(), "  matrix ", 0)
	require.NoError(t, err)
	require.Len(t, movies, 1)

	q := fake.lastRequest("/search/movie").URL.Query()
	assert.Equal(t, "matrix", q.Get("query"))
	assert.Equal(t, "false", q.Get("include_adult"))
	assert.Equal(t, "1", q.Get("page"))
}

func TestClient_SearchRejectsBlankQuery(t *testing.T) {
	fake, srv := newFakeTMDB(t)
	client := newTestClient(t, srv.URL)

	_, err := client.Search(context.Background(), "   ", 1)

	var criteriaErr *InvalidCriteriaError
	require.ErrorAs(t, err, &criteriaErr)
	assert.Equal(t, "query", criteriaErr.Field)
	assert.Zero(t, fake.count("/search/movie"))
}

func TestClient_GetDetails(t *testing.T) {
	fake, srv := newFakeTMDB(t)
	fake.handle("/movie/603", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, MovieDetails{
			MovieResult: MovieResult{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-30", VoteAverage: ptr(8.2)},
			Runtime:     ptr(136),
			Genres:      []GenreRecord{{ID: 28, Name: "Action"}},
		})
	})
	fake.handle("/movie/603/credits", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, Credits{
			ID:   603,
			Cast: []CastMember{{Name: "Keanu Reeves", Order: 0}, {Name: "Carrie-Anne Moss", Order: 2}, {Name: "Laurence Fishburne", Order: 1}},
			Crew: []CrewMember{{Name: "Lana Wachowski", Job: "Director"}, {Name: "Lilly Wachowski", Job: "Writer"}},
		})
	})

	client := newTestClient(t, srv.URL)
	movie, err := client.GetDetails(context.Background(), "603")
	require.NoError(t, err)

	assert.Equal(t, "The Matrix", movie.Title)
	assert.Equal(t, "2h 16m", movie.Duration)
	assert.Equal(t, "Lana Wachowski", movie.Director)
	assert.Equal(t, "Lilly Wachowski", movie.Writer)
	assert.Equal(t, []string{"Keanu Reeves", "Laurence Fishburne", "Carrie-Anne Moss"}, movie.Starring)
	assert.Equal(t, []string{"Action"}, movie.Genres)

	assert.Equal(t, 1, fake.count("/movie/603"))
	assert.Equal(t, 1, fake.count("/movie/603/credits"))
	assert.Equal(t, "en-US", fake.lastRequest("/movie/603").URL.Query().Get("language"))
}

func TestClient_GetDetailsFailsWhenEitherRequestFails(t *testing.T) {
	tests := []struct {
		name       string
		failPath   string
		servedPath string
	}{
		{"details fails", "/movie/7", "/movie/7/credits"},
		{"credits fails", "/movie/7/credits", "/movie/7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, srv := newFakeTMDB(t)
			fake.handle(tt.servedPath, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, MovieDetails{MovieResult: MovieResult{ID: 7, Title: "Seven"}})
			})
			fake.handle(tt.failPath, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				writeJSON(w, ErrorResponse{StatusMessage: "boom"})
			})

			client := newTestClient(t, srv.URL)
			_, err := client.GetDetails(context.Background(), "7")
			require.Error(t, err)

			var providerErr *ProviderError
			require.ErrorAs(t, err, &providerErr)
			assert.Equal(t, http.StatusInternalServerError, providerErr.StatusCode)
			assert.Equal(t, "boom", providerErr.Message)
		})
	}
}

func TestClient_GetDetailsNotFound(t *testing.T) {
	_, srv := newFakeTMDB(t)
	client := newTestClient(t, srv.URL)

	_, err := client.GetDetails(context.Background(), "999999")

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.True(t, providerErr.IsNotFound())
	assert.Contains(t, err.Error(), "could not be found")
}

func TestClient_GetDetailsLogsOnlyTheFailingRequest(t *testing.T) {
	fake, srv := newFakeTMDB(t)
	fake.handle("/movie/42/credits", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	var logs bytes.Buffer
	logger := zerolog.New(zerolog.SyncWriter(&logs))
	client, err := NewClient(testAPIKey, logger, WithBaseURL(srv.URL), WithTimeout(10*time.Second))
	require.NoError(t, err)

	_, err = client.GetDetails(context.Background(), "42")

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.True(t, providerErr.IsNotFound())

	assert.Equal(t, 1, strings.Count(logs.String(), `"level":"error"`), logs.String())
	assert.Contains(t, logs.String(), "TMDB API error")
	assert.NotContains(t, logs.String(), "HTTP request failed")
}

func TestClient_GetDetailsEmptyID(t *testing.T) {
	_, srv := newFakeTMDB(t)
	client := newTestClient(t, srv.URL)

	_, err := client.GetDetails(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidCriteria)
}

func TestClient_InvalidResponse(t *testing.T) {
	fake, srv := newFakeTMDB(t)
	fake.handle("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	client := newTestClient(t, srv.URL)
	_, err := client.Discover(context.Background(), Criteria{})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestClient_TransportErrorHidesAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client := newTestClient(t, baseURL, WithCatalog(genres.NewStaticCatalog(genres.DefaultGenres())))
	_, err := client.Search(context.Background(), "alien", 1)
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "/search/movie", transportErr.Endpoint)
	assert.NotContains(t, err.Error(), testAPIKey)
}

func TestClient_GenreFallbackOnTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client := newTestClient(t, baseURL)
	client.Initialize(context.Background())

	assert.Equal(t, 19, client.Catalog().Len())
	name, ok := client.Catalog().Lookup(28)
	assert.True(t, ok)
	assert.Equal(t, "Action", name)
}

func TestClient_GenresFetchedOnce(t *testing.T) {
	fake, srv := newFakeTMDB(t)
	fake.handle("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, samplePage(1))
	})
	fake.handle("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, samplePage(2))
	})

	client := newTestClient(t, srv.URL)
	assert.Empty(t, client.ListGenres())

	ctx := context.Background()
	_, err := client.Discover(ctx, Criteria{Genres: []string{"Drama"}})
	require.NoError(t, err)
	_, err = client.Search(ctx, "heat", 1)
	require.NoError(t, err)
	_, err = client.Discover(ctx, Criteria{Page: 2})
	require.NoError(t, err)

	assert.Equal(t, int32(1), fake.genreCalls.Load())
	assert.Equal(t, []string{"Action", "Drama", "Science Fiction"}, client.ListGenres())
	assert.Equal(t, "en-US", fake.lastRequest("/genre/movie/list").URL.Query().Get("language"))
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	fake, srv := newFakeTMDB(t)
	fake.handle("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, samplePage(1))
	})

	client := newTestClient(t, srv.URL,
		WithRateLimit(0.01),
		WithCatalog(genres.NewStaticCatalog(genres.DefaultGenres())),
	)

	_, err := client.Search(context.Background(), "first", 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Search(ctx, "second", 1)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 1, fake.count("/search/movie"))
}

func TestClient_ImageURL(t *testing.T) {
	client, err := NewClient(testAPIKey, zerolog.Nop(), WithImageBaseURL("https://img.example.com/t/p/"))
	require.NoError(t, err)

	url := client.ImageURL("/abc.jpg", "w500")
	assert.True(t, strings.HasPrefix(url, "https://img.example.com/t/p"))
	assert.True(t, strings.HasSuffix(url, "/w500/abc.jpg"))
}

func TestProviderError_Classification(t *testing.T) {
	tests := []struct {
		status       int
		notFound     bool
		unauthorized bool
		rateLimited  bool
	}{
		{http.StatusNotFound, true, false, false},
		{http.StatusUnauthorized, false, true, false},
		{http.StatusForbidden, false, true, false},
		{http.StatusTooManyRequests, false, false, true},
		{http.StatusInternalServerError, false, false, false},
	}

	for _, tt := range tests {
		err := &ProviderError{StatusCode: tt.status}
		assert.Equal(t, tt.notFound, err.IsNotFound(), "status %d", tt.status)
		assert.Equal(t, tt.unauthorized, err.IsUnauthorized(), "status %d", tt.status)
		assert.Equal(t, tt.rateLimited, err.IsRateLimited(), "status %d", tt.status)
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "TMDB API error: status 401: Invalid API key", (&ProviderError{StatusCode: 401, Message: "Invalid API key"}).Error())
	assert.Equal(t, "TMDB API error: status 502", (&ProviderError{StatusCode: 502}).Error())
	assert.Equal(t, "invalid criteria: page: must not be negative", (&InvalidCriteriaError{Field: "page", Reason: "must not be negative"}).Error())

	inner := errors.New("connection refused")
	transportErr := &TransportError{Endpoint: "/discover/movie", Err: inner}
	assert.Equal(t, "TMDB request to /discover/movie failed: connection refused", transportErr.Error())
	assert.ErrorIs(t, transportErr, inner)
}
