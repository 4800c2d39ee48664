package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/s0up4200/matchmaker/filter"
	"github.com/s0up4200/matchmaker/tmdb"
)

// MovieListResponse is the body of the discover and search endpoints
type MovieListResponse struct {
	Page    int          `json:"page"`
	Count   int          `json:"count"`
	Results []tmdb.Movie `json:"results"`
}

// GenreListResponse is the body of the genres endpoint
type GenreListResponse struct {
	Genres []string `json:"genres"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) discover(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaFromQuery(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	movies, err := s.api.Discover(r.Context(), criteria)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	s.respondMovies(w, r, max(criteria.Page, 1), movies)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), "page")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	movies, err := s.api.Search(r.Context(), q.Get("q"), page)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	s.respondMovies(w, r, max(page, 1), movies)
}

func (s *Server) movie(w http.ResponseWriter, r *http.Request) {
	movie, err := s.api.GetDetails(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, movie)
}

func (s *Server) genres(w http.ResponseWriter, r *http.Request) {
	s.api.Initialize(r.Context())
	respondJSON(w, http.StatusOK, GenreListResponse{Genres: s.api.ListGenres()})
}

// respondMovies applies the optional preset and filter query parameters
func (s *Server) respondMovies(w http.ResponseWriter, r *http.Request, page int, movies []tmdb.Movie) {
	q := r.URL.Query()

	var err error
	if preset := q.Get("preset"); preset != "" {
		if movies, err = s.filters.EvaluateFilter(r.Context(), preset, movies); err != nil {
			s.respondErr(w, r, err)
			return
		}
	}
	if movies, err = s.filters.Apply(r.Context(), q.Get("filter"), movies); err != nil {
		s.respondErr(w, r, err)
		return
	}

	if movies == nil {
		movies = []tmdb.Movie{}
	}
	respondJSON(w, http.StatusOK, MovieListResponse{Page: page, Count: len(movies), Results: movies})
}

func criteriaFromQuery(r *http.Request) (tmdb.Criteria, error) {
	q := r.URL.Query()

	var (
		criteria tmdb.Criteria
		err      error
	)

	for _, raw := range q["genre"] {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				criteria.Genres = append(criteria.Genres, name)
			}
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"year_min", &criteria.ReleaseYearMin},
		{"year_max", &criteria.ReleaseYearMax},
		{"runtime_min", &criteria.RuntimeMin},
		{"runtime_max", &criteria.RuntimeMax},
		{"page", &criteria.Page},
	}
	for _, p := range ints {
		if *p.dst, err = intParam(q.Get(p.key), p.key); err != nil {
			return tmdb.Criteria{}, err
		}
	}

	if raw := q.Get("min_rating"); raw != "" {
		if criteria.MinRating, err = strconv.ParseFloat(raw, 64); err != nil {
			return tmdb.Criteria{}, &tmdb.InvalidCriteriaError{Field: "min_rating", Reason: "must be a number"}
		}
	}

	if raw := q.Get("include_adult"); raw != "" {
		if criteria.IncludeAdult, err = strconv.ParseBool(raw); err != nil {
			return tmdb.Criteria{}, &tmdb.InvalidCriteriaError{Field: "include_adult", Reason: "must be true or false"}
		}
	}

	if criteria.SortBy, err = tmdb.ParseSortKey(q.Get("sort")); err != nil {
		return tmdb.Criteria{}, err
	}

	return criteria, nil
}

func intParam(raw, field string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &tmdb.InvalidCriteriaError{Field: field, Reason: "must be an integer"}
	}
	return v, nil
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	var (
		providerErr  *tmdb.ProviderError
		transportErr *tmdb.TransportError
		compileErr   *filter.CompilationError
	)

	switch {
	case errors.Is(err, tmdb.ErrInvalidCriteria),
		errors.Is(err, filter.ErrUnknownPreset),
		errors.As(err, &compileErr):
		return http.StatusBadRequest
	case errors.As(err, &providerErr):
		if providerErr.IsNotFound() {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.As(err, &transportErr):
		return http.StatusGatewayTimeout
	case errors.Is(err, tmdb.ErrInvalidResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("request_id", RequestID(r.Context())).Msg("Request failed")
	}
	respondError(w, r, status, err.Error())
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, RequestID: RequestID(r.Context())})
}
