package browse

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/matchmaker/tmdb"
)

// Source is the catalog a Session pages through. *tmdb.Client implements it.
type Source interface {
	Discover(ctx context.Context, criteria tmdb.Criteria) ([]tmdb.Movie, error)
	Search(ctx context.Context, query string, page int) ([]tmdb.Movie, error)
	GetDetails(ctx context.Context, id string) (tmdb.Movie, error)
	ListGenres() []string
}

var _ Source = (*tmdb.Client)(nil)

// Session tracks the results of a browsing session across discover, search,
// load-more and reset.
//
// Discover, Search and Reset are queued behind one another. LoadMore never
// waits: it is dropped when another request is still running.
type Session struct {
	source Source
	logger zerolog.Logger

	opMu sync.Mutex

	mu    sync.RWMutex
	state State
}

// NewSession creates an idle session over source.
func NewSession(source Source, logger zerolog.Logger) *Session {
	return &Session{
		source: source,
		logger: logger.With().Str("component", "browse").Logger(),
		state:  initialState(),
	}
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Movies returns the accumulated results.
func (s *Session) Movies() []tmdb.Movie {
	return s.State().Movies
}

// Discover replaces the results with the first page matching criteria. The
// criteria's page is ignored.
func (s *Session) Discover(ctx context.Context, criteria tmdb.Criteria) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	return s.discover(ctx, criteria)
}

func (s *Session) discover(ctx context.Context, criteria tmdb.Criteria) error {
	s.begin()

	movies, err := s.source.Discover(ctx, criteria.WithPage(1))
	if err != nil {
		s.fail(err)
		return err
	}

	s.replace(movies, CriteriaQuery{Criteria: criteria.WithPage(0)})
	return nil
}

// Search replaces the results with the first page of a title search. Blank
// text resets the session and discovers by popularity instead.
func (s *Session) Search(ctx context.Context, text string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		s.reset()
		return s.discover(ctx, tmdb.Criteria{SortBy: tmdb.SortPopularity})
	}

	s.begin()

	movies, err := s.source.Search(ctx, text, 1)
	if err != nil {
		s.fail(err)
		return err
	}

	s.replace(movies, TextQuery{Text: text})
	return nil
}

// LoadMore fetches the next page of the last query and appends it. It does
// nothing when a request is in flight or the last page was short.
func (s *Session) LoadMore(ctx context.Context) error {
	if !s.opMu.TryLock() {
		s.logger.Debug().Msg("Request in flight, skipping load more")
		return nil
	}
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.state.Status == StatusLoading || !s.state.HasMore {
		s.mu.Unlock()
		return nil
	}
	next := s.state.CurrentPage + 1
	query := s.state.LastQuery
	s.state.Status = StatusLoading
	s.state.Error = ""
	s.mu.Unlock()

	var (
		movies []tmdb.Movie
		err    error
	)
	switch q := query.(type) {
	case TextQuery:
		movies, err = s.source.Search(ctx, q.Text, next)
	case CriteriaQuery:
		movies, err = s.source.Discover(ctx, q.Criteria.WithPage(next))
	default:
		movies, err = s.source.Discover(ctx, tmdb.Criteria{Page: next})
	}
	if err != nil {
		s.fail(err)
		return err
	}

	s.mu.Lock()
	s.state.Movies = append(s.state.Movies, movies...)
	s.state.Status = StatusLoaded
	s.state.HasMore = len(movies) == PageSize
	s.state.CurrentPage = next
	total := len(s.state.Movies)
	s.mu.Unlock()

	s.logger.Debug().
		Int("page", next).
		Int("results", len(movies)).
		Int("total", total).
		Msg("Loaded more movies")

	return nil
}

// Reset returns the session to idle with no results.
func (s *Session) Reset() {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.reset()
}

func (s *Session) reset() {
	s.mu.Lock()
	s.state = initialState()
	s.mu.Unlock()
}

// Details fetches one movie with credits. It does not touch the session state.
func (s *Session) Details(ctx context.Context, id string) (tmdb.Movie, error) {
	return s.source.GetDetails(ctx, id)
}

// Genres lists the genre names known to the source.
func (s *Session) Genres() []string {
	return s.source.ListGenres()
}

func (s *Session) begin() {
	s.mu.Lock()
	s.state.Status = StatusLoading
	s.state.Error = ""
	s.mu.Unlock()
}

// fail keeps the existing results and last query.
func (s *Session) fail(err error) {
	s.mu.Lock()
	s.state.Status = StatusErrored
	s.state.Error = err.Error()
	s.mu.Unlock()

	s.logger.Error().Err(err).Msg("Movie request failed")
}

func (s *Session) replace(movies []tmdb.Movie, query LastQuery) {
	s.mu.Lock()
	s.state = State{
		Movies:      slices.Clone(movies),
		Status:      StatusLoaded,
		HasMore:     len(movies) == PageSize,
		CurrentPage: 1,
		LastQuery:   query,
	}
	s.mu.Unlock()

	s.logger.Debug().Int("results", len(movies)).Msg("Loaded movies")
}
