package browse

import (
	"slices"

	"github.com/s0up4200/matchmaker/tmdb"
)

// PageSize is the number of results TMDB returns per page. A shorter page
// means there is nothing left to load.
const PageSize = 20

// Status is the phase a Session is in.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// LastQuery is the request LoadMore replays. It is one of NoQuery,
// CriteriaQuery or TextQuery.
type LastQuery interface {
	isLastQuery()
}

// NoQuery means nothing has been requested since the last reset.
type NoQuery struct{}

// CriteriaQuery replays a discover request.
type CriteriaQuery struct {
	Criteria tmdb.Criteria
}

// TextQuery replays a title search.
type TextQuery struct {
	Text string
}

func (NoQuery) isLastQuery()       {}
func (CriteriaQuery) isLastQuery() {}
func (TextQuery) isLastQuery()     {}

// State is an observable snapshot of a Session.
type State struct {
	Movies      []tmdb.Movie
	Status      Status
	Error       string
	HasMore     bool
	CurrentPage int
	LastQuery   LastQuery
}

// Loading reports whether a request is in flight.
func (s State) Loading() bool {
	return s.Status == StatusLoading
}

func initialState() State {
	return State{
		Status:      StatusIdle,
		HasMore:     true,
		CurrentPage: 1,
		LastQuery:   NoQuery{},
	}
}

func (s State) clone() State {
	out := s
	out.Movies = slices.Clone(s.Movies)
	if q, ok := s.LastQuery.(CriteriaQuery); ok {
		q.Criteria.Genres = slices.Clone(q.Criteria.Genres)
		out.LastQuery = q
	}
	return out
}
