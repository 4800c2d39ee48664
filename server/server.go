package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/s0up4200/matchmaker/filter"
	"github.com/s0up4200/matchmaker/tmdb"
)

// Server exposes the movie catalog as a read-only JSON API
type Server struct {
	api        tmdb.API
	filters    *filter.Manager
	logger     zerolog.Logger
	httpServer *http.Server
}

// New creates a server listening on addr
func New(api tmdb.API, filters *filter.Manager, addr string, logger zerolog.Logger) *Server {
	if filters == nil {
		filters = filter.NewManager()
	}

	s := &Server{
		api:     api,
		filters: filters,
		logger:  logger.With().Str("component", "server").Logger(),
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
	return s
}

// Handler returns the router with all routes and middleware attached
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/discover", s.discover).Methods(http.MethodGet)
	api.HandleFunc("/search", s.search).Methods(http.MethodGet)
	api.HandleFunc("/movies/{id}", s.movie).Methods(http.MethodGet)
	api.HandleFunc("/genres", s.genres).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "not found")
	})

	// Wrapped outside the router so unmatched routes get a request id too.
	return requestIDMiddleware(s.loggingMiddleware(router))
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("Starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping server")
	return s.httpServer.Shutdown(ctx)
}
