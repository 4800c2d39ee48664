package filter

import (
	"context"
	"runtime"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/matchmaker/tmdb"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of concurrent goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if workers > 0 {
			e.workers = workers
		}
	}
}

// WithBatchSize sets the list size below which evaluation stays sequential,
// and the minimum chunk handed to one goroutine
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// ConcurrentEvaluator evaluates filters over chunks of movies in parallel.
// Matches keep the input order.
type ConcurrentEvaluator struct {
	workers   int
	batchSize int
}

var _ Evaluator = (*ConcurrentEvaluator)(nil)

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workers:   runtime.GOMAXPROCS(0),
		batchSize: 100,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns the movies that match filter
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter Filter, movies []tmdb.Movie) ([]tmdb.Movie, error) {
	if len(movies) == 0 {
		return []tmdb.Movie{}, nil
	}

	if len(movies) < e.batchSize || e.workers == 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return evaluateChunk(filter, movies), nil
	}

	return e.evaluateConcurrent(ctx, filter, movies)
}

// EvaluateBatch runs several filters over the same movies
func (e *ConcurrentEvaluator) EvaluateBatch(ctx context.Context, filters map[string]Filter, movies []tmdb.Movie) (map[string][]tmdb.Movie, error) {
	results := make(map[string][]tmdb.Movie, len(filters))
	if len(filters) == 0 {
		return results, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for name, filter := range filters {
		g.Go(func() error {
			matches, err := e.Evaluate(gctx, filter, movies)
			if err != nil {
				return err
			}

			mu.Lock()
			results[name] = matches
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter Filter, movies []tmdb.Movie) ([]tmdb.Movie, error) {
	chunkSize := max(len(movies)/e.workers, e.batchSize)
	chunks := slices.Collect(slices.Chunk(movies, chunkSize))
	matches := make([][]tmdb.Movie, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			matches[i] = evaluateChunk(filter, chunk)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := slices.Concat(matches...)
	if result == nil {
		result = []tmdb.Movie{}
	}
	return result, nil
}

func evaluateChunk(filter Filter, movies []tmdb.Movie) []tmdb.Movie {
	matches := make([]tmdb.Movie, 0, len(movies)/4)
	for _, movie := range movies {
		if filter.Evaluate(movie) {
			matches = append(matches, movie)
		}
	}
	return matches
}
