package filter

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/s0up4200/matchmaker/tmdb"
)

// Manager holds named filter presets and applies them to result lists
type Manager struct {
	compiler  Compiler
	evaluator *ConcurrentEvaluator
	filters   map[string]CompiledFilter
	mu        sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// WithEvaluator sets a custom evaluator
func WithEvaluator(evaluator *ConcurrentEvaluator) ManagerOption {
	return func(m *Manager) {
		m.evaluator = evaluator
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		compiler:  NewExprCompiler(WithCache(DefaultCacheSize)),
		evaluator: NewConcurrentEvaluator(),
		filters:   make(map[string]CompiledFilter),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// presetKey folds preset names; config keys arrive lowercased from viper.
func presetKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RegisterFilter registers a preset or replaces an existing one. Names are
// case-insensitive.
func (m *Manager) RegisterFilter(name, expression string) error {
	filter, err := m.compiler.Compile(expression)
	if err != nil {
		return fmt.Errorf("failed to compile filter '%s': %w", name, err)
	}

	m.mu.Lock()
	m.filters[presetKey(name)] = filter
	m.mu.Unlock()

	return nil
}

// RegisterFilters registers several presets. Nothing is registered if any
// expression fails to compile.
func (m *Manager) RegisterFilters(filters map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(filters))

	for name, expression := range filters {
		filter, err := m.compiler.Compile(expression)
		if err != nil {
			return fmt.Errorf("failed to compile filter '%s': %w", name, err)
		}
		compiled[presetKey(name)] = filter
	}

	m.mu.Lock()
	for name, filter := range compiled {
		m.filters[name] = filter
	}
	m.mu.Unlock()

	return nil
}

// GetFilter returns a preset by name
func (m *Manager) GetFilter(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	filter, exists := m.filters[presetKey(name)]
	m.mu.RUnlock()
	return filter, exists
}

// ListFilters returns the preset names in ascending order
func (m *Manager) ListFilters() []string {
	m.mu.RLock()
	names := make([]string, 0, len(m.filters))
	for name := range m.filters {
		names = append(names, name)
	}
	m.mu.RUnlock()

	sort.Strings(names)
	return names
}

// EvaluateFilter applies a registered preset
func (m *Manager) EvaluateFilter(ctx context.Context, name string, movies []tmdb.Movie) ([]tmdb.Movie, error) {
	filter, exists := m.GetFilter(name)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}

	return m.evaluator.Evaluate(ctx, filter, movies)
}

// Apply compiles expression and applies it. An empty expression keeps every movie.
func (m *Manager) Apply(ctx context.Context, expression string, movies []tmdb.Movie) ([]tmdb.Movie, error) {
	if expression == "" {
		return movies, nil
	}

	filter, err := m.compiler.Compile(expression)
	if err != nil {
		return nil, err
	}

	return m.evaluator.Evaluate(ctx, filter, movies)
}

// EvaluateAll applies every registered preset. The result is keyed by preset name.
func (m *Manager) EvaluateAll(ctx context.Context, movies []tmdb.Movie) (map[string][]tmdb.Movie, error) {
	m.mu.RLock()
	filters := make(map[string]Filter, len(m.filters))
	for name, filter := range m.filters {
		filters[name] = filter
	}
	m.mu.RUnlock()

	return m.evaluator.EvaluateBatch(ctx, filters, movies)
}
