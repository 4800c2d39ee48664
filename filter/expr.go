package filter

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/matchmaker/tmdb"
)

// DefaultCacheSize is the number of compiled expressions kept by NewManager
const DefaultCacheSize = 100

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// ExprCompilerOption configures an ExprCompiler
type ExprCompilerOption func(*ExprCompiler)

// WithCache keeps up to size compiled expressions
func WithCache(size int) ExprCompilerOption {
	return func(c *ExprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds helper functions available to every expression
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *ExprCompiler) {
		maps.Copy(c.helpers, funcs)
	}
}

// ExprCompiler compiles expressions against the movie environment.
//
// Fields: Title, Year, ImdbScore, Genres, Director, Writer, Starring, Rating,
// Duration, Minutes. Helpers: hasGenre, starring, directedBy, containsFold,
// hasPrefixFold, hasSuffixFold, lower, upper. The expr operators contains,
// startsWith and endsWith remain available and are case-sensitive.
type ExprCompiler struct {
	helpers map[string]any
	cache   *lruCache[CompiledFilter]
}

var _ Compiler = (*ExprCompiler)(nil)

// NewExprCompiler creates an expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) *ExprCompiler {
	c := &ExprCompiler{
		helpers: make(map[string]any),
	}
	addStringHelpers(c.helpers)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles an expression into a filter. Expressions must produce a bool.
func (c *ExprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty expression", Position: -1}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Type-check against a zero movie so unknown fields fail here, not per movie.
	program, err := expr.Compile(expression,
		expr.Env(c.environment(tmdb.Movie{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, newCompilationError(expression, err)
	}

	filter := &exprFilter{expression: expression, program: program, helpers: c.helpers}
	if c.cache != nil {
		c.cache.Put(expression, filter)
	}
	return filter, nil
}

func (c *ExprCompiler) environment(movie tmdb.Movie) map[string]any {
	env := movieEnvironment(movie)
	maps.Copy(env, c.helpers)
	return env
}

// Evaluate reports whether movie matches. Runtime errors count as no match.
func (f *exprFilter) Evaluate(movie tmdb.Movie) bool {
	ok, err := f.Match(movie)
	return err == nil && ok
}

// Match runs the program against movie
func (f *exprFilter) Match(movie tmdb.Movie) (bool, error) {
	env := movieEnvironment(movie)
	maps.Copy(env, f.helpers)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, MovieTitle: movie.Title, Err: err}
	}
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

func addStringHelpers(env map[string]any) {
	// contains, startsWith and endsWith are expr operators, so the
	// case-insensitive variants get their own names.
	env["containsFold"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["hasPrefixFold"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["hasSuffixFold"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
}

// movieEnvironment exposes a movie's fields and the helpers bound to it.
// Absent values appear as zero values; list fields are never nil.
func movieEnvironment(movie tmdb.Movie) map[string]any {
	env := make(map[string]any, 24)

	env["Title"] = movie.Title
	env["Year"] = movie.Year
	env["ImdbScore"] = movie.Score()
	env["Genres"] = nonNil(movie.Genres)
	env["Director"] = movie.Director
	env["Writer"] = movie.Writer
	env["Starring"] = nonNil(movie.Starring)
	env["Rating"] = movie.Rating
	env["Duration"] = movie.Duration
	env["Minutes"] = durationMinutes(movie.Duration)

	env["hasGenre"] = movie.HasGenre
	env["starring"] = createStarringFunc(movie.Starring)
	env["directedBy"] = func(name string) bool {
		return movie.Director != "" && strings.EqualFold(movie.Director, name)
	}

	return env
}

func createStarringFunc(cast []string) func(string) bool {
	lower := make([]string, len(cast))
	for i, name := range cast {
		lower[i] = strings.ToLower(name)
	}
	return func(name string) bool {
		return slices.Contains(lower, strings.ToLower(name))
	}
}

// durationMinutes converts an "Hh Mm" duration back to minutes, 0 when absent.
func durationMinutes(duration string) int {
	var hours, minutes int
	if _, err := fmt.Sscanf(duration, "%dh %dm", &hours, &minutes); err != nil {
		return 0
	}
	return hours*60 + minutes
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
