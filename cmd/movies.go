package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/matchmaker/browse"
	"github.com/s0up4200/matchmaker/display"
	"github.com/s0up4200/matchmaker/tmdb"
)

var (
	genreNames   []string
	yearMin      int
	yearMax      int
	runtimeMin   int
	runtimeMax   int
	minRating    float64
	includeAdult bool
	sortBy       string
	pages        int
	byPreset     bool
)

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover movies matching genre, year, runtime and rating criteria",
	Long: `Discover movies on TMDB. All criteria are optional; without any the most
popular titles are listed. Genres are given by name and matched case-insensitively.

Examples:
  matchmaker discover --genre "Science Fiction" --year-min 2010 --sort rating
  matchmaker discover -g Drama -g Crime --runtime-max 120 --pages 3
  matchmaker discover --genre Horror --filter 'ImdbScore >= 7' -o json`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <title>",
	Short: "Search movies by title",
	Long: `Search TMDB by title. Adult titles are always excluded. An empty title
lists popular movies instead.`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(searchCmd)

	discoverCmd.Flags().StringSliceVarP(&genreNames, "genre", "g", nil, "genre name, repeatable or comma-separated")
	discoverCmd.Flags().IntVar(&yearMin, "year-min", 0, "earliest release year")
	discoverCmd.Flags().IntVar(&yearMax, "year-max", 0, "latest release year")
	discoverCmd.Flags().IntVar(&runtimeMin, "runtime-min", 0, "minimum runtime in minutes")
	discoverCmd.Flags().IntVar(&runtimeMax, "runtime-max", 0, "maximum runtime in minutes")
	discoverCmd.Flags().Float64Var(&minRating, "min-rating", 0, "minimum average vote (0-10)")
	discoverCmd.Flags().BoolVar(&includeAdult, "adult", false, "include adult titles")
	discoverCmd.Flags().StringVarP(&sortBy, "sort", "s", "", fmt.Sprintf("sort order: %s (default from config)", sortKeyList()))

	for _, c := range []*cobra.Command{discoverCmd, searchCmd} {
		c.Flags().IntVar(&pages, "pages", 0, "number of result pages to load (default from config)")
		c.Flags().BoolVar(&byPreset, "by-preset", false, "group the results by every configured preset")
		addFilterFlags(c)
	}
}

func runDiscover(cmd *cobra.Command, args []string) error {
	criteria, err := criteriaFromFlags()
	if err != nil {
		return err
	}

	client, err := catalogClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	session := browse.NewSession(client, logger)

	logger.Debug().Strs("genres", criteria.Genres).Str("sort", string(criteria.SortBy)).Msg("Discovering movies")

	if err := session.Discover(ctx, criteria); err != nil {
		return fmt.Errorf("discover failed: %w", err)
	}

	return finishBrowse(ctx, cmd, session)
}

func runSearch(cmd *cobra.Command, args []string) error {
	client, err := catalogClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	session := browse.NewSession(client, logger)
	query := strings.Join(args, " ")

	logger.Debug().Str("query", query).Msg("Searching movies")

	if err := session.Search(ctx, query); err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return finishBrowse(ctx, cmd, session)
}

// criteriaFromFlags builds discovery criteria, falling back to the configured sort order
func criteriaFromFlags() (tmdb.Criteria, error) {
	sort := sortBy
	if sort == "" {
		sort = cfg.Browse.Sort
	}

	key, err := tmdb.ParseSortKey(sort)
	if err != nil {
		return tmdb.Criteria{}, err
	}

	criteria := tmdb.Criteria{
		Genres:         genreNames,
		ReleaseYearMin: yearMin,
		ReleaseYearMax: yearMax,
		RuntimeMin:     runtimeMin,
		RuntimeMax:     runtimeMax,
		MinRating:      minRating,
		IncludeAdult:   includeAdult,
		SortBy:         key,
	}
	if err := criteria.Validate(); err != nil {
		return tmdb.Criteria{}, err
	}
	return criteria, nil
}

// finishBrowse loads the remaining pages, applies filters and prints the results
func finishBrowse(ctx context.Context, cmd *cobra.Command, session *browse.Session) error {
	want := pages
	if want <= 0 {
		want = cfg.Browse.Pages
	}

	for loaded := 1; loaded < want && session.State().HasMore; loaded++ {
		if err := session.LoadMore(ctx); err != nil {
			return fmt.Errorf("failed to load page %d: %w", loaded+1, err)
		}
	}

	state := session.State()
	logger.Debug().
		Int("movies", len(state.Movies)).
		Int("page", state.CurrentPage).
		Bool("has_more", state.HasMore).
		Msg("Browse finished")

	movies, err := applyFilters(ctx, state.Movies)
	if err != nil {
		return err
	}

	if byPreset {
		return renderByPreset(ctx, cmd, movies)
	}
	return renderMovies(cmd, movies)
}

// renderByPreset prints the results once per configured preset
func renderByPreset(ctx context.Context, cmd *cobra.Command, movies []tmdb.Movie) error {
	names := filters.ListFilters()
	if len(names) == 0 {
		return fmt.Errorf("no filter presets configured, add some under filter.presets")
	}

	groups, err := filters.EvaluateAll(ctx, movies)
	if err != nil {
		return err
	}

	format, err := display.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	if format != display.FormatTable {
		return display.Encode(cmd.OutOrStdout(), format, groups)
	}

	formatter := display.NewConsoleFormatter()
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "Preset %s:\n", name)
		fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatMovieList(groups[name], display.FormatOptions{ShowDetails: showDetails}))
	}
	return nil
}

func sortKeyList() string {
	keys := make([]string, 0, len(tmdb.SortKeys()))
	for _, k := range tmdb.SortKeys() {
		keys = append(keys, string(k))
	}
	return strings.Join(keys, ", ")
}

// applyFilters runs the preset and then the ad hoc expression over the results
func applyFilters(ctx context.Context, movies []tmdb.Movie) ([]tmdb.Movie, error) {
	var err error
	if preset != "" {
		if movies, err = filters.EvaluateFilter(ctx, preset, movies); err != nil {
			return nil, err
		}
	}
	if movies, err = filters.Apply(ctx, filterExpr, movies); err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return movies, nil
}

func renderMovies(cmd *cobra.Command, movies []tmdb.Movie) error {
	format, err := display.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	if format != display.FormatTable {
		if movies == nil {
			movies = []tmdb.Movie{}
		}
		return display.Encode(cmd.OutOrStdout(), format, movies)
	}

	out := display.NewConsoleFormatter().FormatMovieList(movies, display.FormatOptions{
		ShowDetails:  showDetails,
		ShowSynopsis: showDetails,
	})
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
