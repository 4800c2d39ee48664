package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/s0up4200/matchmaker/config"
	"github.com/s0up4200/matchmaker/filter"
	"github.com/s0up4200/matchmaker/tmdb"
)

var (
	cfgFile    string
	cfg        *config.Config
	logger     zerolog.Logger
	logFile    *lumberjack.Logger
	catalog    *tmdb.Client
	filters    *filter.Manager
	appVersion = "dev"
	appBuilt   = "unknown"

	// Command flags
	filterExpr   string
	preset       string
	outputFormat string
	showDetails  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "matchmaker",
	Short: "Browse and search the TMDB movie catalog",
	Long: `matchmaker is a CLI for finding movies on TMDB. Discover titles by genre,
release year, runtime and rating, search by title, look up full details with
cast and crew, or serve the same catalog as a small JSON API.`,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
}

// SetVersion records the build information injected at link time
func SetVersion(version, buildTime string) {
	appVersion = version
	appBuilt = buildTime
	rootCmd.Version = version
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json or yaml")
}

// addFilterFlags registers the result post-filter flags on commands that list movies
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression applied to the results")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	cmd.Flags().BoolVar(&showDetails, "details", false, "show genres and synopsis for each movie")
}

// initializeApp loads the configuration and sets up logging and filters. The
// TMDB client is built on first use so commands like version work without a key.
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)
	catalog = nil

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}
	if len(cfg.Filter.Presets) > 0 {
		logger.Debug().Strs("presets", filters.ListFilters()).Msg("Loaded filter presets")
	}

	return nil
}

func closeApp(cmd *cobra.Command, args []string) error {
	if logFile != nil {
		return logFile.Close()
	}
	return nil
}

// catalogClient returns the TMDB client, creating it from config on first call
func catalogClient() (*tmdb.Client, error) {
	if catalog != nil {
		return catalog, nil
	}

	client, err := tmdb.NewClient(cfg.TMDB.APIKey, logger,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithImageBaseURL(cfg.TMDB.ImageBaseURL),
		tmdb.WithLanguage(cfg.TMDB.Language),
		tmdb.WithTimeout(cfg.TMDB.Timeout),
		tmdb.WithRateLimit(cfg.TMDB.RequestsPerSecond),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create TMDB client: %w", err)
	}

	catalog = client
	return catalog, nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var console io.Writer
	if cfg.Format == "json" {
		console = os.Stderr
	} else {
		console = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
		}
	}

	logFile = nil
	output := console
	if cfg.File != "" {
		logFile = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		}
		output = zerolog.MultiLevelWriter(console, logFile)
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
