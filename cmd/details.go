package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/matchmaker/display"
)

// movieCmd represents the movie command
var movieCmd = &cobra.Command{
	Use:   "movie <id>",
	Short: "Show full details for a movie",
	Long:  `Show a single movie with runtime, certification, director, writer and top-billed cast.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runMovie,
}

// genresCmd represents the genres command
var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List the genre names accepted by discover",
	Args:  cobra.NoArgs,
	RunE:  runGenres,
}

func init() {
	rootCmd.AddCommand(movieCmd)
	rootCmd.AddCommand(genresCmd)
}

func runMovie(cmd *cobra.Command, args []string) error {
	client, err := catalogClient()
	if err != nil {
		return err
	}

	movie, err := client.GetDetails(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get movie %s: %w", args[0], err)
	}

	format, err := display.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	if format != display.FormatTable {
		return display.Encode(cmd.OutOrStdout(), format, movie)
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), display.NewConsoleFormatter().FormatMovieDetails(movie))
	return err
}

func runGenres(cmd *cobra.Command, args []string) error {
	client, err := catalogClient()
	if err != nil {
		return err
	}

	client.Initialize(cmd.Context())
	names := client.ListGenres()

	format, err := display.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	if format != display.FormatTable {
		return display.Encode(cmd.OutOrStdout(), format, names)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), display.NewConsoleFormatter().FormatGenres(names))
	return err
}
