package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const releaseRepository = "s0up4200/matchmaker"

var (
	checkOnly   bool
	skipConfirm bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build time",
	Args:  cobra.NoArgs,
	// No config is needed to print the version.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "matchmaker %s (built %s)\n", appVersion, appBuilt)
		return err
	},
}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update matchmaker to the latest release",
	Long: `Check GitHub for a newer release and replace the running binary with it.

Development builds cannot be updated; install a tagged release first.`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "only report whether an update is available")
	updateCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "update without asking for confirmation")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	current, err := semver.ParseTolerant(appVersion)
	if err != nil {
		return fmt.Errorf("version %q is not a release build and cannot be updated", appVersion)
	}

	logger.Info().Str("current", current.String()).Msg("Checking for updates...")

	release, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(releaseRepository))
	if err != nil {
		return fmt.Errorf("failed to detect latest release: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", releaseRepository)
	}

	latest, err := semver.ParseTolerant(release.Version())
	if err != nil {
		return fmt.Errorf("latest release has an invalid version %q: %w", release.Version(), err)
	}

	if !latest.GT(current) {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ matchmaker %s is up to date\n", current)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "New version available: %s → %s\n", current, latest)
	if notes := strings.TrimSpace(release.ReleaseNotes); notes != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n\n", notes)
	}

	if checkOnly {
		return nil
	}

	if !skipConfirm {
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			return fmt.Errorf("stdin is not a terminal, pass --yes to update without confirmation")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Update now? [y/N]: ")

		scanner := bufio.NewScanner(cmd.InOrStdin())
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Update cancelled.")
			return nil
		}
		if strings.ToLower(strings.TrimSpace(scanner.Text())) != "y" {
			fmt.Fprintln(cmd.OutOrStdout(), "Update cancelled.")
			return nil
		}
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, release.AssetURL, release.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	logger.Info().Str("version", latest.String()).Str("path", exe).Msg("Updated")
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated to %s\n", latest)
	return nil
}
