// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"cargo-nuget/internal/config"
	"cargo-nuget/internal/issue"
)

//nolint:gochecknoglobals // Set via -ldflags
var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Package a Rust library crate as a NuGet package",
		Long: TitleStyle.Render(config.AppName) + SubtitleStyle.Render(" - Package a Rust library crate as a NuGet package") + `

cargo-nuget reads a crate's Cargo.toml, builds its dynamic library with
cargo, and writes <id>-<version>.nupkg with the library placed under
runtimes/<rid>/native/ for .NET to load.

` + SubtitleStyle.Render("Examples:") + `
  cargo-nuget pack                          Build and package the crate in the current directory
  cargo-nuget pack --release --nupkg-dir out
  cargo-nuget inspect foo-1.2.3.nupkg       List a package's contents
  cargo-nuget config show                   Show the effective configuration`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.init(cmd.Context(), app)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&s.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/cargo-nuget/config.cue)")

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(newPackCommand(app, s))
	rootCmd.AddCommand(newInspectCommand(app))
	rootCmd.AddCommand(newConfigCommand(app, s))

	return rootCmd
}

// init loads the configuration and creates the logger. A broken config file
// is reported and defaults are used.
func (s *session) init(ctx context.Context, app *App) error {
	loaded, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: s.configPath})
	if err != nil {
		fmt.Fprintln(app.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, s.verbose))
		s.cfg = config.DefaultConfig()
	} else {
		s.cfg = loaded.Config
	}

	if !s.verbose {
		s.verbose = s.cfg.UI.Verbose
	}
	s.logger = newLogger(app.stderr, s.verbose)
	return nil
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors list their suggestions, and the full chain when verbose.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
