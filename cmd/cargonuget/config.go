// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cargo-nuget/internal/config"
	"cargo-nuget/internal/issue"
)

// newConfigCommand creates the `cargo-nuget config` command tree.
func newConfigCommand(app *App, s *session) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cargo-nuget configuration",
		Long: `Manage cargo-nuget configuration.

Configuration is stored in:
  - Linux: ~/.config/cargo-nuget/config.cue
  - macOS: ~/Library/Application Support/cargo-nuget/config.cue
  - Windows: %APPDATA%\cargo-nuget\config.cue

CARGO_NUGET_* environment variables override the file, for example
CARGO_NUGET_CARGO_RELEASE=true. Command-line flags override both.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.Context(), app, s)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(app, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := s.configPath
			if path == "" {
				var err error
				if path, err = config.ConfigFilePath(); err != nil {
					return err
				}
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, s *session) error {
	loaded, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: s.configPath})
	if err != nil {
		if s.verbose {
			if rendered, renderErr := issue.Get(issue.ConfigLoadFailedId).Render(issueStyle); renderErr == nil {
				fmt.Fprint(app.stderr, rendered)
			}
		}
		return err
	}

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if loaded.Path != "" {
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Config file"), loaded.Path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	cfg := loaded.Config
	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("nupkg_dir"), valueOrNone(cfg.NupkgDir, "(working directory)"))
	fmt.Fprintf(w, "%s:\n", KeyStyle.Render("cargo"))
	fmt.Fprintf(w, "  binary: %s\n", SuccessStyle.Render(cfg.Cargo.Binary.String()))
	fmt.Fprintf(w, "  release: %s\n", SuccessStyle.Render(fmt.Sprintf("%v", cfg.Cargo.Release)))
	fmt.Fprintf(w, "  args: %s\n", valueOrNone(cfg.Cargo.Args.String(), "(none)"))
	fmt.Fprintf(w, "%s:\n", KeyStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", SuccessStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func valueOrNone(v, none string) string {
	if v == "" {
		return SubtitleStyle.Render(none)
	}
	return SuccessStyle.Render(v)
}

func initConfig(app *App, force bool) error {
	path, err := config.CreateDefaultConfig(force)
	if errors.Is(err, config.ErrConfigExists) {
		fmt.Fprintf(app.stdout, "%s %s\n", WarningStyle.Render("Config file already exists at"), path)
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("Use --force to replace it with the defaults."))
		return nil
	}
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("create configuration").
			WithResource(path).
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Created config file:"), path)
	return nil
}
