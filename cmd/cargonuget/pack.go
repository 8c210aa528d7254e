// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"cargo-nuget/internal/config"
	"cargo-nuget/internal/pipeline"
	"cargo-nuget/pkg/cargo"
)

// packFlags are the pack command's flag values. Flags that the user did not
// set fall back to the configuration.
type packFlags struct {
	manifestPath string
	nupkgDir     string
	release      bool
	cargoArgs    string
	skipBuild    bool
	libPath      string
}

func newPackCommand(app *App, s *session) *cobra.Command {
	var flags packFlags

	packCmd := &cobra.Command{
		Use:   "pack",
		Short: "Build the crate and write a .nupkg",
		Long: `Build the crate's dynamic library and package it as a NuGet package.

The package is written to <nupkg-dir>/<name>-<version>.nupkg, replacing any
existing file of the same name.`,
		Example: `  cargo-nuget pack
  cargo-nuget pack --manifest-path crates/native/Cargo.toml --nupkg-dir dist
  cargo-nuget pack --release --cargo-args "--features simd"
  cargo-nuget pack --skip-build --lib-path target/release/libfoo.so`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, opts, err := flags.resolve(cmd, s.cfg)
			if err != nil {
				return err
			}
			req.Output = app.stderr
			return runPack(cmd, app, s, req, opts)
		},
	}

	f := packCmd.Flags()
	f.StringVar(&flags.manifestPath, "manifest-path", "", "path to Cargo.toml (default \""+cargo.ManifestFileName+"\")")
	f.StringVar(&flags.nupkgDir, "nupkg-dir", "", "directory to write the .nupkg to (default: config nupkg_dir, then the working directory)")
	f.BoolVar(&flags.release, "release", false, "build with --release")
	f.StringVar(&flags.cargoArgs, "cargo-args", "", "extra shell-quoted arguments for cargo build")
	f.BoolVar(&flags.skipBuild, "skip-build", false, "package a library that is already built")
	f.StringVar(&flags.libPath, "lib-path", "", "path of the prebuilt library (with --skip-build)")
	packCmd.MarkFlagsRequiredTogether("skip-build", "lib-path")
	packCmd.MarkFlagsMutuallyExclusive("skip-build", "cargo-args")

	return packCmd
}

// resolve merges flags over cfg.
func (f *packFlags) resolve(cmd *cobra.Command, cfg *config.Config) (BuildRequest, pipeline.Options, error) {
	changed := cmd.Flags().Changed

	nupkgDir := cfg.NupkgDir
	if changed("nupkg-dir") {
		nupkgDir = f.nupkgDir
	}

	release := cfg.Cargo.Release
	if changed("release") {
		release = f.release
	}

	cargoArgs := cfg.Cargo.Args
	if changed("cargo-args") {
		cargoArgs = config.CargoArgs(f.cargoArgs)
	}
	extraArgs, err := cargoArgs.Fields()
	if err != nil {
		return BuildRequest{}, pipeline.Options{}, err
	}

	req := BuildRequest{
		Binary:    string(cfg.Cargo.Binary),
		Release:   release,
		ExtraArgs: extraArgs,
		SkipBuild: f.skipBuild,
		LibPath:   f.libPath,
	}
	opts := pipeline.Options{
		ManifestPath: f.manifestPath,
		NupkgDir:     nupkgDir,
	}
	return req, opts, nil
}

func runPack(cmd *cobra.Command, app *App, s *session, req BuildRequest, opts pipeline.Options) error {
	builder, err := app.Builders.NewBuilder(req)
	if err != nil {
		return err
	}

	runnerOpts := []pipeline.Option{pipeline.WithLogger(s.logger)}
	if app.Clock != nil {
		runnerOpts = append(runnerOpts, pipeline.WithClock(app.Clock))
	}

	res, err := pipeline.New(builder, runnerOpts...).Run(cmd.Context(), opts)
	if err != nil {
		renderPackFailure(app.stderr, err, s.verbose)
		cmd.SilenceErrors = true
		return &ExitError{Code: 1, Err: err}
	}

	renderPackSuccess(app.stdout, res)
	return nil
}
