// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"cargo-nuget/pkg/cargo"
	"cargo-nuget/pkg/nuget"
)

const (
	// StageReadManifest parses Cargo.toml.
	StageReadManifest Stage = "reading cargo manifest"
	// StageBuild compiles the crate's library.
	StageBuild Stage = "building Rust lib"
	// StageSpec derives and serializes the nuspec.
	StageSpec Stage = "building nuspec"
	// StagePack zips the nuspec and library.
	StagePack Stage = "building nupkg"
	// StageSave writes the package to disk.
	StageSave Stage = "saving nupkg"
)

var (
	// ErrNoBuilder is returned by Run when the Runner has no Builder.
	ErrNoBuilder = errors.New("pipeline has no builder")
	// ErrNoBuildOutput is returned when a Builder reports success without output.
	ErrNoBuildOutput = errors.New("builder returned no output")
)

type (
	// Stage names one step of the packaging pipeline. The value is the label
	// shown to users when the step fails.
	Stage string

	// StageError attributes a failure to the stage that produced it.
	StageError struct {
		Stage Stage
		Err   error
	}

	// Clock supplies the modification time recorded in package entries.
	Clock interface {
		Now() time.Time
	}

	// Options are the per-run inputs.
	Options struct {
		// ManifestPath is the crate manifest (cargo.ManifestFileName when empty).
		ManifestPath string
		// NupkgDir is the output directory (nuget.DefaultOutputDir when empty).
		NupkgDir string
	}

	// Result holds every stage's output of a successful run.
	Result struct {
		Config *cargo.Config
		Build  *cargo.BuildOutput
		Nuspec *nuget.Nuspec
		Nupkg  *nuget.Nupkg
		Saved  *nuget.SaveResult
	}

	// Runner drives the stages in order. It keeps no state between runs, so
	// one Runner may be used for any number of runs.
	Runner struct {
		builder cargo.Builder
		logger  *log.Logger
		clock   Clock
	}

	// Option configures a Runner.
	Option func(*Runner)

	systemClock struct{}
)

// Error implements the error interface.
func (e *StageError) Error() string {
	return string(e.Stage) + ": " + e.Err.Error()
}

// Unwrap returns the stage's own error.
func (e *StageError) Unwrap() error { return e.Err }

// StageOf reports which stage err came from, if any.
func StageOf(err error) (Stage, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}
	return "", false
}

func (systemClock) Now() time.Time { return time.Now() }

// WithLogger sets the logger stages report progress to.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock sets the clock used for package entry timestamps.
func WithClock(c Clock) Option {
	return func(r *Runner) {
		if c != nil {
			r.clock = c
		}
	}
}

// New creates a Runner that compiles crates with builder.
func New(builder cargo.Builder, opts ...Option) *Runner {
	r := &Runner{
		builder: builder,
		logger:  log.New(io.Discard),
		clock:   systemClock{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads the manifest, builds the library, then generates, packs and saves
// the package. The first failing stage stops the run and is reported as a
// *StageError; nothing is written to disk unless every earlier stage succeeded.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if r.builder == nil {
		return nil, ErrNoBuilder
	}

	manifestPath := opts.ManifestPath
	if manifestPath == "" {
		manifestPath = cargo.ManifestFileName
	}

	res := &Result{}

	err := r.stage(StageReadManifest, func() (err error) {
		res.Config, err = cargo.ReadManifest(manifestPath)
		if err != nil {
			return err
		}
		for _, w := range res.Config.Warnings {
			r.logger.Warn(w, "manifest", res.Config.ManifestPath)
		}
		r.logger.Info("read manifest", "crate", res.Config.Name, "version", res.Config.Version)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(StageBuild, func() (err error) {
		res.Build, err = r.builder.Build(ctx, res.Config)
		if err != nil {
			return err
		}
		if res.Build == nil {
			return ErrNoBuildOutput
		}
		r.logger.Info("built library", "target", res.Build.Target, "path", res.Build.Path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(StageSpec, func() (err error) {
		res.Nuspec, err = nuget.Spec(nuget.SpecArgsFromCargo(res.Config))
		if err != nil {
			return err
		}
		r.logger.Debug("generated nuspec", "id", res.Nuspec.ID, "xml", res.Nuspec.XML)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(StagePack, func() error {
		args, err := nuget.PackArgsFromBuild(res.Nuspec, res.Build)
		if err != nil {
			return err
		}
		res.Nupkg, err = nuget.Pack(args, nuget.WithModTime(r.clock.Now()))
		if err != nil {
			return err
		}
		r.logger.Info("packed", "name", res.Nupkg.Name, "size", res.Nupkg.Buf.Len())
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(StageSave, func() (err error) {
		res.Saved, err = nuget.Save(nuget.SaveArgsFor(opts.NupkgDir, res.Nupkg))
		if err != nil {
			return err
		}
		r.logger.Info("saved", "path", res.Saved.Path, "digest", res.Saved.Digest)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (r *Runner) stage(s Stage, fn func() error) error {
	r.logger.Debug("stage started", "stage", s)
	start := r.clock.Now()

	if err := fn(); err != nil {
		r.logger.Debug("stage failed", "stage", s, "err", err)
		return &StageError{Stage: s, Err: err}
	}

	r.logger.Debug("stage finished", "stage", s, "elapsed", r.clock.Now().Sub(start))
	return nil
}
