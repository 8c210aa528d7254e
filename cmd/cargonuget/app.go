// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"cargo-nuget/internal/config"
	"cargo-nuget/internal/pipeline"
	"cargo-nuget/pkg/cargo"
)

// ErrLibPathRequired is returned when --skip-build is given without --lib-path.
var ErrLibPathRequired = errors.New("--skip-build requires --lib-path")

type (
	// App wires CLI services and shared dependencies. Every Cobra handler
	// receives the App and reaches its collaborators through it.
	App struct {
		Config   ConfigProvider
		Builders BuilderFactory
		Clock    pipeline.Clock
		stdout   io.Writer
		stderr   io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   ConfigProvider
		Builders BuilderFactory
		Clock    pipeline.Clock
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Loaded, error)
	}

	// BuildRequest is the resolved build configuration of one pack run.
	BuildRequest struct {
		Binary    string
		Release   bool
		ExtraArgs []string
		SkipBuild bool
		LibPath   string
		// Output receives cargo's stdout and stderr.
		Output io.Writer
	}

	// BuilderFactory creates the Builder for one pack run.
	BuilderFactory interface {
		NewBuilder(req BuildRequest) (cargo.Builder, error)
	}

	// BuilderFactoryFunc adapts a function to BuilderFactory.
	BuilderFactoryFunc func(req BuildRequest) (cargo.Builder, error)

	defaultBuilderFactory struct{}

	// session holds what the root command resolved for the current invocation.
	session struct {
		verbose    bool
		configPath string
		cfg        *config.Config
		logger     *log.Logger
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Builders == nil {
		deps.Builders = defaultBuilderFactory{}
	}

	return &App{
		Config:   deps.Config,
		Builders: deps.Builders,
		Clock:    deps.Clock,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}
}

// NewBuilder implements BuilderFactory.
func (f BuilderFactoryFunc) NewBuilder(req BuildRequest) (cargo.Builder, error) {
	return f(req)
}

// NewBuilder returns a PrebuiltBuilder for --skip-build and a CargoBuilder
// otherwise.
func (defaultBuilderFactory) NewBuilder(req BuildRequest) (cargo.Builder, error) {
	if req.SkipBuild {
		if req.LibPath == "" {
			return nil, ErrLibPathRequired
		}
		return cargo.PrebuiltBuilder{Path: req.LibPath}, nil
	}

	b := cargo.NewCargoBuilder(req.Binary, nil)
	b.Release = req.Release
	b.ExtraArgs = req.ExtraArgs
	b.Stdout = req.Output
	b.Stderr = req.Output
	return b, nil
}

// newLogger creates the CLI logger: Debug when verbose, Info otherwise.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}
