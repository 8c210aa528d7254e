// SPDX-License-Identifier: MPL-2.0

package cargo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"mvdan.cc/sh/v3/shell"
)

// DefaultBinary is the cargo executable looked up on PATH.
const DefaultBinary = "cargo"

var (
	// ErrBuildFailed is the sentinel error wrapped by BuildFailedError.
	ErrBuildFailed = errors.New("cargo build failed")
	// ErrBuildArtifactMissing is returned when a build succeeded but the
	// expected dynamic library does not exist.
	ErrBuildArtifactMissing = errors.New("build artifact missing")
)

type (
	// Builder compiles a crate into a native library.
	Builder interface {
		Build(ctx context.Context, cfg *Config) (*BuildOutput, error)
	}

	// CommandSpec describes a process to run.
	CommandSpec struct {
		Name string
		Args []string
		Dir  string
	}

	// Runner executes a command and reports its exit code.
	Runner interface {
		Run(ctx context.Context, spec CommandSpec, stdout, stderr io.Writer) (int, error)
	}

	// OSRunner runs commands with os/exec.
	OSRunner struct{}

	// BuildFailedError reports a non-zero cargo exit.
	BuildFailedError struct {
		ExitCode int
		Err      error
	}

	// CargoBuilder builds the crate's library target with cargo.
	CargoBuilder struct {
		// Binary is the cargo executable (DefaultBinary when empty).
		Binary string
		// Release builds with --release and reads target/release.
		Release bool
		// ExtraArgs are appended to "cargo build --lib".
		ExtraArgs []string
		// Runner executes cargo (OSRunner when nil).
		Runner Runner
		// Stdout and Stderr receive cargo's output (discarded when nil).
		Stdout io.Writer
		Stderr io.Writer
		// GOOS selects library naming conventions (runtime.GOOS when empty).
		GOOS string
		// Getenv looks up CARGO_TARGET_DIR (os.Getenv when nil).
		Getenv func(string) string
	}

	// PrebuiltBuilder skips compilation and reports an existing library.
	PrebuiltBuilder struct {
		Path string
	}
)

// Run implements Runner.
func (OSRunner) Run(ctx context.Context, spec CommandSpec, stdout, stderr io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), err
	}
	if ctx.Err() != nil {
		return -1, ctx.Err()
	}
	return -1, err
}

// Error implements the error interface.
func (e *BuildFailedError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("cargo build failed with exit code %d", e.ExitCode)
	}
	return fmt.Sprintf("cargo build failed: %v", e.Err)
}

// Unwrap returns ErrBuildFailed and, when present, the runner error.
func (e *BuildFailedError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrBuildFailed}
	}
	return []error{ErrBuildFailed, e.Err}
}

// ParseExtraArgs splits a shell-quoted argument string into words,
// expanding environment variables the way a POSIX shell would.
func ParseExtraArgs(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	fields, err := shell.Fields(s, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("parse cargo args %q: %w", s, err)
	}
	return fields, nil
}

// NewCargoBuilder creates a CargoBuilder for the given cargo binary.
func NewCargoBuilder(binary string, runner Runner) *CargoBuilder {
	if binary == "" {
		binary = DefaultBinary
	}
	if runner == nil {
		runner = OSRunner{}
	}
	return &CargoBuilder{
		Binary: binary,
		Runner: runner,
		GOOS:   runtime.GOOS,
	}
}

// Build runs "cargo build --lib" in the crate directory and locates the
// produced dynamic library.
func (b *CargoBuilder) Build(ctx context.Context, cfg *Config) (*BuildOutput, error) {
	spec := b.Command(cfg)

	stdout, stderr := b.Stdout, b.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	runner := b.Runner
	if runner == nil {
		runner = OSRunner{}
	}

	code, err := runner.Run(ctx, spec, stdout, stderr)
	if err != nil || code != 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("cargo build interrupted: %w", ctxErr)
		}
		return nil, &BuildFailedError{ExitCode: code, Err: err}
	}

	libPath := b.ArtifactPath(cfg)
	info, err := os.Stat(libPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: expected %s", ErrBuildArtifactMissing, libPath)
		}
		return nil, fmt.Errorf("stat build artifact: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrBuildArtifactMissing, libPath)
	}

	return &BuildOutput{Target: BuildTargetLocal, Path: libPath}, nil
}

// Command returns the cargo invocation Build would run.
func (b *CargoBuilder) Command(cfg *Config) CommandSpec {
	binary := b.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	args := []string{"build", "--lib", "--manifest-path", cfg.ManifestPath}
	if b.Release {
		args = append(args, "--release")
	}
	args = append(args, b.ExtraArgs...)

	return CommandSpec{Name: binary, Args: args, Dir: cfg.Dir()}
}

// ArtifactPath returns where cargo places the crate's dynamic library.
func (b *CargoBuilder) ArtifactPath(cfg *Config) string {
	getenv := b.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	targetDir := getenv("CARGO_TARGET_DIR")
	if targetDir == "" {
		targetDir = filepath.Join(cfg.Dir(), "target")
	} else if !filepath.IsAbs(targetDir) {
		targetDir = filepath.Join(cfg.Dir(), targetDir)
	}

	profile := "debug"
	if b.Release {
		profile = "release"
	}

	goos := b.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	return filepath.Join(targetDir, profile, DynamicLibFileName(cfg.LibName, goos))
}

// DynamicLibFileName returns the platform file name of a dynamic library.
func DynamicLibFileName(libName, goos string) string {
	switch goos {
	case "windows":
		return libName + ".dll"
	case "darwin", "ios":
		return "lib" + libName + ".dylib"
	default:
		return "lib" + libName + ".so"
	}
}

// Build implements Builder by checking that the prebuilt library exists.
func (b PrebuiltBuilder) Build(_ context.Context, _ *Config) (*BuildOutput, error) {
	info, err := os.Stat(b.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBuildArtifactMissing, b.Path)
		}
		return nil, fmt.Errorf("stat prebuilt library: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrBuildArtifactMissing, b.Path)
	}
	return &BuildOutput{Target: BuildTargetLocal, Path: b.Path}, nil
}
