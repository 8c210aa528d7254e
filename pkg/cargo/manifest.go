// SPDX-License-Identifier: MPL-2.0

package cargo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ManifestFileName is the conventional name of a crate manifest.
const ManifestFileName = "Cargo.toml"

// maxManifestBytes bounds how much of a manifest is read (1 MiB).
const maxManifestBytes = 1 << 20

var (
	// ErrManifestNotFound is returned when the manifest file does not exist.
	ErrManifestNotFound = errors.New("cargo manifest not found")
	// ErrManifestParse is the sentinel error wrapped by ManifestParseError.
	ErrManifestParse = errors.New("malformed cargo manifest")
	// ErrManifestFieldMissing is the sentinel error wrapped by ManifestFieldMissingError.
	ErrManifestFieldMissing = errors.New("missing required manifest field")
	// ErrManifestVersionInvalid is the sentinel error wrapped by ManifestVersionInvalidError.
	ErrManifestVersionInvalid = errors.New("invalid manifest version")
	// ErrManifestNameInvalid is the sentinel error wrapped by ManifestNameInvalidError.
	ErrManifestNameInvalid = errors.New("invalid manifest package name")
)

type (
	// Config is the crate metadata needed to build and package a library.
	// It is immutable once returned by ReadManifest.
	Config struct {
		// Name is the package name from [package].
		Name string
		// Version is the package version from [package].
		Version SemVer
		// Authors is the ordered author list from [package].
		Authors []string
		// Description is the package description from [package].
		Description string

		// LibName is the library target name: [lib].name when set,
		// otherwise Name with dashes replaced by underscores.
		LibName string
		// CrateTypes is [lib].crate-type, empty when not declared.
		CrateTypes []string
		// ManifestPath is the absolute path of the parsed Cargo.toml.
		ManifestPath string
		// Warnings are non-fatal findings about the manifest.
		Warnings []string
	}

	// ManifestParseError reports malformed TOML.
	ManifestParseError struct {
		Path   string
		Line   int
		Column int
		Err    error
	}

	// ManifestFieldMissingError reports a required [package] key that is
	// absent or blank. Field is the bare key name (e.g., "version").
	ManifestFieldMissingError struct {
		Path  string
		Field string
	}

	// ManifestVersionInvalidError reports a [package].version that is not a
	// full semantic version.
	ManifestVersionInvalidError struct {
		Path  string
		Value string
		Err   error
	}

	// ManifestNameInvalidError reports a [package].name with characters
	// outside the crate name charset [A-Za-z0-9_-].
	ManifestNameInvalidError struct {
		Path  string
		Value string
	}

	cargoToml struct {
		Package *cargoPackage `toml:"package"`
		Lib     *cargoLib     `toml:"lib"`
	}

	cargoPackage struct {
		Name        string   `toml:"name"`
		Version     string   `toml:"version"`
		Authors     []string `toml:"authors"`
		Description string   `toml:"description"`
	}

	cargoLib struct {
		Name      string   `toml:"name"`
		CrateType []string `toml:"crate-type"`
	}
)

// Error implements the error interface.
func (e *ManifestParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns both ErrManifestParse and the decoder error.
func (e *ManifestParseError) Unwrap() []error { return []error{ErrManifestParse, e.Err} }

// Error implements the error interface.
func (e *ManifestFieldMissingError) Error() string {
	return fmt.Sprintf("%s: missing required field package.%s", e.Path, e.Field)
}

// Unwrap returns ErrManifestFieldMissing for errors.Is() compatibility.
func (e *ManifestFieldMissingError) Unwrap() error { return ErrManifestFieldMissing }

// Error implements the error interface.
func (e *ManifestVersionInvalidError) Error() string {
	return fmt.Sprintf("%s: package.version: %v", e.Path, e.Err)
}

// Unwrap returns both ErrManifestVersionInvalid and the semver error.
func (e *ManifestVersionInvalidError) Unwrap() []error {
	return []error{ErrManifestVersionInvalid, e.Err}
}

// Error implements the error interface.
func (e *ManifestNameInvalidError) Error() string {
	return fmt.Sprintf("%s: package.name %q may only contain ASCII letters, digits, '-' and '_'", e.Path, e.Value)
}

// Unwrap returns ErrManifestNameInvalid for errors.Is() compatibility.
func (e *ManifestNameInvalidError) Unwrap() error { return ErrManifestNameInvalid }

// ReadManifest parses the Cargo.toml at path into a Config.
//
// Required [package] keys are name, version, authors (at least one non-blank
// entry) and description. Fields are checked in that order and the first
// missing one is reported.
func ReadManifest(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest path: %w", err)
	}

	data, err := readManifestFile(absPath)
	if err != nil {
		return nil, err
	}

	return parseManifest(absPath, data)
}

func readManifestFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("stat manifest: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrManifestNotFound, path)
	}
	if info.Size() > maxManifestBytes {
		return nil, &ManifestParseError{Path: path, Err: fmt.Errorf("file exceeds %d bytes", maxManifestBytes)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return data, nil
}

func parseManifest(path string, data []byte) (*Config, error) {
	var raw cargoToml
	if err := toml.Unmarshal(data, &raw); err != nil {
		parseErr := &ManifestParseError{Path: path, Err: err}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			parseErr.Line, parseErr.Column = decodeErr.Position()
		}
		return nil, parseErr
	}

	pkg := raw.Package
	if pkg == nil {
		pkg = &cargoPackage{}
	}

	if strings.TrimSpace(pkg.Name) == "" {
		return nil, &ManifestFieldMissingError{Path: path, Field: "name"}
	}
	if strings.TrimSpace(pkg.Version) == "" {
		return nil, &ManifestFieldMissingError{Path: path, Field: "version"}
	}
	authors := nonBlank(pkg.Authors)
	if len(authors) == 0 {
		return nil, &ManifestFieldMissingError{Path: path, Field: "authors"}
	}
	if strings.TrimSpace(pkg.Description) == "" {
		return nil, &ManifestFieldMissingError{Path: path, Field: "description"}
	}

	name := strings.TrimSpace(pkg.Name)
	if !isCrateName(name) {
		return nil, &ManifestNameInvalidError{Path: path, Value: pkg.Name}
	}

	version := SemVer(strings.TrimSpace(pkg.Version))
	if err := version.Validate(); err != nil {
		return nil, &ManifestVersionInvalidError{Path: path, Value: pkg.Version, Err: err}
	}

	cfg := &Config{
		Name:         name,
		Version:      version,
		Authors:      authors,
		Description:  pkg.Description,
		LibName:      strings.ReplaceAll(name, "-", "_"),
		ManifestPath: path,
	}

	if raw.Lib != nil {
		if name := strings.TrimSpace(raw.Lib.Name); name != "" {
			cfg.LibName = name
		}
		cfg.CrateTypes = slices.Clone(raw.Lib.CrateType)
	}

	if !cfg.IsDynamicLib() {
		cfg.Warnings = append(cfg.Warnings,
			`[lib] crate-type does not include "cdylib" or "dylib"; cargo may not produce a native library to package`)
	}

	return cfg, nil
}

// Dir returns the directory containing the manifest (the crate root).
func (c *Config) Dir() string {
	return filepath.Dir(c.ManifestPath)
}

// IsDynamicLib reports whether the crate declares a dynamic library crate type.
func (c *Config) IsDynamicLib() bool {
	return slices.Contains(c.CrateTypes, "cdylib") || slices.Contains(c.CrateTypes, "dylib")
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// isCrateName reports whether name uses only the crate name charset.
func isCrateName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
