// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"cargo-nuget/pkg/cargo"
)

var (
	// ErrInvalidCargoBinary is returned when a CargoBinary value is blank.
	ErrInvalidCargoBinary = errors.New("invalid cargo binary")
	// ErrInvalidCargoArgs is returned when a CargoArgs value is not valid shell syntax.
	ErrInvalidCargoArgs = errors.New("invalid cargo args")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// CargoBinary is the cargo executable, either a PATH lookup name or a path.
	CargoBinary string

	// InvalidCargoBinaryError is returned when a CargoBinary is blank.
	// It wraps ErrInvalidCargoBinary for errors.Is() compatibility.
	InvalidCargoBinaryError struct {
		Value CargoBinary
	}

	// CargoArgs is a shell-quoted string of extra "cargo build" arguments.
	// The zero value means no extra arguments.
	CargoArgs string

	// InvalidCargoArgsError is returned when CargoArgs cannot be split into words.
	InvalidCargoArgsError struct {
		Value CargoArgs
		Err   error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config is the application configuration.
	Config struct {
		// NupkgDir is the default output directory. Empty means the working directory.
		NupkgDir string `json:"nupkg_dir" mapstructure:"nupkg_dir"`
		// Cargo configures how the crate is built.
		Cargo CargoConfig `json:"cargo" mapstructure:"cargo"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// CargoConfig configures the cargo invocation.
	CargoConfig struct {
		Binary  CargoBinary `json:"binary" mapstructure:"binary"`
		Release bool        `json:"release" mapstructure:"release"`
		Args    CargoArgs   `json:"args" mapstructure:"args"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// String returns the string representation of the CargoBinary.
func (b CargoBinary) String() string { return string(b) }

// IsValid returns whether the CargoBinary is usable, and a list of
// validation errors if it is not.
func (b CargoBinary) IsValid() (bool, []error) {
	if strings.TrimSpace(string(b)) == "" {
		return false, []error{&InvalidCargoBinaryError{Value: b}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidCargoBinaryError) Error() string {
	return fmt.Sprintf("invalid cargo binary %q: must not be blank", e.Value)
}

// Unwrap returns ErrInvalidCargoBinary for errors.Is() compatibility.
func (e *InvalidCargoBinaryError) Unwrap() error { return ErrInvalidCargoBinary }

// String returns the string representation of the CargoArgs.
func (a CargoArgs) String() string { return string(a) }

// Fields splits the arguments into words the way a POSIX shell would.
func (a CargoArgs) Fields() ([]string, error) {
	fields, err := cargo.ParseExtraArgs(string(a))
	if err != nil {
		return nil, &InvalidCargoArgsError{Value: a, Err: err}
	}
	return fields, nil
}

// IsValid returns whether the CargoArgs can be split into words.
func (a CargoArgs) IsValid() (bool, []error) {
	if _, err := a.Fields(); err != nil {
		return false, []error{err}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidCargoArgsError) Error() string {
	return fmt.Sprintf("invalid cargo args %q: %v", e.Value, e.Err)
}

// Unwrap returns ErrInvalidCargoArgs and the parse error.
func (e *InvalidCargoArgsError) Unwrap() []error { return []error{ErrInvalidCargoArgs, e.Err} }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig followed by the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// IsValid returns whether every field of the Config is valid.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Cargo.Binary.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Cargo.Args.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Validate returns the first IsValid error, or nil.
func (c *Config) Validate() error {
	if valid, errs := c.IsValid(); !valid {
		return errs[0]
	}
	return nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		NupkgDir: "",
		Cargo: CargoConfig{
			Binary:  cargo.DefaultBinary,
			Release: false,
			Args:    "",
		},
		UI: UIConfig{
			Verbose: false,
		},
	}
}
