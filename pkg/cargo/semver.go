// SPDX-License-Identifier: MPL-2.0

package cargo

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidSemVer is the sentinel error wrapped by InvalidSemVerError.
var ErrInvalidSemVer = errors.New("invalid semver")

type (
	// SemVer is a full semantic version as written in Cargo.toml
	// (e.g., "1.2.3", "0.4.0-alpha.1", "2.0.0+build.5"). Unlike Go module
	// versions it carries no "v" prefix and must spell out all three
	// numeric components.
	SemVer string

	// InvalidSemVerError is returned when a SemVer value is not a full
	// MAJOR.MINOR.PATCH version with optional pre-release and build metadata.
	InvalidSemVerError struct {
		Value SemVer
	}
)

// Error implements the error interface.
func (e *InvalidSemVerError) Error() string {
	return fmt.Sprintf("invalid semver %q (want MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD])", e.Value)
}

// Unwrap returns ErrInvalidSemVer so callers can use errors.Is for programmatic detection.
func (e *InvalidSemVerError) Unwrap() error { return ErrInvalidSemVer }

// String returns the string representation of the SemVer.
func (s SemVer) String() string { return string(s) }

// Validate returns an error if the SemVer is not a full semantic version.
func (s SemVer) Validate() error {
	if ok, errs := s.IsValid(); !ok {
		return errs[0]
	}
	return nil
}

// IsValid returns whether the SemVer is a full semantic version string,
// and a list of validation errors if it is not.
func (s SemVer) IsValid() (bool, []error) {
	raw := string(s)
	if raw == "" || strings.HasPrefix(raw, "v") || strings.TrimSpace(raw) != raw {
		return false, []error{&InvalidSemVerError{Value: s}}
	}

	v := "v" + raw
	if !semver.IsValid(v) {
		return false, []error{&InvalidSemVerError{Value: s}}
	}

	// x/mod/semver accepts "v1" and "v1.2" shorthands. Canonical expands
	// them and drops build metadata, so a full version must survive the
	// round trip once its build suffix is removed.
	if semver.Canonical(v) != strings.TrimSuffix(v, semver.Build(v)) {
		return false, []error{&InvalidSemVerError{Value: s}}
	}

	return true, nil
}
