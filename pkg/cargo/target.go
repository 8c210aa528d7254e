// SPDX-License-Identifier: MPL-2.0

package cargo

import (
	"errors"
	"fmt"
)

// BuildTargetLocal builds for the host the tool runs on.
const BuildTargetLocal BuildTarget = iota + 1

// ErrInvalidBuildTarget is the sentinel error wrapped by InvalidBuildTargetError.
var ErrInvalidBuildTarget = errors.New("invalid build target")

type (
	// BuildTarget identifies which compiled-artifact variant a build produced.
	// It is a closed enumeration and the zero value is invalid.
	BuildTarget int

	// InvalidBuildTargetError is returned when a BuildTarget value is not one
	// of the declared variants.
	InvalidBuildTargetError struct {
		Value BuildTarget
	}

	// BuildOutput describes the library produced by a Builder.
	// It is read-only once returned.
	BuildOutput struct {
		// Target is the variant the library was compiled for.
		Target BuildTarget
		// Path is the filesystem path of the compiled dynamic library.
		Path string
	}
)

// String returns the name of the BuildTarget.
func (t BuildTarget) String() string {
	switch t {
	case BuildTargetLocal:
		return "local"
	default:
		return fmt.Sprintf("BuildTarget(%d)", int(t))
	}
}

// IsValid returns whether the BuildTarget is a declared variant.
func (t BuildTarget) IsValid() (bool, []error) {
	switch t {
	case BuildTargetLocal:
		return true, nil
	default:
		return false, []error{&InvalidBuildTargetError{Value: t}}
	}
}

// Error implements the error interface.
func (e *InvalidBuildTargetError) Error() string {
	return fmt.Sprintf("invalid build target %s", e.Value)
}

// Unwrap returns ErrInvalidBuildTarget for errors.Is() compatibility.
func (e *InvalidBuildTargetError) Unwrap() error { return ErrInvalidBuildTarget }
