// SPDX-License-Identifier: MPL-2.0

package nuget

import (
	"fmt"
	"path/filepath"
	"strings"

	"cargo-nuget/pkg/cargo"
)

// DefaultOutputDir is where packages are saved when no directory is given.
const DefaultOutputDir = "."

// SpecArgsFromCargo maps crate metadata onto nuspec fields. Authors are
// joined with ", " and the dependency set starts empty.
func SpecArgsFromCargo(cfg *cargo.Config) SpecArgs {
	return SpecArgs{
		ID:           cfg.Name,
		Version:      cfg.Version.String(),
		Authors:      strings.Join(cfg.Authors, ", "),
		Description:  cfg.Description,
		Dependencies: Dependencies{},
	}
}

// TargetFromCargo maps a cargo build target onto a runtime identifier.
func TargetFromCargo(t cargo.BuildTarget) (Target, error) {
	switch t {
	case cargo.BuildTargetLocal:
		return LocalTarget(), nil
	default:
		return Target{}, &cargo.InvalidBuildTargetError{Value: t}
	}
}

// PackArgsFromBuild combines a generated nuspec with the build output.
func PackArgsFromBuild(spec *Nuspec, build *cargo.BuildOutput) (PackArgs, error) {
	target, err := TargetFromCargo(build.Target)
	if err != nil {
		return PackArgs{}, fmt.Errorf("map build target: %w", err)
	}
	return PackArgs{
		ID:      spec.ID,
		Version: spec.Version,
		Spec:    spec.XML,
		Libs:    map[Target]string{target: build.Path},
	}, nil
}

// SaveArgsFor resolves the destination of nupkg inside dir, using
// DefaultOutputDir when dir is empty.
func SaveArgsFor(dir string, nupkg *Nupkg) SaveArgs {
	if dir == "" {
		dir = DefaultOutputDir
	}
	return SaveArgs{
		Path:  filepath.Join(dir, nupkg.Name),
		Nupkg: nupkg.Buf,
	}
}
