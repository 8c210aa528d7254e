// SPDX-License-Identifier: MPL-2.0

// Package pipeline runs the cargo-to-NuGet packaging stages in order:
// read the manifest, build the library, generate the nuspec, pack, save.
//
// Every failure is wrapped in a *StageError naming the stage, and stage
// outputs are handed forward through the explicit conversion functions of
// package nuget. A Runner holds only its collaborators (builder, logger,
// clock) and can be reused across runs.
package pipeline
