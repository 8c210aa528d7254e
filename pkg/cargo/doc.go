// SPDX-License-Identifier: MPL-2.0

// Package cargo reads Rust crate metadata and drives native library builds.
//
// The package has two halves:
//   - ReadManifest parses a Cargo.toml into an immutable Config value.
//   - Builder implementations turn a Config into a BuildOutput describing the
//     compiled dynamic library (CargoBuilder shells out to cargo, PrebuiltBuilder
//     reuses an existing artifact, FakeBuilder is for tests).
//
// Nothing in this package knows about NuGet; conversion into packaging inputs
// lives in pkg/nuget.
package cargo
