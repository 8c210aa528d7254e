// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the cargo-nuget CLI.
//
// It implements the Cobra command hierarchy: pack runs the packaging
// pipeline, inspect reads an existing package, and config manages the
// configuration file.
package cmd
