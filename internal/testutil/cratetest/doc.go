// SPDX-License-Identifier: MPL-2.0

// Package cratetest writes Cargo.toml fixtures for tests.
//
// The default crate is {name: "foo", version: "1.2.3", authors: ["A B"],
// description: "d"} with a cdylib library target. Options override or drop
// individual keys.
//
// # Usage
//
//	import "cargo-nuget/internal/testutil/cratetest"
//
//	path := cratetest.Write(t, t.TempDir(), cratetest.Without("version"))
package cratetest
