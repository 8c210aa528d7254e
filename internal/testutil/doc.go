// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that fail the test on error
// instead of returning it, plus a controllable clock.
//
// Crate fixtures live in the cratetest subpackage.
package testutil
