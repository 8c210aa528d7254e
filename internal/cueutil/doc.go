// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema
// definition and formats CUE errors with JSON-style field paths.
package cueutil
