// SPDX-License-Identifier: MPL-2.0

// Package config handles cargo-nuget configuration using Viper with CUE as the
// file format.
//
// Configuration is loaded from ~/.config/cargo-nuget/config.cue (or the XDG
// equivalent on Linux, ~/Library/Application Support/cargo-nuget/config.cue on
// macOS, %APPDATA%\cargo-nuget\config.cue on Windows), then overridden by
// CARGO_NUGET_* environment variables. Files are validated against the
// embedded config_schema.cue before they are merged.
package config
