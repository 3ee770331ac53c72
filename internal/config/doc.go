// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/vaultrun/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/vaultrun/config.cue on macOS, %APPDATA%\vaultrun\config.cue
// on Windows). The package provides type-safe configuration access covering the interpreter
// and script to launch, the runtime mode, container settings, world search paths, UI
// settings and log level.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
