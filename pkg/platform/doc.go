// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// This package centralizes runtime.GOOS string constants and detects
// application sandboxes (Flatpak, Snap). Sandbox detection matters to the
// launcher: a sandboxed vaultrun must spawn the interpreter through the
// sandbox's host bridge or the child would run inside the sandbox too.
package platform
