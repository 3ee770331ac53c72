// SPDX-License-Identifier: MPL-2.0

// Package runtime provides the program execution runtime interface and its
// implementations: native (spawn the configured interpreter on the host),
// builtin (run bot programs on the embedded interpreter, no external
// process), and container (spawn the interpreter inside a container image).
//
// All runtimes share one contract: the child's exit code is mirrored into
// Result.ExitCode, launch failures use the sentinel codes 125-127, and a
// signal death surfaces as 128+N.
package runtime
