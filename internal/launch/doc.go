// SPDX-License-Identifier: MPL-2.0

// Package launch spawns the game interpreter as a child process.
//
// The launcher builds a discrete argv of the form
//
//	[interpreter, script, userArg1, userArg2, ...]
//
// and hands it to the kernel without any shell in between, so user
// arguments are forwarded byte-for-byte in their original order and
// shell metacharacters have no effect. The child's stdio is inherited,
// the launcher waits for termination, and the child's exit code is
// mirrored. Launch failures that prevent the child from ever running
// map onto the shell-conventional sentinel codes: 127 when the
// interpreter or script cannot be found, 126 when the interpreter is
// not executable, 125 for everything else. A child killed by signal N
// is reported as 128+N.
package launch
