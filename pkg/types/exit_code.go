// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidExitCode matches any out-of-range code via errors.Is. The
// concrete *InvalidExitCodeError carries the offending value.
var ErrInvalidExitCode = errors.New("invalid exit code")

// Reserved exit codes. Codes 0-124 belong to the child process and are
// mirrored verbatim; the launcher itself only ever produces the codes below.
// A child that exits with 125-127 on its own is still mirrored, but launcher
// uses of these codes are always accompanied by a stderr diagnostic.
const (
	// ExitSuccess is the successful exit code.
	ExitSuccess ExitCode = 0

	// ExitRunFailure is returned by the builtin interpreter when a program
	// runs to completion without the bot reaching the exit tile, or when
	// the program fails to parse.
	ExitRunFailure ExitCode = 1

	// ExitUsage is returned for command-line usage errors.
	ExitUsage ExitCode = 2

	// ExitInternal is reserved for launcher-internal failures (pty setup,
	// container engine access, I/O plumbing). 125 follows the convention
	// used by container engines for their own errors.
	ExitInternal ExitCode = 125

	// ExitNotExecutable is returned when the interpreter or script exists
	// but cannot be executed (permission denied, not a regular file).
	ExitNotExecutable ExitCode = 126

	// ExitNotFound is returned when the interpreter or script cannot be
	// found at all.
	ExitNotFound ExitCode = 127

	// ExitSignalBase is added to the signal number when the child is
	// terminated by a signal, mirroring shell conventions (SIGKILL -> 137).
	ExitSignalBase ExitCode = 128
)

// ExitCode is a POSIX process exit status. Only 0 through 255 survive the
// trip through wait(2); the launcher mirrors child codes verbatim and uses
// the reserved constants above for its own outcomes.
type ExitCode int

// InvalidExitCodeError reports a code that cannot be a process exit status.
type InvalidExitCodeError struct {
	Value ExitCode
}

func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d is outside 0-255", e.Value)
}

func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// ExitCodeFromSignal maps a terminating signal number to the conventional
// 128+N exit code.
func ExitCodeFromSignal(sig int) ExitCode {
	return ExitSignalBase + ExitCode(sig)
}

// Validate rejects codes that would be truncated by an 8-bit exit status.
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess reports whether the code is ExitSuccess.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// IsLaunchFailure returns true for the codes the launcher reserves for
// spawn-time failures (126 not executable, 127 not found).
func (c ExitCode) IsLaunchFailure() bool { return c == ExitNotExecutable || c == ExitNotFound }

// IsSignal returns true if the exit code encodes death by signal (129-255).
func (c ExitCode) IsSignal() bool { return c > ExitSignalBase && c <= 255 }

// Signal returns the signal number encoded in a 128+N exit code, or 0 if
// the code does not encode a signal.
func (c ExitCode) Signal() int {
	if !c.IsSignal() {
		return 0
	}
	return int(c - ExitSignalBase)
}

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
