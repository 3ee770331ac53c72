// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"vaultrun-cli/pkg/platform"
)

// ErrInvalidInvocation is the sentinel error wrapped by InvalidInvocationError.
var ErrInvalidInvocation = errors.New("invalid invocation")

// InvalidInvocationError is returned when an Invocation is missing
// required fields. It wraps ErrInvalidInvocation for errors.Is().
type InvalidInvocationError struct {
	Reason string
}

// Error implements the error interface.
func (e *InvalidInvocationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidInvocation, e.Reason)
}

// Unwrap returns ErrInvalidInvocation so callers can use errors.Is.
func (e *InvalidInvocationError) Unwrap() error { return ErrInvalidInvocation }

// Invocation describes a single interpreter launch. The zero value is not
// usable; Interpreter and Script are required.
type Invocation struct {
	// Interpreter is the executable to spawn, a bare name resolved via
	// PATH or an explicit path.
	Interpreter string
	// Script is the script path passed to the interpreter as its first
	// argument.
	Script string
	// Args are the user arguments appended after the script, in order.
	// Empty is valid and means the script runs with no arguments.
	Args []string

	// WorkDir is the child's working directory. Empty inherits the
	// launcher's.
	WorkDir string
	// Env holds extra KEY=VALUE entries appended to the inherited
	// environment.
	Env []string

	// Stdout, Stderr and Stdin default to the launcher's own when nil.
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
}

// Validate reports whether the invocation can be launched.
func (inv *Invocation) Validate() error {
	if strings.TrimSpace(inv.Interpreter) == "" {
		return &InvalidInvocationError{Reason: "interpreter must not be empty"}
	}
	if strings.TrimSpace(inv.Script) == "" {
		return &InvalidInvocationError{Reason: "script must not be empty"}
	}
	return nil
}

// Argv returns the discrete argument vector for this invocation,
// including any sandbox spawn prefix. The first element is the
// executable, the rest are its arguments.
func (inv *Invocation) Argv() []string {
	argv := make([]string, 0, len(inv.Args)+4)
	if spawn := platform.GetSpawnCommand(); spawn != "" {
		argv = append(argv, spawn)
		argv = append(argv, platform.GetSpawnArgs()...)
	}
	argv = append(argv, inv.Interpreter, inv.Script)
	argv = append(argv, inv.Args...)
	return argv
}

// DisplayString renders the argv the way a user could paste it into a
// POSIX shell. This is for dry runs and logs only; the launcher itself
// never goes through a shell.
func (inv *Invocation) DisplayString() string {
	return QuoteArgv(inv.Argv())
}

// QuoteArgv shell-quotes an argument vector for display.
func QuoteArgv(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		q, err := syntax.Quote(w, syntax.LangBash)
		if err != nil {
			// Quote only fails on non-printable input; fall back to Go quoting.
			q = fmt.Sprintf("%q", w)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " ")
}
