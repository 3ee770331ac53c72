// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"vaultrun-cli/pkg/types"
)

// ExitError carries an exit code out of a RunE handler as a plain error.
// Handlers must not call os.Exit themselves; Execute unwraps the code at
// the top after cobra and deferred cleanups have run.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
