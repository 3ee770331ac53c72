// SPDX-License-Identifier: MPL-2.0

//go:build windows

package launch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// AttachPty runs cmd over plain pipes. There is no Unix pseudo-terminal
// on Windows; the child sees ordinary stdio with stderr merged into the
// stdout stream to match the Unix behavior.
func AttachPty(cmd *exec.Cmd, stdin io.Reader, stdout io.Writer) (*Outcome, error) {
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stdout

	start := time.Now()
	runErr := cmd.Run()
	outcome := &Outcome{Duration: time.Since(start)}

	if mirrorExit(runErr, outcome) {
		return outcome, nil
	}

	outcome.ExitCode = classifySpawnError(runErr)
	return outcome, fmt.Errorf("starting child: %w", runErr)
}

// RunPty degrades to the plain spawn path. The child inherits the
// launcher's stdio the same way a non-pty launch does.
func RunPty(ctx context.Context, inv *Invocation) (*Outcome, error) {
	return Run(ctx, inv)
}
