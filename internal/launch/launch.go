// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"vaultrun-cli/internal/issue"
	"vaultrun-cli/pkg/platform"
	"vaultrun-cli/pkg/types"
)

// Outcome reports how a launched child ended.
type Outcome struct {
	// ExitCode is the mirrored child exit code, or a launch failure
	// sentinel (125, 126, 127), or 128+N for a signal death.
	ExitCode types.ExitCode
	// Signaled is true when the child was terminated by a signal.
	Signaled bool
	// Signal is the terminating signal when Signaled is set.
	Signal syscall.Signal
	// Duration is the wall time from spawn to termination.
	Duration time.Duration
}

// Build constructs the exec.Cmd for an invocation without starting it.
// Callers that need custom process handling (PTY attachment) start the
// command themselves; everyone else goes through Run.
func Build(ctx context.Context, inv *Invocation) (*exec.Cmd, error) {
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	argv := inv.Argv()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = inv.WorkDir
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}
	return cmd, nil
}

// Run spawns the interpreter and waits for it to terminate.
//
// The returned error is non-nil only for launch failures: the child never
// ran, Outcome.ExitCode carries the sentinel, and the error explains why.
// A child that ran and exited, however badly, yields a nil error; its
// status is entirely in the Outcome. Run never retries.
func Run(ctx context.Context, inv *Invocation) (*Outcome, error) {
	if err := inv.Validate(); err != nil {
		return &Outcome{ExitCode: types.ExitUsage}, err
	}

	// Preflight gives precise diagnostics before any process exists.
	// Inside a sandbox the child runs on the host where PATH and the
	// filesystem differ, so the checks would test the wrong namespace.
	if !platform.IsInSandbox() {
		if err := preflightInterpreter(inv.Interpreter); err != nil {
			return &Outcome{ExitCode: classifySpawnError(err)}, err
		}
		if err := preflightScript(inv.Script, inv.WorkDir); err != nil {
			return &Outcome{ExitCode: types.ExitNotFound}, err
		}
	}

	cmd, err := Build(ctx, inv)
	if err != nil {
		return &Outcome{ExitCode: types.ExitUsage}, err
	}

	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr
	cmd.Stdin = inv.Stdin
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}

	start := time.Now()
	runErr := cmd.Run()
	outcome := &Outcome{Duration: time.Since(start)}

	if mirrorExit(runErr, outcome) {
		return outcome, nil
	}

	// The child never ran.
	outcome.ExitCode = classifySpawnError(runErr)
	return outcome, issue.NewErrorContext().
		WithOperation("launch interpreter").
		WithResource(inv.Interpreter).
		WithSuggestion("Run with --verbose for the full error chain").
		Wrap(runErr).
		BuildError()
}

// mirrorExit fills the outcome from a finished child's run error: success,
// a mirrored exit code, or a signal death. It reports false when the error
// shows the child never ran, leaving the outcome for the caller.
func mirrorExit(runErr error, outcome *Outcome) bool {
	if runErr == nil {
		outcome.ExitCode = types.ExitSuccess
		return true
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			outcome.Signaled = true
			outcome.Signal = ws.Signal()
			outcome.ExitCode = types.ExitCodeFromSignal(int(ws.Signal()))
			return true
		}
		outcome.ExitCode = types.ExitCode(exitErr.ExitCode())
		return true
	}
	return false
}

// preflightInterpreter resolves the interpreter the same way the spawn
// will, so a missing or non-executable interpreter is reported before a
// process is created.
func preflightInterpreter(interpreter string) error {
	if _, err := exec.LookPath(interpreter); err != nil {
		return issue.NewErrorContext().
			WithOperation("locate interpreter").
			WithResource(interpreter).
			WithSuggestions(
				"Check the interpreter is installed and on your PATH",
				"Point vaultrun at another interpreter with --interpreter",
				"Use '--runtime builtin' to run without an interpreter",
			).
			Wrap(err).
			BuildError()
	}
	return nil
}

// preflightScript checks the script exists where the child will look for
// it: relative paths resolve against the child's working directory.
func preflightScript(script, workDir string) error {
	path := script
	if !filepath.IsAbs(path) && workDir != "" {
		path = filepath.Join(workDir, script)
	}

	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		err = fmt.Errorf("%s is a directory", path)
	}
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("locate script").
			WithResource(script).
			WithSuggestions(
				"Check the script path, or set one with --script",
				"Use --workdir if the script lives in another directory",
			).
			Wrap(err).
			BuildError()
	}
	return nil
}

// classifySpawnError maps a spawn failure onto the launch sentinel codes.
func classifySpawnError(err error) types.ExitCode {
	switch {
	case errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist):
		return types.ExitNotFound
	case errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.ENOEXEC):
		return types.ExitNotExecutable
	default:
		return types.ExitInternal
	}
}
