// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package launch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"

	"vaultrun-cli/internal/issue"
	"vaultrun-cli/pkg/platform"
	"vaultrun-cli/pkg/types"
)

// AttachPty starts cmd on a fresh pseudo-terminal and relays stdin and
// stdout through it until the child exits. A nil stdin or stdout means
// the launcher's own. The child's stdout and stderr arrive merged, the
// way a terminal shows them.
//
// When the launcher's own stdin is used and is a real terminal, it is
// switched to raw mode for the duration and window resizes are mirrored
// into the child.
func AttachPty(cmd *exec.Cmd, stdin io.Reader, stdout io.Writer) (*Outcome, error) {
	ownStdin := stdin == nil
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}

	start := time.Now()
	ptmx, err := pty.Start(cmd)
	if err != nil {
		outcome := &Outcome{ExitCode: classifySpawnError(err), Duration: time.Since(start)}
		return outcome, fmt.Errorf("starting child on a pty: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	stdinFd := int(os.Stdin.Fd())
	if ownStdin && term.IsTerminal(stdinFd) {
		// Mirror terminal resizes into the child's pty.
		winch := make(chan os.Signal, 1)
		signal.Notify(winch, syscall.SIGWINCH)
		go func() {
			for range winch {
				_ = pty.InheritSize(os.Stdin, ptmx)
			}
		}()
		winch <- syscall.SIGWINCH // Prime the initial size.
		defer func() {
			signal.Stop(winch)
			close(winch)
		}()

		// Raw mode so keystrokes reach the child unmodified.
		if oldState, rawErr := term.MakeRaw(stdinFd); rawErr == nil {
			defer func() { _ = term.Restore(stdinFd, oldState) }()
		}
	}

	go func() { _, _ = io.Copy(ptmx, stdin) }()

	// Returns once the child exits and the pty drains; Linux reports the
	// closed slave as EIO, which is the normal end of stream here.
	_, _ = io.Copy(stdout, ptmx)

	waitErr := cmd.Wait()
	outcome := &Outcome{Duration: time.Since(start)}

	if mirrorExit(waitErr, outcome) {
		return outcome, nil
	}

	outcome.ExitCode = types.ExitInternal
	return outcome, fmt.Errorf("waiting for child on a pty: %w", waitErr)
}

// RunPty spawns the interpreter on a pseudo-terminal and relays the
// launcher's terminal to it. Interactive interpreters (REPLs, line
// editors) need this: over plain pipes they disable their prompts.
// Launch failures follow the same sentinel contract as Run.
func RunPty(ctx context.Context, inv *Invocation) (*Outcome, error) {
	if err := inv.Validate(); err != nil {
		return &Outcome{ExitCode: types.ExitUsage}, err
	}

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

	// The pty owns the child's stdio; stream overrides feed the relay.
	outcome, err := AttachPty(cmd, inv.Stdin, inv.Stdout)
	if err != nil {
		return outcome, issue.NewErrorContext().
			WithOperation("launch interpreter on a pty").
			WithResource(inv.Interpreter).
			WithSuggestion("Drop --pty to launch over plain pipes").
			Wrap(err).
			BuildError()
	}
	return outcome, nil
}
