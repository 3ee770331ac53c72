// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package launch

import (
	"bytes"
	"context"
	"strings"
	"syscall"
	"testing"

	"vaultrun-cli/pkg/types"
)

func TestRunPty_ChildSeesATerminal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	needSh(t)

	tmpDir := t.TempDir()
	script := writeScript(t, tmpDir, "istty.sh",
		`if [ -t 0 ] && [ -t 1 ]; then echo tty=yes; else echo tty=no; fi`)

	var stdout bytes.Buffer
	inv := &Invocation{Interpreter: "sh", Script: script, Stdout: &stdout}

	outcome, err := RunPty(context.Background(), inv)
	if err != nil {
		t.Fatalf("RunPty() error = %v, want nil", err)
	}
	if outcome.ExitCode != types.ExitSuccess {
		t.Fatalf("RunPty() exit code = %d, want 0", outcome.ExitCode)
	}
	if !strings.Contains(stdout.String(), "tty=yes") {
		t.Errorf("RunPty() output = %q, want the child to see a terminal", stdout.String())
	}
}

func TestRunPty_RelaysChildOutput(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	needSh(t)

	tmpDir := t.TempDir()
	script := writeScript(t, tmpDir, "hello.sh", `echo hello-from-pty`)

	var stdout bytes.Buffer
	inv := &Invocation{Interpreter: "sh", Script: script, Stdout: &stdout}

	outcome, err := RunPty(context.Background(), inv)
	if err != nil {
		t.Fatalf("RunPty() error = %v, want nil", err)
	}
	if outcome.ExitCode != types.ExitSuccess {
		t.Fatalf("RunPty() exit code = %d, want 0", outcome.ExitCode)
	}
	if !strings.Contains(stdout.String(), "hello-from-pty") {
		t.Errorf("RunPty() output = %q, want it to relay the child's output", stdout.String())
	}
}

func TestRunPty_MirrorsChildExitCode(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	needSh(t)

	tmpDir := t.TempDir()
	script := writeScript(t, tmpDir, "exit7.sh", `exit 7`)

	inv := &Invocation{Interpreter: "sh", Script: script, Stdout: &bytes.Buffer{}}

	outcome, err := RunPty(context.Background(), inv)
	if err != nil {
		t.Fatalf("RunPty() error = %v, want nil (child ran)", err)
	}
	if outcome.ExitCode != 7 {
		t.Errorf("RunPty() exit code = %d, want 7", outcome.ExitCode)
	}
}

func TestRunPty_StdinReachesChild(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	needSh(t)

	tmpDir := t.TempDir()
	script := writeScript(t, tmpDir, "read.sh", `read line; echo "got=$line"`)

	var stdout bytes.Buffer
	inv := &Invocation{
		Interpreter: "sh",
		Script:      script,
		Stdin:       strings.NewReader("ping\n"),
		Stdout:      &stdout,
	}

	outcome, err := RunPty(context.Background(), inv)
	if err != nil {
		t.Fatalf("RunPty() error = %v, want nil", err)
	}
	if outcome.ExitCode != types.ExitSuccess {
		t.Fatalf("RunPty() exit code = %d, want 0", outcome.ExitCode)
	}
	if !strings.Contains(stdout.String(), "got=ping") {
		t.Errorf("RunPty() output = %q, want the piped line echoed back", stdout.String())
	}
}

func TestRunPty_SignalDeath(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	needSh(t)

	tmpDir := t.TempDir()
	script := writeScript(t, tmpDir, "selfterm.sh", `kill -TERM $$`)

	inv := &Invocation{Interpreter: "sh", Script: script, Stdout: &bytes.Buffer{}}

	outcome, err := RunPty(context.Background(), inv)
	if err != nil {
		t.Fatalf("RunPty() error = %v, want nil (child ran, then died)", err)
	}
	if !outcome.Signaled {
		t.Fatal("RunPty() Signaled = false, want true")
	}
	if outcome.ExitCode != types.ExitCodeFromSignal(int(syscall.SIGTERM)) {
		t.Errorf("RunPty() exit code = %d, want %d",
			outcome.ExitCode, types.ExitCodeFromSignal(int(syscall.SIGTERM)))
	}
}

func TestRunPty_InterpreterNotFound(t *testing.T) {
	inv := &Invocation{
		Interpreter: "vaultrun-no-such-interpreter",
		Script:      "main.py",
		Stdout:      &bytes.Buffer{},
	}

	outcome, err := RunPty(context.Background(), inv)
	if err == nil {
		t.Fatal("RunPty() error = nil, want launch failure")
	}
	if outcome.ExitCode != types.ExitNotFound {
		t.Errorf("RunPty() exit code = %d, want %d", outcome.ExitCode, types.ExitNotFound)
	}
}
