// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"syscall"
	"testing"
	"time"

	"vaultrun-cli/internal/issue"
	"vaultrun-cli/internal/testutil"
	"vaultrun-cli/pkg/types"
)

// needSh skips the test when no POSIX sh is available to act as the
// interpreter under test.
func needSh(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found on PATH")
	}
}

// writeScript drops a small sh script into dir and returns its path.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testutil.MustWriteFile(t, path, []byte("#!/bin/sh\n"+body+"\n"), 0o755)
	return path
}

func TestRun_MirrorsChildExitCode(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	needSh(t)

	tmpDir := t.TempDir()

	tests := []struct {
		name string
		body string
		want types.ExitCode
	}{
		{"exit 0", "exit 0", 0},
		{"exit 1", "exit 1", 1},
		{"exit 7", "exit 7", 7},
		{"exit 42", "exit 42", 42},
		{"exit 255", "exit 255", 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := writeScript(t, tmpDir, "exit.sh", tt.body)
			inv := &Invocation{
				Interpreter: "sh",
				Script:      script,
				Stdout:      &bytes.Buffer{},
				Stderr:      &bytes.Buffer{},
			}

			outcome, err := Run(context.Background(), inv)
			if err != nil {
				t.Fatalf("Run() error = %v, want nil (child ran)", err)
			}
			if outcome.ExitCode != tt.want {
				t.Errorf("Run() exit code = %d, want %d", outcome.ExitCode, tt.want)
			}
			if outcome.Signaled {
				t.Error("Run() Signaled = true, want false for a plain exit")
			}
		})
	}
}

func TestRun_SuccessOutcome(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	needSh(t)

	tmpDir := t.TempDir()
	script := writeScript(t, tmpDir, "ok.sh", "exit 0")

	var stdout, stderr bytes.Buffer
	inv := &Invocation{Interpreter: "sh", Script: script, Stdout: &stdout, Stderr: &stderr}

	outcome, err := Run(context.Background(), inv)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if !outcome.ExitCode.IsSuccess() {
		t.Errorf("Run() exit code = %d, want success", outcome.ExitCode)
	}
	if outcome.Duration <= 0 {
		t.Errorf("Run() duration = %v, want > 0", outcome.Duration)
	}
}

func TestRun_ForwardsArgsDiscretely(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	needSh(t)

	tmpDir := t.TempDir()
	script := writeScript(t, tmpDir, "args.sh", `printf '%s\n' "$@"`)

	// Spaces survive, globs stay literal, $HOME stays unexpanded:
	// nothing between the launcher and the child interprets these.
	args := []string{"first arg", "two  spaces", "*", "$HOME"}

	var stdout bytes.Buffer
	inv := &Invocation{
		Interpreter: "sh",
		Script:      script,
		Args:        args,
		Stdout:      &stdout,
		Stderr:      &bytes.Buffer{},
	}

	outcome, err := Run(context.Background(), inv)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if outcome.ExitCode != types.ExitSuccess {
		t.Fatalf("Run() exit code = %d, want 0", outcome.ExitCode)
	}

	want := strings.Join(args, "\n") + "\n"
	if stdout.String() != want {
		t.Errorf("Run() forwarded args = %q, want %q", stdout.String(), want)
	}
}

func TestRun_ArgOrderPreserved(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	needSh(t)

	tmpDir := t.TempDir()
	script := writeScript(t, tmpDir, "order.sh", `echo "$1-$2-$3"`)

	var stdout bytes.Buffer
	inv := &Invocation{
		Interpreter: "sh",
		Script:      script,
		Args:        []string{"a", "b", "c"},
		Stdout:      &stdout,
		Stderr:      &bytes.Buffer{},
	}

	if _, err := Run(context.Background(), inv); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != "a-b-c" {
		t.Errorf("Run() output = %q, want %q", got, "a-b-c")
	}
}

func TestRun_EmptyArgsValid(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	needSh(t)

	tmpDir := t.TempDir()
	script := writeScript(t, tmpDir, "argc.sh", `echo "argc=$#"`)

	var stdout bytes.Buffer
	inv := &Invocation{Interpreter: "sh", Script: script, Stdout: &stdout, Stderr: &bytes.Buffer{}}

	outcome, err := Run(context.Background(), inv)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if outcome.ExitCode != types.ExitSuccess {
		t.Errorf("Run() exit code = %d, want 0", outcome.ExitCode)
	}
	if got := strings.TrimSpace(stdout.String()); got != "argc=0" {
		t.Errorf("Run() output = %q, want %q", got, "argc=0")
	}
}

func TestRun_EmptyStringArgPreserved(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	needSh(t)

	tmpDir := t.TempDir()
	script := writeScript(t, tmpDir, "empty.sh", `printf '[%s]' "$@"; echo " argc=$#"`)

	var stdout bytes.Buffer
	inv := &Invocation{
		Interpreter: "sh",
		Script:      script,
		Args:        []string{""},
		Stdout:      &stdout,
		Stderr:      &bytes.Buffer{},
	}

	if _, err := Run(context.Background(), inv); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	output := stdout.String()
	if !strings.Contains(output, "[]") {
		t.Errorf("Run() output = %q, want empty arg delivered as []", output)
	}
	if !strings.Contains(output, "argc=1") {
		t.Errorf("Run() output = %q, want argc=1", output)
	}
}

func TestRun_InterpreterNotFound(t *testing.T) {
	inv := &Invocation{
		Interpreter: "vaultrun-no-such-interpreter",
		Script:      "main.py",
		Stdout:      &bytes.Buffer{},
		Stderr:      &bytes.Buffer{},
	}

	outcome, err := Run(context.Background(), inv)
	if err == nil {
		t.Fatal("Run() error = nil, want launch failure")
	}
	if outcome.ExitCode != types.ExitNotFound {
		t.Errorf("Run() exit code = %d, want %d", outcome.ExitCode, types.ExitNotFound)
	}
	if !outcome.ExitCode.IsLaunchFailure() {
		t.Error("Run() exit code should classify as launch failure")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("Run() error type = %T, want *issue.ActionableError", err)
	}
	if !ae.HasSuggestions() {
		t.Error("launch failure should carry suggestions")
	}
}

func TestRun_ScriptNotFound(t *testing.T) {
	needSh(t)

	missing := filepath.Join(t.TempDir(), "missing.py")
	inv := &Invocation{
		Interpreter: "sh",
		Script:      missing,
		Stdout:      &bytes.Buffer{},
		Stderr:      &bytes.Buffer{},
	}

	outcome, err := Run(context.Background(), inv)
	if err == nil {
		t.Fatal("Run() error = nil, want launch failure")
	}
	if outcome.ExitCode != types.ExitNotFound {
		t.Errorf("Run() exit code = %d, want %d", outcome.ExitCode, types.ExitNotFound)
	}
	if !strings.Contains(err.Error(), "locate script") {
		t.Errorf("Run() error = %q, want mention of locate script", err)
	}
}

func TestRun_ScriptIsDirectory(t *testing.T) {
	needSh(t)

	dir := t.TempDir()
	inv := &Invocation{
		Interpreter: "sh",
		Script:      dir,
		Stdout:      &bytes.Buffer{},
		Stderr:      &bytes.Buffer{},
	}

	outcome, err := Run(context.Background(), inv)
	if err == nil {
		t.Fatal("Run() error = nil, want launch failure")
	}
	if outcome.ExitCode != types.ExitNotFound {
		t.Errorf("Run() exit code = %d, want %d", outcome.ExitCode, types.ExitNotFound)
	}
	if !strings.Contains(err.Error(), "directory") {
		t.Errorf("Run() error = %q, want mention of directory", err)
	}
}

func TestRun_InterpreterNotExecutable(t *testing.T) {
	needSh(t)

	tmpDir := t.TempDir()
	plain := filepath.Join(tmpDir, "plain.txt")
	testutil.MustWriteFile(t, plain, []byte("not a program\n"), 0o644)

	inv := &Invocation{
		Interpreter: plain,
		Script:      "main.py",
		Stdout:      &bytes.Buffer{},
		Stderr:      &bytes.Buffer{},
	}

	outcome, err := Run(context.Background(), inv)
	if err == nil {
		t.Fatal("Run() error = nil, want launch failure")
	}
	if outcome.ExitCode != types.ExitNotExecutable {
		t.Errorf("Run() exit code = %d, want %d", outcome.ExitCode, types.ExitNotExecutable)
	}
}

func TestRun_WorkDirResolvesRelativeScript(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	needSh(t)

	tmpDir := t.TempDir()
	writeScript(t, tmpDir, "inner.sh", `echo "pwd=$(pwd)"`)

	var stdout bytes.Buffer
	inv := &Invocation{
		Interpreter: "sh",
		Script:      "inner.sh",
		WorkDir:     tmpDir,
		Stdout:      &stdout,
		Stderr:      &bytes.Buffer{},
	}

	outcome, err := Run(context.Background(), inv)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if outcome.ExitCode != types.ExitSuccess {
		t.Fatalf("Run() exit code = %d, want 0", outcome.ExitCode)
	}

	// Temp dirs can sit behind symlinks (macOS /tmp), compare resolved.
	wantDir, err := filepath.EvalSymlinks(tmpDir)
	if err != nil {
		t.Fatalf("EvalSymlinks(%s) error = %v", tmpDir, err)
	}
	got := strings.TrimSpace(strings.TrimPrefix(stdout.String(), "pwd="))
	gotDir, err := filepath.EvalSymlinks(got)
	if err != nil {
		t.Fatalf("EvalSymlinks(%s) error = %v", got, err)
	}
	if gotDir != wantDir {
		t.Errorf("Run() child pwd = %q, want %q", gotDir, wantDir)
	}
}

func TestRun_SignalDeath(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	needSh(t)

	tmpDir := t.TempDir()
	script := writeScript(t, tmpDir, "selfterm.sh", `kill -TERM $$`)

	inv := &Invocation{
		Interpreter: "sh",
		Script:      script,
		Stdout:      &bytes.Buffer{},
		Stderr:      &bytes.Buffer{},
	}

	outcome, err := Run(context.Background(), inv)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil (child ran, then died)", err)
	}
	if !outcome.Signaled {
		t.Fatal("Run() Signaled = false, want true")
	}
	if outcome.Signal != syscall.SIGTERM {
		t.Errorf("Run() signal = %v, want SIGTERM", outcome.Signal)
	}
	want := types.ExitCodeFromSignal(int(syscall.SIGTERM))
	if outcome.ExitCode != want {
		t.Errorf("Run() exit code = %d, want %d", outcome.ExitCode, want)
	}
	if !outcome.ExitCode.IsSignal() {
		t.Error("Run() exit code should classify as signal death")
	}
	if outcome.ExitCode.Signal() != int(syscall.SIGTERM) {
		t.Errorf("ExitCode.Signal() = %d, want %d", outcome.ExitCode.Signal(), syscall.SIGTERM)
	}
}

func TestRun_ContextTimeoutKillsChild(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	needSh(t)

	tmpDir := t.TempDir()
	script := writeScript(t, tmpDir, "sleep.sh", `sleep 10`)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	inv := &Invocation{
		Interpreter: "sh",
		Script:      script,
		Stdout:      &bytes.Buffer{},
		Stderr:      &bytes.Buffer{},
	}

	outcome, err := Run(ctx, inv)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil (child ran, then was killed)", err)
	}
	if !outcome.Signaled {
		t.Fatal("Run() Signaled = false, want true after context timeout")
	}
	if outcome.Signal != syscall.SIGKILL {
		t.Errorf("Run() signal = %v, want SIGKILL", outcome.Signal)
	}
	want := types.ExitCodeFromSignal(int(syscall.SIGKILL))
	if outcome.ExitCode != want {
		t.Errorf("Run() exit code = %d, want %d", outcome.ExitCode, want)
	}
	if outcome.Duration >= 10*time.Second {
		t.Errorf("Run() duration = %v, child was not killed", outcome.Duration)
	}
}

func TestRun_ExtraEnvVisibleToChild(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	needSh(t)

	tmpDir := t.TempDir()
	script := writeScript(t, tmpDir, "env.sh", `echo "probe=$VAULTRUN_LAUNCH_PROBE"`)

	var stdout bytes.Buffer
	inv := &Invocation{
		Interpreter: "sh",
		Script:      script,
		Env:         []string{"VAULTRUN_LAUNCH_PROBE=ok"},
		Stdout:      &stdout,
		Stderr:      &bytes.Buffer{},
	}

	if _, err := Run(context.Background(), inv); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != "probe=ok" {
		t.Errorf("Run() output = %q, want %q", got, "probe=ok")
	}
}

func TestRun_ParentEnvInherited(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	needSh(t)

	restore := testutil.MustSetenv(t, "VAULTRUN_PARENT_PROBE", "inherited")
	defer restore()

	tmpDir := t.TempDir()
	script := writeScript(t, tmpDir, "inherit.sh", `echo "probe=$VAULTRUN_PARENT_PROBE"`)

	var stdout bytes.Buffer
	inv := &Invocation{Interpreter: "sh", Script: script, Stdout: &stdout, Stderr: &bytes.Buffer{}}

	if _, err := Run(context.Background(), inv); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != "probe=inherited" {
		t.Errorf("Run() output = %q, want %q", got, "probe=inherited")
	}
}

func TestRun_StderrKeptSeparate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	needSh(t)

	tmpDir := t.TempDir()
	script := writeScript(t, tmpDir, "stderr.sh", "echo oops >&2\nexit 3")

	var stdout, stderr bytes.Buffer
	inv := &Invocation{Interpreter: "sh", Script: script, Stdout: &stdout, Stderr: &stderr}

	outcome, err := Run(context.Background(), inv)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if outcome.ExitCode != 3 {
		t.Errorf("Run() exit code = %d, want 3", outcome.ExitCode)
	}
	if !strings.Contains(stderr.String(), "oops") {
		t.Errorf("Run() stderr = %q, want to contain oops", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("Run() stdout = %q, want empty", stdout.String())
	}
}

func TestRun_ValidationFailure(t *testing.T) {
	inv := &Invocation{}

	outcome, err := Run(context.Background(), inv)
	if err == nil {
		t.Fatal("Run() error = nil, want validation failure")
	}
	if !errors.Is(err, ErrInvalidInvocation) {
		t.Errorf("Run() error = %v, want ErrInvalidInvocation", err)
	}
	if outcome.ExitCode != types.ExitUsage {
		t.Errorf("Run() exit code = %d, want %d", outcome.ExitCode, types.ExitUsage)
	}
}

func TestBuild_ArgvAndDir(t *testing.T) {
	inv := &Invocation{
		Interpreter: "sh",
		Script:      "run.sh",
		Args:        []string{"a", "b c"},
		WorkDir:     "/tmp",
	}

	cmd, err := Build(context.Background(), inv)
	if err != nil {
		t.Fatalf("Build() error = %v, want nil", err)
	}
	wantArgs := []string{"sh", "run.sh", "a", "b c"}
	if !slices.Equal(cmd.Args, wantArgs) {
		t.Errorf("Build() args = %v, want %v", cmd.Args, wantArgs)
	}
	if cmd.Dir != "/tmp" {
		t.Errorf("Build() dir = %q, want /tmp", cmd.Dir)
	}
}

func TestBuild_RejectsInvalidInvocation(t *testing.T) {
	cmd, err := Build(context.Background(), &Invocation{})
	if err == nil {
		t.Fatal("Build() error = nil, want validation failure")
	}
	if !errors.Is(err, ErrInvalidInvocation) {
		t.Errorf("Build() error = %v, want ErrInvalidInvocation", err)
	}
	if cmd != nil {
		t.Errorf("Build() cmd = %v, want nil", cmd)
	}
}
