// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vaultrun-cli/internal/bot"
	"vaultrun-cli/internal/config"
	"vaultrun-cli/internal/interp"
	"vaultrun-cli/internal/world"
	"vaultrun-cli/pkg/types"

	"github.com/spf13/cobra"
)

// corridorSolver reaches the corridor exit at (8, 8) from the start pose
// (1, 1) facing south: seven cells down, turn to east, seven cells right.
const corridorSolver = "LOOP 7:\n  MOVE\nENDLOOP\nLEFT\nLOOP 7:\n  MOVE\nENDLOOP\n"

// keyDoorSolver solves the key and door room from (1, 1) facing south:
// east to the key at (3, 1), down and east to the door at (8, 3), then
// south to the exit.
const keyDoorSolver = "LEFT\nLOOP 2:\n  MOVE\nENDLOOP\nPICK\nRIGHT\nLOOP 2:\n  MOVE\nENDLOOP\nLEFT\nLOOP 5:\n  MOVE\nENDLOOP\nOPEN\nRIGHT\nLOOP 5:\n  MOVE\nENDLOOP\n"

func writeProgram(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.bot")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newRunTestCommand() (cmd *cobra.Command, stdout, stderr *bytes.Buffer) {
	app := NewApp(Dependencies{Config: &staticConfigProvider{cfg: config.DefaultConfig()}})
	c := newRunCommand(app)
	var out, errBuf bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&errBuf)
	return c, &out, &errBuf
}

func TestParseStart(t *testing.T) {
	t.Parallel()

	preset, ok := world.PresetByName("corridor")
	if !ok {
		t.Fatal("corridor preset missing")
	}
	w, err := preset.Build()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		input   string
		wantX   int
		wantY   int
		wantErr string
	}{
		{name: "valid cell", input: "3,4", wantX: 3, wantY: 4},
		{name: "whitespace tolerated", input: " 3 , 4 ", wantX: 3, wantY: 4},
		{name: "wall cell", input: "0,0", wantErr: "is a wall"},
		{name: "outside the grid", input: "20,5", wantErr: "outside"},
		{name: "missing comma", input: "3", wantErr: "expected"},
		{name: "non-numeric", input: "a,b", wantErr: "expected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			x, y, err := parseStart(w, tt.input)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("parseStart(%q) = (%d,%d), want error containing %q", tt.input, x, y, tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("parseStart(%q) error = %q, want containing %q", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseStart(%q) error = %v", tt.input, err)
			}
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("parseStart(%q) = (%d,%d), want (%d,%d)", tt.input, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestRunCommand_ReachesExit(t *testing.T) {
	// Not parallel: reads the package-level verbose var.

	prog := writeProgram(t, corridorSolver)
	cmd, stdout, stderr := newRunTestCommand()
	cmd.SetArgs([]string{prog})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v\nstderr: %s", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "reached the exit in 14 steps") {
		t.Errorf("stdout missing the success line:\n%s", stdout.String())
	}
}

func TestPresetForProgramName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"solve_corridor.bot", "corridor"},
		{"find_the_KEY.bot", "key_door"},
		{"door_dance.bot", "key_door"},
		// "corridor" wins over "key" when both appear.
		{"corridor_key.bot", "corridor"},
		{"prog.bot", "corridor"},
		// The whole path is matched, not just the base name.
		{"/home/runner/keyrings/prog.bot", "key_door"},
	}

	for _, tt := range tests {
		if got := presetForProgramName(tt.path); got != tt.want {
			t.Errorf("presetForProgramName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestRunCommand_ExampleNameRuns(t *testing.T) {
	// Not parallel: reads the package-level verbose var.

	cmd, stdout, stderr := newRunTestCommand()
	cmd.SetArgs([]string{"corridor-walk"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v\nstderr: %s", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "reached the exit") {
		t.Errorf("stdout missing the success line:\n%s", stdout.String())
	}
}

func TestRunCommand_FileNamePicksKeyDoorWorld(t *testing.T) {
	// Not parallel: reads the package-level verbose var.

	path := filepath.Join(t.TempDir(), "key_courier.bot")
	if err := os.WriteFile(path, []byte(keyDoorSolver), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd, stdout, stderr := newRunTestCommand()
	cmd.SetArgs([]string{path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v\nstderr: %s", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "keys: 1, doors: 1") {
		t.Errorf("stdout should report the key and door counters:\n%s", stdout.String())
	}
}

func TestRunCommand_ExplicitWorldBeatsFileName(t *testing.T) {
	// Not parallel: reads the package-level verbose var.

	path := filepath.Join(t.TempDir(), "key_courier.bot")
	if err := os.WriteFile(path, []byte(keyDoorSolver), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd, stdout, stderr := newRunTestCommand()
	cmd.SetArgs([]string{path, "--world", "corridor"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v\nstderr: %s", err, stderr.String())
	}
	// The same route crosses the open room: it reaches the exit but there
	// is no key to collect, so no counters are reported.
	if !strings.Contains(stdout.String(), "reached the exit") {
		t.Errorf("stdout missing the success line:\n%s", stdout.String())
	}
	if strings.Contains(stdout.String(), "keys:") {
		t.Errorf("corridor has no key to collect:\n%s", stdout.String())
	}
}

func TestRunCommand_NotReachedExitsOne(t *testing.T) {
	// Not parallel: reads the package-level verbose var.

	prog := writeProgram(t, "MOVE\n")
	cmd, stdout, _ := newRunTestCommand()
	cmd.SetArgs([]string{prog})

	err := cmd.Execute()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Execute() = %T, want *ExitError", err)
	}
	if exitErr.Code != types.ExitRunFailure {
		t.Errorf("exit code = %d, want %d", exitErr.Code, types.ExitRunFailure)
	}
	if !strings.Contains(stdout.String(), "did not reach the exit") {
		t.Errorf("stdout missing the failure line:\n%s", stdout.String())
	}
}

func TestRunCommand_LoopLimitFaultExitsOne(t *testing.T) {
	// Not parallel: reads the package-level verbose var.

	prog := writeProgram(t, "LOOP 9999:\n  MOVE\nENDLOOP\n")
	cmd, _, _ := newRunTestCommand()
	cmd.SetArgs([]string{prog})

	err := cmd.Execute()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Execute() = %T, want *ExitError", err)
	}
	if exitErr.Code != types.ExitRunFailure {
		t.Errorf("exit code = %d, want %d", exitErr.Code, types.ExitRunFailure)
	}
	if !errors.Is(err, interp.ErrLoopLimit) {
		t.Error("error should wrap interp.ErrLoopLimit")
	}
}

func TestRunCommand_StartAndDirectionOverride(t *testing.T) {
	// Not parallel: reads the package-level verbose var.

	prog := writeProgram(t, "LOOP 7:\n  MOVE\nENDLOOP\n")
	cmd, stdout, stderr := newRunTestCommand()
	cmd.SetArgs([]string{prog, "--start", "1,8", "--direction", "east"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v\nstderr: %s", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "reached the exit in 7 steps") {
		t.Errorf("stdout missing the success line:\n%s", stdout.String())
	}
}

func TestRunCommand_MaxStepsAborts(t *testing.T) {
	// Not parallel: reads the package-level verbose var.

	prog := writeProgram(t, "LOOP 7:\n  MOVE\nENDLOOP\n")
	cmd, _, _ := newRunTestCommand()
	cmd.SetArgs([]string{prog, "--max-steps", "3"})

	err := cmd.Execute()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Execute() = %T, want *ExitError", err)
	}
	if exitErr.Code != types.ExitRunFailure {
		t.Errorf("exit code = %d, want %d", exitErr.Code, types.ExitRunFailure)
	}
	if !errors.Is(err, bot.ErrStepLimit) {
		t.Error("error should wrap bot.ErrStepLimit")
	}
}

func TestRunCommand_ReadsStdin(t *testing.T) {
	// Not parallel: reads the package-level verbose var.

	cmd, stdout, stderr := newRunTestCommand()
	cmd.SetIn(strings.NewReader(corridorSolver))
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v\nstderr: %s", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "reached the exit") {
		t.Errorf("stdout missing the success line:\n%s", stdout.String())
	}
}

func TestRunCommand_MissingProgramExits127(t *testing.T) {
	// Not parallel: reads the package-level verbose var.

	cmd, _, stderr := newRunTestCommand()
	cmd.SetArgs([]string{"/nonexistent/prog.bot"})

	err := cmd.Execute()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Execute() = %T, want *ExitError", err)
	}
	if exitErr.Code != types.ExitNotFound {
		t.Errorf("exit code = %d, want %d", exitErr.Code, types.ExitNotFound)
	}
	if !strings.Contains(stderr.String(), "Error:") {
		t.Errorf("stderr missing the diagnostic:\n%s", stderr.String())
	}
}

func TestRunCommand_UnknownWorldExitsUsage(t *testing.T) {
	// Not parallel: reads the package-level verbose var.

	prog := writeProgram(t, "MOVE\n")
	cmd, _, _ := newRunTestCommand()
	cmd.SetArgs([]string{prog, "--world", "atlantis"})

	err := cmd.Execute()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Execute() = %T, want *ExitError", err)
	}
	if exitErr.Code != types.ExitUsage {
		t.Errorf("exit code = %d, want %d", exitErr.Code, types.ExitUsage)
	}
}
