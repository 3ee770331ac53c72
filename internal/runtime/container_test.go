// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"vaultrun-cli/internal/config"
	"vaultrun-cli/internal/container"
	"vaultrun-cli/internal/issue"
	"vaultrun-cli/pkg/types"
)

type fakeEngine struct {
	name      string
	available bool
	runResult *container.RunResult
	runErr    error
	argv      []string

	lastOpts *container.RunOptions
}

func (f *fakeEngine) Name() string    { return f.name }
func (f *fakeEngine) Available() bool { return f.available }

func (f *fakeEngine) Version(context.Context) (string, error) { return "0.0-test", nil }

func (f *fakeEngine) Run(_ context.Context, opts container.RunOptions) (*container.RunResult, error) {
	f.lastOpts = &opts
	if f.runErr != nil {
		return nil, f.runErr
	}
	return f.runResult, nil
}

func (f *fakeEngine) ImageExists(context.Context, container.ImageTag) (bool, error) {
	return true, nil
}

func (f *fakeEngine) RunArgv(opts container.RunOptions) []string {
	f.lastOpts = &opts
	return f.argv
}

// containerContext returns a context for a fixed script path so option
// translation is deterministic.
func containerContext(t *testing.T, args ...string) *ExecutionContext {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Interpreter = "python3"
	cfg.Script = filepath.Join(t.TempDir(), "main.py")

	ctx := NewExecutionContext(cfg, args)
	ctx.Stdout = &bytes.Buffer{}
	ctx.Stderr = &bytes.Buffer{}
	return ctx
}

func TestContainerRuntime_NameAndEngine(t *testing.T) {
	eng := &fakeEngine{name: "podman", available: true}
	rt := NewContainerRuntimeWithEngine(eng)

	if rt.Name() != "container" {
		t.Errorf("Name() = %q, want container", rt.Name())
	}
	if rt.Engine() != container.Engine(eng) {
		t.Error("Engine() should return the injected engine")
	}
}

func TestContainerRuntime_Available(t *testing.T) {
	if (&ContainerRuntime{}).Available() {
		t.Error("Available() = true without an engine")
	}
	if NewContainerRuntimeWithEngine(&fakeEngine{available: false}).Available() {
		t.Error("Available() = true with an unavailable engine")
	}
	if !NewContainerRuntimeWithEngine(&fakeEngine{available: true}).Available() {
		t.Error("Available() = false with a working engine")
	}
}

func TestContainerRuntime_Validate(t *testing.T) {
	tests := []struct {
		name        string
		interpreter string
		script      string
		image       string
		wantErr     bool
	}{
		{"valid", "python3", "main.py", "python:3.12-alpine", false},
		{"missing interpreter", "", "main.py", "python:3.12-alpine", true},
		{"missing script", "python3", "", "python:3.12-alpine", true},
		{"blank image", "python3", "main.py", "  ", true},
	}

	rt := NewContainerRuntimeWithEngine(&fakeEngine{available: true})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Interpreter = tt.interpreter
			cfg.Script = tt.script
			cfg.Container.Image = tt.image

			err := rt.Validate(NewExecutionContext(cfg, nil))
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestContainerRuntime_Execute_MirrorsExitCode(t *testing.T) {
	eng := &fakeEngine{name: "docker", available: true, runResult: &container.RunResult{ExitCode: 42}}
	rt := NewContainerRuntimeWithEngine(eng)

	ctx := containerContext(t, "--fast", "input.txt")
	ctx.ExtraEnv["TOKEN"] = "abc"

	result := rt.Execute(ctx)
	if result.ExitCode != 42 {
		t.Errorf("Execute() exit code = %d, want 42", result.ExitCode)
	}
	if result.Error != nil {
		t.Errorf("Execute() error = %v, want nil for a program that ran", result.Error)
	}

	opts := eng.lastOpts
	if opts == nil {
		t.Fatal("engine was not invoked")
	}
	wantCommand := []string{"python3", "main.py", "--fast", "input.txt"}
	if !slices.Equal(opts.Command, wantCommand) {
		t.Errorf("container command = %q, want %q", opts.Command, wantCommand)
	}
	if opts.WorkDir != "/workspace" {
		t.Errorf("container workdir = %q, want /workspace", opts.WorkDir)
	}
	wantMount := filepath.Dir(ctx.Config.Script) + ":/workspace"
	if len(opts.Volumes) != 1 || opts.Volumes[0] != wantMount {
		t.Errorf("volumes = %q, want [%s]", opts.Volumes, wantMount)
	}
	if !opts.Remove {
		t.Error("containers should be removed after the run")
	}
	if !strings.HasPrefix(opts.Name, "vaultrun-") {
		t.Errorf("container name = %q, want a vaultrun- prefix", opts.Name)
	}
	if opts.Env["TOKEN"] != "abc" {
		t.Errorf("env = %v, want TOKEN=abc forwarded", opts.Env)
	}
	if opts.Stdout != ctx.Stdout || opts.Stderr != ctx.Stderr {
		t.Error("stdio should be wired through to the engine")
	}
}

func TestContainerRuntime_Execute_EngineInfraFailure(t *testing.T) {
	eng := &fakeEngine{
		name:      "docker",
		available: true,
		runResult: &container.RunResult{ExitCode: types.ExitInternal, Error: errors.New("daemon gone")},
	}
	rt := NewContainerRuntimeWithEngine(eng)

	result := rt.Execute(containerContext(t))
	if result.ExitCode != types.ExitInternal {
		t.Errorf("Execute() exit code = %d, want %d", result.ExitCode, types.ExitInternal)
	}
	var actionable *issue.ActionableError
	if !errors.As(result.Error, &actionable) {
		t.Errorf("Execute() error = %v, want an actionable error", result.Error)
	}
}

func TestContainerRuntime_Execute_RejectedOptions(t *testing.T) {
	eng := &fakeEngine{name: "docker", available: true, runErr: errors.New("invalid run options")}
	rt := NewContainerRuntimeWithEngine(eng)

	result := rt.Execute(containerContext(t))
	if result.ExitCode != types.ExitUsage {
		t.Errorf("Execute() exit code = %d, want %d", result.ExitCode, types.ExitUsage)
	}
	if result.Error == nil {
		t.Error("Execute() error = nil, want the engine rejection")
	}
}

func TestContainerRuntime_RunArgv(t *testing.T) {
	eng := &fakeEngine{name: "podman", available: true, argv: []string{"podman", "run", "--rm"}}
	rt := NewContainerRuntimeWithEngine(eng)

	argv, err := rt.RunArgv(containerContext(t))
	if err != nil {
		t.Fatalf("RunArgv() error = %v", err)
	}
	if !slices.Equal(argv, eng.argv) {
		t.Errorf("RunArgv() = %q, want %q", argv, eng.argv)
	}
}

func TestContainerRuntime_PrepareInteractive(t *testing.T) {
	eng := &fakeEngine{name: "podman", available: true, argv: []string{"podman", "run", "-i", "-t"}}
	rt := NewContainerRuntimeWithEngine(eng)

	if !rt.SupportsInteractive() {
		t.Skip("no PTY support on this platform")
	}

	prepared, err := rt.PrepareInteractive(containerContext(t))
	if err != nil {
		t.Fatalf("PrepareInteractive() error = %v", err)
	}
	if !slices.Equal(prepared.Cmd.Args, eng.argv) {
		t.Errorf("prepared argv = %q, want %q", prepared.Cmd.Args, eng.argv)
	}
	if eng.lastOpts == nil || !eng.lastOpts.Interactive || !eng.lastOpts.TTY {
		t.Error("interactive runs should request -i and a TTY")
	}
}

func TestContainerRuntime_RelativeScriptResolvesAgainstWorkDir(t *testing.T) {
	eng := &fakeEngine{name: "docker", available: true, runResult: &container.RunResult{ExitCode: 0}}
	rt := NewContainerRuntimeWithEngine(eng)

	workDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Interpreter = "python3"
	cfg.Script = "main.py"
	cfg.WorkDir = workDir

	ctx := NewExecutionContext(cfg, nil)
	ctx.Stdout = &bytes.Buffer{}
	ctx.Stderr = &bytes.Buffer{}

	if result := rt.Execute(ctx); !result.Success() {
		t.Fatalf("Execute() = %+v, want success", result)
	}

	wantMount := workDir + ":/workspace"
	if len(eng.lastOpts.Volumes) != 1 || eng.lastOpts.Volumes[0] != wantMount {
		t.Errorf("volumes = %q, want [%s]", eng.lastOpts.Volumes, wantMount)
	}
	if eng.lastOpts.Command[1] != "main.py" {
		t.Errorf("script name in container = %q, want main.py", eng.lastOpts.Command[1])
	}
}
