// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"fmt"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"vaultrun-cli/internal/config"
	"vaultrun-cli/internal/container"
	"vaultrun-cli/internal/issue"
	"vaultrun-cli/pkg/types"
)

// containerWorkDir is where the script's host directory is mounted inside
// the container, and the child's working directory.
const containerWorkDir = "/workspace"

// ContainerRuntime spawns the interpreter inside a container image. The
// script's directory is bind-mounted at /workspace so relative imports and
// data files next to the script keep working.
type ContainerRuntime struct {
	engine container.Engine
}

// NewContainerRuntime creates a container runtime using the configured engine.
func NewContainerRuntime(cfg *config.Config) (*ContainerRuntime, error) {
	engine, err := container.NewEngine(container.EngineType(cfg.Container.Engine))
	if err != nil {
		return nil, err
	}
	return &ContainerRuntime{engine: engine}, nil
}

// NewContainerRuntimeWithEngine creates a container runtime with a specific engine.
func NewContainerRuntimeWithEngine(engine container.Engine) *ContainerRuntime {
	return &ContainerRuntime{engine: engine}
}

// Engine returns the engine this runtime drives.
func (r *ContainerRuntime) Engine() container.Engine {
	return r.engine
}

// Name returns the runtime name.
func (r *ContainerRuntime) Name() string {
	return string(RuntimeTypeContainer)
}

// Available returns whether a usable container engine was found.
func (r *ContainerRuntime) Available() bool {
	return r.engine != nil && r.engine.Available()
}

// Validate checks that the context can run in a container.
func (r *ContainerRuntime) Validate(ctx *ExecutionContext) error {
	if strings.TrimSpace(ctx.Config.Interpreter) == "" {
		return fmt.Errorf("no interpreter configured")
	}
	if strings.TrimSpace(ctx.Config.Script) == "" {
		return fmt.Errorf("no script configured")
	}
	if err := container.ImageTag(ctx.Config.Container.Image).Validate(); err != nil {
		return issue.NewErrorContext().
			WithOperation("select container image").
			WithSuggestion("Set an image with --image or container.image in the configuration").
			Wrap(err).
			BuildError()
	}
	return nil
}

// Execute runs the interpreter in a fresh container and mirrors its exit
// code. Engine-level failures map to 125 like the engines themselves do.
func (r *ContainerRuntime) Execute(ctx *ExecutionContext) *Result {
	opts, err := r.runOptions(ctx)
	if err != nil {
		return &Result{ExitCode: types.ExitUsage, Error: err}
	}

	opts.Stdin = ctx.Stdin
	opts.Stdout = ctx.Stdout
	opts.Stderr = ctx.Stderr

	runResult, err := r.engine.Run(ctx.Context, *opts)
	if err != nil {
		return &Result{ExitCode: types.ExitUsage, Error: err}
	}
	if runResult.Error != nil {
		return &Result{
			ExitCode: types.ExitInternal,
			Error: issue.NewErrorContext().
				WithOperation("run container").
				WithResource(ctx.Config.Container.Image).
				WithSuggestion("Check the engine works: "+r.engine.Name()+" version").
				Wrap(runResult.Error).
				BuildError(),
		}
	}

	return &Result{ExitCode: runResult.ExitCode}
}

// RunArgv returns the full host argv the engine would execute, for dry runs.
func (r *ContainerRuntime) RunArgv(ctx *ExecutionContext) ([]string, error) {
	opts, err := r.runOptions(ctx)
	if err != nil {
		return nil, err
	}
	return r.engine.RunArgv(*opts), nil
}

// SupportsInteractive returns true when the engine can allocate a TTY.
func (r *ContainerRuntime) SupportsInteractive() bool {
	return r.Available() && goruntime.GOOS != "windows"
}

// PrepareInteractive returns the engine run command ready for PTY attachment.
func (r *ContainerRuntime) PrepareInteractive(ctx *ExecutionContext) (*PreparedCommand, error) {
	opts, err := r.runOptions(ctx)
	if err != nil {
		return nil, err
	}
	opts.Interactive = true
	opts.TTY = true

	argv := r.engine.RunArgv(*opts)
	cmd := exec.CommandContext(ctx.Context, argv[0], argv[1:]...)
	return &PreparedCommand{Cmd: cmd}, nil
}

// runOptions translates the execution context into engine run options.
func (r *ContainerRuntime) runOptions(ctx *ExecutionContext) (*container.RunOptions, error) {
	hostDir, scriptName, err := r.scriptLocation(ctx.Config)
	if err != nil {
		return nil, err
	}

	command := make([]string, 0, len(ctx.Args)+2)
	command = append(command, ctx.Config.Interpreter, scriptName)
	command = append(command, ctx.Args...)

	mount := container.VolumeMount{HostPath: hostDir, ContainerPath: containerWorkDir}

	return &container.RunOptions{
		Image:   container.ImageTag(ctx.Config.Container.Image),
		Command: command,
		WorkDir: containerWorkDir,
		Env:     ctx.ExtraEnv,
		Volumes: []string{mount.String()},
		Remove:  true,
		Name:    "vaultrun-" + ctx.ExecutionID,
	}, nil
}

// scriptLocation resolves the script to its host directory and file name.
// Relative paths resolve against the configured working directory first.
func (r *ContainerRuntime) scriptLocation(cfg *config.Config) (dir, name string, err error) {
	path := cfg.Script
	if !filepath.IsAbs(path) && cfg.WorkDir != "" {
		path = filepath.Join(cfg.WorkDir, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("resolve script path %q: %w", cfg.Script, err)
	}
	return filepath.Dir(abs), filepath.Base(abs), nil
}
