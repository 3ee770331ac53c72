// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vaultrun-cli/internal/bot"
	"vaultrun-cli/internal/config"
	"vaultrun-cli/internal/interp"
	"vaultrun-cli/internal/issue"
	"vaultrun-cli/internal/world"
	"vaultrun-cli/pkg/types"
	"vaultrun-cli/pkg/worldfile"
)

// BuiltinRuntime runs bot programs on the embedded interpreter, without
// spawning any external process. It keeps the launcher's result contract:
// Result.Error is non-nil only when the program never ran; a program that
// ran writes its own diagnostics to stderr and reports through ExitCode.
type BuiltinRuntime struct{}

// NewBuiltinRuntime creates a new builtin runtime.
func NewBuiltinRuntime() *BuiltinRuntime {
	return &BuiltinRuntime{}
}

// Name returns the runtime name.
func (r *BuiltinRuntime) Name() string {
	return string(RuntimeTypeBuiltin)
}

// Available returns whether this runtime is available. The embedded
// interpreter always is.
func (r *BuiltinRuntime) Available() bool {
	return true
}

// Validate checks that the context names a program and a world.
func (r *BuiltinRuntime) Validate(ctx *ExecutionContext) error {
	if strings.TrimSpace(ctx.Config.Script) == "" {
		return issue.NewErrorContext().
			WithOperation("select program").
			WithSuggestion("Set a program file with --script or in the configuration").
			Wrap(fmt.Errorf("no program file configured")).
			BuildError()
	}
	if strings.TrimSpace(ctx.World) == "" {
		return issue.NewErrorContext().
			WithOperation("select world").
			WithSuggestion("Pick a world with --world (preset name or .cue file path)").
			WithSuggestion("List presets with 'vaultrun worlds'").
			Wrap(fmt.Errorf("no world selected")).
			BuildError()
	}
	return nil
}

// Execute loads the world, reads the program and runs it to completion.
// Exit 0 means the bot reached the exit tile; exit 1 means the program
// parsed but the bot did not make it (or the program faulted).
func (r *BuiltinRuntime) Execute(ctx *ExecutionContext) *Result {
	w, err := ResolveWorld(ctx.Config, ctx.World)
	if err != nil {
		return &Result{ExitCode: types.ExitUsage, Error: err}
	}

	source, err := r.readProgram(ctx)
	if err != nil {
		return &Result{ExitCode: types.ExitNotFound, Error: err}
	}

	x, y := w.BotPosition()
	b := bot.New(w, x, y, w.BotDirection())

	itp := interp.New(w, b)
	if ctx.Verbose {
		itp.SetTrace(func(action interp.Token, status bot.Status) {
			fmt.Fprintf(ctx.Stderr, "step %3d  %-10s pos=(%d,%d) facing=%s key=%t\n",
				status.Steps, action.Value, status.X, status.Y, status.Direction, status.HaveKey)
		})
	}

	reached, runErr := itp.Run(string(source))
	if runErr != nil {
		fmt.Fprintf(ctx.Stderr, "vaultrun: program failed: %v\n", runErr)
		return &Result{ExitCode: types.ExitRunFailure}
	}

	if ctx.Verbose {
		fmt.Fprint(ctx.Stderr, w.Render())
	}

	if !reached {
		fmt.Fprintf(ctx.Stderr, "vaultrun: bot did not reach the exit (steps used: %d)\n", b.Steps())
		return &Result{ExitCode: types.ExitRunFailure}
	}

	return &Result{ExitCode: types.ExitSuccess}
}

// ExecuteCapture runs the program with stdout/stderr captured.
func (r *BuiltinRuntime) ExecuteCapture(ctx *ExecutionContext) *Result {
	var stdout, stderr bytes.Buffer

	captured := *ctx
	captured.Stdout = &stdout
	captured.Stderr = &stderr

	result := r.Execute(&captured)
	result.Output = stdout.String()
	result.ErrOutput = stderr.String()
	return result
}

// ResolveWorld loads the selected world: preset name, explicit path, or a
// name looked up in the configured worlds directory.
func ResolveWorld(cfg *config.Config, name string) (*world.World, error) {
	w, err := worldfile.Load(name)
	if err == nil {
		return w, nil
	}

	if dir := cfg.World.Dir; dir != "" && !strings.ContainsAny(name, `/\`) {
		if w, dirErr := worldfile.Load(filepath.Join(dir, name+".cue")); dirErr == nil {
			return w, nil
		}
	}

	return nil, issue.NewErrorContext().
		WithOperation("load world").
		WithResource(name).
		WithSuggestion("Use a preset name: "+strings.Join(presetNames(), ", ")).
		WithSuggestion("Or point at a world file: --world ./my_world.cue").
		Wrap(err).
		BuildError()
}

// readProgram reads the program source, resolving relative paths against
// the configured working directory like the native runtime does.
func (r *BuiltinRuntime) readProgram(ctx *ExecutionContext) ([]byte, error) {
	path := ctx.Config.Script
	if !filepath.IsAbs(path) && ctx.Config.WorkDir != "" {
		path = filepath.Join(ctx.Config.WorkDir, path)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read program").
			WithResource(ctx.Config.Script).
			WithSuggestions(
				"Check the program path, or set one with --script",
				"Use --workdir if the program lives in another directory",
			).
			Wrap(err).
			BuildError()
	}
	return source, nil
}

func presetNames() []string {
	presets := world.Presets()
	names := make([]string, 0, len(presets))
	for _, p := range presets {
		names = append(names, p.Name)
	}
	return names
}
