// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	goruntime "runtime"

	"vaultrun-cli/internal/launch"
)

// NativeRuntime spawns the configured interpreter directly on the host.
type NativeRuntime struct{}

// NewNativeRuntime creates a new native runtime.
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{}
}

// Name returns the runtime name.
func (r *NativeRuntime) Name() string {
	return string(RuntimeTypeNative)
}

// Available returns whether this runtime is available. Spawning on the host
// always is; whether the configured interpreter exists is a per-launch check.
func (r *NativeRuntime) Available() bool {
	return true
}

// Validate checks that the context describes a launchable invocation.
func (r *NativeRuntime) Validate(ctx *ExecutionContext) error {
	return r.invocation(ctx).Validate()
}

// Execute spawns the interpreter and waits for it, mirroring how it ended.
func (r *NativeRuntime) Execute(ctx *ExecutionContext) *Result {
	return ResultFromOutcome(launch.Run(ctx.Context, r.invocation(ctx)))
}

// ResultFromOutcome converts a launch outcome to a Result, keeping the
// signal fact alongside the 128+N exit code.
func ResultFromOutcome(outcome *launch.Outcome, err error) *Result {
	return &Result{
		ExitCode: outcome.ExitCode,
		Signaled: outcome.Signaled,
		Signal:   outcome.Signal,
		Error:    err,
	}
}

// ExecuteCapture runs the interpreter with stdout/stderr captured.
func (r *NativeRuntime) ExecuteCapture(ctx *ExecutionContext) *Result {
	var stdout, stderr bytes.Buffer

	captured := *ctx
	captured.Stdout = &stdout
	captured.Stderr = &stderr

	result := r.Execute(&captured)
	result.Output = stdout.String()
	result.ErrOutput = stderr.String()
	return result
}

// SupportsInteractive returns true when a PTY can be allocated.
func (r *NativeRuntime) SupportsInteractive() bool {
	return goruntime.GOOS != "windows"
}

// PrepareInteractive returns the interpreter command ready for PTY
// attachment. Stdio is left unset; the PTY owns it.
func (r *NativeRuntime) PrepareInteractive(ctx *ExecutionContext) (*PreparedCommand, error) {
	inv := r.invocation(ctx)
	inv.Stdout = nil
	inv.Stderr = nil
	inv.Stdin = nil

	cmd, err := launch.Build(ctx.Context, inv)
	if err != nil {
		return nil, err
	}
	return &PreparedCommand{Cmd: cmd}, nil
}

func (r *NativeRuntime) invocation(ctx *ExecutionContext) *launch.Invocation {
	return &launch.Invocation{
		Interpreter: ctx.Config.Interpreter,
		Script:      ctx.Config.Script,
		Args:        ctx.Args,
		WorkDir:     ctx.Config.WorkDir,
		Env:         EnvToSlice(ctx.ExtraEnv),
		Stdout:      ctx.Stdout,
		Stderr:      ctx.Stderr,
		Stdin:       ctx.Stdin,
	}
}
