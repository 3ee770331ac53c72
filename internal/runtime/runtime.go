// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"syscall"
	"time"

	"vaultrun-cli/internal/config"
	"vaultrun-cli/pkg/types"
)

// Runtime type constants for the different execution environments.
const (
	RuntimeTypeNative    RuntimeType = "native"
	RuntimeTypeBuiltin   RuntimeType = "builtin"
	RuntimeTypeContainer RuntimeType = "container"
)

type (
	// ExecutionContext contains all information needed to run a program.
	ExecutionContext struct {
		// Config is the resolved launcher configuration.
		Config *config.Config
		// Args are the user arguments forwarded to the program, in order.
		// Empty is valid.
		Args []string
		// World selects the world for the builtin runtime, a preset name
		// or a world file path.
		World string
		// Context is the Go context for cancellation.
		Context context.Context
		// Stdout is where to write standard output.
		Stdout io.Writer
		// Stderr is where to write standard error.
		Stderr io.Writer
		// Stdin is where to read standard input.
		Stdin io.Reader
		// ExtraEnv contains additional environment variables.
		ExtraEnv map[string]string
		// Verbose enables step tracing and diagnostic detail.
		Verbose bool
		// SelectedRuntime is the runtime to use for execution.
		SelectedRuntime config.RuntimeMode
		// ExecutionID is a unique identifier for this execution.
		ExecutionID string
	}

	// Result contains the outcome of a program execution.
	Result struct {
		// ExitCode is the mirrored exit code, or a launch failure sentinel.
		ExitCode types.ExitCode
		// Signaled reports a child killed by Signal. The exit code alone
		// cannot carry this: a child may exit with 128+N on its own.
		Signaled bool
		// Signal is the terminating signal when Signaled is set.
		Signal syscall.Signal
		// Error contains any launch failure; a program that ran and
		// exited badly has a nil Error and a non-zero ExitCode.
		Error error
		// Output contains captured stdout (if captured).
		Output string
		// ErrOutput contains captured stderr (if captured).
		ErrOutput string
	}

	// Runtime defines the interface for program execution.
	Runtime interface {
		// Name returns the runtime name.
		Name() string
		// Execute runs a program in this runtime.
		Execute(ctx *ExecutionContext) *Result
		// Available returns whether this runtime is usable on the current system.
		Available() bool
		// Validate checks if the context can be executed with this runtime.
		Validate(ctx *ExecutionContext) error
	}

	// CapturingRuntime is implemented by runtimes that support capturing output.
	CapturingRuntime interface {
		// ExecuteCapture runs a program and captures stdout/stderr.
		ExecuteCapture(ctx *ExecutionContext) *Result
	}

	// InteractiveRuntime is implemented by runtimes that support PTY
	// attachment for full terminal interaction.
	InteractiveRuntime interface {
		Runtime

		// SupportsInteractive returns true if this runtime can run interactively.
		SupportsInteractive() bool

		// PrepareInteractive returns a command ready for PTY attachment.
		// The caller starts the command and must call Cleanup afterwards
		// when it is non-nil.
		PrepareInteractive(ctx *ExecutionContext) (*PreparedCommand, error)
	}

	// PreparedCommand contains a command ready for execution along with any
	// cleanup function.
	PreparedCommand struct {
		// Cmd is the prepared exec.Cmd ready for PTY attachment.
		Cmd *exec.Cmd
		// Cleanup is called after execution. May be nil.
		Cleanup func()
	}

	// RuntimeType identifies the type of runtime.
	//
	//nolint:revive // RuntimeType is more descriptive than Type for external callers
	RuntimeType string

	// Registry holds all available runtimes.
	Registry struct {
		runtimes map[RuntimeType]Runtime
	}
)

// NewExecutionContext creates an execution context with defaults taken from
// the configuration.
func NewExecutionContext(cfg *config.Config, args []string) *ExecutionContext {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &ExecutionContext{
		Config:          cfg,
		Args:            args,
		Context:         context.Background(),
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		Stdin:           os.Stdin,
		ExtraEnv:        make(map[string]string),
		Verbose:         cfg.UI.Verbose,
		SelectedRuntime: cfg.Runtime,
		ExecutionID:     newExecutionID(),
	}
}

func newExecutionID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}

// Success returns true if the program executed successfully.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}

// GetInteractiveRuntime returns the runtime as an InteractiveRuntime if it
// supports interactive mode, otherwise nil.
func GetInteractiveRuntime(rt Runtime) InteractiveRuntime {
	if ir, ok := rt.(InteractiveRuntime); ok && ir.SupportsInteractive() {
		return ir
	}
	return nil
}

// NewRegistry creates a new runtime registry.
func NewRegistry() *Registry {
	return &Registry{
		runtimes: make(map[RuntimeType]Runtime),
	}
}

// Register adds a runtime to the registry.
func (r *Registry) Register(typ RuntimeType, rt Runtime) {
	r.runtimes[typ] = rt
}

// Get returns a runtime by type.
func (r *Registry) Get(typ RuntimeType) (Runtime, error) {
	rt, ok := r.runtimes[typ]
	if !ok {
		return nil, fmt.Errorf("no runtime registered for %q", typ)
	}
	return rt, nil
}

// GetForContext returns the runtime selected by the execution context.
func (r *Registry) GetForContext(ctx *ExecutionContext) (Runtime, error) {
	typ := RuntimeType(ctx.SelectedRuntime)
	return r.Get(typ)
}

// Available returns all registered runtimes that are usable right now.
func (r *Registry) Available() []RuntimeType {
	var available []RuntimeType
	for typ, rt := range r.runtimes {
		if rt.Available() {
			available = append(available, typ)
		}
	}
	// Map order is random; listings should not be.
	slices.Sort(available)
	return available
}

// Execute runs a program using the runtime selected by the context.
func (r *Registry) Execute(ctx *ExecutionContext) *Result {
	rt, err := r.GetForContext(ctx)
	if err != nil {
		return &Result{ExitCode: types.ExitUsage, Error: err}
	}

	if !rt.Available() {
		return &Result{
			ExitCode: types.ExitInternal,
			Error:    fmt.Errorf("runtime %q is not available on this system", rt.Name()),
		}
	}

	if err := rt.Validate(ctx); err != nil {
		return &Result{ExitCode: types.ExitUsage, Error: err}
	}

	return rt.Execute(ctx)
}

// EnvToSlice converts a map of environment variables to sorted KEY=VALUE
// form. Sorting keeps child environments and dry-run output deterministic.
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}
