// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"

	"vaultrun-cli/internal/config"
)

const (
	// CodeContainerRuntimeInitFailed marks a container runtime that could
	// not be set up, usually because no engine binary was found.
	CodeContainerRuntimeInitFailed InitDiagnosticCode = "container_runtime_init_failed"
)

// ErrInvalidInitDiagnosticCode is the sentinel wrapped by
// InvalidInitDiagnosticCodeError.
var ErrInvalidInitDiagnosticCode = errors.New("invalid init diagnostic code")

type (
	// BuildRegistryOptions configures runtime registry construction.
	BuildRegistryOptions struct {
		// Config controls runtime behavior.
		Config *config.Config
	}

	// InitDiagnosticCode names a class of non-fatal registry setup problems.
	InitDiagnosticCode string

	// InvalidInitDiagnosticCodeError reports an InitDiagnosticCode outside
	// the defined set.
	InvalidInitDiagnosticCodeError struct {
		Value InitDiagnosticCode
	}

	// InitDiagnostic carries one non-fatal setup problem to the CLI layer,
	// which surfaces it in verbose mode.
	InitDiagnostic struct {
		Code    InitDiagnosticCode
		Message string
		Cause   error
	}

	// RegistryBuildResult is what BuildRegistry hands back. Registry is
	// never nil; ContainerInitErr and Diagnostics describe a container
	// runtime that failed to come up.
	RegistryBuildResult struct {
		Registry         *Registry
		Diagnostics      []InitDiagnostic
		ContainerInitErr error
	}
)

func (e *InvalidInitDiagnosticCodeError) Error() string {
	return fmt.Sprintf("invalid init diagnostic code %q (valid: %s)",
		e.Value, CodeContainerRuntimeInitFailed)
}

// Unwrap lets errors.Is match ErrInvalidInitDiagnosticCode.
func (e *InvalidInitDiagnosticCodeError) Unwrap() error { return ErrInvalidInitDiagnosticCode }

// String returns the code as a plain string.
func (c InitDiagnosticCode) String() string { return string(c) }

// Validate rejects codes outside the defined set.
func (c InitDiagnosticCode) Validate() error {
	if c == CodeContainerRuntimeInitFailed {
		return nil
	}
	return &InvalidInitDiagnosticCodeError{Value: c}
}

// BuildRegistry creates and populates the runtime registry. The native and
// builtin runtimes always register; the container runtime is best-effort,
// with failures reported through Diagnostics and ContainerInitErr so a
// machine without an engine can still launch natively.
func BuildRegistry(opts BuildRegistryOptions) RegistryBuildResult {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	reg := NewRegistry()
	reg.Register(RuntimeTypeNative, NewNativeRuntime())
	reg.Register(RuntimeTypeBuiltin, NewBuiltinRuntime())

	containerRT, err := NewContainerRuntime(cfg)
	if err != nil {
		return RegistryBuildResult{
			Registry:         reg,
			ContainerInitErr: err,
			Diagnostics: []InitDiagnostic{{
				Code:    CodeContainerRuntimeInitFailed,
				Message: fmt.Sprintf("container runtime unavailable: %v", err),
				Cause:   err,
			}},
		}
	}

	reg.Register(RuntimeTypeContainer, containerRT)
	return RegistryBuildResult{Registry: reg}
}
