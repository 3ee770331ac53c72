// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"io"

	"vaultrun-cli/pkg/types"
)

// Engine type constants. EngineTypeAuto resolves to whichever engine is
// available, preferring Podman.
const (
	EngineTypePodman EngineType = "podman"
	EngineTypeDocker EngineType = "docker"
	EngineTypeAuto   EngineType = "auto"
)

// ErrInvalidEngineType is the sentinel error wrapped by InvalidEngineTypeError.
var ErrInvalidEngineType = errors.New("invalid container engine type")

type (
	// Engine defines the operations the launcher needs from a container engine.
	Engine interface {
		// Name returns the engine name (docker or podman).
		Name() string
		// Available checks if the engine is usable on this system.
		Available() bool
		// Version returns the engine version.
		Version(ctx context.Context) (string, error)
		// Run runs a command in a fresh container and reports its exit code.
		Run(ctx context.Context, opts RunOptions) (*RunResult, error)
		// ImageExists checks if an image is present locally.
		ImageExists(ctx context.Context, image ImageTag) (bool, error)
		// RunArgv returns the full host argv for a run, without executing.
		// Used for dry runs and PTY attachment.
		RunArgv(opts RunOptions) []string
	}

	// RunOptions contains options for running a container.
	RunOptions struct {
		// Image is the image to run.
		Image ImageTag
		// Command is the discrete argv executed inside the container.
		Command []string
		// WorkDir is the working directory inside the container.
		WorkDir string
		// Env contains environment variables set inside the container.
		Env map[string]string
		// Volumes are mounts in "host:container[:options]" format.
		Volumes []string
		// Remove removes the container after exit.
		Remove bool
		// Name is the container name. Empty lets the engine pick one.
		Name string
		// Stdin, Stdout and Stderr are wired to the container process.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// Interactive keeps stdin open.
		Interactive bool
		// TTY allocates a pseudo-TTY.
		TTY bool
		// ExtraHosts are additional host-to-IP mappings
		// (e.g., "host.docker.internal:host-gateway").
		ExtraHosts []string
	}

	// RunResult reports how the containerized process ended. Container
	// engines reuse the launcher's sentinel convention: 125 for engine
	// errors, 126/127 for unrunnable commands, so the code can be mirrored
	// directly.
	RunResult struct {
		ExitCode types.ExitCode
		Error    error
	}

	// EngineType identifies the container engine type.
	EngineType string

	// InvalidEngineTypeError is returned when an EngineType is not one of
	// the defined engines.
	InvalidEngineTypeError struct {
		Value EngineType
	}

	// ErrEngineNotAvailable is returned when no usable container engine
	// can be found.
	ErrEngineNotAvailable struct {
		Engine string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidEngineTypeError) Error() string {
	return fmt.Sprintf("invalid container engine type %q (valid: %s, %s, %s)",
		e.Value, EngineTypePodman, EngineTypeDocker, EngineTypeAuto)
}

// Unwrap returns ErrInvalidEngineType so callers can use errors.Is for programmatic detection.
func (e *InvalidEngineTypeError) Unwrap() error { return ErrInvalidEngineType }

// String returns the string representation of the EngineType.
func (t EngineType) String() string { return string(t) }

// Validate returns an error if the EngineType is not one of the defined engines.
func (t EngineType) Validate() error {
	switch t {
	case EngineTypePodman, EngineTypeDocker, EngineTypeAuto:
		return nil
	default:
		return &InvalidEngineTypeError{Value: t}
	}
}

func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// NewEngine creates a container engine honoring the preference, falling back
// to the other engine when the preferred one is missing.
func NewEngine(preferred EngineType) (Engine, error) {
	switch preferred {
	case EngineTypePodman:
		engine := NewPodmanEngine()
		if engine.Available() {
			return engine, nil
		}
		dockerEngine := NewDockerEngine()
		if dockerEngine.Available() {
			return dockerEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: string(EngineTypePodman),
			Reason: "podman is not installed or not accessible, and docker fallback is also not available",
		}

	case EngineTypeDocker:
		engine := NewDockerEngine()
		if engine.Available() {
			return engine, nil
		}
		podmanEngine := NewPodmanEngine()
		if podmanEngine.Available() {
			return podmanEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: string(EngineTypeDocker),
			Reason: "docker is not installed or not accessible, and podman fallback is also not available",
		}

	case EngineTypeAuto:
		return AutoDetectEngine()

	default:
		return nil, &InvalidEngineTypeError{Value: preferred}
	}
}

// AutoDetectEngine probes for a usable container engine. Podman is tried
// before docker since it is the common rootless setup.
func AutoDetectEngine() (Engine, error) {
	for _, engine := range []Engine{NewPodmanEngine(), NewDockerEngine()} {
		if engine.Available() {
			return engine, nil
		}
	}

	return nil, &ErrEngineNotAvailable{
		Engine: "any",
		Reason: "neither podman nor docker is installed and responding",
	}
}
