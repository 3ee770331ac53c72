// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"vaultrun-cli/pkg/types"
)

var (
	// ErrInvalidImageTag is the sentinel error wrapped by InvalidImageTagError.
	ErrInvalidImageTag = errors.New("invalid image tag")

	// ErrInvalidVolumeMount is the sentinel error wrapped by InvalidVolumeMountError.
	ErrInvalidVolumeMount = errors.New("invalid volume mount")

	// ErrInvalidRunOptions is the sentinel error wrapped by InvalidRunOptionsError.
	ErrInvalidRunOptions = errors.New("invalid run options")
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// VolumeFormatFunc formats a "host:container[:options]" mount string.
	// Podman uses this to add SELinux labels (:z) which are required in
	// SELinux-enforcing environments; without them the containerized
	// interpreter cannot read the bind-mounted script.
	VolumeFormatFunc func(volume string) string

	// SELinuxCheckFunc reports whether SELinux is enforcing.
	// This allows injection of mock implementations for testing.
	SELinuxCheckFunc func() bool

	// RunArgsTransformer modifies run arguments after they're built.
	RunArgsTransformer func(args []string) []string

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine provides common implementation for CLI-based container
	// engines. Docker and Podman engines embed this struct; only the
	// genuinely engine-specific probes (Available, Version, ImageExists)
	// live on the concrete types.
	BaseCLIEngine struct {
		name               string
		binaryPath         string
		execCommand        ExecCommandFunc
		volumeFormatter    VolumeFormatFunc
		runArgsTransformer RunArgsTransformer
	}

	// ImageTag represents a container image reference such as
	// "python:3.12-alpine". A valid tag is non-empty with no whitespace.
	ImageTag string

	// InvalidImageTagError is returned when an ImageTag is empty or
	// contains whitespace.
	InvalidImageTagError struct {
		Value ImageTag
	}

	// VolumeMount represents a bind mount of a host path into a container.
	VolumeMount struct {
		HostPath      string
		ContainerPath string
		ReadOnly      bool
	}

	// InvalidVolumeMountError is returned when a VolumeMount has empty paths.
	InvalidVolumeMountError struct {
		Value     VolumeMount
		FieldErrs []error
	}

	// InvalidRunOptionsError is returned when RunOptions fail validation.
	InvalidRunOptionsError struct {
		FieldErrs []error
	}
)

// Error implements the error interface.
func (e *InvalidImageTagError) Error() string {
	return fmt.Sprintf("invalid image tag %q (must be non-empty without whitespace)", e.Value)
}

// Unwrap returns ErrInvalidImageTag so callers can use errors.Is for programmatic detection.
func (e *InvalidImageTagError) Unwrap() error { return ErrInvalidImageTag }

// String returns the string representation of the ImageTag.
func (t ImageTag) String() string { return string(t) }

// Validate returns an error if the ImageTag is empty or contains whitespace.
func (t ImageTag) Validate() error {
	if strings.TrimSpace(string(t)) == "" || strings.ContainsAny(string(t), " \t\n") {
		return &InvalidImageTagError{Value: t}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidVolumeMountError) Error() string {
	return fmt.Sprintf("invalid volume mount %s:%s: %v",
		e.Value.HostPath, e.Value.ContainerPath, errors.Join(e.FieldErrs...))
}

// Unwrap returns ErrInvalidVolumeMount so callers can use errors.Is for programmatic detection.
func (e *InvalidVolumeMountError) Unwrap() error { return ErrInvalidVolumeMount }

// Validate returns an error if either path of the VolumeMount is empty.
func (m VolumeMount) Validate() error {
	var errs []error
	if strings.TrimSpace(m.HostPath) == "" {
		errs = append(errs, errors.New("host path must not be empty"))
	}
	if strings.TrimSpace(m.ContainerPath) == "" {
		errs = append(errs, errors.New("container path must not be empty"))
	}
	if len(errs) > 0 {
		return &InvalidVolumeMountError{Value: m, FieldErrs: errs}
	}
	return nil
}

// String returns the mount in "host:container[:ro]" format.
func (m VolumeMount) String() string {
	spec := m.HostPath + ":" + m.ContainerPath
	if m.ReadOnly {
		spec += ":ro"
	}
	return spec
}

// Error implements the error interface.
func (e *InvalidRunOptionsError) Error() string {
	return fmt.Sprintf("%v: %v", ErrInvalidRunOptions, errors.Join(e.FieldErrs...))
}

// Unwrap returns ErrInvalidRunOptions so callers can use errors.Is for programmatic detection.
func (e *InvalidRunOptionsError) Unwrap() error { return ErrInvalidRunOptions }

// Validate returns an error if the RunOptions cannot produce a valid run.
func (o RunOptions) Validate() error {
	var errs []error
	if err := o.Image.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(o.Command) == 0 {
		errs = append(errs, errors.New("command must not be empty"))
	}
	for _, v := range o.Volumes {
		if !strings.Contains(v, ":") {
			errs = append(errs, fmt.Errorf("volume %q is not in host:container format", v))
		}
	}
	if len(errs) > 0 {
		return &InvalidRunOptionsError{FieldErrs: errs}
	}
	return nil
}

// --- Option Functions ---

// WithName sets the engine name used in error messages.
func WithName(name string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.name = name
	}
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.execCommand = fn
	}
}

// WithVolumeFormatter sets a custom volume formatter function.
// This is used by Podman to add SELinux labels on Linux.
func WithVolumeFormatter(fn VolumeFormatFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.volumeFormatter = fn
	}
}

// WithRunArgsTransformer sets a custom run args transformer.
func WithRunArgsTransformer(fn RunArgsTransformer) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.runArgsTransformer = fn
	}
}

// NewBaseCLIEngine creates a new base engine with the given binary path.
func NewBaseCLIEngine(binaryPath string, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		binaryPath:         binaryPath,
		execCommand:        exec.CommandContext,
		volumeFormatter:    func(v string) string { return v },
		runArgsTransformer: func(args []string) []string { return args },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the engine name used in error messages.
func (e *BaseCLIEngine) Name() string {
	return e.name
}

// BinaryPath returns the path to the container engine binary.
func (e *BaseCLIEngine) BinaryPath() string {
	return e.binaryPath
}

// RunArgs constructs arguments for a container run command.
// Returns arguments in the order expected by docker/podman run.
//
// Generated command: <binary> run [options] <image> [command...]
func (e *BaseCLIEngine) RunArgs(opts RunOptions) []string {
	args := []string{"run"}

	if opts.Remove {
		args = append(args, "--rm")
	}

	if opts.Name != "" {
		args = append(args, "--name", opts.Name)
	}

	if opts.WorkDir != "" {
		args = append(args, "-w", opts.WorkDir)
	}

	if opts.Interactive {
		args = append(args, "-i")
	}

	if opts.TTY {
		args = append(args, "-t")
	}

	for k, v := range opts.Env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}

	for _, v := range opts.Volumes {
		args = append(args, "-v", e.volumeFormatter(v))
	}

	for _, h := range opts.ExtraHosts {
		args = append(args, "--add-host", h)
	}

	args = append(args, string(opts.Image))
	args = append(args, opts.Command...)

	return e.runArgsTransformer(args)
}

// RunArgv returns the full host argv (binary included) for a run.
func (e *BaseCLIEngine) RunArgv(opts RunOptions) []string {
	return append([]string{e.binaryPath}, e.RunArgs(opts)...)
}

// CreateCommand creates an exec.Cmd for the given arguments.
// This is useful when the caller needs to customize stdin/stdout/stderr.
func (e *BaseCLIEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	return e.execCommand(ctx, e.binaryPath, args...)
}

// RunCommandStatus executes a command and returns only the error status.
func (e *BaseCLIEngine) RunCommandStatus(ctx context.Context, args ...string) error {
	cmd := e.CreateCommand(ctx, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}
	return nil
}

// RunCommandWithOutput executes a command with stdout captured to a buffer.
func (e *BaseCLIEngine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}

	return out.String(), nil
}

// Run runs a command in a container and returns the result.
// A non-zero exit code is captured in RunResult.ExitCode (not returned as
// error); only infrastructure failures set RunResult.Error. Engines reserve
// 125/126/127 for their own failures, which lines up with the launcher's
// sentinel codes, so the exit code is mirrored as-is either way.
func (e *BaseCLIEngine) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	args := e.RunArgs(opts)

	cmd := e.CreateCommand(ctx, args...)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	err := cmd.Run()

	result := &RunResult{}
	if err != nil {
		if exitErr, ok := errors.AsType[*exec.ExitError](err); ok {
			result.ExitCode = types.ExitCode(exitErr.ExitCode())
		} else {
			result.ExitCode = types.ExitInternal
			result.Error = err
		}
	}

	return result, nil
}
