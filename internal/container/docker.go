// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DockerEngine drives the docker CLI through BaseCLIEngine.
type DockerEngine struct {
	*BaseCLIEngine
}

// NewDockerEngine locates the docker binary and wires up the engine.
func NewDockerEngine(opts ...BaseCLIEngineOption) *DockerEngine {
	path, _ := exec.LookPath("docker")

	allOpts := append([]BaseCLIEngineOption{WithName(string(EngineTypeDocker))}, opts...)

	return &DockerEngine{
		BaseCLIEngine: NewBaseCLIEngine(path, allOpts...),
	}
}

// Available reports whether the docker binary was found and its daemon
// answers a version probe. The Server format selector fails when only the
// client half is installed.
func (e *DockerEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	return e.CreateCommand(context.Background(), "version", "--format", "{{.Server.Version}}").Run() == nil
}

// Version reports the docker server version.
func (e *DockerEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "version", "--format", "{{.Server.Version}}")
	if err != nil {
		return "", fmt.Errorf("docker version probe: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ImageExists reports whether image is present locally. Docker has no
// dedicated existence subcommand; inspect's exit status stands in.
func (e *DockerEngine) ImageExists(ctx context.Context, image ImageTag) (bool, error) {
	err := e.RunCommandStatus(ctx, "image", "inspect", string(image))
	return err == nil, nil
}
