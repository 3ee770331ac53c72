// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// PodmanEngine drives the podman CLI through BaseCLIEngine.
type PodmanEngine struct {
	*BaseCLIEngine
}

// NewPodmanEngine locates the podman binary and wires up the engine. On
// SELinux-enforcing hosts volume mounts get the :z label appended.
func NewPodmanEngine(opts ...BaseCLIEngineOption) *PodmanEngine {
	path, _ := exec.LookPath("podman")

	allOpts := append([]BaseCLIEngineOption{
		WithName(string(EngineTypePodman)),
		WithVolumeFormatter(selinuxVolumeFormatter(isSELinuxEnforcing)),
	}, opts...)

	return &PodmanEngine{
		BaseCLIEngine: NewBaseCLIEngine(path, allOpts...),
	}
}

// Available reports whether the podman binary was found and answers a
// version probe.
func (e *PodmanEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	return e.CreateCommand(context.Background(), "version", "--format", "{{.Version}}").Run() == nil
}

// Version reports the podman CLI version.
func (e *PodmanEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "version", "--format", "{{.Version}}")
	if err != nil {
		return "", fmt.Errorf("podman version probe: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ImageExists reports whether image is present locally. Podman has a
// dedicated subcommand for this, so no output parsing is needed.
func (e *PodmanEngine) ImageExists(ctx context.Context, image ImageTag) (bool, error) {
	err := e.RunCommandStatus(ctx, "image", "exists", string(image))
	return err == nil, nil
}

// isSELinuxEnforcing reads the kernel's enforce flag. A missing file means
// SELinux is absent or permissive.
func isSELinuxEnforcing() bool {
	data, err := os.ReadFile("/sys/fs/selinux/enforce")
	return err == nil && strings.TrimSpace(string(data)) == "1"
}

// selinuxVolumeFormatter returns a formatter that adds the :z label to a
// volume mount when SELinux is enforcing and the mount does not already
// carry an SELinux label.
func selinuxVolumeFormatter(check SELinuxCheckFunc) VolumeFormatFunc {
	return func(volume string) string {
		if !check() {
			return volume
		}

		// Volume format: host_path:container_path[:options]
		parts := strings.Split(volume, ":")
		if len(parts) < 2 {
			return volume
		}

		if len(parts) >= 3 {
			options := parts[len(parts)-1]
			for opt := range strings.SplitSeq(options, ",") {
				if opt == "z" || opt == "Z" {
					return volume
				}
			}
			return volume + ",z"
		}

		return volume + ":z"
	}
}
