// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"sync"
)

// SandboxType identifies the application sandbox the process runs in.
type SandboxType string

// Sandbox environments that confine the launcher.
const (
	SandboxNone    SandboxType = ""
	SandboxFlatpak SandboxType = "flatpak"
	SandboxSnap    SandboxType = "snap"
)

// spawnPrefix is the host-spawn helper for one sandbox: confined processes
// cannot exec host binaries directly, they go through the portal command.
type spawnPrefix struct {
	command string
	args    []string
}

var spawnPrefixes = map[SandboxType]spawnPrefix{
	SandboxFlatpak: {command: "flatpak-spawn", args: []string{"--host"}},
	SandboxSnap:    {command: "snap", args: []string{"run", "--shell"}},
}

// detected caches the probe result for the process lifetime. The sandbox
// cannot change while the process lives. detectSandboxFrom must not panic:
// sync.OnceValue re-panics on every later call.
var detected = sync.OnceValue(func() SandboxType {
	return detectSandboxFrom(os.Getenv, statFile)
})

// DetectSandbox reports which sandbox, if any, confines the current process.
// The first call probes the environment; later calls return the cached result.
func DetectSandbox() SandboxType {
	return detected()
}

// IsInSandbox reports whether the process runs inside any sandbox.
func IsInSandbox() bool {
	return DetectSandbox() != SandboxNone
}

// GetSpawnCommand returns the helper binary that spawns processes on the
// host, or "" when no sandbox is active and children can be spawned directly.
func GetSpawnCommand() string {
	return SpawnCommandFor(DetectSandbox())
}

// GetSpawnArgs returns the helper's leading arguments. Callers prepend
// GetSpawnCommand plus these to the real argv.
func GetSpawnArgs() []string {
	return SpawnArgsFor(DetectSandbox())
}

// SpawnCommandFor returns the spawn helper for a sandbox type. Pure lookup,
// independent of the cached detection, so tests can cover every type.
func SpawnCommandFor(st SandboxType) string {
	return spawnPrefixes[st].command
}

// SpawnArgsFor returns the spawn helper arguments for a sandbox type.
func SpawnArgsFor(st SandboxType) []string {
	return spawnPrefixes[st].args
}

// detectSandboxFrom probes for a sandbox with the given lookups. Flatpak
// wins over Snap when both signals are present: /.flatpak-info only exists
// inside a Flatpak, while SNAP_NAME can leak into nested environments.
func detectSandboxFrom(lookupEnv func(string) string, statFile func(string) error) SandboxType {
	if err := statFile("/.flatpak-info"); err == nil {
		return SandboxFlatpak
	}
	if lookupEnv("SNAP_NAME") != "" {
		return SandboxSnap
	}
	return SandboxNone
}

func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
