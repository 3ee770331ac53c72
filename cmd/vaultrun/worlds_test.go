// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vaultrun-cli/internal/config"
	"vaultrun-cli/internal/world"
	"vaultrun-cli/pkg/types"
	"vaultrun-cli/pkg/worldfile"
)

func TestWorldsCommand_ListsPresets(t *testing.T) {
	// Not parallel: reads the package-level verbose var.

	cfg := config.DefaultConfig()
	cfg.World.Dir = t.TempDir()
	app := NewApp(Dependencies{Config: &staticConfigProvider{cfg: cfg}})

	cmd := newWorldsCommand(app)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	if !strings.Contains(out, "4 builtin preset(s)") {
		t.Errorf("stdout missing the preset count:\n%s", out)
	}
	for _, p := range world.Presets() {
		if !strings.Contains(out, p.Name) {
			t.Errorf("stdout missing preset %q:\n%s", p.Name, out)
		}
	}
}

func TestWorldsCommand_PreviewDrawsGrids(t *testing.T) {
	// Not parallel: reads the package-level verbose var.

	cfg := config.DefaultConfig()
	cfg.World.Dir = t.TempDir()
	app := NewApp(Dependencies{Config: &staticConfigProvider{cfg: cfg}})

	cmd := newWorldsCommand(app)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--preview"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	// Every preset starts facing south, so each grid draws the bot as ↓.
	if got := strings.Count(stdout.String(), "↓"); got != len(world.Presets()) {
		t.Errorf("preview drew %d bot arrows, want %d", got, len(world.Presets()))
	}
}

func TestWorldsCommand_ListsWorldFiles(t *testing.T) {
	// Not parallel: reads the package-level verbose var.

	dir := t.TempDir()
	p, _ := world.PresetByName("maze")
	wf := worldfile.FromPreset(p)
	wf.Name = "my_maze"
	if err := os.WriteFile(filepath.Join(dir, "my_maze.cue"), []byte(worldfile.GenerateCUE(wf)), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.World.Dir = dir
	app := NewApp(Dependencies{Config: &staticConfigProvider{cfg: cfg}})

	cmd := newWorldsCommand(app)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	if !strings.Contains(out, "1 world file(s)") {
		t.Errorf("stdout missing the file count:\n%s", out)
	}
	if !strings.Contains(out, "my_maze") {
		t.Errorf("stdout missing the world file name:\n%s", out)
	}
	if stderr.Len() != 0 {
		t.Errorf("a well-formed world file should not warn:\n%s", stderr.String())
	}
}

func TestWorldsExport_ToExplicitFile(t *testing.T) {
	// Not parallel: reads the package-level verbose var.

	target := filepath.Join(t.TempDir(), "corridor.cue")

	cfg := config.DefaultConfig()
	app := NewApp(Dependencies{Config: &staticConfigProvider{cfg: cfg}})

	cmd := newWorldsCommand(app)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"export", "corridor", target})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "Exported") {
		t.Errorf("stdout missing the export confirmation:\n%s", stdout.String())
	}

	// The exported file must load back into an identical world.
	wf, err := worldfile.Parse(target)
	if err != nil {
		t.Fatalf("Parse(exported) error = %v", err)
	}
	w, err := wf.ToWorld()
	if err != nil {
		t.Fatalf("ToWorld() error = %v", err)
	}
	if w.Width() != 10 || w.Height() != 10 {
		t.Errorf("exported world is %dx%d, want 10x10", w.Width(), w.Height())
	}
	if x, y := w.BotPosition(); x != 1 || y != 1 {
		t.Errorf("exported start = (%d,%d), want (1,1)", x, y)
	}
	if dir := w.BotDirection(); dir != types.South {
		t.Errorf("exported direction = %s, want south", dir)
	}
}

func TestWorldsExport_UnknownPresetExitsUsage(t *testing.T) {
	// Not parallel: reads the package-level verbose var.

	app := NewApp(Dependencies{Config: &staticConfigProvider{cfg: config.DefaultConfig()}})

	cmd := newWorldsCommand(app)
	var stderr bytes.Buffer
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"export", "atlantis"})

	err := cmd.Execute()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Execute() = %T, want *ExitError", err)
	}
	if exitErr.Code != types.ExitUsage {
		t.Errorf("exit code = %d, want %d", exitErr.Code, types.ExitUsage)
	}
	if !strings.Contains(stderr.String(), "unknown preset") {
		t.Errorf("stderr missing the diagnostic:\n%s", stderr.String())
	}
}
