// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vaultrun-cli/internal/config"
	"vaultrun-cli/internal/world"
	"vaultrun-cli/pkg/worldfile"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Style definitions for world listings
var (
	worldInfoIcon  = SubtitleStyle.Render("•")
	worldNameStyle = lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	worldPathStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// newWorldsCommand creates the `vaultrun worlds` command. Bare invocation
// lists the builtin presets and any world files in the worlds directory.
func newWorldsCommand(app *App) *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:   "worlds",
		Short: "List available worlds",
		Long: `List the builtin world presets and the world files in the worlds
directory. Any listed name can be passed to run, launch or render
via --world.

Examples:
  vaultrun worlds                    List worlds
  vaultrun worlds --preview          List with grids
  vaultrun worlds export maze        Export a preset as an editable file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			fmt.Fprintln(stdout, TitleStyle.Render("Worlds"))

			presets := world.Presets()
			fmt.Fprintf(stdout, "%s %d builtin preset(s)\n", worldInfoIcon, len(presets))
			fmt.Fprintln(stdout)

			for _, p := range presets {
				fmt.Fprintf(stdout, "%s %s\n", checkIcon, worldNameStyle.Render(p.Name))
				fmt.Fprintf(stdout, "   %s (%dx%d)\n", p.Description, len(p.Rows[0]), len(p.Rows))
				if preview {
					if w, err := p.Build(); err == nil {
						fmt.Fprintln(stdout)
						fmt.Fprint(stdout, indentLines(w.RenderGrid(), "   "))
					}
				}
				fmt.Fprintln(stdout)
			}

			listCustomWorlds(cmd, app, preview)
			return nil
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "render each world's grid")

	cmd.AddCommand(newWorldsExportCommand())

	return cmd
}

// listCustomWorlds lists the world files in the configured worlds
// directory. A missing or empty directory is not an error.
func listCustomWorlds(cmd *cobra.Command, app *App, preview bool) {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	cfg, err := app.loadConfig(cmd.Context())
	if err != nil {
		return
	}

	dir := cfg.World.Dir
	if dir == "" {
		if dir, err = config.WorldsDir(); err != nil {
			return
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".cue") {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return
	}

	fmt.Fprintf(stdout, "%s %d world file(s) in %s\n", worldInfoIcon, len(files), worldPathStyle.Render(dir))
	fmt.Fprintln(stdout)

	for _, name := range files {
		path := filepath.Join(dir, name)
		wf, err := worldfile.Parse(path)
		if err != nil {
			fmt.Fprintf(stderr, "%s %s: %v\n", WarningStyle.Render("!"), name, err)
			continue
		}

		fmt.Fprintf(stdout, "%s %s\n", checkIcon, worldNameStyle.Render(strings.TrimSuffix(name, ".cue")))
		if wf.Description != "" {
			fmt.Fprintf(stdout, "   %s\n", wf.Description)
		}
		fmt.Fprintf(stdout, "   %s\n", worldPathStyle.Render(path))
		if preview {
			if w, err := wf.ToWorld(); err == nil {
				fmt.Fprintln(stdout)
				fmt.Fprint(stdout, indentLines(w.RenderGrid(), "   "))
			}
		}
		fmt.Fprintln(stdout)
	}
}

// newWorldsExportCommand creates `vaultrun worlds export`: write a builtin
// preset out as an editable CUE world file.
func newWorldsExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <preset> [file]",
		Short: "Export a builtin preset as a world file",
		Long: `Export a builtin preset as an editable CUE world file.

Without a target file the preset is written into the worlds directory,
where run, launch and render pick it up by name.

Examples:
  vaultrun worlds export maze              Export into the worlds directory
  vaultrun worlds export maze ./maze.cue   Export to a specific file`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := world.PresetByName(args[0])
			if !ok {
				names := make([]string, 0, len(world.Presets()))
				for _, known := range world.Presets() {
					names = append(names, known.Name)
				}
				return usageError(cmd, fmt.Errorf("unknown preset %q, available: %s", args[0], strings.Join(names, ", ")))
			}

			var target string
			if len(args) == 2 {
				target = args[1]
			} else {
				if err := config.EnsureWorldsDir(); err != nil {
					return fmt.Errorf("create worlds directory: %w", err)
				}
				dir, err := config.WorldsDir()
				if err != nil {
					return err
				}
				target = filepath.Join(dir, p.Name+".cue")
			}

			content := worldfile.GenerateCUE(worldfile.FromPreset(p))
			if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
				return fmt.Errorf("write world file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Exported %s to %s\n",
				checkIcon, worldNameStyle.Render(p.Name), worldPathStyle.Render(target))
			return nil
		},
	}
}

// indentLines prefixes every non-empty line of s.
func indentLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
