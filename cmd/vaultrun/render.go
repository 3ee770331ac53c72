// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"vaultrun-cli/internal/issue"
	"vaultrun-cli/internal/runtime"

	"github.com/spf13/cobra"
)

// newRenderCommand creates the `vaultrun render` command: print a world as
// a character grid without running anything.
func newRenderCommand(app *App) *cobra.Command {
	var gridOnly bool

	cmd := &cobra.Command{
		Use:   "render [world]",
		Short: "Print a world grid",
		Long: `Print a world as a character grid, with the bot drawn at its start pose.

The world is a preset name or a path to a world file. Without an
argument the default corridor world is rendered.

Examples:
  vaultrun render                  Render the default world
  vaultrun render maze             Render the maze preset
  vaultrun render ./my_world.cue   Render a world file
  vaultrun render maze --grid      Grid only, no state header`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()

			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				renderIssueCard(stderr, issue.ConfigLoadFailedId)
				return usageError(cmd, err)
			}

			name := "corridor"
			if len(args) == 1 {
				name = args[0]
			}

			w, err := runtime.ResolveWorld(cfg, name)
			if err != nil {
				renderIssueCard(stderr, issue.WorldNotFoundId)
				return usageError(cmd, err)
			}

			stdout := cmd.OutOrStdout()
			if gridOnly {
				fmt.Fprint(stdout, w.RenderGrid())
				return nil
			}
			fmt.Fprint(stdout, w.Render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&gridOnly, "grid", false, "print only the grid, no state header")

	return cmd
}
