// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"vaultrun-cli/internal/bot"
	"vaultrun-cli/internal/examples"
	"vaultrun-cli/internal/interp"
	"vaultrun-cli/internal/issue"
	"vaultrun-cli/internal/runtime"
	"vaultrun-cli/internal/world"
	"vaultrun-cli/pkg/types"

	"github.com/spf13/cobra"
)

// newRunCommand creates the `vaultrun run` command: execute a bot program
// on the embedded interpreter against a world, no external process.
func newRunCommand(app *App) *cobra.Command {
	var (
		worldName string
		startPos  string
		direction string
		maxSteps  int
	)

	cmd := &cobra.Command{
		Use:   "run [program]",
		Short: "Run a bot program on the embedded interpreter",
		Long: `Run a bot program against a world on the embedded interpreter.

The program argument is a bundled example name, a file path, or "-" for
stdin; with no argument the program is read from stdin. Example names win
over file paths (see 'vaultrun examples'). Without --world, an example
runs on its paired world and a program file on a preset guessed from its
name: files mentioning a key or a door get the key and door room,
everything else the corridor.

The bot starts at the world's start tile facing its start direction
unless overridden. Exit code 0 means the bot reached the exit; 1 means
it did not (or the program faulted).

Examples:
  vaultrun run corridor-walk                   Run a bundled example
  vaultrun run prog.bot                        Run on the default world
  vaultrun run prog.bot --world maze           Run on the maze preset
  vaultrun run prog.bot -w ./custom.cue        Run on a world file
  vaultrun run prog.bot --start 3,1 --direction east
  cat prog.bot | vaultrun run --verbose        Watch each step`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()

			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				renderIssueCard(stderr, issue.ConfigLoadFailedId)
				return usageError(cmd, err)
			}

			source, exampleWorld, err := resolveRunProgram(cmd, args)
			if err != nil {
				renderIssueCard(stderr, issue.ProgramNotFoundId)
				fmt.Fprintf(stderr, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, GetVerbose()))
				cmd.SilenceUsage = true
				cmd.SilenceErrors = true
				return &ExitError{Code: types.ExitNotFound, Err: err}
			}

			if !cmd.Flags().Changed("world") {
				switch {
				case exampleWorld != "":
					worldName = exampleWorld
				case len(args) == 1 && args[0] != "-":
					worldName = presetForProgramName(args[0])
				}
			}

			w, err := runtime.ResolveWorld(cfg, worldName)
			if err != nil {
				renderIssueCard(stderr, issue.WorldNotFoundId)
				return usageError(cmd, err)
			}

			startX, startY := w.BotPosition()
			dir := w.BotDirection()
			if startPos != "" {
				startX, startY, err = parseStart(w, startPos)
				if err != nil {
					return usageError(cmd, err)
				}
			}
			if direction != "" {
				dir, err = types.ParseDirection(direction)
				if err != nil {
					return usageError(cmd, err)
				}
			}

			b := bot.New(w, startX, startY, dir)
			if maxSteps > 0 {
				b.SetStepLimit(maxSteps)
			}

			return runProgram(cmd, w, b, source, verbose || cfg.UI.Verbose)
		},
	}

	cmd.Flags().StringVarP(&worldName, "world", "w", "corridor", "world preset name or file")
	cmd.Flags().StringVar(&startPos, "start", "", "start cell as \"x,y\" (default: the world's start)")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "start direction: north, east, south or west")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "abort after this many forward moves (default: interpreter cap)")

	return cmd
}

// runProgram executes source with the given bot and renders the outcome.
// Exit 0 when the bot reaches the exit, 1 when it does not or the program
// faults.
func runProgram(cmd *cobra.Command, w *world.World, b *bot.Bot, source string, trace bool) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	itp := interp.New(w, b)
	if trace {
		itp.SetTrace(func(action interp.Token, status bot.Status) {
			fmt.Fprintln(stdout, VerboseStyle.Render(fmt.Sprintf("-- %s  pos=(%d,%d) facing=%s key=%t",
				action.Value, status.X, status.Y, status.Direction, status.HaveKey)))
			fmt.Fprint(stdout, w.Render())
			fmt.Fprintln(stdout)
		})
	}

	reached, runErr := itp.Run(source)
	if runErr != nil {
		if isParseFault(runErr) {
			renderIssueCard(stderr, issue.ProgramParseErrorId)
		}
		fmt.Fprintf(stderr, "%s %s\n", crossIcon, runErr)
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: types.ExitRunFailure, Err: runErr}
	}

	if !reached {
		fmt.Fprint(stdout, w.Render())
		fmt.Fprintf(stdout, "%s Bot did not reach the exit (steps used: %d)\n", crossIcon, b.Steps())
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: types.ExitRunFailure}
	}

	fmt.Fprint(stdout, w.Render())
	fmt.Fprintf(stdout, "%s Bot reached the exit in %d steps", checkIcon, b.Steps())
	if w.KeysCollected() > 0 || w.DoorsOpened() > 0 {
		fmt.Fprintf(stdout, " (keys: %d, doors: %d)", w.KeysCollected(), w.DoorsOpened())
	}
	fmt.Fprintln(stdout)
	return nil
}

// resolveRunProgram turns the positional argument into program source.
// Bundled example names win over file paths, matching the SSH session
// router; the second return is the example's paired world, or "" for
// files and stdin.
func resolveRunProgram(cmd *cobra.Command, args []string) (source, exampleWorld string, err error) {
	if len(args) == 1 && args[0] != "-" {
		if ex, ok := examples.Get(args[0]); ok {
			return ex.Program, ex.World, nil
		}
	}
	source, err = readProgramArg(cmd, args)
	return source, "", err
}

// presetForProgramName picks a world for a program file by its name, the
// way the bundled examples pair programs with worlds. The whole path is
// matched, "corridor" before "key"/"door", so corridor_key.bot keeps the
// plain corridor.
func presetForProgramName(path string) string {
	name := strings.ToLower(path)
	switch {
	case strings.Contains(name, "corridor"):
		return "corridor"
	case strings.Contains(name, "key"), strings.Contains(name, "door"):
		return "key_door"
	default:
		return "corridor"
	}
}

// readProgramArg reads program source from the file argument, or stdin
// when no argument (or "-") is given.
func readProgramArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		source, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read program from stdin: %w", err)
		}
		return string(source), nil
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("read program").
			WithResource(args[0]).
			WithSuggestion("Check the program path").
			WithSuggestion("Pipe the program on stdin to run without a file").
			Wrap(err).
			BuildError()
	}
	return string(source), nil
}

// parseStart parses an "x,y" start override and checks the cell is inside
// the world and walkable.
func parseStart(w *world.World, s string) (x, y int, err error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid start %q, expected \"x,y\"", s)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if errX != nil || errY != nil {
		return 0, 0, fmt.Errorf("invalid start %q, expected \"x,y\"", s)
	}
	if _, inside := w.Tile(x, y); !inside {
		return 0, 0, fmt.Errorf("start (%d,%d) is outside the %dx%d world", x, y, w.Width(), w.Height())
	}
	if w.IsWall(x, y) {
		return 0, 0, fmt.Errorf("start (%d,%d) is a wall", x, y)
	}
	return x, y, nil
}
