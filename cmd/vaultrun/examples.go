// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"vaultrun-cli/internal/bot"
	"vaultrun-cli/internal/examples"
	"vaultrun-cli/pkg/worldfile"

	"github.com/spf13/cobra"
)

// newExamplesCommand creates the `vaultrun examples` command. Bare
// invocation lists the bundled example programs.
func newExamplesCommand() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "examples",
		Short: "List bundled example programs",
		Long: `List the bundled example programs. Each example pairs a bot program
with the builtin world it is written for.

Examples:
  vaultrun examples                        List examples
  vaultrun examples show corridor-walk     Show an example's program
  vaultrun examples run maze-escape        Run an example`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := examples.All()
			if manifestPath != "" {
				data, err := os.ReadFile(manifestPath)
				if err != nil {
					return fmt.Errorf("read manifest: %w", err)
				}
				if catalog, err = examples.ParseManifest(data); err != nil {
					return err
				}
			}

			stdout := cmd.OutOrStdout()
			fmt.Fprintln(stdout, TitleStyle.Render("Example Programs"))
			fmt.Fprintf(stdout, "%s %d example(s)\n", worldInfoIcon, len(catalog))
			fmt.Fprintln(stdout)

			for _, ex := range catalog {
				fmt.Fprintf(stdout, "%s %s\n", checkIcon, worldNameStyle.Render(ex.Name))
				fmt.Fprintf(stdout, "   %s\n", ex.Description)
				fmt.Fprintf(stdout, "   World: %s\n", worldPathStyle.Render(ex.World))
				fmt.Fprintln(stdout)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "", "list a TOML manifest file instead of the bundled catalog")

	cmd.AddCommand(newExamplesShowCommand())
	cmd.AddCommand(newExamplesRunCommand())

	return cmd
}

// newExamplesShowCommand creates `vaultrun examples show`: print one
// example's program and the world it targets.
func newExamplesShowCommand() *cobra.Command {
	var programOnly bool

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show an example's program and world",
		Long: `Show an example's program source and the world it is written for.

With --program-only the bare source is printed, ready to pipe:
  vaultrun examples show maze-escape --program-only | vaultrun run -w maze`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := lookupExample(cmd, args[0])
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			if programOnly {
				fmt.Fprint(stdout, ex.Program)
				return nil
			}

			fmt.Fprintln(stdout, TitleStyle.Render(ex.Name))
			fmt.Fprintf(stdout, "%s %s\n", worldInfoIcon, ex.Description)
			fmt.Fprintf(stdout, "%s World: %s\n", worldInfoIcon, worldNameStyle.Render(ex.World))
			fmt.Fprintln(stdout)

			if w, err := worldfile.Load(ex.World); err == nil {
				fmt.Fprint(stdout, indentLines(w.RenderGrid(), "   "))
				fmt.Fprintln(stdout)
			}

			fmt.Fprintln(stdout, SubtitleStyle.Render("Program:"))
			fmt.Fprint(stdout, ex.Program)
			return nil
		},
	}

	cmd.Flags().BoolVar(&programOnly, "program-only", false, "print only the program source")

	return cmd
}

// newExamplesRunCommand creates `vaultrun examples run`: execute an
// example against its world on the embedded interpreter.
func newExamplesRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <name>",
		Short: "Run an example on the embedded interpreter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := lookupExample(cmd, args[0])
			if err != nil {
				return err
			}

			w, err := worldfile.Load(ex.World)
			if err != nil {
				return fmt.Errorf("load world %q: %w", ex.World, err)
			}

			x, y := w.BotPosition()
			b := bot.New(w, x, y, w.BotDirection())
			return runProgram(cmd, w, b, ex.Program, GetVerbose())
		},
	}
}

// lookupExample resolves a bundled example by name, with a usage error
// naming the known examples when it does not exist.
func lookupExample(cmd *cobra.Command, name string) (examples.Example, error) {
	ex, ok := examples.Get(name)
	if !ok {
		return examples.Example{}, usageError(cmd,
			fmt.Errorf("unknown example %q, available: %s", name, strings.Join(examples.Names(), ", ")))
	}
	return ex, nil
}
