// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"embed"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed docs/*.md
var docsFS embed.FS

// docTopics maps topic names to their embedded guide, in listing order.
var docTopics = []struct {
	Name        string
	File        string
	Description string
}{
	{"language", "docs/language.md", "The bot program language: actions, sensors, loops and limits"},
	{"exit-codes", "docs/exit-codes.md", "How launcher and program exit codes are reported"},
	{"worlds", "docs/worlds.md", "Tile legend, builtin presets and the world file format"},
}

// newDocsCommand creates the `vaultrun docs` command: render the embedded
// guides in the terminal.
func newDocsCommand(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Read the guides in your terminal",
		Long: `Read the embedded guides in your terminal. Without a topic the
available guides are listed.

Examples:
  vaultrun docs                 List topics
  vaultrun docs language        The program language reference
  vaultrun docs exit-codes      The exit code contract
  vaultrun docs worlds --raw    Plain markdown, no styling`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: docTopicNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			if len(args) == 0 {
				fmt.Fprintln(stdout, TitleStyle.Render("Guides"))
				for _, topic := range docTopics {
					fmt.Fprintf(stdout, "%s %s\n", checkIcon, worldNameStyle.Render(topic.Name))
					fmt.Fprintf(stdout, "   %s\n", topic.Description)
				}
				fmt.Fprintln(stdout)
				fmt.Fprintf(stdout, "%s Read one with: %s\n", worldInfoIcon, CmdStyle.Render("vaultrun docs <topic>"))
				return nil
			}

			var file string
			for _, topic := range docTopics {
				if topic.Name == args[0] {
					file = topic.File
					break
				}
			}
			if file == "" {
				return usageError(cmd, fmt.Errorf("unknown topic %q, available: %s", args[0], strings.Join(docTopicNames(), ", ")))
			}

			content, err := docsFS.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read guide: %w", err)
			}

			if raw {
				fmt.Fprint(stdout, string(content))
				return nil
			}

			// The color scheme names double as glamour style names.
			style := "auto"
			if cfg, err := app.loadConfig(cmd.Context()); err == nil {
				style = string(cfg.UI.ColorScheme)
			}

			rendered, err := glamour.Render(string(content), style)
			if err != nil {
				fmt.Fprint(stdout, string(content))
				return nil
			}
			fmt.Fprint(stdout, rendered)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print plain markdown without styling")

	return cmd
}

func docTopicNames() []string {
	names := make([]string, 0, len(docTopics))
	for _, topic := range docTopics {
		names = append(names, topic.Name)
	}
	return names
}
