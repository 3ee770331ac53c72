// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for vaultrun.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Build metadata, stamped through -ldflags by the release build.
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "vaultrun",
		Short: "Launcher and toolkit for Vault Runner programs",
		Long: TitleStyle.Render("vaultrun") + SubtitleStyle.Render(" - Launcher and toolkit for Vault Runner programs") + `

vaultrun launches the Vault Runner interpreter with your program and
arguments, forwarding them as a discrete argument vector (never through
a shell) and mirroring the interpreter's exit code. It can also run bot
programs on its embedded interpreter, in a container, or serve game
sessions over SSH.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Write a bot program (see 'vaultrun docs language')
  2. Check it parses: vaultrun validate prog.bot
  3. Run it on a world: vaultrun run prog.bot --world corridor

` + SubtitleStyle.Render("Examples:") + `
  vaultrun launch -- --level 3      Launch the interpreter, forwarding args
  vaultrun run prog.bot -w maze     Run a program on the embedded interpreter
  vaultrun worlds                   List the builtin worlds
  vaultrun examples                 List bundled example programs
  vaultrun serve --port 2222        Serve game sessions over SSH`,
	}

	// defaultApp backs the production command tree. Tests build their own
	// App and call the command constructors directly.
	defaultApp = NewApp(Dependencies{})
)

func init() {
	cobra.OnInitialize(applyVerbosity)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <config-dir>/vaultrun/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(newLaunchCommand(defaultApp))
	rootCmd.AddCommand(newRunCommand(defaultApp))
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newRenderCommand(defaultApp))
	rootCmd.AddCommand(newWorldsCommand(defaultApp))
	rootCmd.AddCommand(newExamplesCommand())
	rootCmd.AddCommand(newDocsCommand(defaultApp))
	rootCmd.AddCommand(newConfigCommand(defaultApp))
	rootCmd.AddCommand(newServeCommand(defaultApp))
	rootCmd.AddCommand(newCompletionCommand())
}

// applyVerbosity runs once flags are parsed and raises the default log
// level. Commands that honor the configured log.level must still let an
// explicit --verbose win.
func applyVerbosity() {
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// getVersionString formats the build metadata for --version output.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command; main calls it exactly once. RunE errors
// surface here, and an ExitError among them decides the process code.
func Execute() {
	// fang owns --version, so the version string goes through its option.
	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err == nil {
		return
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		os.Exit(int(exitErr.Code))
	}
	os.Exit(1)
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
