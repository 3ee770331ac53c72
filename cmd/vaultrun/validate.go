// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"vaultrun-cli/internal/interp"
	"vaultrun-cli/internal/issue"
	"vaultrun-cli/pkg/types"

	"github.com/spf13/cobra"
)

// Icons for staged validation output.
var (
	checkIcon = SuccessStyle.Render("✓")
	crossIcon = ErrorStyle.Render("✗")
)

// newValidateCommand creates the `vaultrun validate` command. It runs the
// tokenizer and parser over a program without executing it.
func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [program]",
		Short: "Check a bot program without running it",
		Long: `Check a bot program for lexical and syntax errors without running it.

The program is read from the given file, or from stdin when no file (or
"-") is given. Validation stops at the first fault and reports the line
and column it occurred at.

Examples:
  vaultrun validate prog.bot          Validate a program file
  cat prog.bot | vaultrun validate    Validate from stdin`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			stderr := cmd.ErrOrStderr()

			source, err := readProgramArg(cmd, args)
			if err != nil {
				renderIssueCard(stderr, issue.ProgramNotFoundId)
				fmt.Fprintf(stderr, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, GetVerbose()))
				cmd.SilenceUsage = true
				cmd.SilenceErrors = true
				return &ExitError{Code: types.ExitNotFound, Err: err}
			}

			fmt.Fprintln(stdout, TitleStyle.Render("Program Validation"))

			tokens, err := interp.Tokenize(source)
			if err != nil {
				fmt.Fprintf(stderr, "%s Tokenizer failed\n", crossIcon)
				fmt.Fprintln(stderr)
				fmt.Fprintf(stderr, "  %s\n", err)
				renderIssueCard(stderr, issue.ProgramParseErrorId)
				cmd.SilenceUsage = true
				cmd.SilenceErrors = true
				return &ExitError{Code: types.ExitRunFailure, Err: err}
			}
			// The stream always ends with EOF; don't count it.
			fmt.Fprintf(stdout, "%s Tokenizer passed (%d tokens)\n", checkIcon, len(tokens)-1)

			program, err := interp.Parse(tokens)
			if err != nil {
				fmt.Fprintf(stderr, "%s Parser failed\n", crossIcon)
				fmt.Fprintln(stderr)
				fmt.Fprintf(stderr, "  %s\n", err)
				renderIssueCard(stderr, issue.ProgramParseErrorId)
				cmd.SilenceUsage = true
				cmd.SilenceErrors = true
				return &ExitError{Code: types.ExitRunFailure, Err: err}
			}
			fmt.Fprintf(stdout, "%s Parser passed (%d top-level statements)\n", checkIcon, len(program))

			fmt.Fprintln(stdout)
			fmt.Fprintf(stdout, "%s Program is valid\n", checkIcon)
			return nil
		},
	}
}

// isParseFault reports whether err came from the tokenizer or parser
// rather than from executing the program.
func isParseFault(err error) bool {
	return errors.Is(err, interp.ErrInvalidToken) ||
		errors.Is(err, interp.ErrParse) ||
		errors.Is(err, interp.ErrNestingDepth) ||
		errors.Is(err, interp.ErrLoopLimit)
}
