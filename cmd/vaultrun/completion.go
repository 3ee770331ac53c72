// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// newCompletionCommand creates the `vaultrun completion` command.
func newCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for the named shell on stdout.

` + SubtitleStyle.Render("Bash:") + `
  eval "$(vaultrun completion bash)"          # per shell, in ~/.bashrc
  vaultrun completion bash > /etc/bash_completion.d/vaultrun

` + SubtitleStyle.Render("Zsh:") + `
  eval "$(vaultrun completion zsh)"           # per shell, in ~/.zshrc
  vaultrun completion zsh > "${fpath[1]}/_vaultrun"

` + SubtitleStyle.Render("Fish:") + `
  vaultrun completion fish > ~/.config/fish/completions/vaultrun.fish

` + SubtitleStyle.Render("PowerShell:") + `
  vaultrun completion powershell | Out-String | Invoke-Expression
  vaultrun completion powershell >> $PROFILE
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
