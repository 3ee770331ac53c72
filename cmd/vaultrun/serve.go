// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"time"

	"vaultrun-cli/internal/issue"
	"vaultrun-cli/internal/sshserver"
	"vaultrun-cli/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// newServeCommand creates the `vaultrun serve` command: serve game
// sessions over SSH.
func newServeCommand(app *App) *cobra.Command {
	var (
		host          string
		port          int
		token         string
		generateToken bool
		tokenTTL      time.Duration
		defaultWorld  string
		frameDelay    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve game sessions over SSH",
		Long: `Serve game sessions over SSH.

Interactive sessions get a live world view; piping a program into the
connection runs it against the default world and reports the result:

  ssh -p 2222 localhost
  cat prog.bot | ssh -p 2222 localhost

Without a token the server accepts every connection, which is only
sensible on a loopback address. Use --generate-token (or --token) to
require authentication.

Examples:
  vaultrun serve --port 2222
  vaultrun serve --port 2222 --world maze
  vaultrun serve --host 0.0.0.0 --port 2222 --generate-token`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			stderr := cmd.ErrOrStderr()

			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				renderIssueCard(stderr, issue.ConfigLoadFailedId)
				return usageError(cmd, err)
			}
			// An explicit --verbose wins over the configured level.
			if lvl, lvlErr := log.ParseLevel(cfg.Log.Level); lvlErr == nil && !verbose {
				log.SetLevel(lvl)
			}

			srvCfg := sshserver.DefaultConfig()
			srvCfg.Host = sshserver.HostAddress(host)
			srvCfg.Port = types.ListenPort(port)
			srvCfg.Token = sshserver.TokenValue(token)
			srvCfg.DefaultWorld = defaultWorld
			if tokenTTL > 0 {
				srvCfg.TokenTTL = tokenTTL
			}
			if frameDelay > 0 {
				srvCfg.FrameDelay = frameDelay
			}
			if err := srvCfg.Validate(); err != nil {
				return usageError(cmd, err)
			}

			srv := sshserver.New(srvCfg)

			if generateToken {
				tok, err := srv.GenerateToken()
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "%s Session token: %s\n", checkIcon, CmdStyle.Render(tok.Value.String()))
				fmt.Fprintf(stdout, "%s Expires: %s\n", worldInfoIcon, tok.ExpiresAt.Format(time.RFC3339))
				fmt.Fprintln(stdout)
			}

			if err := srv.Start(cmd.Context()); err != nil {
				renderIssueCard(stderr, issue.ServeStartFailedId)
				fmt.Fprintf(stderr, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, GetVerbose()))
				cmd.SilenceUsage = true
				cmd.SilenceErrors = true
				return &ExitError{Code: types.ExitInternal, Err: err}
			}

			// fang cancels the command context on SIGINT; fold that into a
			// graceful stop.
			go func() {
				<-cmd.Context().Done()
				_ = srv.Stop()
			}()

			fmt.Fprintln(stdout, TitleStyle.Render("SSH Server"))
			fmt.Fprintf(stdout, "%s Listening on %s\n", checkIcon, CmdStyle.Render(srv.Address()))
			fmt.Fprintf(stdout, "%s Connect with: %s\n", worldInfoIcon, CmdStyle.Render(fmt.Sprintf("ssh -p %d %s", srv.Port(), srv.Host())))
			fmt.Fprintf(stdout, "%s Default world: %s\n", worldInfoIcon, worldNameStyle.Render(srvCfg.DefaultWorld))
			if srv.AuthEnabled() {
				fmt.Fprintf(stdout, "%s Authentication: token required\n", worldInfoIcon)
			} else {
				fmt.Fprintf(stdout, "%s Authentication: open (every connection accepted)\n", WarningStyle.Render("!"))
			}
			fmt.Fprintln(stdout)
			fmt.Fprintln(stdout, SubtitleStyle.Render("Press Ctrl+C to stop"))

			return srv.Wait()
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (0 picks a free port)")
	cmd.Flags().StringVar(&token, "token", "", "require this session token")
	cmd.Flags().BoolVar(&generateToken, "generate-token", false, "generate and print a session token")
	cmd.Flags().DurationVar(&tokenTTL, "token-ttl", 0, "how long tokens stay valid (default 1h)")
	cmd.Flags().StringVarP(&defaultWorld, "world", "w", "corridor", "world for piped program sessions")
	cmd.Flags().DurationVar(&frameDelay, "frame-delay", 0, "delay between redraws in interactive sessions (default 120ms)")

	return cmd
}
