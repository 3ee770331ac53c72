// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os/exec"
	"slices"
	"strings"
	"time"

	"vaultrun-cli/internal/config"
	"vaultrun-cli/internal/issue"
	"vaultrun-cli/internal/launch"
	"vaultrun-cli/internal/runtime"
	"vaultrun-cli/pkg/types"

	"github.com/spf13/cobra"
)

// newLaunchCommand creates the `vaultrun launch` command: spawn the
// configured interpreter with the program and forward every trailing
// argument to it, in order, as a discrete argv.
func newLaunchCommand(app *App) *cobra.Command {
	var (
		interpreter string
		script      string
		workdir     string
		runtimeMode string
		image       string
		worldName   string
		envVars     []string
		usePty      bool
		dryRun      bool
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "launch [flags] [--] [args...]",
		Short: "Launch the interpreter, forwarding arguments",
		Long: `Launch the configured interpreter with the configured program and
forward all remaining arguments to it.

Arguments are passed as a discrete argument vector, never through a
shell: spaces, quotes and metacharacters arrive in the program's argv
exactly as typed. The launcher waits for the program and exits with its
exit code. When the program cannot be launched at all, the exit code
tells why: 127 (not found), 126 (not executable) or 125 (other failure),
with a diagnostic on stderr. A program killed by signal N exits 128+N.

Runtimes:
  native      spawn the interpreter on the host (default)
  builtin     run a bot program on the embedded interpreter (needs --world)
  container   run the interpreter inside a container

Examples:
  vaultrun launch                              Run with no arguments
  vaultrun launch -- --world maze --level 3    Forward flags to the program
  vaultrun launch --interpreter python3.12 -- input.txt
  vaultrun launch --runtime container -- --seed 42
  vaultrun launch --dry-run -- "a b" 'c$d'     Show the exact argv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				renderIssueCard(cmd.ErrOrStderr(), issue.ConfigLoadFailedId)
				return usageError(cmd, err)
			}

			if interpreter != "" {
				cfg.Interpreter = interpreter
			}
			if script != "" {
				cfg.Script = script
			}
			if workdir != "" {
				cfg.WorkDir = workdir
			}
			if image != "" {
				cfg.Container.Image = image
			}
			if runtimeMode != "" {
				mode := config.RuntimeMode(runtimeMode)
				if err := mode.Validate(); err != nil {
					renderIssueCard(cmd.ErrOrStderr(), issue.InvalidRuntimeModeId)
					return usageError(cmd, err)
				}
				cfg.Runtime = mode
			}
			if err := cfg.Validate(); err != nil {
				return usageError(cmd, err)
			}

			extraEnv, err := parseEnvVars(envVars)
			if err != nil {
				return usageError(cmd, err)
			}

			execCtx := runtime.NewExecutionContext(cfg, args)
			execCtx.Context = cmd.Context()
			execCtx.World = worldName
			execCtx.Verbose = verbose || cfg.UI.Verbose
			execCtx.Stdout = cmd.OutOrStdout()
			execCtx.Stderr = cmd.ErrOrStderr()
			execCtx.Stdin = cmd.InOrStdin()
			maps.Copy(execCtx.ExtraEnv, extraEnv)

			if timeout > 0 {
				ctx, cancel := context.WithTimeout(execCtx.Context, timeout)
				defer cancel()
				execCtx.Context = ctx
			}

			build := runtime.BuildRegistry(runtime.BuildRegistryOptions{Config: cfg})
			if execCtx.Verbose {
				for _, diag := range build.Diagnostics {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", VerboseStyle.Render("→"), diag.Message)
				}
			}

			// A missing container engine is a launch failure, not a usage
			// error: nothing was spawned, exit 125.
			if execCtx.SelectedRuntime == config.RuntimeContainer && build.ContainerInitErr != nil {
				renderIssueCard(cmd.ErrOrStderr(), issue.ContainerEngineNotFoundId)
				return finishResult(cmd, execCtx, &runtime.Result{
					ExitCode: types.ExitInternal,
					Error:    build.ContainerInitErr,
				})
			}

			if dryRun {
				rt, err := build.Registry.GetForContext(execCtx)
				if err != nil {
					return usageError(cmd, err)
				}
				if err := rt.Validate(execCtx); err != nil {
					return usageError(cmd, err)
				}
				return renderDryRun(cmd.OutOrStdout(), execCtx, rt)
			}

			if usePty {
				return runInteractive(cmd, execCtx, build.Registry)
			}

			return finishResult(cmd, execCtx, build.Registry.Execute(execCtx))
		},
	}

	// Program arguments must never be eaten as launcher flags: the first
	// non-flag token ends flag parsing.
	cmd.Flags().SetInterspersed(false)

	cmd.Flags().StringVarP(&interpreter, "interpreter", "I", "", "interpreter executable (overrides config)")
	cmd.Flags().StringVarP(&script, "script", "s", "", "program file passed to the interpreter (overrides config)")
	cmd.Flags().StringVar(&workdir, "workdir", "", "working directory for the program")
	cmd.Flags().StringVarP(&runtimeMode, "runtime", "r", "", "runtime to use: native, builtin or container")
	cmd.Flags().StringVar(&image, "image", "", "container image (container runtime)")
	cmd.Flags().StringVarP(&worldName, "world", "w", "", "world preset name or file (builtin runtime)")
	cmd.Flags().StringArrayVarP(&envVars, "env", "e", nil, "extra environment variable as KEY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&usePty, "pty", false, "attach the program to a pseudo-terminal")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print what would be launched without launching")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "kill the program after this duration (e.g. 30s)")

	return cmd
}

// runInteractive executes on a pseudo-terminal so the program sees a real
// TTY. Runtimes that cannot attach one fall back to plain pipes.
func runInteractive(cmd *cobra.Command, execCtx *runtime.ExecutionContext, registry *runtime.Registry) error {
	rt, err := registry.GetForContext(execCtx)
	if err != nil {
		return usageError(cmd, err)
	}

	ir := runtime.GetInteractiveRuntime(rt)
	if ir == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s runtime '%s' cannot attach a pty, running with plain pipes\n",
			WarningStyle.Render("!"), rt.Name())
		return finishResult(cmd, execCtx, registry.Execute(execCtx))
	}

	if err := ir.Validate(execCtx); err != nil {
		return usageError(cmd, err)
	}

	prepared, err := ir.PrepareInteractive(execCtx)
	if err != nil {
		return finishResult(cmd, execCtx, &runtime.Result{ExitCode: types.ExitInternal, Error: err})
	}
	if prepared.Cleanup != nil {
		defer prepared.Cleanup()
	}

	outcome, err := launch.AttachPty(prepared.Cmd, nil, nil)
	return finishResult(cmd, execCtx, runtime.ResultFromOutcome(outcome, err))
}

// finishResult turns an execution result into the process exit: mirror the
// program's exit code through an ExitError, or surface a launch failure
// with its diagnostic.
func finishResult(cmd *cobra.Command, execCtx *runtime.ExecutionContext, result *runtime.Result) error {
	stderr := cmd.ErrOrStderr()

	if result.Error != nil {
		renderLaunchFailureCard(stderr, execCtx, result)
		fmt.Fprintf(stderr, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(result.Error, execCtx.Verbose))
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		if result.ExitCode != 0 {
			return &ExitError{Code: result.ExitCode, Err: result.Error}
		}
		return result.Error
	}

	if result.ExitCode != 0 {
		switch {
		case result.Signaled:
			// Killed children are always diagnosed: exit 128+N alone is
			// indistinguishable from a child exiting with that number.
			fmt.Fprintf(stderr, "%s program killed by signal %d (%s)\n",
				WarningStyle.Render("!"), int(result.Signal), result.Signal)
		case execCtx.Verbose:
			fmt.Fprintf(stderr, "%s program exited with status %d\n", VerboseStyle.Render("→"), result.ExitCode)
		}
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: result.ExitCode}
	}

	return nil
}

// renderLaunchFailureCard picks the issue card matching a launch failure.
// Usage-class failures get no card; their ActionableError already carries
// the suggestions.
func renderLaunchFailureCard(w io.Writer, execCtx *runtime.ExecutionContext, result *runtime.Result) {
	var id issue.Id
	switch {
	case result.ExitCode == types.ExitNotFound && execCtx.SelectedRuntime == config.RuntimeBuiltin:
		id = issue.ProgramNotFoundId
	case errors.Is(result.Error, exec.ErrNotFound):
		id = issue.InterpreterNotFoundId
	case result.ExitCode == types.ExitNotFound && errors.Is(result.Error, fs.ErrNotExist):
		id = issue.ScriptNotFoundId
	case result.ExitCode == types.ExitNotExecutable:
		id = issue.InterpreterNotExecutableId
	default:
		return
	}
	renderIssueCard(w, id)
}

// renderIssueCard writes the styled card for an issue id. Rendering is
// best-effort; the plain error text follows either way.
func renderIssueCard(w io.Writer, id issue.Id) {
	if rendered, err := issue.Get(id).Render("dark"); err == nil {
		fmt.Fprint(w, rendered)
	}
}

// usageError reports a bad invocation and exits with the usage code.
func usageError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, GetVerbose()))
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return &ExitError{Code: types.ExitUsage, Err: err}
}

// parseEnvVars parses KEY=VALUE pairs from --env flags.
func parseEnvVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid environment variable %q, expected KEY=VALUE", pair)
		}
		env[key] = value
	}
	return env, nil
}

// renderDryRun prints the resolved launch plan without executing: runtime,
// interpreter, program and the exact argv (shell-quoted for display only;
// the real launch never goes through a shell).
func renderDryRun(w io.Writer, execCtx *runtime.ExecutionContext, rt runtime.Runtime) error {
	cfg := execCtx.Config

	fmt.Fprintln(w, TitleStyle.Render("Dry Run"))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Runtime:"), execCtx.SelectedRuntime)

	switch execCtx.SelectedRuntime {
	case config.RuntimeBuiltin:
		fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Program:"), cfg.Script)
		fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("World:"), execCtx.World)
	default:
		fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Interpreter:"), cfg.Interpreter)
		fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Program:"), cfg.Script)
	}
	if cfg.WorkDir != "" {
		fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("WorkDir:"), cfg.WorkDir)
	}
	if execCtx.SelectedRuntime == config.RuntimeContainer {
		fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Image:"), cfg.Container.Image)
	}

	if argv := dryRunArgv(execCtx, rt); argv != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, VerboseHighlightStyle.Render("  Command:"))
		fmt.Fprintf(w, "    %s\n", argv)
	}

	if len(execCtx.ExtraEnv) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, VerboseHighlightStyle.Render("  Environment:"))
		for _, k := range slices.Sorted(maps.Keys(execCtx.ExtraEnv)) {
			fmt.Fprintf(w, "    %s=%s\n", k, execCtx.ExtraEnv[k])
		}
	}

	fmt.Fprintln(w)
	return nil
}

// dryRunArgv renders the host argv the selected runtime would execute.
// The builtin runtime spawns nothing, so it has none.
func dryRunArgv(execCtx *runtime.ExecutionContext, rt runtime.Runtime) string {
	switch concrete := rt.(type) {
	case *runtime.ContainerRuntime:
		argv, err := concrete.RunArgv(execCtx)
		if err != nil {
			return ""
		}
		return launch.QuoteArgv(argv)
	case *runtime.NativeRuntime:
		inv := &launch.Invocation{
			Interpreter: execCtx.Config.Interpreter,
			Script:      execCtx.Config.Script,
			Args:        execCtx.Args,
			WorkDir:     execCtx.Config.WorkDir,
		}
		return inv.DisplayString()
	default:
		return ""
	}
}
