// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"vaultrun-cli/internal/config"
	"vaultrun-cli/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `vaultrun config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vaultrun configuration",
		Long: `Manage vaultrun configuration.

Configuration is stored in:
  - Linux: ~/.config/vaultrun/config.cue
  - macOS: ~/Library/Application Support/vaultrun/config.cue
  - Windows: %APPDATA%\vaultrun\config.cue

A config.cue in the working directory wins over the user file, and the
` + config.ConfigPathEnvVar + ` environment variable or --config wins over both.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd, app, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App) error {
	stdout := cmd.OutOrStdout()

	cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		renderIssueCard(cmd.ErrOrStderr(), issue.ConfigLoadFailedId)
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(stdout)

	// The provider does not report which file it loaded; derive the
	// default path and show whether it exists.
	if cfgDir, dirErr := config.ConfigDir(); dirErr == nil {
		cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
		if fileExistsCheck(cfgPath) {
			fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("Config file"), cfgPath)
		} else {
			fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
	} else {
		fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(stdout)

	fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("interpreter"), valueStyle.Render(cfg.Interpreter))
	fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("script"), valueStyle.Render(cfg.Script))
	if cfg.WorkDir != "" {
		fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("workdir"), valueStyle.Render(cfg.WorkDir))
	}
	fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("runtime"), valueStyle.Render(string(cfg.Runtime)))

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s:\n", keyStyle.Render("world"))
	if cfg.World.Dir == "" {
		fmt.Fprintf(stdout, "  dir: %s\n", SubtitleStyle.Render("(not configured)"))
	} else {
		fmt.Fprintf(stdout, "  dir: %s\n", valueStyle.Render(cfg.World.Dir))
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s:\n", keyStyle.Render("container"))
	fmt.Fprintf(stdout, "  engine: %s\n", valueStyle.Render(string(cfg.Container.Engine)))
	fmt.Fprintf(stdout, "  image: %s\n", valueStyle.Render(cfg.Container.Image))

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(stdout, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(stdout, "  verbose: %s\n", valueStyle.Render(strconv.FormatBool(cfg.UI.Verbose)))

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s:\n", keyStyle.Render("log"))
	fmt.Fprintf(stdout, "  level: %s\n", valueStyle.Render(cfg.Log.Level))

	return nil
}

func initConfig(cmd *cobra.Command) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	if err = config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stdout, "%s Created default configuration at %s\n",
		checkIcon, filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))

	// Also create the worlds directory so world files have a home.
	if worldsDir, dirErr := config.WorldsDir(); dirErr == nil {
		if mkdirErr := config.EnsureWorldsDir(); mkdirErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s could not create worlds directory at %s: %v\n",
				WarningStyle.Render("!"), worldsDir, mkdirErr)
		} else {
			fmt.Fprintf(stdout, "%s Created worlds directory at %s\n", checkIcon, worldsDir)
		}
	}

	return nil
}

func showConfigPath(cmd *cobra.Command) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(stdout, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))

	if worldsDir, err := config.WorldsDir(); err == nil {
		fmt.Fprintf(stdout, "Worlds directory: %s\n", worldsDir)
	}

	return nil
}

func setConfigValue(cmd *cobra.Command, app *App, key, value string) error {
	cfg, err := app.loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	switch key {
	case "interpreter":
		cfg.Interpreter = value

	case "script":
		cfg.Script = value

	case "workdir":
		cfg.WorkDir = value

	case "runtime":
		mode := config.RuntimeMode(value)
		if err := mode.Validate(); err != nil {
			return err
		}
		cfg.Runtime = mode

	case "world.dir":
		cfg.World.Dir = value

	case "container.engine":
		engine := config.ContainerEngine(value)
		if err := engine.Validate(); err != nil {
			return err
		}
		cfg.Container.Engine = engine

	case "container.image":
		cfg.Container.Image = value

	case "ui.color_scheme":
		scheme := config.ColorScheme(value)
		if err := scheme.Validate(); err != nil {
			return err
		}
		cfg.UI.ColorScheme = scheme

	case "ui.verbose":
		cfg.UI.Verbose = value == "true" || value == "1"

	case "log.level":
		cfg.Log.Level = value

	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: interpreter, script, workdir, runtime, world.dir, container.engine, container.image, ui.color_scheme, ui.verbose, log.level", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Set %s = %s\n", checkIcon, key, value)
	return nil
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
