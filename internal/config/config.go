// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"vaultrun-cli/internal/issue"
	"vaultrun-cli/pkg/cueutil"
	"vaultrun-cli/pkg/platform"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "vaultrun"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// ConfigPathEnvVar names an alternate config file, checked when no
	// explicit path is given.
	ConfigPathEnvVar = "VAULTRUN_CONFIG"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the vaultrun configuration directory under the
// platform's conventional per-user configuration root.
//
//nolint:revive // keep the Config prefix; config.Dir reads worse at call sites
func ConfigDir() (string, error) {
	// Tests point this at a temp directory.
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	base, err := platformConfigBase()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

// platformConfigBase picks the per-user configuration root: %APPDATA% on
// Windows, ~/Library/Application Support on macOS, and $XDG_CONFIG_HOME
// (falling back to ~/.config) elsewhere.
func platformConfigBase() (string, error) {
	switch runtime.GOOS {
	case platform.Windows:
		if dir := os.Getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		return filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming"), nil
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	default:
		if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, ".config"), nil
	}
}

// WorldsDir returns the directory for user-defined world files.
// The path is ~/.vaultrun/worlds on all platforms.
func WorldsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".vaultrun", "worlds"), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level cache state. Callers that want caching can wrap this function.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("load config canceled: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// An explicit path wins; the environment fills in when the caller
	// passed none.
	if opts.ConfigFilePath == "" {
		opts.ConfigFilePath = os.Getenv(ConfigPathEnvVar)
	}

	resolvedPath, err := resolveAndLoad(v, opts)
	if err != nil {
		return nil, "", err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Enum and non-empty checks that survive viper's merging; a config file
	// can only get here with valid values, but flag and env overrides cannot
	// be caught by the CUE schema.
	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithSuggestion("Check the reported fields against 'vaultrun config show'").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// setDefaults seeds viper with the built-in configuration so a missing or
// partial file still yields a complete Config.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("interpreter", defaults.Interpreter)
	v.SetDefault("script", defaults.Script)
	v.SetDefault("workdir", defaults.WorkDir)
	v.SetDefault("runtime", string(defaults.Runtime))
	v.SetDefault("world.dir", defaults.World.Dir)
	v.SetDefault("container.engine", string(defaults.Container.Engine))
	v.SetDefault("container.image", defaults.Container.Image)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("log.level", defaults.Log.Level)
}

// resolveAndLoad finds the effective config file and merges it into v.
// Precedence: explicit path, then config.cue in the working directory, then
// the user config directory. Returns the path that was loaded, or "" when
// only defaults apply.
func resolveAndLoad(v *viper.Viper, opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'vaultrun config show' to see default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, opts.ConfigFilePath); err != nil {
			return "", wrapLoadError(opts.ConfigFilePath, err)
		}
		return opts.ConfigFilePath, nil
	}

	localPath := ConfigFileName + "." + ConfigFileExt
	if fileExists(localPath) {
		if err := loadCUEIntoViper(v, localPath); err != nil {
			return "", wrapLoadError(localPath, err)
		}
		return localPath, nil
	}

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		var err error
		if cfgDir, err = ConfigDir(); err != nil {
			return "", err
		}
	}

	userPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if !fileExists(userPath) {
		// No file anywhere: defaults apply.
		return "", nil
	}
	if err := loadCUEIntoViper(v, userPath); err != nil {
		return "", wrapLoadError(userPath, err)
	}
	return userPath, nil
}

// wrapLoadError decorates a config parse failure with the suggestions the
// CLI prints for every malformed config file.
func wrapLoadError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithSuggestion("Verify the configuration values match the expected schema").
		WithSuggestion("See 'vaultrun config --help' for configuration options").
		Wrap(err).
		BuildError()
}

// loadCUEIntoViper validates a CUE config file against the embedded #Config
// schema and merges the decoded fields into v.
//
// This does not go through cueutil.ParseAndDecode: the result has to land in
// viper's config map rather than a struct, and every field is optional, so
// the decode target is map[string]any and validation runs without
// cue.Concrete.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	cctx := cuecontext.New()

	schema := cctx.CompileString(configSchema).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", err)
	}

	user := cctx.CompileBytes(data, cue.Filename(path))
	if err := user.Err(); err != nil {
		return cueutil.FormatError(err, path)
	}

	unified := schema.Unify(user)
	if err := unified.Validate(); err != nil {
		return cueutil.FormatError(err, path)
	}

	var fields map[string]any
	if err := unified.Decode(&fields); err != nil {
		return cueutil.FormatError(err, path)
	}

	// MergeConfigMap keeps defaults for anything the file leaves unset and
	// still lets env and flag overrides win.
	if err := v.MergeConfigMap(fields); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists reports whether path names an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnsureWorldsDir creates the worlds directory if it doesn't exist.
func EnsureWorldsDir() error {
	worldsDir, err := WorldsDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(worldsDir, 0o755)
}

// configFilePath returns the full path of the user config file, creating the
// config directory on the way.
func configFilePath() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// CreateDefaultConfig writes a config file with default values, leaving an
// existing file untouched.
func CreateDefaultConfig() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}
	if fileExists(cfgPath) {
		return nil
	}
	return writeConfigFile(cfgPath, DefaultConfig())
}

// Save writes cfg to the user config file, replacing whatever is there.
func Save(cfg *Config) error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}
	return writeConfigFile(cfgPath, cfg)
}

func writeConfigFile(path string, cfg *Config) error {
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE renders cfg as a CUE document in the same shape the schema
// accepts, so the output round-trips through Load.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// Vaultrun Configuration File\n")
	sb.WriteString("// Values are validated against the embedded schema on load;\n")
	sb.WriteString("// check the effective result with 'vaultrun config show'.\n\n")

	sb.WriteString(fmt.Sprintf("interpreter: %q\n", cfg.Interpreter))
	sb.WriteString(fmt.Sprintf("script: %q\n", cfg.Script))
	if cfg.WorkDir != "" {
		sb.WriteString(fmt.Sprintf("workdir: %q\n", cfg.WorkDir))
	}
	sb.WriteString(fmt.Sprintf("runtime: %q\n", cfg.Runtime))

	if cfg.World.Dir != "" {
		sb.WriteString("\nworld: {\n")
		sb.WriteString(fmt.Sprintf("\tdir: %q\n", cfg.World.Dir))
		sb.WriteString("}\n")
	}

	sb.WriteString("\ncontainer: {\n")
	sb.WriteString(fmt.Sprintf("\tengine: %q\n", cfg.Container.Engine))
	sb.WriteString(fmt.Sprintf("\timage: %q\n", cfg.Container.Image))
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	sb.WriteString(fmt.Sprintf("\tcolor_scheme: %q\n", cfg.UI.ColorScheme))
	sb.WriteString(fmt.Sprintf("\tverbose: %v\n", cfg.UI.Verbose))
	sb.WriteString("}\n")

	sb.WriteString("\nlog: {\n")
	sb.WriteString(fmt.Sprintf("\tlevel: %q\n", cfg.Log.Level))
	sb.WriteString("}\n")

	return sb.String()
}
