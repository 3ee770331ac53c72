// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

// ContainerEngine selects which container CLI backs the container runtime.
type ContainerEngine string

const (
	// ContainerEnginePodman runs containers through podman.
	ContainerEnginePodman ContainerEngine = "podman"
	// ContainerEngineDocker runs containers through docker.
	ContainerEngineDocker ContainerEngine = "docker"
	// ContainerEngineAuto probes for an available engine, podman first.
	ContainerEngineAuto ContainerEngine = "auto"
)

// ErrInvalidContainerEngine matches any unrecognized engine via errors.Is.
var ErrInvalidContainerEngine = errors.New("invalid container engine")

// InvalidContainerEngineError carries the rejected engine value.
type InvalidContainerEngineError struct {
	Value ContainerEngine
}

func (e *InvalidContainerEngineError) Error() string {
	return fmt.Sprintf("%v: %q (must be %q, %q or %q)",
		ErrInvalidContainerEngine, e.Value, ContainerEnginePodman, ContainerEngineDocker, ContainerEngineAuto)
}

func (e *InvalidContainerEngineError) Unwrap() error { return ErrInvalidContainerEngine }

// Validate checks the engine value. The zero value is invalid; use
// ContainerEngineAuto for "pick one for me".
func (ce ContainerEngine) Validate() error {
	switch ce {
	case ContainerEnginePodman, ContainerEngineDocker, ContainerEngineAuto:
		return nil
	default:
		return &InvalidContainerEngineError{Value: ce}
	}
}

// RuntimeMode selects how the launcher executes programs.
type RuntimeMode string

const (
	// RuntimeNative spawns the interpreter as a child process on the host.
	RuntimeNative RuntimeMode = "native"
	// RuntimeBuiltin runs bot programs with the embedded Go interpreter.
	RuntimeBuiltin RuntimeMode = "builtin"
	// RuntimeContainer spawns the interpreter inside a container.
	RuntimeContainer RuntimeMode = "container"
)

// ErrInvalidConfigRuntimeMode matches any unrecognized runtime mode via
// errors.Is.
var ErrInvalidConfigRuntimeMode = errors.New("invalid runtime mode")

// InvalidConfigRuntimeModeError carries the rejected runtime mode.
type InvalidConfigRuntimeModeError struct {
	Value RuntimeMode
}

func (e *InvalidConfigRuntimeModeError) Error() string {
	return fmt.Sprintf("%v: %q (must be %q, %q or %q)",
		ErrInvalidConfigRuntimeMode, e.Value, RuntimeNative, RuntimeBuiltin, RuntimeContainer)
}

func (e *InvalidConfigRuntimeModeError) Unwrap() error { return ErrInvalidConfigRuntimeMode }

// Validate checks the runtime mode value.
func (rm RuntimeMode) Validate() error {
	switch rm {
	case RuntimeNative, RuntimeBuiltin, RuntimeContainer:
		return nil
	default:
		return &InvalidConfigRuntimeModeError{Value: rm}
	}
}

// ColorScheme is the terminal color preference.
type ColorScheme string

const (
	// ColorSchemeAuto follows the terminal's detected background.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark renders for dark backgrounds.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight renders for light backgrounds.
	ColorSchemeLight ColorScheme = "light"
)

// ErrInvalidColorScheme matches any unrecognized scheme via errors.Is.
var ErrInvalidColorScheme = errors.New("invalid color scheme")

// InvalidColorSchemeError carries the rejected scheme value.
type InvalidColorSchemeError struct {
	Value ColorScheme
}

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("%v: %q (must be %q, %q or %q)",
		ErrInvalidColorScheme, e.Value, ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight)
}

func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate checks the color scheme value.
func (cs ColorScheme) Validate() error {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: cs}
	}
}

// ErrInvalidLogLevel matches any unrecognized log level via errors.Is.
var ErrInvalidLogLevel = errors.New("invalid log level")

// InvalidLogLevelError carries the rejected level string.
type InvalidLogLevelError struct {
	Value string
}

func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("%v: %q (must be debug, info, warn, error or fatal)", ErrInvalidLogLevel, e.Value)
}

func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// validLogLevels mirrors the levels charmbracelet/log accepts.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"fatal": true,
}

// WorldConfig holds world file lookup settings.
type WorldConfig struct {
	// Dir is an extra directory searched for world files by name.
	Dir string `json:"dir,omitempty" mapstructure:"dir"`
}

// ContainerConfig holds container runtime settings.
type ContainerConfig struct {
	// Engine selects the container engine, "auto" probes at startup.
	Engine ContainerEngine `json:"engine" mapstructure:"engine"`
	// Image is the image the interpreter is spawned in.
	Image string `json:"image" mapstructure:"image"`
}

// UIConfig holds terminal UI settings.
type UIConfig struct {
	ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	Verbose     bool        `json:"verbose" mapstructure:"verbose"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error, fatal.
	Level string `json:"level" mapstructure:"level"`
}

// Config is the root configuration for vaultrun.
type Config struct {
	// Interpreter is the executable the launcher spawns.
	Interpreter string `json:"interpreter" mapstructure:"interpreter"`
	// Script is the script handed to the interpreter as its first argument.
	Script string `json:"script" mapstructure:"script"`
	// WorkDir is the working directory for the child, empty means inherit.
	WorkDir string `json:"workdir,omitempty" mapstructure:"workdir"`
	// Runtime selects how programs are executed.
	Runtime RuntimeMode `json:"runtime" mapstructure:"runtime"`

	World     WorldConfig     `json:"world" mapstructure:"world"`
	Container ContainerConfig `json:"container" mapstructure:"container"`
	UI        UIConfig        `json:"ui" mapstructure:"ui"`
	Log       LogConfig       `json:"log" mapstructure:"log"`
}

// ErrInvalidConfig matches any failed Config validation via errors.Is.
var ErrInvalidConfig = errors.New("invalid config")

// InvalidConfigError collects the field-level violations of one Validate
// call so the user sees them all at once.
type InvalidConfigError struct {
	FieldErrors []error
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%v: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Validate checks constraints the CUE schema cannot express, plus enum
// values for callers that build a Config in code rather than from a file.
func (c *Config) Validate() error {
	var fieldErrors []error

	if strings.TrimSpace(c.Interpreter) == "" {
		fieldErrors = append(fieldErrors, errors.New("interpreter must not be empty"))
	}
	if strings.TrimSpace(c.Script) == "" {
		fieldErrors = append(fieldErrors, errors.New("script must not be empty"))
	}
	if err := c.Runtime.Validate(); err != nil {
		fieldErrors = append(fieldErrors, err)
	}
	if err := c.Container.Engine.Validate(); err != nil {
		fieldErrors = append(fieldErrors, err)
	}
	if strings.TrimSpace(c.Container.Image) == "" {
		fieldErrors = append(fieldErrors, errors.New("container.image must not be empty"))
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		fieldErrors = append(fieldErrors, err)
	}
	if !validLogLevels[c.Log.Level] {
		fieldErrors = append(fieldErrors, &InvalidLogLevelError{Value: c.Log.Level})
	}

	if len(fieldErrors) > 0 {
		return &InvalidConfigError{FieldErrors: fieldErrors}
	}
	return nil
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Interpreter: "python3",
		Script:      "main.py",
		WorkDir:     "",
		Runtime:     RuntimeNative,
		World:       WorldConfig{Dir: ""},
		Container: ContainerConfig{
			Engine: ContainerEngineAuto,
			Image:  "python:3.12-alpine",
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
		Log: LogConfig{Level: "info"},
	}
}
