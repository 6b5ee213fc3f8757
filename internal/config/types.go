// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// WatchModeExternal delegates file watching to the cargo-watch plugin.
	WatchModeExternal WatchMode = "external"
	// WatchModeBuiltin watches the workspace in-process and restarts the child.
	WatchModeBuiltin WatchMode = "builtin"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultBuildTool is the executable every passthrough recipe forwards to.
	DefaultBuildTool ExecutableName = "cargo"
	// DefaultLoadGenerator is the executable behind the stress recipe.
	DefaultLoadGenerator ExecutableName = "oha"
	// DefaultWatchDebounce is the quiet period before the builtin watcher restarts.
	DefaultWatchDebounce = 500 * time.Millisecond
)

var (
	// ErrInvalidExecutableName is returned when an ExecutableName value is blank.
	ErrInvalidExecutableName = errors.New("invalid executable name")
	// ErrInvalidWatchMode is returned when a WatchMode value is not recognized.
	ErrInvalidWatchMode = errors.New("invalid watch mode")
	// ErrInvalidWatchDebounce is returned when the watch debounce is not positive.
	ErrInvalidWatchDebounce = errors.New("invalid watch debounce")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidToolsConfig is the sentinel error wrapped by InvalidToolsConfigError.
	ErrInvalidToolsConfig = errors.New("invalid tools config")
	// ErrInvalidWatchConfig is the sentinel error wrapped by InvalidWatchConfigError.
	ErrInvalidWatchConfig = errors.New("invalid watch config")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ExecutableName is a program name or path looked up on PATH at spawn time.
	ExecutableName string

	// InvalidExecutableNameError is returned when an ExecutableName is empty,
	// whitespace-only or contains whitespace.
	InvalidExecutableNameError struct {
		Field string
		Value ExecutableName
	}

	// WatchMode selects how `service dev` watches the workspace.
	WatchMode string

	// InvalidWatchModeError is returned when a WatchMode value is not recognized.
	// It wraps ErrInvalidWatchMode for errors.Is() compatibility.
	InvalidWatchModeError struct {
		Value WatchMode
	}

	// InvalidWatchDebounceError is returned when the debounce duration is zero or negative.
	InvalidWatchDebounceError struct {
		Value time.Duration
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidToolsConfigError collects field-level errors of a ToolsConfig.
	InvalidToolsConfigError struct {
		FieldErrors []error
	}

	// InvalidWatchConfigError collects field-level errors of a WatchConfig.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}

	// InvalidUIConfigError collects field-level errors of a UIConfig.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the dispatcher configuration.
	Config struct {
		// Tools names the external executables recipes forward to.
		Tools ToolsConfig `json:"tools" mapstructure:"tools"`
		// Watch configures `service dev`.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
		// UI configures logging and styled output.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// ToolsConfig names the external executables.
	ToolsConfig struct {
		// Build is the build tool (default: cargo).
		Build ExecutableName `json:"build" mapstructure:"build"`
		// LoadGenerator is the HTTP load generator (default: oha).
		LoadGenerator ExecutableName `json:"load_generator" mapstructure:"load_generator"`
	}

	// WatchConfig selects the watch strategy for `service dev`.
	WatchConfig struct {
		// Mode is "external" (cargo watch) or "builtin" (in-process watcher).
		Mode WatchMode `json:"mode" mapstructure:"mode"`
		// Debounce is the builtin watcher's quiet period.
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ColorScheme sets the color scheme ("auto", "dark", "light").
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// String returns the string representation of the ExecutableName.
func (n ExecutableName) String() string { return string(n) }

// IsValid returns whether the ExecutableName is usable as an argv[0].
func (n ExecutableName) IsValid() (bool, []error) {
	s := string(n)
	if strings.TrimSpace(s) == "" || strings.ContainsAny(s, " \t\n") {
		return false, []error{&InvalidExecutableNameError{Value: n}}
	}
	return true, nil
}

// Error implements the error interface for InvalidExecutableNameError.
func (e *InvalidExecutableNameError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: invalid executable name %q", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid executable name %q", e.Value)
}

// Unwrap returns ErrInvalidExecutableName for errors.Is() compatibility.
func (e *InvalidExecutableNameError) Unwrap() error { return ErrInvalidExecutableName }

// String returns the string representation of the WatchMode.
func (m WatchMode) String() string { return string(m) }

// IsValid returns whether the WatchMode is one of the defined modes.
func (m WatchMode) IsValid() (bool, []error) {
	switch m {
	case WatchModeExternal, WatchModeBuiltin:
		return true, nil
	default:
		return false, []error{&InvalidWatchModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidWatchModeError.
func (e *InvalidWatchModeError) Error() string {
	return fmt.Sprintf("invalid watch mode %q (valid: external, builtin)", e.Value)
}

// Unwrap returns ErrInvalidWatchMode for errors.Is() compatibility.
func (e *InvalidWatchModeError) Unwrap() error { return ErrInvalidWatchMode }

// Error implements the error interface for InvalidWatchDebounceError.
func (e *InvalidWatchDebounceError) Error() string {
	return fmt.Sprintf("invalid watch debounce %s: must be positive", e.Value)
}

// Unwrap returns ErrInvalidWatchDebounce for errors.Is() compatibility.
func (e *InvalidWatchDebounceError) Unwrap() error { return ErrInvalidWatchDebounce }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid returns whether both tool names are valid executable names.
func (c ToolsConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, _ := c.Build.IsValid(); !valid {
		errs = append(errs, &InvalidExecutableNameError{Field: "tools.build", Value: c.Build})
	}
	if valid, _ := c.LoadGenerator.IsValid(); !valid {
		errs = append(errs, &InvalidExecutableNameError{Field: "tools.load_generator", Value: c.LoadGenerator})
	}
	if len(errs) > 0 {
		return false, []error{&InvalidToolsConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidToolsConfigError.
func (e *InvalidToolsConfigError) Error() string {
	return fmt.Sprintf("invalid tools config: %s", joinFieldErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidToolsConfig for errors.Is() compatibility.
func (e *InvalidToolsConfigError) Unwrap() error { return ErrInvalidToolsConfig }

// IsValid returns whether the WatchConfig has a known mode and a positive debounce.
func (c WatchConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Mode.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Debounce <= 0 {
		errs = append(errs, &InvalidWatchDebounceError{Value: c.Debounce})
	}
	if len(errs) > 0 {
		return false, []error{&InvalidWatchConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidWatchConfigError.
func (e *InvalidWatchConfigError) Error() string {
	return fmt.Sprintf("invalid watch config: %s", joinFieldErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidWatchConfig for errors.Is() compatibility.
func (e *InvalidWatchConfigError) Unwrap() error { return ErrInvalidWatchConfig }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		return false, []error{&InvalidUIConfigError{FieldErrors: fieldErrs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %s", joinFieldErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Tools.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Watch.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", joinFieldErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Tools: ToolsConfig{
			Build:         DefaultBuildTool,
			LoadGenerator: DefaultLoadGenerator,
		},
		Watch: WatchConfig{
			Mode:     WatchModeExternal,
			Debounce: DefaultWatchDebounce,
		},
		UI: UIConfig{
			Verbose:     false,
			ColorScheme: ColorSchemeAuto,
		},
	}
}

func joinFieldErrors(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}
