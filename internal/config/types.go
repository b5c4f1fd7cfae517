// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	// DefaultPackage is the Python distribution that performs the analysis.
	DefaultPackage = "gitingest"
	// DefaultProjectVenv is the virtual environment directory created inside the project.
	DefaultProjectVenv = ".venv"
	// DefaultIngestFolder is the staging folder name used by "stage add".
	DefaultIngestFolder = "gitingest-ingest"
	// DefaultMinPythonVersion is the oldest interpreter accepted by the locator.
	DefaultMinPythonVersion = "3.8"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// LogLevel is the minimum level written by the CLI logger.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidConfigError collects every field-level problem found by Validate.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// PythonConfig controls interpreter discovery.
	PythonConfig struct {
		// Candidates overrides the platform candidate list. Each entry is an
		// argv prefix such as ["py", "-3"].
		Candidates [][]string `json:"candidates" mapstructure:"candidates"`
		// MinVersion is the lowest accepted interpreter version (e.g. "3.8").
		MinVersion string `json:"min_version" mapstructure:"min_version"`
	}

	// ProvisionConfig controls how the analysis package is made available.
	ProvisionConfig struct {
		Package string `json:"package" mapstructure:"package"`
		// UserSite enables the user-site installation attempt.
		UserSite bool `json:"user_site" mapstructure:"user_site"`
		// ProjectVenv is the directory name of the project environment.
		ProjectVenv string `json:"project_venv" mapstructure:"project_venv"`
		// HomeVenv is the fallback environment path; empty means ~/.ingestkit/venv.
		HomeVenv string `json:"home_venv" mapstructure:"home_venv"`
	}

	// IngestConfig controls the staging folder and analysis filters.
	IngestConfig struct {
		FolderName        string   `json:"folder_name" mapstructure:"folder_name"`
		DeleteAfterIngest bool     `json:"delete_after_ingest" mapstructure:"delete_after_ingest"`
		ExcludePatterns   []string `json:"exclude_patterns" mapstructure:"exclude_patterns"`
	}

	// UIConfig controls terminal presentation.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
		Interactive bool        `json:"interactive" mapstructure:"interactive"`
	}

	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level"`
	}

	// Config is the complete ingestkit configuration.
	Config struct {
		Python    PythonConfig    `json:"python" mapstructure:"python"`
		Provision ProvisionConfig `json:"provision" mapstructure:"provision"`
		Ingest    IngestConfig    `json:"ingest" mapstructure:"ingest"`
		UI        UIConfig        `json:"ui" mapstructure:"ui"`
		Log       LogConfig       `json:"log" mapstructure:"log"`
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Python: PythonConfig{
			Candidates: [][]string{},
			MinVersion: DefaultMinPythonVersion,
		},
		Provision: ProvisionConfig{
			Package:     DefaultPackage,
			UserSite:    true,
			ProjectVenv: DefaultProjectVenv,
		},
		Ingest: IngestConfig{
			FolderName:      DefaultIngestFolder,
			ExcludePatterns: []string{},
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
		Log: LogConfig{
			Level: LogLevelInfo,
		},
	}
}

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate returns an error if the ColorScheme is not one of the defined schemes.
func (cs ColorScheme) Validate() error {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: cs}
	}
}

func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// Validate returns an error if the LogLevel is not recognized.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return &InvalidLogLevelError{Value: l}
	}
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		msgs = append(msgs, fe.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap exposes ErrInvalidConfig and every field error to errors.Is/As.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Validate checks the constraints that survive environment overrides,
// which bypass the CUE schema.
func (c *Config) Validate() error {
	var errs []error
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Log.Level.Validate(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Provision.Package) == "" {
		errs = append(errs, errors.New("provision.package must not be empty"))
	}
	if strings.ContainsAny(c.Provision.ProjectVenv, `/\`) || strings.TrimSpace(c.Provision.ProjectVenv) == "" {
		errs = append(errs, fmt.Errorf("provision.project_venv %q must be a plain directory name", c.Provision.ProjectVenv))
	}
	for i, cand := range c.Python.Candidates {
		if len(cand) == 0 || strings.TrimSpace(cand[0]) == "" {
			errs = append(errs, fmt.Errorf("python.candidates[%d] must name a command", i))
		}
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}
