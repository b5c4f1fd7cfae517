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

	"github.com/ingestkit/ingestkit/internal/issue"
	"github.com/ingestkit/ingestkit/internal/platform"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "ingestkit"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. INGESTKIT_PROVISION_PACKAGE.
	EnvPrefix = "INGESTKIT"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the ingestkit configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// DefaultFilePath returns the config.cue path inside ConfigDir.
func DefaultFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// HomeVenvDir returns the fallback virtual environment location, ~/.ingestkit/venv.
func HomeVenvDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, "."+AppName, "venv"), nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("python.candidates", defaults.Python.Candidates)
	v.SetDefault("python.min_version", defaults.Python.MinVersion)
	v.SetDefault("provision.package", defaults.Provision.Package)
	v.SetDefault("provision.user_site", defaults.Provision.UserSite)
	v.SetDefault("provision.project_venv", defaults.Provision.ProjectVenv)
	v.SetDefault("provision.home_venv", defaults.Provision.HomeVenv)
	v.SetDefault("ingest.folder_name", defaults.Ingest.FolderName)
	v.SetDefault("ingest.delete_after_ingest", defaults.Ingest.DeleteAfterIngest)
	v.SetDefault("ingest.exclude_patterns", defaults.Ingest.ExcludePatterns)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.interactive", defaults.UI.Interactive)
	v.SetDefault("log.level", string(defaults.Log.Level))
}

// loadWithOptions performs option-driven config loading and returns the
// resolved file path ("" when only defaults and environment were used).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, explicit := opts.ConfigFilePath, opts.ConfigFilePath != ""
	if !explicit {
		dir := opts.ConfigDirPath
		if dir == "" {
			var err error
			if dir, err = ConfigDir(); err != nil {
				return nil, "", err
			}
		}
		path = filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	}

	resolvedPath := ""
	switch {
	case fileExists(path):
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Run 'ingestkit config init --force' to start from the defaults").
				Wrap(err).
				BuildError()
		}
		resolvedPath = path
	case explicit:
		return nil, "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Use 'ingestkit config path' to see the default location").
			Wrap(fmt.Errorf("config file not found: %s", path)).
			BuildError()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check INGESTKIT_* environment variables for typos").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteDefault writes the default configuration as CUE to path. An existing
// file is kept unless force is set.
func WriteDefault(path string, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE renders cfg as a config.cue document.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// ingestkit configuration file\n\n")

	sb.WriteString("python: {\n")
	if len(cfg.Python.Candidates) > 0 {
		sb.WriteString("\tcandidates: [\n")
		for _, cand := range cfg.Python.Candidates {
			quoted := make([]string, len(cand))
			for i, a := range cand {
				quoted[i] = fmt.Sprintf("%q", a)
			}
			fmt.Fprintf(&sb, "\t\t[%s],\n", strings.Join(quoted, ", "))
		}
		sb.WriteString("\t]\n")
	}
	fmt.Fprintf(&sb, "\tmin_version: %q\n", cfg.Python.MinVersion)
	sb.WriteString("}\n")

	sb.WriteString("\nprovision: {\n")
	fmt.Fprintf(&sb, "\tpackage:      %q\n", cfg.Provision.Package)
	fmt.Fprintf(&sb, "\tuser_site:    %v\n", cfg.Provision.UserSite)
	fmt.Fprintf(&sb, "\tproject_venv: %q\n", cfg.Provision.ProjectVenv)
	if cfg.Provision.HomeVenv != "" {
		fmt.Fprintf(&sb, "\thome_venv:    %q\n", cfg.Provision.HomeVenv)
	}
	sb.WriteString("}\n")

	sb.WriteString("\ningest: {\n")
	fmt.Fprintf(&sb, "\tfolder_name:         %q\n", cfg.Ingest.FolderName)
	fmt.Fprintf(&sb, "\tdelete_after_ingest: %v\n", cfg.Ingest.DeleteAfterIngest)
	if len(cfg.Ingest.ExcludePatterns) > 0 {
		sb.WriteString("\texclude_patterns: [\n")
		for _, p := range cfg.Ingest.ExcludePatterns {
			fmt.Fprintf(&sb, "\t\t%q,\n", p)
		}
		sb.WriteString("\t]\n")
	}
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tinteractive:  %v\n", cfg.UI.Interactive)
	sb.WriteString("}\n")

	sb.WriteString("\nlog: {\n")
	fmt.Fprintf(&sb, "\tlevel: %q\n", cfg.Log.Level)
	sb.WriteString("}\n")

	return sb.String()
}
