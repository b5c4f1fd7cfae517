// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ingestkit/ingestkit/internal/config"
	"github.com/ingestkit/ingestkit/internal/workspace"
)

// newConfigCommand creates the `ingestkit config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ingestkit configuration",
		Long: `Manage ingestkit configuration.

Configuration is stored in:
  - Linux: ~/.config/ingestkit/config.cue
  - macOS: ~/Library/Application Support/ingestkit/config.cue
  - Windows: %APPDATA%\ingestkit\config.cue

Every key can be overridden with an INGESTKIT_ environment variable, for
example INGESTKIT_INGEST_FOLDER_NAME=staging.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfig(cmd.Context())
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configFilePath()
			if err != nil {
				return err
			}
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configFilePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(nil, err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func (a *App) configFilePath() (string, error) {
	if a.flags.configPath != "" {
		return a.flags.configPath, nil
	}
	return config.DefaultFilePath()
}

func (a *App) showConfig(ctx context.Context) error {
	cfg, source, err := a.loadConfig(ctx)
	if err != nil {
		return a.fail(nil, err)
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	value := func(v any) string { return valueStyle.Render(fmt.Sprintf("%v", v)) }
	list := func(items []string) string {
		if len(items) == 0 {
			return SubtitleStyle.Render("(none)")
		}
		return valueStyle.Render(strings.Join(items, ", "))
	}

	w := a.stdout
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if source != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), source)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("python"))
	if len(cfg.Python.Candidates) == 0 {
		fmt.Fprintf(w, "  candidates: %s\n", SubtitleStyle.Render("(platform default)"))
	} else {
		for _, c := range cfg.Python.Candidates {
			fmt.Fprintf(w, "  - %s\n", valueStyle.Render(strings.Join(c, " ")))
		}
	}
	fmt.Fprintf(w, "  min_version: %s\n", value(cfg.Python.MinVersion))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("provision"))
	fmt.Fprintf(w, "  package: %s\n", value(cfg.Provision.Package))
	fmt.Fprintf(w, "  user_site: %s\n", value(cfg.Provision.UserSite))
	fmt.Fprintf(w, "  project_venv: %s\n", value(cfg.Provision.ProjectVenv))
	homeVenv := cfg.Provision.HomeVenv
	if homeVenv == "" {
		if dir, dirErr := config.HomeVenvDir(); dirErr == nil {
			homeVenv = dir
		}
	}
	fmt.Fprintf(w, "  home_venv: %s\n", value(homeVenv))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ingest"))
	fmt.Fprintf(w, "  folder_name: %s\n", value(workspace.IngestFolderName(cfg.Ingest.FolderName)))
	fmt.Fprintf(w, "  delete_after_ingest: %s\n", value(cfg.Ingest.DeleteAfterIngest))
	fmt.Fprintf(w, "  exclude_patterns: %s\n", list(cfg.Ingest.ExcludePatterns))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", value(cfg.UI.ColorScheme))
	fmt.Fprintf(w, "  interactive: %s\n", value(cfg.UI.Interactive))
	fmt.Fprintf(w, "  verbose: %s\n", value(cfg.UI.Verbose))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("log"))
	fmt.Fprintf(w, "  level: %s\n", value(cfg.Log.Level))
	return nil
}
