// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for ingestkit.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/ingestkit/ingestkit/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ingestkit",
		Short: "Turn a folder into a prompt-friendly repository digest",
		Long: TitleStyle.Render("ingestkit") + SubtitleStyle.Render(" - Turn a folder into a prompt-friendly repository digest") + `

ingestkit runs the gitingest Python package against a folder and returns its
summary, directory tree and file contents as one Markdown digest. It finds a
Python 3 interpreter, installs gitingest where it is allowed to, and keeps the
analysis process under supervision so it can be cancelled at any time.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Check your setup with: ingestkit doctor
  2. Analyze a folder with: ingestkit analyze <folder>

` + SubtitleStyle.Render("Examples:") + `
  ingestkit analyze               Analyze the current directory
  ingestkit analyze --save src    Analyze src and save a digest file
  ingestkit analyze -i            Browse the result in a terminal panel
  ingestkit watch                 Re-analyze whenever a file changes
  ingestkit stage add main.go     Copy a file into the ingest folder
  ingestkit config show           Show current configuration`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return app.configureLogging(nil)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/ingestkit/config.cue)")
	pf.StringVar(&app.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newAnalyzeCommand(app),
		newDoctorCommand(app),
		newSetupCommand(app),
		newWatchCommand(app),
		newStageCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with its status. It is called by main.main().
func Execute() {
	os.Exit(Main())
}

// Main runs the CLI against os.Args and returns the exit code.
func Main() int {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return exitFailure
	}
	return run(context.Background(), app)
}

func run(ctx context.Context, app *App) int {
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		ctx,
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return exitFailure
	}
	return exitOK
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
