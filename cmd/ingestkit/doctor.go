// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ingestkit/ingestkit/internal/issue"
)

func newDoctorCommand(app *App) *cobra.Command {
	flags := &sessionFlags{}
	cmd := &cobra.Command{
		Use:   "doctor [folder]",
		Short: "Verify Python and the gitingest package",
		Long: `Locate a Python 3 interpreter and make sure gitingest is installed for the
workspace, installing it when needed. Nothing is analyzed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				flags.workspace = args[0]
			}
			return app.runDoctor(cmd.Context(), *flags)
		},
	}
	addSessionFlags(cmd, flags)
	return cmd
}

func (a *App) runDoctor(ctx context.Context, flags sessionFlags) error {
	s, err := a.newSession(ctx, flags)
	if err != nil {
		return a.fail(nil, err)
	}

	state, err := s.runner.VerifyDependencies(ctx, s.root, a.statusLog())
	if err != nil {
		return a.fail(s.cfg, err)
	}

	fmt.Fprintln(a.stdout, TitleStyle.Render("Environment"))
	fmt.Fprintln(a.stdout)
	if interp := s.runner.Interpreter(); interp != nil {
		fmt.Fprintf(a.stdout, "  %s %s (%s)\n", SubtitleStyle.Render("python: "), CmdStyle.Render(interp.String()), interp.Version)
	}
	fmt.Fprintf(a.stdout, "  %s %s\n", SubtitleStyle.Render("package:"), s.cfg.Provision.Package)
	fmt.Fprintf(a.stdout, "  %s %s\n", SubtitleStyle.Render("install:"), state.Kind)
	if state.Path != "" {
		fmt.Fprintf(a.stdout, "  %s %s\n", SubtitleStyle.Render("env:    "), state.Path)
	}
	fmt.Fprintf(a.stdout, "  %s %s\n", SubtitleStyle.Render("runner: "), CmdStyle.Render(state.Python.String()))
	return nil
}

func newSetupCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Show the setup guide",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(nil, err)
			}
			style := "notty"
			if isTerminal(app.stdout) {
				style = app.glamourStyle(cfg)
			}
			rendered, err := issue.Get(issue.SetupGuideId).Render(style)
			if err != nil {
				return app.fail(cfg, err)
			}
			fmt.Fprint(app.stdout, rendered)
			return nil
		},
	}
}
