// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ingestkit/ingestkit/internal/analysis"
	"github.com/ingestkit/ingestkit/internal/runtime"
	"github.com/ingestkit/ingestkit/internal/tui"
	"github.com/ingestkit/ingestkit/internal/workspace"
)

type analyzeFlags struct {
	sessionFlags
	jsonOutput  bool
	save        bool
	output      string
	dryRun      bool
	interactive bool
}

func newAnalyzeCommand(app *App) *cobra.Command {
	flags := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze [folder]",
		Short: "Analyze a folder and print its digest",
		Long: `Analyze a folder with gitingest and print the digest.

The folder defaults to the workspace root. Progress is written to stderr and
the digest to stdout, unless --save or --output redirect it to a file.

` + SubtitleStyle.Render("Examples:") + `
  ingestkit analyze
  ingestkit analyze src --exclude "*.lock"
  ingestkit analyze --save
  ingestkit analyze --json > digest.json
  ingestkit analyze --dry-run --python "py -3"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target string
			if len(args) > 0 {
				target = args[0]
			}
			return app.runAnalyze(cmd.Context(), flags, target)
		},
	}
	addSessionFlags(cmd, &flags.sessionFlags)
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "print the digest as JSON")
	cmd.Flags().BoolVarP(&flags.save, "save", "s", false, "save the digest into the workspace root without overwriting")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the digest to this file")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "verify dependencies and print the analysis command without running it")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "show the result in an interactive panel")
	cmd.MarkFlagsMutuallyExclusive("json", "interactive")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "interactive")
	return cmd
}

func (a *App) runAnalyze(ctx context.Context, flags *analyzeFlags, targetArg string) error {
	s, err := a.newSession(ctx, flags.sessionFlags)
	if err != nil {
		return a.fail(nil, err)
	}
	target, err := resolveTarget(s.root, targetArg)
	if err != nil {
		return a.fail(s.cfg, err)
	}

	if flags.dryRun {
		return a.dryRun(ctx, s, target)
	}

	if (flags.interactive || s.cfg.UI.Interactive) && isTerminal(a.stdout) {
		return a.analyzeInteractive(ctx, s, target)
	}

	d, err := s.runner.Run(ctx, s.root, target, a.statusLog())
	result := analysis.NewResult(d, err)
	switch result.Kind {
	case analysis.ResultCancelled:
		fmt.Fprintln(a.stderr, WarningStyle.Render(result.Message))
		return a.fail(s.cfg, analysis.ErrCancelled)
	case analysis.ResultError:
		if err == nil {
			err = errors.New(result.Message)
		}
		return a.fail(s.cfg, err)
	}

	if err := a.emitDigest(s, flags, result.Data); err != nil {
		return a.fail(s.cfg, err)
	}
	a.cleanupAfterIngest(ctx, s)
	return nil
}

// emitDigest writes the digest to every requested destination. Without
// --save or --output the Markdown digest goes to stdout.
func (a *App) emitDigest(s *session, flags *analyzeFlags, d *analysis.Digest) error {
	if flags.output != "" {
		if err := workspace.WriteDigest(flags.output, d); err != nil {
			return err
		}
		fmt.Fprintln(a.stderr, SuccessStyle.Render("Analysis saved to "+flags.output))
	}
	if flags.save {
		path, err := workspace.SaveDigest(s.root, d)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stderr, SuccessStyle.Render("Analysis saved to "+path))
	}

	switch {
	case flags.jsonOutput:
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case flags.output == "" && !flags.save:
		_, err := fmt.Fprint(a.stdout, workspace.FormatDigest(d))
		return err
	}
	return nil
}

func (a *App) dryRun(ctx context.Context, s *session, target string) error {
	state, err := s.runner.VerifyDependencies(ctx, s.root, a.statusLog())
	if err != nil {
		return a.fail(s.cfg, err)
	}
	argv, err := s.runner.Command(state, target)
	if err != nil {
		return a.fail(s.cfg, err)
	}
	fmt.Fprintln(a.stdout, runtime.FormatCommand(argv))
	return nil
}

func (a *App) analyzeInteractive(ctx context.Context, s *session, target string) error {
	result, err := tui.Run(ctx, s.runner, tui.Options{
		ProjectPath: s.root,
		Target:      target,
		Save: func(d *analysis.Digest) (string, error) {
			return workspace.SaveDigest(s.root, d)
		},
		GlamourStyle: a.glamourStyle(s.cfg),
	})
	if err != nil {
		return a.fail(s.cfg, err)
	}

	switch result.Kind {
	case analysis.ResultCancelled:
		return &ExitError{Code: exitCancelled, Err: analysis.ErrCancelled}
	case analysis.ResultError:
		return &ExitError{Code: exitFailure, Err: errors.New(result.Message)}
	}
	a.cleanupAfterIngest(ctx, s)
	return nil
}

// cleanupAfterIngest removes the ingest folder when delete_after_ingest is
// set. Failures are logged and never fail the analysis.
func (a *App) cleanupAfterIngest(ctx context.Context, s *session) {
	if !s.cfg.Ingest.DeleteAfterIngest {
		return
	}
	removed, err := workspace.CleanupIngestFolder(ctx, s.root, s.cfg.Ingest.FolderName)
	if err != nil {
		slog.Warn("failed to delete ingest folder", "root", s.root, "error", err)
		return
	}
	if removed {
		fmt.Fprintln(a.stderr, VerboseStyle.Render("Deleted ingest folder "+workspace.IngestFolderName(s.cfg.Ingest.FolderName)))
	}
}
