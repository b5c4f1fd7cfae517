// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ingestkit/ingestkit/internal/analysis"
	"github.com/ingestkit/ingestkit/internal/watch"
	"github.com/ingestkit/ingestkit/internal/workspace"
)

const defaultWatchOutput = "digest.txt"

type watchFlags struct {
	sessionFlags
	output   string
	ignore   []string
	debounce time.Duration
}

func newWatchCommand(app *App) *cobra.Command {
	flags := &watchFlags{}
	cmd := &cobra.Command{
		Use:   "watch [folder]",
		Short: "Re-analyze a folder whenever it changes",
		Long: `Analyze a folder, write the digest to a file and analyze again after every
change. A change that arrives while an analysis is running kills that analysis
and starts a new one once the folder is quiet again.

` + SubtitleStyle.Render("Examples:") + `
  ingestkit watch
  ingestkit watch src -o /tmp/src-digest.txt
  ingestkit watch --ignore "**/*.log" --debounce 1s`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target string
			if len(args) > 0 {
				target = args[0]
			}
			return app.runWatch(cmd.Context(), flags, target)
		},
	}
	addSessionFlags(cmd, &flags.sessionFlags)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "digest file rewritten after every analysis (default <workspace>/"+defaultWatchOutput+")")
	cmd.Flags().StringArrayVar(&flags.ignore, "ignore", nil, "doublestar pattern, relative to the folder, that never triggers an analysis (repeatable)")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", 0, "quiet period before re-analyzing (default 500ms)")
	return cmd
}

func (a *App) runWatch(ctx context.Context, flags *watchFlags, targetArg string) error {
	s, err := a.newSession(ctx, flags.sessionFlags)
	if err != nil {
		return a.fail(nil, err)
	}
	target, err := resolveTarget(s.root, targetArg)
	if err != nil {
		return a.fail(s.cfg, err)
	}

	output := flags.output
	if output == "" {
		output = filepath.Join(s.root, defaultWatchOutput)
	}
	if output, err = filepath.Abs(output); err != nil {
		return a.fail(s.cfg, err)
	}

	ignore, err := a.watchIgnores(s, target, output, flags.ignore)
	if err != nil {
		return a.fail(s.cfg, err)
	}

	analyzeOnce := func(ctx context.Context) {
		d, runErr := s.runner.Run(ctx, s.root, target, a.statusLog())
		result := analysis.NewResult(d, runErr)
		switch result.Kind {
		case analysis.ResultCancelled:
			fmt.Fprintln(a.stderr, WarningStyle.Render(result.Message))
		case analysis.ResultError:
			fmt.Fprintln(a.stderr, ErrorStyle.Render(result.Message))
			if runErr != nil {
				slog.Debug("analysis failed", "target", target, "error", runErr)
			}
		default:
			if writeErr := workspace.WriteDigest(output, result.Data); writeErr != nil {
				fmt.Fprintln(a.stderr, ErrorStyle.Render("Failed to write digest: ")+writeErr.Error())
				return
			}
			fmt.Fprintln(a.stderr, SuccessStyle.Render("Digest written to "+output))
		}
	}

	w, err := watch.New(watch.Config{
		Root:     target,
		Ignore:   ignore,
		Debounce: flags.debounce,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintln(a.stderr, VerboseHighlightStyle.Render(fmt.Sprintf("→ %d file(s) changed, analyzing…", len(changed))))
			slog.Debug("watch: changes", "paths", changed)
			analyzeOnce(ctx)
			return nil
		},
		OnBusy: func() {
			fmt.Fprintln(a.stderr, WarningStyle.Render("Change detected, restarting analysis"))
			if cancelErr := s.runner.Cancel(); cancelErr != nil {
				slog.Warn("failed to cancel running analysis", "error", cancelErr)
			}
		},
	})
	if err != nil {
		return a.fail(s.cfg, err)
	}

	fmt.Fprintln(a.stderr, VerboseHighlightStyle.Render("→ Watch mode: initial analysis…"))
	analyzeOnce(ctx)
	if ctx.Err() != nil {
		return nil
	}

	fmt.Fprintln(a.stderr, WarningStyle.Render("Watching for changes (Ctrl+C to stop)..."))
	if err := w.Run(ctx); err != nil {
		return a.fail(s.cfg, err)
	}
	return nil
}

// watchIgnores adds the digest file and the ingest folder to the user
// patterns so the watcher never reacts to its own output.
func (a *App) watchIgnores(s *session, target, output string, extra []string) ([]string, error) {
	if err := watch.ValidatePatterns(extra); err != nil {
		return nil, err
	}
	ignore := append([]string{}, extra...)

	if rel, ok := relativeInside(target, output); ok {
		ignore = append(ignore, rel)
	}
	ingestRoot, err := workspace.IngestRoot(s.root, s.cfg.Ingest.FolderName)
	if err != nil {
		return nil, err
	}
	if rel, ok := relativeInside(target, ingestRoot); ok {
		ignore = append(ignore, rel, rel+"/**")
	}
	venv := filepath.Join(s.root, s.cfg.Provision.ProjectVenv)
	if rel, ok := relativeInside(target, venv); ok {
		ignore = append(ignore, rel, rel+"/**")
	}
	return ignore, nil
}

// relativeInside returns path relative to base, slash-separated, when path
// lies strictly below base.
func relativeInside(base, path string) (string, bool) {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
