// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ingestkit/ingestkit/internal/issue"
	"github.com/ingestkit/ingestkit/internal/workspace"
)

func newStageCommand(app *App) *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Manage the ingest folder",
		Long: `Collect files and folders from the workspace into one ingest folder so they
can be analyzed together with:

  ingestkit analyze <ingest folder>

The folder name comes from ingest.folder_name (default "gitingest-ingest").`,
	}
	cmd.PersistentFlags().StringVarP(&root, "workspace", "w", "", "workspace root (default is the current directory)")

	addCmd := &cobra.Command{
		Use:   "add PATH...",
		Short: "Copy files or folders into the ingest folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(nil, err)
			}
			ws, err := resolveWorkspace(root)
			if err != nil {
				return app.fail(cfg, err)
			}

			var failed []error
			for _, path := range args {
				res, addErr := workspace.AddToIngest(cmd.Context(), ws, path, cfg.Ingest.FolderName)
				switch {
				case addErr != nil:
					ctx := issue.NewErrorContext().
						WithOperation("add to ingest").
						WithResource(path).
						Wrap(addErr)
					if errors.Is(addErr, workspace.ErrOutsideWorkspace) {
						ctx.WithSuggestion("Pass --workspace with a folder that contains " + path)
					}
					failed = append(failed, ctx.BuildError())
					fmt.Fprintln(app.stderr, ErrorStyle.Render("✗ ")+formatErrorForDisplay(failed[len(failed)-1], app.verbose(cfg)))
				case res.AlreadyStaged:
					fmt.Fprintln(app.stderr, WarningStyle.Render("Item is already in the ingest folder: ")+path)
				default:
					fmt.Fprintln(app.stdout, SuccessStyle.Render("✓ ")+"Added to ingest: "+res.Destination)
				}
			}
			if len(failed) > 0 {
				return &ExitError{Code: exitFailure, Err: errors.Join(failed...)}
			}
			return nil
		},
	}

	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete the ingest folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(nil, err)
			}
			ws, err := resolveWorkspace(root)
			if err != nil {
				return app.fail(cfg, err)
			}
			removed, err := workspace.CleanupIngestFolder(cmd.Context(), ws, cfg.Ingest.FolderName)
			if err != nil {
				return app.fail(cfg, err)
			}
			if removed {
				fmt.Fprintln(app.stdout, SuccessStyle.Render("Ingest folder deleted"))
			} else {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("No ingest folder to delete"))
			}
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the ingest folder path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(nil, err)
			}
			ws, err := resolveWorkspace(root)
			if err != nil {
				return app.fail(cfg, err)
			}
			ingestRoot, err := workspace.IngestRoot(ws, cfg.Ingest.FolderName)
			if err != nil {
				return app.fail(cfg, err)
			}
			fmt.Fprintln(app.stdout, ingestRoot)
			return nil
		},
	}

	cmd.AddCommand(addCmd, cleanCmd, pathCmd)
	return cmd
}
