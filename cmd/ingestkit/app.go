// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ingestkit/ingestkit/internal/analysis"
	"github.com/ingestkit/ingestkit/internal/config"
	"github.com/ingestkit/ingestkit/internal/issue"
	"github.com/ingestkit/ingestkit/internal/provision"
	"github.com/ingestkit/ingestkit/internal/pyenv"
	"github.com/ingestkit/ingestkit/internal/runtime"
)

type (
	// App is the CLI composition root. One App serves one process, so the
	// supervisor it owns is the single slot for the running analysis.
	App struct {
		Config config.Provider

		stdout      io.Writer
		stderr      io.Writer
		execCommand runtime.ExecCommandFunc
		supervisor  *runtime.Supervisor
		flags       rootFlagValues
	}

	// Dependencies are the injectable collaborators of App. Zero values
	// fall back to the process defaults.
	Dependencies struct {
		Config      config.Provider
		Stdout      io.Writer
		Stderr      io.Writer
		ExecCommand runtime.ExecCommandFunc
	}

	rootFlagValues struct {
		verbose    bool
		configPath string
		logLevel   string
	}

	// sessionFlags are shared by every command that runs an analysis.
	sessionFlags struct {
		workspace string
		envFiles  []string
		excludes  []string
		python    string
	}

	// session is the wiring for one command invocation: loaded config, the
	// resolved workspace root and a runner built from both.
	session struct {
		cfg      *config.Config
		cfgPath  string
		root     string
		executor *runtime.Executor
		locator  *pyenv.Locator
		runner   *analysis.Runner
	}
)

// NewApp creates the CLI application with defaults for missing dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.ExecCommand == nil {
		deps.ExecCommand = exec.CommandContext
	}

	return &App{
		Config:      deps.Config,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
		execCommand: deps.ExecCommand,
		supervisor:  runtime.NewSupervisor(runtime.WithKillCommand(deps.ExecCommand)),
	}, nil
}

func addSessionFlags(cmd *cobra.Command, f *sessionFlags) {
	cmd.Flags().StringVarP(&f.workspace, "workspace", "w", "", "workspace root (default is the current directory)")
	cmd.Flags().StringArrayVar(&f.envFiles, "env-file", nil, "dotenv file applied to Python child processes (repeatable)")
	cmd.Flags().StringArrayVarP(&f.excludes, "exclude", "e", nil, "glob excluded from the analysis (repeatable)")
	cmd.Flags().StringVar(&f.python, "python", "", `interpreter command line, e.g. "py -3" (skips discovery)`)
}

// loadConfig reads the configuration and reapplies logging with it.
func (a *App) loadConfig(ctx context.Context) (*config.Config, string, error) {
	cfg, path, err := a.Config.LoadWithSource(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
	if err != nil {
		return nil, "", newServiceError(err, issue.ConfigLoadFailedId, "Failed to load configuration")
	}
	if err := a.configureLogging(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func (a *App) configureLogging(cfg *config.Config) error {
	verbose := a.flags.verbose || (cfg != nil && cfg.UI.Verbose)
	level, err := resolveLogLevel(a.flags.logLevel, verbose, cfg)
	if err != nil {
		return err
	}
	installLogger(a.stderr, level)
	return nil
}

func (a *App) verbose(cfg *config.Config) bool {
	return a.flags.verbose || (cfg != nil && cfg.UI.Verbose)
}

// newSession loads configuration and builds the locator, provisioner and
// runner for one invocation.
func (a *App) newSession(ctx context.Context, f sessionFlags) (*session, error) {
	cfg, cfgPath, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	root, err := resolveWorkspace(f.workspace)
	if err != nil {
		return nil, err
	}

	env, err := runtime.LoadEnvFiles(f.envFiles...)
	if err != nil {
		return nil, err
	}
	executor := runtime.NewExecutor(runtime.WithExecCommand(a.execCommand), runtime.WithEnv(env))

	candidates := pyenv.CandidatesFromArgv(cfg.Python.Candidates)
	if f.python != "" {
		argv, splitErr := runtime.SplitCommand(f.python)
		if splitErr != nil {
			return nil, fmt.Errorf("invalid --python value: %w", splitErr)
		}
		candidates = pyenv.CandidatesFromArgv([][]string{argv})
	}
	locator := pyenv.NewLocator(
		pyenv.WithCandidates(candidates),
		pyenv.WithMinVersion(cfg.Python.MinVersion),
		pyenv.WithEnv(env),
		pyenv.WithExecCommand(pyenv.ExecCommandFunc(a.execCommand)),
	)

	homeVenv := cfg.Provision.HomeVenv
	if homeVenv == "" {
		if homeVenv, err = config.HomeVenvDir(); err != nil {
			return nil, err
		}
	}
	provisioner := provision.NewDefault(executor, provision.Settings{
		Package:     cfg.Provision.Package,
		UserSite:    cfg.Provision.UserSite,
		ProjectVenv: cfg.Provision.ProjectVenv,
		HomeVenv:    homeVenv,
		GOOS:        goruntime.GOOS,
	})

	excludes := append(append([]string{}, cfg.Ingest.ExcludePatterns...), f.excludes...)
	if err := validateExcludes(excludes); err != nil {
		return nil, err
	}

	return &session{
		cfg:      cfg,
		cfgPath:  cfgPath,
		root:     root,
		executor: executor,
		locator:  locator,
		runner:   analysis.NewRunner(locator, provisioner, executor, a.supervisor, analysis.WithExcludePatterns(excludes)),
	}, nil
}

// statusLog prints every appended status message on stderr.
func (a *App) statusLog() *analysis.StatusLog {
	return analysis.NewStatusLog(func(msgs []analysis.StatusMessage) {
		m := msgs[len(msgs)-1]
		fmt.Fprintln(a.stderr, severityStyle(m.Severity).Render(m.Text))
	})
}

// fail renders err for the terminal and converts it into an ExitError.
func (a *App) fail(cfg *config.Config, err error) error {
	if errors.Is(err, analysis.ErrCancelled) {
		return &ExitError{Code: exitCancelled, Err: err}
	}

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		svcErr = newServiceError(err, analysis.IssueID(err), "")
	}
	errorReport{style: a.glamourStyle(cfg), verbose: a.verbose(cfg)}.write(a.stderr, svcErr)
	return &ExitError{Code: exitFailure, Err: err}
}

// glamourStyle maps the configured color scheme onto a glamour style for stderr.
func (a *App) glamourStyle(cfg *config.Config) string {
	if !isTerminal(a.stderr) {
		return "notty"
	}
	if cfg == nil {
		return "dark"
	}
	switch cfg.UI.ColorScheme {
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeDark:
		return "dark"
	default:
		return "auto"
	}
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// resolveWorkspace returns the absolute workspace root, defaulting to the
// working directory.
func resolveWorkspace(path string) (string, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", newServiceError(fmt.Errorf("%w: %w", analysis.ErrNoWorkspace, err), issue.NoWorkspaceId, "")
		}
		path = wd
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", newServiceError(fmt.Errorf("%w: %s is not a directory", analysis.ErrNoWorkspace, abs), issue.NoWorkspaceId,
			"Workspace not found: "+abs)
	}
	return abs, nil
}

// resolveTarget returns the folder to analyze; relative paths resolve against
// the working directory and an empty argument means the workspace root.
func resolveTarget(root, arg string) (string, error) {
	if arg == "" {
		return root, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("analysis target: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("analysis target %s is not a directory", abs)
	}
	return abs, nil
}

func validateExcludes(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}
