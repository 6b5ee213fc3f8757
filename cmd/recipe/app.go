// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/invowk/recipe/internal/config"
	"github.com/invowk/recipe/internal/dispatch"
	"github.com/invowk/recipe/internal/recipe"
	"github.com/invowk/recipe/internal/runtime"
	"github.com/invowk/recipe/internal/workspace"
	"github.com/invowk/recipe/pkg/types"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root
	// for the CLI layer: every Cobra handler receives an App and delegates
	// through it.
	App struct {
		Config ConfigProvider
		// Runner spawns children. nil builds a supervisor on the App's
		// streams for every dispatch.
		Runner dispatch.Runner

		stdin   io.Reader
		stdout  io.Writer
		stderr  io.Writer
		workDir string

		// verbose and issueStyle are settled once the configuration is loaded
		// and read by the error handler.
		verbose    bool
		issueStyle string
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config  ConfigProvider
		Runner  dispatch.Runner
		Stdin   io.Reader
		Stdout  io.Writer
		Stderr  io.Writer
		WorkDir string
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		deps.WorkDir = wd
	}

	return &App{
		Config:     deps.Config,
		Runner:     deps.Runner,
		stdin:      deps.Stdin,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
		workDir:    deps.WorkDir,
		issueStyle: issueStyle(config.ColorSchemeAuto),
	}, nil
}

// loadConfig loads the configuration for a command run from the working
// directory. configPath is the explicit --config value, if any.
func (a *App) loadConfig(ctx context.Context, configPath string) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: types.FilesystemPath(configPath),
		BaseDir:        types.FilesystemPath(a.workDir),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfigLoad, err)
	}

	a.issueStyle = issueStyle(cfg.UI.ColorScheme)
	return cfg, nil
}

// openWorkspace discovers the workspace from the working directory, or opens
// root directly when --root was given.
func (a *App) openWorkspace(root string) (*workspace.Workspace, error) {
	var (
		ws  *workspace.Workspace
		err error
	)
	if root != "" {
		ws, err = workspace.Open(root)
	} else {
		ws, err = workspace.Find(a.workDir)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errWorkspace, err)
	}
	return ws, nil
}

// newLogger returns the dispatcher logger: info level, debug when verbose.
func (a *App) newLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}

// runner returns the injected Runner or a supervisor bound to the App's streams.
func (a *App) runner(logger *log.Logger) dispatch.Runner {
	if a.Runner != nil {
		return a.Runner
	}
	return dispatch.NewSupervisorRunner(&runtime.Supervisor{
		Stdin:  a.stdin,
		Stdout: a.stdout,
		Stderr: a.stderr,
		Logger: logger,
	})
}

// tableOptions maps the configuration onto the recipe table.
func tableOptions(cfg *config.Config, dir string) recipe.Options {
	return recipe.Options{
		BuildTool:     string(cfg.Tools.Build),
		LoadGenerator: string(cfg.Tools.LoadGenerator),
		Dir:           dir,
		BuiltinWatch:  cfg.Watch.Mode == config.WatchModeBuiltin,
		WatchDebounce: cfg.Watch.Debounce,
	}
}

// issueStyle maps the configured color scheme to a glamour style.
func issueStyle(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}
