// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/invowk/recipe/internal/config"
	"github.com/invowk/recipe/pkg/types"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `recipe config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	var configPath string

	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage recipe configuration",
		Long: `Manage recipe configuration.

Configuration is read from the first file found of:
  - the --config flag
  - Linux: ~/.config/recipe/config.cue
    macOS: ~/Library/Application Support/recipe/config.cue
    Windows: %APPDATA%\recipe\config.cue
  - recipe.cue in the working directory

RECIPE_* environment variables override file values,
e.g. RECIPE_WATCH_MODE=builtin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cfgCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file")

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.Context(), app, configPath)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(app, "")
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, configPath string) error {
	cfg, err := app.loadConfig(ctx, configPath)
	if err != nil {
		return err
	}

	w := app.stdout
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	path, err := config.ResolvePath(config.LoadOptions{
		ConfigFilePath: types.FilesystemPath(configPath),
		BaseDir:        types.FilesystemPath(app.workDir),
	})
	if err != nil || path == "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s:\n", keyStyle.Render("tools"))
	fmt.Fprintf(w, "  build: %s\n", valueStyle.Render(string(cfg.Tools.Build)))
	fmt.Fprintf(w, "  load_generator: %s\n", valueStyle.Render(string(cfg.Tools.LoadGenerator)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("watch"))
	fmt.Fprintf(w, "  mode: %s\n", valueStyle.Render(string(cfg.Watch.Mode)))
	fmt.Fprintf(w, "  debounce: %s\n", valueStyle.Render(cfg.Watch.Debounce.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))

	return nil
}

// initConfig writes the default configuration into dir, the platform config
// directory when dir is empty. An existing file is never overwritten.
func initConfig(app *App, dir string) error {
	path, created, err := config.CreateDefaultConfig(dir)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
