// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/invowk/recipe/internal/config"
	"github.com/invowk/recipe/internal/recipe"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// otherSubCommand labels the passthrough row of each recipe.
const otherSubCommand = "<sub-command>"

// listRow is one line of `recipe list`.
type listRow struct {
	alias      recipe.Alias
	pkg        recipe.TargetPackage
	subCommand string
	command    string
}

// newListCommand creates the `recipe list` command.
func newListCommand(app *App) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recipes, their packages and special sub-commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			recipes, err := recipe.NewTable(tableOptions(cfg, app.workDir))
			if err != nil {
				return err
			}
			rows, err := listRows(recipes)
			if err != nil {
				return err
			}
			return renderList(app.stdout, rows, cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "config file")

	return cmd
}

// listRows resolves every special rule with no trailing arguments, followed
// by the passthrough row of each recipe.
func listRows(t *recipe.Table) ([]listRow, error) {
	var rows []listRow
	for _, alias := range t.Aliases() {
		r, _ := t.Lookup(alias)
		for _, rule := range r.Rules {
			inv, err := t.Resolve(alias, rule.Literal, nil)
			if err != nil {
				return nil, err
			}
			rows = append(rows, listRow{alias: alias, pkg: r.Package, subCommand: rule.Literal, command: inv.CommandLine()})
		}
		rows = append(rows, listRow{
			alias:      alias,
			pkg:        r.Package,
			subCommand: otherSubCommand,
			command:    fmt.Sprintf("%s %s --package %s", t.BuildTool(), otherSubCommand, r.Package),
		})
	}
	return rows, nil
}

func renderList(w io.Writer, rows []listRow, cfg *config.Config) error {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		Headers("RECIPE", "PACKAGE", "SUB-COMMAND", "RUNS").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 0:
				return tableCellStyle.Foreground(ColorHighlight)
			default:
				return tableCellStyle
			}
		})
	for _, r := range rows {
		tbl.Row(string(r.alias), string(r.pkg), r.subCommand, r.command)
	}

	if _, err := fmt.Fprintln(w, TitleStyle.Render("Recipes")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, tbl.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s %s\n", SubtitleStyle.Render("watch mode:"), CmdStyle.Render(string(cfg.Watch.Mode)))
	return err
}
