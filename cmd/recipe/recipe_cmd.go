// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/invowk/recipe/internal/dispatch"
	"github.com/invowk/recipe/internal/issue"
	"github.com/invowk/recipe/internal/recipe"
	"github.com/invowk/recipe/pkg/types"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// dispatchFlags are the flags recognised before the sub-command.
type dispatchFlags struct {
	dryRun  bool
	verbose bool
	help    bool
	config  string
	root    string
}

func (f *dispatchFlags) register(fs *pflag.FlagSet) {
	fs.BoolVarP(&f.dryRun, "dry-run", "n", false, "print the resolved command instead of running it")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
	fs.StringVar(&f.config, "config", "", "config file (default is $XDG_CONFIG_HOME/recipe/config.cue, then ./recipe.cue)")
	fs.StringVar(&f.root, "root", "", "workspace root (default is the nearest Cargo workspace)")
}

// parseDispatchFlags consumes the dispatcher flags up to the first
// non-flag argument, which is the sub-command. Everything after the
// sub-command is returned untouched.
func parseDispatchFlags(args []string) (flags dispatchFlags, subCommand string, rest []string, err error) {
	fs := pflag.NewFlagSet("recipe", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	flags.register(fs)
	fs.BoolVarP(&flags.help, "help", "h", false, "help")

	if err := fs.Parse(args); err != nil {
		return dispatchFlags{}, "", nil, err
	}

	positional := fs.Args()
	if len(positional) == 0 {
		return flags, "", nil, nil
	}
	return flags, positional[0], positional[1:], nil
}

// newRecipeCommand creates the command for one recipe alias. Flag parsing is
// disabled so that everything after the sub-command reaches the child.
func newRecipeCommand(app *App, r recipe.Recipe) *cobra.Command {
	cmd := &cobra.Command{
		Use:                string(r.Alias) + " [flags] <sub-command> [args...]",
		Short:              fmt.Sprintf("Run a sub-command against the %s package", r.Package),
		Long:               recipeLong(r),
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runRecipe(cmd, r.Alias, args)
		},
	}

	// Registered for help output only; runRecipe parses them itself.
	var display dispatchFlags
	display.register(cmd.Flags())

	return cmd
}

func recipeLong(r recipe.Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run a sub-command against the %s package.\n\n", r.Package)
	if len(r.Rules) > 0 {
		b.WriteString(SubtitleStyle.Render("Special sub-commands:"))
		b.WriteString("\n")
		for _, rule := range r.Rules {
			fmt.Fprintf(&b, "  %s\n", rule.Literal)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Any other sub-command runs 'cargo <sub-command> --package %s [args...]'.\n", r.Package)
	b.WriteString("Flags are only recognised before the sub-command.")
	return b.String()
}

// runRecipe parses the dispatcher flags, loads the configuration and the
// workspace, and dispatches. A non-zero child exit becomes a silent ExitError.
// An unknown alias fails before any flag, config or workspace is read.
func (a *App) runRecipe(cmd *cobra.Command, alias recipe.Alias, args []string) error {
	known, err := recipe.NewTable(recipe.Options{Dir: a.workDir})
	if err != nil {
		return &ExitError{Code: types.ExitFailure, Err: err}
	}
	if err := dispatch.CheckAlias(known, alias); err != nil {
		return &ExitError{Code: types.ExitUsage, Err: err}
	}

	flags, subCommand, rest, err := parseDispatchFlags(args)
	if err != nil {
		return &ExitError{Code: types.ExitUsage, Err: issue.NewErrorContext().
			WithOperation("parse dispatcher flags").
			WithResource(string(alias)).
			WithSuggestion("Dispatcher flags go before the sub-command; pass cargo flags after it").
			WithSuggestion(fmt.Sprintf("Run 'recipe %s --help' for the accepted flags", alias)).
			Wrap(err).
			BuildError()}
	}
	if flags.help {
		return cmd.Help()
	}

	ctx := cmd.Context()
	cfg, err := a.loadConfig(ctx, flags.config)
	if err != nil {
		a.verbose = flags.verbose
		return &ExitError{Code: types.ExitFailure, Err: err}
	}
	a.verbose = flags.verbose || cfg.UI.Verbose
	logger := a.newLogger(a.verbose)

	ws, err := a.openWorkspace(flags.root)
	if err != nil {
		return &ExitError{Code: types.ExitFailure, Err: err}
	}
	if !ws.Found() {
		logger.Debug("no Cargo workspace found, running from the working directory", "dir", ws.Root)
	}

	table, err := recipe.NewTable(tableOptions(cfg, ws.Root))
	if err != nil {
		return &ExitError{Code: types.ExitFailure, Err: err}
	}

	opts := []dispatch.Option{
		dispatch.WithLogger(logger),
		dispatch.WithWorkspace(ws),
		dispatch.WithRunner(a.runner(logger)),
	}
	if flags.dryRun {
		opts = append(opts, dispatch.WithDryRun(a.stdout))
	}

	code, err := dispatch.New(table, opts...).Dispatch(ctx, alias, subCommand, rest)
	switch {
	case err != nil:
		return &ExitError{Code: code, Err: err}
	case !code.IsSuccess():
		return &ExitError{Code: code}
	default:
		return nil
	}
}
