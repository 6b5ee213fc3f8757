// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/invowk/recipe/internal/issue"
	"github.com/invowk/recipe/internal/recipe"
	"github.com/invowk/recipe/internal/runtime"
	"github.com/invowk/recipe/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	errConfigLoad = errors.New("load configuration")
	errWorkspace  = errors.New("open workspace")
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "recipe <recipe> [flags] <sub-command> [args...]",
		Short: "Short aliases for the workspace's cargo invocations",
		Long: TitleStyle.Render("recipe") + SubtitleStyle.Render(" - short aliases for the workspace's cargo invocations") + `

recipe maps a recipe alias and a sub-command to one child process run from
the workspace root. Special sub-commands are rewritten (install, watch,
load test); anything else is forwarded to cargo against the recipe's package.

` + SubtitleStyle.Render("Examples:") + `
  recipe cli ir                 Install the CLI from source
  recipe service dev            Run the service, restarting on change
  recipe service stress         Load test the running service
  recipe libs test -- --nocapture
  recipe impl -n build          Print the command instead of running it
  recipe list                   Show every recipe`,
		Version: getVersionString(),
		// Unknown aliases reach RunE untouched so they fail as an unknown
		// recipe whatever follows them, --help included.
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			switch args[0] {
			case "-h", "--help":
				return cmd.Help()
			case "-v", "--version":
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", cmd.Name(), cmd.Version)
				return err
			}
			return app.runRecipe(cmd, recipe.Alias(args[0]), args[1:])
		},
	}
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	rootCmd.SetIn(app.stdin)

	for _, r := range recipe.DefaultRecipes(recipe.Options{}) {
		rootCmd.AddCommand(newRecipeCommand(app, r))
	}
	rootCmd.AddCommand(newListCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the dispatched child's exit code.
// This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(int(types.ExitFailure))
	}

	// Signals are not routed through fang: the supervisor relays them to the
	// child and keeps waiting for it.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithErrorHandler(app.handleError),
	); err != nil {
		os.Exit(int(exitCodeFor(err)))
	}
}

// exitCodeFor maps a command error to the process exit code. A code the
// platform cannot report faithfully becomes the generic failure.
func exitCodeFor(err error) types.ExitCode {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code.Validate() == nil {
		return exitErr.Code
	}
	return types.ExitFailure
}

// handleError prints a command failure. Child exits that were already
// reported by the child itself stay silent.
func (a *App) handleError(w io.Writer, _ fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.verbose))

	id, ok := issueFor(err)
	if !ok {
		return
	}
	rendered, renderErr := issue.Get(id).Render(a.issueStyle)
	if renderErr != nil {
		return
	}
	fmt.Fprint(w, rendered)
}

// issueFor picks the catalog entry explaining err.
func issueFor(err error) (issue.Id, bool) {
	switch {
	case errors.Is(err, recipe.ErrUnknownRecipe):
		return issue.UnknownRecipeId, true
	case errors.Is(err, runtime.ErrSpawnFailure):
		return issue.ToolNotFoundId, true
	case errors.Is(err, errConfigLoad):
		return issue.ConfigLoadFailedId, true
	case errors.Is(err, errWorkspace):
		return issue.WorkspaceNotFoundId, true
	default:
		return 0, false
	}
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
