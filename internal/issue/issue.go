// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Id identifies a catalog entry.
type Id int //nolint:revive // kept short for call sites

const (
	UnknownRecipeId Id = iota + 1
	ToolNotFoundId
	ConfigLoadFailedId
	WorkspaceNotFoundId
)

type (
	// MarkdownMsg is Markdown text rendered by glamour.
	MarkdownMsg string

	// HttpLink is a documentation link listed under "See also".
	HttpLink string //nolint:revive // mirrors MarkdownMsg naming

	// Issue is a catalog entry of Markdown help.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		extLinks []HttpLink
	}
)

// Id returns the issue identifier.
func (i *Issue) Id() Id { return i.id } //nolint:revive // matches type name

// MarkdownMsg returns the raw Markdown.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// ExtLinks returns a copy of the external links.
func (i *Issue) ExtLinks() []HttpLink { return slices.Clone(i.extLinks) }

// Render renders the issue with the given glamour style ("dark", "light",
// "auto" or a path to a JSON style).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.extLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
	}
	return render(md.String(), stylePath)
}

var render = glamour.Render

var (
	unknownRecipeIssue = &Issue{
		id: UnknownRecipeId,
		mdMsg: `
# Unknown recipe!

The first argument selects the workspace package a recipe acts on.

## Available recipes
- **cli**: the command-line tool (` + "`ir`" + `, ` + "`ir:now`" + `, ` + "`build:now`" + `)
- **service**: the HTTP service (` + "`dev`" + `, ` + "`stress`" + `)
- **libs**: the shared libraries
- **impl**: the derive macros

Any other sub-command is forwarded to cargo against the selected package:
~~~
$ recipe libs test -- --nocapture
~~~

List everything with:
~~~
$ recipe list
~~~`,
	}

	toolNotFoundIssue = &Issue{
		id: ToolNotFoundId,
		mdMsg: `
# Required tool not found!

The recipe resolved to an executable that is not installed or not on your PATH.

## Things you can try
- Install the Rust toolchain (provides ` + "`cargo`" + `):
~~~
$ curl --proto '=https' --tlsv1.2 -sSf https://sh.rustup.rs | sh
~~~
- ` + "`service dev`" + ` needs cargo-watch and the shuttle runner:
~~~
$ cargo install cargo-watch cargo-shuttle
~~~
- ` + "`service stress`" + ` needs the oha load generator:
~~~
$ cargo install oha
~~~
- Point the config at a custom location with ` + "`tools.build`" + ` or ` + "`tools.load_generator`" + `.`,
		extLinks: []HttpLink{
			"https://github.com/watchexec/cargo-watch",
			"https://github.com/hatoo/oha",
		},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file is not valid CUE or does not match the schema.

## Example
~~~cue
tools: {
	build:          "cargo"
	load_generator: "oha"
}
watch: {
	mode:     "external" // or "builtin"
	debounce: "500ms"
}
ui: verbose: false
~~~

Show the effective configuration with:
~~~
$ recipe config show
~~~`,
	}

	workspaceNotFoundIssue = &Issue{
		id: WorkspaceNotFoundId,
		mdMsg: `
# Workspace root not found!

No Cargo.toml with a ` + "`[workspace]`" + ` table was found in this directory or its parents.
Recipes run from the workspace root so package paths resolve correctly.

## Things you can try
- Run the command from inside the workspace checkout
- Pass ` + "`--root`" + ` with the workspace directory`,
	}

	issues = map[Id]*Issue{
		unknownRecipeIssue.Id():     unknownRecipeIssue,
		toolNotFoundIssue.Id():      toolNotFoundIssue,
		configLoadFailedIssue.Id():  configLoadFailedIssue,
		workspaceNotFoundIssue.Id(): workspaceNotFoundIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, id := range slices.Sorted(maps.Keys(issues)) {
		out = append(out, issues[id])
	}
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
