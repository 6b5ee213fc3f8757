// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type (
	// Options configures the executables and environment a Table resolves against.
	Options struct {
		// BuildTool is the package/build tool (default "cargo").
		BuildTool string
		// LoadGenerator is the HTTP load generator (default "oha").
		LoadGenerator string
		// Dir is the working directory of every invocation (the workspace root).
		Dir string
		// BuiltinWatch switches `service dev` from the external watcher to the
		// in-process watcher.
		BuiltinWatch bool
		// WatchDebounce is the debounce of the built-in watcher.
		WatchDebounce time.Duration
	}

	// Table is the immutable alias → recipe registry. It is safe for
	// concurrent use because nothing mutates it after construction.
	Table struct {
		buildTool string
		dir       string
		recipes   map[Alias]Recipe
		aliases   []Alias
	}
)

// NewTable builds the workspace's recipe table from Options.
func NewTable(opts Options) (*Table, error) {
	opts = opts.withDefaults()
	return newTable(opts, DefaultRecipes(opts))
}

// newTable validates recipes and freezes them into a Table. Rule slices are
// copied so later changes to the input cannot reach the table.
func newTable(opts Options, recipes []Recipe) (*Table, error) {
	t := &Table{
		buildTool: opts.BuildTool,
		dir:       opts.Dir,
		recipes:   make(map[Alias]Recipe, len(recipes)),
	}

	for _, r := range recipes {
		if strings.TrimSpace(string(r.Alias)) == "" {
			return nil, &InvalidRecipeError{Alias: r.Alias, Reason: "alias must be non-empty"}
		}
		if strings.TrimSpace(string(r.Package)) == "" {
			return nil, &InvalidRecipeError{Alias: r.Alias, Reason: "target package must be non-empty"}
		}
		if _, exists := t.recipes[r.Alias]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAlias, r.Alias)
		}

		seen := make(map[string]struct{}, len(r.Rules))
		for _, rule := range r.Rules {
			if rule.Literal == "" {
				return nil, &InvalidRecipeError{Alias: r.Alias, Reason: "rule literal must be non-empty"}
			}
			if rule.Policy == nil {
				return nil, &InvalidRecipeError{Alias: r.Alias, Reason: fmt.Sprintf("rule %q has no policy", rule.Literal)}
			}
			if _, dup := seen[rule.Literal]; dup {
				return nil, fmt.Errorf("%w: recipe %q, sub-command %q", ErrDuplicateRule, r.Alias, rule.Literal)
			}
			seen[rule.Literal] = struct{}{}
		}

		r.Rules = slices.Clone(r.Rules)
		t.recipes[r.Alias] = r
		t.aliases = append(t.aliases, r.Alias)
	}
	slices.Sort(t.aliases)

	return t, nil
}

func (o Options) withDefaults() Options {
	if o.BuildTool == "" {
		o.BuildTool = DefaultBuildTool
	}
	if o.LoadGenerator == "" {
		o.LoadGenerator = DefaultLoadGenerator
	}
	return o
}

// Resolve turns (alias, sub-command, trailing args) into an Invocation.
// The trailing arguments are copied verbatim; the table is never modified.
func (t *Table) Resolve(alias Alias, subCommand string, args []string) (Invocation, error) {
	r, ok := t.recipes[alias]
	if !ok {
		return Invocation{}, &UnknownRecipeError{Alias: alias, Known: t.Aliases()}
	}
	if subCommand == "" {
		return Invocation{}, fmt.Errorf("recipe %q: %w", alias, ErrEmptySubCommand)
	}

	tgt := target{
		buildTool: t.buildTool,
		pkg:       r.Package,
		path:      r.PackagePath(),
		dir:       t.dir,
	}

	return r.policyFor(subCommand).build(tgt, subCommand, args), nil
}

// Lookup returns the recipe registered under alias.
func (t *Table) Lookup(alias Alias) (Recipe, bool) {
	r, ok := t.recipes[alias]
	if !ok {
		return Recipe{}, false
	}
	r.Rules = slices.Clone(r.Rules)
	return r, true
}

// Aliases returns the configured aliases in sorted order.
func (t *Table) Aliases() []Alias {
	return slices.Clone(t.aliases)
}

// BuildTool returns the executable used by passthrough rules.
func (t *Table) BuildTool() string { return t.buildTool }

// Dir returns the working directory used for every invocation.
func (t *Table) Dir() string { return t.dir }

// Match returns the first rule whose literal equals subCommand. ok is false
// when the sub-command falls through to Passthrough.
func (r Recipe) Match(subCommand string) (rule Rule, ok bool) {
	for _, rule := range r.Rules {
		if rule.Literal == subCommand {
			return rule, true
		}
	}
	return Rule{}, false
}

func (r Recipe) policyFor(subCommand string) Policy {
	if rule, ok := r.Match(subCommand); ok {
		return rule.Policy
	}
	return Passthrough{}
}
