// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/invowk/recipe/internal/config"
	"github.com/invowk/recipe/internal/dispatch"
	"github.com/invowk/recipe/internal/issue"
	"github.com/invowk/recipe/internal/recipe"
	"github.com/invowk/recipe/internal/runtime"
	"github.com/invowk/recipe/internal/testutil"
	"github.com/invowk/recipe/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/google/go-cmp/cmp"
)

type (
	// stubConfig returns a fixed configuration.
	stubConfig struct {
		cfg *config.Config
		err error

		mu   sync.Mutex
		opts []config.LoadOptions
	}

	// recordingRunner records invocations instead of spawning them.
	recordingRunner struct {
		mu   sync.Mutex
		runs []recipe.Invocation
		code types.ExitCode
		err  error
	}
)

func (s *stubConfig) Load(_ context.Context, opts config.LoadOptions) (*config.Config, error) {
	s.mu.Lock()
	s.opts = append(s.opts, opts)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if s.cfg != nil {
		return s.cfg, nil
	}
	return config.DefaultConfig(), nil
}

func (r *recordingRunner) Run(_ context.Context, inv recipe.Invocation) (types.ExitCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, inv)
	return r.code, r.err
}

func (r *recordingRunner) Start(recipe.Invocation) (dispatch.Process, error) {
	return nil, errors.New("not supported")
}

type harness struct {
	app    *App
	runner *recordingRunner
	cfg    *stubConfig
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	root   string
}

// newHarness builds an App rooted in a temporary Cargo workspace.
func newHarness(t *testing.T) *harness {
	t.Helper()

	root := testutil.NewCargoWorkspace(t, "cli", "service", "libs", "impl")

	h := &harness{
		runner: &recordingRunner{},
		cfg:    &stubConfig{},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		root:   root,
	}
	app, err := NewApp(Dependencies{
		Config:  h.cfg,
		Runner:  h.runner,
		Stdin:   strings.NewReader(""),
		Stdout:  h.stdout,
		Stderr:  h.stderr,
		WorkDir: root,
	})
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	h.app = app
	return h
}

func (h *harness) execute(args ...string) error {
	root := NewRootCommand(h.app)
	if args == nil {
		// cobra falls back to os.Args when SetArgs receives nil.
		args = []string{}
	}
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestRoot_PassthroughForwardsArgsVerbatim(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	if err := h.execute("libs", "test", "--", "--nocapture", "-n"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	want := []recipe.Invocation{{
		Executable: "cargo",
		Args:       []string{"test", "--package", "libs", "--", "--nocapture", "-n"},
		Dir:        h.root,
	}}
	if diff := cmp.Diff(want, h.runner.runs); diff != "" {
		t.Errorf("invocations mismatch (-want +got):\n%s", diff)
	}
	if got := h.cfg.opts[0].BaseDir; got != types.FilesystemPath(h.root) {
		t.Errorf("config BaseDir = %q, want %q", got, h.root)
	}
}

func TestRoot_ChildExitCodeIsSilent(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.runner.code = 101

	err := h.execute("impl", "test")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *ExitError", err)
	}
	if exitErr.Code != 101 || exitErr.Err != nil {
		t.Errorf("ExitError = %+v, want code 101 with no message", exitErr)
	}
	if got := exitCodeFor(err); got != 101 {
		t.Errorf("exitCodeFor() = %d, want 101", got)
	}

	var out bytes.Buffer
	h.app.handleError(&out, fang.Styles{}, err)
	if out.Len() != 0 {
		t.Errorf("a child's own failure must not be reported again, got %q", out.String())
	}
}

func TestRoot_UnknownRecipe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"trailing cargo flag", []string{"derive", "build", "--release"}},
		{"trailing long help", []string{"derive", "build", "--help"}},
		{"trailing short help", []string{"derive", "build", "-h"}},
		{"help before sub-command", []string{"derive", "--help"}},
		{"bad dispatcher flag", []string{"derive", "--release", "build"}},
		{"no sub-command", []string{"derive"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			err := h.execute(tt.args...)
			if !errors.Is(err, recipe.ErrUnknownRecipe) {
				t.Fatalf("err = %v, want ErrUnknownRecipe", err)
			}
			if got := exitCodeFor(err); got != types.ExitUsage {
				t.Errorf("exitCodeFor() = %d, want %d", got, types.ExitUsage)
			}
			if len(h.runner.runs) != 0 {
				t.Errorf("unknown recipe spawned %d processes", len(h.runner.runs))
			}
			if h.stdout.Len() != 0 {
				t.Errorf("unknown recipe wrote to stdout:\n%s", h.stdout.String())
			}

			var out bytes.Buffer
			h.app.handleError(&out, fang.Styles{}, err)
			for _, want := range []string{"derive", "cli, impl, libs, service", "Unknown"} {
				if !strings.Contains(out.String(), want) {
					t.Errorf("error output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestRoot_UnknownRecipeSkipsConfigAndWorkspace(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.cfg.err = errors.New("watch.mode: conflicting values")

	err := h.execute("derive", "--root", filepath.Join(h.root, "missing"), "build")
	if !errors.Is(err, recipe.ErrUnknownRecipe) || exitCodeFor(err) != types.ExitUsage {
		t.Fatalf("err = %v (code %d), want ErrUnknownRecipe with code %d", err, exitCodeFor(err), types.ExitUsage)
	}
	if n := len(h.cfg.opts); n != 0 {
		t.Errorf("config loaded %d times for an unknown recipe", n)
	}
}

func TestRoot_HelpAndVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want string
	}{
		{nil, "recipe list"},
		{[]string{"--help"}, "recipe list"},
		{[]string{"-h"}, "recipe list"},
		{[]string{"--version"}, "recipe version " + getVersionString()},
	}

	for _, tt := range tests {
		h := newHarness(t)
		if err := h.execute(tt.args...); err != nil {
			t.Fatalf("execute(%q) error = %v", tt.args, err)
		}
		if !strings.Contains(h.stdout.String(), tt.want) {
			t.Errorf("execute(%q) output missing %q:\n%s", tt.args, tt.want, h.stdout.String())
		}
		if len(h.runner.runs) != 0 || len(h.cfg.opts) != 0 {
			t.Errorf("execute(%q) dispatched or loaded config", tt.args)
		}
	}
}

func TestRoot_EmptySubCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	err := h.execute("cli")
	if !errors.Is(err, recipe.ErrEmptySubCommand) || exitCodeFor(err) != types.ExitUsage {
		t.Errorf("err = %v (code %d), want ErrEmptySubCommand with code %d", err, exitCodeFor(err), types.ExitUsage)
	}
	if len(h.runner.runs) != 0 {
		t.Errorf("empty sub-command spawned %d processes", len(h.runner.runs))
	}
}

func TestRoot_DryRun(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	if err := h.execute("cli", "-n", "ir:now", "--locked"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if got, want := h.stdout.String(), "cargo install --path cli --offline --locked\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if len(h.runner.runs) != 0 {
		t.Errorf("dry run spawned %d processes", len(h.runner.runs))
	}
}

func TestRoot_HelpBeforeSubCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	if err := h.execute("service", "--help"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if !strings.Contains(h.stdout.String(), "stress") {
		t.Errorf("help should list the special sub-commands, got:\n%s", h.stdout.String())
	}
	if len(h.runner.runs) != 0 {
		t.Errorf("help spawned %d processes", len(h.runner.runs))
	}
}

func TestRoot_BadDispatcherFlag(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	err := h.execute("libs", "--release", "build")
	if got := exitCodeFor(err); got != types.ExitUsage {
		t.Errorf("exitCodeFor() = %d, want %d (err = %v)", got, types.ExitUsage, err)
	}
	if len(h.runner.runs) != 0 {
		t.Errorf("flag error spawned %d processes", len(h.runner.runs))
	}
}

func TestRoot_ConfigLoadFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.cfg.err = errors.New("watch.mode: conflicting values")

	err := h.execute("service", "dev")
	if got := exitCodeFor(err); got != types.ExitFailure {
		t.Errorf("exitCodeFor() = %d, want %d", got, types.ExitFailure)
	}
	if id, ok := issueFor(err); !ok || id != issue.ConfigLoadFailedId {
		t.Errorf("issueFor() = %v, %v; want the config issue", id, ok)
	}
	if len(h.runner.runs) != 0 {
		t.Errorf("config failure spawned %d processes", len(h.runner.runs))
	}
}

func TestRoot_ConfigSelectsTools(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	cfg := config.DefaultConfig()
	cfg.Tools.LoadGenerator = "/opt/bin/oha"
	h.cfg.cfg = cfg

	if err := h.execute("service", "stress", "--no-tui"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if len(h.runner.runs) != 1 || h.runner.runs[0].Executable != "/opt/bin/oha" {
		t.Errorf("runs = %+v, want the configured load generator", h.runner.runs)
	}
}

func TestRoot_ExplicitRoot(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	other := t.TempDir()
	if err := h.execute("libs", "--root", other, "build"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if len(h.runner.runs) != 1 || h.runner.runs[0].Dir != other {
		t.Errorf("runs = %+v, want Dir %q", h.runner.runs, other)
	}

	err := h.execute("libs", "--root", filepath.Join(other, "missing"), "build")
	if !errors.Is(err, errWorkspace) || exitCodeFor(err) != types.ExitFailure {
		t.Errorf("err = %v, want a workspace error with code 1", err)
	}
}

func TestRoot_SpawnFailureRendersToolIssue(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.runner.code = types.ExitSpawnFailure
	h.runner.err = &runtime.SpawnError{Executable: "cargo", Err: exec.ErrNotFound}

	err := h.execute("cli", "ir")
	if got := exitCodeFor(err); got != types.ExitSpawnFailure {
		t.Errorf("exitCodeFor() = %d, want %d", got, types.ExitSpawnFailure)
	}

	var out bytes.Buffer
	h.app.handleError(&out, fang.Styles{}, err)
	if !strings.Contains(out.String(), "installed and on your PATH") {
		t.Errorf("error output should carry the suggestion, got:\n%s", out.String())
	}
}

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version takes priority", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2025-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2025-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got, want := getVersionString(), "dev (built from source)"; got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want types.ExitCode
	}{
		{"exit error", &ExitError{Code: 42}, 42},
		{"wrapped exit error", errors.Join(errors.New("context"), &ExitError{Code: 2}), 2},
		{"signal exit", &ExitError{Code: types.SignalExitCode(2)}, 130},
		{"plain error", errors.New("unknown command"), types.ExitFailure},
		{"out of range", &ExitError{Code: 300}, types.ExitFailure},
		{"negative", &ExitError{Code: -1}, types.ExitFailure},
	}

	for _, tt := range tests {
		if got := exitCodeFor(tt.err); got != tt.want {
			t.Errorf("%s: exitCodeFor() = %d, want %d", tt.name, got, tt.want)
		}
	}
}
