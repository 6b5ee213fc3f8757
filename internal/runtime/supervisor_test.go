// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/invowk/recipe/internal/recipe"
	"github.com/invowk/recipe/pkg/types"
)

func helperInvocation(exe string, args ...string) recipe.Invocation {
	return recipe.Invocation{
		Executable: exe,
		Args:       args,
		Env:        map[string]string{helperEnv: "1"},
	}
}

func TestSupervisorRun_StreamsOutput(t *testing.T) {
	t.Parallel()

	sup, stdout, stderr := newHelperSupervisor(t)

	code, err := sup.Run(context.Background(), helperInvocation("echo", "hello", "world"))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if code != types.ExitSuccess {
		t.Errorf("Run() code = %d, want 0", code)
	}
	if got := stdout.String(); got != "hello\nworld\n" {
		t.Errorf("stdout = %q, want %q", got, "hello\nworld\n")
	}
	if got := stderr.String(); got != "to-stderr\n" {
		t.Errorf("stderr = %q, want %q", got, "to-stderr\n")
	}
}

func TestSupervisorRun_PropagatesExitCode(t *testing.T) {
	t.Parallel()

	for _, want := range []types.ExitCode{0, 1, 3, 101} {
		sup, _, _ := newHelperSupervisor(t)

		code, err := sup.Run(context.Background(), helperInvocation("exit", want.String()))
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		if code != want {
			t.Errorf("Run() code = %d, want %d", code, want)
		}
	}
}

func TestSupervisorRun_EnvScopedToChild(t *testing.T) {
	t.Parallel()

	const name = "RECIPE_TEST_CHILD_ONLY"
	if _, set := os.LookupEnv(name); set {
		t.Skipf("%s unexpectedly set in test environment", name)
	}

	sup, stdout, _ := newHelperSupervisor(t)
	inv := helperInvocation("getenv", name, "RUST_LOG")
	inv.Env[name] = "child"
	inv.Env["RUST_LOG"] = "debug"

	if _, err := sup.Run(context.Background(), inv); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, name+"=child\n") || !strings.Contains(out, "RUST_LOG=debug\n") {
		t.Errorf("child did not see overrides, stdout = %q", out)
	}
	if _, set := os.LookupEnv(name); set {
		t.Errorf("override %s leaked into the parent environment", name)
	}
}

func TestSupervisorRun_WorkingDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sup, stdout, _ := newHelperSupervisor(t)
	inv := helperInvocation("pwd")
	inv.Dir = dir

	if _, err := sup.Run(context.Background(), inv); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	got := strings.TrimSpace(stdout.String())
	gotInfo, err := os.Stat(got)
	if err != nil {
		t.Fatalf("stat child wd %q: %v", got, err)
	}
	wantInfo, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat temp dir: %v", err)
	}
	if !os.SameFile(gotInfo, wantInfo) {
		t.Errorf("child wd = %q, want %q", got, dir)
	}
}

func TestSupervisorRun_SpawnFailure(t *testing.T) {
	t.Parallel()

	sup := &Supervisor{Stdout: &syncBuffer{}, Stderr: &syncBuffer{}}
	inv := recipe.Invocation{Executable: "recipe-test-definitely-missing-tool", Args: []string{"build"}}

	code, err := sup.Run(context.Background(), inv)
	if code != types.ExitSpawnFailure {
		t.Errorf("Run() code = %d, want %d", code, types.ExitSpawnFailure)
	}
	if !errors.Is(err, ErrSpawnFailure) {
		t.Fatalf("Run() error = %v, want ErrSpawnFailure", err)
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("Run() error = %v, want it to wrap exec.ErrNotFound", err)
	}
	var spawnErr *SpawnError
	if !errors.As(err, &spawnErr) || spawnErr.Executable != inv.Executable {
		t.Errorf("errors.As(*SpawnError) = %v", spawnErr)
	}
}

func TestSupervisorStart_WaitAndDone(t *testing.T) {
	t.Parallel()

	sup, _, _ := newHelperSupervisor(t)

	p, err := sup.Start(helperInvocation("exit", "7"))
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if p.Pid() <= 0 {
		t.Errorf("Pid() = %d", p.Pid())
	}
	if code := p.Wait(); code != 7 {
		t.Errorf("Wait() = %d, want 7", code)
	}
	select {
	case <-p.Done():
	default:
		t.Error("Done() not closed after Wait()")
	}
	if err := p.Signal(os.Interrupt); err != nil {
		t.Errorf("Signal() after exit = %v, want nil", err)
	}
}
