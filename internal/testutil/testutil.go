// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// MustMkdirAll creates a directory along with any necessary parents.
// The test fails immediately if the operation fails.
func MustMkdirAll(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustWriteFile writes content to path, creating parent directories.
// The test fails immediately if the operation fails.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// NewCargoWorkspace creates a temporary directory holding a workspace
// Cargo.toml that lists members, with an src directory for each member.
// It returns the workspace root.
func NewCargoWorkspace(t testing.TB, members ...string) string {
	t.Helper()
	root := t.TempDir()

	quoted := make([]string, 0, len(members))
	for _, m := range members {
		quoted = append(quoted, fmt.Sprintf("%q", m))
		MustMkdirAll(t, filepath.Join(root, m, "src"))
	}
	MustWriteFile(t, filepath.Join(root, "Cargo.toml"),
		"[workspace]\nresolver = \"2\"\nmembers = ["+strings.Join(quoted, ", ")+"]\n")

	return root
}
