// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
)

// ManifestName is the Cargo manifest file name.
const ManifestName = "Cargo.toml"

// ErrInvalidManifest is the sentinel error wrapped by ManifestError.
var ErrInvalidManifest = errors.New("invalid cargo manifest")

type (
	// Workspace describes the directory recipes run in.
	Workspace struct {
		// Root is the absolute directory holding the workspace manifest,
		// or the start directory when no workspace manifest exists.
		Root string
		// Manifest is the absolute manifest path; empty when none was found.
		Manifest string
		// Members lists the workspace member patterns in declaration order.
		Members []string
		// Exclude lists the member patterns excluded from the workspace.
		Exclude []string
	}

	// ManifestError is returned when a Cargo.toml cannot be decoded.
	ManifestError struct {
		Path string
		Err  error
	}

	cargoManifest struct {
		Workspace *workspaceTable `toml:"workspace"`
	}

	workspaceTable struct {
		Members []string `toml:"members"`
		Exclude []string `toml:"exclude"`
	}
)

// Error implements the error interface for ManifestError.
func (e *ManifestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns both ErrInvalidManifest and the decode error.
func (e *ManifestError) Unwrap() []error { return []error{ErrInvalidManifest, e.Err} }

// Find walks up from start to the first Cargo.toml that declares a
// [workspace] table. Manifests of member crates are skipped. When no
// workspace manifest exists, the absolute start directory is returned
// with an empty Manifest.
func Find(start string) (*Workspace, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolve start directory: %w", err)
	}

	for dir := abs; ; {
		ws, err := readWorkspace(filepath.Join(dir, ManifestName))
		if err != nil {
			return nil, err
		}
		if ws != nil {
			ws.Root = dir
			return ws, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return &Workspace{Root: abs}, nil
		}
		dir = parent
	}
}

// Open reads the workspace manifest in root without walking up. A root
// without a workspace manifest is still returned as a Workspace.
func Open(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", abs)
	}

	ws, err := readWorkspace(filepath.Join(abs, ManifestName))
	if err != nil {
		return nil, err
	}
	if ws == nil {
		ws = &Workspace{}
	}
	ws.Root = abs
	return ws, nil
}

// readWorkspace returns nil, nil when the manifest is missing or is not a
// workspace manifest.
func readWorkspace(manifest string) (*Workspace, error) {
	data, err := os.ReadFile(manifest)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", manifest, err)
	}

	var m cargoManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, &ManifestError{Path: manifest, Err: err}
	}
	if m.Workspace == nil {
		return nil, nil
	}

	return &Workspace{
		Manifest: manifest,
		Members:  slices.Clone(m.Workspace.Members),
		Exclude:  slices.Clone(m.Workspace.Exclude),
	}, nil
}

// Found reports whether a workspace manifest was located.
func (w *Workspace) Found() bool { return w.Manifest != "" }

// HasMember reports whether the crate directory dir (relative to Root, slash
// separated) is a workspace member. Member entries may be glob patterns such
// as "crates/*". A workspace without a manifest has no members.
func (w *Workspace) HasMember(dir string) bool {
	dir = path.Clean(filepath.ToSlash(dir))
	for _, pattern := range w.Exclude {
		if matchMember(pattern, dir) {
			return false
		}
	}
	for _, pattern := range w.Members {
		if matchMember(pattern, dir) {
			return true
		}
	}
	return false
}

func matchMember(pattern, dir string) bool {
	pattern = path.Clean(filepath.ToSlash(pattern))
	if pattern == dir {
		return true
	}
	ok, err := doublestar.Match(pattern, dir)
	return err == nil && ok
}
