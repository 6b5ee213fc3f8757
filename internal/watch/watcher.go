// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is not positive.
const DefaultDebounce = 500 * time.Millisecond

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

// alwaysIgnored lists trees that change on every build or save and never
// warrant a restart.
var alwaysIgnored = []string{
	"**/.git/**",
	"target/**",
	"**/*.rs.bk",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Root is the directory watched recursively. Empty means the working directory.
		Root string
		// Ignore holds extra doublestar patterns, relative to Root, merged
		// with the built-in ignores.
		Ignore []string
		// Debounce is the quiet period after the last event before OnChange fires.
		Debounce time.Duration
		// OnChange receives the sorted, deduplicated paths (relative to Root,
		// slash separated) changed during one burst. It runs on the Run
		// goroutine; events arriving meanwhile are queued for the next burst.
		OnChange func(ctx context.Context, changed []string) error
		// Logger receives non-fatal watcher diagnostics. nil discards them.
		Logger *log.Logger
	}

	// Watcher delivers debounced change notifications for a directory tree.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		root     string
		ignores  []string
		debounce time.Duration
		logger   *log.Logger
		started  atomic.Bool
	}
)

// New validates cfg, resolves Root and registers every non-ignored directory
// under it.
func New(cfg Config) (*Watcher, error) {
	root := cfg.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		root = wd
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}

	for _, pat := range cfg.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q", pat)
		}
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		root:     absRoot,
		ignores:  slices.Concat(alwaysIgnored, cfg.Ignore),
		debounce: debounce,
		logger:   logger,
	}

	if err := w.addTree(absRoot); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Root returns the absolute directory being watched.
func (w *Watcher) Root() string { return w.root }

// Run processes events until ctx is cancelled, then releases the underlying
// watcher. It returns nil on cancellation and an error only when the
// watcher itself breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", "err", err)
		}
	}()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			rel, relevant := w.relevant(evt)
			if !relevant {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.addCreatedDir(evt.Name, rel)
			}
			pending[rel] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			w.logger.Debug("change detected", "paths", len(changed), "first", changed[0])
			if w.cfg.OnChange == nil {
				continue
			}
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Warn("change handler failed", "err", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if isFatal(err) {
				return fmt.Errorf("watch: %w", err)
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

// relevant maps an event to its root-relative path and reports whether it
// should count towards a restart. Pure chmod events are dropped: editors and
// cargo touch permissions without changing content.
func (w *Watcher) relevant(evt fsnotify.Event) (string, bool) {
	if evt.Op == fsnotify.Chmod {
		return "", false
	}
	rel, err := filepath.Rel(w.root, evt.Name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	return rel, !w.Ignored(rel)
}

// Ignored reports whether the root-relative path matches a built-in or
// configured ignore pattern. Directories also match through their
// trailing-slash form, so "target/**" excludes "target" itself.
func (w *Watcher) Ignored(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pat := range w.ignores {
		if matchIgnore(pat, rel) || matchIgnore(pat, rel+"/") {
			return true
		}
	}
	return false
}

func matchIgnore(pattern, rel string) bool {
	ok, err := doublestar.Match(pattern, rel)
	return err == nil && ok
}

// addTree registers dir and every non-ignored directory below it.
// Unreadable directories are skipped with a warning.
func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn("skipping unreadable path", "path", path, "err", walkErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil //nolint:nilerr // outside the root, nothing to watch
		}
		if rel != "." && w.Ignored(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", dir, err)
	}
	return nil
}

// addCreatedDir extends the watch to directories created after New.
func (w *Watcher) addCreatedDir(path, rel string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.Ignored(rel) {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Warn("watch new directory", "path", path, "err", err)
	}
}
