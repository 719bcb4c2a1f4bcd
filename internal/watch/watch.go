// Package watch reports working-tree changes so cached diffs can be
// dropped.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// gitFiles are the entries directly inside .git whose changes matter.
// HEAD changes on checkout, index on staging and packed-refs on gc or
// branch deletion. Branch tips move under refs/heads, which is watched
// separately.
var gitFiles = map[string]bool{
	"HEAD":        true,
	"index":       true,
	"packed-refs": true,
}

// branchRefs is the .git subtree holding branch tips.
const branchRefs = "refs/heads"

// Watcher watches a directory tree and calls onChange once per burst of
// filesystem events.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange func()
	logger   *zap.Logger
	fsw      *fsnotify.Watcher
}

// New creates a watcher over every directory below root. Nested .git
// directories are not descended into.
func New(root string, debounce time.Duration, onChange func(), logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		root:     filepath.Clean(root),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		fsw:      fsw,
	}
	if err := w.addTree(w.root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree adds dir and its subdirectories. Of a .git directory only the
// directory itself and its refs/heads tree are watched.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Directories can vanish mid-walk.
			if os.IsNotExist(err) && path != dir {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		if d.Name() == ".git" {
			heads := filepath.Join(path, filepath.FromSlash(branchRefs))
			if _, err := os.Stat(heads); err == nil {
				if err := w.addTree(heads); err != nil {
					return err
				}
			}
			return filepath.SkipDir
		}
		return nil
	})
}

// relevant filters out events from .git internals.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if rel, ok := gitRelative(ev.Name); ok {
		return gitFiles[rel] || strings.HasPrefix(rel, branchRefs+"/")
	}
	return true
}

// gitRelative returns name relative to the innermost enclosing .git
// directory, using forward slashes.
func gitRelative(name string) (string, bool) {
	parts := strings.Split(filepath.ToSlash(name), "/")
	for i := len(parts) - 2; i >= 0; i-- {
		if parts[i] == ".git" {
			return strings.Join(parts[i+1:], "/"), true
		}
	}
	return "", false
}

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	w.logger.Info("watching for changes", zap.String("root", w.root), zap.Duration("debounce", w.debounce))
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.logger.Warn("could not watch new directory", zap.String("path", ev.Name), zap.Error(err))
					}
				}
			}
			w.logger.Debug("change detected", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
			timer.Reset(w.debounce)

		case <-timer.C:
			w.onChange()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}
