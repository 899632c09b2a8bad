// Package watcher reports batches of changed files under a directory tree.
// Events are debounced so an editor saving several files at once produces a
// single batch.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/jingkaihe/plugincheck/pkg/logger"
)

// ChangeFunc receives the slash-separated paths, relative to the watched
// root, that changed since the previous batch
type ChangeFunc func(ctx context.Context, paths []string)

// Watcher watches a directory tree recursively
type Watcher struct {
	root       string
	debounce   time.Duration
	ignoreDirs map[string]bool
	fsw        *fsnotify.Watcher
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets how long the tree must stay quiet before a batch is emitted
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithIgnoreDirs skips directories with any of the given names at any depth
func WithIgnoreDirs(names ...string) Option {
	return func(w *Watcher) {
		for _, n := range names {
			if n = strings.Trim(n, `/\`); n != "" {
				w.ignoreDirs[n] = true
			}
		}
	}
}

// New creates a Watcher and registers every directory under root. Watches
// are active once New returns.
func New(ctx context.Context, root string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve watch root %s", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}

	w := &Watcher{
		root:       abs,
		debounce:   500 * time.Millisecond,
		ignoreDirs: make(map[string]bool),
		fsw:        fsw,
	}
	for _, opt := range opts {
		opt(w)
	}

	if _, err := w.addTree(ctx, abs); err != nil {
		fsw.Close()
		return nil, err
	}

	logger.G(ctx).WithField("root", abs).
		WithField("directories", len(fsw.WatchList())).
		Info("file watcher initialized")
	return w, nil
}

// Root returns the absolute watched directory
func (w *Watcher) Root() string {
	return w.root
}

// Run delivers change batches to onChange until ctx is cancelled. onChange is
// called from the Run goroutine, one batch at a time.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	defer w.fsw.Close()

	pending := make(map[string]bool)
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}

			logger.G(ctx).WithField("file", event.Name).
				WithField("operation", event.Op.String()).
				Debug("file change detected")

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					files, err := w.addTree(ctx, event.Name)
					if err != nil {
						logger.G(ctx).WithError(err).WithField("directory", event.Name).Warn("failed to watch new directory")
					}
					for _, f := range files {
						pending[f] = true
					}
				}
			}

			pending[event.Name] = true
			fire = time.After(w.debounce)

		case <-fire:
			fire = nil
			batch := w.relativize(pending)
			pending = make(map[string]bool)
			if len(batch) > 0 {
				onChange(ctx, batch)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.G(ctx).WithError(err).Error("error watching files")
		}
	}
}

// Close stops the watcher without waiting for Run
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// addTree watches dir and every non-ignored directory below it, returning the
// regular files found along the way
func (w *Watcher) addTree(ctx context.Context, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
			return nil
		}
		if path != w.root && w.ignoreDirs[d.Name()] {
			logger.G(ctx).WithField("directory", path).Debug("skipping ignored directory")
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch %s", path)
		}
		return nil
	})
	return files, err
}

func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if w.ignoreDirs[part] {
			return true
		}
	}
	return false
}

func (w *Watcher) relativize(paths map[string]bool) []string {
	out := make([]string, 0, len(paths))
	for p := range paths {
		rel, err := filepath.Rel(w.root, p)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}
