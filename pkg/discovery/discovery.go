// Package discovery resolves the documents of each kind inside a plugin package.
// Patterns are matched against an fs.FS rooted at the package so the same code
// serves the real filesystem and in-memory fixtures.
package discovery

import (
	"io/fs"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	"github.com/pkg/errors"

	"github.com/jingkaihe/plugincheck/pkg/manifest"
)

// Discovery finds document paths for each kind
type Discovery struct {
	fsys     fs.FS
	patterns map[manifest.Kind]string
	excludes []glob.Glob
}

// Option configures a Discovery
type Option func(*Discovery) error

// WithRoot discovers documents under dir on the local filesystem
func WithRoot(dir string) Option {
	return func(d *Discovery) error {
		info, err := os.Stat(dir)
		if err != nil {
			return errors.Wrapf(err, "failed to access package root '%s'", dir)
		}
		if !info.IsDir() {
			return errors.Errorf("package root '%s' is not a directory", dir)
		}
		d.fsys = os.DirFS(dir)
		return nil
	}
}

// WithFS discovers documents inside fsys
func WithFS(fsys fs.FS) Option {
	return func(d *Discovery) error {
		d.fsys = fsys
		return nil
	}
}

// WithPattern overrides the discovery pattern of a kind
func WithPattern(kind manifest.Kind, pattern string) Option {
	return func(d *Discovery) error {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid pattern '%s' for %s documents", pattern, kind)
		}
		d.patterns[kind] = pattern
		return nil
	}
}

// WithExcludes drops every discovered path matching one of patterns.
// Patterns use '/' as separator, so "*" stays within one path segment and "**"
// crosses segments.
func WithExcludes(patterns ...string) Option {
	return func(d *Discovery) error {
		for _, p := range patterns {
			g, err := glob.Compile(p, '/')
			if err != nil {
				return errors.Wrapf(err, "invalid exclude pattern '%s'", p)
			}
			d.excludes = append(d.excludes, g)
		}
		return nil
	}
}

// New creates a Discovery. Without WithRoot or WithFS it uses the current
// directory.
func New(opts ...Option) (*Discovery, error) {
	d := &Discovery{
		patterns: make(map[manifest.Kind]string),
	}
	for _, kind := range manifest.Kinds() {
		info, _ := manifest.Info(kind)
		d.patterns[kind] = info.Pattern
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if d.fsys == nil {
		if err := WithRoot(".")(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// FS returns the filesystem documents are read from
func (d *Discovery) FS() fs.FS {
	return d.fsys
}

// Pattern returns the discovery pattern for kind
func (d *Discovery) Pattern(kind manifest.Kind) string {
	return d.patterns[kind]
}

// Discover returns the slash-separated paths of every document of kind in
// lexicographic order
func (d *Discovery) Discover(kind manifest.Kind) ([]string, error) {
	pattern, ok := d.patterns[kind]
	if !ok {
		return nil, errors.Errorf("no discovery pattern for %s documents", kind)
	}

	matches, err := doublestar.Glob(d.fsys, pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to glob '%s'", pattern)
	}

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		if d.excluded(m) {
			continue
		}
		paths = append(paths, m)
	}

	sort.Strings(paths)
	return paths, nil
}

func (d *Discovery) excluded(path string) bool {
	for _, g := range d.excludes {
		if g.Match(path) {
			return true
		}
	}
	return false
}
