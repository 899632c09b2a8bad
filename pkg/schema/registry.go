package schema

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/jingkaihe/plugincheck/pkg/manifest"
)

// Source tells where a kind's schema document came from
type Source string

// Schema sources, in resolution order
const (
	SourceDirectory Source = "directory" // configured schemas directory, files mandatory
	SourcePackage   Source = "package"   // <root>/schemas inside the plugin package
	SourceBuiltin   Source = "builtin"   // reflected from the manifest metadata types
)

const packageSchemaDir = "schemas"

// Registry resolves and compiles the schema of each document kind at most once.
// A Registry is meant to live for a single run so edited schema files are picked
// up by the next one.
type Registry struct {
	dir     string
	root    string
	schemas map[manifest.Kind]*Schema
	sources map[manifest.Kind]Source
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry) error

// WithSchemaDir makes dir the only place schema documents are read from.
// Every checked kind must then have a <kind>.schema.json file there.
func WithSchemaDir(dir string) RegistryOption {
	return func(r *Registry) error {
		if dir == "" {
			return errors.New("schema directory must not be empty")
		}
		r.dir = dir
		return nil
	}
}

// WithPackageRoot enables lookup of <root>/schemas/<kind>.schema.json before
// falling back to the built-in schemas
func WithPackageRoot(root string) RegistryOption {
	return func(r *Registry) error {
		r.root = root
		return nil
	}
}

// NewRegistry creates a schema registry
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		schemas: make(map[manifest.Kind]*Schema),
		sources: make(map[manifest.Kind]Source),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, errors.Wrap(err, "failed to apply schema registry option")
		}
	}

	return r, nil
}

// Load returns the compiled schema for kind, compiling it on first use
func (r *Registry) Load(kind manifest.Kind) (*Schema, error) {
	if s, ok := r.schemas[kind]; ok {
		return s, nil
	}

	s, source, err := r.resolve(kind)
	if err != nil {
		return nil, err
	}

	r.schemas[kind] = s
	r.sources[kind] = source
	return s, nil
}

// Source reports where the schema for kind was loaded from, or "" if it has
// not been loaded yet
func (r *Registry) Source(kind manifest.Kind) Source {
	return r.sources[kind]
}

func (r *Registry) resolve(kind manifest.Kind) (*Schema, Source, error) {
	name := kind.SchemaName()

	if r.dir != "" {
		s, err := compileFile(name, filepath.Join(r.dir, name))
		if err != nil {
			return nil, "", err
		}
		return s, SourceDirectory, nil
	}

	if r.root != "" {
		path := filepath.Join(r.root, packageSchemaDir, name)
		if _, err := os.Stat(path); err == nil {
			s, err := compileFile(name, path)
			if err != nil {
				return nil, "", err
			}
			return s, SourcePackage, nil
		}
	}

	doc, err := manifest.SchemaDocument(kind)
	if err != nil {
		return nil, "", err
	}
	s, err := Compile(name, builtinLocation(name), doc)
	if err != nil {
		return nil, "", err
	}
	return s, SourceBuiltin, nil
}

func compileFile(name, path string) (*Schema, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read schema '%s'", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve schema path '%s'", path)
	}

	return Compile(name, abs, doc)
}

func builtinLocation(name string) string {
	return "https://plugincheck.local/schemas/" + name
}
