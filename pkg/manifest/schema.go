package manifest

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

func newReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
		ExpandedStruct:            true,
		Anonymous:                 true,
	}
}

// Schema reflects the built-in JSON Schema for a kind from its metadata type
func Schema(kind Kind) (*jsonschema.Schema, error) {
	info, ok := Info(kind)
	if !ok {
		return nil, errors.Errorf("unknown document kind '%s'", kind)
	}

	s := newReflector().Reflect(info.newMeta())
	if s.Version == "" {
		s.Version = jsonschema.Version
	}
	s.Title = string(kind) + " metadata"
	return s, nil
}

// SchemaDocument renders the built-in schema for a kind as indented JSON
func SchemaDocument(kind Kind) ([]byte, error) {
	s, err := Schema(kind)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %s schema", kind)
	}
	return data, nil
}
