package manifest

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Entry is a one-line summary of a conformant document
type Entry struct {
	Kind        Kind   `json:"kind"`
	Path        string `json:"path"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Decode converts parsed metadata into the typed metadata struct of its kind.
// The returned value is a pointer to AgentMetadata, CommandMetadata,
// SkillMetadata or PluginManifest.
func Decode(kind Kind, metadata map[string]any) (any, error) {
	info, ok := Info(kind)
	if !ok {
		return nil, errors.Errorf("unknown document kind '%s'", kind)
	}

	result := info.newMeta()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           result,
		WeaklyTypedInput: true,
		DecodeHook:       toolListHook,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create metadata decoder")
	}

	if err := decoder.Decode(metadata); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s metadata", kind)
	}
	return result, nil
}

// Summarize decodes metadata and reduces it to an Entry. Commands have no
// name field, so their name is taken from the file name.
func Summarize(kind Kind, path string, metadata map[string]any) (Entry, error) {
	decoded, err := Decode(kind, metadata)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{Kind: kind, Path: path}
	switch m := decoded.(type) {
	case *AgentMetadata:
		entry.Name, entry.Description = m.Name, m.Description
	case *CommandMetadata:
		entry.Name, entry.Description = commandName(path), m.Description
	case *SkillMetadata:
		entry.Name, entry.Description = m.Name, m.Description
	case *PluginManifest:
		entry.Name, entry.Description = m.Name, m.Description
	}
	return entry, nil
}

func commandName(path string) string {
	base := path
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, ".md")
}

var toolListType = reflect.TypeOf(ToolList{})

// toolListHook splits "Read, Grep" style strings into a ToolList
func toolListHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != toolListType || from.Kind() != reflect.String {
		return data, nil
	}

	var tools ToolList
	for _, part := range strings.Split(reflect.ValueOf(data).String(), ",") {
		if name := strings.TrimSpace(part); name != "" {
			tools = append(tools, name)
		}
	}
	return tools, nil
}
