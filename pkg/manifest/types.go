// Package manifest describes the document kinds that make up a plugin package
// and the metadata each kind declares. The metadata types double as the source
// of the built-in JSON Schemas and as decode targets for conformant metadata.
package manifest

import (
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// Kind identifies a category of plugin document
type Kind string

// Document kinds, in the order a package is checked
const (
	KindAgent   Kind = "agent"
	KindCommand Kind = "command"
	KindSkill   Kind = "skill"
	KindPlugin  Kind = "plugin" // the package manifest
)

// Format tells how the metadata block of a document is stored
type Format string

// Metadata formats
const (
	FormatFrontmatter Format = "frontmatter" // YAML between "---" lines
	FormatJSON        Format = "json"        // the whole file is a JSON object
)

// KindInfo holds the conventions for one document kind
type KindInfo struct {
	Kind     Kind
	Pattern  string // default discovery pattern, relative to the package root
	Format   Format
	Required bool // a package must contain at least one document of this kind
	newMeta  func() any
}

var kinds = []KindInfo{
	{Kind: KindAgent, Pattern: "agents/*.md", Format: FormatFrontmatter, Required: true, newMeta: func() any { return &AgentMetadata{} }},
	{Kind: KindCommand, Pattern: "commands/*.md", Format: FormatFrontmatter, Required: true, newMeta: func() any { return &CommandMetadata{} }},
	{Kind: KindSkill, Pattern: "skills/*/SKILL.md", Format: FormatFrontmatter, Required: true, newMeta: func() any { return &SkillMetadata{} }},
	{Kind: KindPlugin, Pattern: ".claude-plugin/plugin.json", Format: FormatJSON, Required: true, newMeta: func() any { return &PluginManifest{} }},
}

// Kinds returns every known kind in check order
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k.Kind)
	}
	return out
}

// Info returns the conventions for a kind
func Info(kind Kind) (KindInfo, bool) {
	for _, k := range kinds {
		if k.Kind == kind {
			return k, true
		}
	}
	return KindInfo{}, false
}

// ParseKind converts user input such as "agents" or "Skill" into a Kind
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "agent", "agents":
		return KindAgent, nil
	case "command", "commands":
		return KindCommand, nil
	case "skill", "skills":
		return KindSkill, nil
	case "plugin", "manifest", "package-manifest":
		return KindPlugin, nil
	}
	return "", errors.Errorf("unknown document kind '%s'", s)
}

// SchemaName is the base name of the kind's schema document, e.g. agent.schema.json
func (k Kind) SchemaName() string {
	return string(k) + ".schema.json"
}

func (k Kind) String() string {
	return string(k)
}

// ToolList is a list of tool names. Documents may spell it as a YAML sequence
// or as a single comma separated string.
type ToolList []string

// JSONSchema accepts either spelling.
func (ToolList) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		},
	}
}

// AgentMetadata is the frontmatter of agents/<name>.md
type AgentMetadata struct {
	Name        string   `json:"name" mapstructure:"name" jsonschema:"minLength=1,pattern=^[a-z0-9]+(-[a-z0-9]+)*$"`
	Description string   `json:"description" mapstructure:"description" jsonschema:"minLength=1"`
	Tools       ToolList `json:"tools,omitempty" mapstructure:"tools"`
	Model       string   `json:"model,omitempty" mapstructure:"model" jsonschema:"enum=sonnet,enum=opus,enum=haiku,enum=inherit"`
	Color       string   `json:"color,omitempty" mapstructure:"color"`
}

// CommandMetadata is the frontmatter of commands/<name>.md
type CommandMetadata struct {
	Description            string   `json:"description" mapstructure:"description" jsonschema:"minLength=1"`
	ArgumentHint           string   `json:"argument-hint,omitempty" mapstructure:"argument-hint"`
	AllowedTools           ToolList `json:"allowed-tools,omitempty" mapstructure:"allowed-tools"`
	Model                  string   `json:"model,omitempty" mapstructure:"model"`
	DisableModelInvocation bool     `json:"disable-model-invocation,omitempty" mapstructure:"disable-model-invocation"`
}

// SkillMetadata is the frontmatter of skills/<name>/SKILL.md
type SkillMetadata struct {
	Name         string   `json:"name" mapstructure:"name" jsonschema:"minLength=1,maxLength=64,pattern=^[a-z0-9]+(-[a-z0-9]+)*$"`
	Description  string   `json:"description" mapstructure:"description" jsonschema:"minLength=1,maxLength=1024"`
	License      string   `json:"license,omitempty" mapstructure:"license"`
	AllowedTools ToolList `json:"allowed-tools,omitempty" mapstructure:"allowed-tools"`
	Version      string   `json:"version,omitempty" mapstructure:"version" jsonschema:"format=semver"`
}

// Author identifies the maintainer of a plugin package
type Author struct {
	Name  string `json:"name" mapstructure:"name" jsonschema:"minLength=1"`
	Email string `json:"email,omitempty" mapstructure:"email" jsonschema:"format=email"`
	URL   string `json:"url,omitempty" mapstructure:"url" jsonschema:"format=uri"`
}

// PluginManifest is the content of .claude-plugin/plugin.json
type PluginManifest struct {
	Name        string   `json:"name" mapstructure:"name" jsonschema:"minLength=1,pattern=^[a-z0-9]+(-[a-z0-9]+)*$"`
	Version     string   `json:"version,omitempty" mapstructure:"version" jsonschema:"format=semver"`
	Description string   `json:"description,omitempty" mapstructure:"description"`
	Author      *Author  `json:"author,omitempty" mapstructure:"author"`
	Homepage    string   `json:"homepage,omitempty" mapstructure:"homepage" jsonschema:"format=uri"`
	Repository  string   `json:"repository,omitempty" mapstructure:"repository" jsonschema:"format=uri"`
	License     string   `json:"license,omitempty" mapstructure:"license"`
	Keywords    []string `json:"keywords,omitempty" mapstructure:"keywords"`
}
