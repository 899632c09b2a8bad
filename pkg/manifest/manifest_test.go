package manifest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
	}{
		{"agent", KindAgent},
		{"Agents", KindAgent},
		{"commands", KindCommand},
		{" skill ", KindSkill},
		{"manifest", KindPlugin},
		{"package-manifest", KindPlugin},
		{"plugin", KindPlugin},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseKind(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}

	_, err := ParseKind("hooks")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown document kind")
}

func TestKinds(t *testing.T) {
	assert.Equal(t, []Kind{KindAgent, KindCommand, KindSkill, KindPlugin}, Kinds())

	info, ok := Info(KindSkill)
	require.True(t, ok)
	assert.Equal(t, "skills/*/SKILL.md", info.Pattern)
	assert.Equal(t, FormatFrontmatter, info.Format)
	assert.True(t, info.Required)

	info, ok = Info(KindPlugin)
	require.True(t, ok)
	assert.Equal(t, FormatJSON, info.Format)

	_, ok = Info(Kind("hook"))
	assert.False(t, ok)

	assert.Equal(t, "agent.schema.json", KindAgent.SchemaName())
}

func TestSchemaDocument(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			data, err := SchemaDocument(kind)
			require.NoError(t, err)

			var doc map[string]any
			require.NoError(t, json.Unmarshal(data, &doc))
			assert.Equal(t, "object", doc["type"])
			assert.Contains(t, doc, "properties")
			assert.NotContains(t, doc, "$ref")
		})
	}

	t.Run("agent requires name and description", func(t *testing.T) {
		s, err := Schema(KindAgent)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"name", "description"}, s.Required)
	})

	t.Run("command requires description only", func(t *testing.T) {
		s, err := Schema(KindCommand)
		require.NoError(t, err)
		assert.Equal(t, []string{"description"}, s.Required)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := SchemaDocument(Kind("hook"))
		assert.Error(t, err)
	})
}

func TestDecode(t *testing.T) {
	t.Run("agent with comma separated tools", func(t *testing.T) {
		decoded, err := Decode(KindAgent, map[string]any{
			"name":        "code-reviewer",
			"description": "Reviews code",
			"tools":       "Read, Grep,Glob",
			"model":       "sonnet",
		})
		require.NoError(t, err)

		agent, ok := decoded.(*AgentMetadata)
		require.True(t, ok)
		assert.Equal(t, "code-reviewer", agent.Name)
		assert.Equal(t, ToolList{"Read", "Grep", "Glob"}, agent.Tools)
		assert.Equal(t, "sonnet", agent.Model)
	})

	t.Run("skill with tool sequence", func(t *testing.T) {
		decoded, err := Decode(KindSkill, map[string]any{
			"name":          "pdf",
			"description":   "Work with PDFs",
			"allowed-tools": []any{"Read", "Bash"},
		})
		require.NoError(t, err)

		skill := decoded.(*SkillMetadata)
		assert.Equal(t, ToolList{"Read", "Bash"}, skill.AllowedTools)
	})

	t.Run("plugin manifest with author", func(t *testing.T) {
		decoded, err := Decode(KindPlugin, map[string]any{
			"name":    "demo",
			"version": "1.2.3",
			"author":  map[string]any{"name": "Jane", "email": "jane@example.com"},
		})
		require.NoError(t, err)

		plugin := decoded.(*PluginManifest)
		require.NotNil(t, plugin.Author)
		assert.Equal(t, "Jane", plugin.Author.Name)
		assert.Equal(t, "1.2.3", plugin.Version)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := Decode(Kind("hook"), map[string]any{})
		assert.Error(t, err)
	})
}

func TestSummarize(t *testing.T) {
	entry, err := Summarize(KindCommand, "commands/release-notes.md", map[string]any{
		"description":   "Draft release notes",
		"argument-hint": "[version]",
	})
	require.NoError(t, err)
	assert.Equal(t, Entry{
		Kind:        KindCommand,
		Path:        "commands/release-notes.md",
		Name:        "release-notes",
		Description: "Draft release notes",
	}, entry)

	entry, err = Summarize(KindSkill, "skills/pdf/SKILL.md", map[string]any{
		"name":        "pdf",
		"description": "Work with PDFs",
	})
	require.NoError(t, err)
	assert.Equal(t, "pdf", entry.Name)
	assert.Equal(t, KindSkill, entry.Kind)
}
