package frontmatter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		content string
		block   string
		found   bool
	}{
		{
			name:    "simple block",
			content: "---\nname: foo\n---\nbody",
			block:   "name: foo",
			found:   true,
		},
		{
			name:    "empty block",
			content: "---\n---\nbody",
			block:   "",
			found:   true,
		},
		{
			name:    "crlf line endings",
			content: "---\r\nname: foo\r\n---\r\nbody",
			block:   "name: foo\r",
			found:   true,
		},
		{
			name:    "first closing marker wins",
			content: "---\nname: foo\n---\nbody\n---\nmore: stuff\n---\n",
			block:   "name: foo",
			found:   true,
		},
		{
			name:    "no leading marker",
			content: "# Title\n---\nname: foo\n---\n",
			found:   false,
		},
		{
			name:    "leading blank line",
			content: "\n---\nname: foo\n---\n",
			found:   false,
		},
		{
			name:    "unclosed block",
			content: "---\nname: foo\nbody",
			found:   false,
		},
		{
			name:    "marker with trailing text is not a marker",
			content: "--- yaml\nname: foo\n---\n",
			found:   false,
		},
		{
			name:    "empty document",
			content: "",
			found:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, found := Split(tt.content)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.block, block)
		})
	}
}

func TestExtract(t *testing.T) {
	t.Run("parsed", func(t *testing.T) {
		result := Extract([]byte("---\nname: foo\n---\nbody"))
		require.Equal(t, StatusParsed, result.Status)
		assert.True(t, result.OK())
		assert.Equal(t, map[string]any{"name": "foo"}, result.Metadata)
		assert.Empty(t, result.Err)
	})

	t.Run("absent without any marker", func(t *testing.T) {
		result := Extract([]byte("# Just a heading\n\nSome text."))
		assert.Equal(t, StatusAbsent, result.Status)
		assert.Nil(t, result.Metadata)
		assert.False(t, result.OK())
	})

	t.Run("malformed yaml", func(t *testing.T) {
		var result Result
		assert.NotPanics(t, func() {
			result = Extract([]byte("---\nname: [unterminated\n---"))
		})
		assert.Equal(t, StatusMalformed, result.Status)
		assert.NotEmpty(t, result.Err)
		assert.Nil(t, result.Metadata)
	})

	t.Run("empty flow mapping", func(t *testing.T) {
		result := Extract([]byte("---\n{}\n---"))
		require.Equal(t, StatusParsed, result.Status)
		assert.Empty(t, result.Metadata)
		assert.NotNil(t, result.Metadata)
	})

	t.Run("empty block parses to empty mapping", func(t *testing.T) {
		result := Extract([]byte("---\n---\n"))
		require.Equal(t, StatusParsed, result.Status)
		assert.Equal(t, map[string]any{}, result.Metadata)
	})

	t.Run("null block parses to empty mapping", func(t *testing.T) {
		result := Extract([]byte("---\nnull\n---\n"))
		require.Equal(t, StatusParsed, result.Status)
		assert.Equal(t, map[string]any{}, result.Metadata)
	})

	t.Run("scalar block is malformed", func(t *testing.T) {
		result := Extract([]byte("---\njust some words\n---\n"))
		assert.Equal(t, StatusMalformed, result.Status)
		assert.Contains(t, result.Err, "not a mapping")
	})

	t.Run("sequence block is malformed", func(t *testing.T) {
		result := Extract([]byte("---\n- a\n- b\n---\n"))
		assert.Equal(t, StatusMalformed, result.Status)
		assert.Contains(t, result.Err, "sequence")
	})

	t.Run("later markers stay in the body", func(t *testing.T) {
		content := "---\nname: first\n---\n\n---\nname: second\n---\n"
		result := Extract([]byte(content))
		require.Equal(t, StatusParsed, result.Status)
		assert.Equal(t, "first", result.Metadata["name"])
	})

	t.Run("nested values are normalized", func(t *testing.T) {
		content := `---
name: reviewer
max_turns: 3
tools:
  - Read
  - Grep
options:
  1: one
  nested:
    enabled: true
---
`
		result := Extract([]byte(content))
		require.Equal(t, StatusParsed, result.Status)
		assert.Equal(t, json.Number("3"), result.Metadata["max_turns"])
		assert.Equal(t, []any{"Read", "Grep"}, result.Metadata["tools"])

		options, ok := result.Metadata["options"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "one", options["1"])
		assert.Equal(t, map[string]any{"enabled": true}, options["nested"])
	})

	t.Run("body is never parsed", func(t *testing.T) {
		content := "---\nname: foo\n---\n: this is [not valid yaml\n"
		result := Extract([]byte(content))
		assert.Equal(t, StatusParsed, result.Status)
	})
}

func TestExtractJSON(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		result := ExtractJSON([]byte(`{"name": "demo", "version": "1.0.0", "keywords": ["a"]}`))
		require.Equal(t, StatusParsed, result.Status)
		assert.Equal(t, "demo", result.Metadata["name"])
		assert.Equal(t, []any{"a"}, result.Metadata["keywords"])
	})

	t.Run("whitespace only is absent", func(t *testing.T) {
		result := ExtractJSON([]byte(" \n\t"))
		assert.Equal(t, StatusAbsent, result.Status)
	})

	t.Run("invalid json is malformed", func(t *testing.T) {
		result := ExtractJSON([]byte(`{"name": `))
		assert.Equal(t, StatusMalformed, result.Status)
		assert.NotEmpty(t, result.Err)
	})

	t.Run("trailing data is malformed", func(t *testing.T) {
		result := ExtractJSON([]byte(`{"name": "a"} {"name": "b"}`))
		assert.Equal(t, StatusMalformed, result.Status)
	})

	t.Run("array is malformed", func(t *testing.T) {
		result := ExtractJSON([]byte(`[1, 2]`))
		assert.Equal(t, StatusMalformed, result.Status)
		assert.Contains(t, result.Err, "not a mapping")
	})

	t.Run("null is malformed", func(t *testing.T) {
		result := ExtractJSON([]byte("null\n"))
		assert.Equal(t, StatusMalformed, result.Status)
		assert.Contains(t, result.Err, "not a mapping (got null)")
		assert.Nil(t, result.Metadata)
	})

	t.Run("numbers keep their literal form", func(t *testing.T) {
		result := ExtractJSON([]byte(`{"count": 10}`))
		require.Equal(t, StatusParsed, result.Status)
		assert.Equal(t, json.Number("10"), result.Metadata["count"])
	})
}

func TestExtractNonFiniteFloats(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  any
	}{
		{name: "positive infinity", value: ".inf", want: ".inf"},
		{name: "negative infinity", value: "-.Inf", want: "-.inf"},
		{name: "not a number", value: ".nan", want: ".nan"},
		{name: "finite float", value: "2.5", want: json.Number("2.5")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Extract([]byte("---\nname: a\nweight: " + tt.value + "\n---\n"))
			require.Equal(t, StatusParsed, result.Status, result.Err)
			assert.Equal(t, tt.want, result.Metadata["weight"])
		})
	}
}

func TestExtractTimestamp(t *testing.T) {
	result := Extract([]byte("---\nname: a\nupdated: 2026-10-01T12:00:00Z\n---\n"))
	require.Equal(t, StatusParsed, result.Status, result.Err)
	assert.Equal(t, "2026-10-01T12:00:00Z", result.Metadata["updated"])
}

func TestNormalizeUnsupported(t *testing.T) {
	_, err := Normalize(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	value, err := Normalize(map[any]any{
		"a": []any{1, map[any]any{true: "yes"}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": []any{json.Number("1"), map[string]any{"true": "yes"}},
	}, value)
}
