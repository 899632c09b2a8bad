// Package frontmatter isolates the leading metadata block of plugin documents.
// Agent, command and skill documents open with a YAML block fenced by "---" lines;
// the package manifest is a standalone JSON object. Extraction never fails: a
// missing or unparsable block is reported as data through Result.
package frontmatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Marker is the line that opens and closes a metadata block.
const Marker = "---"

// Status tells which variant of an extraction Result holds.
type Status string

// Extraction statuses
const (
	StatusAbsent    Status = "absent"
	StatusMalformed Status = "malformed"
	StatusParsed    Status = "parsed"
)

// Result is the outcome of extracting a metadata block from one document.
type Result struct {
	Status   Status
	Metadata map[string]any // set only when Status is StatusParsed
	Err      string         // parser error text, set only when Status is StatusMalformed
	Raw      string         // text of the block, empty when absent
}

// Absent returns a Result for a document without a metadata block.
func Absent() Result {
	return Result{Status: StatusAbsent}
}

// Malformed returns a Result for a block that could not be parsed.
func Malformed(raw, reason string) Result {
	return Result{Status: StatusMalformed, Raw: raw, Err: reason}
}

// Parsed returns a Result carrying the parsed metadata mapping.
func Parsed(raw string, metadata map[string]any) Result {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Result{Status: StatusParsed, Raw: raw, Metadata: metadata}
}

// OK reports whether the block was found and parsed.
func (r Result) OK() bool {
	return r.Status == StatusParsed
}

// Split locates the fenced block at the start of content. It returns the text
// strictly between the first two marker lines and true, or false when the
// document does not open with a marker or the block is never closed.
func Split(content string) (string, bool) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || trimLine(lines[0]) != Marker {
		return "", false
	}

	for i := 1; i < len(lines); i++ {
		if trimLine(lines[i]) == Marker {
			return strings.Join(lines[1:i], "\n"), true
		}
	}

	return "", false
}

func trimLine(line string) string {
	return strings.TrimSuffix(line, "\r")
}

// Extract isolates and parses the YAML metadata block of a markdown document.
func Extract(content []byte) Result {
	block, ok := Split(string(content))
	if !ok {
		return Absent()
	}

	var value any
	if err := yaml.Unmarshal([]byte(block), &value); err != nil {
		return Malformed(block, err.Error())
	}

	return fromValue(block, value)
}

// ExtractJSON parses a document whose entire content is a JSON object.
func ExtractJSON(content []byte) Result {
	raw := string(content)
	if len(bytes.TrimSpace(content)) == 0 {
		return Absent()
	}

	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return Malformed(raw, err.Error())
	}
	if dec.More() {
		return Malformed(raw, "unexpected data after top-level value")
	}
	if value == nil {
		return Malformed(raw, "metadata block is not a mapping (got null)")
	}

	return fromValue(raw, value)
}

// fromValue builds a Result from a decoded block. A nil value is an empty or
// null YAML block and yields an empty mapping.
func fromValue(raw string, value any) Result {
	if value == nil {
		return Parsed(raw, nil)
	}

	normalized, err := Normalize(value)
	if err != nil {
		return Malformed(raw, err.Error())
	}

	metadata, ok := normalized.(map[string]any)
	if !ok {
		return Malformed(raw, fmt.Sprintf("metadata block is not a mapping (got %s)", describe(normalized)))
	}

	return Parsed(raw, metadata)
}

// Normalize converts a decoded YAML or JSON value into the JSON value model:
// mappings keyed by strings, sequences as []any, numbers as json.Number and
// timestamps as RFC 3339 strings. Infinite and NaN floats have no JSON form
// and are kept as their YAML spelling (".inf", "-.inf", ".nan").
func Normalize(value any) (any, error) {
	switch v := value.(type) {
	case nil, bool, string, json.Number:
		return v, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case int:
		return json.Number(strconv.Itoa(v)), nil
	case int64:
		return json.Number(strconv.FormatInt(v, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(v, 10)), nil
	case float64:
		return normalizeFloat(v), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	default:
		return nil, fmt.Errorf("unsupported metadata value of type %T", value)
	}
}

func normalizeFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
}

func describe(value any) string {
	switch value.(type) {
	case []any:
		return "sequence"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", value)
	}
}
