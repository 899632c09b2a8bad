// Package schema compiles JSON Schema documents and checks parsed metadata
// against them. A compiled Schema is immutable and safe to share between checks;
// Check reports every violation in one pass rather than stopping at the first.
package schema

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Violation describes one way a metadata mapping fails its schema
type Violation struct {
	Pointer string `json:"pointer"` // JSON pointer to the offending field, "" for the document itself
	Keyword string `json:"keyword"` // failing keyword, e.g. "required", "type" or "enum"
	Message string `json:"message"`
}

func (v Violation) String() string {
	pointer := v.Pointer
	if pointer == "" {
		pointer = "/"
	}
	return fmt.Sprintf("%s: %s", pointer, v.Message)
}

// Schema is a compiled schema document
type Schema struct {
	name     string
	location string
	compiled *jsonschema.Schema
}

// Name returns the name the schema was compiled under
func (s *Schema) Name() string {
	return s.name
}

// Location returns where the schema document was loaded from
func (s *Schema) Location() string {
	return s.location
}

// semverFormat asserts strict semantic versions such as 1.2.3 or 2.0.0-rc.1
var semverFormat = &jsonschema.Format{
	Name: "semver",
	Validate: func(v any) error {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		if _, err := semver.StrictNewVersion(s); err != nil {
			return errors.Errorf("'%s' is not a valid semantic version", s)
		}
		return nil
	},
}

func newCompiler() *jsonschema.Compiler {
	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft7)
	c.AssertFormat()
	c.RegisterFormat(semverFormat)
	return c
}

// Compile parses and compiles one schema document. location identifies the
// document in error messages and must be unique per compiled schema; a file
// path or URL is typical.
func Compile(name, location string, doc []byte) (*Schema, error) {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, errors.Wrapf(err, "schema '%s' is not valid JSON", name)
	}

	c := newCompiler()
	if err := c.AddResource(location, parsed); err != nil {
		return nil, errors.Wrapf(err, "failed to add schema '%s'", name)
	}

	compiled, err := c.Compile(location)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile schema '%s'", name)
	}

	return &Schema{name: name, location: location, compiled: compiled}, nil
}

// Check validates metadata against s and returns every violation found, ordered
// by field pointer. An empty result means the metadata conforms. Metadata values
// must already be in the JSON value model (see frontmatter.Normalize).
func Check(metadata map[string]any, s *Schema) []Violation {
	err := s.compiled.Validate(metadata)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []Violation{{Message: err.Error()}}
	}

	var violations []Violation
	collect(verr, &violations)
	sortViolations(violations)
	return violations
}

// collect walks the error tree and turns every leaf into violations. oneOf and
// anyOf failures are reported as a single violation at their own location,
// since the individual branch failures are alternatives rather than problems.
func collect(verr *jsonschema.ValidationError, out *[]Violation) {
	switch k := verr.ErrorKind.(type) {
	case *kind.Required:
		for _, missing := range k.Missing {
			*out = append(*out, Violation{
				Pointer: pointer(append(append([]string{}, verr.InstanceLocation...), missing)),
				Keyword: keyword(k),
				Message: fmt.Sprintf("missing required property '%s'", missing),
			})
		}
		return
	case *kind.OneOf, *kind.AnyOf:
		*out = append(*out, violation(verr))
		return
	}

	if len(verr.Causes) == 0 {
		*out = append(*out, violation(verr))
		return
	}

	for _, cause := range verr.Causes {
		collect(cause, out)
	}
}

func violation(verr *jsonschema.ValidationError) Violation {
	return Violation{
		Pointer: pointer(verr.InstanceLocation),
		Keyword: keyword(verr.ErrorKind),
		Message: verr.ErrorKind.LocalizedString(printer),
	}
}

func keyword(k jsonschema.ErrorKind) string {
	return strings.Join(k.KeywordPath(), "/")
}

// pointer renders instance location tokens as an RFC 6901 JSON pointer
func pointer(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}

	var b strings.Builder
	for _, token := range tokens {
		token = strings.ReplaceAll(token, "~", "~0")
		token = strings.ReplaceAll(token, "/", "~1")
		b.WriteString("/")
		b.WriteString(token)
	}
	return b.String()
}

func sortViolations(violations []Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.Pointer != b.Pointer {
			return a.Pointer < b.Pointer
		}
		if a.Keyword != b.Keyword {
			return a.Keyword < b.Keyword
		}
		return a.Message < b.Message
	})
}
