package conformance

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/jingkaihe/plugincheck/pkg/frontmatter"
	"github.com/jingkaihe/plugincheck/pkg/manifest"
	"github.com/jingkaihe/plugincheck/pkg/schema"
)

// Outcome is the result of checking one document
type Outcome struct {
	Path       string
	Kind       manifest.Kind
	Extraction frontmatter.Result
	Violations []schema.Violation
}

// Conformant reports whether the document has parsed metadata and no violations
func (o Outcome) Conformant() bool {
	return o.Extraction.OK() && len(o.Violations) == 0
}

// Problem summarises why a document failed, or returns "" when it conforms
func (o Outcome) Problem() string {
	switch o.Extraction.Status {
	case frontmatter.StatusAbsent:
		return "metadata absent"
	case frontmatter.StatusMalformed:
		return "metadata malformed: " + o.Extraction.Err
	}

	if len(o.Violations) == 0 {
		return ""
	}

	parts := make([]string, 0, len(o.Violations))
	for _, v := range o.Violations {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, "; ")
}

// KindResult holds the outcomes for every document of one kind
type KindResult struct {
	Kind         manifest.Kind
	Pattern      string
	SchemaSource schema.Source
	Outcomes     []Outcome
}

// Pass reports whether every document of the kind conforms
func (r KindResult) Pass() bool {
	for _, o := range r.Outcomes {
		if !o.Conformant() {
			return false
		}
	}
	return true
}

// Failures returns the non-conformant outcomes in document order
func (r KindResult) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.Conformant() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Report is the result of a full conformance run
type Report struct {
	RunID string
	Kinds []KindResult
}

// Pass reports whether every kind passed
func (r *Report) Pass() bool {
	for _, k := range r.Kinds {
		if !k.Pass() {
			return false
		}
	}
	return true
}

// Kind returns the result for kind, if it was checked
func (r *Report) Kind(kind manifest.Kind) (KindResult, bool) {
	for _, k := range r.Kinds {
		if k.Kind == kind {
			return k, true
		}
	}
	return KindResult{}, false
}

// Err folds every failing document into a single error, or returns nil when
// the report passes
func (r *Report) Err() error {
	var result *multierror.Error
	for _, k := range r.Kinds {
		for _, o := range k.Failures() {
			result = multierror.Append(result, fmt.Errorf("%s %s: %s", k.Kind, o.Path, o.Problem()))
		}
	}
	return result.ErrorOrNil()
}
