package presenter

import (
	"encoding/json"
	"io"

	"github.com/jingkaihe/plugincheck/pkg/conformance"
	"github.com/jingkaihe/plugincheck/pkg/manifest"
	"github.com/jingkaihe/plugincheck/pkg/schema"
)

// JSONReport is the machine-readable form of a conformance report
type JSONReport struct {
	RunID string     `json:"run_id"`
	Pass  bool       `json:"pass"`
	Kinds []JSONKind `json:"kinds"`
}

// JSONKind is the result for one document kind
type JSONKind struct {
	Kind         string         `json:"kind"`
	Pattern      string         `json:"pattern"`
	SchemaSource string         `json:"schema_source"`
	Pass         bool           `json:"pass"`
	Documents    []JSONDocument `json:"documents"`
}

// JSONDocument is the outcome for one document
type JSONDocument struct {
	Path       string             `json:"path"`
	Status     string             `json:"status"`
	Conformant bool               `json:"conformant"`
	Error      string             `json:"error,omitempty"`
	Violations []schema.Violation `json:"violations,omitempty"`
}

// NewJSONReport converts a report into its JSON form
func NewJSONReport(report *conformance.Report) JSONReport {
	out := JSONReport{RunID: report.RunID, Pass: report.Pass(), Kinds: []JSONKind{}}
	for _, k := range report.Kinds {
		kind := JSONKind{
			Kind:         string(k.Kind),
			Pattern:      k.Pattern,
			SchemaSource: string(k.SchemaSource),
			Pass:         k.Pass(),
			Documents:    []JSONDocument{},
		}
		for _, o := range k.Outcomes {
			kind.Documents = append(kind.Documents, JSONDocument{
				Path:       o.Path,
				Status:     string(o.Extraction.Status),
				Conformant: o.Conformant(),
				Error:      o.Extraction.Err,
				Violations: o.Violations,
			})
		}
		out.Kinds = append(out.Kinds, kind)
	}
	return out
}

// JSONPresenter writes reports as JSON documents and errors as JSON objects.
// Plain messages are dropped so stdout stays parseable.
type JSONPresenter struct {
	output      io.Writer
	errorOutput io.Writer
}

// NewJSON creates a JSONPresenter
func NewJSON(output, errorOutput io.Writer) *JSONPresenter {
	return &JSONPresenter{output: output, errorOutput: errorOutput}
}

func (p *JSONPresenter) encode(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// Error writes {"error": ..., "context": ..., "fault": ...} to the error output
func (p *JSONPresenter) Error(err error, context string) {
	if err == nil {
		return
	}

	p.encode(p.errorOutput, map[string]any{
		"error":   err.Error(),
		"context": context,
		"fault":   conformance.IsFault(err),
	})
}

// Success is a no-op for JSON output
func (p *JSONPresenter) Success(string) {}

// Warning is a no-op for JSON output
func (p *JSONPresenter) Warning(string) {}

// Info is a no-op for JSON output
func (p *JSONPresenter) Info(string) {}

// Separator is a no-op for JSON output
func (p *JSONPresenter) Separator() {}

// Report writes the report as one JSON document and returns whether it passed
func (p *JSONPresenter) Report(report *conformance.Report) bool {
	out := NewJSONReport(report)
	p.encode(p.output, out)
	return out.Pass
}

// Entries writes entries as a JSON array
func (p *JSONPresenter) Entries(entries []manifest.Entry) {
	if entries == nil {
		entries = []manifest.Entry{}
	}
	p.encode(p.output, entries)
}

// SetQuiet is a no-op for JSON output
func (p *JSONPresenter) SetQuiet(bool) {}

// IsQuiet always reports true since JSON output carries no chatter
func (p *JSONPresenter) IsQuiet() bool { return true }
