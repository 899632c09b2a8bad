// Package conformance drives a conformance run over a plugin package: it
// discovers the documents of each kind, extracts their metadata blocks and
// checks them against the kind's schema. Absent, malformed and non-conformant
// metadata become data in the Report; discovery, read and schema failures are
// returned as *FaultError and abort the run.
package conformance

import (
	"context"
	"io/fs"

	"github.com/pkg/errors"

	"github.com/jingkaihe/plugincheck/pkg/frontmatter"
	"github.com/jingkaihe/plugincheck/pkg/logger"
	"github.com/jingkaihe/plugincheck/pkg/manifest"
	"github.com/jingkaihe/plugincheck/pkg/schema"
)

// Discoverer lists the documents of a kind inside a package
type Discoverer interface {
	Discover(kind manifest.Kind) ([]string, error)
	Pattern(kind manifest.Kind) string
	FS() fs.FS
}

// SchemaLoader hands out the compiled schema of a kind
type SchemaLoader interface {
	Load(kind manifest.Kind) (*schema.Schema, error)
	Source(kind manifest.Kind) schema.Source
}

// Validator checks the documents of a plugin package
type Validator struct {
	discovery Discoverer
	schemas   SchemaLoader
}

// NewValidator creates a Validator
func NewValidator(discovery Discoverer, schemas SchemaLoader) *Validator {
	return &Validator{
		discovery: discovery,
		schemas:   schemas,
	}
}

// Run checks every given kind in order, defaulting to all kinds. The first
// infrastructural fault stops the run.
func (v *Validator) Run(ctx context.Context, kinds ...manifest.Kind) (*Report, error) {
	if len(kinds) == 0 {
		kinds = manifest.Kinds()
	}

	ctx, runID := logger.WithRun(ctx)
	report := &Report{RunID: runID}

	for _, kind := range kinds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s, err := v.schemas.Load(kind)
		if err != nil {
			return nil, newFault(kind, "", ErrSchema, err)
		}

		outcomes, err := v.ValidateAll(ctx, kind, s)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("kind", kind).Warn("conformance run aborted")
			return nil, err
		}

		result := KindResult{
			Kind:         kind,
			Pattern:      v.discovery.Pattern(kind),
			SchemaSource: v.schemas.Source(kind),
			Outcomes:     outcomes,
		}
		logger.G(ctx).WithField("kind", kind).
			WithField("documents", len(outcomes)).
			WithField("failures", len(result.Failures())).
			Info("checked documents")

		report.Kinds = append(report.Kinds, result)
	}

	return report, nil
}

// ValidateAll checks every document of kind against s, returning outcomes in
// discovery order
func (v *Validator) ValidateAll(ctx context.Context, kind manifest.Kind, s *schema.Schema) ([]Outcome, error) {
	info, ok := manifest.Info(kind)
	if !ok {
		return nil, errors.Errorf("unknown document kind '%s'", kind)
	}

	paths, err := v.discovery.Discover(kind)
	if err != nil {
		return nil, newFault(kind, "", ErrDiscovery, err)
	}
	if len(paths) == 0 && info.Required {
		return nil, newFault(kind, v.discovery.Pattern(kind), ErrNoDocuments, nil)
	}

	outcomes := make([]Outcome, 0, len(paths))
	for _, path := range paths {
		content, err := fs.ReadFile(v.discovery.FS(), path)
		if err != nil {
			return nil, newFault(kind, path, ErrReadDocument, err)
		}

		outcome := Validate(kind, info.Format, path, content, s)
		logger.G(ctx).WithField("kind", kind).
			WithField("path", path).
			WithField("status", outcome.Extraction.Status).
			WithField("violations", len(outcome.Violations)).
			Debug("checked document")

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// Validate checks a single document that has already been read
func Validate(kind manifest.Kind, format manifest.Format, path string, content []byte, s *schema.Schema) Outcome {
	outcome := Outcome{Path: path, Kind: kind}

	switch format {
	case manifest.FormatJSON:
		outcome.Extraction = frontmatter.ExtractJSON(content)
	default:
		outcome.Extraction = frontmatter.Extract(content)
	}

	if outcome.Extraction.OK() {
		outcome.Violations = schema.Check(outcome.Extraction.Metadata, s)
	}
	return outcome
}
