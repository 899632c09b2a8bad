package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugincheck/pkg/conformance"
	"github.com/jingkaihe/plugincheck/pkg/discovery"
	"github.com/jingkaihe/plugincheck/pkg/logger"
	"github.com/jingkaihe/plugincheck/pkg/presenter"
	"github.com/jingkaihe/plugincheck/pkg/schema"
)

func newCheckCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "check [root]",
		Short: "Validate every plugin document against its schema",
		Long: `Discover agents, commands, skills and the package manifest under the package
root, extract their metadata and validate it against the schema for each kind.

Schemas are taken from --schemas-dir when given, otherwise from
<root>/schemas/<kind>.schema.json when present, otherwise the built-in schemas.

Exit status is 0 when every kind conforms, 1 when any document fails and 2 when
the check could not be completed.

Examples:
  plugincheck check
  plugincheck check ./my-plugin --kind agent,skill
  plugincheck check -o json --exclude 'agents/drafts/**'`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{rootArgAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runCheck(cmd.Context(), c.presenter())
		},
	}
}

// newValidator wires discovery and schema resolution for the configured
// package root. A fresh validator is built per run so edited schema files are
// picked up.
func (c *cli) newValidator() (*conformance.Validator, error) {
	opts := []discovery.Option{
		discovery.WithRoot(c.cfg.Root),
		discovery.WithExcludes(c.cfg.Exclude...),
	}
	for kind, pattern := range c.cfg.KindPatterns() {
		opts = append(opts, discovery.WithPattern(kind, pattern))
	}
	d, err := discovery.New(opts...)
	if err != nil {
		return nil, err
	}

	registryOpts := []schema.RegistryOption{schema.WithPackageRoot(c.cfg.Root)}
	if c.cfg.SchemasDir != "" {
		registryOpts = append(registryOpts, schema.WithSchemaDir(c.cfg.SchemasDir))
	}
	registry, err := schema.NewRegistry(registryOpts...)
	if err != nil {
		return nil, err
	}

	return conformance.NewValidator(d, registry), nil
}

func (c *cli) check(ctx context.Context) (*conformance.Report, error) {
	v, err := c.newValidator()
	if err != nil {
		return nil, err
	}
	return v.Run(ctx, c.cfg.SelectedKinds()...)
}

// runCheck runs one full check and renders it. Faults are reported through p
// and returned with the fault exit status.
func (c *cli) runCheck(ctx context.Context, p presenter.Presenter) error {
	report, err := c.check(ctx)
	if err != nil {
		logger.G(ctx).WithError(err).Warn("conformance check aborted")
		p.Error(err, "conformance check aborted")
		return &exitError{code: exitFault, err: err}
	}

	if !p.Report(report) {
		logger.G(ctx).WithError(report.Err()).WithField("run_id", report.RunID).Info("conformance check failed")
		return &exitError{code: exitFail, err: errCheckFailed}
	}
	return nil
}
