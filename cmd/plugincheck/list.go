package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugincheck/pkg/conformance"
	"github.com/jingkaihe/plugincheck/pkg/logger"
	"github.com/jingkaihe/plugincheck/pkg/manifest"
)

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list [root]",
		Short: "List the documents of a plugin package",
		Long: `List every conformant agent, command, skill and manifest of the package with
its name and description. Documents that fail the check are counted but not
listed; run "plugincheck check" to see why.`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{rootArgAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runList(cmd.Context())
		},
	}
}

func (c *cli) runList(ctx context.Context) error {
	p := c.presenter()

	report, err := c.check(ctx)
	if err != nil {
		p.Error(err, "failed to inventory package")
		return &exitError{code: exitFault, err: err}
	}

	entries, skipped := inventory(ctx, report)
	p.Entries(entries)

	if skipped > 0 {
		p.Warning(fmt.Sprintf("%d document(s) not listed because they do not conform", skipped))
	}
	return nil
}

// inventory summarizes every conformant document of report and counts the
// ones left out
func inventory(ctx context.Context, report *conformance.Report) ([]manifest.Entry, int) {
	entries := []manifest.Entry{}
	skipped := 0

	for _, k := range report.Kinds {
		for _, o := range k.Outcomes {
			if !o.Conformant() {
				skipped++
				continue
			}

			entry, err := manifest.Summarize(k.Kind, o.Path, o.Extraction.Metadata)
			if err != nil {
				logger.G(ctx).WithError(err).WithField("path", o.Path).Warn("failed to summarize document")
				skipped++
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, skipped
}
