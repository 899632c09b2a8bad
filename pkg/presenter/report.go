package presenter

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/jingkaihe/plugincheck/pkg/conformance"
	"github.com/jingkaihe/plugincheck/pkg/frontmatter"
	"github.com/jingkaihe/plugincheck/pkg/manifest"
)

// Report prints one PASS/FAIL line per kind followed by a diagnostic for every
// failing document, and returns whether the whole report passed. In quiet mode
// only failing kinds are printed.
func (p *TerminalPresenter) Report(report *conformance.Report) bool {
	passColor := color.New(color.FgGreen, color.Bold)
	failColor := color.New(color.FgRed, color.Bold)
	pathColor := color.New(color.Bold)

	for _, k := range report.Kinds {
		total := len(k.Outcomes)
		failures := k.Failures()

		if len(failures) == 0 {
			if !p.quiet {
				passColor.Fprintf(p.output, "✓ PASS %s: %d of %d documents conform (%s, schema: %s)\n",
					k.Kind, total, total, k.Pattern, k.SchemaSource)
			}
			continue
		}

		failColor.Fprintf(p.output, "✗ FAIL %s: %d of %d documents failed (%s, schema: %s)\n",
			k.Kind, len(failures), total, k.Pattern, k.SchemaSource)

		for _, o := range failures {
			switch o.Extraction.Status {
			case frontmatter.StatusAbsent:
				pathColor.Fprintf(p.output, "  %s", o.Path)
				fmt.Fprintf(p.output, ": metadata absent\n")
			case frontmatter.StatusMalformed:
				pathColor.Fprintf(p.output, "  %s", o.Path)
				fmt.Fprintf(p.output, ": metadata malformed: %s\n", o.Extraction.Err)
			default:
				pathColor.Fprintf(p.output, "  %s", o.Path)
				fmt.Fprintf(p.output, ": %d violation(s)\n", len(o.Violations))
				for _, v := range o.Violations {
					fmt.Fprintf(p.output, "    - %s\n", v)
				}
			}
		}
	}

	pass := report.Pass()
	if !p.quiet {
		if pass {
			passColor.Fprintf(p.output, "all %d kinds conform\n", len(report.Kinds))
		} else {
			failColor.Fprintf(p.output, "conformance check failed\n")
		}
	}
	return pass
}

// Entries prints a table of documents
func (p *TerminalPresenter) Entries(entries []manifest.Entry) {
	w := tabwriter.NewWriter(p.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tNAME\tPATH\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Kind, e.Name, e.Path, truncate(e.Description, 60))
	}
	w.Flush()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
