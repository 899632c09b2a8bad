package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugincheck/pkg/logger"
	"github.com/jingkaihe/plugincheck/pkg/watcher"
)

func newWatchCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [root]",
		Short: "Re-run the check whenever package files change",
		Long: `Run a full check, then watch the package root and all subdirectories and run
it again after every burst of file changes. Directories named in --ignore are
skipped at any depth.

Press Ctrl+C to stop.`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{rootArgAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runWatch(cmd.Context())
		},
	}

	cmd.Flags().DurationP("debounce", "d", 0, "Quiet period before re-running after a change (default from config, 500ms)")
	cmd.Flags().StringSliceP("ignore", "i", nil, "Directory names to ignore (default from config, .git and node_modules)")
	c.bind(cmd.Flags().Lookup("debounce"), "watch.debounce")
	c.bind(cmd.Flags().Lookup("ignore"), "watch.ignore_dirs")

	return cmd
}

func (c *cli) runWatch(ctx context.Context) error {
	p := c.presenter()

	w, err := watcher.New(ctx, c.cfg.Root,
		watcher.WithDebounce(c.cfg.Watch.Debounce),
		watcher.WithIgnoreDirs(c.cfg.Watch.IgnoreDirs...),
	)
	if err != nil {
		p.Error(err, "failed to start file watcher")
		return &exitError{code: exitFault, err: err}
	}

	// faults are reported and watching continues
	_ = c.runCheck(ctx, p)
	p.Info("Watching for changes... Press Ctrl+C to stop")

	err = w.Run(ctx, func(ctx context.Context, paths []string) {
		logger.G(ctx).WithField("files", paths).Debug("re-running check")
		p.Separator()
		p.Info(fmt.Sprintf("Change detected: %s", strings.Join(paths, ", ")))
		_ = c.runCheck(ctx, p)
	})
	if err != nil {
		p.Error(err, "file watcher stopped")
		return &exitError{code: exitFault, err: err}
	}
	return nil
}
