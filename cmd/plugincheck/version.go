package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugincheck/pkg/version"
)

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Long:  `Print the version information of plugincheck in JSON format.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			out, err := version.Get().JSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, out)
			return nil
		},
	}
}
