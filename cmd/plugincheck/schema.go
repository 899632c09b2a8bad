package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugincheck/pkg/manifest"
)

func newSchemaCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema [kind]",
		Short: "Print or write the built-in schemas",
		Long: `Print the built-in JSON Schema for a document kind, or write the schemas of
every kind to a directory with --write. A written directory can be edited and
used as the package's schemas/ directory or passed to --schemas-dir.

Examples:
  plugincheck schema agent
  plugincheck schema --write ./schemas`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("write")
			force, _ := cmd.Flags().GetBool("force")

			if dir != "" {
				return c.writeSchemas(dir, force, args)
			}
			if len(args) == 0 {
				return errors.New("a kind is required unless --write is given")
			}

			kind, err := manifest.ParseKind(args[0])
			if err != nil {
				return err
			}
			doc, err := manifest.SchemaDocument(kind)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, string(doc))
			return nil
		},
	}

	cmd.Flags().StringP("write", "w", "", "Write <kind>.schema.json files into this directory")
	cmd.Flags().BoolP("force", "f", false, "Overwrite existing schema files")

	return cmd
}

func (c *cli) writeSchemas(dir string, force bool, args []string) error {
	kinds := manifest.Kinds()
	if len(args) == 1 {
		kind, err := manifest.ParseKind(args[0])
		if err != nil {
			return err
		}
		kinds = []manifest.Kind{kind}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create schema directory %s", dir)
	}

	p := c.presenter()
	for _, kind := range kinds {
		path := filepath.Join(dir, kind.SchemaName())
		if _, err := os.Stat(path); err == nil && !force {
			return errors.Errorf("%s already exists, use --force to overwrite", path)
		}

		doc, err := manifest.SchemaDocument(kind)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, append(doc, '\n'), 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", path)
		}
		p.Success(fmt.Sprintf("wrote %s", path))
	}
	return nil
}
