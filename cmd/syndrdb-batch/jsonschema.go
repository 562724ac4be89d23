package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dan-strohschein/syndrdb-batch/codegen"
	"github.com/dan-strohschein/syndrdb-batch/schema"
)

func newJSONSchemaCmd(flags *globalFlags) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "jsonschema [table]",
		Short: "Generate JSON Schema for rows files",
		Long: `Generates a JSON Schema describing the rows file accepted by 'load'.
With a table name the document is printed; without one, a document per table
is written to --output.

Examples:
  syndrdb-batch jsonschema users
  syndrdb-batch jsonschema --output ./schemas`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := codegen.NewJSONSchemaGenerator()
			gens := schema.NewGenerators()

			if len(args) == 1 {
				table, err := schema.LoadTable(flags.schemaPath, args[0], gens)
				if err != nil {
					return err
				}
				doc, err := gen.GenerateRows(table)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), doc)
				return nil
			}

			def, err := schema.LoadSchema(flags.schemaPath)
			if err != nil {
				return err
			}
			docs, err := gen.GenerateMulti(def, gens)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			names := make([]string, 0, len(docs))
			for name := range docs {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				path := filepath.Join(outputDir, name+".schema.json")
				if err := os.WriteFile(path, []byte(docs[name]), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				printSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Generated %s", colorCyan(path)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Output directory when no table is given")
	return cmd
}
