package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dan-strohschein/syndrdb-batch/client"
	"github.com/dan-strohschein/syndrdb-batch/schema"
)

func newDDLCmd(flags *globalFlags) *cobra.Command {
	var dialectName string

	cmd := &cobra.Command{
		Use:   "ddl <table>",
		Short: "Print CREATE TABLE statements for a schema table",
		Long: `Prints the statements that create the given table in the chosen dialect.

Examples:
  syndrdb-batch ddl users --schema schema.yaml
  syndrdb-batch ddl users --dialect postgres`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dialect, err := client.DialectByName(dialectName)
			if err != nil {
				return err
			}

			table, err := schema.LoadTable(flags.schemaPath, args[0], schema.NewGenerators())
			if err != nil {
				return err
			}

			for _, stmt := range dialect.CreateTable(table) {
				fmt.Fprintln(cmd.OutOrStdout(), stmt+";")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dialectName, "dialect", "duckdb", "SQL dialect: duckdb, postgres, sqlite")
	return cmd
}
